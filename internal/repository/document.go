package repository

import (
	"context"

	"docvault/internal/model"
)

// DeleteHook runs inside the delete transaction, after the target row has
// been loaded and before the row is removed. A non-nil error aborts the
// delete; nothing is committed and no side effects remain.
type DeleteHook func(ctx context.Context, doc *model.Document) error

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record.
	// The caller provides all fields including ID and timestamps.
	// Returns the stored document.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID with the successor link
	// resolved. ErrNotFound if no row matches.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a paginated list of documents, newest first, and the
	// total row count for the given filter.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Document], error)

	// Update persists the mutable fields: name, type, content, preview key
	// and updated_at. Identity, file fields, created_at and the version
	// link are never written.
	Update(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindChain returns the full version chain containing the given
	// document, oldest first. ErrNotFound if the document does not exist.
	FindChain(ctx context.Context, id string) ([]model.Document, error)

	// Delete removes a document by ID after running every registered
	// delete hook inside the same transaction. ErrNotFound if no row
	// matches.
	Delete(ctx context.Context, id string) error
}
