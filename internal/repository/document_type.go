package repository

import (
	"context"

	"docvault/internal/model"
)

// DocumentTypeRepository defines data access for document types.
type DocumentTypeRepository interface {
	// Create inserts a new document type. ErrDuplicateKey when the name
	// or slug already exists.
	Create(ctx context.Context, dt *model.DocumentType) (*model.DocumentType, error)

	// List returns all document types ordered by name.
	List(ctx context.Context) ([]model.DocumentType, error)

	// FindBySlug returns a document type by its slug. ErrNotFound if no
	// row matches.
	FindBySlug(ctx context.Context, slug string) (*model.DocumentType, error)

	// Update persists the name and updated_at. The slug is never written.
	Update(ctx context.Context, dt *model.DocumentType) (*model.DocumentType, error)

	// Delete removes a document type by slug. ErrReferentialIntegrity
	// while documents still reference it; ErrNotFound if no row matches.
	Delete(ctx context.Context, slug string) error
}
