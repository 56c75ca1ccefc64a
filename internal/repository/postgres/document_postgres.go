package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
// Delete hooks registered at startup run inside the delete transaction.
type DocumentPostgres struct {
	db    *sql.DB
	hooks []repository.DeleteHook
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// RegisterDeleteHook attaches a hook to the delete pathway. Hooks run in
// registration order, for every delete attempt regardless of its origin.
// Register all hooks at startup; not safe to call concurrently with Delete.
func (r *DocumentPostgres) RegisterDeleteHook(h repository.DeleteHook) {
	r.hooks = append(r.hooks, h)
}

const docSelectColumns = `d.id, d.name, d.type_id, d.file_key, d.file_size, d.content_type,
	       d.preview_key, d.content, d.replaces_id, s.id,
	       d.created_at, d.updated_at`

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, name, type_id, file_key, file_size, content_type,
		                       preview_key, content, replaces_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, name, type_id, file_key, file_size, content_type,
		          preview_key, content, replaces_id,
		          (SELECT s.id FROM documents s WHERE s.replaces_id = documents.id),
		          created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Name,
		doc.TypeID,
		doc.FileKey,
		doc.FileSize,
		doc.ContentType,
		nullArg(doc.PreviewKey),
		nullArg(doc.Content),
		nullArg(doc.ReplacesID),
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	out, err := scanDocument(row)
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// FindByID fetches a single document by its ID, resolving the successor link.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		SELECT ` + docSelectColumns + `
		FROM documents d
		LEFT JOIN documents s ON s.replaces_id = d.id
		WHERE d.id = $1
	`
	doc, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, classify(err)
	}
	return doc, nil
}

// List returns documents using LIMIT/OFFSET pagination and a total count,
// optionally filtered by type, newest first.
func (r *DocumentPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	const qCount = `SELECT COUNT(*) FROM documents`
	const qCountByType = `SELECT COUNT(*) FROM documents WHERE type_id = $1`
	const qList = `
		SELECT ` + docSelectColumns + `
		FROM documents d
		LEFT JOIN documents s ON s.replaces_id = d.id
		ORDER BY d.created_at DESC, d.id DESC
		LIMIT $1 OFFSET $2
	`
	const qListByType = `
		SELECT ` + docSelectColumns + `
		FROM documents d
		LEFT JOIN documents s ON s.replaces_id = d.id
		WHERE d.type_id = $1
		ORDER BY d.created_at DESC, d.id DESC
		LIMIT $2 OFFSET $3
	`

	var total int
	var err error
	if pq.TypeID != "" {
		err = r.db.QueryRowContext(ctx, qCountByType, pq.TypeID).Scan(&total)
	} else {
		err = r.db.QueryRowContext(ctx, qCount).Scan(&total)
	}
	if err != nil {
		return nil, classify(err)
	}

	var rows *sql.Rows
	if pq.TypeID != "" {
		rows, err = r.db.QueryContext(ctx, qListByType, pq.TypeID, pq.Limit, pq.Offset)
	} else {
		rows, err = r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	}
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, classify(err)
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// Update persists the mutable fields of a document. Identity, file fields,
// created_at and the version link columns are never part of the statement.
func (r *DocumentPostgres) Update(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		UPDATE documents d
		SET name = $2, type_id = $3, preview_key = $4, content = $5, updated_at = $6
		WHERE d.id = $1
		RETURNING d.id, d.name, d.type_id, d.file_key, d.file_size, d.content_type,
		          d.preview_key, d.content, d.replaces_id,
		          (SELECT s.id FROM documents s WHERE s.replaces_id = d.id),
		          d.created_at, d.updated_at
	`
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Name,
		doc.TypeID,
		nullArg(doc.PreviewKey),
		nullArg(doc.Content),
		doc.UpdatedAt,
	)
	out, err := scanDocument(row)
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// FindChain walks the version links from the given document up to its
// earliest ancestor and back down to the newest successor, returning the
// whole chain oldest first.
func (r *DocumentPostgres) FindChain(ctx context.Context, id string) ([]model.Document, error) {
	const q = `
		WITH RECURSIVE ancestors AS (
			SELECT d.id, d.replaces_id, 0 AS depth
			FROM documents d
			WHERE d.id = $1
		UNION ALL
			SELECT d.id, d.replaces_id, a.depth + 1
			FROM documents d
			JOIN ancestors a ON a.replaces_id = d.id
		),
		chain AS (
			SELECT d.id, 0 AS pos
			FROM documents d
			WHERE d.id = (SELECT id FROM ancestors ORDER BY depth DESC LIMIT 1)
		UNION ALL
			SELECT d.id, c.pos + 1
			FROM documents d
			JOIN chain c ON d.replaces_id = c.id
		)
		SELECT ` + docSelectColumns + `
		FROM chain c
		JOIN documents d ON d.id = c.id
		LEFT JOIN documents s ON s.replaces_id = d.id
		ORDER BY c.pos
	`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, classify(err)
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("version chain of %s: %w", id, repository.ErrNotFound)
	}
	return items, nil
}

// Delete loads the target row, runs every registered delete hook, and
// removes the row, all inside one transaction. A hook error or a blocking
// constraint rolls everything back.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const qSelect = `
		SELECT ` + docSelectColumns + `
		FROM documents d
		LEFT JOIN documents s ON s.replaces_id = d.id
		WHERE d.id = $1
	`
	const qDelete = `DELETE FROM documents WHERE id = $1`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	doc, err := scanDocument(tx.QueryRowContext(ctx, qSelect, id))
	if err != nil {
		return classify(err)
	}

	for _, hook := range r.hooks {
		if err := hook(ctx, doc); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, qDelete, id); err != nil {
		return classify(err)
	}
	return tx.Commit()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var d model.Document
	var previewKey, content, replacesID, replacedByID sql.NullString
	if err := row.Scan(
		&d.ID,
		&d.Name,
		&d.TypeID,
		&d.FileKey,
		&d.FileSize,
		&d.ContentType,
		&previewKey,
		&content,
		&replacesID,
		&replacedByID,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.PreviewKey = nullableString(previewKey)
	d.Content = nullableString(content)
	d.ReplacesID = nullableString(replacesID)
	d.ReplacedByID = nullableString(replacedByID)
	return &d, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// nullArg converts an optional string into a SQL parameter, mapping nil to NULL.
func nullArg(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
