package postgres

import (
	"context"
	"database/sql"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// DocumentTypePostgres is a PostgreSQL implementation of repository.DocumentTypeRepository.
type DocumentTypePostgres struct {
	db *sql.DB
}

// NewDocumentTypePostgres creates a new DocumentTypePostgres repository.
func NewDocumentTypePostgres(db *sql.DB) *DocumentTypePostgres {
	return &DocumentTypePostgres{db: db}
}

var _ repository.DocumentTypeRepository = (*DocumentTypePostgres)(nil)

// Create inserts a new document type row.
func (r *DocumentTypePostgres) Create(ctx context.Context, dt *model.DocumentType) (*model.DocumentType, error) {
	const q = `
		INSERT INTO document_types (id, name, slug, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, slug, created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, q, dt.ID, dt.Name, dt.Slug, dt.CreatedAt, dt.UpdatedAt)
	out, err := scanDocumentType(row)
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// List returns all document types ordered by name.
func (r *DocumentTypePostgres) List(ctx context.Context) ([]model.DocumentType, error) {
	const q = `
		SELECT id, name, slug, created_at, updated_at
		FROM document_types
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	items := make([]model.DocumentType, 0)
	for rows.Next() {
		dt, err := scanDocumentType(rows)
		if err != nil {
			return nil, classify(err)
		}
		items = append(items, *dt)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return items, nil
}

// FindBySlug fetches a single document type by its slug.
func (r *DocumentTypePostgres) FindBySlug(ctx context.Context, slug string) (*model.DocumentType, error) {
	const q = `
		SELECT id, name, slug, created_at, updated_at
		FROM document_types
		WHERE slug = $1
	`
	dt, err := scanDocumentType(r.db.QueryRowContext(ctx, q, slug))
	if err != nil {
		return nil, classify(err)
	}
	return dt, nil
}

// Update persists a rename. The slug column is never part of the statement.
func (r *DocumentTypePostgres) Update(ctx context.Context, dt *model.DocumentType) (*model.DocumentType, error) {
	const q = `
		UPDATE document_types
		SET name = $2, updated_at = $3
		WHERE slug = $1
		RETURNING id, name, slug, created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, q, dt.Slug, dt.Name, dt.UpdatedAt)
	out, err := scanDocumentType(row)
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// Delete removes a document type by slug. Deleting a type still referenced
// by documents is blocked by the foreign key constraint.
func (r *DocumentTypePostgres) Delete(ctx context.Context, slug string) error {
	const q = `DELETE FROM document_types WHERE slug = $1`
	res, err := r.db.ExecContext(ctx, q, slug)
	if err != nil {
		return classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanDocumentType(row rowScanner) (*model.DocumentType, error) {
	var dt model.DocumentType
	if err := row.Scan(
		&dt.ID,
		&dt.Name,
		&dt.Slug,
		&dt.CreatedAt,
		&dt.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &dt, nil
}
