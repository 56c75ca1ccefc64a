package postgres

import (
	"context"
	"testing"
	"time"

	"docvault/internal/model"
	"docvault/internal/repository"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var typeColumns = []string{"id", "name", "slug", "created_at", "updated_at"}

func TestDocumentTypePostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentTypePostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("inserts a new type", func(t *testing.T) {
		dt := model.NewDocumentType("Delivery Note", now)

		rows := sqlmock.NewRows(typeColumns).
			AddRow(dt.ID, dt.Name, dt.Slug, now, now)

		mock.ExpectQuery("INSERT INTO document_types").
			WithArgs(dt.ID, dt.Name, dt.Slug, now, now).
			WillReturnRows(rows)

		result, err := repo.Create(ctx, dt)

		assert.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, "delivery-note", result.Slug)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate name maps to ErrDuplicateKey", func(t *testing.T) {
		dt := model.NewDocumentType("Delivery Note", now)

		mock.ExpectQuery("INSERT INTO document_types").
			WillReturnError(&pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "document_types_name_key",
			})

		result, err := repo.Create(ctx, dt)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, repository.ErrDuplicateKey)
	})
}

func TestDocumentTypePostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentTypePostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	rows := sqlmock.NewRows(typeColumns).
		AddRow("id-1", "Contract", "contract", now, now).
		AddRow("id-2", "Invoice", "invoice", now, now)

	mock.ExpectQuery("SELECT (.+) FROM document_types ORDER BY name").
		WillReturnRows(rows)

	items, err := repo.List(ctx)

	assert.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "contract", items[0].Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentTypePostgres_FindBySlug(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentTypePostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(typeColumns).
			AddRow("id-1", "Invoice", "invoice", now, now)

		mock.ExpectQuery("SELECT (.+) FROM document_types WHERE slug").
			WithArgs("invoice").
			WillReturnRows(rows)

		dt, err := repo.FindBySlug(ctx, "invoice")

		assert.NoError(t, err)
		require.NotNil(t, dt)
		assert.Equal(t, "Invoice", dt.Name)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM document_types WHERE slug").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(typeColumns))

		dt, err := repo.FindBySlug(ctx, "missing")

		assert.Nil(t, dt)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestDocumentTypePostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentTypePostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("renames without touching the slug", func(t *testing.T) {
		dt := &model.DocumentType{
			ID:         "id-1",
			Name:       "Remittance Advice",
			Slug:       "invoice",
			Timestamps: model.Timestamps{CreatedAt: now.Add(-time.Hour), UpdatedAt: now},
		}

		rows := sqlmock.NewRows(typeColumns).
			AddRow(dt.ID, dt.Name, dt.Slug, dt.CreatedAt, now)

		mock.ExpectQuery("UPDATE document_types SET name").
			WithArgs(dt.Slug, dt.Name, now).
			WillReturnRows(rows)

		result, err := repo.Update(ctx, dt)

		assert.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, "Remittance Advice", result.Name)
		assert.Equal(t, "invoice", result.Slug)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("UPDATE document_types SET name").
			WillReturnRows(sqlmock.NewRows(typeColumns))

		result, err := repo.Update(ctx, &model.DocumentType{Slug: "missing"})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestDocumentTypePostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentTypePostgres(db)
	ctx := context.Background()

	t.Run("deletes unreferenced type", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM document_types WHERE slug").
			WithArgs("invoice").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, "invoice"))
	})

	t.Run("referenced type is blocked", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM document_types WHERE slug").
			WithArgs("invoice").
			WillReturnError(&pgconn.PgError{
				Code:           pgerrcode.ForeignKeyViolation,
				ConstraintName: "documents_type_id_fkey",
			})

		err := repo.Delete(ctx, "invoice")

		assert.ErrorIs(t, err, repository.ErrReferentialIntegrity)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM document_types WHERE slug").
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(ctx, "missing")

		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}
