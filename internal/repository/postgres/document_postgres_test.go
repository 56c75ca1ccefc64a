package postgres

import (
	"context"
	"errors"
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

var docColumns = []string{
	"id", "name", "type_id", "file_key", "file_size", "content_type",
	"preview_key", "content", "replaces_id", "replaced_by_id",
	"created_at", "updated_at",
}

func TestDocumentPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("inserts all fields", func(t *testing.T) {
		content := "extracted text"
		doc := &model.Document{
			ID:          "doc-id",
			Name:        "Invoice March",
			TypeID:      "type-id",
			FileKey:     "documents/file-id.pdf",
			FileSize:    123,
			ContentType: "application/pdf",
			Content:     &content,
			Timestamps:  model.NewTimestamps(now),
		}

		rows := sqlmock.NewRows(docColumns).
			AddRow(doc.ID, doc.Name, doc.TypeID, doc.FileKey, doc.FileSize, doc.ContentType,
				nil, content, nil, nil, now, now)

		mock.ExpectQuery("INSERT INTO documents").
			WithArgs(doc.ID, doc.Name, doc.TypeID, doc.FileKey, doc.FileSize, doc.ContentType,
				nil, content, nil, now, now).
			WillReturnRows(rows)

		result, err := repo.Create(ctx, doc)

		assert.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, doc.ID, result.ID)
		assert.Nil(t, result.PreviewKey)
		require.NotNil(t, result.Content)
		assert.Equal(t, content, *result.Content)
		assert.Nil(t, result.ReplacesID)
		assert.True(t, result.IsLatestVersion())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate successor link maps to ErrDuplicateKey", func(t *testing.T) {
		prior := "prior-id"
		doc := &model.Document{
			ID:          "doc-id-2",
			Name:        "Invoice March",
			TypeID:      "type-id",
			FileKey:     "documents/file-id-2.pdf",
			FileSize:    123,
			ContentType: "application/pdf",
			ReplacesID:  &prior,
			Timestamps:  model.NewTimestamps(now),
		}

		mock.ExpectQuery("INSERT INTO documents").
			WillReturnError(&pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "documents_replaces_id_key",
			})

		result, err := repo.Create(ctx, doc)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, repository.ErrDuplicateKey)
		assert.Contains(t, err.Error(), "documents_replaces_id_key")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDocumentPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("found with successor", func(t *testing.T) {
		rows := sqlmock.NewRows(docColumns).
			AddRow("doc-id", "Invoice", "type-id", "documents/f.pdf", 10, "application/pdf",
				"preview/f.jpg", nil, nil, "successor-id", now, now)

		mock.ExpectQuery("SELECT (.+) FROM documents d LEFT JOIN documents s").
			WithArgs("doc-id").
			WillReturnRows(rows)

		doc, err := repo.FindByID(ctx, "doc-id")

		assert.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, "doc-id", doc.ID)
		require.NotNil(t, doc.ReplacedByID)
		assert.Equal(t, "successor-id", *doc.ReplacedByID)
		assert.False(t, doc.IsLatestVersion())
		assert.True(t, doc.HasPreview())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents d LEFT JOIN documents s").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(docColumns))

		doc, err := repo.FindByID(ctx, "missing")

		assert.Nil(t, doc)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestDocumentPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("unfiltered", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM documents`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		rows := sqlmock.NewRows(docColumns).
			AddRow("doc-2", "Newer", "type-id", "documents/b.pdf", 20, "application/pdf",
				nil, nil, nil, nil, now, now).
			AddRow("doc-1", "Older", "type-id", "documents/a.pdf", 10, "application/pdf",
				nil, nil, nil, nil, now.Add(-time.Hour), now.Add(-time.Hour))

		mock.ExpectQuery("SELECT (.+) FROM documents d LEFT JOIN documents s (.+) ORDER BY").
			WithArgs(10, 0).
			WillReturnRows(rows)

		res, err := repo.List(ctx, repository.PageQuery{Limit: 10, Offset: 0})

		assert.NoError(t, err)
		assert.Equal(t, 2, res.Total)
		require.Len(t, res.Items, 2)
		assert.Equal(t, "doc-2", res.Items[0].ID)
	})

	t.Run("filtered by type", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM documents WHERE type_id`).
			WithArgs("type-id").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		rows := sqlmock.NewRows(docColumns).
			AddRow("doc-1", "Only", "type-id", "documents/a.pdf", 10, "application/pdf",
				nil, nil, nil, nil, now, now)

		mock.ExpectQuery("SELECT (.+) FROM documents d LEFT JOIN documents s (.+) WHERE d.type_id").
			WithArgs("type-id", 5, 0).
			WillReturnRows(rows)

		res, err := repo.List(ctx, repository.PageQuery{Limit: 5, Offset: 0, TypeID: "type-id"})

		assert.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		require.Len(t, res.Items, 1)
	})
}

func TestDocumentPostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("persists mutable fields only", func(t *testing.T) {
		preview := "preview/f.jpg"
		doc := &model.Document{
			ID:          "doc-id",
			Name:        "Renamed",
			TypeID:      "type-id",
			FileKey:     "documents/f.pdf",
			FileSize:    10,
			ContentType: "application/pdf",
			PreviewKey:  &preview,
			Timestamps:  model.Timestamps{CreatedAt: now.Add(-time.Hour), UpdatedAt: now},
		}

		rows := sqlmock.NewRows(docColumns).
			AddRow(doc.ID, doc.Name, doc.TypeID, doc.FileKey, doc.FileSize, doc.ContentType,
				preview, nil, nil, nil, doc.CreatedAt, now)

		mock.ExpectQuery("UPDATE documents d SET name").
			WithArgs(doc.ID, doc.Name, doc.TypeID, preview, nil, now).
			WillReturnRows(rows)

		result, err := repo.Update(ctx, doc)

		assert.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, "Renamed", result.Name)
		assert.Equal(t, doc.CreatedAt, result.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("UPDATE documents d SET name").
			WillReturnRows(sqlmock.NewRows(docColumns))

		result, err := repo.Update(ctx, &model.Document{ID: "missing"})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestDocumentPostgres_FindChain(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("returns the chain oldest first", func(t *testing.T) {
		rows := sqlmock.NewRows(docColumns).
			AddRow("v1", "Doc", "type-id", "documents/v1.pdf", 10, "application/pdf",
				nil, nil, nil, "v2", now.Add(-2*time.Hour), now.Add(-2*time.Hour)).
			AddRow("v2", "Doc", "type-id", "documents/v2.pdf", 11, "application/pdf",
				nil, nil, "v1", "v3", now.Add(-time.Hour), now.Add(-time.Hour)).
			AddRow("v3", "Doc", "type-id", "documents/v3.pdf", 12, "application/pdf",
				nil, nil, "v2", nil, now, now)

		mock.ExpectQuery("WITH RECURSIVE ancestors").
			WithArgs("v2").
			WillReturnRows(rows)

		chain, err := repo.FindChain(ctx, "v2")

		assert.NoError(t, err)
		require.Len(t, chain, 3)
		assert.Equal(t, "v1", chain[0].ID)
		assert.Equal(t, "v3", chain[2].ID)
		assert.True(t, chain[2].IsLatestVersion())
		assert.False(t, chain[0].IsLatestVersion())
	})

	t.Run("unknown id", func(t *testing.T) {
		mock.ExpectQuery("WITH RECURSIVE ancestors").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(docColumns))

		chain, err := repo.FindChain(ctx, "missing")

		assert.Nil(t, chain)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestDocumentPostgres_Delete(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	newMock := func(t *testing.T) (*DocumentPostgres, sqlmock.Sqlmock) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		return NewDocumentPostgres(db), mock
	}

	selectPattern := "SELECT (.+) FROM documents d LEFT JOIN documents s"

	t.Run("deletes inside a transaction", func(t *testing.T) {
		repo, mock := newMock(t)

		rows := sqlmock.NewRows(docColumns).
			AddRow("doc-id", "Doc", "type-id", "documents/f.pdf", 10, "application/pdf",
				nil, nil, nil, nil, now, now)

		mock.ExpectBegin()
		mock.ExpectQuery(selectPattern).WithArgs("doc-id").WillReturnRows(rows)
		mock.ExpectExec("DELETE FROM documents WHERE id").
			WithArgs("doc-id").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Delete(ctx, "doc-id")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("hooks run before the row is removed", func(t *testing.T) {
		repo, mock := newMock(t)

		var seen *model.Document
		repo.RegisterDeleteHook(func(ctx context.Context, doc *model.Document) error {
			seen = doc
			return nil
		})

		rows := sqlmock.NewRows(docColumns).
			AddRow("doc-id", "Doc", "type-id", "documents/f.pdf", 10, "application/pdf",
				nil, nil, nil, nil, now, now)

		mock.ExpectBegin()
		mock.ExpectQuery(selectPattern).WithArgs("doc-id").WillReturnRows(rows)
		mock.ExpectExec("DELETE FROM documents WHERE id").
			WithArgs("doc-id").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Delete(ctx, "doc-id")

		assert.NoError(t, err)
		require.NotNil(t, seen)
		assert.Equal(t, "doc-id", seen.ID)
		assert.Equal(t, now, seen.CreatedAt)
	})

	t.Run("hook refusal rolls back without deleting", func(t *testing.T) {
		repo, mock := newMock(t)

		refusal := errors.New("protected")
		repo.RegisterDeleteHook(func(ctx context.Context, doc *model.Document) error {
			return refusal
		})

		rows := sqlmock.NewRows(docColumns).
			AddRow("doc-id", "Doc", "type-id", "documents/f.pdf", 10, "application/pdf",
				nil, nil, nil, nil, now, now)

		mock.ExpectBegin()
		mock.ExpectQuery(selectPattern).WithArgs("doc-id").WillReturnRows(rows)
		mock.ExpectRollback()

		err := repo.Delete(ctx, "doc-id")

		assert.ErrorIs(t, err, refusal)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectBegin()
		mock.ExpectQuery(selectPattern).WithArgs("missing").WillReturnRows(sqlmock.NewRows(docColumns))
		mock.ExpectRollback()

		err := repo.Delete(ctx, "missing")

		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("successor blocks deletion", func(t *testing.T) {
		repo, mock := newMock(t)

		rows := sqlmock.NewRows(docColumns).
			AddRow("doc-id", "Doc", "type-id", "documents/f.pdf", 10, "application/pdf",
				nil, nil, nil, "successor-id", now, now)

		mock.ExpectBegin()
		mock.ExpectQuery(selectPattern).WithArgs("doc-id").WillReturnRows(rows)
		mock.ExpectExec("DELETE FROM documents WHERE id").
			WithArgs("doc-id").
			WillReturnError(&pgconn.PgError{
				Code:           pgerrcode.ForeignKeyViolation,
				ConstraintName: "documents_replaces_id_fkey",
			})
		mock.ExpectRollback()

		err := repo.Delete(ctx, "doc-id")

		assert.ErrorIs(t, err, repository.ErrReferentialIntegrity)
	})
}
