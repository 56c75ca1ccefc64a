package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

type migrationStep struct {
	Name string
	SQL  string
}

// IDs are generated by the application, so no uuid extension is needed.
// replaces_id is UNIQUE: a document has at most one direct successor, and
// ON DELETE RESTRICT keeps replaced documents around while that successor
// exists. Same protection for document types that are still referenced.
var steps = []migrationStep{
	{
		Name: "create_table_document_types",
		SQL: `CREATE TABLE IF NOT EXISTS document_types (
  id         UUID        PRIMARY KEY,
  name       TEXT        NOT NULL UNIQUE,
  slug       TEXT        NOT NULL UNIQUE,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id           UUID        PRIMARY KEY,
  name         TEXT        NOT NULL,
  type_id      UUID        NOT NULL REFERENCES document_types (id) ON DELETE RESTRICT,
  file_key     TEXT        NOT NULL UNIQUE,
  file_size    BIGINT      NOT NULL CHECK (file_size >= 0),
  content_type TEXT        NOT NULL,
  preview_key  TEXT,
  content      TEXT,
  replaces_id  UUID        UNIQUE REFERENCES documents (id) ON DELETE RESTRICT,
  created_at   TIMESTAMPTZ NOT NULL,
  updated_at   TIMESTAMPTZ NOT NULL
);`,
	},
	{
		Name: "create_index_documents_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at DESC);`,
	},
	{
		Name: "create_index_documents_type_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_type_id ON documents (type_id);`,
	},
}

// EnsureMigrated checks whether the documents table exists and runs the
// schema steps if it does not. Steps are idempotent; a half-applied run can
// simply be repeated.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *log.Logger) error {
	start := time.Now()

	var exists bool
	query := "SELECT to_regclass('public.documents') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logger.Info("schema already exists, skipping migration",
			"duration", time.Since(start))
		return nil
	}

	logger.Info("running schema migration", "steps", len(steps))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			logger.Error("migration step failed",
				"step", step.Name,
				"err", err,
				"duration", time.Since(stepStart))
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		logger.Info("migration step applied",
			"step", step.Name,
			"duration", time.Since(stepStart))
	}

	logger.Info("schema migration finished", "duration", time.Since(start))
	return nil
}
