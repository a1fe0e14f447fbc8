package repository

import (
	"context"
	"fmt"

	"knowledge-qa/internal/domain"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		content     TEXT NOT NULL,
		file_size   BIGINT NOT NULL,
		uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS documents_uploaded_at_idx ON documents (uploaded_at)`,
	`CREATE TABLE IF NOT EXISTS qa_history (
		id       TEXT PRIMARY KEY,
		question TEXT NOT NULL,
		answer   TEXT NOT NULL,
		sources  JSONB NOT NULL DEFAULT '[]'::jsonb,
		asked_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS qa_history_asked_at_idx ON qa_history (asked_at DESC)`,
}

// EnsureSchema creates the tables in one transaction if they do not exist.
func EnsureSchema(ctx context.Context, db PgxIface, tm domain.TransactionManager) error {
	return tm.RunInTx(ctx, func(ctx context.Context) error {
		exec := getExecutor(ctx, db)
		for _, stmt := range schemaStatements {
			if _, err := exec.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
		}
		return nil
	})
}
