package postgres

import (
	"context"
	"fmt"
)

// Schema returns the DDL for all tables under the configured prefix
func Schema(t *TableNames) []string {
	return []string{
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			email TEXT,
			image TEXT,
			subscription TEXT NOT NULL DEFAULT 'FREE'
				CHECK (subscription IN ('FREE', 'PRO', 'ENTERPRISE')),
			is_anonymous BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, t.Users),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			owner_id TEXT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			content JSONB NOT NULL,
			published BOOLEAN NOT NULL DEFAULT FALSE,
			submissions INTEGER NOT NULL DEFAULT 0 CHECK (submissions >= 0),
			share_token TEXT UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, t.Forms, t.Users),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_owner_idx ON %s (owner_id, created_at DESC)`, t.Forms, t.Forms),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			form_id BIGINT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			content JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, t.Submissions, t.Forms),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_form_idx ON %s (form_id, created_at DESC)`, t.Submissions, t.Submissions),
	}
}

// Migrate applies Schema using the executor in ctx (or the pool)
func Migrate(ctx context.Context, config *RepositoryConfig) error {
	executor := GetExecutor(ctx, config.Pool)
	for _, stmt := range Schema(config.Tables) {
		if _, err := executor.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// DropAll drops every table in reverse dependency order
func DropAll(ctx context.Context, config *RepositoryConfig) error {
	executor := GetExecutor(ctx, config.Pool)
	for _, table := range []string{config.Tables.Submissions, config.Tables.Forms, config.Tables.Users} {
		if _, err := executor.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}

// ClearData truncates every table, keeping the schema
func ClearData(ctx context.Context, config *RepositoryConfig) error {
	query := fmt.Sprintf("TRUNCATE %s, %s, %s RESTART IDENTITY CASCADE",
		config.Tables.Submissions, config.Tables.Forms, config.Tables.Users)
	if _, err := GetExecutor(ctx, config.Pool).Exec(ctx, query); err != nil {
		return fmt.Errorf("clear data: %w", err)
	}
	return nil
}
