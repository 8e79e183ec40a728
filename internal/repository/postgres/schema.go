package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the explorer tables and indexes if they don't exist
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, prefix string) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				user_id UUID NOT NULL,
				name TEXT NOT NULL,
				created_at TIMESTAMPTZ DEFAULT NOW(),
				deleted_at TIMESTAMPTZ
			)`, tables.Projects),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				project_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				parent_id UUID REFERENCES %s(id) ON DELETE CASCADE,
				name TEXT NOT NULL,
				created_at TIMESTAMPTZ DEFAULT NOW(),
				updated_at TIMESTAMPTZ DEFAULT NOW()
			)`, tables.Folders, tables.Projects, tables.Folders),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				project_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				folder_id UUID REFERENCES %s(id) ON DELETE SET NULL,
				name TEXT NOT NULL,
				content TEXT NOT NULL DEFAULT '',
				document_type TEXT NOT NULL DEFAULT 'markdown',
				tags TEXT[] NOT NULL DEFAULT '{}',
				usage_count INTEGER NOT NULL DEFAULT 0,
				relevance_score DOUBLE PRECISION,
				created_at TIMESTAMPTZ DEFAULT NOW(),
				updated_at TIMESTAMPTZ DEFAULT NOW()
			)`, tables.Documents, tables.Projects, tables.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%sfolders_project_parent ON %s(project_id, parent_id)`, prefix, tables.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%sdocuments_project_folder ON %s(project_id, folder_id)`, prefix, tables.Documents),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
