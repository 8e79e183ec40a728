package docsystem

import (
	"context"

	"cartograph/internal/domain/models/docsystem"
)

// ProjectRepository defines data access operations for projects
type ProjectRepository interface {
	// GetByID retrieves a live project owned by userID.
	// Returns domain.ErrNotFound when it does not exist or belongs to someone else.
	GetByID(ctx context.Context, id, userID string) (*docsystem.Project, error)

	// Upsert creates the project or renames it if the ID already exists
	Upsert(ctx context.Context, project *docsystem.Project) error
}
