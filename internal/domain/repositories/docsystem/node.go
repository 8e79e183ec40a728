package docsystem

import (
	"context"

	"cartograph/internal/domain/models/docsystem"
)

// NodeRepository supplies the flat document list the explorer is built from
type NodeRepository interface {
	// ListByProject returns every folder and document of a project, parents before
	// children where the store allows, as explorer nodes.
	// userID is used for authorization; returns domain.ErrNotFound for unknown projects.
	ListByProject(ctx context.Context, userID, projectID string) ([]docsystem.DocumentNode, error)
}

// NodeWriter replaces a project's stored collection (seeding and imports)
type NodeWriter interface {
	// ReplaceProject deletes the project's folders and documents and inserts nodes.
	// Node IDs are mapped to stable storage IDs; nodes whose parent is not a folder
	// are stored at the top level. Returns the number of rows written.
	ReplaceProject(ctx context.Context, projectID string, nodes []docsystem.DocumentNode) (int, error)
}
