package docsystem

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	models "cartograph/internal/domain/models/docsystem"
	"cartograph/internal/domain/repositories"
	docsysRepo "cartograph/internal/domain/repositories/docsystem"
	"cartograph/internal/repository/postgres"
)

// PostgresNodeWriter stores node collections into the folders and documents tables
type PostgresNodeWriter struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
	tx     repositories.TransactionManager
}

// NewNodeWriter creates a node writer; tx must allow writes
func NewNodeWriter(config *postgres.RepositoryConfig, tx repositories.TransactionManager) *PostgresNodeWriter {
	return &PostgresNodeWriter{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
		tx:     tx,
	}
}

var _ docsysRepo.NodeWriter = (*PostgresNodeWriter)(nil)

// StorageID maps a node ID to the UUID it is stored under. UUIDs are kept as-is;
// anything else gets a name-based UUID scoped to the project.
func StorageID(projectID, nodeID string) string {
	if id, err := uuid.Parse(nodeID); err == nil {
		return id.String()
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("cartograph:"+projectID+"/"+nodeID)).String()
}

// ReplaceProject rewrites a project's collection in one transaction
func (w *PostgresNodeWriter) ReplaceProject(ctx context.Context, projectID string, nodes []models.DocumentNode) (int, error) {
	folders, docs := planRows(projectID, nodes)

	err := w.tx.ExecTx(ctx, func(ctx context.Context) error {
		executor := postgres.GetExecutor(ctx, w.pool)

		// Documents reference folders with ON DELETE SET NULL; drop them first
		if _, err := executor.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE project_id = $1`, w.tables.Documents), projectID); err != nil {
			return fmt.Errorf("clear documents: %w", err)
		}
		if _, err := executor.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE project_id = $1`, w.tables.Folders), projectID); err != nil {
			return fmt.Errorf("clear folders: %w", err)
		}

		insertFolder := fmt.Sprintf(`
			INSERT INTO %s (id, project_id, parent_id, name, updated_at)
			VALUES ($1, $2, $3, $4, COALESCE($5, NOW()))
		`, w.tables.Folders)
		for _, f := range folders {
			if _, err := executor.Exec(ctx, insertFolder, f.ID, projectID, f.ParentID, f.Name, nullTime(f.UpdatedAt)); err != nil {
				return fmt.Errorf("insert folder %s: %w", f.Name, err)
			}
		}

		insertDocument := fmt.Sprintf(`
			INSERT INTO %s (id, project_id, folder_id, name, content, document_type, tags, usage_count, relevance_score, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, NOW()))
		`, w.tables.Documents)
		for _, d := range docs {
			if _, err := executor.Exec(ctx, insertDocument,
				d.ID, projectID, d.FolderID, d.Name, d.Preview, d.DocumentType,
				d.Tags, d.UsageCount, d.RelevanceScore, nullTime(d.UpdatedAt),
			); err != nil {
				return fmt.Errorf("insert document %s: %w", d.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	w.logger.Info("project collection replaced",
		"project_id", projectID,
		"folders", len(folders),
		"documents", len(docs),
	)
	return len(folders) + len(docs), nil
}

// planRows converts nodes into insertable rows. Folders are ordered parents first;
// a folder whose parent is missing, not a folder, or part of a cycle is stored at the
// top level. Duplicate IDs keep the first occurrence.
func planRows(projectID string, nodes []models.DocumentNode) ([]models.FolderRow, []models.DocumentRow) {
	folderNodes := make(map[string]*models.DocumentNode)
	var folderOrder []string
	seen := make(map[string]bool, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		if n.IsFolder() {
			folderNodes[n.ID] = n
			folderOrder = append(folderOrder, n.ID)
		}
	}

	parentOf := func(n *models.DocumentNode) (string, bool) {
		if n.ParentID == nil || *n.ParentID == n.ID {
			return "", false
		}
		_, ok := folderNodes[*n.ParentID]
		return *n.ParentID, ok
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(folderNodes))
	detached := make(map[string]bool)
	var ordered []string
	var visit func(id string)
	visit = func(id string) {
		state[id] = visiting
		if pid, ok := parentOf(folderNodes[id]); ok {
			switch state[pid] {
			case unvisited:
				visit(pid)
			case visiting:
				detached[id] = true
			}
		}
		state[id] = done
		ordered = append(ordered, id)
	}
	for _, id := range folderOrder {
		if state[id] == unvisited {
			visit(id)
		}
	}

	folders := make([]models.FolderRow, 0, len(ordered))
	for _, id := range ordered {
		n := folderNodes[id]
		row := models.FolderRow{
			ID:        StorageID(projectID, id),
			ProjectID: projectID,
			Name:      n.Name,
			UpdatedAt: n.Metadata.LastModified,
		}
		if pid, ok := parentOf(n); ok && !detached[id] {
			sid := StorageID(projectID, pid)
			row.ParentID = &sid
		}
		folders = append(folders, row)
	}

	var docs []models.DocumentRow
	seen = make(map[string]bool, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		if n.IsFolder() {
			continue
		}
		row := models.DocumentRow{
			ID:             StorageID(projectID, n.ID),
			ProjectID:      projectID,
			Name:           n.Name,
			DocumentType:   n.Metadata.DocumentType,
			Tags:           n.Metadata.Tags,
			UsageCount:     n.Metadata.UsageCount,
			RelevanceScore: n.Metadata.RelevanceScore,
			UpdatedAt:      n.Metadata.LastModified,
		}
		if row.DocumentType == "" {
			row.DocumentType = "markdown"
		}
		if row.Tags == nil {
			row.Tags = []string{}
		}
		if n.Content != nil {
			row.Preview = n.Content.Preview
		}
		if pid, ok := parentOf(n); ok {
			sid := StorageID(projectID, pid)
			row.FolderID = &sid
		}
		docs = append(docs, row)
	}
	return folders, docs
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
