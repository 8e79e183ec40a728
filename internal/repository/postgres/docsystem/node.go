package docsystem

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cartograph/internal/domain"
	models "cartograph/internal/domain/models/docsystem"
	"cartograph/internal/domain/repositories"
	docsysRepo "cartograph/internal/domain/repositories/docsystem"
	"cartograph/internal/repository/postgres"
)

// PreviewLength is how many characters of document content travel with a node
const PreviewLength = 280

// PostgresNodeRepository reads a project's folders and documents as explorer nodes
type PostgresNodeRepository struct {
	pool     *pgxpool.Pool
	tables   *postgres.TableNames
	logger   *slog.Logger
	projects docsysRepo.ProjectRepository
	tx       repositories.TransactionManager
}

// NewNodeRepository creates a new node repository.
// tx should be a snapshot manager so folders and documents are read consistently.
func NewNodeRepository(config *postgres.RepositoryConfig, tx repositories.TransactionManager) *PostgresNodeRepository {
	return &PostgresNodeRepository{
		pool:     config.Pool,
		tables:   config.Tables,
		logger:   config.Logger,
		projects: NewProjectRepository(config),
		tx:       tx,
	}
}

var _ docsysRepo.NodeRepository = (*PostgresNodeRepository)(nil)

// ListByProject returns every folder and document of a project
func (r *PostgresNodeRepository) ListByProject(ctx context.Context, userID, projectID string) ([]models.DocumentNode, error) {
	var (
		folders []models.FolderRow
		docs    []models.DocumentRow
	)

	err := r.tx.ExecTx(ctx, func(ctx context.Context) error {
		if _, err := r.projects.GetByID(ctx, projectID, userID); err != nil {
			return err
		}

		var err error
		if folders, err = r.listFolders(ctx, projectID); err != nil {
			return err
		}
		docs, err = r.listDocuments(ctx, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}

	nodes := toNodes(folders, docs)
	r.logger.Debug("project nodes loaded",
		"project_id", projectID,
		"folders", len(folders),
		"documents", len(docs),
	)
	return nodes, nil
}

func (r *PostgresNodeRepository) listFolders(ctx context.Context, projectID string) ([]models.FolderRow, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, parent_id, name, updated_at
		FROM %s
		WHERE project_id = $1
		ORDER BY name, id
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	folders, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.FolderRow])
	if err != nil {
		return nil, fmt.Errorf("scan folders: %w", err)
	}
	return folders, nil
}

func (r *PostgresNodeRepository) listDocuments(ctx context.Context, projectID string) ([]models.DocumentRow, error) {
	query := fmt.Sprintf(`
		SELECT
			id,
			project_id,
			folder_id,
			name,
			left(content, %d) AS preview,
			octet_length(content)::bigint AS byte_size,
			document_type,
			tags,
			usage_count,
			relevance_score,
			updated_at
		FROM %s
		WHERE project_id = $1
		ORDER BY name, id
	`, PreviewLength, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	docs, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.DocumentRow])
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}
	return docs, nil
}

// toNodes flattens stored rows into explorer nodes. Folders come first, parents before
// children; folders unreachable from the top level (broken or cyclic parent chains)
// follow in name order, then documents.
func toNodes(folders []models.FolderRow, docs []models.DocumentRow) []models.DocumentNode {
	byID := make(map[string]*models.FolderRow, len(folders))
	children := make(map[string][]*models.FolderRow)
	var roots []*models.FolderRow
	for i := range folders {
		f := &folders[i]
		byID[f.ID] = f
	}
	for i := range folders {
		f := &folders[i]
		if f.ParentID == nil {
			roots = append(roots, f)
			continue
		}
		children[*f.ParentID] = append(children[*f.ParentID], f)
	}

	paths := make(map[string]string, len(folders))
	nodes := make([]models.DocumentNode, 0, len(folders)+len(docs))
	emitted := make(map[string]bool, len(folders))

	emit := func(f *models.FolderRow) {
		emitted[f.ID] = true
		nodes = append(nodes, models.DocumentNode{
			ID:       f.ID,
			Name:     f.Name,
			Kind:     models.NodeKindFolder,
			Path:     folderPath(f, byID, paths),
			ParentID: f.ParentID,
			Metadata: models.DocumentMetadata{LastModified: f.UpdatedAt, Tags: []string{}},
		})
	}

	queue := roots
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		if emitted[f.ID] {
			continue
		}
		emit(f)
		queue = append(queue, children[f.ID]...)
	}
	for i := range folders {
		if f := &folders[i]; !emitted[f.ID] {
			emit(f)
		}
	}

	for _, d := range docs {
		path := d.Name
		if d.FolderID != nil {
			if fp, ok := paths[*d.FolderID]; ok {
				path = fp + "/" + d.Name
			}
		}
		tags := d.Tags
		if tags == nil {
			tags = []string{}
		}
		node := models.DocumentNode{
			ID:       d.ID,
			Name:     d.Name,
			Kind:     models.NodeKindDocument,
			Path:     path,
			ParentID: d.FolderID,
			Metadata: models.DocumentMetadata{
				ByteSize:       d.ByteSize,
				LastModified:   d.UpdatedAt,
				DocumentType:   d.DocumentType,
				Tags:           tags,
				UsageCount:     d.UsageCount,
				RelevanceScore: d.RelevanceScore,
			},
		}
		if d.Preview != "" {
			node.Content = &models.DocumentContent{Preview: d.Preview}
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// folderPath joins ancestor names and records the result in paths. A cyclic chain
// stops at the first repeated folder.
func folderPath(f *models.FolderRow, byID map[string]*models.FolderRow, paths map[string]string) string {
	var names []string
	seen := make(map[string]bool)
	for cur := f; cur != nil && !seen[cur.ID]; {
		seen[cur.ID] = true
		names = append(names, cur.Name)
		if cur.ParentID == nil {
			break
		}
		cur = byID[*cur.ParentID]
	}

	slices.Reverse(names)
	p := strings.Join(names, "/")
	paths[f.ID] = p
	return p
}

// notFound maps lookups of malformed or missing IDs to domain.ErrNotFound
func notFound(kind, id string, err error) error {
	if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	return fmt.Errorf("get %s: %w", kind, err)
}
