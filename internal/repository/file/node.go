package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"cartograph/internal/domain"
	models "cartograph/internal/domain/models/docsystem"
	docsysRepo "cartograph/internal/domain/repositories/docsystem"
)

// Extensions are tried in this order; JSON is read through the YAML decoder
var Extensions = []string{".yaml", ".yml", ".json"}

// Collection is the on-disk shape of a project file. A file may also be a bare
// list of nodes, in which case it has no owner.
type Collection struct {
	Owner string                `yaml:"owner,omitempty"`
	Nodes []models.DocumentNode `yaml:"nodes"`
}

// NodeRepository serves projects from <dir>/<project>.yaml
type NodeRepository struct {
	dir    string
	logger *slog.Logger
}

// NewNodeRepository creates a file-backed node repository rooted at dir
func NewNodeRepository(dir string, logger *slog.Logger) *NodeRepository {
	return &NodeRepository{dir: dir, logger: logger}
}

var _ docsysRepo.NodeRepository = (*NodeRepository)(nil)

// Dir is the directory project files are read from
func (r *NodeRepository) Dir() string {
	return r.dir
}

// ListByProject reads the project's file on every call. A file with an owner is
// only visible to that user.
func (r *NodeRepository) ListByProject(ctx context.Context, userID, projectID string) ([]models.DocumentNode, error) {
	if !validProjectID(projectID) {
		return nil, fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := r.locate(projectID)
	if err != nil {
		return nil, err
	}

	coll, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if coll.Owner != "" && coll.Owner != userID {
		return nil, fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
	}

	r.logger.Debug("project file loaded", "project_id", projectID, "path", path, "nodes", len(coll.Nodes))
	return coll.Nodes, nil
}

func (r *NodeRepository) locate(projectID string) (string, error) {
	for _, ext := range Extensions {
		path := filepath.Join(r.dir, projectID+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat project file: %w", err)
		}
	}
	return "", fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
}

// LoadFile parses a project file
func LoadFile(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	coll, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return coll, nil
}

// Parse decodes a collection document or a bare node list
func Parse(data []byte) (*Collection, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	coll := &Collection{}
	if len(root.Content) == 0 {
		coll.Nodes = []models.DocumentNode{}
		return coll, nil
	}

	doc := root.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&coll.Nodes); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		if err := doc.Decode(coll); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: expected a node list or a mapping with nodes", domain.ErrValidation)
	}
	if coll.Nodes == nil {
		coll.Nodes = []models.DocumentNode{}
	}
	return coll, nil
}

// Encode renders a collection as YAML
func Encode(coll *Collection) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(coll); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ProjectIDFromPath returns the project a file in the nodes directory belongs to
func ProjectIDFromPath(path string) (string, bool) {
	base := filepath.Base(path)
	for _, ext := range Extensions {
		if id, ok := strings.CutSuffix(base, ext); ok && validProjectID(id) {
			return id, true
		}
	}
	return "", false
}

func validProjectID(id string) bool {
	if id == "" || id == "." || id == ".." || strings.HasPrefix(id, ".") {
		return false
	}
	return !strings.ContainsAny(id, `/\`)
}
