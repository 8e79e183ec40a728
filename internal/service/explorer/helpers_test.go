package explorer

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"cartograph/internal/config"
	"cartograph/internal/domain/models/docsystem"
	models "cartograph/internal/domain/models/explorer"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *config.ExplorerConfig {
	t.Helper()
	return config.DefaultExplorerConfig()
}

func folder(id string, parent string) docsystem.DocumentNode {
	return node(id, docsystem.NodeKindFolder, parent)
}

func doc(id string, parent string) docsystem.DocumentNode {
	return node(id, docsystem.NodeKindDocument, parent)
}

func node(id string, kind docsystem.NodeKind, parent string) docsystem.DocumentNode {
	n := docsystem.DocumentNode{ID: id, Name: id, Kind: kind, Path: id}
	if parent != "" {
		p := parent
		n.ParentID = &p
	}
	return n
}

// scenarioNodes is Root > {A > {B}, C}
func scenarioNodes() []docsystem.DocumentNode {
	return []docsystem.DocumentNode{
		folder("Root", ""),
		folder("A", "Root"),
		doc("B", "A"),
		doc("C", "Root"),
	}
}

func childIDs(n *models.HierarchyNode) []string {
	ids := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		ids = append(ids, c.ID())
	}
	return ids
}

func frameIDs(frame models.Frame) []string {
	ids := make([]string, 0, len(frame.Nodes))
	for _, n := range frame.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

func renderIDs(nodes []models.RenderNode) []string {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids
}
