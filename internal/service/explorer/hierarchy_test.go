package explorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartograph/internal/domain/models/docsystem"
	models "cartograph/internal/domain/models/explorer"
)

func TestBuildHierarchy_ShapeAndDepth(t *testing.T) {
	h := BuildHierarchy(scenarioNodes())

	assert.Equal(t, models.SyntheticRootID, h.Root.ID())
	assert.Equal(t, -1, h.Root.Depth)
	assert.Equal(t, []string{"Root"}, childIDs(h.Root))

	root, ok := h.Lookup("Root")
	require.True(t, ok)
	assert.Equal(t, 0, root.Depth)
	assert.Equal(t, []string{"A", "C"}, childIDs(root), "siblings keep input order")

	b, ok := h.Lookup("B")
	require.True(t, ok)
	assert.Equal(t, 2, b.Depth)
	assert.Equal(t, "A", b.Parent.ID())

	assert.Equal(t, 4, h.Len())
	assert.Equal(t, 2, h.MaxDepth())
	assert.Equal(t, []string{"Root", "A"}, h.FolderIDs())
	assert.Equal(t, models.BuildStats{Nodes: 4}, h.Stats)
}

func TestBuildHierarchy_OrphansGoTopLevel(t *testing.T) {
	h := BuildHierarchy([]docsystem.DocumentNode{
		folder("F", ""),
		doc("lost", "missing"),
		doc("self", "self"),
	})

	assert.Equal(t, []string{"F", "lost", "self"}, childIDs(h.Root))
	assert.Equal(t, 2, h.Stats.Orphans)
	lost, _ := h.Lookup("lost")
	assert.Equal(t, 0, lost.Depth)
}

func TestBuildHierarchy_DuplicatesFirstWins(t *testing.T) {
	first := doc("X", "")
	first.Name = "first"
	second := doc("X", "")
	second.Name = "second"

	h := BuildHierarchy([]docsystem.DocumentNode{first, second})

	assert.Equal(t, 1, h.Len())
	assert.Equal(t, 1, h.Stats.Duplicates)
	x, _ := h.Lookup("X")
	assert.Equal(t, "first", x.Name())
}

func TestBuildHierarchy_BreaksCycles(t *testing.T) {
	h := BuildHierarchy([]docsystem.DocumentNode{
		folder("A", "B"),
		folder("B", "A"),
		doc("d", "A"),
	})

	assert.Equal(t, 1, h.Stats.CyclesBroken)
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, []string{"B"}, childIDs(h.Root))

	b, _ := h.Lookup("B")
	assert.Equal(t, []string{"A"}, childIDs(b))
	d, _ := h.Lookup("d")
	assert.Equal(t, 2, d.Depth)

	// every node is reachable from the root exactly once
	seen := map[string]int{}
	h.Root.Walk(func(n *models.HierarchyNode) bool {
		seen[n.ID()]++
		return true
	})
	assert.Equal(t, map[string]int{models.SyntheticRootID: 1, "A": 1, "B": 1, "d": 1}, seen)
}

func TestBuildHierarchy_Empty(t *testing.T) {
	h := BuildHierarchy(nil)
	assert.True(t, h.Empty())
	assert.Empty(t, h.Root.Children)
	assert.Equal(t, 0, h.MaxDepth())
}

func TestFingerprint(t *testing.T) {
	a := scenarioNodes()
	b := scenarioNodes()
	assert.Equal(t, Fingerprint(a), Fingerprint(b))

	b[2].Name = "renamed"
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))

	c := scenarioNodes()
	c[3].Metadata.UsageCount = 42
	assert.Equal(t, Fingerprint(a), Fingerprint(c), "metadata doesn't shape the tree")
}
