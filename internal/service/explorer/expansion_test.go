package explorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "cartograph/internal/domain/models/explorer"
)

func TestFilter_ToggleRevealsChildren(t *testing.T) {
	h := BuildHierarchy(scenarioNodes())
	expanded := models.NewIDSet("Root")

	visible := h.Filter(expanded)
	assert.Equal(t, []string{"Root", "A", "C"}, VisibleIDs(visible))

	expanded = h.Toggle(expanded, "A")
	visible = h.Filter(expanded)
	assert.Equal(t, []string{"Root", "A", "B", "C"}, VisibleIDs(visible))
}

func TestFilter_CollapsedKeepsHiddenChildren(t *testing.T) {
	h := BuildHierarchy(scenarioNodes())
	visible := h.Filter(models.NewIDSet())

	require.Len(t, visible.VisibleChildren, 1, "the synthetic root is always expanded")
	root := visible.VisibleChildren[0]
	assert.Equal(t, models.BranchCollapsed, root.Branch)
	assert.Empty(t, root.VisibleChildren)
	require.Len(t, root.HiddenChildren, 2)
	assert.Equal(t, "A", root.HiddenChildren[0].ID())

	// the hierarchy itself is untouched
	src, _ := h.Lookup("Root")
	assert.Equal(t, []string{"A", "C"}, childIDs(src))
}

func TestFilter_CollapseExpandRoundTrip(t *testing.T) {
	h := BuildHierarchy(scenarioNodes())
	all := h.ExpandAll()
	before := VisibleIDs(h.Filter(all))

	collapsed := h.Toggle(all, "Root")
	assert.Equal(t, []string{"Root"}, VisibleIDs(h.Filter(collapsed)))

	restored := h.Toggle(collapsed, "Root")
	assert.Equal(t, before, VisibleIDs(h.Filter(restored)))
}

func TestToggle(t *testing.T) {
	h := BuildHierarchy(scenarioNodes())
	state := models.NewIDSet("Root")

	once := h.Toggle(state, "A")
	assert.True(t, once.Has("A"))
	assert.False(t, state.Has("A"), "toggle returns a copy")

	twice := h.Toggle(once, "A")
	assert.True(t, twice.Equal(state), "toggle is an involution")

	assert.True(t, h.Toggle(state, "B").Equal(state), "documents are not expandable")
	assert.True(t, h.Toggle(state, "nope").Equal(state))
}

func TestExpandToLevel(t *testing.T) {
	h := BuildHierarchy(scenarioNodes())

	assert.Empty(t, h.ExpandToLevel(0))
	assert.True(t, h.ExpandToLevel(1).Equal(models.NewIDSet("Root")))
	assert.True(t, h.ExpandToLevel(2).Equal(models.NewIDSet("Root", "A")))
	assert.True(t, h.ExpandToLevel(10).Equal(h.ExpandAll()))
	assert.Empty(t, h.CollapseAll())
}

func TestFilter_LeafBranch(t *testing.T) {
	h := BuildHierarchy(scenarioNodes())
	visible := h.Filter(h.ExpandAll())

	var c *models.VisibleNode
	visible.Walk(func(v *models.VisibleNode) {
		if v.ID() == "C" {
			c = v
		}
	})
	require.NotNil(t, c)
	assert.Equal(t, models.BranchLeaf, c.Branch)
	assert.Equal(t, "Root", c.Parent.ID())
}
