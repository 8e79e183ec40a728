package explorer

import (
	"slices"

	models "cartograph/internal/domain/models/explorer"
)

// Filter projects the hierarchy under an expansion state.
// Folders present in expanded show their children; every other node with children is
// collapsed and keeps them, untouched, in HiddenChildren. The hierarchy is never modified.
func (h *Hierarchy) Filter(expanded models.ExpansionState) *models.VisibleNode {
	return project(h.Root, nil, expanded)
}

func project(n *models.HierarchyNode, parent *models.VisibleNode, expanded models.ExpansionState) *models.VisibleNode {
	v := &models.VisibleNode{Source: n, Parent: parent}

	switch {
	case len(n.Children) == 0:
		v.Branch = models.BranchLeaf
	case n.IsSynthetic() || (n.IsFolder() && expanded.Has(n.ID())):
		v.Branch = models.BranchExpanded
		v.VisibleChildren = make([]*models.VisibleNode, 0, len(n.Children))
		for _, child := range n.Children {
			v.VisibleChildren = append(v.VisibleChildren, project(child, v, expanded))
		}
	default:
		v.Branch = models.BranchCollapsed
		v.HiddenChildren = slices.Clone(n.Children)
	}

	return v
}

// Toggle returns a copy of state with id's membership flipped.
// Unknown IDs and non-folder nodes leave the state unchanged.
func (h *Hierarchy) Toggle(state models.ExpansionState, id string) models.ExpansionState {
	next := state.Clone()
	node, ok := h.Lookup(id)
	if !ok || !node.IsFolder() {
		return next
	}
	if next.Has(id) {
		next.Remove(id)
	} else {
		next.Add(id)
	}
	return next
}

// ExpandToLevel returns a state in which exactly the folders with depth < level are expanded
func (h *Hierarchy) ExpandToLevel(level int) models.ExpansionState {
	state := models.NewIDSet()
	h.Root.Walk(func(n *models.HierarchyNode) bool {
		if n.IsSynthetic() {
			return true
		}
		if n.Depth >= level {
			return false
		}
		if n.IsFolder() {
			state.Add(n.ID())
		}
		return true
	})
	return state
}

// ExpandAll returns a state with every folder expanded
func (h *Hierarchy) ExpandAll() models.ExpansionState {
	return models.NewIDSet(h.FolderIDs()...)
}

// CollapseAll returns the empty state
func (h *Hierarchy) CollapseAll() models.ExpansionState {
	return models.NewIDSet()
}

// VisibleIDs lists the real nodes of a projection in depth-first order
func VisibleIDs(root *models.VisibleNode) []string {
	var ids []string
	root.Walk(func(v *models.VisibleNode) {
		if !v.Source.IsSynthetic() {
			ids = append(ids, v.ID())
		}
	})
	return ids
}
