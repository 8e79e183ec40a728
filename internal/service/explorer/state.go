package explorer

import (
	models "cartograph/internal/domain/models/explorer"
)

// TreeStore is the in-memory tree-state collaborator of one view:
// which folders are expanded, which nodes are selected, and which one is focused.
type TreeStore struct {
	expanded  models.ExpansionState
	selection models.SelectionState
}

func NewTreeStore() *TreeStore {
	return &TreeStore{
		expanded:  models.NewIDSet(),
		selection: models.SelectionState{Selected: models.NewIDSet()},
	}
}

// Expanded returns a copy of the expansion state
func (t *TreeStore) Expanded() models.ExpansionState {
	return t.expanded.Clone()
}

// Selection returns a copy of the selection state
func (t *TreeStore) Selection() models.SelectionState {
	return models.SelectionState{Selected: t.selection.Selected.Clone(), Focused: t.selection.Focused}
}

// SetExpanded replaces the expansion state
func (t *TreeStore) SetExpanded(state models.ExpansionState) {
	t.expanded = state.Clone()
}

// ToggleExpansion flips id in the expansion state
func (t *TreeStore) ToggleExpansion(h *Hierarchy, id string) {
	t.expanded = h.Toggle(t.expanded, id)
}

// Select replaces the selection with id, or adds id when multi is set
func (t *TreeStore) Select(id string, multi bool) {
	if !multi {
		t.selection.Selected = models.NewIDSet()
	}
	t.selection.Selected.Add(id)
}

// Focus makes id the focused node
func (t *TreeStore) Focus(id string) {
	t.selection.Focused = id
}

// Prune forgets IDs that no longer exist in h (after a reload)
func (t *TreeStore) Prune(h *Hierarchy) {
	for id := range t.expanded {
		if _, ok := h.Lookup(id); !ok {
			t.expanded.Remove(id)
		}
	}
	for id := range t.selection.Selected {
		if _, ok := h.Lookup(id); !ok {
			t.selection.Selected.Remove(id)
		}
	}
	if _, ok := h.Lookup(t.selection.Focused); !ok {
		t.selection.Focused = ""
	}
}

// ContextStore is the in-memory context-state collaborator: which nodes are
// included, pinned or excluded from the prompt context.
type ContextStore struct {
	sets models.ContextSets
}

func NewContextStore() *ContextStore {
	return &ContextStore{sets: models.ContextSets{
		Included: models.NewIDSet(),
		Pinned:   models.NewIDSet(),
		Excluded: models.NewIDSet(),
	}}
}

// Flag returns the current flag of id
func (c *ContextStore) Flag(id string) models.ContextFlag {
	return c.sets.FlagOf(id)
}

// Cycle advances id one step along neutral -> included -> pinned -> excluded.
// Excluded stays excluded.
func (c *ContextStore) Cycle(id string) models.ContextFlag {
	next := c.Flag(id).Next()
	c.Set(id, next)
	return next
}

// Set moves id into exactly the set for flag
func (c *ContextStore) Set(id string, flag models.ContextFlag) {
	c.sets.Included.Remove(id)
	c.sets.Pinned.Remove(id)
	c.sets.Excluded.Remove(id)
	switch flag {
	case models.ContextIncluded:
		c.sets.Included.Add(id)
	case models.ContextPinned:
		c.sets.Pinned.Add(id)
	case models.ContextExcluded:
		c.sets.Excluded.Add(id)
	}
}

// Sets returns a copy of the flag sets
func (c *ContextStore) Sets() models.ContextSets {
	return models.ContextSets{
		Included: c.sets.Included.Clone(),
		Pinned:   c.sets.Pinned.Clone(),
		Excluded: c.sets.Excluded.Clone(),
	}
}
