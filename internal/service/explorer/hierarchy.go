package explorer

import (
	"github.com/cespare/xxhash/v2"

	"cartograph/internal/domain/models/docsystem"
	models "cartograph/internal/domain/models/explorer"
)

// Hierarchy is the rooted tree built from one node list, indexed by ID.
// It is immutable once built; expansion and selection never modify it.
type Hierarchy struct {
	Root        *models.HierarchyNode
	Stats       models.BuildStats
	Fingerprint uint64
	byID        map[string]*models.HierarchyNode
	maxDepth    int
}

// BuildHierarchy converts a flat, parent-referenced node list into a tree under a synthetic root.
// Sibling order follows input order.
func BuildHierarchy(nodes []docsystem.DocumentNode) *Hierarchy {
	root := &models.HierarchyNode{Depth: -1}
	h := &Hierarchy{
		Root:        root,
		Fingerprint: Fingerprint(nodes),
		byID:        make(map[string]*models.HierarchyNode, len(nodes)),
	}

	// First pass: create one node per unique ID, first occurrence wins
	order := make([]*models.HierarchyNode, 0, len(nodes))
	for i := range nodes {
		if _, exists := h.byID[nodes[i].ID]; exists {
			h.Stats.Duplicates++
			continue
		}
		doc := nodes[i]
		node := &models.HierarchyNode{Document: &doc}
		h.byID[doc.ID] = node
		order = append(order, node)
	}

	// Second pass: resolve parents, falling back to the root for dangling references
	parentOf := make(map[*models.HierarchyNode]*models.HierarchyNode, len(order))
	for _, node := range order {
		parentOf[node] = root
		pid := node.Document.ParentID
		if pid == nil || *pid == "" {
			continue
		}
		if parent, ok := h.byID[*pid]; ok && parent != node {
			parentOf[node] = parent
		} else {
			h.Stats.Orphans++
		}
	}
	h.Stats.CyclesBroken = breakCycles(order, parentOf, root)

	// Third pass: attach children in input order
	for _, node := range order {
		parent := parentOf[node]
		node.Parent = parent
		parent.Children = append(parent.Children, node)
	}

	root.Walk(func(n *models.HierarchyNode) bool {
		if n.Parent != nil {
			n.Depth = n.Parent.Depth + 1
			h.maxDepth = max(h.maxDepth, n.Depth)
		}
		return true
	})
	h.Stats.Nodes = len(order)

	return h
}

// breakCycles walks every parent chain in input order. When a chain loops back on
// itself, the node whose parent link closes the loop is re-attached to root.
func breakCycles(order []*models.HierarchyNode, parentOf map[*models.HierarchyNode]*models.HierarchyNode, root *models.HierarchyNode) int {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[*models.HierarchyNode]int, len(order))
	broken := 0

	for _, start := range order {
		var path []*models.HierarchyNode
		node := start
		for node != root && state[node] == unvisited {
			state[node] = inProgress
			path = append(path, node)
			node = parentOf[node]
		}
		if node != root && state[node] == inProgress {
			parentOf[path[len(path)-1]] = root
			broken++
		}
		for _, n := range path {
			state[n] = done
		}
	}
	return broken
}

// Lookup returns the node with the given ID
func (h *Hierarchy) Lookup(id string) (*models.HierarchyNode, bool) {
	n, ok := h.byID[id]
	return n, ok
}

// Len is the number of real (non-synthetic) nodes
func (h *Hierarchy) Len() int {
	return len(h.byID)
}

// Empty reports whether there is nothing to lay out
func (h *Hierarchy) Empty() bool {
	return len(h.byID) == 0
}

// MaxDepth is the depth of the deepest node (0 when only top-level nodes exist)
func (h *Hierarchy) MaxDepth() int {
	return h.maxDepth
}

// FolderIDs returns every folder ID in depth-first order
func (h *Hierarchy) FolderIDs() []string {
	var ids []string
	h.Root.Walk(func(n *models.HierarchyNode) bool {
		if n.IsFolder() {
			ids = append(ids, n.ID())
		}
		return true
	})
	return ids
}

// Fingerprint hashes the fields of a node list that shape the tree and its labels.
// Two lists with equal fingerprints produce the same hierarchy.
func Fingerprint(nodes []docsystem.DocumentNode) uint64 {
	d := xxhash.New()
	sep := []byte{0}
	for i := range nodes {
		n := &nodes[i]
		_, _ = d.WriteString(n.ID)
		_, _ = d.Write(sep)
		if n.ParentID != nil {
			_, _ = d.WriteString(*n.ParentID)
		}
		_, _ = d.Write(sep)
		_, _ = d.WriteString(n.Name)
		_, _ = d.Write(sep)
		_, _ = d.WriteString(string(n.Kind))
		_, _ = d.Write(sep)
		_, _ = d.WriteString(n.Path)
		_, _ = d.Write([]byte{0xff})
	}
	return d.Sum64()
}
