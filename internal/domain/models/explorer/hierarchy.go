package explorer

import (
	"cartograph/internal/domain/models/docsystem"
)

// SyntheticRootID identifies the invisible node that holds every top-level entry
const SyntheticRootID = "__root__"

// BuildStats reports how a raw node list was reconciled into a tree
type BuildStats struct {
	Nodes        int `json:"nodes"`
	Orphans      int `json:"orphans"`       // dangling parent reference, attached at top level
	Duplicates   int `json:"duplicates"`    // later occurrences of an already-seen ID, dropped
	CyclesBroken int `json:"cycles_broken"` // parent chains that looped back, cut at top level
}

// Point is a position in layout (content) coordinates
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HierarchyNode is one node of the full document tree.
// Children keep input order and are exclusively owned; Parent is a navigation-only back reference.
type HierarchyNode struct {
	Document *docsystem.DocumentNode // nil for the synthetic root
	Depth    int                     // -1 for the synthetic root, 0 for top-level nodes
	Children []*HierarchyNode
	Parent   *HierarchyNode
}

// ID returns the document ID, or SyntheticRootID for the root
func (n *HierarchyNode) ID() string {
	if n.Document == nil {
		return SyntheticRootID
	}
	return n.Document.ID
}

// Name returns the display label
func (n *HierarchyNode) Name() string {
	if n.Document == nil {
		return ""
	}
	return n.Document.Name
}

// IsSynthetic reports whether this is the synthesized root
func (n *HierarchyNode) IsSynthetic() bool {
	return n.Document == nil
}

// IsFolder reports whether the node is folder-kind
func (n *HierarchyNode) IsFolder() bool {
	return n.Document != nil && n.Document.IsFolder()
}

// Walk visits n and its descendants depth-first in child order.
// Returning false from fn skips the node's children.
func (n *HierarchyNode) Walk(fn func(*HierarchyNode) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Branch tags which child list of a VisibleNode is populated
type Branch int

const (
	// BranchLeaf has no children at all
	BranchLeaf Branch = iota
	// BranchExpanded has VisibleChildren populated
	BranchExpanded
	// BranchCollapsed has HiddenChildren populated
	BranchCollapsed
)

func (b Branch) String() string {
	switch b {
	case BranchExpanded:
		return "expanded"
	case BranchCollapsed:
		return "collapsed"
	default:
		return "leaf"
	}
}

// VisibleNode is the projection of a HierarchyNode under an expansion state.
// Exactly one of VisibleChildren / HiddenChildren is populated, as tagged by Branch.
// HiddenChildren points into the unmodified hierarchy, so re-expanding is lossless.
type VisibleNode struct {
	Source          *HierarchyNode
	Branch          Branch
	VisibleChildren []*VisibleNode
	HiddenChildren  []*HierarchyNode
	Position        Point
	Parent          *VisibleNode
}

func (v *VisibleNode) ID() string { return v.Source.ID() }

// Walk visits v and its visible descendants depth-first
func (v *VisibleNode) Walk(fn func(*VisibleNode)) {
	fn(v)
	for _, child := range v.VisibleChildren {
		child.Walk(fn)
	}
}
