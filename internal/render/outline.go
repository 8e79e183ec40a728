package render

import (
	"fmt"
	"io"
	"strings"

	"cartograph/internal/domain/models/docsystem"
	models "cartograph/internal/domain/models/explorer"
)

// outlineLine is one row of the outline
type outlineLine struct {
	node   models.RenderNode
	depth  int
	isLast bool
}

// OutlineRenderer writes the visible part of a render pass as an indented tree
// using box-drawing characters. Exiting nodes are skipped.
//
// Example output:
//
//	Root/
//	├── A/ (+1)
//	└── C [pinned] *
type OutlineRenderer struct{}

func NewOutlineRenderer() *OutlineRenderer {
	return &OutlineRenderer{}
}

// Render writes one line per visible node, parents before children
func (r *OutlineRenderer) Render(w io.Writer, pass models.RenderPass) error {
	var b strings.Builder

	// Depths that still have siblings below draw a continuation bar
	continuations := make(map[int]bool)
	for _, line := range r.lines(pass) {
		b.WriteString(r.buildPrefix(line.depth, line.isLast, continuations))
		b.WriteString(r.label(line.node))
		b.WriteString("\n")

		if line.isLast {
			delete(continuations, line.depth)
		} else {
			continuations[line.depth] = true
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("render outline: %w", err)
	}
	return nil
}

// lines orders live nodes depth-first, keeping sibling order from the pass
func (r *OutlineRenderer) lines(pass models.RenderPass) []outlineLine {
	children := make(map[string][]models.RenderNode)
	live := make(map[string]bool)
	for _, n := range pass.Nodes {
		if n.Phase != models.PhaseExiting {
			live[n.ID] = true
		}
	}
	var roots []models.RenderNode
	for _, n := range pass.Nodes {
		if !live[n.ID] {
			continue
		}
		if n.ParentID == "" || !live[n.ParentID] {
			roots = append(roots, n)
			continue
		}
		children[n.ParentID] = append(children[n.ParentID], n)
	}

	var out []outlineLine
	var walk func(nodes []models.RenderNode, depth int)
	walk = func(nodes []models.RenderNode, depth int) {
		for i, n := range nodes {
			out = append(out, outlineLine{node: n, depth: depth, isLast: i == len(nodes)-1})
			walk(children[n.ID], depth+1)
		}
	}
	walk(roots, 0)
	return out
}

func (r *OutlineRenderer) label(n models.RenderNode) string {
	label := n.Name
	if n.Kind == docsystem.NodeKindFolder && !strings.HasSuffix(label, "/") {
		label += "/"
	}
	if n.HiddenCount > 0 {
		label += fmt.Sprintf(" (+%d)", n.HiddenCount)
	}
	if n.Flag != "" && n.Flag != models.ContextNeutral {
		label += " [" + string(n.Flag) + "]"
	}
	if n.Focused {
		label += " *"
	} else if n.Selected {
		label += " +"
	}
	return label
}

// buildPrefix creates the branch prefix for a row at depth
func (r *OutlineRenderer) buildPrefix(depth int, isLast bool, continuations map[int]bool) string {
	if depth == 0 {
		return ""
	}

	var prefix strings.Builder
	for d := 1; d < depth; d++ {
		if continuations[d] {
			prefix.WriteString("│   ")
		} else {
			prefix.WriteString("    ")
		}
	}
	if isLast {
		prefix.WriteString("└── ")
	} else {
		prefix.WriteString("├── ")
	}
	return prefix.String()
}
