package explorer

import (
	"math"

	models "cartograph/internal/domain/models/explorer"
)

// buildFrame flattens a positioned projection into styled nodes and parent->child links.
// The synthetic root is neither drawn nor linked.
func buildFrame(root *models.VisibleNode, selection models.SelectionState, ctx models.ContextSets, styler Styler) models.Frame {
	frame := models.Frame{
		Nodes: []models.FrameNode{},
		Links: []models.FrameLink{},
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	root.Walk(func(v *models.VisibleNode) {
		if v.Source.IsSynthetic() {
			return
		}
		doc := v.Source.Document
		id := doc.ID
		selected := selection.Selected.Has(id)
		focused := selection.Focused == id
		flag := ctx.FlagOf(id)
		stroke, width := styler.Stroke(selected, focused)

		node := models.FrameNode{
			ID:          id,
			Name:        doc.Name,
			Kind:        doc.Kind,
			Depth:       v.Source.Depth,
			X:           v.Position.X,
			Y:           v.Position.Y,
			Branch:      v.Branch.String(),
			HiddenCount: len(v.HiddenChildren),
			Flag:        flag,
			Fill:        styler.Fill(doc.Kind, flag),
			Stroke:      stroke,
			StrokeWidth: width,
			Selected:    selected,
			Focused:     focused,
		}
		if v.Parent != nil && !v.Parent.Source.IsSynthetic() {
			node.ParentID = v.Parent.ID()
			frame.Links = append(frame.Links, models.FrameLink{
				ID:       id,
				SourceID: node.ParentID,
				TargetID: id,
			})
		}
		frame.Nodes = append(frame.Nodes, node)

		minX, maxX = math.Min(minX, node.X), math.Max(maxX, node.X)
		minY, maxY = math.Min(minY, node.Y), math.Max(maxY, node.Y)
	})

	if len(frame.Nodes) > 0 {
		frame.Bounds = models.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
	}
	return frame
}
