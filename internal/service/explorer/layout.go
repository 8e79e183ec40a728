package explorer

import (
	"unicode/utf8"

	"cartograph/internal/config"
	models "cartograph/internal/domain/models/explorer"
)

// Layout assigns positions to a visible tree.
// Depth maps to x; siblings spread along y far enough apart that their labels don't overlap.
type Layout struct {
	cfg config.LayoutConfig
}

// NewLayout creates a layout engine with the given spacing constants
func NewLayout(cfg config.LayoutConfig) *Layout {
	return &Layout{cfg: cfg}
}

// LabelWidth estimates the rendered width of a node label without measuring it
func (l *Layout) LabelWidth(name string) float64 {
	return float64(utf8.RuneCountInString(name))*l.cfg.PerCharWidth + l.cfg.BasePadding
}

// Separation is the minimum y distance between two neighbouring nodes at the same depth
func (l *Layout) Separation(a, b *models.VisibleNode) float64 {
	return (l.LabelWidth(a.Source.Name())+l.LabelWidth(b.Source.Name()))/2 + l.cfg.SiblingGap
}

// contour tracks, per relative depth, the top-most and bottom-most node of a subtree.
// Offsets are relative to the subtree root.
type contour struct {
	top, bottom   []*models.VisibleNode
	topY, bottomY []float64
}

func (c *contour) shift(dy float64) {
	for d := range c.topY {
		c.topY[d] += dy
		c.bottomY[d] += dy
	}
}

// Apply positions every node of the projection in place.
// The synthetic root ends up at y = 0, which centres the top-level nodes on the x axis.
func (l *Layout) Apply(root *models.VisibleNode) {
	offsets := make(map[*models.VisibleNode]float64)
	l.place(root, offsets)

	root.Position = models.Point{X: l.x(root), Y: 0}
	var assign func(v *models.VisibleNode)
	assign = func(v *models.VisibleNode) {
		for _, child := range v.VisibleChildren {
			child.Position = models.Point{X: l.x(child), Y: v.Position.Y + offsets[child]}
			assign(child)
		}
	}
	assign(root)
}

func (l *Layout) x(v *models.VisibleNode) float64 {
	return float64(v.Source.Depth) * l.cfg.LevelSpacing
}

// place lays out v's subtree, recording each child's y offset from its parent,
// and returns the subtree contour relative to v.
func (l *Layout) place(v *models.VisibleNode, offsets map[*models.VisibleNode]float64) *contour {
	if len(v.VisibleChildren) == 0 {
		return &contour{
			top:     []*models.VisibleNode{v},
			bottom:  []*models.VisibleNode{v},
			topY:    []float64{0},
			bottomY: []float64{0},
		}
	}

	// Stack child subtrees top to bottom, each pushed just clear of the ones above it
	childY := make([]float64, len(v.VisibleChildren))
	var acc *contour
	for i, child := range v.VisibleChildren {
		c := l.place(child, offsets)
		if acc == nil {
			acc = c
			continue
		}

		var dy float64
		for d := 0; d < len(acc.bottom) && d < len(c.top); d++ {
			need := acc.bottomY[d] + l.Separation(acc.bottom[d], c.top[d]) - c.topY[d]
			if d == 0 || need > dy {
				dy = need
			}
		}
		c.shift(dy)
		childY[i] = dy

		for d := range c.top {
			if d < len(acc.top) {
				acc.bottom[d] = c.bottom[d]
				acc.bottomY[d] = c.bottomY[d]
			} else {
				acc.top = append(acc.top, c.top[d])
				acc.bottom = append(acc.bottom, c.bottom[d])
				acc.topY = append(acc.topY, c.topY[d])
				acc.bottomY = append(acc.bottomY, c.bottomY[d])
			}
		}
	}

	// Centre the parent on its first and last child, then re-base everything on the parent
	mid := (childY[0] + childY[len(childY)-1]) / 2
	for i, child := range v.VisibleChildren {
		offsets[child] = childY[i] - mid
	}
	acc.shift(-mid)

	return &contour{
		top:     append([]*models.VisibleNode{v}, acc.top...),
		bottom:  append([]*models.VisibleNode{v}, acc.bottom...),
		topY:    append([]float64{0}, acc.topY...),
		bottomY: append([]float64{0}, acc.bottomY...),
	}
}
