package explorer

import (
	"math"

	"cartograph/internal/config"
	models "cartograph/internal/domain/models/explorer"
)

// linearScale maps a domain interval onto a range interval.
// A zero-width domain maps everything to the middle of the range.
type linearScale struct {
	d0, d1, r0, r1 float64
}

func (s linearScale) apply(v float64) float64 {
	if s.d1 == s.d0 {
		return (s.r0 + s.r1) / 2
	}
	return s.r0 + (v-s.d0)/(s.d1-s.d0)*(s.r1-s.r0)
}

func (s linearScale) invert(v float64) float64 {
	if s.r1 == s.r0 || s.d1 == s.d0 {
		return s.d0
	}
	return s.d0 + (v-s.r0)/(s.r1-s.r0)*(s.d1-s.d0)
}

// MinimapSync derives the overview from a frame and maps overview clicks back to content space
type MinimapSync struct {
	cfg    config.MinimapConfig
	styler Styler
}

func NewMinimapSync(cfg config.MinimapConfig, styler Styler) *MinimapSync {
	return &MinimapSync{cfg: cfg, styler: styler}
}

// Visible reports whether the main viewport is large enough to warrant an overview
func (m *MinimapSync) Visible(size models.Size) bool {
	return size.Width > m.cfg.MinViewportWidth && size.Height > m.cfg.MinViewportHeight
}

// scales builds the independent x and y scales for the frame's node extent
func (m *MinimapSync) scales(bounds models.Rect) (linearScale, linearScale) {
	x := linearScale{d0: bounds.X, d1: bounds.X + bounds.Width, r0: m.cfg.Padding, r1: m.cfg.Width - m.cfg.Padding}
	y := linearScale{d0: bounds.Y, d1: bounds.Y + bounds.Height, r0: m.cfg.Padding, r1: m.cfg.Height - m.cfg.Padding}
	return x, y
}

// Project maps content coordinates into the overview
func (m *MinimapSync) Project(bounds models.Rect, p models.Point) models.Point {
	sx, sy := m.scales(bounds)
	return models.Point{X: sx.apply(p.X), Y: sy.apply(p.Y)}
}

// Unproject maps an overview point back into content coordinates
func (m *MinimapSync) Unproject(bounds models.Rect, p models.Point) models.Point {
	sx, sy := m.scales(bounds)
	return models.Point{X: sx.invert(p.X), Y: sy.invert(p.Y)}
}

// Build renders the overview for frame, or nil when it should not be shown
func (m *MinimapSync) Build(frame models.Frame, vp *Viewport) *models.Minimap {
	if !m.Visible(vp.Size()) || len(frame.Nodes) == 0 {
		return nil
	}

	mm := &models.Minimap{
		Width:  m.cfg.Width,
		Height: m.cfg.Height,
		Dots:   make([]models.MinimapDot, 0, len(frame.Nodes)),
	}
	for _, n := range frame.Nodes {
		p := m.Project(frame.Bounds, models.Point{X: n.X, Y: n.Y})
		mm.Dots = append(mm.Dots, models.MinimapDot{
			ID:   n.ID,
			X:    p.X,
			Y:    p.Y,
			Fill: m.styler.MinimapFill(n.Kind, n.Selected),
		})
	}

	visible := vp.VisibleRect()
	tl := m.Project(frame.Bounds, models.Point{X: visible.X, Y: visible.Y})
	br := m.Project(frame.Bounds, models.Point{X: visible.X + visible.Width, Y: visible.Y + visible.Height})
	mm.Viewport = models.Rect{X: tl.X, Y: tl.Y, Width: br.X - tl.X, Height: br.Y - tl.Y}

	return mm
}

// Locate resolves an overview click. The nearest dot within the hit radius wins and its
// exact content position is returned; otherwise the click point itself is inverse-mapped.
func (m *MinimapSync) Locate(frame models.Frame, click models.Point) (target models.Point, nodeID string) {
	best := math.Inf(1)
	for _, n := range frame.Nodes {
		p := m.Project(frame.Bounds, models.Point{X: n.X, Y: n.Y})
		d := math.Hypot(p.X-click.X, p.Y-click.Y)
		if d <= m.cfg.DotHitRadius && d < best {
			best = d
			target = models.Point{X: n.X, Y: n.Y}
			nodeID = n.ID
		}
	}
	if nodeID != "" {
		return target, nodeID
	}
	return m.Unproject(frame.Bounds, click), ""
}
