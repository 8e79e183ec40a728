package explorer

import (
	"math"
	"time"

	"cartograph/internal/config"
	models "cartograph/internal/domain/models/explorer"
)

// viewAnimation is an in-flight programmatic recenter
type viewAnimation struct {
	from, to models.ViewTransform
	start    time.Time
	duration time.Duration
}

// Viewport owns the pan/zoom transform of one mounted view.
// The transform is created once and only ever mutated, so re-rendering never resets it.
// Gestures apply immediately; Recenter animates and yields to any active gesture.
type Viewport struct {
	transform        models.ViewTransform
	size             models.Size
	wheelSensitivity float64
	gesturing        bool
	anim             *viewAnimation
}

// NewViewport places content so the tree starts at the left edge, vertically centred
func NewViewport(size models.Size, cfg config.ViewportConfig) *Viewport {
	return &Viewport{
		transform: models.ViewTransform{
			TranslateX: cfg.InitialOffsetX,
			TranslateY: size.Height / 2,
			Scale:      1,
		},
		size:             size,
		wheelSensitivity: cfg.WheelSensitivity,
	}
}

// Transform returns a copy of the current transform
func (v *Viewport) Transform() models.ViewTransform {
	return v.transform
}

func (v *Viewport) Size() models.Size {
	return v.size
}

// Resize records new viewport dimensions without touching the transform
func (v *Viewport) Resize(size models.Size) {
	v.size = size
}

// BeginGesture marks the start of a drag or pinch. Any programmatic animation is cancelled.
func (v *Viewport) BeginGesture() {
	v.gesturing = true
	v.anim = nil
}

// EndGesture marks the end of the active gesture
func (v *Viewport) EndGesture() {
	v.gesturing = false
}

// Gesturing reports whether the user is currently dragging or zooming
func (v *Viewport) Gesturing() bool {
	return v.gesturing
}

// Pan translates the view by a screen-space delta
func (v *Viewport) Pan(dx, dy float64) {
	v.anim = nil
	v.transform.TranslateX += dx
	v.transform.TranslateY += dy
}

// Zoom multiplies the scale by factor while keeping the screen point anchor fixed.
// The resulting scale is clamped to [MinScale, MaxScale].
func (v *Viewport) Zoom(factor float64, anchor models.Point) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return
	}
	v.anim = nil
	content := v.transform.Invert(anchor)
	v.transform.Scale = models.ClampScale(v.transform.Scale * factor)
	v.transform.TranslateX = anchor.X - content.X*v.transform.Scale
	v.transform.TranslateY = anchor.Y - content.Y*v.transform.Scale
}

// Wheel zooms by a scroll delta; scrolling down (positive delta) zooms out
func (v *Viewport) Wheel(deltaY float64, anchor models.Point) {
	v.Zoom(math.Pow(2, -deltaY*v.wheelSensitivity), anchor)
}

// Recenter animates toward target over duration. A newer request replaces an older
// in-flight one. While a gesture is active the request is dropped and false is returned.
func (v *Viewport) Recenter(target models.ViewTransform, duration time.Duration, now time.Time) bool {
	if v.gesturing {
		return false
	}
	target.Scale = models.ClampScale(target.Scale)
	if duration <= 0 {
		v.transform = target
		v.anim = nil
		return true
	}
	v.anim = &viewAnimation{from: v.transform, to: target, start: now, duration: duration}
	return true
}

// CenterOn recenters so that content point p lands in the middle of the viewport at scale
func (v *Viewport) CenterOn(p models.Point, scale float64, duration time.Duration, now time.Time) bool {
	scale = models.ClampScale(scale)
	c := v.size.Center()
	return v.Recenter(models.ViewTransform{
		TranslateX: c.X - p.X*scale,
		TranslateY: c.Y - p.Y*scale,
		Scale:      scale,
	}, duration, now)
}

// Tick advances the programmatic animation to now and reports whether it is still running
func (v *Viewport) Tick(now time.Time) bool {
	a := v.anim
	if a == nil {
		return false
	}
	tr := transition{start: a.start, duration: a.duration}
	p := tr.progress(now)
	if p >= 1 {
		v.transform = a.to
		v.anim = nil
		return false
	}
	e := easeCubicInOut(p)
	v.transform.TranslateX = lerp(a.from.TranslateX, a.to.TranslateX, e)
	v.transform.TranslateY = lerp(a.from.TranslateY, a.to.TranslateY, e)
	v.transform.Scale = models.ClampScale(lerp(a.from.Scale, a.to.Scale, e))
	return true
}

// Animating reports whether a recenter is in flight
func (v *Viewport) Animating() bool {
	return v.anim != nil
}

// VisibleRect is the region of content space currently on screen
func (v *Viewport) VisibleRect() models.Rect {
	tl := v.transform.Invert(models.Point{})
	br := v.transform.Invert(models.Point{X: v.size.Width, Y: v.size.Height})
	return models.Rect{X: tl.X, Y: tl.Y, Width: br.X - tl.X, Height: br.Y - tl.Y}
}
