package explorer

import (
	"time"
)

// visual is the animatable state of one element
type visual struct {
	X, Y, Opacity float64
}

// transition interpolates an element from one visual state to another
type transition struct {
	from, to visual
	start    time.Time
	duration time.Duration
}

// settle is a transition that has already arrived at v
func settle(v visual, now time.Time) transition {
	return transition{from: v, to: v, start: now}
}

func (t transition) progress(now time.Time) float64 {
	if t.duration <= 0 {
		return 1
	}
	p := float64(now.Sub(t.start)) / float64(t.duration)
	switch {
	case p <= 0:
		return 0
	case p >= 1:
		return 1
	default:
		return p
	}
}

func (t transition) done(now time.Time) bool {
	return t.progress(now) >= 1
}

func (t transition) sample(now time.Time) visual {
	p := t.progress(now)
	if p >= 1 {
		return t.to
	}
	e := easeCubicInOut(p)
	return visual{
		X:       lerp(t.from.X, t.to.X, e),
		Y:       lerp(t.from.Y, t.to.Y, e),
		Opacity: lerp(t.from.Opacity, t.to.Opacity, e),
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func easeCubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}
