package explorer

import (
	"fmt"
	"time"

	"cartograph/internal/config"
	models "cartograph/internal/domain/models/explorer"
)

// Diff classifies element IDs by presence in the previous and next frame
type Diff struct {
	Entering []string `json:"entering"`
	Updating []string `json:"updating"`
	Exiting  []string `json:"exiting"`
}

// DiffKeys puts every ID into exactly one class. Entering and updating follow next's
// order, exiting follows prev's order.
func DiffKeys(prev, next []string) Diff {
	inPrev := models.NewIDSet(prev...)
	inNext := models.NewIDSet(next...)

	d := Diff{Entering: []string{}, Updating: []string{}, Exiting: []string{}}
	for _, id := range next {
		if inPrev.Has(id) {
			d.Updating = append(d.Updating, id)
		} else {
			d.Entering = append(d.Entering, id)
		}
	}
	for _, id := range prev {
		if !inNext.Has(id) {
			d.Exiting = append(d.Exiting, id)
		}
	}
	return d
}

type sceneNode struct {
	node  models.FrameNode
	phase models.Phase
	tr    transition
}

type sceneLink struct {
	link  models.FrameLink
	phase models.Phase
	tr    transition // only Opacity is used; geometry follows the endpoint nodes
}

// Scene is the retained render set. Apply reconciles it against a new frame and starts
// transitions; Sample reads it at a point in time and drops finished exits.
// Neither call waits on an animation.
type Scene struct {
	durations config.TransitionConfig
	nodes     map[string]*sceneNode
	nodeOrder []string
	links     map[string]*sceneLink
	linkOrder []string
}

func NewScene(durations config.TransitionConfig) *Scene {
	return &Scene{
		durations: durations,
		nodes:     make(map[string]*sceneNode),
		links:     make(map[string]*sceneLink),
	}
}

// SceneDiff is the outcome of one Apply for nodes and links
type SceneDiff struct {
	Nodes Diff
	Links Diff
}

// Apply reconciles the scene against frame. Every element that changes starts from
// the state it is currently drawn in, replacing whatever transition it had.
func (s *Scene) Apply(frame models.Frame, now time.Time) SceneDiff {
	nextNodes := make([]string, len(frame.Nodes))
	for i, n := range frame.Nodes {
		nextNodes[i] = n.ID
	}
	nextLinks := make([]string, len(frame.Links))
	for i, l := range frame.Links {
		nextLinks[i] = l.ID
	}

	nodeDiff := DiffKeys(s.nodeOrder, nextNodes)
	linkDiff := DiffKeys(s.linkOrder, nextLinks)

	for _, n := range frame.Nodes {
		target := visual{X: n.X, Y: n.Y, Opacity: 1}
		sn, ok := s.nodes[n.ID]
		if !ok {
			s.nodes[n.ID] = &sceneNode{
				node:  n,
				phase: models.PhaseEntering,
				tr: transition{
					from:     visual{X: n.X, Y: n.Y, Opacity: 0},
					to:       target,
					start:    now,
					duration: s.durations.Enter(),
				},
			}
			continue
		}
		sn.node = n
		s.retarget(&sn.phase, &sn.tr, target, s.durations.Update(), now)
	}
	for _, id := range nodeDiff.Exiting {
		s.exit(&s.nodes[id].phase, &s.nodes[id].tr, now)
	}

	for _, l := range frame.Links {
		target := visual{Opacity: 1}
		sl, ok := s.links[l.ID]
		if !ok {
			s.links[l.ID] = &sceneLink{
				link:  l,
				phase: models.PhaseEntering,
				tr:    transition{to: target, start: now, duration: s.durations.Enter()},
			}
			continue
		}
		sl.link = l
		s.retarget(&sl.phase, &sl.tr, target, s.durations.Update(), now)
	}
	for _, id := range linkDiff.Exiting {
		s.exit(&s.links[id].phase, &s.links[id].tr, now)
	}

	// Live elements in frame order, then the ones still fading out
	s.nodeOrder = append(nextNodes, nodeDiff.Exiting...)
	s.linkOrder = append(nextLinks, linkDiff.Exiting...)

	return SceneDiff{Nodes: nodeDiff, Links: linkDiff}
}

// retarget moves an existing element toward target from wherever it is drawn now.
// An element already at rest on target is left alone.
func (s *Scene) retarget(phase *models.Phase, tr *transition, target visual, d time.Duration, now time.Time) {
	current := tr.sample(now)
	if current == target && tr.done(now) {
		*phase = models.PhaseSettled
		*tr = settle(target, now)
		return
	}
	*phase = models.PhaseUpdating
	*tr = transition{from: current, to: target, start: now, duration: d}
}

// exit fades an element out in place. An element that is already exiting keeps its
// original exit so repeated passes don't postpone its removal.
func (s *Scene) exit(phase *models.Phase, tr *transition, now time.Time) {
	if *phase == models.PhaseExiting {
		return
	}
	current := tr.sample(now)
	*phase = models.PhaseExiting
	*tr = transition{
		from:     current,
		to:       visual{X: current.X, Y: current.Y, Opacity: 0},
		start:    now,
		duration: s.durations.Exit(),
	}
}

// Sample returns the scene as drawn at now. Exiting elements whose fade has finished
// are removed. A link whose endpoint node is not in the scene is omitted.
func (s *Scene) Sample(now time.Time) (nodes []models.RenderNode, links []models.RenderLink, animating bool) {
	nodes = make([]models.RenderNode, 0, len(s.nodeOrder))
	positions := make(map[string]models.Point, len(s.nodeOrder))

	order := s.nodeOrder[:0:0]
	for _, id := range s.nodeOrder {
		sn := s.nodes[id]
		if sn.phase == models.PhaseExiting && sn.tr.done(now) {
			delete(s.nodes, id)
			continue
		}
		order = append(order, id)

		v := sn.tr.sample(now)
		phase := sn.phase
		if phase != models.PhaseExiting && sn.tr.done(now) {
			phase = models.PhaseSettled
		} else if phase != models.PhaseSettled {
			animating = true
		}

		rn := models.RenderNode{FrameNode: sn.node, Opacity: v.Opacity, Phase: phase}
		rn.X, rn.Y = v.X, v.Y
		nodes = append(nodes, rn)
		positions[id] = models.Point{X: v.X, Y: v.Y}
	}
	s.nodeOrder = order

	links = make([]models.RenderLink, 0, len(s.linkOrder))
	linkOrder := s.linkOrder[:0:0]
	for _, id := range s.linkOrder {
		sl := s.links[id]
		if sl.phase == models.PhaseExiting && sl.tr.done(now) {
			delete(s.links, id)
			continue
		}
		linkOrder = append(linkOrder, id)

		src, okSrc := positions[sl.link.SourceID]
		dst, okDst := positions[sl.link.TargetID]
		if !okSrc || !okDst {
			continue
		}

		phase := sl.phase
		if phase != models.PhaseExiting && sl.tr.done(now) {
			phase = models.PhaseSettled
		} else if phase != models.PhaseSettled {
			animating = true
		}
		links = append(links, models.RenderLink{
			FrameLink: sl.link,
			Source:    src,
			Target:    dst,
			Path:      curvePath(src, dst),
			Opacity:   sl.tr.sample(now).Opacity,
			Phase:     phase,
		})
	}
	s.linkOrder = linkOrder

	return nodes, links, animating
}

// Len is the number of elements currently held, including fading ones
func (s *Scene) Len() int {
	return len(s.nodes)
}

// Clear drops everything immediately; used when a view is rebuilt from scratch
func (s *Scene) Clear() {
	s.nodes = make(map[string]*sceneNode)
	s.links = make(map[string]*sceneLink)
	s.nodeOrder = nil
	s.linkOrder = nil
}

// curvePath is a horizontal cubic Bézier from parent to child
func curvePath(src, dst models.Point) string {
	mx := (src.X + dst.X) / 2
	return fmt.Sprintf("M%.2f,%.2fC%.2f,%.2f %.2f,%.2f %.2f,%.2f",
		src.X, src.Y, mx, src.Y, mx, dst.Y, dst.X, dst.Y)
}
