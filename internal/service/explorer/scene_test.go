package explorer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartograph/internal/config"
	models "cartograph/internal/domain/models/explorer"
)

var testDurations = config.TransitionConfig{EnterMS: 500, UpdateMS: 500, ExitMS: 300, RecenterMS: 750}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func frameOf(nodes ...models.FrameNode) models.Frame {
	f := models.Frame{Nodes: nodes, Links: []models.FrameLink{}}
	for _, n := range nodes {
		if n.ParentID != "" {
			f.Links = append(f.Links, models.FrameLink{ID: n.ID, SourceID: n.ParentID, TargetID: n.ID})
		}
	}
	return f
}

func fn(id string, x, y float64, parent string) models.FrameNode {
	return models.FrameNode{ID: id, Name: id, X: x, Y: y, ParentID: parent}
}

func findNode(t *testing.T, nodes []models.RenderNode, id string) models.RenderNode {
	t.Helper()
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
	}
	require.Failf(t, "node not in scene", "id %s", id)
	return models.RenderNode{}
}

func TestDiffKeys(t *testing.T) {
	d := DiffKeys([]string{"a", "b", "c"}, []string{"c", "d", "a"})
	assert.Equal(t, []string{"d"}, d.Entering)
	assert.Equal(t, []string{"c", "a"}, d.Updating)
	assert.Equal(t, []string{"b"}, d.Exiting)

	empty := DiffKeys(nil, nil)
	assert.Empty(t, empty.Entering)
	assert.NotNil(t, empty.Exiting)
}

func TestScene_EnterFadesIn(t *testing.T) {
	s := NewScene(testDurations)
	diff := s.Apply(frameOf(fn("a", 10, 20, "")), t0)
	assert.Equal(t, []string{"a"}, diff.Nodes.Entering)

	nodes, _, animating := s.Sample(t0)
	a := findNode(t, nodes, "a")
	assert.Equal(t, models.PhaseEntering, a.Phase)
	assert.InDelta(t, 0, a.Opacity, 1e-9)
	assert.InDelta(t, 10, a.X, 1e-9, "entering nodes appear at their target")
	assert.True(t, animating)

	nodes, _, _ = s.Sample(t0.Add(ms(250)))
	assert.InDelta(t, 0.5, findNode(t, nodes, "a").Opacity, 1e-9, "cubic in-out is symmetric")

	nodes, _, animating = s.Sample(t0.Add(ms(500)))
	a = findNode(t, nodes, "a")
	assert.Equal(t, models.PhaseSettled, a.Phase)
	assert.InDelta(t, 1, a.Opacity, 1e-9)
	assert.False(t, animating)
}

func TestScene_ExitRemovesAfterFade(t *testing.T) {
	s := NewScene(testDurations)
	s.Apply(frameOf(fn("a", 0, 0, ""), fn("b", 200, 0, "a")), t0)
	s.Sample(t0.Add(time.Second))

	t1 := t0.Add(time.Second)
	diff := s.Apply(frameOf(fn("a", 0, 0, "")), t1)
	assert.Equal(t, []string{"b"}, diff.Nodes.Exiting)
	assert.Equal(t, []string{"b"}, diff.Links.Exiting)

	nodes, links, _ := s.Sample(t1.Add(ms(150)))
	b := findNode(t, nodes, "b")
	assert.Equal(t, models.PhaseExiting, b.Phase)
	assert.InDelta(t, 200, b.X, 1e-9, "exits fade in place")
	assert.Less(t, b.Opacity, 1.0)
	require.Len(t, links, 1)
	assert.Equal(t, models.PhaseExiting, links[0].Phase)

	nodes, links, animating := s.Sample(t1.Add(ms(300)))
	assert.Equal(t, []string{"a"}, renderIDs(nodes))
	assert.Empty(t, links)
	assert.False(t, animating)
	assert.Equal(t, 1, s.Len())
}

func TestScene_RepeatedExitKeepsOriginalDeadline(t *testing.T) {
	s := NewScene(testDurations)
	s.Apply(frameOf(fn("a", 0, 0, "")), t0)
	s.Apply(frameOf(), t0.Add(time.Second))
	s.Apply(frameOf(), t0.Add(time.Second+ms(200)))

	nodes, _, _ := s.Sample(t0.Add(time.Second + ms(300)))
	assert.Empty(t, nodes)
}

func TestScene_UpdateRestartsFromCurrentPosition(t *testing.T) {
	s := NewScene(testDurations)
	s.Apply(frameOf(fn("a", 0, 0, "")), t0)
	s.Sample(t0.Add(time.Second))

	t1 := t0.Add(time.Second)
	diff := s.Apply(frameOf(fn("a", 100, 0, "")), t1)
	assert.Equal(t, []string{"a"}, diff.Nodes.Updating)

	mid := t1.Add(ms(250))
	nodes, _, _ := s.Sample(mid)
	midX := findNode(t, nodes, "a").X
	assert.InDelta(t, 50, midX, 1e-9)

	// interrupt halfway: the new transition starts where the node is drawn
	s.Apply(frameOf(fn("a", 0, 0, "")), mid)
	nodes, _, _ = s.Sample(mid)
	a := findNode(t, nodes, "a")
	assert.Equal(t, models.PhaseUpdating, a.Phase)
	assert.InDelta(t, midX, a.X, 1e-9)

	nodes, _, _ = s.Sample(mid.Add(ms(500)))
	assert.InDelta(t, 0, findNode(t, nodes, "a").X, 1e-9)
}

func TestScene_ReenterDuringExit(t *testing.T) {
	s := NewScene(testDurations)
	s.Apply(frameOf(fn("a", 0, 0, "")), t0)
	t1 := t0.Add(time.Second)
	s.Apply(frameOf(), t1)

	t2 := t1.Add(ms(150))
	s.Apply(frameOf(fn("a", 0, 0, "")), t2)
	nodes, _, _ := s.Sample(t2.Add(ms(500)))
	a := findNode(t, nodes, "a")
	assert.Equal(t, models.PhaseSettled, a.Phase)
	assert.InDelta(t, 1, a.Opacity, 1e-9)
}

func TestScene_UnchangedElementStaysSettled(t *testing.T) {
	s := NewScene(testDurations)
	s.Apply(frameOf(fn("a", 5, 5, "")), t0)
	t1 := t0.Add(time.Second)
	s.Apply(frameOf(fn("a", 5, 5, "")), t1)

	nodes, _, animating := s.Sample(t1)
	assert.Equal(t, models.PhaseSettled, findNode(t, nodes, "a").Phase)
	assert.False(t, animating)
}

func TestScene_LinkWithoutEndpointIsOmitted(t *testing.T) {
	s := NewScene(testDurations)
	frame := models.Frame{
		Nodes: []models.FrameNode{fn("child", 200, 0, "")},
		Links: []models.FrameLink{{ID: "child", SourceID: "ghost", TargetID: "child"}},
	}
	s.Apply(frame, t0)

	_, links, _ := s.Sample(t0.Add(time.Second))
	assert.Empty(t, links)
}

func TestScene_LinkFollowsEndpoints(t *testing.T) {
	s := NewScene(testDurations)
	s.Apply(frameOf(fn("p", 0, 0, ""), fn("c", 200, 40, "p")), t0)

	_, links, _ := s.Sample(t0.Add(time.Second))
	require.Len(t, links, 1)
	assert.Equal(t, models.Point{X: 0, Y: 0}, links[0].Source)
	assert.Equal(t, models.Point{X: 200, Y: 40}, links[0].Target)
	assert.Equal(t, curvePath(links[0].Source, links[0].Target), links[0].Path)
}
