package explorer

import (
	"log/slog"
	"time"

	"cartograph/internal/config"
	"cartograph/internal/domain/models/docsystem"
	models "cartograph/internal/domain/models/explorer"
)

// Snapshot is everything the engine reads for one render pass
type Snapshot struct {
	Nodes     []docsystem.DocumentNode
	Expanded  models.ExpansionState
	Selection models.SelectionState
	Context   models.ContextSets
	Viewport  models.Size
}

// Callbacks report interactions back to the state collaborators.
// Any of them may be nil.
type Callbacks struct {
	OnToggleExpansion func(id string)
	OnSelectNode      func(id string, multi bool)
	OnSetFocusedNode  func(id string)
	OnContextCycle    func(id string)
}

// PassStats describes one render pass for observers
type PassStats struct {
	Duration time.Duration
	Rebuilt  bool
	Visible  int
	Diff     SceneDiff
}

// PassObserver receives stats after each render pass
type PassObserver interface {
	ObservePass(stats PassStats)
}

// Engine is the layout-and-rendering core of one explorer view.
// It is not safe for concurrent use; callers serialize events.
type Engine struct {
	cfg       *config.ExplorerConfig
	layout    *Layout
	styler    Styler
	scene     *Scene
	viewport  *Viewport
	minimap   *MinimapSync
	callbacks Callbacks
	observer  PassObserver
	logger    *slog.Logger

	hierarchy *Hierarchy
	frame     models.Frame
}

// EngineOption customizes an Engine
type EngineOption func(*Engine)

// WithObserver attaches a render pass observer
func WithObserver(o PassObserver) EngineOption {
	return func(e *Engine) { e.observer = o }
}

// NewEngine creates an engine whose viewport starts at size
func NewEngine(cfg *config.ExplorerConfig, size models.Size, callbacks Callbacks, logger *slog.Logger, opts ...EngineOption) *Engine {
	styler := NewStyler(cfg.Theme)
	e := &Engine{
		cfg:       cfg,
		layout:    NewLayout(cfg.Layout),
		styler:    styler,
		scene:     NewScene(cfg.Transitions),
		viewport:  NewViewport(size, cfg.Viewport),
		minimap:   NewMinimapSync(cfg.Minimap, styler),
		callbacks: callbacks,
		logger:    logger,
		hierarchy: BuildHierarchy(nil),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Hierarchy returns the tree built from the most recent node list
func (e *Engine) Hierarchy() *Hierarchy {
	return e.hierarchy
}

// Viewport returns the persistent viewport controller
func (e *Engine) Viewport() *Viewport {
	return e.viewport
}

// Frame returns the settled target of the last render pass
func (e *Engine) Frame() models.Frame {
	return e.frame
}

// Load rebuilds the hierarchy when the node list differs from the current one.
// It reports whether a rebuild happened.
func (e *Engine) Load(nodes []docsystem.DocumentNode) bool {
	if Fingerprint(nodes) == e.hierarchy.Fingerprint {
		return false
	}
	e.hierarchy = BuildHierarchy(nodes)
	if s := e.hierarchy.Stats; s.Orphans > 0 || s.Duplicates > 0 || s.CyclesBroken > 0 {
		e.logger.Debug("hierarchy rebuilt with repairs",
			"nodes", s.Nodes,
			"orphans", s.Orphans,
			"duplicates", s.Duplicates,
			"cycles_broken", s.CyclesBroken,
		)
	}
	return true
}

// Render runs a full pass: rebuild if needed, filter, lay out, style, diff against the
// previous frame and sample the result at now.
func (e *Engine) Render(snap Snapshot, now time.Time) models.RenderPass {
	start := time.Now()
	rebuilt := e.Load(snap.Nodes)

	if snap.Viewport != e.viewport.Size() {
		e.viewport.Resize(snap.Viewport)
	}

	var frame models.Frame
	if e.hierarchy.Empty() {
		frame = models.Frame{Nodes: []models.FrameNode{}, Links: []models.FrameLink{}}
	} else {
		visible := e.hierarchy.Filter(snap.Expanded)
		e.layout.Apply(visible)
		frame = buildFrame(visible, snap.Selection, snap.Context, e.styler)
	}
	e.frame = frame
	diff := e.scene.Apply(frame, now)

	pass := e.Sample(now)

	if e.observer != nil {
		e.observer.ObservePass(PassStats{
			Duration: time.Since(start),
			Rebuilt:  rebuilt,
			Visible:  len(frame.Nodes),
			Diff:     diff,
		})
	}
	return pass
}

// Sample reads the current scene and viewport at now without recomputing layout.
// It is what an animation loop calls between render passes.
func (e *Engine) Sample(now time.Time) models.RenderPass {
	viewAnimating := e.viewport.Tick(now)
	nodes, links, sceneAnimating := e.scene.Sample(now)

	pass := models.RenderPass{
		Empty:     e.hierarchy.Empty(),
		Nodes:     nodes,
		Links:     links,
		Transform: e.viewport.Transform(),
		Viewport:  e.viewport.Size(),
		Animating: viewAnimating || sceneAnimating,
	}
	if !pass.Empty {
		pass.Minimap = e.minimap.Build(e.frame, e.viewport)
	}
	return pass
}

// Click handles a left click on a node: folders toggle, the node is selected
// (replacing or extending the selection) and becomes focused. Unknown IDs are ignored.
func (e *Engine) Click(id string, multi bool) {
	node, ok := e.hierarchy.Lookup(id)
	if !ok {
		return
	}
	if node.IsFolder() && e.callbacks.OnToggleExpansion != nil {
		e.callbacks.OnToggleExpansion(id)
	}
	if e.callbacks.OnSelectNode != nil {
		e.callbacks.OnSelectNode(id, multi)
	}
	if e.callbacks.OnSetFocusedNode != nil {
		e.callbacks.OnSetFocusedNode(id)
	}
}

// ContextMenu handles a right click on a node by advancing its context flag
func (e *Engine) ContextMenu(id string) {
	if _, ok := e.hierarchy.Lookup(id); !ok {
		return
	}
	if e.callbacks.OnContextCycle != nil {
		e.callbacks.OnContextCycle(id)
	}
}

// MinimapClick recenters the main view on whatever was clicked in the overview.
// It returns false when there is no overview or a gesture is in progress.
func (e *Engine) MinimapClick(click models.Point, now time.Time) bool {
	if !e.minimap.Visible(e.viewport.Size()) || len(e.frame.Nodes) == 0 {
		return false
	}
	target, _ := e.minimap.Locate(e.frame, click)
	return e.viewport.CenterOn(target, 1, e.cfg.Transitions.Recenter(), now)
}

// CenterOnNode recenters on a visible node at the current zoom level
func (e *Engine) CenterOnNode(id string, now time.Time) bool {
	for _, n := range e.frame.Nodes {
		if n.ID == id {
			return e.viewport.CenterOn(models.Point{X: n.X, Y: n.Y}, e.viewport.Transform().Scale, e.cfg.Transitions.Recenter(), now)
		}
	}
	return false
}
