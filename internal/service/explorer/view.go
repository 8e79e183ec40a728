package explorer

import (
	"log/slog"
	"sync"
	"time"

	"cartograph/internal/config"
	"cartograph/internal/domain/models/docsystem"
	models "cartograph/internal/domain/models/explorer"
	explorerSvc "cartograph/internal/domain/services/explorer"
)

// view is one mounted explorer: its engine plus the collaborators the engine reports to.
// mu serializes events so each mutation is fully applied before the next pass.
type view struct {
	mu        sync.Mutex
	id        string
	projectID string
	userID    string
	nodes     []docsystem.DocumentNode
	engine    *Engine
	tree      *TreeStore
	context   *ContextStore
	lastSeen  time.Time
}

func newView(id, projectID, userID string, nodes []docsystem.DocumentNode, size models.Size, cfg *config.ExplorerConfig, observer PassObserver, logger *slog.Logger) *view {
	v := &view{
		id:        id,
		projectID: projectID,
		userID:    userID,
		nodes:     nodes,
		tree:      NewTreeStore(),
		context:   NewContextStore(),
	}

	callbacks := Callbacks{
		OnToggleExpansion: func(id string) { v.tree.ToggleExpansion(v.engine.Hierarchy(), id) },
		OnSelectNode:      v.tree.Select,
		OnSetFocusedNode:  v.tree.Focus,
		OnContextCycle:    func(id string) { v.context.Cycle(id) },
	}
	var opts []EngineOption
	if observer != nil {
		opts = append(opts, WithObserver(observer))
	}
	v.engine = NewEngine(cfg, size, callbacks, logger.With("view_id", id), opts...)
	v.engine.Load(nodes)
	return v
}

func (v *view) snapshot() Snapshot {
	return Snapshot{
		Nodes:     v.nodes,
		Expanded:  v.tree.Expanded(),
		Selection: v.tree.Selection(),
		Context:   v.context.Sets(),
		Viewport:  v.engine.Viewport().Size(),
	}
}

// render runs a full layout pass with the current collaborator state
func (v *view) render(now time.Time) *explorerSvc.ViewState {
	return v.state(v.engine.Render(v.snapshot(), now))
}

// sample reads the view without a layout pass (viewport-only changes)
func (v *view) sample(now time.Time) *explorerSvc.ViewState {
	return v.state(v.engine.Sample(now))
}

func (v *view) state(pass models.RenderPass) *explorerSvc.ViewState {
	return &explorerSvc.ViewState{
		ViewID:    v.id,
		ProjectID: v.projectID,
		Stats:     v.engine.Hierarchy().Stats,
		Expanded:  v.tree.Expanded(),
		Selection: v.tree.Selection(),
		Context:   v.context.Sets(),
		Pass:      pass,
	}
}

// replaceNodes swaps in a fresh node list and forgets state for vanished IDs
func (v *view) replaceNodes(nodes []docsystem.DocumentNode) {
	v.nodes = nodes
	if v.engine.Load(nodes) {
		v.tree.Prune(v.engine.Hierarchy())
	}
}
