package explorer

import (
	"context"

	models "cartograph/internal/domain/models/explorer"
)

// Expansion actions
const (
	ExpandAll     = "expand_all"
	CollapseAll   = "collapse_all"
	ExpandToLevel = "expand_to_level"
)

// Gesture types
const (
	GestureBegin = "begin"
	GesturePan   = "pan"
	GestureZoom  = "zoom"
	GestureWheel = "wheel"
	GestureEnd   = "end"
)

// OpenViewRequest mounts a new explorer view on a project
type OpenViewRequest struct {
	ProjectID      string  `json:"-"`
	ViewportWidth  float64 `json:"viewport_width"`
	ViewportHeight float64 `json:"viewport_height"`
	ExpandLevel    *int    `json:"expand_level,omitempty"` // nil = top level expanded
}

// ExpansionRequest applies a bulk expansion change
type ExpansionRequest struct {
	Action string `json:"action"`
	Level  int    `json:"level"`
}

// GestureRequest is one pointer/wheel event from the client
type GestureRequest struct {
	Type   string  `json:"type"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	Factor float64 `json:"factor"`
	DeltaY float64 `json:"delta_y"`
	X      float64 `json:"x"` // pointer position for zoom/wheel anchoring
	Y      float64 `json:"y"`
}

// PointRequest is a click position in overview coordinates
type PointRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ResizeRequest reports new viewport dimensions
type ResizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ClickRequest is a left click on a node
type ClickRequest struct {
	Multi bool `json:"multi"`
}

// ViewState is a view's render pass plus the collaborator state it was drawn from
type ViewState struct {
	ViewID    string                `json:"view_id"`
	ProjectID string                `json:"project_id"`
	Stats     models.BuildStats     `json:"stats"`
	Expanded  models.ExpansionState `json:"expanded"`
	Selection models.SelectionState `json:"selection"`
	Context   models.ContextSets    `json:"context"`
	Pass      models.RenderPass     `json:"pass"`
}

// ViewService manages in-memory explorer views.
// Every method taking a userID fails with domain.ErrForbidden for views owned by someone else.
type ViewService interface {
	OpenView(ctx context.Context, userID string, req *OpenViewRequest) (*ViewState, error)
	GetView(ctx context.Context, userID, viewID string) (*ViewState, error)
	CloseView(ctx context.Context, userID, viewID string) error

	// Sample reads the view at the current time without a new layout pass
	Sample(ctx context.Context, userID, viewID string) (*models.RenderPass, error)

	ClickNode(ctx context.Context, userID, viewID, nodeID string, req *ClickRequest) (*ViewState, error)
	CycleContext(ctx context.Context, userID, viewID, nodeID string) (*ViewState, error)
	CenterOnNode(ctx context.Context, userID, viewID, nodeID string) (*ViewState, error)
	SetExpansion(ctx context.Context, userID, viewID string, req *ExpansionRequest) (*ViewState, error)
	Gesture(ctx context.Context, userID, viewID string, req *GestureRequest) (*ViewState, error)
	MinimapClick(ctx context.Context, userID, viewID string, req *PointRequest) (*ViewState, error)
	Resize(ctx context.Context, userID, viewID string, req *ResizeRequest) (*ViewState, error)
	Reload(ctx context.Context, userID, viewID string) (*ViewState, error)

	// ReloadProject refreshes every open view of a project from the node source
	ReloadProject(ctx context.Context, projectID string) error
}
