package explorer

import (
	"cartograph/internal/domain/models/docsystem"
)

// FrameNode is the target (settled) state of one visible node after layout and styling
type FrameNode struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Kind        docsystem.NodeKind `json:"kind"`
	Depth       int                `json:"depth"`
	X           float64            `json:"x"`
	Y           float64            `json:"y"`
	Branch      string             `json:"branch"`
	HiddenCount int                `json:"hidden_count,omitempty"`
	ParentID    string             `json:"parent_id,omitempty"`
	Flag        ContextFlag        `json:"flag"`
	Fill        string             `json:"fill"`
	Stroke      string             `json:"stroke"`
	StrokeWidth float64            `json:"stroke_width"`
	Selected    bool               `json:"selected"`
	Focused     bool               `json:"focused"`
}

// FrameLink connects a visible parent to a visible child; keyed by the child ID
type FrameLink struct {
	ID       string `json:"id"`
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

// Frame is the full positioned, styled node/link set for one render pass
type Frame struct {
	Nodes  []FrameNode `json:"nodes"`
	Links  []FrameLink `json:"links"`
	Bounds Rect        `json:"bounds"`
}

// Phase reports where an element is in its enter/update/exit lifecycle
type Phase string

const (
	PhaseEntering Phase = "entering"
	PhaseUpdating Phase = "updating"
	PhaseExiting  Phase = "exiting"
	PhaseSettled  Phase = "settled"
)

// RenderNode is a FrameNode sampled at a point in time (position and opacity interpolated)
type RenderNode struct {
	FrameNode
	Opacity float64 `json:"opacity"`
	Phase   Phase   `json:"phase"`
}

// RenderLink is a link sampled at a point in time, with its curve path resolved
type RenderLink struct {
	FrameLink
	Source  Point   `json:"source"`
	Target  Point   `json:"target"`
	Path    string  `json:"path"`
	Opacity float64 `json:"opacity"`
	Phase   Phase   `json:"phase"`
}

// RenderPass is everything a client needs to draw one frame
type RenderPass struct {
	Empty     bool          `json:"empty"`
	Nodes     []RenderNode  `json:"nodes"`
	Links     []RenderLink  `json:"links"`
	Transform ViewTransform `json:"transform"`
	Viewport  Size          `json:"viewport"`
	Minimap   *Minimap      `json:"minimap,omitempty"`
	Animating bool          `json:"animating"`
}
