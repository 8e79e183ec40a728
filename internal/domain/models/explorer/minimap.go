package explorer

// MinimapDot is one node drawn in the overview
type MinimapDot struct {
	ID   string  `json:"id"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Fill string  `json:"fill"`
}

// Minimap is the scaled overview of the whole laid-out diagram
type Minimap struct {
	Width    float64      `json:"width"`
	Height   float64      `json:"height"`
	Dots     []MinimapDot `json:"dots"`
	Viewport Rect         `json:"viewport"` // currently visible region, in overview coordinates
}
