package models

// Viewport zoom and grid bounds enforced by the store.
const (
	MinZoom     = 0.1
	MaxZoom     = 5.0
	MinGridSize = 5.0
	MaxGridSize = 100.0
)

// PanOffset is the canvas pan in screen pixels.
type PanOffset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// EditorViewport is pure UI state. It is never persisted into the
// exported document.
type EditorViewport struct {
	ZoomFactor  float64   `json:"zoomFactor"`
	PanOffset   PanOffset `json:"panOffset"`
	GridSize    float64   `json:"gridSize"`
	SnapEnabled bool      `json:"snapEnabled"`
}

// DefaultViewport returns the initial viewport for a new editor session.
func DefaultViewport() EditorViewport {
	return EditorViewport{
		ZoomFactor:  1.0,
		GridSize:    10,
		SnapEnabled: true,
	}
}

// ViewportUpdate is a partial viewport change; nil fields are left as-is.
type ViewportUpdate struct {
	ZoomFactor  *float64   `json:"zoomFactor,omitempty"`
	PanOffset   *PanOffset `json:"panOffset,omitempty"`
	GridSize    *float64   `json:"gridSize,omitempty"`
	SnapEnabled *bool      `json:"snapEnabled,omitempty"`
}
