// Package canvas translates raw pointer events into store mutations:
// coordinate-space conversion, hit-dispatch, drag/resize math and
// grid-snapping. It is a small state machine over the modes idle,
// dragging and resizing.
package canvas

import (
	"math"
	"strings"
	"sync"

	"github.com/gauge-designer/backend/internal/models"
	"github.com/gauge-designer/backend/internal/store"
)

// MinElementSize is the unconditional floor for element width and height
// during resize, in canvas units.
const MinElementSize = 20.0

// Mode is the controller's interaction state.
type Mode string

const (
	ModeIdle     Mode = "idle"
	ModeDragging Mode = "dragging"
	ModeResizing Mode = "resizing"
)

// Edges is the set of edges a resize handle controls.
type Edges struct {
	North bool
	South bool
	East  bool
	West  bool
}

// ParseEdges reads a compact handle tag like "se" or "n" into an edge set.
// Unknown characters are ignored.
func ParseEdges(tag string) Edges {
	var e Edges
	for _, c := range strings.ToLower(tag) {
		switch c {
		case 'n':
			e.North = true
		case 's':
			e.South = true
		case 'e':
			e.East = true
		case 'w':
			e.West = true
		}
	}
	return e
}

// PointerTarget identifies what the originating event landed on. A click
// counts as on an element only when the event target is that element's
// visual node, never the canvas underneath it.
type PointerTarget struct {
	ElementID string `json:"elementId,omitempty"`
	Handle    string `json:"handle,omitempty"`
}

// Point is a canvas-space coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Controller drives one store from pointer events. A mutex serializes
// event handling, so several connections feeding the same session cannot
// interleave mid-gesture.
type Controller struct {
	store *store.Store

	mu       sync.Mutex
	mode     Mode
	activeID string

	// Drag state: last sampled pointer position in canvas-space. Deltas
	// are computed per sample, not since drag start, to avoid drift.
	lastX, lastY float64

	// Resize state: deltas are computed against these fixed references so
	// rounding never compounds.
	edges        Edges
	startWidth   float64
	startHeight  float64
	resizeStartX float64
	resizeStartY float64
	aspectLocked bool
	lockedRatio  float64
}

// NewController creates an idle controller over the given store.
func NewController(s *store.Store) *Controller {
	return &Controller{store: s, mode: ModeIdle}
}

// Mode returns the current interaction mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// ActiveElement returns the id being dragged or resized, or "".
func (c *Controller) ActiveElement() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == ModeIdle {
		return ""
	}
	return c.activeID
}

// ToCanvas converts screen coordinates to canvas-space by inverting the
// active pan and zoom: canvasX = (screenX - panX) / zoom.
func (c *Controller) ToCanvas(screenX, screenY float64) Point {
	vp := c.store.Viewport()
	return Point{
		X: (screenX - vp.PanOffset.X) / vp.ZoomFactor,
		Y: (screenY - vp.PanOffset.Y) / vp.ZoomFactor,
	}
}

// Snap rounds a canvas coordinate to the nearest grid multiple when
// snapping is enabled.
func (c *Controller) Snap(v float64) float64 {
	vp := c.store.Viewport()
	if !vp.SnapEnabled || vp.GridSize <= 0 {
		return v
	}
	return math.Round(v/vp.GridSize) * vp.GridSize
}

// PointerDown starts a gesture. On a resize handle it enters resizing; on
// an element with the select tool it selects the element and enters
// dragging; on the empty canvas it either clears the selection (select
// tool) or places a new element at the snapped click position (placement
// tool).
func (c *Controller) PointerDown(target PointerTarget, screenX, screenY float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.ToCanvas(screenX, screenY)

	if target.Handle != "" && target.ElementID != "" {
		el, ok := c.store.Element(target.ElementID)
		if !ok {
			return
		}
		c.mode = ModeResizing
		c.activeID = el.ID
		c.edges = ParseEdges(target.Handle)
		c.startWidth = el.Visual.Width
		c.startHeight = el.Visual.Height
		c.resizeStartX = p.X
		c.resizeStartY = p.Y
		return
	}

	if target.ElementID != "" {
		if _, ok := c.store.Element(target.ElementID); !ok {
			return
		}
		if !c.store.IsSelected(target.ElementID) {
			c.store.Select([]string{target.ElementID})
		}
		// Only a single-element drag is supported; group drag is an
		// explicit extension point.
		c.mode = ModeDragging
		c.activeID = target.ElementID
		c.lastX = p.X
		c.lastY = p.Y
		return
	}

	// Empty canvas.
	tool := c.store.Tool()
	if tool == store.ToolSelect {
		c.store.ClearSelection()
		return
	}

	id := c.store.CreateElement(models.ElementType(tool), c.Snap(p.X), c.Snap(p.Y), "")
	c.store.Select([]string{id})
}

// PointerMove advances an active drag or resize. It is a no-op when idle.
func (c *Controller) PointerMove(screenX, screenY float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.mode {
	case ModeDragging:
		c.moveDrag(screenX, screenY)
	case ModeResizing:
		c.moveResize(screenX, screenY)
	}
}

// PointerUp ends any gesture unconditionally and returns to idle. There is
// no separate cancel gesture.
func (c *Controller) PointerUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

func (c *Controller) resetLocked() {
	c.mode = ModeIdle
	c.activeID = ""
}

// SetAspectLock enables or disables aspect-ratio lock. The ratio is
// captured once at the moment the lock is enabled, from the active or
// first selected element, and is not recomputed per frame.
func (c *Controller) SetAspectLock(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !enabled {
		c.aspectLocked = false
		c.lockedRatio = 0
		return
	}

	id := c.activeID
	if id == "" {
		if sel := c.store.Selection(); len(sel) > 0 {
			id = sel[0]
		}
	}
	el, ok := c.store.Element(id)
	if !ok || el.Visual.Height == 0 {
		return
	}
	c.aspectLocked = true
	c.lockedRatio = el.Visual.Width / el.Visual.Height
}

// AspectLocked reports whether aspect-ratio lock is active.
func (c *Controller) AspectLocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspectLocked
}

// PanBy shifts the viewport pan offset by a screen-space delta.
func (c *Controller) PanBy(screenDX, screenDY float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	vp := c.store.Viewport()
	pan := models.PanOffset{X: vp.PanOffset.X + screenDX, Y: vp.PanOffset.Y + screenDY}
	c.store.SetViewport(models.ViewportUpdate{PanOffset: &pan})
}

func (c *Controller) moveDrag(screenX, screenY float64) {
	p := c.ToCanvas(screenX, screenY)
	dx := p.X - c.lastX
	dy := p.Y - c.lastY
	c.lastX = p.X
	c.lastY = p.Y

	el, ok := c.store.Element(c.activeID)
	if !ok {
		// Element vanished mid-drag (removed by another writer); treat as
		// already gone.
		c.resetLocked()
		return
	}

	newX := c.Snap(el.Visual.X + dx)
	newY := c.Snap(el.Visual.Y + dy)
	c.store.UpdateElement(c.activeID, models.ElementUpdate{
		Visual: &models.VisualUpdate{X: &newX, Y: &newY},
	})
}

func (c *Controller) moveResize(screenX, screenY float64) {
	p := c.ToCanvas(screenX, screenY)
	dx := p.X - c.resizeStartX
	dy := p.Y - c.resizeStartY

	if _, ok := c.store.Element(c.activeID); !ok {
		c.resetLocked()
		return
	}

	width := c.startWidth
	height := c.startHeight

	if c.edges.East {
		width = c.startWidth + dx
	} else if c.edges.West {
		width = c.startWidth - dx
	}
	if c.edges.South {
		height = c.startHeight + dy
	} else if c.edges.North {
		height = c.startHeight - dy
	}

	if c.aspectLocked && c.lockedRatio > 0 {
		if c.edges.East || c.edges.West {
			height = width / c.lockedRatio
		} else if c.edges.North || c.edges.South {
			width = height * c.lockedRatio
		}
	}

	// The size floor applies unconditionally, after aspect adjustment.
	if width < MinElementSize {
		width = MinElementSize
	}
	if height < MinElementSize {
		height = MinElementSize
	}

	c.store.UpdateElement(c.activeID, models.ElementUpdate{
		Visual: &models.VisualUpdate{Width: &width, Height: &height},
	})
}
