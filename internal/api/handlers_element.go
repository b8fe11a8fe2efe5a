// handlers_element.go - Element, selection, clipboard, viewport and tool handlers
package api

import (
	"net/http"

	"github.com/gauge-designer/backend/internal/models"
	"github.com/gauge-designer/backend/internal/store"
	"github.com/labstack/echo/v4"
)

type createElementRequest struct {
	Type   models.ElementType `json:"type"`
	X      float64            `json:"x"`
	Y      float64            `json:"y"`
	Sensor string             `json:"sensor,omitempty"`
}

func (r *createElementRequest) validate() *APIError {
	if r.Type == "" {
		return NewValidationError("type")
	}
	if !models.IsValidElementType(r.Type) {
		return NewBadRequestError("unknown element type: "+string(r.Type), nil)
	}
	return nil
}

// HandleCreateElement places a new element and returns the updated state
// along with the generated id.
func (h *Handler) HandleCreateElement(c echo.Context) error {
	sess, apiErr := h.resolveSession(c)
	if apiErr != nil {
		return apiErr
	}

	var req createElementRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	id := sess.Store.CreateElement(req.Type, req.X, req.Y, req.Sensor)
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"id":    id,
		"state": stateOf(sess),
	})
}

// HandleUpdateElement merges a partial update into an element. Updating a
// non-existent element is a no-op by contract, reported in the response
// but never an error.
func (h *Handler) HandleUpdateElement(c echo.Context) error {
	sess, apiErr := h.resolveSession(c)
	if apiErr != nil {
		return apiErr
	}

	var update models.ElementUpdate
	if err := c.Bind(&update); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	updated := sess.Store.UpdateElement(c.Param("elementId"), update)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"updated": updated,
		"state":   stateOf(sess),
	})
}

// HandleRemoveElement deletes an element. Removal is idempotent.
func (h *Handler) HandleRemoveElement(c echo.Context) error {
	sess, apiErr := h.resolveSession(c)
	if apiErr != nil {
		return apiErr
	}

	sess.Store.RemoveElement(c.Param("elementId"))
	return c.JSON(http.StatusOK, stateOf(sess))
}

// HandleDuplicateElement clones an element with a fresh id and offset
// position.
func (h *Handler) HandleDuplicateElement(c echo.Context) error {
	sess, apiErr := h.resolveSession(c)
	if apiErr != nil {
		return apiErr
	}

	id := sess.Store.DuplicateElement(c.Param("elementId"))
	if id == "" {
		return NewNotFoundError("element", c.Param("elementId"))
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"id":    id,
		"state": stateOf(sess),
	})
}

type selectionRequest struct {
	IDs []string `json:"ids"`
}

// HandleSetSelection replaces the selection; unknown ids are silently
// filtered out.
func (h *Handler) HandleSetSelection(c echo.Context) error {
	sess, apiErr := h.resolveSession(c)
	if apiErr != nil {
		return apiErr
	}

	var req selectionRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	sess.Store.Select(req.IDs)
	return c.JSON(http.StatusOK, stateOf(sess))
}

// HandleToggleSelection toggles one id in the selection.
func (h *Handler) HandleToggleSelection(c echo.Context) error {
	sess, apiErr := h.resolveSession(c)
	if apiErr != nil {
		return apiErr
	}

	var req struct {
		ID string `json:"id"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.ID == "" {
		return NewValidationError("id")
	}

	sess.Store.ToggleSelection(req.ID)
	return c.JSON(http.StatusOK, stateOf(sess))
}

// HandleClearSelection empties the selection.
func (h *Handler) HandleClearSelection(c echo.Context) error {
	sess, apiErr := h.resolveSession(c)
	if apiErr != nil {
		return apiErr
	}

	sess.Store.ClearSelection()
	return c.JSON(http.StatusOK, stateOf(sess))
}

// HandleCopy snapshots the selected elements to the clipboard.
func (h *Handler) HandleCopy(c echo.Context) error {
	sess, apiErr := h.resolveSession(c)
	if apiErr != nil {
		return apiErr
	}

	sess.Store.CopySelected()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"clipboardLen": sess.Store.ClipboardLen(),
		"state":        stateOf(sess),
	})
}

// HandleCut copies then removes the selected elements.
func (h *Handler) HandleCut(c echo.Context) error {
	sess, apiErr := h.resolveSession(c)
	if apiErr != nil {
		return apiErr
	}

	sess.Store.CutSelected()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"clipboardLen": sess.Store.ClipboardLen(),
		"state":        stateOf(sess),
	})
}

// HandlePaste clones the clipboard into the document. Pasting an empty
// clipboard is a no-op, not an error.
func (h *Handler) HandlePaste(c echo.Context) error {
	sess, apiErr := h.resolveSession(c)
	if apiErr != nil {
		return apiErr
	}

	ids := sess.Store.Paste()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"pasted": ids,
		"state":  stateOf(sess),
	})
}

// HandleSetViewport merges a partial viewport change; zoom and grid size
// are clamped, never rejected.
func (h *Handler) HandleSetViewport(c echo.Context) error {
	sess, apiErr := h.resolveSession(c)
	if apiErr != nil {
		return apiErr
	}

	var update models.ViewportUpdate
	if err := c.Bind(&update); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	sess.Store.SetViewport(update)
	return c.JSON(http.StatusOK, sess.Store.Viewport())
}

// HandleSetTool switches the active canvas tool: "select" or an element
// kind for click-to-place.
func (h *Handler) HandleSetTool(c echo.Context) error {
	sess, apiErr := h.resolveSession(c)
	if apiErr != nil {
		return apiErr
	}

	var req struct {
		Tool string `json:"tool"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Tool != string(store.ToolSelect) && !models.IsValidElementType(models.ElementType(req.Tool)) {
		return NewBadRequestError("unknown tool: "+req.Tool, nil)
	}

	sess.Store.SetTool(store.Tool(req.Tool))
	return c.JSON(http.StatusOK, map[string]string{"tool": req.Tool})
}
