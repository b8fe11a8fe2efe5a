// handlers.go - Handler wiring and shared response shapes
package api

import (
	"net/http"

	"github.com/gauge-designer/backend/internal/catalog"
	"github.com/gauge-designer/backend/internal/models"
	"github.com/gauge-designer/backend/internal/session"
	"github.com/gauge-designer/backend/internal/storage"
	"github.com/gauge-designer/backend/internal/store"
	"github.com/labstack/echo/v4"
)

// Handler handles API requests.
type Handler struct {
	layouts       storage.Store
	sessions      *session.Manager
	catalog       *catalog.Catalog
	version       string
	allowDeletion bool
}

// NewHandler creates a new API handler.
func NewHandler(layouts storage.Store, sessions *session.Manager, cat *catalog.Catalog, version string, allowDeletion bool) *Handler {
	return &Handler{
		layouts:       layouts,
		sessions:      sessions,
		catalog:       cat,
		version:       version,
		allowDeletion: allowDeletion,
	}
}

// editorState is the consistent (document, validation) pair plus the
// surrounding editor state, returned after every mutation so clients
// never observe a stale validation result.
type editorState struct {
	SessionID  string                  `json:"sessionId"`
	Document   *models.LayoutDocument  `json:"document"`
	Validation models.ValidationResult `json:"validation"`
	Selection  []string                `json:"selection"`
	Viewport   models.EditorViewport   `json:"viewport"`
	Tool       store.Tool              `json:"tool"`
}

func stateOf(sess *session.EditorSession) editorState {
	return editorState{
		SessionID:  sess.ID,
		Document:   sess.Store.Document(),
		Validation: sess.Store.ValidationResult(),
		Selection:  sess.Store.Selection(),
		Viewport:   sess.Store.Viewport(),
		Tool:       sess.Store.Tool(),
	}
}

// resolveSession looks up the session named in the :sessionId route param
// and touches its keep-alive timestamp.
func (h *Handler) resolveSession(c echo.Context) (*session.EditorSession, *APIError) {
	id := c.Param("sessionId")
	if id == "" {
		return nil, NewValidationError("sessionId")
	}
	sess, ok := h.sessions.GetSession(id)
	if !ok {
		return nil, NewNotFoundError("session", id)
	}
	h.sessions.TouchSession(id)
	return sess, nil
}

// HandleHealth returns server health status.
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"version":  h.version,
		"sessions": h.sessions.Count(),
	})
}
