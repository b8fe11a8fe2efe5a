// handlers_session.go - Editor session lifecycle, document and export handlers
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gauge-designer/backend/internal/exchange"
	"github.com/gauge-designer/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// HandleCreateSession starts a new editor session with an empty document.
func (h *Handler) HandleCreateSession(c echo.Context) error {
	sess, err := h.sessions.StartSession()
	if err != nil {
		return NewInternalError("failed to start editor session", err)
	}
	return c.JSON(http.StatusCreated, stateOf(sess))
}

// HandleEndSession tears down an editor session. Ending an unknown
// session is idempotent.
func (h *Handler) HandleEndSession(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}
	h.sessions.EndSession(id)
	return c.NoContent(http.StatusNoContent)
}

// HandleSessionKeepAlive refreshes a session's keep-alive timestamp.
func (h *Handler) HandleSessionKeepAlive(c echo.Context) error {
	id := c.Param("sessionId")
	if !h.sessions.TouchSession(id) {
		return NewNotFoundError("session", id)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// HandleGetDocument returns the current document and validation result.
func (h *Handler) HandleGetDocument(c echo.Context) error {
	sess, apiErr := h.resolveSession(c)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, stateOf(sess))
}

// HandleSetDocument replaces the session document wholesale (import or
// reset). A structurally invalid document is accepted and reported through
// the validation result; only malformed JSON is rejected outright, since
// then there is no document to validate.
func (h *Handler) HandleSetDocument(c echo.Context) error {
	sess, apiErr := h.resolveSession(c)
	if apiErr != nil {
		return apiErr
	}

	var doc models.LayoutDocument
	if err := c.Bind(&doc); err != nil {
		return NewParseError(err)
	}

	sess.Store.SetDocument(&doc)
	return c.JSON(http.StatusOK, stateOf(sess))
}

// HandleGetValidation re-validates and returns the full issue list.
func (h *Handler) HandleGetValidation(c echo.Context) error {
	sess, apiErr := h.resolveSession(c)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, sess.Store.Validate())
}

// HandleExport serializes the current document for the external renderer.
// Export is blocked while the document has validation errors unless the
// caller passes force=true; warnings never block.
func (h *Handler) HandleExport(c echo.Context) error {
	sess, apiErr := h.resolveSession(c)
	if apiErr != nil {
		return apiErr
	}

	result := sess.Store.ValidationResult()
	force := c.QueryParam("force") == "true"
	if !result.IsValid && !force {
		return NewConflictError(
			fmt.Sprintf("document has %d validation errors; fix them or pass force=true", len(result.Errors)))
	}

	data, err := exchange.Serialize(sess.Store.Document())
	if err != nil {
		return NewInternalError("failed to serialize layout", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="layout.json"`)
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}

// HandleImportDocument loads a serialized layout into the session. A parse
// failure aborts the import and leaves the current document untouched.
func (h *Handler) HandleImportDocument(c echo.Context) error {
	sess, apiErr := h.resolveSession(c)
	if apiErr != nil {
		return apiErr
	}

	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return NewBadRequestError("failed to read request body", err)
	}

	doc, err := exchange.Deserialize(data)
	if err != nil {
		var parseErr *exchange.ParseError
		if errors.As(err, &parseErr) {
			return NewParseError(parseErr)
		}
		return NewInternalError("failed to import layout", err)
	}

	sess.Store.SetDocument(doc)
	return c.JSON(http.StatusOK, stateOf(sess))
}
