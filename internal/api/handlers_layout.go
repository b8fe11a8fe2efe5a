// handlers_layout.go - Saved layout file management handlers
package api

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gauge-designer/backend/internal/exchange"
	"github.com/labstack/echo/v4"
)

type saveLayoutRequest struct {
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
}

func (r *saveLayoutRequest) validate() *APIError {
	if r.SessionID == "" {
		return NewValidationError("sessionId")
	}
	if r.Name == "" {
		return NewValidationError("name")
	}
	return nil
}

// HandleSaveLayout serializes a session's current document into the
// layout store. Saving does not require a valid document; unfinished
// layouts may be saved and resumed.
func (h *Handler) HandleSaveLayout(c echo.Context) error {
	var req saveLayoutRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	sess, ok := h.sessions.GetSession(req.SessionID)
	if !ok {
		return NewNotFoundError("session", req.SessionID)
	}
	h.sessions.TouchSession(req.SessionID)

	doc := sess.Store.Document()
	data, err := exchange.Serialize(doc)
	if err != nil {
		return NewInternalError("failed to serialize layout", err)
	}

	info, err := h.layouts.Save(req.Name, data, len(doc.Elements))
	if err != nil {
		return NewInternalError("failed to save layout", err)
	}

	return c.JSON(http.StatusCreated, info)
}

type importLayoutRequest struct {
	Name string `json:"name"`
	Data string `json:"data"` // Base64-encoded layout JSON
}

func (r *importLayoutRequest) validate() *APIError {
	if r.Name == "" {
		return NewValidationError("name")
	}
	if r.Data == "" {
		return NewValidationError("data")
	}
	return nil
}

// HandleImportLayout accepts a layout file as base64 JSON, verifies it is
// a well-formed document and stores it. Parse failure aborts the import;
// nothing is saved.
func (h *Handler) HandleImportLayout(c echo.Context) error {
	var req importLayoutRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	decoded, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return NewBadRequestError("invalid base64 data", err)
	}

	doc, err := exchange.Deserialize(decoded)
	if err != nil {
		var parseErr *exchange.ParseError
		if errors.As(err, &parseErr) {
			return NewParseError(parseErr)
		}
		return NewInternalError("failed to import layout", err)
	}

	info, err := h.layouts.Save(req.Name, decoded, len(doc.Elements))
	if err != nil {
		return NewInternalError("failed to save layout", err)
	}

	return c.JSON(http.StatusCreated, info)
}

// HandleRecentLayouts returns the most recently saved layouts.
func (h *Handler) HandleRecentLayouts(c echo.Context) error {
	layouts, err := h.layouts.List(20)
	if err != nil {
		return NewInternalError("failed to list layouts", err)
	}
	return c.JSON(http.StatusOK, layouts)
}

// HandleGetLayout returns the serialized document for a saved layout.
func (h *Handler) HandleGetLayout(c echo.Context) error {
	id := c.Param("id")
	data, err := h.layouts.Read(id)
	if err != nil {
		return NewNotFoundError("layout", id)
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}

type openLayoutRequest struct {
	SessionID string `json:"sessionId"`
}

// HandleOpenLayout loads a saved layout into an editor session. The
// session's current document is replaced only after a successful parse.
func (h *Handler) HandleOpenLayout(c echo.Context) error {
	id := c.Param("id")

	var req openLayoutRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.SessionID == "" {
		return NewValidationError("sessionId")
	}

	sess, ok := h.sessions.GetSession(req.SessionID)
	if !ok {
		return NewNotFoundError("session", req.SessionID)
	}
	h.sessions.TouchSession(req.SessionID)

	data, err := h.layouts.Read(id)
	if err != nil {
		return NewNotFoundError("layout", id)
	}

	doc, err := exchange.Deserialize(data)
	if err != nil {
		return NewParseError(err)
	}

	sess.Store.SetDocument(doc)
	return c.JSON(http.StatusOK, stateOf(sess))
}

// HandleRenameLayout updates the display name of a saved layout.
func (h *Handler) HandleRenameLayout(c echo.Context) error {
	id := c.Param("id")
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.Name == "" {
		return NewValidationError("name")
	}

	info, err := h.layouts.Rename(id, req.Name)
	if err != nil {
		return NewNotFoundError("layout", id)
	}

	return c.JSON(http.StatusOK, info)
}

// HandleDeleteLayout removes a saved layout.
func (h *Handler) HandleDeleteLayout(c echo.Context) error {
	id := c.Param("id")
	if err := h.layouts.Delete(id); err != nil {
		return NewNotFoundError("layout", id)
	}
	return c.NoContent(http.StatusNoContent)
}
