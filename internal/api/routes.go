// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"github.com/gauge-designer/backend/internal/catalog"
	"github.com/gauge-designer/backend/internal/session"
	"github.com/gauge-designer/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Layouts       storage.Store
	SessionMgr    *session.Manager
	Catalog       *catalog.Catalog
	Version       string
	AllowDeletion bool
}

// NewHandlers creates the handler instances
func NewHandlers(deps *Dependencies) (*Handler, *WebSocketHandler) {
	h := NewHandler(deps.Layouts, deps.SessionMgr, deps.Catalog, deps.Version, deps.AllowDeletion)
	return h, NewWebSocketHandler(deps.SessionMgr)
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, h *Handler) {
	// Health check
	e.GET("/health", h.HandleHealth)

	// Editor session routes
	sessionGroup := e.Group("/api/sessions")
	sessionGroup.POST("", h.HandleCreateSession)
	sessionGroup.DELETE("/:sessionId", h.HandleEndSession)
	sessionGroup.POST("/:sessionId/keepalive", h.HandleSessionKeepAlive)

	// Document routes
	sessionGroup.GET("/:sessionId/document", h.HandleGetDocument)
	sessionGroup.PUT("/:sessionId/document", h.HandleSetDocument)
	sessionGroup.GET("/:sessionId/validation", h.HandleGetValidation)
	sessionGroup.GET("/:sessionId/export", h.HandleExport)
	sessionGroup.POST("/:sessionId/import", h.HandleImportDocument)

	// Element mutation routes
	sessionGroup.POST("/:sessionId/elements", h.HandleCreateElement)
	sessionGroup.PATCH("/:sessionId/elements/:elementId", h.HandleUpdateElement)
	sessionGroup.DELETE("/:sessionId/elements/:elementId", h.HandleRemoveElement)
	sessionGroup.POST("/:sessionId/elements/:elementId/duplicate", h.HandleDuplicateElement)

	// Selection and clipboard routes
	sessionGroup.PUT("/:sessionId/selection", h.HandleSetSelection)
	sessionGroup.POST("/:sessionId/selection/toggle", h.HandleToggleSelection)
	sessionGroup.DELETE("/:sessionId/selection", h.HandleClearSelection)
	sessionGroup.POST("/:sessionId/clipboard/copy", h.HandleCopy)
	sessionGroup.POST("/:sessionId/clipboard/cut", h.HandleCut)
	sessionGroup.POST("/:sessionId/clipboard/paste", h.HandlePaste)

	// Viewport and tool routes
	sessionGroup.PUT("/:sessionId/viewport", h.HandleSetViewport)
	sessionGroup.PUT("/:sessionId/tool", h.HandleSetTool)

	// Saved layout routes
	layoutGroup := e.Group("/api/layouts")
	layoutGroup.GET("/recent", h.HandleRecentLayouts)
	layoutGroup.GET("/:id", h.HandleGetLayout)
	layoutGroup.POST("/import", h.HandleImportLayout)
	layoutGroup.POST("/:sessionId/save", h.HandleSaveLayout)
	layoutGroup.POST("/:id/open/:sessionId", h.HandleOpenLayout)
	layoutGroup.PUT("/:id", h.HandleRenameLayout)

	// Conditional delete based on config
	if h.allowDeletion {
		layoutGroup.DELETE("/:id", h.HandleDeleteLayout)
	}

	// Element catalog and sensor routes
	catalogGroup := e.Group("/api/catalog")
	catalogGroup.GET("", h.HandleGetCatalog)
	catalogGroup.GET("/sensors", h.HandleGetSensors)
	sessionGroup.GET("/:sessionId/sensors", h.HandleGetSensorSnapshot)
	sessionGroup.GET("/:sessionId/sensors/msgpack", h.HandleGetSensorSnapshotMsgpack)
}

// RegisterWebSocketRoutes registers WebSocket routes
func RegisterWebSocketRoutes(e *echo.Echo, ws *WebSocketHandler) {
	e.GET("/api/sessions/:sessionId/ws", ws.HandleWebSocket)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler
}
