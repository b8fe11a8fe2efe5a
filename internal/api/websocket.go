// websocket.go - Per-session editor WebSocket: pointer event protocol and
// sensor snapshot push
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gauge-designer/backend/internal/canvas"
	"github.com/gauge-designer/backend/internal/models"
	"github.com/gauge-designer/backend/internal/sensors"
	"github.com/gauge-designer/backend/internal/session"
	"github.com/gauge-designer/backend/internal/store"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// WebSocket message types for the editor protocol
const (
	// Client -> Server messages
	MsgTypePointerDown = "pointer:down"
	MsgTypePointerMove = "pointer:move"
	MsgTypePointerUp   = "pointer:up"
	MsgTypeCanvasPan   = "canvas:pan"
	MsgTypeAspectLock  = "canvas:aspectlock"
	MsgTypeToolSet     = "tool:set"
	MsgTypePing        = "ping"

	// Server -> Client messages
	MsgTypeConnected = "connected"
	MsgTypeState     = "state"
	MsgTypeSensors   = "sensors"
	MsgTypeError     = "error"
	MsgTypePong      = "pong"
)

// WSMessage is the envelope for all editor WebSocket traffic.
type WSMessage struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// PointerPayload carries one pointer sample in screen coordinates plus the
// hit target resolved by the client (the element's visual node or a resize
// handle; both empty means the canvas background).
type PointerPayload struct {
	Target  canvas.PointerTarget `json:"target"`
	ScreenX float64              `json:"screenX"`
	ScreenY float64              `json:"screenY"`
}

// PanPayload is a screen-space pan delta.
type PanPayload struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// AspectLockPayload toggles aspect-ratio lock.
type AspectLockPayload struct {
	Enabled bool `json:"enabled"`
}

// ToolPayload switches the active tool.
type ToolPayload struct {
	Tool string `json:"tool"`
}

// WSErrorResponse reports a protocol-level problem to the client.
type WSErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// WebSocketHandler manages editor WebSocket connections. Pointer messages
// are consumed in connection order by the session's canvas controller, and
// sensor snapshots are pushed as the simulator publishes them.
type WebSocketHandler struct {
	sessions *session.Manager
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new editor WebSocket handler.
func NewWebSocketHandler(sessions *session.Manager) *WebSocketHandler {
	return &WebSocketHandler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Allow connections from dev server
				return true
			},
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
		},
	}
}

// wsConn serializes writes: the sensor push goroutine and the reply path
// share one underlying connection.
type wsConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *wsConn) send(msg WSMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.WriteJSON(msg); err != nil {
		fmt.Printf("[WebSocket] Failed to send message: %v\n", err)
	}
}

// HandleWebSocket upgrades the connection and runs the editor protocol for
// one session.
func (wsh *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	sessionID := c.Param("sessionId")
	sess, ok := wsh.sessions.GetSession(sessionID)
	if !ok {
		return NewNotFoundError("session", sessionID)
	}

	ws, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	conn := &wsConn{ws: ws}
	fmt.Printf("[WebSocket %s] Editor client connected\n", sessionID[:8])

	conn.send(WSMessage{Type: MsgTypeConnected, Timestamp: time.Now().UnixMilli()})

	// Push sensor snapshots for the lifetime of this connection.
	unsubscribe := sess.Simulator.Subscribe(func(snap sensors.Snapshot) {
		conn.send(WSMessage{
			Type:      MsgTypeSensors,
			Payload:   mustJSON(snap),
			Timestamp: time.Now().UnixMilli(),
		})
	})
	defer unsubscribe()

	// Main message loop
	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				fmt.Printf("[WebSocket %s] Connection error: %v\n", sessionID[:8], err)
			}
			break
		}

		wsh.sessions.TouchSession(sessionID)

		switch msg.Type {
		case MsgTypePing:
			conn.send(WSMessage{Type: MsgTypePong, Timestamp: time.Now().UnixMilli()})
		case MsgTypePointerDown:
			wsh.handlePointerDown(conn, sess, msg)
		case MsgTypePointerMove:
			wsh.handlePointerMove(conn, sess, msg)
		case MsgTypePointerUp:
			sess.Controller.PointerUp()
			wsh.sendState(conn, sess)
		case MsgTypeCanvasPan:
			wsh.handlePan(conn, sess, msg)
		case MsgTypeAspectLock:
			wsh.handleAspectLock(conn, sess, msg)
		case MsgTypeToolSet:
			wsh.handleToolSet(conn, sess, msg)
		default:
			wsh.sendError(conn, "Unknown message type: "+msg.Type, "INVALID_TYPE")
		}
	}

	fmt.Printf("[WebSocket %s] Editor client disconnected\n", sessionID[:8])
	return nil
}

func (wsh *WebSocketHandler) handlePointerDown(conn *wsConn, sess *session.EditorSession, msg WSMessage) {
	var payload PointerPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		wsh.sendError(conn, "Invalid pointer payload: "+err.Error(), "INVALID_PAYLOAD")
		return
	}
	sess.Controller.PointerDown(payload.Target, payload.ScreenX, payload.ScreenY)
	wsh.sendState(conn, sess)
}

func (wsh *WebSocketHandler) handlePointerMove(conn *wsConn, sess *session.EditorSession, msg WSMessage) {
	var payload PointerPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		wsh.sendError(conn, "Invalid pointer payload: "+err.Error(), "INVALID_PAYLOAD")
		return
	}
	sess.Controller.PointerMove(payload.ScreenX, payload.ScreenY)
	wsh.sendState(conn, sess)
}

func (wsh *WebSocketHandler) handlePan(conn *wsConn, sess *session.EditorSession, msg WSMessage) {
	var payload PanPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		wsh.sendError(conn, "Invalid pan payload: "+err.Error(), "INVALID_PAYLOAD")
		return
	}
	sess.Controller.PanBy(payload.DX, payload.DY)
	wsh.sendState(conn, sess)
}

func (wsh *WebSocketHandler) handleAspectLock(conn *wsConn, sess *session.EditorSession, msg WSMessage) {
	var payload AspectLockPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		wsh.sendError(conn, "Invalid aspect lock payload: "+err.Error(), "INVALID_PAYLOAD")
		return
	}
	sess.Controller.SetAspectLock(payload.Enabled)
	wsh.sendState(conn, sess)
}

func (wsh *WebSocketHandler) handleToolSet(conn *wsConn, sess *session.EditorSession, msg WSMessage) {
	var payload ToolPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		wsh.sendError(conn, "Invalid tool payload: "+err.Error(), "INVALID_PAYLOAD")
		return
	}
	if payload.Tool != string(store.ToolSelect) && !models.IsValidElementType(models.ElementType(payload.Tool)) {
		wsh.sendError(conn, "Unknown tool: "+payload.Tool, "INVALID_TOOL")
		return
	}
	sess.Store.SetTool(store.Tool(payload.Tool))
	wsh.sendState(conn, sess)
}

// sendState pushes the consistent (document, validation) pair after every
// handled event so the client never renders a stale validation result.
func (wsh *WebSocketHandler) sendState(conn *wsConn, sess *session.EditorSession) {
	conn.send(WSMessage{
		Type:      MsgTypeState,
		Payload:   mustJSON(stateOf(sess)),
		Timestamp: time.Now().UnixMilli(),
	})
}

func (wsh *WebSocketHandler) sendError(conn *wsConn, message, code string) {
	conn.send(WSMessage{
		Type:      MsgTypeError,
		Payload:   mustJSON(WSErrorResponse{Message: message, Code: code}),
		Timestamp: time.Now().UnixMilli(),
	})
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
