// handlers_test.go - Tests for the editor API handlers
package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gauge-designer/backend/internal/catalog"
	"github.com/gauge-designer/backend/internal/models"
	"github.com/gauge-designer/backend/internal/sensors"
	"github.com/gauge-designer/backend/internal/session"
	"github.com/gauge-designer/backend/internal/testutil"
	"github.com/gauge-designer/backend/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

type testEnv struct {
	handler  *Handler
	sessions *session.Manager
	layouts  *testutil.MockStorage
	echo     *echo.Echo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	layouts := testutil.NewMockStorage()
	sessions := session.NewManager(validation.Default(), catalog.Default(), session.Options{
		SimulatorInterval: time.Hour,
	})
	t.Cleanup(sessions.Shutdown)

	return &testEnv{
		handler:  NewHandler(layouts, sessions, catalog.Default(), "test", true),
		sessions: sessions,
		layouts:  layouts,
		echo:     echo.New(),
	}
}

func (env *testEnv) newSession(t *testing.T) *session.EditorSession {
	t.Helper()
	sess, err := env.sessions.StartSession()
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	return sess
}

// request builds an echo context carrying an optional JSON body and path
// params, plus the recorder capturing the response.
func (env *testEnv) request(method, path string, body interface{}, params map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := env.echo.NewContext(req, rec)

	names := make([]string, 0, len(params))
	values := make([]string, 0, len(params))
	for k, v := range params {
		names = append(names, k)
		values = append(values, v)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

func decodeState(t *testing.T, data []byte) editorState {
	t.Helper()
	var state editorState
	if err := json.Unmarshal(data, &state); err != nil {
		t.Fatalf("decoding editor state: %v", err)
	}
	return state
}

func assertAPIError(t *testing.T, err error, wantCode string, wantStatus int) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Code != wantCode {
		t.Errorf("error code: got %s, want %s", apiErr.Code, wantCode)
	}
	if apiErr.Status != wantStatus {
		t.Errorf("error status: got %d, want %d", apiErr.Status, wantStatus)
	}
}

func TestHandleHealth(t *testing.T) {
	env := newTestEnv(t)
	c, rec := env.request(http.MethodGet, "/health", nil, nil)

	if err := env.handler.HandleHealth(c); err != nil {
		t.Fatalf("HandleHealth: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d", rec.Code)
	}
}

func TestHandleCreateSession(t *testing.T) {
	env := newTestEnv(t)
	c, rec := env.request(http.MethodPost, "/api/sessions", nil, nil)

	if err := env.handler.HandleCreateSession(c); err != nil {
		t.Fatalf("HandleCreateSession: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("status: got %d, want 201", rec.Code)
	}

	state := decodeState(t, rec.Body.Bytes())
	if state.SessionID == "" {
		t.Error("expected a session id")
	}
	if !state.Validation.IsValid {
		t.Error("a fresh empty document must be valid")
	}
	if state.Tool != "select" {
		t.Errorf("tool: got %q, want select", state.Tool)
	}
	if env.sessions.Count() != 1 {
		t.Errorf("expected 1 active session, got %d", env.sessions.Count())
	}
}

func TestHandleEndSession_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	sess := env.newSession(t)

	for i := 0; i < 2; i++ {
		c, rec := env.request(http.MethodDelete, "/api/sessions/x", nil,
			map[string]string{"sessionId": sess.ID})
		if err := env.handler.HandleEndSession(c); err != nil {
			t.Fatalf("HandleEndSession: %v", err)
		}
		if rec.Code != http.StatusNoContent {
			t.Errorf("status: got %d, want 204", rec.Code)
		}
	}
	if sess.Simulator.Running() {
		t.Error("simulator must be stopped with the session")
	}
}

func TestHandleSessionKeepAlive_UnknownSession(t *testing.T) {
	env := newTestEnv(t)
	c, _ := env.request(http.MethodPost, "/api/sessions/x/keepalive", nil,
		map[string]string{"sessionId": "ghost"})

	err := env.handler.HandleSessionKeepAlive(c)
	assertAPIError(t, err, "NOT_FOUND", http.StatusNotFound)
}

func TestHandleSetDocument(t *testing.T) {
	env := newTestEnv(t)
	sess := env.newSession(t)

	doc := models.LayoutDocument{
		Version: "1.0",
		Elements: []models.Element{
			{ID: "gauge_1", Type: models.ElementGauge, Sensor: "rpm",
				Visual: models.DefaultVisual(0, 0, 200, 200), Animated: true, AnimationSpeed: 1},
		},
	}
	c, rec := env.request(http.MethodPut, "/api/sessions/x/document", doc,
		map[string]string{"sessionId": sess.ID})

	if err := env.handler.HandleSetDocument(c); err != nil {
		t.Fatalf("HandleSetDocument: %v", err)
	}
	state := decodeState(t, rec.Body.Bytes())
	if len(state.Document.Elements) != 1 {
		t.Fatalf("expected 1 element, got %d", len(state.Document.Elements))
	}
	if !state.Validation.IsValid {
		t.Errorf("expected valid document, got %+v", state.Validation)
	}
}

// A structurally invalid document is stored and reported through the
// validation result, not rejected.
func TestHandleSetDocument_InvalidDocumentAccepted(t *testing.T) {
	env := newTestEnv(t)
	sess := env.newSession(t)

	doc := models.LayoutDocument{
		Version: "1.0",
		Elements: []models.Element{
			{ID: "a", Type: "gauge", Sensor: "rpm", Visual: models.DefaultVisual(0, 0, 100, 100)},
			{ID: "a", Type: "gauge", Sensor: "rpm", Visual: models.DefaultVisual(0, 0, 100, 100)},
		},
	}
	c, rec := env.request(http.MethodPut, "/api/sessions/x/document", doc,
		map[string]string{"sessionId": sess.ID})

	if err := env.handler.HandleSetDocument(c); err != nil {
		t.Fatalf("HandleSetDocument: %v", err)
	}
	state := decodeState(t, rec.Body.Bytes())
	if state.Validation.IsValid {
		t.Error("duplicate ids must make the document invalid")
	}
	if len(state.Document.Elements) != 2 {
		t.Error("invalid document must still be stored")
	}
}

func TestHandleExport_BlockedWhenInvalid(t *testing.T) {
	env := newTestEnv(t)
	sess := env.newSession(t)

	// Force an invalid document.
	sess.Store.SetDocument(&models.LayoutDocument{
		Version: "1.0",
		Elements: []models.Element{
			{ID: "a", Type: "gauge", Sensor: "rpm", Visual: models.DefaultVisual(0, 0, 100, 100)},
			{ID: "a", Type: "gauge", Sensor: "rpm", Visual: models.DefaultVisual(0, 0, 100, 100)},
		},
	})

	c, _ := env.request(http.MethodGet, "/api/sessions/x/export", nil,
		map[string]string{"sessionId": sess.ID})
	err := env.handler.HandleExport(c)
	assertAPIError(t, err, "CONFLICT", http.StatusConflict)

	// force=true overrides the block.
	c, rec := env.request(http.MethodGet, "/api/sessions/x/export?force=true", nil,
		map[string]string{"sessionId": sess.ID})
	if err := env.handler.HandleExport(c); err != nil {
		t.Fatalf("forced export: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d", rec.Code)
	}
	if !json.Valid(rec.Body.Bytes()) {
		t.Error("export body should be valid JSON")
	}
}

func TestHandleExport_WarningsDoNotBlock(t *testing.T) {
	env := newTestEnv(t)
	sess := env.newSession(t)
	sess.Store.CreateElement(models.ElementGauge, -50, 0, "mystery_sensor")

	c, rec := env.request(http.MethodGet, "/api/sessions/x/export", nil,
		map[string]string{"sessionId": sess.ID})
	if err := env.handler.HandleExport(c); err != nil {
		t.Fatalf("HandleExport: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d", rec.Code)
	}
}

func TestHandleImportDocument_ParseErrorLeavesDocumentUntouched(t *testing.T) {
	env := newTestEnv(t)
	sess := env.newSession(t)
	id := sess.Store.CreateElement(models.ElementGauge, 0, 0, "")

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/x/import",
		bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	c := env.echo.NewContext(req, rec)
	c.SetParamNames("sessionId")
	c.SetParamValues(sess.ID)

	err := env.handler.HandleImportDocument(c)
	assertAPIError(t, err, "PARSE_ERROR", http.StatusBadRequest)

	if _, ok := sess.Store.Element(id); !ok {
		t.Error("failed import must leave the current document untouched")
	}
}

func TestHandleCreateElement(t *testing.T) {
	env := newTestEnv(t)
	sess := env.newSession(t)

	c, rec := env.request(http.MethodPost, "/api/sessions/x/elements",
		createElementRequest{Type: models.ElementGauge, X: 100, Y: 100},
		map[string]string{"sessionId": sess.ID})

	if err := env.handler.HandleCreateElement(c); err != nil {
		t.Fatalf("HandleCreateElement: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("status: got %d, want 201", rec.Code)
	}

	var resp struct {
		ID    string      `json:"id"`
		State editorState `json:"state"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID == "" {
		t.Error("expected generated id")
	}
	if len(resp.State.Document.Elements) != 1 {
		t.Errorf("expected 1 element in state, got %d", len(resp.State.Document.Elements))
	}
}

func TestHandleCreateElement_BadType(t *testing.T) {
	env := newTestEnv(t)
	sess := env.newSession(t)

	tests := []struct {
		name    string
		request createElementRequest
		code    string
	}{
		{"missing type", createElementRequest{}, "VALIDATION_ERROR"},
		{"unknown type", createElementRequest{Type: "hologram"}, "BAD_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := env.request(http.MethodPost, "/api/sessions/x/elements", tt.request,
				map[string]string{"sessionId": sess.ID})
			err := env.handler.HandleCreateElement(c)
			assertAPIError(t, err, tt.code, http.StatusBadRequest)
		})
	}
}

func TestHandleUpdateElement_UnknownIDReportsNoOp(t *testing.T) {
	env := newTestEnv(t)
	sess := env.newSession(t)

	c, rec := env.request(http.MethodPatch, "/api/sessions/x/elements/ghost",
		models.ElementUpdate{}, map[string]string{"sessionId": sess.ID, "elementId": "ghost"})
	if err := env.handler.HandleUpdateElement(c); err != nil {
		t.Fatalf("HandleUpdateElement: %v", err)
	}
	var resp struct {
		Updated bool `json:"updated"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Updated {
		t.Error("unknown element must be reported as not updated")
	}
}

func TestHandleDuplicateElement_UnknownID(t *testing.T) {
	env := newTestEnv(t)
	sess := env.newSession(t)

	c, _ := env.request(http.MethodPost, "/api/sessions/x/elements/ghost/duplicate", nil,
		map[string]string{"sessionId": sess.ID, "elementId": "ghost"})
	err := env.handler.HandleDuplicateElement(c)
	assertAPIError(t, err, "NOT_FOUND", http.StatusNotFound)
}

func TestHandleSetTool(t *testing.T) {
	env := newTestEnv(t)
	sess := env.newSession(t)

	c, rec := env.request(http.MethodPut, "/api/sessions/x/tool",
		map[string]string{"tool": "gauge"},
		map[string]string{"sessionId": sess.ID})
	if err := env.handler.HandleSetTool(c); err != nil {
		t.Fatalf("HandleSetTool: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d", rec.Code)
	}
	if got := sess.Store.Tool(); string(got) != "gauge" {
		t.Errorf("tool: got %q", got)
	}

	c, _ = env.request(http.MethodPut, "/api/sessions/x/tool",
		map[string]string{"tool": "laser"},
		map[string]string{"sessionId": sess.ID})
	err := env.handler.HandleSetTool(c)
	assertAPIError(t, err, "BAD_REQUEST", http.StatusBadRequest)
}

func TestHandleSaveAndOpenLayout(t *testing.T) {
	env := newTestEnv(t)
	sess := env.newSession(t)
	sess.Store.CreateElement(models.ElementGauge, 40, 40, "")

	// Save the session's document.
	c, rec := env.request(http.MethodPost, "/api/layouts/x/save",
		saveLayoutRequest{SessionID: sess.ID, Name: "dash"}, nil)
	if err := env.handler.HandleSaveLayout(c); err != nil {
		t.Fatalf("HandleSaveLayout: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201", rec.Code)
	}
	var info models.LayoutInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info.ElementCount != 1 {
		t.Errorf("element count: got %d, want 1", info.ElementCount)
	}

	// Open it into a second session.
	other := env.newSession(t)
	c, rec = env.request(http.MethodPost, "/api/layouts/x/open",
		openLayoutRequest{SessionID: other.ID},
		map[string]string{"id": info.ID})
	if err := env.handler.HandleOpenLayout(c); err != nil {
		t.Fatalf("HandleOpenLayout: %v", err)
	}
	state := decodeState(t, rec.Body.Bytes())
	if len(state.Document.Elements) != 1 {
		t.Errorf("opened document should have 1 element, got %d", len(state.Document.Elements))
	}
}

func TestHandleImportLayout(t *testing.T) {
	env := newTestEnv(t)

	doc := `{"version":"1.0","elements":[]}`
	c, rec := env.request(http.MethodPost, "/api/layouts/import",
		importLayoutRequest{Name: "imported", Data: base64.StdEncoding.EncodeToString([]byte(doc))}, nil)
	if err := env.handler.HandleImportLayout(c); err != nil {
		t.Fatalf("HandleImportLayout: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("status: got %d, want 201", rec.Code)
	}
	if env.layouts.LayoutCount() != 1 {
		t.Errorf("expected 1 saved layout, got %d", env.layouts.LayoutCount())
	}
}

func TestHandleImportLayout_Errors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		request importLayoutRequest
		code    string
	}{
		{"missing name", importLayoutRequest{Data: "e30="}, "VALIDATION_ERROR"},
		{"missing data", importLayoutRequest{Name: "x"}, "VALIDATION_ERROR"},
		{"bad base64", importLayoutRequest{Name: "x", Data: "!!!"}, "BAD_REQUEST"},
		{"not a document", importLayoutRequest{Name: "x",
			Data: base64.StdEncoding.EncodeToString([]byte("not json"))}, "PARSE_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := env.request(http.MethodPost, "/api/layouts/import", tt.request, nil)
			err := env.handler.HandleImportLayout(c)
			assertAPIError(t, err, tt.code, http.StatusBadRequest)
			if env.layouts.LayoutCount() != 0 {
				t.Error("failed import must not save anything")
			}
		})
	}
}

func TestHandleDeleteLayout(t *testing.T) {
	env := newTestEnv(t)
	env.layouts.AddLayout("l1", "doomed", []byte("{}"), 0)

	c, rec := env.request(http.MethodDelete, "/api/layouts/l1", nil,
		map[string]string{"id": "l1"})
	if err := env.handler.HandleDeleteLayout(c); err != nil {
		t.Fatalf("HandleDeleteLayout: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status: got %d, want 204", rec.Code)
	}

	c, _ = env.request(http.MethodDelete, "/api/layouts/l1", nil,
		map[string]string{"id": "l1"})
	err := env.handler.HandleDeleteLayout(c)
	assertAPIError(t, err, "NOT_FOUND", http.StatusNotFound)
}

func TestRegisterRoutes_DeleteDisabledByConfig(t *testing.T) {
	layouts := testutil.NewMockStorage()
	layouts.AddLayout("l1", "protected", []byte("{}"), 0)
	sessions := session.NewManager(validation.Default(), catalog.Default(), session.Options{
		SimulatorInterval: time.Hour,
	})
	t.Cleanup(sessions.Shutdown)

	e := echo.New()
	SetupMiddleware(e)
	RegisterRoutes(e, NewHandler(layouts, sessions, catalog.Default(), "test", false))

	req := httptest.NewRequest(http.MethodDelete, "/api/layouts/l1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	// The delete route is never registered, so echo rejects the method
	// before the handler can run.
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", rec.Code)
	}
	if _, err := layouts.Get("l1"); err != nil {
		t.Error("layout should survive a delete request when deletion is disabled")
	}

	// The sibling routes on the same path stay registered.
	req = httptest.NewRequest(http.MethodGet, "/api/layouts/l1", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("get layout status: got %d, want 200", rec.Code)
	}
}

func TestHandleGetCatalog(t *testing.T) {
	env := newTestEnv(t)
	c, rec := env.request(http.MethodGet, "/api/catalog", nil, nil)

	if err := env.handler.HandleGetCatalog(c); err != nil {
		t.Fatalf("HandleGetCatalog: %v", err)
	}
	var entries []catalog.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != len(models.ElementTypes) {
		t.Errorf("expected %d catalog entries, got %d", len(models.ElementTypes), len(entries))
	}
}

func TestHandleGetSensorSnapshot_Msgpack(t *testing.T) {
	env := newTestEnv(t)
	sess := env.newSession(t)

	c, rec := env.request(http.MethodGet, "/api/sessions/x/sensors/msgpack", nil,
		map[string]string{"sessionId": sess.ID})
	if err := env.handler.HandleGetSensorSnapshotMsgpack(c); err != nil {
		t.Fatalf("HandleGetSensorSnapshotMsgpack: %v", err)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/x-msgpack" {
		t.Errorf("content type: got %q", ct)
	}

	var snap sensors.Snapshot
	if err := msgpack.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decoding msgpack snapshot: %v", err)
	}
	if len(snap) != len(sensors.KnownIDs()) {
		t.Errorf("snapshot size: got %d, want %d", len(snap), len(sensors.KnownIDs()))
	}
}
