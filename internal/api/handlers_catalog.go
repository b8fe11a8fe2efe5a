// handlers_catalog.go - Element catalog and sensor lookup handlers
package api

import (
	"net/http"

	"github.com/gauge-designer/backend/internal/sensors"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// HandleGetCatalog returns the element-kind table: default sizes,
// suggested sensors and required visual fields per kind.
func (h *Handler) HandleGetCatalog(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.Entries())
}

// HandleGetSensors returns the known sensor table.
func (h *Handler) HandleGetSensors(c echo.Context) error {
	return c.JSON(http.StatusOK, sensors.KnownSensors())
}

// HandleGetSensorSnapshot returns the session's current simulated sensor
// values as JSON.
func (h *Handler) HandleGetSensorSnapshot(c echo.Context) error {
	sess, apiErr := h.resolveSession(c)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, sess.Simulator.GetCurrentSnapshot())
}

// HandleGetSensorSnapshotMsgpack returns the snapshot as msgpack for
// preview renderers polling at high frequency.
func (h *Handler) HandleGetSensorSnapshotMsgpack(c echo.Context) error {
	sess, apiErr := h.resolveSession(c)
	if apiErr != nil {
		return apiErr
	}

	data, err := msgpack.Marshal(sess.Simulator.GetCurrentSnapshot())
	if err != nil {
		return NewInternalError("failed to encode snapshot", err)
	}

	return c.Blob(http.StatusOK, "application/x-msgpack", data)
}
