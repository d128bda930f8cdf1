package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"puzzled_pint_map/internal/models"
	"puzzled_pint_map/internal/service"
)

const (
	statusOK = "ok"

	errMapNotBuilt  = "map is not built yet"
	errMapBuild     = "map build failed"
	errUnknownLayer = "unknown layer"
)

// OverlayResponse describes one registered overlay.
type OverlayResponse struct {
	ID       string           `json:"id" example:"event-190"`
	Label    string           `json:"label" example:"July 2023"`
	Kind     models.LayerKind `json:"kind" example:"event"`
	EventID  int              `json:"event_id,omitempty" example:"190"`
	Features int              `json:"features" example:"57"`
}

// MapResponse is the registry snapshot in registration order.
type MapResponse struct {
	Overlays []OverlayResponse `json:"overlays"`
	Default  string            `json:"default,omitempty" example:"event-190"`
	BuiltAt  time.Time         `json:"built_at"`
	Missing  []string          `json:"missing,omitempty"`
}

func newMapResponse(snap *service.MapSnapshot) MapResponse {
	overlays := snap.Registry.Overlays()
	resp := MapResponse{
		Overlays: make([]OverlayResponse, 0, len(overlays)),
		BuiltAt:  snap.BuiltAt,
		Missing:  snap.Missing,
	}
	for _, ov := range overlays {
		resp.Overlays = append(resp.Overlays, OverlayResponse{
			ID:       ov.Layer.ID,
			Label:    ov.Label,
			Kind:     ov.Layer.Kind,
			EventID:  ov.Layer.EventID,
			Features: ov.Layer.Len(),
		})
	}
	if def, ok := snap.Registry.Default(); ok {
		resp.Default = def.Layer.ID
	}
	return resp
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err, "request_id", c.GetString(requestIDKey)}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	resp := gin.H{"status": statusOK}
	if snap, err := h.services.Snapshot(); err == nil {
		resp["map_built_at"] = snap.BuiltAt
	} else {
		resp["map_built_at"] = nil
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      List configured events
// @Description  Events in chronological order; the last one is shown by default.
// @Tags         map
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, events"
// @Router       /api/v1/events [get]
func (h *Handler) listEvents(c *gin.Context) {
	events := h.services.Events()
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// @Summary      Map overlays
// @Tags         map
// @Produce      json
// @Success      200  {object}  MapResponse
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/map [get]
func (h *Handler) getMap(c *gin.Context) {
	snap, err := h.services.Snapshot()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errMapNotBuilt})
		return
	}
	c.JSON(http.StatusOK, newMapResponse(snap))
}

// @Summary      Layer features
// @Description  GeoJSON FeatureCollection of one overlay.
// @Tags         map
// @Produce      json
// @Param        id   path      string  true  "Layer id"  example(event-190)
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/layers/{id} [get]
func (h *Handler) getLayer(c *gin.Context) {
	layer, err := h.services.Layer(c.Param("id"))
	switch {
	case errors.Is(err, service.ErrMapNotBuilt):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errMapNotBuilt})
		return
	case errors.Is(err, service.ErrLayerUnknown):
		c.JSON(http.StatusNotFound, gin.H{"error": errUnknownLayer})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load layer", "layer_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, layer.Features)
}

// @Summary      Rebuild the map
// @Description  Reloads every data file and replaces the snapshot on success.
// @Tags         admin
// @Produce      json
// @Success      200  {object}  MapResponse
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/admin/map/rebuild [post]
// @Security     BearerAuth
func (h *Handler) rebuildMap(c *gin.Context) {
	snap, err := h.services.Build(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errMapBuild+": "+err.Error(), "map_rebuild_failed", err)
		return
	}
	c.JSON(http.StatusOK, newMapResponse(snap))
}
