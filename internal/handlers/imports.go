package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"puzzled_pint_map/internal/importer"
	"puzzled_pint_map/internal/service"
	"puzzled_pint_map/internal/storage"
)

const (
	maxCityListBytes  = 4 << 20
	defaultImportList = 50
	maxImportList     = 500

	errInvalidEventID = "invalid event id"
	errEmptyCityList  = "empty city list body"
	errInvalidLimit   = "invalid 'limit'; use 1-500"
)

// importErrorStatus maps import failures to HTTP codes.
func importErrorStatus(err error) int {
	switch {
	case errors.Is(err, importer.ErrNoGeocoder):
		return http.StatusServiceUnavailable
	case errors.Is(err, importer.ErrInvalidFeed):
		return http.StatusBadGateway
	case errors.Is(err, storage.ErrReadOnly):
		return http.StatusConflict
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// @Summary      Import an event's locations
// @Description  Fetches the legacy feed, geocodes it, writes locations_<id>.geojson and links the event into cities.json.
// @Tags         admin
// @Produce      json
// @Param        eventId  path      int  true  "Event id"  example(190)
// @Success      200      {object}  importer.LocationReport
// @Failure      400      {object}  map[string]string
// @Failure      401      {object}  map[string]string
// @Failure      502      {object}  map[string]string
// @Failure      503      {object}  map[string]string
// @Router       /api/v1/admin/imports/locations/{eventId} [post]
// @Security     BearerAuth
func (h *Handler) importLocations(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("eventId"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidEventID})
		return
	}

	rep, err := h.services.ImportLocations(c.Request.Context(), id)
	if err != nil {
		h.logAndJSONError(c, importErrorStatus(err), err.Error(), "import_locations_failed", err, "event_id", id)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// @Summary      Import the city list
// @Description  Body is the homepage city list HTML; every link becomes a city. Replaces cities.json.
// @Tags         admin
// @Accept       html
// @Produce      json
// @Success      200  {object}  importer.CityReport
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/admin/imports/cities [post]
// @Security     BearerAuth
func (h *Handler) importCities(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxCityListBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errEmptyCityList})
		return
	}

	rep, err := h.services.ImportCities(c.Request.Context(), bytes.NewReader(body))
	if err != nil {
		h.logAndJSONError(c, importErrorStatus(err), err.Error(), "import_cities_failed", err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// @Summary      Reset city event lists
// @Description  Clears event_ids and remote_event_ids of every city and keeps the other fields.
// @Tags         admin
// @Produce      json
// @Success      200  {object}  importer.CityReport
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/admin/imports/cities/reset [post]
// @Security     BearerAuth
func (h *Handler) resetCities(c *gin.Context) {
	rep, err := h.services.ResetCities(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, importErrorStatus(err), err.Error(), "reset_cities_failed", err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// @Summary      Import history
// @Tags         admin
// @Produce      json
// @Param        kind   query     string  false  "Import kind"  Enums(LOCATIONS,CITIES,RESET)
// @Param        limit  query     int     false  "Max runs (1-500)"  default(50)
// @Success      200    {object}  map[string]interface{}  "count, runs"
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /api/v1/admin/imports [get]
// @Security     BearerAuth
func (h *Handler) listImports(c *gin.Context) {
	limit := defaultImportList
	if s := c.Query("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 || v > maxImportList {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidLimit})
			return
		}
		limit = v
	}

	runs, err := h.services.History(c.Request.Context(), c.Query("kind"), limit)
	if err != nil {
		if errors.Is(err, service.ErrInvalidImportKind) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to list imports", "imports_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(runs),
		"runs":  runs,
	})
}
