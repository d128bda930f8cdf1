package handlers

import (
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "puzzled_pint_map/docs"
	"puzzled_pint_map/internal/logger"
	"puzzled_pint_map/internal/service"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	dataDir  string
}

// NewHandler constructs a new HTTP handler with dependencies. dataDir, when
// set, is served read-only under /data.
func NewHandler(services *service.Service, log *logger.Logger, dataDir string) *Handler {
	return &Handler{services: services, log: log, dataDir: dataDir}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestIDMiddleware, h.accessLogMiddleware)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Public map API plus the protected admin group
	h.registerAPIRoutes(router)

	// Raw data files, same layout the static site publishes
	if h.dataDir != "" {
		router.Static("/data", h.dataDir)
	}

	// Build progress stream
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/events", h.listEvents)
		api.GET("/map", h.getMap)
		api.GET("/layers/:id", h.getLayer)
	}

	admin := api.Group("/admin", h.userIdMiddleware)
	{
		admin.POST("/map/rebuild", h.rebuildMap)
		h.registerImportRoutes(admin)
	}
}

func (h *Handler) registerImportRoutes(admin *gin.RouterGroup) {
	imports := admin.Group("/imports")
	{
		imports.GET("", h.listImports)
		imports.POST("/locations/:eventId", h.importLocations)
		// Body: the homepage city list HTML
		imports.POST("/cities", h.importCities)
		imports.POST("/cities/reset", h.resetCities)
	}
}
