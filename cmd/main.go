package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"puzzled_pint_map/internal/config"
	"puzzled_pint_map/internal/geocode"
	"puzzled_pint_map/internal/handlers"
	"puzzled_pint_map/internal/logger"
	"puzzled_pint_map/internal/repository"
	"puzzled_pint_map/internal/repository/db"
	"puzzled_pint_map/internal/server"
	"puzzled_pint_map/internal/service"
	"puzzled_pint_map/internal/storage"
)

// @title                       Puzzled Pint Map API
// @version                     1.0
// @description                 Event location overlays, city list and data imports for the Puzzled Pint map.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// load configs/config.yml, .env and PINTMAP_* overrides
	cfg, err := config.Load(config.New(os.Getenv("PINTMAP_CONFIG")))
	if err != nil {
		logger.Get(logger.InfoLevel, logger.FormatConsole).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	// open DB
	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err, "path", cfg.DB.Path)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatalw("failed to init storage", "err", err, "driver", cfg.Storage.Driver)
	}

	// the map is served without a geocoder; only imports need one
	geo, err := geocode.New(cfg.Geocoder)
	if err != nil {
		log.Warnw("geocoder_disabled", "err", err, "provider", cfg.Geocoder.Provider)
	}

	// wire dependencies
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, service.Deps{
		Config:   cfg,
		Store:    store,
		Geocoder: geo,
		Log:      log,
	})
	apiHandler := handlers.NewHandler(services, log.Named("http"), dataDir(cfg.Storage))

	if _, err := services.Build(ctx); err != nil {
		log.Errorw("initial_map_build_failed", "err", err)
	}
	go services.Run(ctx, cfg.Map.RefreshInterval)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.HTTP, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, cfg.HTTP, log)
}

// dataDir is the directory served under /data; only the file driver has one.
func dataDir(cfg config.StorageConfig) string {
	if cfg.Driver == "" || cfg.Driver == "file" {
		return cfg.Dir
	}
	return ""
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, cfg config.HTTPConfig, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http_listening", "port", cfg.Port)
		if err := srv.Run(cfg, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, cfg config.HTTPConfig, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
