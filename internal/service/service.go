package service

import (
	"context"
	"io"
	"time"

	"puzzled_pint_map/internal/config"
	"puzzled_pint_map/internal/geocode"
	"puzzled_pint_map/internal/importer"
	"puzzled_pint_map/internal/loader"
	"puzzled_pint_map/internal/logger"
	"puzzled_pint_map/internal/models"
	"puzzled_pint_map/internal/repository"
	"puzzled_pint_map/internal/storage"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Map exposes the assembled overlay map and its build progress.
type Map interface {
	Events() []models.Event
	Build(ctx context.Context) (*MapSnapshot, error)
	Snapshot() (*MapSnapshot, error)
	Layer(id string) (*models.Layer, error)
	Subscribe() (<-chan MapEvent, func())
	// Run rebuilds the map every interval until ctx ends.
	Run(ctx context.Context, interval time.Duration)
}

// Imports runs the data maintenance jobs and lists their history.
type Imports interface {
	ImportLocations(ctx context.Context, eventID int) (importer.LocationReport, error)
	ImportCities(ctx context.Context, r io.Reader) (importer.CityReport, error)
	ResetCities(ctx context.Context) (importer.CityReport, error)
	History(ctx context.Context, kind string, limit int) ([]models.ImportRun, error)
}

// Service aggregates all sub-services.
type Service struct {
	Map
	Imports
	Authorization
}

// Deps are the non-repository collaborators of the services. Geocoder may
// be nil, in which case geocoding imports fail with importer.ErrNoGeocoder.
type Deps struct {
	Config   *config.Config
	Store    storage.Store
	Geocoder geocode.Geocoder
	Feed     importer.Feed
	Log      *logger.Logger
}

// NewService wires the repository layer and deps into concrete services.
func NewService(repos *repository.Repository, deps Deps) *Service {
	cfg := deps.Config

	var geo geocode.Geocoder
	if deps.Geocoder != nil {
		geo = geocode.NewCached(deps.Geocoder, repos.Geocode, deps.Log.Named("geocode"))
	}
	feed := deps.Feed
	if feed == nil {
		feed = importer.NewHTTPFeed(cfg.Importer.LocationsURL, cfg.Importer.Timeout)
	}

	maps := NewMapService(loader.New(deps.Store), cfg.Events, cfg.Map, deps.Log)
	imports := NewImportService(
		importer.NewLocationImporter(feed, geo, deps.Store, cfg.Events, cfg.Importer.IncludeRemote, deps.Log),
		importer.NewCityImporter(geo, deps.Store, deps.Log),
		repos.Imports,
		maps,
		deps.Log,
	)

	return &Service{
		Map:           maps,
		Imports:       imports,
		Authorization: NewAuthService(repos.Admins, cfg.Auth),
	}
}
