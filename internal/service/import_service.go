package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"puzzled_pint_map/internal/importer"
	"puzzled_pint_map/internal/logger"
	"puzzled_pint_map/internal/models"
	"puzzled_pint_map/internal/repository"
)

var ErrInvalidImportKind = errors.New("invalid import kind")

// LocationImporter is satisfied by *importer.LocationImporter.
type LocationImporter interface {
	Import(ctx context.Context, eventID int) (importer.LocationReport, error)
}

// CityImporter is satisfied by *importer.CityImporter.
type CityImporter interface {
	Import(ctx context.Context, r io.Reader) (importer.CityReport, error)
	Reset(ctx context.Context) (importer.CityReport, error)
}

// MapBuilder is satisfied by *MapService.
type MapBuilder interface {
	Build(ctx context.Context) (*MapSnapshot, error)
}

// ImportService runs the data imports, records every run and rebuilds the
// map after a successful one.
type ImportService struct {
	locations LocationImporter
	cities    CityImporter
	runs      repository.ImportRepo
	maps      MapBuilder
	log       *logger.Logger
	now       func() time.Time
}

func NewImportService(locations LocationImporter, cities CityImporter, runs repository.ImportRepo, maps MapBuilder, log *logger.Logger) *ImportService {
	return &ImportService{
		locations: locations,
		cities:    cities,
		runs:      runs,
		maps:      maps,
		log:       log.Named("imports"),
		now:       time.Now,
	}
}

func (s *ImportService) ImportLocations(ctx context.Context, eventID int) (importer.LocationReport, error) {
	started := s.now()
	rep, err := s.locations.Import(ctx, eventID)
	s.finish(ctx, models.ImportRun{Kind: models.ImportLocations, EventID: eventID, StartedAt: started, Records: rep.Locations}, err)
	return rep, err
}

func (s *ImportService) ImportCities(ctx context.Context, r io.Reader) (importer.CityReport, error) {
	started := s.now()
	rep, err := s.cities.Import(ctx, r)
	s.finish(ctx, models.ImportRun{Kind: models.ImportCities, StartedAt: started, Records: rep.Cities}, err)
	return rep, err
}

func (s *ImportService) ResetCities(ctx context.Context) (importer.CityReport, error) {
	started := s.now()
	rep, err := s.cities.Reset(ctx)
	s.finish(ctx, models.ImportRun{Kind: models.ImportReset, StartedAt: started, Records: rep.Cities}, err)
	return rep, err
}

// finish records the run and, on success, rebuilds the map. Neither step
// changes the outcome of the import itself.
func (s *ImportService) finish(ctx context.Context, run models.ImportRun, err error) {
	run.RunID = uuid.NewString()
	run.FinishedAt = s.now()
	run.Status = models.ImportSucceeded
	if err != nil {
		run.Status = models.ImportFailed
		run.Message = err.Error()
		s.log.Errorw("import_failed", "run_id", run.RunID, "kind", run.Kind, "event_id", run.EventID, "err", err)
	} else {
		s.log.Infow("import_succeeded", "run_id", run.RunID, "kind", run.Kind, "event_id", run.EventID, "records", run.Records)
	}

	if s.runs != nil {
		if aerr := s.runs.Append(ctx, run); aerr != nil {
			s.log.Warnw("import_run_not_recorded", "run_id", run.RunID, "err", aerr)
		}
	}
	if err == nil && s.maps != nil {
		if _, berr := s.maps.Build(ctx); berr != nil {
			s.log.Warnw("map_rebuild_after_import_failed", "run_id", run.RunID, "err", berr)
		}
	}
}

// normalizeImportKind trims spaces and uppercases the kind filter.
func normalizeImportKind(s string) (string, error) {
	kind := strings.TrimSpace(strings.ToUpper(s))
	switch kind {
	case "", models.ImportLocations, models.ImportCities, models.ImportReset:
		return kind, nil
	}
	return "", ErrInvalidImportKind
}

// History lists recorded runs newest first, optionally of one kind.
func (s *ImportService) History(ctx context.Context, kind string, limit int) ([]models.ImportRun, error) {
	k, err := normalizeImportKind(kind)
	if err != nil {
		return nil, err
	}
	return s.runs.List(ctx, k, limit)
}
