package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"puzzled_pint_map/internal/importer"
	"puzzled_pint_map/internal/logger"
	"puzzled_pint_map/internal/models"
)

type stubLocationImporter struct {
	rep importer.LocationReport
	err error
	ids []int
}

func (s *stubLocationImporter) Import(_ context.Context, eventID int) (importer.LocationReport, error) {
	s.ids = append(s.ids, eventID)
	return s.rep, s.err
}

type stubCityImporter struct {
	importRep importer.CityReport
	resetRep  importer.CityReport
	err       error
	body      string
}

func (s *stubCityImporter) Import(_ context.Context, r io.Reader) (importer.CityReport, error) {
	b, _ := io.ReadAll(r)
	s.body = string(b)
	return s.importRep, s.err
}

func (s *stubCityImporter) Reset(context.Context) (importer.CityReport, error) {
	return s.resetRep, s.err
}

type stubImportRepo struct {
	runs      []models.ImportRun
	appendErr error
	listKind  string
	listLimit int
}

func (r *stubImportRepo) Append(_ context.Context, run models.ImportRun) error {
	r.runs = append(r.runs, run)
	return r.appendErr
}

func (r *stubImportRepo) List(_ context.Context, kind string, limit int) ([]models.ImportRun, error) {
	r.listKind, r.listLimit = kind, limit
	return r.runs, nil
}

type stubBuilder struct {
	builds int
	err    error
}

func (b *stubBuilder) Build(context.Context) (*MapSnapshot, error) {
	b.builds++
	return nil, b.err
}

func newTestImportService(loc *stubLocationImporter, cities *stubCityImporter, repo *stubImportRepo, maps *stubBuilder) *ImportService {
	svc := NewImportService(loc, cities, repo, maps, logger.Nop())
	tick := time.Date(2023, 7, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return svc
}

func TestImportService_ImportLocations_RecordsAndRebuilds(t *testing.T) {
	loc := &stubLocationImporter{rep: importer.LocationReport{EventID: 190, Locations: 12}}
	repo := &stubImportRepo{}
	maps := &stubBuilder{}
	svc := newTestImportService(loc, &stubCityImporter{}, repo, maps)

	rep, err := svc.ImportLocations(context.Background(), 190)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Locations != 12 || len(loc.ids) != 1 || loc.ids[0] != 190 {
		t.Fatalf("importer not called as expected: %+v %v", rep, loc.ids)
	}
	if maps.builds != 1 {
		t.Fatalf("expected one rebuild, got %d", maps.builds)
	}
	if len(repo.runs) != 1 {
		t.Fatalf("expected one recorded run, got %d", len(repo.runs))
	}
	run := repo.runs[0]
	if run.Kind != models.ImportLocations || run.EventID != 190 || run.Records != 12 || run.Status != models.ImportSucceeded {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.RunID == "" || !run.FinishedAt.After(run.StartedAt) {
		t.Fatalf("run id and timing must be set: %+v", run)
	}
}

func TestImportService_FailureRecordedWithoutRebuild(t *testing.T) {
	loc := &stubLocationImporter{err: errors.New("feed unavailable")}
	repo := &stubImportRepo{}
	maps := &stubBuilder{}
	svc := newTestImportService(loc, &stubCityImporter{}, repo, maps)

	if _, err := svc.ImportLocations(context.Background(), 191); err == nil {
		t.Fatalf("expected error")
	}
	if maps.builds != 0 {
		t.Fatalf("failed import must not rebuild the map")
	}
	if repo.runs[0].Status != models.ImportFailed || repo.runs[0].Message != "feed unavailable" {
		t.Fatalf("unexpected run: %+v", repo.runs[0])
	}
}

func TestImportService_SideEffectErrorsDoNotFailImport(t *testing.T) {
	repo := &stubImportRepo{appendErr: errors.New("db locked")}
	maps := &stubBuilder{err: errors.New("cities missing")}
	cities := &stubCityImporter{importRep: importer.CityReport{Cities: 3}}
	svc := newTestImportService(&stubLocationImporter{}, cities, repo, maps)

	rep, err := svc.ImportCities(context.Background(), strings.NewReader("<a href='/x'>X</a>"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Cities != 3 || cities.body != "<a href='/x'>X</a>" {
		t.Fatalf("unexpected report or body: %+v %q", rep, cities.body)
	}
	if repo.runs[0].Kind != models.ImportCities {
		t.Fatalf("unexpected kind: %s", repo.runs[0].Kind)
	}
}

func TestImportService_ResetCities(t *testing.T) {
	repo := &stubImportRepo{}
	maps := &stubBuilder{}
	cities := &stubCityImporter{resetRep: importer.CityReport{Cities: 40}}
	svc := newTestImportService(&stubLocationImporter{}, cities, repo, maps)

	if _, err := svc.ResetCities(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.runs[0].Kind != models.ImportReset || repo.runs[0].Records != 40 || maps.builds != 1 {
		t.Fatalf("unexpected run: %+v builds=%d", repo.runs[0], maps.builds)
	}
}

func TestImportService_History(t *testing.T) {
	tests := []struct {
		name     string
		kind     string
		wantKind string
		wantErr  error
	}{
		{"all", "", "", nil},
		{"normalised", "  locations ", models.ImportLocations, nil},
		{"reset", "reset", models.ImportReset, nil},
		{"unknown", "telemetry", "", ErrInvalidImportKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &stubImportRepo{}
			svc := newTestImportService(&stubLocationImporter{}, &stubCityImporter{}, repo, &stubBuilder{})

			_, err := svc.History(context.Background(), tt.kind, 10)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if repo.listKind != tt.wantKind || repo.listLimit != 10 {
				t.Fatalf("repo called with kind=%q limit=%d", repo.listKind, repo.listLimit)
			}
		})
	}
}
