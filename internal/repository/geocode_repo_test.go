package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"puzzled_pint_map/internal/geocode"
)

func newMockGeocodeRepo(t *testing.T) (*GeocodeSQLite, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	repo := NewGeocodeSQLite(db)
	repo.now = func() time.Time { return time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC) }
	cleanup := func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	}
	return repo, mock, cleanup
}

func TestGeocodeSQLite_Get(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		mockExpect     func(sqlmock.Sqlmock)
		wantPoint      geocode.Point
		wantOK         bool
		wantErr        bool
		errContainsStr string
	}{
		{
			name:  "hit",
			query: "123 Main St, Portland, OR 97201",
			mockExpect: func(m sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"address", "latitude", "longitude"}).
					AddRow("123 Main St, Portland, OR 97201, USA", 45.5, -122.6)
				m.ExpectQuery(regexp.QuoteMeta(selectKnownAddressSQL)).
					WithArgs("123 Main St, Portland, OR 97201").
					WillReturnRows(rows)
			},
			wantPoint: geocode.Point{Address: "123 Main St, Portland, OR 97201, USA", Latitude: 45.5, Longitude: -122.6},
			wantOK:    true,
		},
		{
			name:  "miss",
			query: "Nowhere",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectKnownAddressSQL)).
					WithArgs("Nowhere").
					WillReturnRows(sqlmock.NewRows([]string{"address", "latitude", "longitude"}))
			},
			wantOK: false,
		},
		{
			name:  "query error",
			query: "Boston",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectKnownAddressSQL)).
					WithArgs("Boston").
					WillReturnError(errors.New("disk I/O error"))
			},
			wantErr:        true,
			errContainsStr: "select known address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := newMockGeocodeRepo(t)
			defer cleanup()

			tt.mockExpect(mock)

			p, ok, err := repo.Get(context.Background(), tt.query)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if !contains(err.Error(), tt.errContainsStr) {
					t.Fatalf("expected error to contain %q, got %q", tt.errContainsStr, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("ok: want %v, got %v", tt.wantOK, ok)
			}
			if p != tt.wantPoint {
				t.Fatalf("point: want %+v, got %+v", tt.wantPoint, p)
			}
		})
	}
}

func TestGeocodeSQLite_Put(t *testing.T) {
	repo, mock, cleanup := newMockGeocodeRepo(t)
	defer cleanup()

	p := geocode.Point{Address: "Seattle, WA, USA", Latitude: 47.6, Longitude: -122.3}
	mock.ExpectExec(regexp.QuoteMeta(upsertKnownAddressSQL)).
		WithArgs("Seattle", p.Address, p.Latitude, p.Longitude, repo.now().UTC()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Put(context.Background(), "Seattle", p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGeocodeSQLite_PutError(t *testing.T) {
	repo, mock, cleanup := newMockGeocodeRepo(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(upsertKnownAddressSQL)).
		WillReturnError(errors.New("database is locked"))

	err := repo.Put(context.Background(), "Denver", geocode.Point{})
	if err == nil || !contains(err.Error(), "upsert known address") {
		t.Fatalf("expected wrapped upsert error, got %v", err)
	}
}
