package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"puzzled_pint_map/internal/geocode"
)

// GeocodeSQLite persists geocoder answers in known_addresses.
type GeocodeSQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewGeocodeSQLite(db *sql.DB) *GeocodeSQLite {
	return &GeocodeSQLite{db: db, now: time.Now}
}

var (
	_ GeocodeRepo   = (*GeocodeSQLite)(nil)
	_ geocode.Cache = (*GeocodeSQLite)(nil)
)

const (
	selectKnownAddressSQL = `SELECT address, latitude, longitude FROM known_addresses WHERE query = ?`
	upsertKnownAddressSQL = `
INSERT INTO known_addresses (query, address, latitude, longitude, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(query) DO UPDATE SET
    address = excluded.address,
    latitude = excluded.latitude,
    longitude = excluded.longitude,
    created_at = excluded.created_at`
)

// Get returns ok=false when the query has never been resolved.
func (r *GeocodeSQLite) Get(ctx context.Context, query string) (geocode.Point, bool, error) {
	var p geocode.Point
	err := r.db.QueryRowContext(ctx, selectKnownAddressSQL, query).Scan(&p.Address, &p.Latitude, &p.Longitude)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return geocode.Point{}, false, nil
		}
		return geocode.Point{}, false, fmt.Errorf("select known address %q: %w", query, err)
	}
	return p, true, nil
}

func (r *GeocodeSQLite) Put(ctx context.Context, query string, p geocode.Point) error {
	_, err := r.db.ExecContext(ctx, upsertKnownAddressSQL,
		query, p.Address, p.Latitude, p.Longitude, r.now().UTC())
	if err != nil {
		return fmt.Errorf("upsert known address %q: %w", query, err)
	}
	return nil
}
