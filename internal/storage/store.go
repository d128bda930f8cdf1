// Package storage reads and writes the named data files the map is built
// from (cities.json, locations_<id>.geojson).
package storage

import (
	"context"
	"errors"
	"fmt"

	"puzzled_pint_map/internal/config"
)

var (
	ErrNotFound = errors.New("data file not found")
	ErrReadOnly = errors.New("data store is read-only")
)

// Store is a flat namespace of data files.
type Store interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
}

// New builds the store selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "file", "":
		return NewFileStore(cfg.Dir)
	case "s3":
		return NewS3Store(ctx, cfg.S3)
	case "http":
		return NewHTTPStore(cfg.BaseURL, nil), nil
	default:
		return nil, fmt.Errorf("%w %q", config.ErrStorageDriver, cfg.Driver)
	}
}
