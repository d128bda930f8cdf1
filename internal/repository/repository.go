package repository

import (
	"context"
	"database/sql"

	"puzzled_pint_map/internal/geocode"
	"puzzled_pint_map/internal/models"
)

// AdminRepo stores the admin accounts.
type AdminRepo interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
	Count(ctx context.Context) (int, error)
}

// GeocodeRepo is the persistent geocoder cache.
type GeocodeRepo interface {
	Get(ctx context.Context, query string) (geocode.Point, bool, error)
	Put(ctx context.Context, query string, p geocode.Point) error
}

// ImportRepo is the append-only history of data imports.
type ImportRepo interface {
	Append(ctx context.Context, run models.ImportRun) error
	List(ctx context.Context, kind string, limit int) ([]models.ImportRun, error)
}

type Repository struct {
	Admins  AdminRepo
	Geocode GeocodeRepo
	Imports ImportRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Admins:  NewAdminSQLite(db),
		Geocode: NewGeocodeSQLite(db),
		Imports: NewImportSQLite(db),
	}
}
