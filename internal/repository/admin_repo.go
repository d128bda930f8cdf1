package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"puzzled_pint_map/internal/models"
)

// ErrUsernameTaken is returned when an admin with the same name, compared
// case-insensitively, already exists.
var ErrUsernameTaken = errors.New("username already taken")

// AdminSQLite stores admin accounts in the admins table.
type AdminSQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewAdminSQLite(db *sql.DB) *AdminSQLite {
	return &AdminSQLite{db: db, now: time.Now}
}

var _ AdminRepo = (*AdminSQLite)(nil)

const (
	insertAdminSQL           = `INSERT INTO admins (username, password_hash, created_at) VALUES (?, ?, ?)`
	selectAdminByUsernameSQL = `SELECT id, username, password_hash, created_at FROM admins WHERE username = ?`
	countAdminsSQL           = `SELECT COUNT(*) FROM admins`
)

// Create inserts an admin and returns its id.
func (r *AdminSQLite) Create(ctx context.Context, username, passwordHash string) (int, error) {
	res, err := r.db.ExecContext(ctx, insertAdminSQL, username, passwordHash, r.now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", ErrUsernameTaken, username)
		}
		return 0, fmt.Errorf("insert admin %q: %w", username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("admin %q id: %w", username, err)
	}
	return int(id), nil
}

// GetByUsername looks an admin up by name. A missing admin is (nil, nil).
func (r *AdminSQLite) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var a models.Admin
	err := r.db.QueryRowContext(ctx, selectAdminByUsernameSQL, username).
		Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("select admin %q: %w", username, err)
	}
	return &a, nil
}

// Count returns the number of admins.
func (r *AdminSQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countAdminsSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		return serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
