package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var adminCreatedAt = time.Date(2023, 7, 1, 18, 0, 0, 0, time.UTC)

func newAdminRepo(t *testing.T) (*AdminSQLite, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	})
	repo := NewAdminSQLite(db)
	repo.now = func() time.Time { return adminCreatedAt }
	return repo, mock
}

func TestAdminSQLite_Create(t *testing.T) {
	tests := []struct {
		name      string
		expect    func(sqlmock.Sqlmock)
		wantID    int
		wantTaken bool
		wantErr   string
	}{
		{
			name: "first admin",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertAdminSQL)).
					WithArgs("pintmaster", "$2a$hash", adminCreatedAt).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
			wantID: 1,
		},
		{
			name: "name taken in another case",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertAdminSQL)).
					WithArgs("pintmaster", "$2a$hash", adminCreatedAt).
					WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: admins.username (2067)"))
			},
			wantTaken: true,
		},
		{
			name: "database locked",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertAdminSQL)).
					WithArgs("pintmaster", "$2a$hash", adminCreatedAt).
					WillReturnError(errors.New("database is locked"))
			},
			wantErr: "insert admin",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newAdminRepo(t)
			tt.expect(mock)

			id, err := repo.Create(context.Background(), "pintmaster", "$2a$hash")
			switch {
			case tt.wantTaken:
				if !errors.Is(err, ErrUsernameTaken) {
					t.Fatalf("want ErrUsernameTaken, got %v", err)
				}
			case tt.wantErr != "":
				if err == nil || !contains(err.Error(), tt.wantErr) || errors.Is(err, ErrUsernameTaken) {
					t.Fatalf("want error containing %q, got %v", tt.wantErr, err)
				}
			default:
				if err != nil || id != tt.wantID {
					t.Fatalf("Create = %d, %v; want %d", id, err, tt.wantID)
				}
			}
		})
	}
}

func TestAdminSQLite_GetByUsername(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newAdminRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectAdminByUsernameSQL)).
			WithArgs("pintmaster").
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
				AddRow(3, "PintMaster", "$2a$hash", adminCreatedAt))

		a, err := repo.GetByUsername(context.Background(), "pintmaster")
		if err != nil {
			t.Fatalf("GetByUsername: %v", err)
		}
		if a == nil || a.ID != 3 || a.Username != "PintMaster" || a.PasswordHash != "$2a$hash" || !a.CreatedAt.Equal(adminCreatedAt) {
			t.Fatalf("unexpected admin: %+v", a)
		}
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newAdminRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectAdminByUsernameSQL)).
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		a, err := repo.GetByUsername(context.Background(), "ghost")
		if err != nil || a != nil {
			t.Fatalf("want (nil, nil), got (%+v, %v)", a, err)
		}
	})

	t.Run("query error", func(t *testing.T) {
		repo, mock := newAdminRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectAdminByUsernameSQL)).
			WithArgs("pintmaster").
			WillReturnError(errors.New("disk I/O error"))

		if _, err := repo.GetByUsername(context.Background(), "pintmaster"); err == nil || !contains(err.Error(), "select admin") {
			t.Fatalf("want wrapped select error, got %v", err)
		}
	})
}

func TestAdminSQLite_Count(t *testing.T) {
	repo, mock := newAdminRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(countAdminsSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta(countAdminsSQL)).
		WillReturnError(errors.New("no such table: admins"))

	if n, err := repo.Count(context.Background()); err != nil || n != 2 {
		t.Fatalf("Count = %d, %v", n, err)
	}
	if _, err := repo.Count(context.Background()); err == nil || !contains(err.Error(), "count admins") {
		t.Fatalf("want wrapped count error, got %v", err)
	}
}
