package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"puzzled_pint_map/internal/models"
)

// ImportSQLite stores ImportRun rows in import_runs.
type ImportSQLite struct {
	db *sql.DB
}

func NewImportSQLite(db *sql.DB) *ImportSQLite {
	return &ImportSQLite{db: db}
}

var _ ImportRepo = (*ImportSQLite)(nil)

const (
	insertImportRunSQL = `
INSERT INTO import_runs (id, kind, event_id, started_at, finished_at, records, status, message)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	selectImportRunsSQL = `
SELECT id, kind, event_id, started_at, finished_at, records, status, message
FROM import_runs`
	importRunsOrderSQL = ` ORDER BY started_at DESC LIMIT ?`
)

const defaultImportListLimit = 50

// Append inserts a run. An empty RunID gets a fresh uuid.
func (r *ImportSQLite) Append(ctx context.Context, run models.ImportRun) error {
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}

	var eventID sql.NullInt64
	if run.EventID != 0 {
		eventID = sql.NullInt64{Int64: int64(run.EventID), Valid: true}
	}
	var message sql.NullString
	if run.Message != "" {
		message = sql.NullString{String: run.Message, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, insertImportRunSQL,
		run.RunID, run.Kind, eventID,
		run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.Records, run.Status, message)
	if err != nil {
		return fmt.Errorf("insert import run %s: %w", run.RunID, err)
	}
	return nil
}

// List returns runs newest first. An empty kind lists every kind.
func (r *ImportSQLite) List(ctx context.Context, kind string, limit int) ([]models.ImportRun, error) {
	if limit <= 0 {
		limit = defaultImportListLimit
	}

	var (
		rows *sql.Rows
		err  error
	)
	if kind == "" {
		rows, err = r.db.QueryContext(ctx, selectImportRunsSQL+importRunsOrderSQL, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, selectImportRunsSQL+` WHERE kind = ?`+importRunsOrderSQL, kind, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("select import runs: %w", err)
	}
	defer rows.Close()

	runs := make([]models.ImportRun, 0)
	for rows.Next() {
		var (
			run     models.ImportRun
			eventID sql.NullInt64
			message sql.NullString
		)
		if err := rows.Scan(&run.RunID, &run.Kind, &eventID, &run.StartedAt, &run.FinishedAt,
			&run.Records, &run.Status, &message); err != nil {
			return nil, fmt.Errorf("scan import run: %w", err)
		}
		run.EventID = int(eventID.Int64)
		run.Message = message.String
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate import runs: %w", err)
	}
	return runs, nil
}
