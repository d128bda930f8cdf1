package models

import "time"

// Import kinds.
const (
	ImportLocations = "LOCATIONS"
	ImportCities    = "CITIES"
	ImportReset     = "RESET"
)

// Import statuses.
const (
	ImportSucceeded = "SUCCEEDED"
	ImportFailed    = "FAILED"
)

// ImportRun records one execution of a data import.
type ImportRun struct {
	RunID      string    `json:"run_id"`
	Kind       string    `json:"kind"`                // LOCATIONS | CITIES | RESET
	EventID    int       `json:"event_id,omitempty"`  // only for LOCATIONS
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Records    int       `json:"records"`
	Status     string    `json:"status"`            // SUCCEEDED | FAILED
	Message    string    `json:"message,omitempty"` // error text on failure
}
