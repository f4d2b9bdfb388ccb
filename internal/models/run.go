package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// SchedulingRunStatus reflects the outcome of an engine invocation.
type SchedulingRunStatus string

const (
	RunStatusCompleted      SchedulingRunStatus = "completed"
	RunStatusWithShortfalls SchedulingRunStatus = "completed_with_shortfalls"
	RunStatusFailed         SchedulingRunStatus = "failed"
)

// SchedulingRun records one engine invocation and its summary statistics.
type SchedulingRun struct {
	ID        string              `db:"id" json:"id"`
	Status    SchedulingRunStatus `db:"status" json:"status"`
	StartDate time.Time           `db:"start_date" json:"start_date"`
	EndDate   time.Time           `db:"end_date" json:"end_date"`
	DryRun    bool                `db:"dry_run" json:"dry_run"`
	Meta      types.JSONText      `db:"meta" json:"meta,omitempty"`
	CreatedBy *string             `db:"created_by" json:"created_by,omitempty"`
	CreatedAt time.Time           `db:"created_at" json:"created_at"`
}

// RunFilter describes query params for listing scheduling runs.
type RunFilter struct {
	Status    string
	DryRun    *bool
	Page      int
	PageSize  int
	SortOrder string
}
