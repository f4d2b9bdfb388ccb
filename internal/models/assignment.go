package models

import "time"

// ScheduleAssignment binds a student to a preceptor for one clerkship day.
// Assignments are immutable after creation; regeneration deletes by run.
type ScheduleAssignment struct {
	ID          string    `db:"id" json:"id"`
	RunID       string    `db:"run_id" json:"run_id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	PreceptorID string    `db:"preceptor_id" json:"preceptor_id"`
	ClerkshipID string    `db:"clerkship_id" json:"clerkship_id"`
	Date        time.Time `db:"date" json:"date"`
	ElectiveID  *string   `db:"elective_id" json:"elective_id,omitempty"`
	BlockNumber *int      `db:"block_number" json:"block_number,omitempty"`
	Fallback    bool      `db:"fallback" json:"fallback"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// AssignmentFilter describes query params for listing assignments.
type AssignmentFilter struct {
	RunID       string
	StudentID   string
	PreceptorID string
	ClerkshipID string
	From        *time.Time
	To          *time.Time
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// AssignmentRosterRow is a denormalised assignment used by roster exports.
type AssignmentRosterRow struct {
	Date          time.Time `db:"date" json:"date"`
	StudentName   string    `db:"student_name" json:"student_name"`
	PreceptorName string    `db:"preceptor_name" json:"preceptor_name"`
	ClerkshipName string    `db:"clerkship_name" json:"clerkship_name"`
	ElectiveName  *string   `db:"elective_name" json:"elective_name,omitempty"`
	Fallback      bool      `db:"fallback" json:"fallback"`
}
