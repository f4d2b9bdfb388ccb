package models

import "time"

// Student represents a medical student eligible for clerkship scheduling.
type Student struct {
	ID         string    `db:"id" json:"id"`
	Email      string    `db:"email" json:"email"`
	FullName   string    `db:"full_name" json:"full_name"`
	CohortYear int       `db:"cohort_year" json:"cohort_year"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter describes query params for listing students.
type StudentFilter struct {
	Active     *bool
	CohortYear *int
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
