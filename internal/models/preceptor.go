package models

import (
	"time"

	"github.com/lib/pq"
)

// Preceptor represents a supervising clinician students are assigned to.
type Preceptor struct {
	ID                 string         `db:"id" json:"id"`
	Email              string         `db:"email" json:"email"`
	FullName           string         `db:"full_name" json:"full_name"`
	HealthSystemID     string         `db:"health_system_id" json:"health_system_id"`
	SiteIDs            pq.StringArray `db:"site_ids" json:"site_ids"`
	Specialty          *string        `db:"specialty" json:"specialty,omitempty"`
	GlobalFallbackOnly bool           `db:"global_fallback_only" json:"global_fallback_only"`
	Active             bool           `db:"active" json:"active"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

// Default capacity applied when no rule exists for a preceptor.
const (
	DefaultMaxStudentsPerDay  = 2
	DefaultMaxStudentsPerYear = 20
)

// CapacityRule bounds how many students a preceptor can supervise.
// A rule with a clerkship ID overrides the preceptor's general rule.
type CapacityRule struct {
	ID                 string    `db:"id" json:"id"`
	PreceptorID        string    `db:"preceptor_id" json:"preceptor_id"`
	ClerkshipID        *string   `db:"clerkship_id" json:"clerkship_id,omitempty"`
	MaxStudentsPerDay  int       `db:"max_students_per_day" json:"max_students_per_day"`
	MaxStudentsPerYear int       `db:"max_students_per_year" json:"max_students_per_year"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// Capacity is the resolved limit pair used by the engine.
type Capacity struct {
	MaxStudentsPerDay  int `json:"max_students_per_day"`
	MaxStudentsPerYear int `json:"max_students_per_year"`
}

// DefaultCapacity returns the limits applied when no rule matches.
func DefaultCapacity() Capacity {
	return Capacity{
		MaxStudentsPerDay:  DefaultMaxStudentsPerDay,
		MaxStudentsPerYear: DefaultMaxStudentsPerYear,
	}
}
