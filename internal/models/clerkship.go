package models

import (
	"time"

	"github.com/lib/pq"
)

// ClerkshipType distinguishes inpatient and outpatient rotations.
type ClerkshipType string

const (
	ClerkshipTypeInpatient  ClerkshipType = "inpatient"
	ClerkshipTypeOutpatient ClerkshipType = "outpatient"
)

// Assignment strategy identifiers stored on clerkship records.
const (
	StrategyContinuousSingle = "continuous_single"
	StrategyBlockBased       = "block_based"
	StrategyDailyRotation    = "daily_rotation"
	StrategyTeamContinuity   = "team_continuity"
)

// Clerkship represents a rotation requiring a fixed number of supervised days.
type Clerkship struct {
	ID           string        `db:"id" json:"id"`
	Name         string        `db:"name" json:"name"`
	Type         ClerkshipType `db:"type" json:"type"`
	Specialty    *string       `db:"specialty" json:"specialty,omitempty"`
	RequiredDays int           `db:"required_days" json:"required_days"`

	// Scheduling configuration consumed by the engine's strategy dispatch.
	Strategy               string `db:"strategy" json:"strategy"`
	BlockSizeDays          int    `db:"block_size_days" json:"block_size_days"`
	AllowPartialBlocks     bool   `db:"allow_partial_blocks" json:"allow_partial_blocks"`
	PreferContinuousBlocks bool   `db:"prefer_continuous_blocks" json:"prefer_continuous_blocks"`
	AllowFallbacks         bool   `db:"allow_fallbacks" json:"allow_fallbacks"`
	FallbackCrossSystem    bool   `db:"fallback_cross_system" json:"fallback_cross_system"`

	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Electives []Elective `db:"-" json:"electives,omitempty"`
}

// ElectiveDaySum returns the total minimum days reserved for electives.
func (c Clerkship) ElectiveDaySum() int {
	total := 0
	for _, e := range c.Electives {
		total += e.MinimumDays
	}
	return total
}

// NonElectiveDays returns the share of required days left to the general pool.
func (c Clerkship) NonElectiveDays() int {
	return c.RequiredDays - c.ElectiveDaySum()
}

// Elective is a clerkship sub-requirement scheduled against a restricted pool.
type Elective struct {
	ID           string         `db:"id" json:"id"`
	ClerkshipID  string         `db:"clerkship_id" json:"clerkship_id"`
	Name         string         `db:"name" json:"name"`
	MinimumDays  int            `db:"minimum_days" json:"minimum_days"`
	Required     bool           `db:"required" json:"required"`
	SiteIDs      pq.StringArray `db:"site_ids" json:"site_ids"`
	PreceptorIDs pq.StringArray `db:"preceptor_ids" json:"preceptor_ids"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}
