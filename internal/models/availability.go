package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// AvailabilityPatternType enumerates the recurring rule kinds.
type AvailabilityPatternType string

const (
	PatternWeekly     AvailabilityPatternType = "weekly"
	PatternMonthly    AvailabilityPatternType = "monthly"
	PatternBlock      AvailabilityPatternType = "block"
	PatternIndividual AvailabilityPatternType = "individual"
)

// Specificity ranks pattern types for conflict resolution; higher wins.
// Weekly and monthly share the recurring tier.
func (t AvailabilityPatternType) Specificity() int {
	switch t {
	case PatternWeekly, PatternMonthly:
		return 1
	case PatternBlock:
		return 2
	case PatternIndividual:
		return 3
	default:
		return 0
	}
}

// Monthly day-selection modes.
const (
	MonthlyFirstDays         = "first_days"
	MonthlyLastDays          = "last_days"
	MonthlyFirstBusinessWeek = "first_business_week"
	MonthlyLastBusinessWeek  = "last_business_week"
	MonthlySpecificDays      = "specific_days"
)

// AvailabilityPattern is a preceptor+site scoped recurring availability rule.
type AvailabilityPattern struct {
	ID          string                  `db:"id" json:"id"`
	PreceptorID string                  `db:"preceptor_id" json:"preceptor_id"`
	SiteID      string                  `db:"site_id" json:"site_id"`
	Type        AvailabilityPatternType `db:"type" json:"type"`
	StartDate   time.Time               `db:"start_date" json:"start_date"`
	EndDate     time.Time               `db:"end_date" json:"end_date"`
	Available   bool                    `db:"available" json:"available"`
	Enabled     bool                    `db:"enabled" json:"enabled"`
	Config      types.JSONText          `db:"config" json:"config,omitempty"`
	CreatedAt   time.Time               `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time               `db:"updated_at" json:"updated_at"`
}

// PatternConfig is the type-specific payload stored in AvailabilityPattern.Config.
// Weekly uses DaysOfWeek (1=Monday..7=Sunday); monthly uses Mode plus Count or
// DaysOfMonth; block uses ExcludeWeekends; individual carries no config.
type PatternConfig struct {
	DaysOfWeek      []int  `json:"daysOfWeek,omitempty"`
	Mode            string `json:"mode,omitempty"`
	Count           int    `json:"count,omitempty"`
	DaysOfMonth     []int  `json:"daysOfMonth,omitempty"`
	ExcludeWeekends bool   `json:"excludeWeekends,omitempty"`
}

// AvailabilityDay is one concrete resolved availability record.
type AvailabilityDay struct {
	Date       time.Time               `db:"date" json:"date"`
	SiteID     string                  `db:"site_id" json:"site_id"`
	Available  bool                    `db:"available" json:"available"`
	SourceType AvailabilityPatternType `db:"source_type" json:"source_type"`
}

// BlackoutDate excludes a date system-wide from all scheduling.
type BlackoutDate struct {
	ID        string    `db:"id" json:"id"`
	Date      time.Time `db:"date" json:"date"`
	Label     string    `db:"label" json:"label"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
