package models

import "time"

// Team is a clerkship-scoped, priority-ranked group of preceptors.
// Team membership is the sole source of the clerkship-preceptor association.
type Team struct {
	ID          string `db:"id" json:"id"`
	ClerkshipID string `db:"clerkship_id" json:"clerkship_id"`
	Name        string `db:"name" json:"name"`

	RequireSameHealthSystem bool `db:"require_same_health_system" json:"require_same_health_system"`
	RequireSameSite         bool `db:"require_same_site" json:"require_same_site"`
	RequireSameSpecialty    bool `db:"require_same_specialty" json:"require_same_specialty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`

	Members []TeamMember `db:"-" json:"members,omitempty"`
}

// TeamMember links a preceptor into a team with an ordering priority.
// Lower priority values are preferred.
type TeamMember struct {
	ID           string `db:"id" json:"id"`
	TeamID       string `db:"team_id" json:"team_id"`
	PreceptorID  string `db:"preceptor_id" json:"preceptor_id"`
	Priority     int    `db:"priority" json:"priority"`
	FallbackOnly bool   `db:"fallback_only" json:"fallback_only"`
}
