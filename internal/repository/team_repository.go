package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/medrota/clerkship-api/internal/models"
)

// TeamRepository manages persistence for clerkship teams.
type TeamRepository struct {
	db *sqlx.DB
}

// NewTeamRepository constructs a TeamRepository.
func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// ListByClerkship returns teams for a clerkship with members ordered by priority.
func (r *TeamRepository) ListByClerkship(ctx context.Context, clerkshipID string) ([]models.Team, error) {
	const teamQuery = `SELECT id, clerkship_id, name, require_same_health_system, require_same_site, require_same_specialty, created_at
FROM teams WHERE clerkship_id = $1 ORDER BY created_at ASC`
	var teams []models.Team
	if err := r.db.SelectContext(ctx, &teams, teamQuery, clerkshipID); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	if len(teams) == 0 {
		return teams, nil
	}

	teamIDs := make([]string, len(teams))
	for i, t := range teams {
		teamIDs[i] = t.ID
	}

	memberQuery, args, err := sqlx.In(`SELECT id, team_id, preceptor_id, priority, fallback_only
FROM team_members WHERE team_id IN (?) ORDER BY priority ASC, preceptor_id ASC`, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("build team member query: %w", err)
	}
	var members []models.TeamMember
	if err := r.db.SelectContext(ctx, &members, r.db.Rebind(memberQuery), args...); err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}

	byTeam := make(map[string][]models.TeamMember)
	for _, m := range members {
		byTeam[m.TeamID] = append(byTeam[m.TeamID], m)
	}
	for i := range teams {
		teams[i].Members = byTeam[teams[i].ID]
	}
	return teams, nil
}
