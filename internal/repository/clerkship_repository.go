package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/medrota/clerkship-api/internal/models"
)

// ClerkshipRepository manages persistence for clerkships and their electives.
type ClerkshipRepository struct {
	db *sqlx.DB
}

// NewClerkshipRepository constructs a ClerkshipRepository.
func NewClerkshipRepository(db *sqlx.DB) *ClerkshipRepository {
	return &ClerkshipRepository{db: db}
}

const clerkshipColumns = `id, name, type, specialty, required_days, strategy, block_size_days,
	allow_partial_blocks, prefer_continuous_blocks, allow_fallbacks, fallback_cross_system,
	active, created_at, updated_at`

const electiveColumns = "id, clerkship_id, name, minimum_days, required, site_ids, preceptor_ids, created_at"

// ListByIDs fetches clerkships with their electives, preserving input order.
func (r *ClerkshipRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Clerkship, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf("SELECT %s FROM clerkships WHERE id IN (?)", clerkshipColumns), ids)
	if err != nil {
		return nil, fmt.Errorf("build clerkship query: %w", err)
	}
	var clerkships []models.Clerkship
	if err := r.db.SelectContext(ctx, &clerkships, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list clerkships by ids: %w", err)
	}

	electives, err := r.listElectives(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Clerkship, len(clerkships))
	for i := range clerkships {
		byID[clerkships[i].ID] = &clerkships[i]
	}
	for _, e := range electives {
		if c, ok := byID[e.ClerkshipID]; ok {
			c.Electives = append(c.Electives, e)
		}
	}

	ordered := make([]models.Clerkship, 0, len(clerkships))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, *c)
		}
	}
	return ordered, nil
}

// FindByID fetches a clerkship including electives.
func (r *ClerkshipRepository) FindByID(ctx context.Context, id string) (*models.Clerkship, error) {
	query := fmt.Sprintf("SELECT %s FROM clerkships WHERE id = $1", clerkshipColumns)
	var clerkship models.Clerkship
	if err := r.db.GetContext(ctx, &clerkship, query, id); err != nil {
		return nil, err
	}
	electives, err := r.listElectives(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	clerkship.Electives = electives
	return &clerkship, nil
}

func (r *ClerkshipRepository) listElectives(ctx context.Context, clerkshipIDs []string) ([]models.Elective, error) {
	query, args, err := sqlx.In(fmt.Sprintf("SELECT %s FROM electives WHERE clerkship_id IN (?) ORDER BY minimum_days DESC, name ASC", electiveColumns), clerkshipIDs)
	if err != nil {
		return nil, fmt.Errorf("build elective query: %w", err)
	}
	var electives []models.Elective
	if err := r.db.SelectContext(ctx, &electives, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list electives: %w", err)
	}
	return electives, nil
}
