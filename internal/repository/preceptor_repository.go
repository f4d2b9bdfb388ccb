package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/medrota/clerkship-api/internal/models"
)

// PreceptorRepository manages persistence for preceptors.
type PreceptorRepository struct {
	db *sqlx.DB
}

// NewPreceptorRepository constructs a PreceptorRepository.
func NewPreceptorRepository(db *sqlx.DB) *PreceptorRepository {
	return &PreceptorRepository{db: db}
}

const preceptorColumns = "id, email, full_name, health_system_id, site_ids, specialty, global_fallback_only, active, created_at, updated_at"

// ListByIDs fetches active preceptors for the given identifiers.
func (r *PreceptorRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Preceptor, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf("SELECT %s FROM preceptors WHERE id IN (?) AND active = TRUE", preceptorColumns), ids)
	if err != nil {
		return nil, fmt.Errorf("build preceptor query: %w", err)
	}
	var preceptors []models.Preceptor
	if err := r.db.SelectContext(ctx, &preceptors, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list preceptors by ids: %w", err)
	}
	return preceptors, nil
}

// FindByID fetches a preceptor by ID.
func (r *PreceptorRepository) FindByID(ctx context.Context, id string) (*models.Preceptor, error) {
	query := fmt.Sprintf("SELECT %s FROM preceptors WHERE id = $1", preceptorColumns)
	var preceptor models.Preceptor
	if err := r.db.GetContext(ctx, &preceptor, query, id); err != nil {
		return nil, err
	}
	return &preceptor, nil
}
