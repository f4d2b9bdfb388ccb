package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/medrota/clerkship-api/internal/models"
)

// AvailabilityRepository loads recurring availability patterns.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs an AvailabilityRepository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

const patternColumns = "id, preceptor_id, site_id, type, start_date, end_date, available, enabled, config, created_at, updated_at"

// ListPatterns returns enabled patterns for a preceptor in load order.
func (r *AvailabilityRepository) ListPatterns(ctx context.Context, preceptorID string) ([]models.AvailabilityPattern, error) {
	query := fmt.Sprintf("SELECT %s FROM availability_patterns WHERE preceptor_id = $1 AND enabled = TRUE ORDER BY created_at ASC", patternColumns)
	var patterns []models.AvailabilityPattern
	if err := r.db.SelectContext(ctx, &patterns, query, preceptorID); err != nil {
		return nil, fmt.Errorf("list availability patterns: %w", err)
	}
	return patterns, nil
}
