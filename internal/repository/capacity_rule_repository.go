package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/medrota/clerkship-api/internal/models"
)

// CapacityRuleRepository resolves student capacity limits for preceptors.
type CapacityRuleRepository struct {
	db *sqlx.DB
}

// NewCapacityRuleRepository constructs a CapacityRuleRepository.
func NewCapacityRuleRepository(db *sqlx.DB) *CapacityRuleRepository {
	return &CapacityRuleRepository{db: db}
}

// Resolve returns the effective capacity for a preceptor-clerkship pair.
// A clerkship-specific rule wins over the general rule; absent both, defaults apply.
func (r *CapacityRuleRepository) Resolve(ctx context.Context, preceptorID, clerkshipID string) (models.Capacity, error) {
	const query = `SELECT id, preceptor_id, clerkship_id, max_students_per_day, max_students_per_year, created_at
FROM capacity_rules
WHERE preceptor_id = $1 AND (clerkship_id = $2 OR clerkship_id IS NULL)
ORDER BY clerkship_id NULLS LAST
LIMIT 1`
	var rule models.CapacityRule
	if err := r.db.GetContext(ctx, &rule, query, preceptorID, clerkshipID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DefaultCapacity(), nil
		}
		return models.Capacity{}, fmt.Errorf("resolve capacity rule: %w", err)
	}
	return models.Capacity{
		MaxStudentsPerDay:  rule.MaxStudentsPerDay,
		MaxStudentsPerYear: rule.MaxStudentsPerYear,
	}, nil
}
