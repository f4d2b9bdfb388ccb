package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/medrota/clerkship-api/internal/models"
)

// BlackoutRepository loads system-wide blackout dates.
type BlackoutRepository struct {
	db *sqlx.DB
}

// NewBlackoutRepository constructs a BlackoutRepository.
func NewBlackoutRepository(db *sqlx.DB) *BlackoutRepository {
	return &BlackoutRepository{db: db}
}

// ListBetween returns blackout dates within the inclusive window.
func (r *BlackoutRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.BlackoutDate, error) {
	const query = `SELECT id, date, label, created_at FROM blackout_dates WHERE date >= $1 AND date <= $2 ORDER BY date ASC`
	var dates []models.BlackoutDate
	if err := r.db.SelectContext(ctx, &dates, query, from, to); err != nil {
		return nil, fmt.Errorf("list blackout dates: %w", err)
	}
	return dates, nil
}
