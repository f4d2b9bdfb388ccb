package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medrota/clerkship-api/internal/models"
)

// RunRepository manages persistence for scheduling runs.
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository constructs a RunRepository.
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

const runColumns = "id, status, start_date, end_date, dry_run, meta, created_by, created_at"

// CreateWithTx inserts a run row inside the commit transaction.
func (r *RunRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, run *models.SchedulingRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO scheduling_runs (id, status, start_date, end_date, dry_run, meta, created_by, created_at)
VALUES (:id, :status, :start_date, :end_date, :dry_run, :meta, :created_by, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("create scheduling run: %w", err)
	}
	return nil
}

// FindByID fetches a run by ID.
func (r *RunRepository) FindByID(ctx context.Context, id string) (*models.SchedulingRun, error) {
	query := fmt.Sprintf("SELECT %s FROM scheduling_runs WHERE id = $1", runColumns)
	var run models.SchedulingRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns runs matching filters along with total count.
func (r *RunRepository) List(ctx context.Context, filter models.RunFilter) ([]models.SchedulingRun, int, error) {
	base := "FROM scheduling_runs WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.DryRun != nil {
		conditions = append(conditions, fmt.Sprintf("dry_run = $%d", len(args)+1))
		args = append(args, *filter.DryRun)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at %s LIMIT %d OFFSET %d", runColumns, base, order, size, offset)
	var runs []models.SchedulingRun
	if err := r.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list scheduling runs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count scheduling runs: %w", err)
	}

	return runs, total, nil
}

// DeleteWithTx removes a run row inside the regeneration transaction.
func (r *RunRepository) DeleteWithTx(ctx context.Context, tx *sqlx.Tx, id string) error {
	const query = `DELETE FROM scheduling_runs WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete scheduling run: %w", err)
	}
	return nil
}
