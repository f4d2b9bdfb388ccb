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

// AssignmentRepository manages persistence for schedule assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const assignmentColumns = "id, run_id, student_id, preceptor_id, clerkship_id, date, elective_id, block_number, fallback, created_at"

// CountByPreceptorYear returns how many assignments a preceptor holds in a calendar year.
func (r *AssignmentRepository) CountByPreceptorYear(ctx context.Context, preceptorID string, year int) (int, error) {
	const query = `SELECT COUNT(*) FROM schedule_assignments WHERE preceptor_id = $1 AND date >= $2 AND date < $3`
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	var count int
	if err := r.db.GetContext(ctx, &count, query, preceptorID, from, to); err != nil {
		return 0, fmt.Errorf("count preceptor assignments: %w", err)
	}
	return count, nil
}

// OccupancyRow pairs a preceptor-date cell with its assignment count.
type OccupancyRow struct {
	PreceptorID string    `db:"preceptor_id"`
	Date        time.Time `db:"date"`
	Count       int       `db:"count"`
}

// MapByPreceptorAndDate returns per-preceptor per-date counts inside the window.
func (r *AssignmentRepository) MapByPreceptorAndDate(ctx context.Context, from, to time.Time) ([]OccupancyRow, error) {
	const query = `SELECT preceptor_id, date, COUNT(*) AS count
FROM schedule_assignments WHERE date >= $1 AND date <= $2
GROUP BY preceptor_id, date`
	var rows []OccupancyRow
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, fmt.Errorf("map assignments by preceptor and date: %w", err)
	}
	return rows, nil
}

// StudentDateRow pairs a student with one of their assigned dates.
type StudentDateRow struct {
	StudentID string    `db:"student_id"`
	Date      time.Time `db:"date"`
}

// ListStudentDates returns the dates already occupied per student inside the window.
func (r *AssignmentRepository) ListStudentDates(ctx context.Context, studentIDs []string, from, to time.Time) ([]StudentDateRow, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT student_id, date FROM schedule_assignments WHERE student_id IN (?) AND date >= ? AND date <= ?`, studentIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("build student date query: %w", err)
	}
	var rows []StudentDateRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list student dates: %w", err)
	}
	return rows, nil
}

// BulkCreateWithTx inserts the proposed assignment batch inside a transaction.
// The insert is all-or-nothing at the storage boundary.
func (r *AssignmentRepository) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, assignments []models.ScheduleAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	const query = `INSERT INTO schedule_assignments (id, run_id, student_id, preceptor_id, clerkship_id, date, elective_id, block_number, fallback, created_at)
VALUES (:id, :run_id, :student_id, :preceptor_id, :clerkship_id, :date, :elective_id, :block_number, :fallback, :created_at)`
	now := time.Now().UTC()
	for i := range assignments {
		if assignments[i].ID == "" {
			assignments[i].ID = uuid.NewString()
		}
		if assignments[i].CreatedAt.IsZero() {
			assignments[i].CreatedAt = now
		}
	}
	if _, err := tx.NamedExecContext(ctx, query, assignments); err != nil {
		return fmt.Errorf("bulk create assignments: %w", err)
	}
	return nil
}

// DeleteByRunWithTx removes all assignments produced by a run (regeneration flow).
func (r *AssignmentRepository) DeleteByRunWithTx(ctx context.Context, tx *sqlx.Tx, runID string) error {
	const query = `DELETE FROM schedule_assignments WHERE run_id = $1`
	if _, err := tx.ExecContext(ctx, query, runID); err != nil {
		return fmt.Errorf("delete assignments by run: %w", err)
	}
	return nil
}

// List returns assignments matching filters along with total count.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.ScheduleAssignment, int, error) {
	base := "FROM schedule_assignments WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.RunID != "" {
		conditions = append(conditions, fmt.Sprintf("run_id = $%d", len(args)+1))
		args = append(args, filter.RunID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.PreceptorID != "" {
		conditions = append(conditions, fmt.Sprintf("preceptor_id = $%d", len(args)+1))
		args = append(args, filter.PreceptorID)
	}
	if filter.ClerkshipID != "" {
		conditions = append(conditions, fmt.Sprintf("clerkship_id = $%d", len(args)+1))
		args = append(args, filter.ClerkshipID)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 500 {
		size = 100
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY date %s, student_id ASC LIMIT %d OFFSET %d", assignmentColumns, base, order, size, offset)
	var assignments []models.ScheduleAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}

	return assignments, total, nil
}

// ListRoster returns denormalised assignment rows for roster exports.
func (r *AssignmentRepository) ListRoster(ctx context.Context, params models.ExportJobParams) ([]models.AssignmentRosterRow, error) {
	base := `SELECT a.date, s.full_name AS student_name, p.full_name AS preceptor_name, c.name AS clerkship_name, e.name AS elective_name, a.fallback
FROM schedule_assignments a
JOIN students s ON s.id = a.student_id
JOIN preceptors p ON p.id = a.preceptor_id
JOIN clerkships c ON c.id = a.clerkship_id
LEFT JOIN electives e ON e.id = a.elective_id
WHERE 1=1`
	var conditions []string
	var args []interface{}

	if params.RunID != nil {
		conditions = append(conditions, fmt.Sprintf("a.run_id = $%d", len(args)+1))
		args = append(args, *params.RunID)
	}
	if params.ClerkshipID != nil {
		conditions = append(conditions, fmt.Sprintf("a.clerkship_id = $%d", len(args)+1))
		args = append(args, *params.ClerkshipID)
	}
	if params.PreceptorID != nil {
		conditions = append(conditions, fmt.Sprintf("a.preceptor_id = $%d", len(args)+1))
		args = append(args, *params.PreceptorID)
	}

	query := base
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY a.date ASC, student_name ASC"

	var rows []models.AssignmentRosterRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list roster rows: %w", err)
	}
	return rows, nil
}
