package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medrota/clerkship-api/internal/models"
)

func newAssignmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAssignmentRepositoryCountByPreceptorYear(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM schedule_assignments WHERE preceptor_id = $1 AND date >= $2 AND date < $3")).
		WithArgs("prec-1", from, from.AddDate(1, 0, 0)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := repo.CountByPreceptorYear(context.Background(), "prec-1", 2026)
	require.NoError(t, err)
	assert.Equal(t, 12, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryMapByPreceptorAndDate(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	from := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"preceptor_id", "date", "count"}).
		AddRow("prec-1", from, 2).
		AddRow("prec-2", to, 1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT preceptor_id, date, COUNT(*) AS count")).
		WithArgs(from, to).
		WillReturnRows(rows)

	occupancy, err := repo.MapByPreceptorAndDate(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, occupancy, 2)
	assert.Equal(t, "prec-1", occupancy[0].PreceptorID)
	assert.Equal(t, 2, occupancy[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListStudentDates(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	from := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"student_id", "date"}).
		AddRow("stu-1", from)
	mock.ExpectQuery("SELECT student_id, date FROM schedule_assignments WHERE student_id IN").
		WithArgs("stu-1", "stu-2", from, to).
		WillReturnRows(rows)

	dates, err := repo.ListStudentDates(context.Background(), []string{"stu-1", "stu-2"}, from, to)
	require.NoError(t, err)
	require.Len(t, dates, 1)
	assert.Equal(t, "stu-1", dates[0].StudentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListStudentDatesEmptyInput(t *testing.T) {
	db, _, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	dates, err := repo.ListStudentDates(context.Background(), nil, time.Now(), time.Now())
	require.NoError(t, err)
	assert.Nil(t, dates)
}

func TestAssignmentRepositoryBulkCreateWithTx(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO schedule_assignments").
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)

	assignments := []models.ScheduleAssignment{
		{RunID: "run-1", StudentID: "stu-1", PreceptorID: "prec-1", ClerkshipID: "clerk-1", Date: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)},
		{RunID: "run-1", StudentID: "stu-1", PreceptorID: "prec-1", ClerkshipID: "clerk-1", Date: time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, repo.BulkCreateWithTx(context.Background(), tx, assignments))
	for _, a := range assignments {
		assert.NotEmpty(t, a.ID)
		assert.False(t, a.CreatedAt.IsZero())
	}
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryDeleteByRunWithTx(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_assignments WHERE run_id = $1")).
		WithArgs("run-1").
		WillReturnResult(sqlmock.NewResult(1, 5))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)
	require.NoError(t, repo.DeleteByRunWithTx(context.Background(), tx, "run-1"))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListByRun(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "run_id", "student_id", "preceptor_id", "clerkship_id", "date", "elective_id", "block_number", "fallback", "created_at"}).
		AddRow("a-1", "run-1", "stu-1", "prec-1", "clerk-1", time.Now(), nil, nil, false, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM schedule_assignments WHERE 1=1 AND run_id = $1 ORDER BY date ASC, student_id ASC LIMIT 100 OFFSET 0")).
		WithArgs("run-1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM schedule_assignments WHERE 1=1 AND run_id = $1")).
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	assignments, total, err := repo.List(context.Background(), models.AssignmentFilter{RunID: "run-1"})
	require.NoError(t, err)
	assert.Len(t, assignments, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListRoster(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	runID := "run-1"
	rows := sqlmock.NewRows([]string{"date", "student_name", "preceptor_name", "clerkship_name", "elective_name", "fallback"}).
		AddRow(time.Now(), "Dana Whitfield", "Dr. Osei", "Internal Medicine", nil, false)
	mock.ExpectQuery("SELECT a.date, s.full_name AS student_name").
		WithArgs(runID).
		WillReturnRows(rows)

	roster, err := repo.ListRoster(context.Background(), models.ExportJobParams{RunID: &runID})
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "Dana Whitfield", roster[0].StudentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
