package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/medrota/clerkship-api/internal/dto"
	internalmiddleware "github.com/medrota/clerkship-api/internal/middleware"
	"github.com/medrota/clerkship-api/internal/models"
)

type scheduleEngineMock struct {
	captured   dto.ScheduleRunRequest
	result     *dto.ScheduleRunResult
	listFilter models.RunFilter
	deleted    []string
}

func (m *scheduleEngineMock) Schedule(ctx context.Context, req dto.ScheduleRunRequest) (*dto.ScheduleRunResult, error) {
	m.captured = req
	if m.result != nil {
		return m.result, nil
	}
	return &dto.ScheduleRunResult{RunID: "run-1", Success: true, DryRun: req.DryRun}, nil
}

func (m *scheduleEngineMock) GetRun(ctx context.Context, id string) (*models.SchedulingRun, error) {
	return &models.SchedulingRun{ID: id, Status: models.RunStatusCompleted}, nil
}

func (m *scheduleEngineMock) ListRuns(ctx context.Context, filter models.RunFilter) ([]models.SchedulingRun, int, error) {
	m.listFilter = filter
	return []models.SchedulingRun{{ID: "run-1"}}, 1, nil
}

func (m *scheduleEngineMock) ListRunAssignments(ctx context.Context, runID string, filter models.AssignmentFilter) ([]models.ScheduleAssignment, int, error) {
	return nil, 0, nil
}

func (m *scheduleEngineMock) DeleteRun(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func validRunPayload() []byte {
	return []byte(`{"studentIds":["stu-1"],"clerkshipIds":["clerk-1"],"startDate":"2026-01-05","endDate":"2026-01-09"}`)
}

func TestScheduleHandlerCreateRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleEngineMock{}
	handler := &ScheduleHandler{service: mockSvc}

	req, _ := http.NewRequest(http.MethodPost, "/schedule/runs", bytes.NewReader(validRunPayload()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleCoordinator})

	handler.CreateRun(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, []string{"stu-1"}, mockSvc.captured.StudentIDs)
	require.Equal(t, "user-1", mockSvc.captured.CreatedBy, "creator comes from the JWT claims")
}

func TestScheduleHandlerCreateRunDryRunReturns200(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ScheduleHandler{service: &scheduleEngineMock{}}

	payload := []byte(`{"studentIds":["stu-1"],"clerkshipIds":["clerk-1"],"startDate":"2026-01-05","endDate":"2026-01-09","dryRun":true}`)
	req, _ := http.NewRequest(http.MethodPost, "/schedule/runs", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.CreateRun(c)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestScheduleHandlerCreateRunValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ScheduleHandler{service: &scheduleEngineMock{}}

	req, _ := http.NewRequest(http.MethodPost, "/schedule/runs", bytes.NewReader([]byte(`{"studentIds":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.CreateRun(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerCreateRunRejectsOversizedBatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ScheduleHandler{service: &scheduleEngineMock{}}

	payload := bytes.NewBufferString(`{"studentIds":[`)
	for i := 0; i <= maxRunStudents; i++ {
		if i > 0 {
			payload.WriteString(",")
		}
		payload.WriteString(`"stu"`)
	}
	payload.WriteString(`],"clerkshipIds":["clerk-1"],"startDate":"2026-01-05","endDate":"2026-01-09"}`)

	req, _ := http.NewRequest(http.MethodPost, "/schedule/runs", bytes.NewReader(payload.Bytes()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.CreateRun(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerListRunsParsesQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleEngineMock{}
	handler := &ScheduleHandler{service: mockSvc}

	req, _ := http.NewRequest(http.MethodGet, "/schedule/runs?status=completed&page=2&limit=5", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.ListRuns(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "completed", mockSvc.listFilter.Status)
	require.Equal(t, 2, mockSvc.listFilter.Page)
	require.Equal(t, 5, mockSvc.listFilter.PageSize)
}

func TestScheduleHandlerDeleteRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleEngineMock{}
	handler := &ScheduleHandler{service: mockSvc}
	router := gin.New()
	router.DELETE("/schedule/runs/:id", handler.DeleteRun)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/schedule/runs/run-1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, []string{"run-1"}, mockSvc.deleted)
}

func TestScheduleHandlerCreateRunForbiddenForViewers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ScheduleHandler{service: &scheduleEngineMock{}}
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: "user-2", Role: models.RoleViewer})
		c.Next()
	})
	router.POST("/schedule/runs", internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator), handler.CreateRun)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/schedule/runs", bytes.NewReader(validRunPayload()))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}
