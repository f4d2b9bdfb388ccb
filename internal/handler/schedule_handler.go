package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/medrota/clerkship-api/internal/dto"
	"github.com/medrota/clerkship-api/internal/models"
	"github.com/medrota/clerkship-api/internal/service"
	appErrors "github.com/medrota/clerkship-api/pkg/errors"
	"github.com/medrota/clerkship-api/pkg/response"
)

const (
	maxRunStudents   = 500
	maxRunClerkships = 50
)

type scheduleEngine interface {
	Schedule(ctx context.Context, req dto.ScheduleRunRequest) (*dto.ScheduleRunResult, error)
	GetRun(ctx context.Context, id string) (*models.SchedulingRun, error)
	ListRuns(ctx context.Context, filter models.RunFilter) ([]models.SchedulingRun, int, error)
	ListRunAssignments(ctx context.Context, runID string, filter models.AssignmentFilter) ([]models.ScheduleAssignment, int, error)
	DeleteRun(ctx context.Context, id string) error
}

// ScheduleHandler exposes the scheduling engine endpoints.
type ScheduleHandler struct {
	service scheduleEngine
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(svc *service.ScheduleEngineService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// CreateRun godoc
// @Summary Run the scheduling engine
// @Description Assigns the requested students to preceptors across the date window. Set dryRun to preview without persisting.
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleRunRequest true "Schedule run payload"
// @Success 201 {object} response.Envelope
// @Router /schedule/runs [post]
func (h *ScheduleHandler) CreateRun(c *gin.Context) {
	var req dto.ScheduleRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule run payload"))
		return
	}
	if err := validateRunRequest(req); err != nil {
		response.Error(c, err)
		return
	}
	if claims := claimsFromContext(c); claims != nil {
		req.CreatedBy = claims.UserID
	}
	result, err := h.service.Schedule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if req.DryRun {
		response.JSON(c, http.StatusOK, result, nil)
		return
	}
	response.Created(c, result)
}

// ListRuns godoc
// @Summary List scheduling runs
// @Tags Scheduling
// @Produce json
// @Param status query string false "Run status filter"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedule/runs [get]
func (h *ScheduleHandler) ListRuns(c *gin.Context) {
	var query dto.RunListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid run list query"))
		return
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = 20
	}
	filter := models.RunFilter{
		Status:   query.Status,
		Page:     query.Page,
		PageSize: query.Limit,
	}
	runs, total, err := h.service.ListRuns(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, runs, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// GetRun godoc
// @Summary Get a scheduling run
// @Tags Scheduling
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Router /schedule/runs/{id} [get]
func (h *ScheduleHandler) GetRun(c *gin.Context) {
	run, err := h.service.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, run, nil)
}

// RunAssignments godoc
// @Summary List assignments produced by a run
// @Tags Scheduling
// @Produce json
// @Param id path string true "Run ID"
// @Param studentId query string false "Student filter"
// @Param preceptorId query string false "Preceptor filter"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedule/runs/{id}/assignments [get]
func (h *ScheduleHandler) RunAssignments(c *gin.Context) {
	filter := models.AssignmentFilter{
		StudentID:   c.Query("studentId"),
		PreceptorID: c.Query("preceptorId"),
		Page:        queryInt(c, "page", 1),
		PageSize:    queryInt(c, "limit", 100),
	}
	assignments, total, err := h.service.ListRunAssignments(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// DeleteRun godoc
// @Summary Delete a run and its assignments
// @Description Frees the window so it can be regenerated.
// @Tags Scheduling
// @Param id path string true "Run ID"
// @Success 204
// @Router /schedule/runs/{id} [delete]
func (h *ScheduleHandler) DeleteRun(c *gin.Context) {
	if err := h.service.DeleteRun(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func validateRunRequest(req dto.ScheduleRunRequest) error {
	if len(req.StudentIDs) > maxRunStudents {
		return appErrors.Clone(appErrors.ErrValidation, "studentIds exceeds supported limit")
	}
	if len(req.ClerkshipIDs) > maxRunClerkships {
		return appErrors.Clone(appErrors.ErrValidation, "clerkshipIds exceeds supported limit")
	}
	return nil
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
