package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medrota/clerkship-api/internal/dto"
	"github.com/medrota/clerkship-api/internal/middleware"
	"github.com/medrota/clerkship-api/internal/models"
	"github.com/medrota/clerkship-api/internal/service"
	appErrors "github.com/medrota/clerkship-api/pkg/errors"
	"github.com/medrota/clerkship-api/pkg/response"
)

type availabilityResolver interface {
	ResolveForPreceptor(ctx context.Context, preceptorID string, from, to time.Time) ([]models.AvailabilityDay, error)
}

// AvailabilityHandler exposes the resolved availability preview.
type AvailabilityHandler struct {
	service availabilityResolver
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(svc *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

// Preview godoc
// @Summary Resolved availability for a preceptor
// @Description Expands the preceptor's recurring patterns into concrete dates inside the window.
// @Tags Availability
// @Produce json
// @Param id path string true "Preceptor ID"
// @Param start query string true "Window start (YYYY-MM-DD)"
// @Param end query string true "Window end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /preceptors/{id}/availability [get]
func (h *AvailabilityHandler) Preview(c *gin.Context) {
	var query dto.AvailabilityPreviewQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid preview query"))
		return
	}
	from, err := time.Parse("2006-01-02", query.Start)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "start must be YYYY-MM-DD"))
		return
	}
	to, err := time.Parse("2006-01-02", query.End)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "end must be YYYY-MM-DD"))
		return
	}
	days, err := h.service.ResolveForPreceptor(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, days, nil, middleware.ExtractMeta(c))
}
