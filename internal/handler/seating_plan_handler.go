package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-logistics-api/internal/dto"
	"github.com/noah-isme/exam-logistics-api/internal/middleware"
	"github.com/noah-isme/exam-logistics-api/internal/models"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
	"github.com/noah-isme/exam-logistics-api/pkg/response"
)

type seatingPlanService interface {
	Get(ctx context.Context, id string) (*models.SeatingPlan, bool, error)
	List(ctx context.Context, query dto.SeatingPlanQuery) ([]models.SeatingPlanSummary, *models.Pagination, error)
	Delete(ctx context.Context, id string) error
}

// SeatingPlanHandler exposes the stored seating plans.
type SeatingPlanHandler struct {
	service seatingPlanService
}

// NewSeatingPlanHandler constructs the handler.
func NewSeatingPlanHandler(service seatingPlanService) *SeatingPlanHandler {
	return &SeatingPlanHandler{service: service}
}

// List godoc
// @Summary List stored seating plans
// @Tags Seating Plans
// @Produce json
// @Param search query string false "Name search"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /seating-plans [get]
func (h *SeatingPlanHandler) List(c *gin.Context) {
	var query dto.SeatingPlanQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query"))
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get a stored seating plan
// @Tags Seating Plans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /seating-plans/{id} [get]
func (h *SeatingPlanHandler) Get(c *gin.Context) {
	plan, cacheHit, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, plan, nil, middleware.ExtractMeta(c))
}

// Delete godoc
// @Summary Delete a stored seating plan
// @Tags Seating Plans
// @Param id path string true "Plan ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /seating-plans/{id} [delete]
func (h *SeatingPlanHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
