package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-logistics-api/internal/dto"
	"github.com/noah-isme/exam-logistics-api/internal/middleware"
	"github.com/noah-isme/exam-logistics-api/pkg/response"
)

type seatingService interface {
	Allocate(ctx context.Context, req dto.AllocateSeatsRequest) (*dto.AllocateSeatsResponse, error)
}

// SeatingHandler exposes seat allocation.
type SeatingHandler struct {
	service seatingService
}

// NewSeatingHandler constructs the handler.
func NewSeatingHandler(service seatingService) *SeatingHandler {
	return &SeatingHandler{service: service}
}

// Allocate godoc
// @Summary Allocate students to rooms and assemble a seating plan
// @Description Students beyond total capacity are returned as unassigned with a warning. Set save to persist the plan.
// @Tags Seating
// @Accept json
// @Produce json
// @Param payload body dto.AllocateSeatsRequest true "Seating payload"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /seating/allocate [post]
func (h *SeatingHandler) Allocate(c *gin.Context) {
	var req dto.AllocateSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid seating payload"))
		return
	}
	result, err := h.service.Allocate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.AddWarnings(c, result.Warnings...)

	status := http.StatusOK
	if result.Saved {
		status = http.StatusCreated
	}
	response.JSON(c, status, result, nil, middleware.ExtractMeta(c))
}
