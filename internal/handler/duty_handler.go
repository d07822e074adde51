package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-logistics-api/internal/dto"
	"github.com/noah-isme/exam-logistics-api/internal/middleware"
	"github.com/noah-isme/exam-logistics-api/pkg/response"
)

type dutyService interface {
	Allocate(ctx context.Context, req dto.AllocateDutiesRequest) (*dto.AllocateDutiesResponse, error)
	RenderPDF(ctx context.Context, req dto.AllocateDutiesRequest) ([]byte, error)
}

// DutyHandler exposes invigilator duty allocation.
type DutyHandler struct {
	service dutyService
}

// NewDutyHandler constructs the handler.
func NewDutyHandler(service dutyService) *DutyHandler {
	return &DutyHandler{service: service}
}

// Allocate godoc
// @Summary Assign invigilators to exam sessions
// @Tags Invigilators
// @Accept json
// @Produce json
// @Param payload body dto.AllocateDutiesRequest true "Duty payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /invigilators/allocate [post]
func (h *DutyHandler) Allocate(c *gin.Context) {
	var req dto.AllocateDutiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid duty payload"))
		return
	}
	result, err := h.service.Allocate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.AddWarnings(c, result.Warnings...)
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// PDF godoc
// @Summary Render the invigilator duty roster as PDF
// @Tags Invigilators
// @Accept json
// @Produce application/pdf
// @Param payload body dto.AllocateDutiesRequest true "Duty payload"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /invigilators/allocate/pdf [post]
func (h *DutyHandler) PDF(c *gin.Context) {
	var req dto.AllocateDutiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid duty payload"))
		return
	}
	data, err := h.service.RenderPDF(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, "invigilation_duty.pdf", "application/pdf", data)
}
