package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-logistics-api/internal/dto"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
	"github.com/noah-isme/exam-logistics-api/pkg/response"
)

type rosterService interface {
	Parse(ctx context.Context, req dto.RosterRequest) (*dto.RosterResponse, error)
	Upload(ctx context.Context, filename string, r io.Reader, opts dto.RosterUploadOptions) (*dto.RosterResponse, error)
}

// RosterHandler exposes roster building endpoints.
type RosterHandler struct {
	service        rosterService
	maxUploadBytes int64
}

// NewRosterHandler constructs the handler. maxUploadBytes bounds uploaded roster files.
func NewRosterHandler(service rosterService, maxUploadBytes int64) *RosterHandler {
	return &RosterHandler{service: service, maxUploadBytes: maxUploadBytes}
}

// Parse godoc
// @Summary Build a roster from rows, records or text
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body dto.RosterRequest true "Roster payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /roster/parse [post]
func (h *RosterHandler) Parse(c *gin.Context) {
	var req dto.RosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid roster payload"))
		return
	}
	result, err := h.service.Parse(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Upload godoc
// @Summary Build a roster from an uploaded CSV, XLSX or text file
// @Tags Roster
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Roster file"
// @Param headerPresent formData bool false "Whether the first row is a header"
// @Param idColumn formData string false "Header or 1-based position of the id column"
// @Param nameColumn formData string false "Header or 1-based position of the name column"
// @Param branchColumn formData string false "Header or 1-based position of the branch column"
// @Param duplicates formData string false "keep, reject or merge"
// @Success 200 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /roster/upload [post]
func (h *RosterHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, bindError(err, "file is required"))
		return
	}
	if h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("roster file exceeds %d bytes", h.maxUploadBytes)))
		return
	}
	var opts dto.RosterUploadOptions
	if err := c.ShouldBind(&opts); err != nil {
		response.Error(c, bindError(err, "invalid upload options"))
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrMalformedInput.Code, appErrors.ErrMalformedInput.Status, "failed to open uploaded file"))
		return
	}
	defer src.Close() //nolint:errcheck

	result, err := h.service.Upload(c.Request.Context(), file.Filename, src, opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// bindError maps request decoding failures, including bodies cut off by the size limit.
func bindError(err error, message string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return appErrors.Wrap(err, appErrors.ErrPayloadTooLarge.Code, appErrors.ErrPayloadTooLarge.Status, "request body too large")
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
