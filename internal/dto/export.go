package dto

import (
	"time"

	"github.com/noah-isme/exam-logistics-api/internal/models"
)

// CreateExportRequest enqueues a rendering of a stored seating plan.
type CreateExportRequest struct {
	Format models.ExportFormat `json:"format" validate:"required,oneof=pdf csv"`
	Title  string              `json:"title" validate:"max=160"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID     string              `json:"id"`
	PlanID string              `json:"planId"`
	Format models.ExportFormat `json:"format"`
	Status models.ExportStatus `json:"status"`
}

// ExportStatusResponse exposes export progress.
type ExportStatusResponse struct {
	ID         string              `json:"id"`
	PlanID     string              `json:"planId"`
	Format     models.ExportFormat `json:"format"`
	Status     models.ExportStatus `json:"status"`
	ResultURL  *string             `json:"resultUrl,omitempty"`
	Error      *string             `json:"error,omitempty"`
	FinishedAt *time.Time          `json:"finishedAt,omitempty"`
}
