package models

import "time"

// ExportFormat enumerates renderable plan formats.
type ExportFormat string

const (
	ExportFormatPDF ExportFormat = "pdf"
	ExportFormatCSV ExportFormat = "csv"
)

// ExportStatus tracks export job lifecycle.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// ExportJob describes a queued rendering of a stored seating plan.
type ExportJob struct {
	ID           string       `json:"id"`
	PlanID       string       `json:"plan_id"`
	Format       ExportFormat `json:"format"`
	Status       ExportStatus `json:"status"`
	Title        string       `json:"title,omitempty"`
	Path         string       `json:"-"`
	ResultURL    *string      `json:"result_url,omitempty"`
	ErrorMessage *string      `json:"error,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	FinishedAt   *time.Time   `json:"finished_at,omitempty"`
}
