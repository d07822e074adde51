package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-logistics-api/internal/dto"
	"github.com/noah-isme/exam-logistics-api/internal/models"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
	"github.com/noah-isme/exam-logistics-api/pkg/export"
	"github.com/noah-isme/exam-logistics-api/pkg/jobs"
	"github.com/noah-isme/exam-logistics-api/pkg/storage"
)

// ExportJobKind labels export jobs on the queue.
const ExportJobKind = "seating_plan_export"

type planReader interface {
	Get(ctx context.Context, id string) (*models.SeatingPlan, bool, error)
}

type fileStore interface {
	Put(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	Remove(name string) error
	Sweep(maxAge time.Duration) ([]string, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type csvRenderer interface {
	Render(t export.Table) ([]byte, error)
}

type seatingRenderer interface {
	RenderSeating(doc export.SeatingDocument) ([]byte, error)
}

// PlanExportConfig tunes export URLs and retention.
type PlanExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportDownload is a resolved, ready-to-stream export file.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
	ExpiresAt   time.Time
}

// PlanExportService renders stored seating plans in the background and hands out
// signed download links for the results.
type PlanExportService struct {
	plans     planReader
	files     fileStore
	signer    *storage.TokenSigner
	queue     jobDispatcher
	jobs      *exportJobStore
	csv       csvRenderer
	pdf       seatingRenderer
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       PlanExportConfig
	now       func() time.Time
}

// NewPlanExportService constructs the service. Call AttachQueue before Create.
func NewPlanExportService(plans planReader, files fileStore, signer *storage.TokenSigner, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, cfg PlanExportConfig) *PlanExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &PlanExportService{
		plans:     plans,
		files:     files,
		signer:    signer,
		jobs:      newExportJobStore(),
		csv:       export.NewCSVRenderer(),
		pdf:       export.NewPDFRenderer(),
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// AttachQueue sets the dispatcher used by Create.
func (s *PlanExportService) AttachQueue(queue jobDispatcher) {
	s.queue = queue
}

// Create records a queued export job for planID and dispatches it.
func (s *PlanExportService) Create(ctx context.Context, planID string, req dto.CreateExportRequest) (*dto.ExportJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "exports are disabled")
	}
	if _, _, err := s.plans.Get(ctx, planID); err != nil {
		return nil, err
	}

	job := &models.ExportJob{
		ID:        uuid.NewString(),
		PlanID:    planID,
		Format:    req.Format,
		Status:    models.ExportStatusQueued,
		Title:     req.Title,
		CreatedAt: s.now().UTC(),
	}
	s.jobs.put(job)
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Kind: ExportJobKind}); err != nil {
		s.fail(job.ID, "failed to enqueue export")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	return &dto.ExportJobResponse{ID: job.ID, PlanID: job.PlanID, Format: job.Format, Status: job.Status}, nil
}

// Status reports progress for an export job.
func (s *PlanExportService) Status(_ context.Context, id string) (*dto.ExportStatusResponse, error) {
	job, ok := s.jobs.get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	resp := &dto.ExportStatusResponse{
		ID:         job.ID,
		PlanID:     job.PlanID,
		Format:     job.Format,
		Status:     job.Status,
		ResultURL:  job.ResultURL,
		FinishedAt: job.FinishedAt,
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		resp.Error = job.ErrorMessage
	}
	return resp, nil
}

// Handle is the queue handler: it renders the plan, stores the file and signs a link.
// Returning an error lets the queue retry.
func (s *PlanExportService) Handle(ctx context.Context, qj jobs.Job) error {
	job, ok := s.jobs.get(qj.ID)
	if !ok {
		s.logger.Warn("export job expired before processing", zap.String("job_id", qj.ID))
		return nil
	}
	s.jobs.update(job.ID, func(j *models.ExportJob) { j.Status = models.ExportStatusProcessing })

	if err := s.render(ctx, job); err != nil {
		msg := err.Error()
		s.jobs.update(job.ID, func(j *models.ExportJob) {
			j.Status = models.ExportStatusQueued
			j.ErrorMessage = &msg
		})
		return err
	}
	return nil
}

// DeadLetter marks a job failed once the queue gives up on it.
func (s *PlanExportService) DeadLetter(qj jobs.Job, err error) {
	s.fail(qj.ID, err.Error())
}

func (s *PlanExportService) render(ctx context.Context, job models.ExportJob) error {
	plan, _, err := s.plans.Get(ctx, job.PlanID)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}
	title := job.Title
	if title == "" {
		title = plan.Name
	}

	var data []byte
	switch job.Format {
	case models.ExportFormatCSV:
		data, err = s.csv.Render(SeatingTable(title, *plan))
	case models.ExportFormatPDF:
		data, err = s.pdf.RenderSeating(SeatingDocument(title, *plan))
	default:
		err = fmt.Errorf("unsupported export format %q", job.Format)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", job.Format, err)
	}

	name := path.Join("plans", job.PlanID, fmt.Sprintf("%s.%s", job.ID, job.Format))
	stored, err := s.files.Put(name, data)
	if err != nil {
		return fmt.Errorf("store export: %w", err)
	}
	token, _, err := s.signer.Issue(job.ID, stored)
	if err != nil {
		return fmt.Errorf("sign export: %w", err)
	}
	url := fmt.Sprintf("%s/exports/download/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token)
	now := s.now().UTC()
	s.jobs.update(job.ID, func(j *models.ExportJob) {
		j.Status = models.ExportStatusFinished
		j.Path = stored
		j.ResultURL = &url
		j.ErrorMessage = nil
		j.FinishedAt = &now
	})
	s.metrics.RecordExportJob(string(job.Format), string(models.ExportStatusFinished))
	s.logger.Info("seating plan exported", zap.String("job_id", job.ID), zap.String("plan_id", job.PlanID), zap.String("format", string(job.Format)))
	return nil
}

// Resolve validates a download token and opens the file it refers to.
func (s *PlanExportService) Resolve(_ context.Context, token string) (*ExportDownload, error) {
	claims, err := s.signer.Verify(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download token")
	}
	job, ok := s.jobs.get(claims.Subject)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	if job.Status != models.ExportStatusFinished || job.Path != claims.Path {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export not available")
	}
	file, err := s.files.Open(job.Path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	contentType := "text/csv"
	if job.Format == models.ExportFormatPDF {
		contentType = "application/pdf"
	}
	return &ExportDownload{
		File:        file,
		Filename:    path.Base(job.Path),
		ContentType: contentType,
		ExpiresAt:   claims.ExpiresAt,
	}, nil
}

// StartCleanup periodically drops expired jobs and their files until ctx is done.
func (s *PlanExportService) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()
}

// Cleanup removes jobs that finished before the retention window along with their
// files. Jobs that never finished are dropped once they were created before the window.
func (s *PlanExportService) Cleanup() int {
	cutoff := s.now().Add(-s.cfg.ResultTTL)
	expired := s.jobs.expiredBefore(cutoff)
	for _, job := range expired {
		if job.Path != "" {
			if err := s.files.Remove(job.Path); err != nil {
				s.logger.Warn("export cleanup delete failed", zap.String("job_id", job.ID), zap.Error(err))
			}
		}
		s.jobs.delete(job.ID)
	}
	if _, err := s.files.Sweep(s.cfg.ResultTTL); err != nil {
		s.logger.Warn("export storage sweep failed", zap.Error(err))
	}
	return len(expired)
}

func (s *PlanExportService) fail(id, msg string) {
	now := s.now().UTC()
	var format models.ExportFormat
	s.jobs.update(id, func(j *models.ExportJob) {
		j.Status = models.ExportStatusFailed
		j.ErrorMessage = &msg
		j.FinishedAt = &now
		format = j.Format
	})
	s.metrics.RecordExportJob(string(format), string(models.ExportStatusFailed))
	s.logger.Warn("seating plan export failed", zap.String("job_id", id), zap.String("error", msg))
}

type exportJobStore struct {
	mu    sync.RWMutex
	items map[string]*models.ExportJob
}

func newExportJobStore() *exportJobStore {
	return &exportJobStore{items: make(map[string]*models.ExportJob)}
}

func (s *exportJobStore) put(job *models.ExportJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[job.ID] = job
}

func (s *exportJobStore) get(id string) (models.ExportJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.items[id]
	if !ok {
		return models.ExportJob{}, false
	}
	return *job, true
}

func (s *exportJobStore) update(id string, fn func(*models.ExportJob)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.items[id]
	if ok {
		fn(job)
	}
	return ok
}

func (s *exportJobStore) delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

func (s *exportJobStore) expiredBefore(cutoff time.Time) []models.ExportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ExportJob
	for _, job := range s.items {
		stamp := job.CreatedAt
		if job.FinishedAt != nil {
			stamp = *job.FinishedAt
		}
		if stamp.Before(cutoff) {
			out = append(out, *job)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
