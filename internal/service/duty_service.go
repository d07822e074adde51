package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-logistics-api/internal/allocation"
	"github.com/noah-isme/exam-logistics-api/internal/dto"
	"github.com/noah-isme/exam-logistics-api/internal/models"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
	"github.com/noah-isme/exam-logistics-api/pkg/export"
)

type tableRenderer interface {
	RenderTable(t export.Table) ([]byte, error)
}

// DutyService staffs exam sessions with invigilators.
type DutyService struct {
	validator *validator.Validate
	pdf       tableRenderer
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewDutyService constructs the service. A nil renderer selects the gofpdf renderer.
func NewDutyService(validate *validator.Validate, pdf tableRenderer, metrics *MetricsService, logger *zap.Logger) *DutyService {
	if validate == nil {
		validate = validator.New()
	}
	if pdf == nil {
		pdf = export.NewPDFRenderer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DutyService{validator: validate, pdf: pdf, metrics: metrics, logger: logger}
}

// Allocate assigns invigilators to sessions. Understaffing is reported, never fatal.
func (s *DutyService) Allocate(ctx context.Context, req dto.AllocateDutiesRequest) (*dto.AllocateDutiesResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid duty payload")
	}

	invInputs := make([]allocation.InvigilatorInput, 0, len(req.Invigilators))
	for _, inv := range req.Invigilators {
		invInputs = append(invInputs, allocation.InvigilatorInput{ID: inv.ID, Name: inv.Name})
	}
	for _, inv := range allocation.ParseInvigilatorLines(req.InvigilatorsText) {
		invInputs = append(invInputs, allocation.InvigilatorInput{Name: inv.Name})
	}
	invigilators, err := allocation.NormalizeInvigilators(invInputs)
	if err != nil {
		return nil, err
	}

	sessionInputs := make([]allocation.SessionInput, 0, len(req.Sessions))
	for _, sess := range req.Sessions {
		sessionInputs = append(sessionInputs, allocation.SessionInput{
			ID:       sess.ID,
			Exam:     sess.Exam,
			Room:     sess.Room,
			Time:     sess.Time,
			Required: sess.Required,
		})
	}
	for _, sess := range allocation.ParseSessionLines(req.SessionsText) {
		sess.ID = ""
		sessionInputs = append(sessionInputs, sess)
	}
	sessions, err := allocation.NormalizeSessions(sessionInputs)
	if err != nil {
		return nil, err
	}

	duties := allocation.AllocateDuties(invigilators, sessions)
	dutyRoster := allocation.AssembleDutyRoster(invigilators, duties)

	shortfall := 0
	warnings := []string{}
	if len(invigilators) == 0 && len(sessions) > 0 {
		warnings = append(warnings, "no invigilators supplied")
	}
	for _, d := range duties {
		if d.Shortfall > 0 {
			shortfall += d.Shortfall
			warnings = append(warnings, fmt.Sprintf("session %s is short by %d invigilator(s)", d.Session.ID, d.Shortfall))
		}
	}

	s.metrics.ObserveDuties(len(sessions), shortfall)
	s.logger.Info("duties allocated",
		zap.Int("invigilators", len(invigilators)),
		zap.Int("sessions", len(sessions)),
		zap.Int("shortfall", shortfall),
	)
	return &dto.AllocateDutiesResponse{Roster: dutyRoster, Warnings: warnings}, nil
}

// RenderPDF allocates duties and prints the roster as a table.
func (s *DutyService) RenderPDF(ctx context.Context, req dto.AllocateDutiesRequest) ([]byte, error) {
	resp, err := s.Allocate(ctx, req)
	if err != nil {
		return nil, err
	}
	title := req.Title
	if title == "" {
		title = "Invigilation duty roster"
	}
	data, err := s.pdf.RenderTable(DutyTable(title, resp.Roster))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render duty roster")
	}
	return data, nil
}

// DutyTable lays out a duty roster one session per row.
func DutyTable(title string, r models.DutyRoster) export.Table {
	t := export.Table{
		Title:   title,
		Headers: []string{"Session", "Exam", "Room", "Time", "Invigilators", "Short"},
		Rows:    make([][]string, 0, len(r.Sessions)),
	}
	for _, d := range r.Sessions {
		names := make([]string, len(d.Assigned))
		for i, inv := range d.Assigned {
			names[i] = inv.Name
		}
		short := ""
		if d.Shortfall > 0 {
			short = fmt.Sprintf("%d", d.Shortfall)
		}
		t.Rows = append(t.Rows, []string{d.Session.ID, d.Session.Exam, d.Session.Room, d.Session.Time, strings.Join(names, ", "), short})
	}
	return t
}
