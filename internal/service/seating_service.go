package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-logistics-api/internal/allocation"
	"github.com/noah-isme/exam-logistics-api/internal/dto"
	"github.com/noah-isme/exam-logistics-api/internal/models"
	"github.com/noah-isme/exam-logistics-api/internal/roster"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
)

type rosterParser interface {
	Parse(ctx context.Context, req dto.RosterRequest) (*dto.RosterResponse, error)
}

type planSaver interface {
	Save(ctx context.Context, plan *models.SeatingPlan) error
}

// SeatingConfig selects allocation defaults.
type SeatingConfig struct {
	DefaultStrategy string
	DuplicateRooms  roster.DuplicatePolicy
}

// SeatingService runs seat allocation and plan assembly for a request.
type SeatingService struct {
	rosters   rosterParser
	plans     planSaver
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       SeatingConfig
	now       func() time.Time
}

// NewSeatingService constructs the service. plans may be nil when the plan store is disabled.
func NewSeatingService(rosters rosterParser, plans planSaver, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, cfg SeatingConfig) *SeatingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DuplicateRooms == "" {
		cfg.DuplicateRooms = roster.DuplicateKeep
	}
	return &SeatingService{
		rosters:   rosters,
		plans:     plans,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Allocate seats the students into the rooms and assembles the plan. Students left
// over once capacity runs out are reported in the plan and as a warning.
func (s *SeatingService) Allocate(ctx context.Context, req dto.AllocateSeatsRequest) (*dto.AllocateSeatsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid seating payload")
	}
	if req.Save && s.plans == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "plan store is disabled")
	}

	students := toStudents(req.Students)
	if req.Roster != nil {
		rosterReq := *req.Roster
		if len(req.Students) > 0 {
			rosterReq.Existing = append(append([]dto.StudentPayload{}, req.Students...), rosterReq.Existing...)
		}
		parsed, err := s.rosters.Parse(ctx, rosterReq)
		if err != nil {
			return nil, err
		}
		students = parsed.Students
	}

	rooms, err := s.rooms(req)
	if err != nil {
		return nil, err
	}

	name := req.Strategy
	if name == "" {
		name = s.cfg.DefaultStrategy
	}
	strategy, err := allocation.LookupStrategy(name)
	if err != nil {
		return nil, err
	}

	seed := s.now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}

	start := time.Now()
	plan := allocation.AssemblePlan(allocation.AllocateSeats(students, rooms, strategy, seed))
	elapsed := time.Since(start)
	plan.Name = req.Name

	s.metrics.ObserveAllocation(string(plan.Strategy), plan.Totals.Assigned, plan.Totals.Unassigned, elapsed)
	s.logger.Info("seating plan allocated",
		zap.String("strategy", string(plan.Strategy)),
		zap.Int64("seed", seed),
		zap.Int("students", plan.Totals.Students),
		zap.Int("rooms", plan.Totals.Rooms),
		zap.Int("unassigned", plan.Totals.Unassigned),
		zap.Duration("elapsed", elapsed),
	)

	resp := &dto.AllocateSeatsResponse{Plan: plan, Warnings: planWarnings(plan)}
	if req.Save {
		if err := s.plans.Save(ctx, &resp.Plan); err != nil {
			return nil, err
		}
		resp.Saved = true
	}
	return resp, nil
}

func (s *SeatingService) rooms(req dto.AllocateSeatsRequest) ([]models.Room, error) {
	inputs := make([]allocation.RoomInput, 0, len(req.Rooms))
	for _, r := range req.Rooms {
		inputs = append(inputs, allocation.RoomInput{
			Name:     r.Name,
			Capacity: r.Capacity,
			Rows:     r.Rows,
			Cols:     r.Cols,
			College:  r.College,
			Exam:     r.Exam,
		})
	}
	inputs = append(inputs, allocation.ParseRoomLines(req.RoomsText)...)

	policy := s.cfg.DuplicateRooms
	if req.DuplicateRooms != "" {
		parsed, err := roster.ParseDuplicatePolicy(req.DuplicateRooms)
		if err != nil {
			return nil, err
		}
		policy = parsed
	}
	return allocation.NormalizeRooms(inputs, policy)
}

func planWarnings(plan models.SeatingPlan) []string {
	warnings := []string{}
	if len(plan.Rooms) == 0 && plan.Totals.Students > 0 {
		warnings = append(warnings, "no rooms supplied")
	}
	for _, room := range plan.Rooms {
		if room.TotalCapacity == 0 {
			warnings = append(warnings, fmt.Sprintf("room %s has no usable capacity", room.Name))
		}
	}
	if plan.Totals.Unassigned > 0 {
		warnings = append(warnings, fmt.Sprintf("%d of %d students could not be seated: total capacity is %d",
			plan.Totals.Unassigned, plan.Totals.Students, plan.Totals.Capacity))
	}
	return warnings
}
