package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-logistics-api/internal/dto"
	"github.com/noah-isme/exam-logistics-api/internal/models"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
)

type seatingPlanRepository interface {
	Create(ctx context.Context, record *models.SeatingPlanRecord) error
	FindByID(ctx context.Context, id string) (*models.SeatingPlanRecord, error)
	List(ctx context.Context, filter models.SeatingPlanFilter) ([]models.SeatingPlanSummary, int, error)
	Delete(ctx context.Context, id string) error
}

// SeatingPlanService stores assembled plans in Postgres behind a read-through cache.
type SeatingPlanService struct {
	repo      seatingPlanRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewSeatingPlanService constructs the plan store service. cache may be nil.
func NewSeatingPlanService(repo seatingPlanRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SeatingPlanService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeatingPlanService{repo: repo, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// Save persists plan, assigning its ID and CreatedAt.
func (s *SeatingPlanService) Save(ctx context.Context, plan *models.SeatingPlan) error {
	if plan == nil {
		return appErrors.Clone(appErrors.ErrValidation, "plan is required")
	}
	plan.ID = uuid.NewString()
	plan.CreatedAt = s.now().UTC()

	payload, err := json.Marshal(plan)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode seating plan")
	}
	record := &models.SeatingPlanRecord{
		ID:              plan.ID,
		Name:            plan.Name,
		Strategy:        string(plan.Strategy),
		Seed:            plan.Seed,
		StudentCount:    plan.Totals.Students,
		RoomCount:       plan.Totals.Rooms,
		UnassignedCount: plan.Totals.Unassigned,
		Payload:         types.JSONText(payload),
		CreatedAt:       plan.CreatedAt,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save seating plan")
	}
	_ = s.cache.Set(ctx, planCacheKey(plan.ID), plan, 0)
	s.logger.Info("seating plan saved", zap.String("plan_id", plan.ID), zap.String("name", plan.Name))
	return nil
}

// Get loads a plan and reports whether it was served from cache.
func (s *SeatingPlanService) Get(ctx context.Context, id string) (*models.SeatingPlan, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "plan id is required")
	}
	var plan models.SeatingPlan
	hit, err := s.cache.Load(ctx, planCacheKey(id), &plan, func(ctx context.Context) error {
		record, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "seating plan not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load seating plan")
		}
		if err := record.Payload.Unmarshal(&plan); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored seating plan is corrupt")
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &plan, hit, nil
}

// List pages through stored plan summaries.
func (s *SeatingPlanService) List(ctx context.Context, query dto.SeatingPlanQuery) ([]models.SeatingPlanSummary, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan query")
	}
	filter := models.SeatingPlanFilter{Search: query.Search, Page: query.Page, PageSize: query.PageSize}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list seating plans")
	}
	return items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Delete removes a stored plan and its cache entry.
func (s *SeatingPlanService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "seating plan not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete seating plan")
	}
	_ = s.cache.Invalidate(ctx, planCacheKey(id))
	return nil
}

func planCacheKey(id string) string {
	return "seating_plan:" + id
}
