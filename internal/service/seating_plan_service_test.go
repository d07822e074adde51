package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-logistics-api/internal/dto"
	"github.com/noah-isme/exam-logistics-api/internal/models"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
)

type planRepoStub struct {
	records    map[string]*models.SeatingPlanRecord
	finds      int
	lastFilter models.SeatingPlanFilter
	createErr  error
}

func newPlanRepoStub() *planRepoStub {
	return &planRepoStub{records: make(map[string]*models.SeatingPlanRecord)}
}

func (s *planRepoStub) Create(_ context.Context, record *models.SeatingPlanRecord) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.records[record.ID] = record
	return nil
}

func (s *planRepoStub) FindByID(_ context.Context, id string) (*models.SeatingPlanRecord, error) {
	s.finds++
	record, ok := s.records[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return record, nil
}

func (s *planRepoStub) List(_ context.Context, filter models.SeatingPlanFilter) ([]models.SeatingPlanSummary, int, error) {
	s.lastFilter = filter
	items := make([]models.SeatingPlanSummary, 0, len(s.records))
	for _, r := range s.records {
		items = append(items, models.SeatingPlanSummary{ID: r.ID, Name: r.Name, Strategy: r.Strategy})
	}
	return items, len(items), nil
}

func (s *planRepoStub) Delete(_ context.Context, id string) error {
	if _, ok := s.records[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.records, id)
	return nil
}

type memoryCacheRepo struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{items: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = data
	return nil
}

func (m *memoryCacheRepo) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.items, key)
	}
	return nil
}

func samplePlan() *models.SeatingPlan {
	return &models.SeatingPlan{
		Name:     "Midterms",
		Strategy: models.StrategyFill,
		Seed:     7,
		Rooms: []models.PlanRoom{{
			Name:          "A101",
			TotalCapacity: 2,
			Occupied:      1,
			Vacant:        1,
			Seats:         []models.Seat{{Index: 1, Student: models.Student{ID: "2400970100108", Name: "Alice", Branch: "CSE"}}},
			Branches:      []models.BranchCount{{Branch: "CSE", Count: 1}},
		}},
		Unassigned: []models.Student{},
		Totals:     models.PlanTotals{Students: 1, Capacity: 2, Assigned: 1, Rooms: 1},
	}
}

func TestSeatingPlanServiceSaveAndGetWithoutCache(t *testing.T) {
	repo := newPlanRepoStub()
	svc := NewSeatingPlanService(repo, nil, nil, nil)
	fixed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	plan := samplePlan()
	require.NoError(t, svc.Save(context.Background(), plan))
	require.NotEmpty(t, plan.ID)
	assert.Equal(t, fixed, plan.CreatedAt)

	record := repo.records[plan.ID]
	require.NotNil(t, record)
	assert.Equal(t, "fill", record.Strategy)
	assert.Equal(t, 1, record.StudentCount)

	loaded, hit, err := svc.Get(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "Alice", loaded.Rooms[0].Seats[0].Student.Name)
	assert.Equal(t, 1, repo.finds)
}

func TestSeatingPlanServiceReadThroughCache(t *testing.T) {
	repo := newPlanRepoStub()
	cache := NewCacheService(newMemoryCacheRepo(), NewMetricsService(), time.Minute, nil, true)
	svc := NewSeatingPlanService(repo, cache, nil, nil)

	plan := samplePlan()
	require.NoError(t, svc.Save(context.Background(), plan))

	loaded, hit, err := svc.Get(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, plan.Name, loaded.Name)
	assert.Zero(t, repo.finds)

	require.NoError(t, svc.Delete(context.Background(), plan.ID))
	_, _, err = svc.Get(context.Background(), plan.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, 1, repo.finds)
}

type brokenCacheRepo struct{}

func (brokenCacheRepo) Get(context.Context, string, interface{}) error {
	return errors.New("redis down")
}
func (brokenCacheRepo) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("redis down")
}
func (brokenCacheRepo) Delete(context.Context, ...string) error { return errors.New("redis down") }

func TestSeatingPlanServiceFallsBackWhenCacheFails(t *testing.T) {
	repo := newPlanRepoStub()
	cache := NewCacheService(brokenCacheRepo{}, nil, time.Minute, nil, true)
	svc := NewSeatingPlanService(repo, cache, nil, nil)

	plan := samplePlan()
	require.NoError(t, svc.Save(context.Background(), plan))

	loaded, hit, err := svc.Get(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, plan.Name, loaded.Name)
	assert.Equal(t, 1, repo.finds)
	require.NoError(t, svc.Delete(context.Background(), plan.ID))
}

func TestCacheServiceLoadPopulatesOnMiss(t *testing.T) {
	cache := NewCacheService(newMemoryCacheRepo(), nil, 0, nil, true)
	calls := 0
	fetch := func(dest *string) func(context.Context) error {
		return func(context.Context) error {
			calls++
			*dest = "loaded"
			return nil
		}
	}

	var first string
	hit, err := cache.Load(context.Background(), "k", &first, fetch(&first))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "loaded", first)

	var second string
	hit, err = cache.Load(context.Background(), "k", &second, fetch(&second))
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "loaded", second)
	assert.Equal(t, 1, calls)

	_, err = cache.Load(context.Background(), "other", &second, func(context.Context) error { return errors.New("boom") })
	assert.EqualError(t, err, "boom")
}

func TestSeatingPlanServiceErrors(t *testing.T) {
	repo := newPlanRepoStub()
	svc := NewSeatingPlanService(repo, nil, nil, nil)

	_, _, err := svc.Get(context.Background(), " ")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	err = svc.Delete(context.Background(), "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	assert.True(t, errors.Is(svc.Save(context.Background(), nil), appErrors.ErrValidation))

	repo.createErr = errors.New("db down")
	err = svc.Save(context.Background(), samplePlan())
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestSeatingPlanServiceListDefaults(t *testing.T) {
	repo := newPlanRepoStub()
	svc := NewSeatingPlanService(repo, nil, nil, nil)
	require.NoError(t, svc.Save(context.Background(), samplePlan()))

	items, page, err := svc.List(context.Background(), dto.SeatingPlanQuery{Search: "mid"})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, page)
	assert.Equal(t, "mid", repo.lastFilter.Search)

	_, _, err = svc.List(context.Background(), dto.SeatingPlanQuery{PageSize: 1000})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	var nilCache *CacheService
	assert.False(t, nilCache.Enabled())
	hit, err := nilCache.Get(context.Background(), "k", &struct{}{})
	assert.False(t, hit)
	assert.NoError(t, err)

	repo := newMemoryCacheRepo()
	disabled := NewCacheService(repo, nil, 0, nil, false)
	require.NoError(t, disabled.Set(context.Background(), "k", "v", 0))
	assert.Empty(t, repo.items)
}

func TestCacheServiceMissAndHit(t *testing.T) {
	metrics := NewMetricsService()
	cache := NewCacheService(newMemoryCacheRepo(), metrics, 0, nil, true)

	var out string
	hit, err := cache.Get(context.Background(), "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(context.Background(), "k", "value", 0))
	hit, err = cache.Get(context.Background(), "k", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "value", out)

	require.NoError(t, cache.Invalidate(context.Background(), "k"))
	hit, _ = cache.Get(context.Background(), "k", &out)
	assert.False(t, hit)

	assert.Equal(t, 1.0, gatheredValue(t, metrics, "cache_hits_total", nil))
	assert.Equal(t, 2.0, gatheredValue(t, metrics, "cache_misses_total", nil))
}
