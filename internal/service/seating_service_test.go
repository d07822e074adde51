package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-logistics-api/internal/dto"
	"github.com/noah-isme/exam-logistics-api/internal/models"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
)

type planSaverStub struct {
	saved []*models.SeatingPlan
	err   error
}

func (s *planSaverStub) Save(_ context.Context, plan *models.SeatingPlan) error {
	if s.err != nil {
		return s.err
	}
	plan.ID = fmt.Sprintf("plan-%d", len(s.saved)+1)
	s.saved = append(s.saved, plan)
	return nil
}

func studentPayloads(branches map[string]int, order ...string) []dto.StudentPayload {
	var out []dto.StudentPayload
	n := 0
	for _, b := range order {
		for i := 0; i < branches[b]; i++ {
			n++
			out = append(out, dto.StudentPayload{ID: fmt.Sprintf("24%06d", n), Name: fmt.Sprintf("Student %d", n), Branch: b})
		}
	}
	return out
}

func int64Ptr(v int64) *int64 { return &v }

func TestSeatingServiceAllocateBranchMix(t *testing.T) {
	svc := NewSeatingService(nil, nil, nil, NewMetricsService(), nil, SeatingConfig{DefaultStrategy: "fill"})

	resp, err := svc.Allocate(context.Background(), dto.AllocateSeatsRequest{
		Students:  studentPayloads(map[string]int{"CSE": 6, "ECE": 2, "MECH": 1}, "CSE", "ECE", "MECH"),
		RoomsText: "R1:5\nR2:4",
		Strategy:  "branch-mix",
		Seed:      int64Ptr(11),
	})
	require.NoError(t, err)

	plan := resp.Plan
	assert.Equal(t, models.StrategyBranchMix, plan.Strategy)
	assert.Equal(t, int64(11), plan.Seed)
	assert.Equal(t, 9, plan.Totals.Assigned)
	assert.Empty(t, plan.Unassigned)
	assert.Empty(t, resp.Warnings)
	assert.False(t, resp.Saved)
	assert.Equal(t, 1, plan.Rooms[0].Seats[0].Series)
	assert.Equal(t, 2, plan.Rooms[0].Seats[1].Series)
}

func TestSeatingServiceDefaultsAndWarnings(t *testing.T) {
	svc := NewSeatingService(nil, nil, nil, nil, nil, SeatingConfig{DefaultStrategy: "fill"})
	svc.now = func() time.Time { return time.Unix(0, 99) }

	resp, err := svc.Allocate(context.Background(), dto.AllocateSeatsRequest{
		Students:  studentPayloads(map[string]int{"CSE": 5}, "CSE"),
		Rooms:     []dto.RoomPayload{{Name: "A", Capacity: 2}},
		RoomsText: "Broken",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StrategyFill, resp.Plan.Strategy)
	assert.Equal(t, int64(99), resp.Plan.Seed)
	assert.Len(t, resp.Plan.Unassigned, 3)
	assert.Equal(t, []string{
		"room Broken has no usable capacity",
		"3 of 5 students could not be seated: total capacity is 2",
	}, resp.Warnings)
}

func TestSeatingServiceIsDeterministicForSeed(t *testing.T) {
	svc := NewSeatingService(nil, nil, nil, nil, nil, SeatingConfig{})
	req := dto.AllocateSeatsRequest{
		Students: studentPayloads(map[string]int{"CSE": 7, "ECE": 4}, "CSE", "ECE"),
		Rooms:    []dto.RoomPayload{{Name: "A", Capacity: 6}, {Name: "B", Capacity: 6}},
		Seed:     int64Ptr(2024),
	}
	first, err := svc.Allocate(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Allocate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.Plan, second.Plan)
}

func TestSeatingServiceEmptyInputs(t *testing.T) {
	svc := NewSeatingService(nil, nil, nil, nil, nil, SeatingConfig{})

	resp, err := svc.Allocate(context.Background(), dto.AllocateSeatsRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Plan.Rooms)
	assert.Empty(t, resp.Plan.Unassigned)

	resp, err = svc.Allocate(context.Background(), dto.AllocateSeatsRequest{Students: studentPayloads(map[string]int{"X": 2}, "X")})
	require.NoError(t, err)
	assert.Len(t, resp.Plan.Unassigned, 2)
	assert.Contains(t, resp.Warnings, "no rooms supplied")
}

func TestSeatingServiceValidation(t *testing.T) {
	svc := NewSeatingService(nil, nil, nil, nil, nil, SeatingConfig{})

	_, err := svc.Allocate(context.Background(), dto.AllocateSeatsRequest{Strategy: "zigzag"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Allocate(context.Background(), dto.AllocateSeatsRequest{Rooms: []dto.RoomPayload{{Name: "A"}}})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Allocate(context.Background(), dto.AllocateSeatsRequest{Rooms: []dto.RoomPayload{{Name: "A", Capacity: -1}}})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Allocate(context.Background(), dto.AllocateSeatsRequest{Save: true})
	assert.True(t, errors.Is(err, appErrors.ErrUnavailable))
}

func TestSeatingServiceSavesPlan(t *testing.T) {
	saver := &planSaverStub{}
	svc := NewSeatingService(nil, saver, nil, nil, nil, SeatingConfig{})

	resp, err := svc.Allocate(context.Background(), dto.AllocateSeatsRequest{
		Students: studentPayloads(map[string]int{"CSE": 2}, "CSE"),
		Rooms:    []dto.RoomPayload{{Name: "A", Capacity: 2}},
		Save:     true,
		Name:     "Finals",
	})
	require.NoError(t, err)
	assert.True(t, resp.Saved)
	assert.Equal(t, "plan-1", resp.Plan.ID)
	assert.Equal(t, "Finals", resp.Plan.Name)

	saver.err = appErrors.ErrInternal
	_, err = svc.Allocate(context.Background(), dto.AllocateSeatsRequest{Save: true})
	assert.Error(t, err)
}

func TestSeatingServiceParsesRoster(t *testing.T) {
	rosters := NewRosterService(nil, nil, nil, nil, RosterConfig{})
	svc := NewSeatingService(rosters, nil, nil, nil, nil, SeatingConfig{})

	resp, err := svc.Allocate(context.Background(), dto.AllocateSeatsRequest{
		Students: []dto.StudentPayload{{ID: "2400970100001", Name: "Walk-in"}},
		Roster:   &dto.RosterRequest{Text: "Reg 2400970100108 Alice\n24GCEBCS003 Bob Kumar"},
		Rooms:    []dto.RoomPayload{{Name: "Hall", Rows: intPtr(2), Cols: intPtr(2)}},
		Seed:     int64Ptr(1),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Plan.Totals.Students)
	assert.Equal(t, 3, resp.Plan.Rooms[0].Occupied)
	assert.Equal(t, 1, resp.Plan.Rooms[0].Vacant)
	assert.NotZero(t, resp.Plan.Rooms[0].Seats[0].Row)
}

func intPtr(v int) *int { return &v }
