package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-logistics-api/internal/models"
)

func TestAssemblePlan(t *testing.T) {
	input := []models.Student{
		{ID: "1", Branch: "CSE"}, {ID: "2", Branch: "CSE"}, {ID: "3", Branch: "ECE"},
		{ID: "4", Branch: "ECE"}, {ID: "5"}, {ID: "6", Branch: "CSE"}, {ID: "7", Branch: "ECE"},
	}
	rooms := []models.Room{
		{Name: "Hall", Capacity: 2, Rows: 2, Cols: 3, College: "GCE", Exam: "Sem 1"},
		{Name: "Lab", Capacity: 2},
	}
	plan := AssemblePlan(AllocateSeats(input, rooms, fillStrategy{}, 5))

	assert.Equal(t, models.StrategyFill, plan.Strategy)
	assert.Equal(t, int64(5), plan.Seed)
	require.Len(t, plan.Rooms, 2)

	hall := plan.Rooms[0]
	assert.Equal(t, 6, hall.TotalCapacity)
	assert.Equal(t, 6, hall.Occupied)
	assert.Equal(t, 0, hall.Vacant)
	assert.Equal(t, "GCE", hall.College)
	assert.Equal(t, 2, hall.Rows)
	assert.Equal(t, 3, hall.Cols)
	assert.Equal(t, 1, hall.Seats[0].Row)
	assert.Equal(t, 1, hall.Seats[0].Col)
	assert.Equal(t, 2, hall.Seats[4].Row)
	assert.Equal(t, 2, hall.Seats[4].Col)

	lab := plan.Rooms[1]
	assert.Equal(t, 2, lab.TotalCapacity)
	assert.Equal(t, 1, lab.Occupied)
	assert.Equal(t, 1, lab.Vacant)
	assert.Zero(t, lab.Seats[0].Row)

	assert.Equal(t, models.PlanTotals{Students: 7, Capacity: 8, Assigned: 7, Unassigned: 0, Rooms: 2}, plan.Totals)
	assert.NotNil(t, plan.Unassigned)

	total := 0
	for _, room := range plan.Rooms {
		for _, b := range room.Branches {
			total += b.Count
		}
	}
	assert.Equal(t, 7, total)
}

func TestAssemblePlanEmpty(t *testing.T) {
	plan := AssemblePlan(AllocateSeats(nil, nil, nil, 0))

	assert.Empty(t, plan.Rooms)
	assert.Empty(t, plan.Unassigned)
	assert.Equal(t, models.PlanTotals{}, plan.Totals)
}

func TestBranchDistributionOrdering(t *testing.T) {
	seats := []models.Seat{
		{Student: models.Student{Branch: "ECE"}},
		{Student: models.Student{Branch: "MECH"}},
		{Student: models.Student{Branch: "CSE"}},
		{Student: models.Student{Branch: "MECH"}},
		{Student: models.Student{}},
		{Student: models.Student{Branch: "CSE"}},
	}
	assert.Equal(t, []models.BranchCount{
		{Branch: "CSE", Count: 2},
		{Branch: "MECH", Count: 2},
		{Branch: "ECE", Count: 1},
		{Branch: models.UnknownBranch, Count: 1},
	}, BranchDistribution(seats))
}
