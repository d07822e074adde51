package allocation

import (
	"sort"

	"github.com/noah-isme/exam-logistics-api/internal/models"
)

// AssemblePlan turns an allocation into the renderable seating plan.
func AssemblePlan(alloc Allocation) models.SeatingPlan {
	plan := models.SeatingPlan{
		Strategy:   alloc.Strategy,
		Seed:       alloc.Seed,
		Rooms:      make([]models.PlanRoom, 0, len(alloc.Rooms)),
		Unassigned: append([]models.Student{}, alloc.Unassigned...),
	}
	for _, ra := range alloc.Rooms {
		room := ra.Room
		capacity := room.TotalCapacity()
		pr := models.PlanRoom{
			Name:          room.Name,
			College:       room.College,
			Exam:          room.Exam,
			TotalCapacity: capacity,
			Occupied:      len(ra.Seats),
			Vacant:        capacity - len(ra.Seats),
			Seats:         make([]models.Seat, 0, len(ra.Seats)),
		}
		if room.HasGrid() {
			pr.Rows, pr.Cols = room.Rows, room.Cols
		}
		for _, seat := range ra.Seats {
			if room.HasGrid() {
				seat.Row = (seat.Index-1)/room.Cols + 1
				seat.Col = (seat.Index-1)%room.Cols + 1
			}
			pr.Seats = append(pr.Seats, seat)
		}
		pr.Branches = BranchDistribution(ra.Seats)
		plan.Rooms = append(plan.Rooms, pr)

		plan.Totals.Capacity += capacity
		plan.Totals.Assigned += pr.Occupied
	}
	plan.Totals.Rooms = len(plan.Rooms)
	plan.Totals.Unassigned = len(plan.Unassigned)
	plan.Totals.Students = alloc.Students
	return plan
}

// BranchDistribution counts seated students per branch, largest first then by name.
func BranchDistribution(seats []models.Seat) []models.BranchCount {
	counts := make(map[string]int)
	for _, seat := range seats {
		counts[seat.Student.BranchKey()]++
	}
	out := make([]models.BranchCount, 0, len(counts))
	for branch, n := range counts {
		out = append(out, models.BranchCount{Branch: branch, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Branch < out[j].Branch
	})
	return out
}

// AssembleDutyRoster adds per-invigilator loads and the list of understaffed sessions.
func AssembleDutyRoster(invigilators []models.Invigilator, duties []models.SessionDuty) models.DutyRoster {
	roster := models.DutyRoster{
		Sessions:     duties,
		Loads:        make([]models.InvigilatorLoad, len(invigilators)),
		Understaffed: []string{},
	}
	index := make(map[string]int, len(invigilators))
	for i, inv := range invigilators {
		roster.Loads[i] = models.InvigilatorLoad{Invigilator: inv, Sessions: []string{}}
		if _, ok := index[inv.ID]; !ok {
			index[inv.ID] = i
		}
	}
	for _, duty := range duties {
		for _, inv := range duty.Assigned {
			if i, ok := index[inv.ID]; ok {
				roster.Loads[i].Sessions = append(roster.Loads[i].Sessions, duty.Session.ID)
				roster.Loads[i].Load++
			}
		}
		if duty.Shortfall > 0 {
			roster.Understaffed = append(roster.Understaffed, duty.Session.ID)
		}
	}
	return roster
}
