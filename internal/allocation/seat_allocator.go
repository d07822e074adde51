package allocation

import (
	"math/rand"

	"github.com/noah-isme/exam-logistics-api/internal/models"
)

// RoomAssignment is the set of seats filled in one room, in seat order.
type RoomAssignment struct {
	Room  models.Room
	Seats []models.Seat
}

// Allocation is the raw outcome of AllocateSeats.
type Allocation struct {
	Strategy   models.StrategyName
	Seed       int64
	Students   int
	Rooms      []RoomAssignment
	Unassigned []models.Student
}

// AllocateSeats places students into rooms in room order using the given strategy.
// Identical inputs and seed always produce the same allocation. Students who do not
// fit are returned in Unassigned; running out of capacity is not an error.
func AllocateSeats(students []models.Student, rooms []models.Room, strategy Strategy, seed int64) Allocation {
	if strategy == nil {
		strategy = fillStrategy{}
	}
	rng := rand.New(rand.NewSource(seed))
	src := strategy.source(students, rng)

	result := Allocation{
		Strategy: strategy.Name(),
		Seed:     seed,
		Students: len(students),
		Rooms:    make([]RoomAssignment, 0, len(rooms)),
	}
	for _, room := range rooms {
		src.beginRoom()
		capacity := room.TotalCapacity()
		assignment := RoomAssignment{Room: room, Seats: make([]models.Seat, 0, min(capacity, len(students)))}
		for idx := 1; idx <= capacity; idx++ {
			student, series, ok := src.next()
			if !ok {
				break
			}
			assignment.Seats = append(assignment.Seats, models.Seat{Index: idx, Series: series, Student: student})
		}
		result.Rooms = append(result.Rooms, assignment)
	}
	result.Unassigned = src.remaining()
	return result
}
