package dto

import "github.com/noah-isme/exam-logistics-api/internal/models"

// RoomPayload describes a room either by capacity or by a rows x cols grid.
type RoomPayload struct {
	Name     string `json:"name" validate:"max=120"`
	Capacity int    `json:"capacity" validate:"min=0,max=250000"`
	Rows     *int   `json:"rows,omitempty" validate:"omitempty,min=0,max=500"`
	Cols     *int   `json:"cols,omitempty" validate:"omitempty,min=0,max=500"`
	College  string `json:"college,omitempty" validate:"max=200"`
	Exam     string `json:"exam,omitempty" validate:"max=200"`
}

// AllocateSeatsRequest asks for a seating plan. Students come either pre-built or as a
// roster to parse; rooms come either structured or as Name:Capacity text lines.
type AllocateSeatsRequest struct {
	Students       []StudentPayload `json:"students" validate:"omitempty,dive"`
	Roster         *RosterRequest   `json:"roster"`
	Rooms          []RoomPayload    `json:"rooms" validate:"omitempty,dive"`
	RoomsText      string           `json:"roomsText"`
	Strategy       string           `json:"strategy" validate:"omitempty,oneof=fill branch-mix"`
	Seed           *int64           `json:"seed"`
	DuplicateRooms string           `json:"duplicateRooms" validate:"omitempty,oneof=keep reject merge"`
	Save           bool             `json:"save"`
	Name           string           `json:"name" validate:"max=160"`
}

// AllocateSeatsResponse returns the plan and non-fatal warnings such as unseated students.
type AllocateSeatsResponse struct {
	Plan     models.SeatingPlan `json:"plan"`
	Warnings []string           `json:"warnings"`
	Saved    bool               `json:"saved"`
}

// SeatingPlanQuery filters stored plan listings.
type SeatingPlanQuery struct {
	Search   string `form:"search"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}
