package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// StrategyName identifies a seat allocation strategy.
type StrategyName string

const (
	StrategyFill      StrategyName = "fill"
	StrategyBranchMix StrategyName = "branch-mix"
)

// Seat is a single occupied position inside a room. Index is contiguous from 1.
type Seat struct {
	Index   int     `json:"index"`
	Row     int     `json:"row,omitempty"`
	Col     int     `json:"col,omitempty"`
	Series  int     `json:"series,omitempty"`
	Student Student `json:"student"`
}

// BranchCount is one line of the per-room branch distribution footer.
type BranchCount struct {
	Branch string `json:"branch"`
	Count  int    `json:"count"`
}

// PlanRoom merges room metadata with its seat assignment.
type PlanRoom struct {
	Name          string        `json:"name"`
	College       string        `json:"college,omitempty"`
	Exam          string        `json:"exam,omitempty"`
	Rows          int           `json:"rows,omitempty"`
	Cols          int           `json:"cols,omitempty"`
	TotalCapacity int           `json:"totalCapacity"`
	Occupied      int           `json:"occupied"`
	Vacant        int           `json:"vacant"`
	Seats         []Seat        `json:"seats"`
	Branches      []BranchCount `json:"branches"`
}

// PlanTotals aggregates counts across the whole plan.
type PlanTotals struct {
	Students   int `json:"students"`
	Capacity   int `json:"capacity"`
	Assigned   int `json:"assigned"`
	Unassigned int `json:"unassigned"`
	Rooms      int `json:"rooms"`
}

// SeatingPlan is the unit handed to renderers and the plan store.
type SeatingPlan struct {
	ID         string       `json:"id,omitempty"`
	Name       string       `json:"name,omitempty"`
	Strategy   StrategyName `json:"strategy"`
	Seed       int64        `json:"seed"`
	Rooms      []PlanRoom   `json:"rooms"`
	Unassigned []Student    `json:"unassigned"`
	Totals     PlanTotals   `json:"totals"`
	CreatedAt  time.Time    `json:"createdAt,omitempty"`
}

// SeatingPlanRecord is the persisted form of a SeatingPlan.
type SeatingPlanRecord struct {
	ID              string         `db:"id" json:"id"`
	Name            string         `db:"name" json:"name"`
	Strategy        string         `db:"strategy" json:"strategy"`
	Seed            int64          `db:"seed" json:"seed"`
	StudentCount    int            `db:"student_count" json:"student_count"`
	RoomCount       int            `db:"room_count" json:"room_count"`
	UnassignedCount int            `db:"unassigned_count" json:"unassigned_count"`
	Payload         types.JSONText `db:"payload" json:"payload"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

// SeatingPlanSummary is the lightweight list view of stored plans.
type SeatingPlanSummary struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Strategy        string    `db:"strategy" json:"strategy"`
	StudentCount    int       `db:"student_count" json:"student_count"`
	RoomCount       int       `db:"room_count" json:"room_count"`
	UnassignedCount int       `db:"unassigned_count" json:"unassigned_count"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// SeatingPlanFilter narrows plan listings.
type SeatingPlanFilter struct {
	Search   string
	Page     int
	PageSize int
}

// Pagination describes a paged listing.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
