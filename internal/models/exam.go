package models

// UnknownBranch labels students whose roster row carried no branch value.
const UnknownBranch = "UNKNOWN"

// Student is a roster entry. Identity is ID; the struct is never mutated after the roster is built.
type Student struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Branch string `json:"branch,omitempty"`
}

// BranchKey returns the grouping key used by branch-aware layouts and summaries.
func (s Student) BranchKey() string {
	if s.Branch == "" {
		return UnknownBranch
	}
	return s.Branch
}

// Room is a seating container. Capacity is already resolved from Rows*Cols when a grid is known.
type Room struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Rows     int    `json:"rows,omitempty"`
	Cols     int    `json:"cols,omitempty"`
	College  string `json:"college,omitempty"`
	Exam     string `json:"exam,omitempty"`
}

// HasGrid reports whether the room was described by rows and columns.
func (r Room) HasGrid() bool {
	return r.Rows > 0 && r.Cols > 0
}

// TotalCapacity is rows*cols when grid dimensions are known, else the raw capacity.
func (r Room) TotalCapacity() int {
	if r.HasGrid() {
		return r.Rows * r.Cols
	}
	if r.Capacity < 0 {
		return 0
	}
	return r.Capacity
}

// Session is an exam sitting that needs Required invigilators.
type Session struct {
	ID       string `json:"id"`
	Exam     string `json:"exam"`
	Room     string `json:"room"`
	Time     string `json:"time"`
	Required int    `json:"required"`
}

// Invigilator supervises exam sessions.
type Invigilator struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
