// Package allocation assigns students to rooms and invigilators to sessions.
// Every function here is a pure, synchronous transform over its inputs.
package allocation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/exam-logistics-api/internal/models"
	"github.com/noah-isme/exam-logistics-api/internal/roster"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
)

const (
	defaultSessionRoom = "RoomX"
	defaultRequired    = 1
)

// MaxRoomCapacity bounds the seats a single room may declare, directly or as rows*cols.
const MaxRoomCapacity = 250000

// RoomInput is a raw room description prior to normalisation.
type RoomInput struct {
	Name     string
	Capacity int
	Rows     *int
	Cols     *int
	College  string
	Exam     string
	// Defaulted marks rooms whose capacity was filled in by a lenient text parser.
	Defaulted bool
}

// SessionInput is a raw session description prior to normalisation.
type SessionInput struct {
	ID       string
	Exam     string
	Room     string
	Time     string
	Required *int
}

// InvigilatorInput is a raw invigilator entry.
type InvigilatorInput struct {
	ID   string
	Name string
}

// NormalizeRooms validates rooms and resolves capacity, keeping input order.
// Grid dimensions win over a raw capacity when both are present.
func NormalizeRooms(raw []RoomInput, policy roster.DuplicatePolicy) ([]models.Room, error) {
	rooms := make([]models.Room, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for i, in := range raw {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			name = fmt.Sprintf("Room%d", i+1)
		}
		room := models.Room{
			Name:    name,
			College: strings.TrimSpace(in.College),
			Exam:    strings.TrimSpace(in.Exam),
		}

		switch {
		case in.Rows != nil || in.Cols != nil:
			if in.Rows == nil || in.Cols == nil {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("room %q must provide both rows and cols", name))
			}
			rows, cols := *in.Rows, *in.Cols
			if rows < 0 || cols < 0 {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("room %q has negative rows or cols", name))
			}
			if rows > 0 && cols > MaxRoomCapacity/rows {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("room %q exceeds %d seats", name, MaxRoomCapacity))
			}
			room.Rows, room.Cols = rows, cols
			room.Capacity = rows * cols
		case in.Capacity < 0:
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("room %q has negative capacity", name))
		case in.Capacity > MaxRoomCapacity:
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("room %q exceeds %d seats", name, MaxRoomCapacity))
		case in.Capacity == 0 && !in.Defaulted:
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("room %q must have a positive capacity or rows and cols", name))
		default:
			room.Capacity = in.Capacity
		}

		if _, dup := seen[name]; dup {
			switch policy {
			case roster.DuplicateReject:
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate room name %q", name))
			case roster.DuplicateMerge:
				continue
			}
		}
		seen[name] = struct{}{}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// NormalizeSessions fills placeholders for missing fields. Required defaults to one invigilator.
// Generated S<n> ids never reuse an explicit id; explicit duplicates are rejected.
func NormalizeSessions(raw []SessionInput) ([]models.Session, error) {
	taken, err := explicitIDs(len(raw), func(i int) string { return raw[i].ID }, "session")
	if err != nil {
		return nil, err
	}
	sessions := make([]models.Session, 0, len(raw))
	for i, in := range raw {
		s := models.Session{
			ID:       strings.TrimSpace(in.ID),
			Exam:     strings.TrimSpace(in.Exam),
			Room:     strings.TrimSpace(in.Room),
			Time:     strings.TrimSpace(in.Time),
			Required: defaultRequired,
		}
		if s.ID == "" {
			s.ID = nextFreeID("S", i+1, taken)
		}
		if s.Exam == "" {
			s.Exam = fmt.Sprintf("Exam%d", i+1)
		}
		if s.Room == "" {
			s.Room = defaultSessionRoom
		}
		if in.Required != nil {
			if *in.Required < 0 {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("session %q has negative staffing requirement", s.ID))
			}
			s.Required = *in.Required
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// NormalizeInvigilators drops blank entries and assigns I<n> ids where missing.
// Generated ids never reuse an explicit id; explicit duplicates are rejected.
func NormalizeInvigilators(raw []InvigilatorInput) ([]models.Invigilator, error) {
	taken, err := explicitIDs(len(raw), func(i int) string { return raw[i].ID }, "invigilator")
	if err != nil {
		return nil, err
	}
	out := make([]models.Invigilator, 0, len(raw))
	for _, in := range raw {
		id := strings.TrimSpace(in.ID)
		name := strings.TrimSpace(in.Name)
		if id == "" && name == "" {
			continue
		}
		if id == "" {
			id = nextFreeID("I", len(out)+1, taken)
		}
		if name == "" {
			name = id
		}
		out = append(out, models.Invigilator{ID: id, Name: name})
	}
	return out, nil
}

func explicitIDs(n int, idAt func(int) string, kind string) (map[string]struct{}, error) {
	taken := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id := strings.TrimSpace(idAt(i))
		if id == "" {
			continue
		}
		if _, dup := taken[id]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate %s id %q", kind, id))
		}
		taken[id] = struct{}{}
	}
	return taken, nil
}

// nextFreeID returns prefix+n, advancing n past ids already taken, and reserves it.
func nextFreeID(prefix string, n int, taken map[string]struct{}) string {
	for {
		id := prefix + strconv.Itoa(n)
		if _, used := taken[id]; !used {
			taken[id] = struct{}{}
			return id
		}
		n++
	}
}
