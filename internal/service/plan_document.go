package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/exam-logistics-api/internal/models"
	"github.com/noah-isme/exam-logistics-api/pkg/export"
)

const unassignedCols = 4

// SeatingDocument converts a plan into printable room sheets. Series two seats are shaded;
// unseated students get a final sheet of their own.
func SeatingDocument(title string, plan models.SeatingPlan) export.SeatingDocument {
	if title == "" {
		title = plan.Name
	}
	doc := export.SeatingDocument{Title: title, Rooms: make([]export.RoomSheet, 0, len(plan.Rooms)+1)}
	for _, room := range plan.Rooms {
		cells := make([]export.SeatCell, room.TotalCapacity)
		for _, seat := range room.Seats {
			if seat.Index < 1 || seat.Index > len(cells) {
				continue
			}
			cells[seat.Index-1] = export.SeatCell{
				Label:  seat.Student.ID,
				Detail: seatDetail(seat.Student),
				Shaded: seat.Series == 2,
			}
		}
		for i := range cells {
			if cells[i].Label == "" {
				cells[i] = export.SeatCell{Label: "-", Detail: "vacant"}
			}
		}

		doc.Rooms = append(doc.Rooms, export.RoomSheet{
			Heading:    room.Name,
			Subheading: joinNonEmpty(" | ", room.College, room.Exam),
			Rows:       room.Rows,
			Cols:       room.Cols,
			Cells:      cells,
			Summary: []string{
				"Branches: " + branchLine(room.Branches),
				fmt.Sprintf("Occupied %d of %d, vacant %d", room.Occupied, room.TotalCapacity, room.Vacant),
			},
		})
	}

	if len(plan.Unassigned) > 0 {
		cells := make([]export.SeatCell, len(plan.Unassigned))
		for i, st := range plan.Unassigned {
			cells[i] = export.SeatCell{Label: st.ID, Detail: seatDetail(st)}
		}
		doc.Rooms = append(doc.Rooms, export.RoomSheet{
			Heading: "Unassigned students",
			Cols:    unassignedCols,
			Cells:   cells,
			Summary: []string{fmt.Sprintf("%d students without a seat", len(plan.Unassigned))},
		})
	}
	return doc
}

// SeatingTable flattens a plan into one row per seat, followed by unassigned students.
func SeatingTable(title string, plan models.SeatingPlan) export.Table {
	t := export.Table{
		Title:   title,
		Headers: []string{"Room", "Seat", "Row", "Col", "Series", "Student ID", "Name", "Branch"},
	}
	for _, room := range plan.Rooms {
		for _, seat := range room.Seats {
			t.Rows = append(t.Rows, []string{
				room.Name,
				strconv.Itoa(seat.Index),
				optionalInt(seat.Row),
				optionalInt(seat.Col),
				optionalInt(seat.Series),
				seat.Student.ID,
				seat.Student.Name,
				seat.Student.Branch,
			})
		}
	}
	for _, st := range plan.Unassigned {
		t.Rows = append(t.Rows, []string{"UNASSIGNED", "", "", "", "", st.ID, st.Name, st.Branch})
	}
	return t
}

func seatDetail(st models.Student) string {
	name := st.Name
	if name == st.ID {
		name = ""
	}
	if len(name) > 22 {
		name = name[:21] + "."
	}
	if st.Branch != "" {
		return strings.TrimSpace(name + " (" + st.Branch + ")")
	}
	return name
}

func branchLine(counts []models.BranchCount) string {
	if len(counts) == 0 {
		return "none"
	}
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%s %d", c.Branch, c.Count)
	}
	return strings.Join(parts, ", ")
}

func joinNonEmpty(sep string, values ...string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, sep)
}

func optionalInt(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}
