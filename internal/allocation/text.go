package allocation

import (
	"strconv"
	"strings"
)

// ParseRoomLines reads "Name:Capacity" or "Name:RowsxCols" records, one per line.
// Malformed lines get placeholder values instead of failing the whole input.
func ParseRoomLines(text string) []RoomInput {
	var rooms []RoomInput
	for _, line := range nonEmptyLines(text) {
		parts := strings.SplitN(line, ":", 2)
		in := RoomInput{Name: strings.TrimSpace(parts[0])}
		value := ""
		if len(parts) > 1 {
			value = strings.TrimSpace(parts[1])
		}
		if rows, cols, ok := parseGrid(value); ok {
			in.Rows, in.Cols = &rows, &cols
		} else if capacity, err := strconv.Atoi(value); err == nil && capacity > 0 {
			in.Capacity = capacity
		} else {
			in.Defaulted = true
		}
		rooms = append(rooms, in)
	}
	return rooms
}

// ParseSessionLines reads "Exam:Room:Time" records. The time keeps any embedded
// colons ("09:00-11:00"); ids are assigned S1..Sn by line order.
func ParseSessionLines(text string) []SessionInput {
	var sessions []SessionInput
	for i, line := range nonEmptyLines(text) {
		parts := strings.SplitN(line, ":", 3)
		in := SessionInput{ID: "S" + strconv.Itoa(i+1)}
		in.Exam = strings.TrimSpace(parts[0])
		if len(parts) > 1 {
			in.Room = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			in.Time = strings.TrimSpace(parts[2])
		}
		sessions = append(sessions, in)
	}
	return sessions
}

// ParseInvigilatorLines reads one invigilator name per line, assigning I1..In.
func ParseInvigilatorLines(text string) []InvigilatorInput {
	var out []InvigilatorInput
	for i, line := range nonEmptyLines(text) {
		out = append(out, InvigilatorInput{ID: "I" + strconv.Itoa(i+1), Name: line})
	}
	return out
}

func parseGrid(value string) (int, int, bool) {
	lower := strings.ToLower(value)
	for _, sep := range []string{"x", "*"} {
		parts := strings.Split(lower, sep)
		if len(parts) != 2 {
			continue
		}
		rows, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		cols, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 == nil && err2 == nil && rows >= 0 && cols >= 0 {
			return rows, cols, true
		}
	}
	return 0, 0, false
}

func nonEmptyLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
