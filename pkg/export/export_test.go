package export

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRendererPadsRows(t *testing.T) {
	out, err := NewCSVRenderer().Render(Table{
		Headers: []string{"room", "seat", "id"},
		Rows:    [][]string{{"A101", "1", "2400970100108"}, {"A101", "2"}, {"Hall, East", "3", "x"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "room,seat,id\nA101,1,2400970100108\nA101,2,\n\"Hall, East\",3,x\n", string(out))
}

func TestCSVRendererRequiresHeaders(t *testing.T) {
	_, err := NewCSVRenderer().Render(Table{})
	assert.Error(t, err)
}

func TestPDFRendererTable(t *testing.T) {
	rows := make([][]string, 120)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("S%d", i+1), "Maths", "Asha"}
	}
	out, err := NewPDFRenderer().RenderTable(Table{Title: "Duty roster", Headers: []string{"Session", "Exam", "Invigilators"}, Rows: rows})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFRendererSeating(t *testing.T) {
	cells := make([]SeatCell, 30)
	for i := range cells {
		cells[i] = SeatCell{Label: fmt.Sprintf("24%06d", i), Detail: "CSE", Shaded: i%2 == 1}
	}
	doc := SeatingDocument{
		Title: "Mid-term seating",
		Rooms: []RoomSheet{
			{Heading: "Hall A", Subheading: "GCE / Sem 1", Rows: 5, Cols: 6, Cells: cells, Summary: []string{"CSE: 30", "Occupied 30 of 30"}},
			{Heading: "Lab", Cells: cells[:5]},
		},
	}
	out, err := NewPDFRenderer().RenderSeating(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	empty, err := NewPDFRenderer().RenderSeating(SeatingDocument{Title: "Empty"})
	require.NoError(t, err)
	assert.NotEmpty(t, empty)
}
