package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageMargin  = 10.0
	defaultCols = 4
)

// SeatCell is one printed seat.
type SeatCell struct {
	Label  string
	Detail string
	// Shaded prints the cell with a grey background, used for the second series.
	Shaded bool
}

// RoomSheet is a single room page: a grid of seats with a summary footer.
type RoomSheet struct {
	Heading    string
	Subheading string
	Rows       int
	Cols       int
	Cells      []SeatCell
	Summary    []string
}

// SeatingDocument is a printable seating plan, one sheet per room.
type SeatingDocument struct {
	Title string
	Rooms []RoomSheet
}

// PDFRenderer produces seating sheets and tabular reports with gofpdf.
type PDFRenderer struct{}

// NewPDFRenderer constructs a PDF renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// RenderTable prints a portrait table with an optional title.
func (r *PDFRenderer) RenderTable(t Table) ([]byte, error) {
	if len(t.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, 15, pageMargin)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	if t.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(t.Title), "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	width, _ := pdf.GetPageSize()
	colWidth := (width - 2*pageMargin) / float64(len(t.Headers))
	header := func() {
		pdf.SetFont("Arial", "B", 10)
		for _, h := range t.Headers {
			pdf.CellFormat(colWidth, 8, h, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}
	header()
	_, pageHeight := pdf.GetPageSize()
	for _, row := range t.Rows {
		if pdf.GetY()+7 > pageHeight-15 {
			pdf.AddPage()
			header()
		}
		for _, cell := range fit(row, len(t.Headers)) {
			pdf.CellFormat(colWidth, 7, cell, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return output(pdf)
}

// RenderSeating prints each room on its own landscape page. Rooms without a grid
// are laid out four seats to a row.
func (r *PDFRenderer) RenderSeating(doc SeatingDocument) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.SetFillColor(225, 225, 225)

	if len(doc.Rooms) == 0 {
		pdf.AddPage()
		r.title(pdf, doc.Title)
		pdf.SetFont("Arial", "I", 11)
		pdf.CellFormat(0, 10, "No rooms in plan", "", 1, "C", false, 0, "")
		return output(pdf)
	}
	for _, sheet := range doc.Rooms {
		r.roomPages(pdf, doc.Title, sheet)
	}
	return output(pdf)
}

func (r *PDFRenderer) roomPages(pdf *gofpdf.Fpdf, title string, sheet RoomSheet) {
	cols := sheet.Cols
	if cols <= 0 {
		cols = defaultCols
	}
	rows := sheet.Rows
	if rows <= 0 {
		rows = (len(sheet.Cells) + cols - 1) / cols
	}

	width, height := pdf.GetPageSize()
	cellWidth := (width - 2*pageMargin) / float64(cols)
	const lineHeight = 6.0

	start := func() {
		pdf.AddPage()
		r.title(pdf, title)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, sheet.Heading, "", 1, "L", false, 0, "")
		if sheet.Subheading != "" {
			pdf.SetFont("Arial", "", 10)
			pdf.CellFormat(0, 6, sheet.Subheading, "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
	}
	start()

	for row := 0; row < rows; row++ {
		if pdf.GetY()+2*lineHeight > height-pageMargin-lineHeight*float64(len(sheet.Summary)+1) {
			start()
		}
		for pass := 0; pass < 2; pass++ {
			if pass == 0 {
				pdf.SetFont("Arial", "B", 9)
			} else {
				pdf.SetFont("Arial", "", 8)
			}
			for col := 0; col < cols; col++ {
				idx := row*cols + col
				var cell SeatCell
				if idx < len(sheet.Cells) {
					cell = sheet.Cells[idx]
				}
				text, border := cell.Label, "LTR"
				if pass == 1 {
					text, border = cell.Detail, "LBR"
				}
				pdf.CellFormat(cellWidth, lineHeight, text, border, 0, "C", cell.Shaded, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	pdf.Ln(3)
	pdf.SetFont("Arial", "", 9)
	for _, line := range sheet.Summary {
		pdf.CellFormat(0, lineHeight, line, "", 1, "L", false, 0, "")
	}
}

func (r *PDFRenderer) title(pdf *gofpdf.Fpdf, title string) {
	if title == "" {
		return
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 9, strings.ToUpper(title), "", 1, "C", false, 0, "")
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
