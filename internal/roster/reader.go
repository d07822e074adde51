package roster

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
)

// Format identifies a tabular input encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatText Format = "text"
)

// FormatFromFilename infers the input format from a file extension.
func FormatFromFilename(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv":
		return FormatCSV
	case ".xlsx", ".xlsm":
		return FormatXLSX
	default:
		return FormatText
	}
}

// Read decodes r according to format.
func Read(format Format, r io.Reader) ([]Row, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatXLSX:
		return ReadXLSX(r)
	case FormatText, "":
		return ReadText(r)
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported input format %q", format))
}

// ReadCSV parses delimited text. The delimiter is sniffed from the first line
// (comma, semicolon, tab or pipe) and rows may have differing field counts.
func ReadCSV(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMalformedInput.Code, appErrors.ErrMalformedInput.Status, "failed to read csv input")
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMalformedInput.Code, appErrors.ErrMalformedInput.Status, "failed to parse csv input")
	}
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		if isBlank(rec) {
			continue
		}
		rows = append(rows, Row(rec))
	}
	return rows, nil
}

// ReadXLSX returns the rows of the first worksheet.
func ReadXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMalformedInput.Code, appErrors.ErrMalformedInput.Status, "failed to open spreadsheet")
	}
	defer f.Close() //nolint:errcheck

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, appErrors.Clone(appErrors.ErrMalformedInput, "spreadsheet has no worksheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMalformedInput.Code, appErrors.ErrMalformedInput.Status, "failed to read worksheet rows")
	}
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		if isBlank(rec) {
			continue
		}
		rows = append(rows, Row(rec))
	}
	return rows, nil
}

// ReadText treats every non-empty line as a single-field row (plain lists, extracted PDF text).
func ReadText(r io.Reader) ([]Row, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var rows []Row
	for scanner.Scan() {
		line := strings.TrimSpace(normalizeSpaces(scanner.Text()))
		if line == "" {
			continue
		}
		rows = append(rows, Row{line})
	}
	if err := scanner.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMalformedInput.Code, appErrors.ErrMalformedInput.Status, "failed to read text input")
	}
	return rows, nil
}

// LinesToRows splits a pasted block of text into single-field rows.
func LinesToRows(text string) []Row {
	rows, _ := ReadText(strings.NewReader(text))
	return rows
}

func sniffDelimiter(data []byte) rune {
	first := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		first = data[:idx]
	}
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t', '|'} {
		if n := bytes.Count(first, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func isBlank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
