package roster

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/noah-isme/exam-logistics-api/internal/models"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
)

// Row is one ordered record of raw fields.
type Row []string

// Mapping names the columns holding the id, name and branch. Columns are matched
// against header cells case-insensitively, or given as 1-based positions ("2", "column 2").
type Mapping struct {
	IDColumn     string `json:"idColumn"`
	NameColumn   string `json:"nameColumn"`
	BranchColumn string `json:"branchColumn"`
}

// Columns are the resolved zero-based column positions; -1 means absent.
type Columns struct {
	ID     int `json:"id"`
	Name   int `json:"name"`
	Branch int `json:"branch"`
}

// DuplicatePolicy decides what happens to repeated student ids.
type DuplicatePolicy string

const (
	// DuplicateKeep accepts repeated ids; each row stays a separate roster entry.
	DuplicateKeep DuplicatePolicy = "keep"
	// DuplicateReject fails the build with a validation error.
	DuplicateReject DuplicatePolicy = "reject"
	// DuplicateMerge keeps the first occurrence of each id.
	DuplicateMerge DuplicatePolicy = "merge"
)

// ParseDuplicatePolicy maps a raw value onto a policy, defaulting to keep.
func ParseDuplicatePolicy(raw string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", DuplicateKeep:
		return DuplicateKeep, nil
	case DuplicateReject:
		return DuplicateReject, nil
	case DuplicateMerge:
		return DuplicateMerge, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown duplicate policy %q", raw))
}

var (
	idHeaders     = headerSet("roll", "rollno", "roll_no", "registration", "regno", "reg_no", "studentid", "id")
	nameHeaders   = headerSet("name", "full_name", "student", "student_name")
	branchHeaders = headerSet("branch", "department", "dept", "course", "stream")
)

// Result is the outcome of a roster build.
type Result struct {
	Students      []models.Student `json:"students"`
	Columns       Columns          `json:"columns"`
	HeaderPresent bool             `json:"headerPresent"`
	SkippedRows   []int            `json:"skippedRows"`
	Duplicates    []string         `json:"duplicates,omitempty"`
}

// Builder converts raw rows into students.
type Builder struct {
	extract    Extractor
	duplicates DuplicatePolicy
}

// Option customises a Builder.
type Option func(*Builder)

// WithExtractor swaps the identifier heuristic.
func WithExtractor(e Extractor) Option {
	return func(b *Builder) {
		if e != nil {
			b.extract = e
		}
	}
}

// WithDuplicatePolicy sets how repeated ids are handled.
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(b *Builder) {
		if p != "" {
			b.duplicates = p
		}
	}
}

// NewBuilder constructs a Builder using ExtractIdentifier and DuplicateKeep unless overridden.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{extract: ExtractIdentifier, duplicates: DuplicateKeep}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build runs the default builder.
func Build(rows []Row, headerPresent bool, mapping *Mapping) ([]models.Student, error) {
	res, err := NewBuilder().Build(rows, headerPresent, mapping)
	if err != nil {
		return nil, err
	}
	return res.Students, nil
}

// Build turns rows into an ordered roster. Rows without any usable id or name are
// skipped and reported; zero resulting students is a malformed-input error.
func (b *Builder) Build(rows []Row, headerPresent bool, mapping *Mapping) (*Result, error) {
	cols := Columns{ID: -1, Name: -1, Branch: -1}
	start := 0
	if headerPresent && len(rows) > 0 {
		cols = detectColumns(rows[0])
		start = 1
	}
	if mapping != nil {
		var header Row
		if headerPresent && len(rows) > 0 {
			header = rows[0]
		}
		var err error
		if cols.ID, err = overrideColumn(header, mapping.IDColumn, cols.ID); err != nil {
			return nil, err
		}
		if cols.Name, err = overrideColumn(header, mapping.NameColumn, cols.Name); err != nil {
			return nil, err
		}
		if cols.Branch, err = overrideColumn(header, mapping.BranchColumn, cols.Branch); err != nil {
			return nil, err
		}
	}

	res := &Result{Columns: cols, HeaderPresent: headerPresent, SkippedRows: []int{}}
	students := make([]models.Student, 0, len(rows))
	for i := start; i < len(rows); i++ {
		student, ok := b.buildRow(i, rows[i], cols)
		if !ok {
			res.SkippedRows = append(res.SkippedRows, i)
			continue
		}
		students = append(students, student)
	}
	if len(students) == 0 {
		return nil, appErrors.Clone(appErrors.ErrMalformedInput, "roster contains no usable rows")
	}

	students, dups, err := ResolveDuplicates(students, b.duplicates)
	if err != nil {
		return nil, err
	}
	res.Students = students
	res.Duplicates = dups
	return res, nil
}

// ResolveDuplicates applies policy to repeated ids and reports which ids repeated.
func ResolveDuplicates(students []models.Student, policy DuplicatePolicy) ([]models.Student, []string, error) {
	dups := duplicateIDs(students)
	if len(dups) == 0 {
		return students, nil, nil
	}
	switch policy {
	case DuplicateReject:
		return nil, dups, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate student ids: %s", strings.Join(dups, ", ")))
	case DuplicateMerge:
		return dedupeFirst(students), dups, nil
	}
	return students, dups, nil
}

func (b *Builder) buildRow(index int, row Row, cols Columns) (models.Student, bool) {
	parts := make([]string, 0, len(row))
	for i, cell := range row {
		cell = strings.TrimSpace(normalizeSpaces(cell))
		if cell == "" || i == cols.Branch {
			continue
		}
		parts = append(parts, cell)
	}
	line := strings.Join(parts, " ")
	if line == "" {
		return models.Student{}, false
	}

	id := cellAt(row, cols.ID)
	name := cellAt(row, cols.Name)
	residual := ""
	if id != "" {
		residual = ResidualName(line, id)
	} else if ident, ok := b.extract(line); ok && ident.ID != "" {
		id = ident.ID
		residual = ident.Name
	} else {
		id = fmt.Sprintf("p%d", index)
		residual = line
	}
	if name == "" {
		name = residual
	}
	if name == "" {
		name = id
	}
	return models.Student{ID: id, Name: name, Branch: cellAt(row, cols.Branch)}, true
}

// DetectHeader reports whether the row looks like a header: any cell matches an id-like or name-like synonym.
func DetectHeader(row Row) bool {
	for _, cell := range row {
		key := canonical(cell)
		if _, ok := idHeaders[key]; ok {
			return true
		}
		if _, ok := nameHeaders[key]; ok {
			return true
		}
	}
	return false
}

// Merge appends a newly parsed batch to an existing roster without overwriting anything.
func Merge(existing, batch []models.Student) []models.Student {
	out := make([]models.Student, 0, len(existing)+len(batch))
	out = append(out, existing...)
	return append(out, batch...)
}

// RowsFromRecords flattens header->value records into a header row followed by data rows.
// Field order follows fields when given, otherwise the sorted union of record keys.
func RowsFromRecords(records []map[string]string, fields []string) []Row {
	if len(fields) == 0 {
		seen := make(map[string]struct{})
		for _, rec := range records {
			for key := range rec {
				if _, ok := seen[key]; !ok {
					seen[key] = struct{}{}
					fields = append(fields, key)
				}
			}
		}
		sort.Strings(fields)
	}
	rows := make([]Row, 0, len(records)+1)
	rows = append(rows, append(Row{}, fields...))
	for _, rec := range records {
		row := make(Row, len(fields))
		for i, field := range fields {
			row[i] = rec[field]
		}
		rows = append(rows, row)
	}
	return rows
}

func detectColumns(header Row) Columns {
	cols := Columns{ID: -1, Name: -1, Branch: -1}
	for i, cell := range header {
		key := canonical(cell)
		if _, ok := idHeaders[key]; ok && cols.ID < 0 {
			cols.ID = i
			continue
		}
		if _, ok := nameHeaders[key]; ok && cols.Name < 0 {
			cols.Name = i
			continue
		}
		if _, ok := branchHeaders[key]; ok && cols.Branch < 0 {
			cols.Branch = i
		}
	}
	return cols
}

func overrideColumn(header Row, column string, current int) (int, error) {
	column = strings.TrimSpace(column)
	if column == "" {
		return current, nil
	}
	want := canonical(column)
	for i, cell := range header {
		if canonical(cell) == want {
			return i, nil
		}
	}
	if pos, ok := columnPosition(column); ok {
		return pos, nil
	}
	return -1, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("mapped column %q not found", column))
}

func columnPosition(column string) (int, bool) {
	lower := strings.ToLower(strings.TrimSpace(column))
	lower = strings.TrimSpace(strings.TrimPrefix(lower, "column"))
	lower = strings.TrimSpace(strings.TrimPrefix(lower, "col"))
	n, err := strconv.Atoi(lower)
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}

func cellAt(row Row, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(normalizeSpaces(row[idx]))
}

func duplicateIDs(students []models.Student) []string {
	seen := make(map[string]int, len(students))
	var dups []string
	for _, s := range students {
		seen[s.ID]++
		if seen[s.ID] == 2 {
			dups = append(dups, s.ID)
		}
	}
	return dups
}

func dedupeFirst(students []models.Student) []models.Student {
	seen := make(map[string]struct{}, len(students))
	out := make([]models.Student, 0, len(students))
	for _, s := range students {
		if _, ok := seen[s.ID]; ok {
			continue
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}
	return out
}

func headerSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[canonical(n)] = struct{}{}
	}
	return set
}

func canonical(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
