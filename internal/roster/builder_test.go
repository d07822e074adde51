package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-logistics-api/internal/models"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
)

func TestBuildWithDetectedHeader(t *testing.T) {
	rows := []Row{
		{"Roll No", "Student Name", "Branch"},
		{"2400970100108", "Alice", "CSE"},
		{"2400970100109", "", "ECE"},
		{"", "", ""},
		{"", "Bob 24GCEBCS003", "ME"},
	}

	res, err := NewBuilder().Build(rows, true, nil)
	require.NoError(t, err)
	assert.Equal(t, Columns{ID: 0, Name: 1, Branch: 2}, res.Columns)
	assert.Equal(t, []int{3}, res.SkippedRows)
	require.Len(t, res.Students, 3)
	assert.Equal(t, models.Student{ID: "2400970100108", Name: "Alice", Branch: "CSE"}, res.Students[0])
	assert.Equal(t, models.Student{ID: "2400970100109", Name: "2400970100109", Branch: "ECE"}, res.Students[1])
	assert.Equal(t, models.Student{ID: "24GCEBCS003", Name: "Bob 24GCEBCS003", Branch: "ME"}, res.Students[2])
}

func TestBuildWithoutHeaderUsesExtractorAndPlaceholders(t *testing.T) {
	rows := []Row{
		{"Reg 2400970100108 Alice"},
		{"Carol Singh"},
		{"   "},
		{"24GCEBCS003 Bob Kumar"},
	}

	students, err := Build(rows, false, nil)
	require.NoError(t, err)
	require.Len(t, students, 3)
	assert.Equal(t, "2400970100108", students[0].ID)
	assert.Equal(t, "Alice", students[0].Name)
	assert.Equal(t, "p1", students[1].ID)
	assert.Equal(t, "Carol Singh", students[1].Name)
	assert.Equal(t, "24GCEBCS003", students[2].ID)
	assert.Equal(t, "Bob Kumar", students[2].Name)
}

func TestBuildCountMatchesUsableRows(t *testing.T) {
	rows := []Row{{"a"}, {""}, {"b"}, {" ", ""}, {"c 123456"}}
	students, err := Build(rows, false, nil)
	require.NoError(t, err)
	assert.Len(t, students, 3)
}

func TestBuildExplicitMappingOverridesDetection(t *testing.T) {
	rows := []Row{
		{"id", "name", "enrolment", "full name"},
		{"1", "ignored", "2400970100108", "Alice A"},
	}
	res, err := NewBuilder().Build(rows, true, &Mapping{IDColumn: "Enrolment", NameColumn: "4"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Columns.ID)
	assert.Equal(t, 3, res.Columns.Name)
	assert.Equal(t, "2400970100108", res.Students[0].ID)
	assert.Equal(t, "Alice A", res.Students[0].Name)
}

func TestBuildMappingMissingColumn(t *testing.T) {
	rows := []Row{{"roll", "name"}, {"2400970100108", "Alice"}}
	_, err := NewBuilder().Build(rows, true, &Mapping{IDColumn: "registration"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBuildZeroUsableRows(t *testing.T) {
	_, err := Build([]Row{{"roll", "name"}, {"", ""}}, true, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrMalformedInput)
}

func TestBuildDuplicatePolicies(t *testing.T) {
	rows := []Row{{"2400970100108 Alice"}, {"2400970100108 Alicia"}, {"2400970100109 Bob"}}

	kept, err := NewBuilder().Build(rows, false, nil)
	require.NoError(t, err)
	assert.Len(t, kept.Students, 3)
	assert.Equal(t, []string{"2400970100108"}, kept.Duplicates)

	merged, err := NewBuilder(WithDuplicatePolicy(DuplicateMerge)).Build(rows, false, nil)
	require.NoError(t, err)
	require.Len(t, merged.Students, 2)
	assert.Equal(t, "Alice", merged.Students[0].Name)

	_, err = NewBuilder(WithDuplicatePolicy(DuplicateReject)).Build(rows, false, nil)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestBuildWithInjectedExtractor(t *testing.T) {
	upper := func(line string) (Identifier, bool) {
		return Identifier{ID: "X-" + line, Name: "custom"}, true
	}
	students, err := NewBuilder(WithExtractor(upper)).Build([]Row{{"abc"}}, false, nil)
	require.NoError(t, err)
	assert.Equal(t, "X-abc", students.Students[0].ID)
	assert.Equal(t, "custom", students.Students[0].Name)
}

func TestDetectHeader(t *testing.T) {
	assert.True(t, DetectHeader(Row{"S.No", "Roll_No", "Marks"}))
	assert.True(t, DetectHeader(Row{"Full Name"}))
	assert.False(t, DetectHeader(Row{"2400970100108", "Alice"}))
}

func TestMergeConcatenates(t *testing.T) {
	existing := []models.Student{{ID: "1", Name: "a"}}
	batch := []models.Student{{ID: "1", Name: "b"}, {ID: "2", Name: "c"}}
	merged := Merge(existing, batch)
	require.Len(t, merged, 3)
	assert.Equal(t, "a", merged[0].Name)
	assert.Equal(t, "b", merged[1].Name)
}

func TestRowsFromRecords(t *testing.T) {
	rows := RowsFromRecords([]map[string]string{
		{"roll": "2400970100108", "name": "Alice"},
		{"roll": "2400970100109"},
	}, []string{"roll", "name"})
	require.Len(t, rows, 3)
	assert.Equal(t, Row{"roll", "name"}, rows[0])
	assert.Equal(t, Row{"2400970100109", ""}, rows[2])
}
