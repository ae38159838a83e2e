package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"

	"rtotrack.dev/rtotrack/core/models"
)

func buildWorkbook(t *testing.T, rows [][]any) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			assert.NoError(t, err)
			assert.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}
	return f
}

func TestParseClosureSheet(t *testing.T) {
	f := buildWorkbook(t, [][]any{
		{"Date", "Description"},
		{"2024-12-27", "Office Shutdown"},
		{"2024-12-30", "Office Shutdown"},
		{"", "No date"},
		{"2024-12-31", "   "},
		{"not a date", "Bad row"},
		{"31/12/2024", "End of Year"},
	})

	closures, err := ParseClosureSheet(f)
	assert.NoError(t, err)
	assert.Equal(t, []ClosureDay{
		{Date: "2024-12-27", Name: "Office Shutdown"},
		{Date: "2024-12-30", Name: "Office Shutdown"},
		{Date: "2024-12-31", Name: "End of Year"},
	}, closures)
}

func TestParseClosureSheetEmptyWorkbook(t *testing.T) {
	f := excelize.NewFile()

	closures, err := ParseClosureSheet(f)
	assert.NoError(t, err)
	assert.Empty(t, closures)
}

func TestParseSheetDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "ISO", input: "2024-12-27", expected: "2024-12-27"},
		{name: "Slash day first", input: "27/12/2024", expected: "2024-12-27"},
		{name: "Slash single digits", input: "2/1/2024", expected: "2024-01-02"},
		{name: "Month name", input: "27-Dec-2024", expected: "2024-12-27"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := parseSheetDate(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, d.Format("2006-01-02"))
		})
	}

	_, err := parseSheetDate("yesterday")
	assert.Error(t, err)
}

func TestMergeClosures(t *testing.T) {
	base := &models.BaseRecord{
		ID: "user-1",
		Holidays: map[string]models.HolidayEntry{
			"2024-12-25": {Name: "Christmas Day", IsGlobal: true},
		},
	}

	closures := []ClosureDay{
		{Date: "2024-12-25", Name: "Office Shutdown"}, // already a holiday
		{Date: "2024-12-27", Name: "Office Shutdown"},
		{Date: "2024-12-30", Name: "Office Shutdown"},
	}

	added := MergeClosures(base, closures)
	assert.Equal(t, 2, added)
	assert.Len(t, base.Holidays, 3)

	// The public holiday wins over the closure sheet.
	assert.Equal(t, "Christmas Day", base.Holidays["2024-12-25"].Name)
	assert.Equal(t, models.HolidayEntry{Name: "Office Shutdown", IsGlobal: true}, base.Holidays["2024-12-27"])
}

func TestMergeClosuresNilHolidayMap(t *testing.T) {
	base := &models.BaseRecord{ID: "user-1"}

	added := MergeClosures(base, []ClosureDay{{Date: "2024-12-27", Name: "Office Shutdown"}})
	assert.Equal(t, 1, added)
	assert.Len(t, base.Holidays, 1)
}
