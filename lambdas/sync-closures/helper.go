package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"rtotrack.dev/rtotrack/core/models"
)

// ClosureDay is one office-closure entry from a master spreadsheet: column A
// holds the date, column B the description.
type ClosureDay struct {
	Date string
	Name string
}

func parseSheetDate(dateStr string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", dateStr); err == nil {
		return t, nil
	}
	formats := []string{"01-02-06", "1/2/06", "02/01/2006", "2/1/2006", "2006/01/02", "02-Jan-2006"}
	for _, fmtStr := range formats {
		if t, err := time.Parse(fmtStr, dateStr); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unknown date format: %s", dateStr)
}

// ParseClosureSheet extracts closure days from every sheet of a workbook.
// The first row of each sheet is treated as a header. Rows without a date or
// description are skipped with a warning.
func ParseClosureSheet(f *excelize.File) ([]ClosureDay, error) {
	var closures []ClosureDay

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to get rows from sheet %s: %w", sheet, err)
		}

		for r := 1; r < len(rows); r++ {
			row := rows[r]
			if len(row) < 2 || row[0] == "" || strings.TrimSpace(row[1]) == "" {
				continue
			}

			date, err := parseSheetDate(row[0])
			if err != nil {
				fmt.Printf("[WARN] could not parse date '%s' on row %d, sheet %s: %v\n", row[0], r+1, sheet, err)
				continue
			}

			closures = append(closures, ClosureDay{
				Date: date.Format("2006-01-02"),
				Name: strings.TrimSpace(row[1]),
			})
		}
	}

	return closures, nil
}

// MergeClosures adds closure days to a user's stored holiday set as global
// entries and reports how many were new. Existing entries, public holidays
// included, are left untouched.
func MergeClosures(base *models.BaseRecord, closures []ClosureDay) int {
	if base.Holidays == nil {
		base.Holidays = map[string]models.HolidayEntry{}
	}

	added := 0
	for _, closure := range closures {
		if _, exists := base.Holidays[closure.Date]; exists {
			continue
		}
		base.Holidays[closure.Date] = models.HolidayEntry{
			Name:     closure.Name,
			IsGlobal: true,
		}
		added++
	}
	return added
}
