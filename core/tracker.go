package core

import (
	"strconv"
	"time"

	"rtotrack.dev/rtotrack/core/models"
)

const dateLayout = "2006-01-02"

// NewBaseRecord builds a user's profile row. now must already be localized to
// the user's timezone; created_at captures that local date.
func NewBaseRecord(guid, timezone string, now time.Time) *models.BaseRecord {
	return &models.BaseRecord{
		ID:         guid,
		Month:      models.BaseMonth,
		Timezone:   timezone,
		Rounding:   "up",
		Percentage: 50,
		Holidays:   map[string]models.HolidayEntry{},
		CreatedAt:  now.Format(dateLayout),
	}
}

// NewMonthRecord builds an empty month row for (year, month): every day of the
// month pre-populated with no check-in, and the business-day count taken from
// the month calendar.
func NewMonthRecord(guid string, year, month int) (*models.MonthRecord, error) {
	calendar, err := NewMonthCalendar(year, month)
	if err != nil {
		return nil, err
	}

	days := make(map[string]*string, calendar.DayCount)
	for day := 1; day <= calendar.DayCount; day++ {
		days[strconv.Itoa(day)] = nil
	}

	return &models.MonthRecord{
		ID:           guid,
		Month:        models.MonthKey(year, month),
		Days:         days,
		BusinessDays: calendar.BusinessDays,
		Holidays:     map[string]string{},
	}, nil
}

// BuildMonthRecord builds the month row for a user from their stored profile:
// the empty month plus the in-scope holidays filtered from the base holiday
// set. No external fetch is involved.
func BuildMonthRecord(base *models.BaseRecord, year, month int) (*models.MonthRecord, error) {
	record, err := NewMonthRecord(base.ID, year, month)
	if err != nil {
		return nil, err
	}
	record.Holidays = FilterMonthHolidays(base.Holidays, year, month, base.County)
	return record, nil
}
