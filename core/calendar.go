package core

import (
	"fmt"
	"time"
)

// MonthCalendar describes one calendar month: how many days it has, how many
// of them are business days (Mon-Fri), and the weekday of each day using the
// Monday=0 convention.
type MonthCalendar struct {
	Year         int
	Month        int
	DayCount     int
	BusinessDays int
	WeekdayByDay map[int]int
}

// NewMonthCalendar computes the calendar for (year, month). It is pure and
// deterministic; leap years are handled by the time package.
func NewMonthCalendar(year, month int) (*MonthCalendar, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month %d", ErrInvalidCalendarInput, month)
	}
	if year < 1 || year > 9999 {
		return nil, fmt.Errorf("%w: year %d", ErrInvalidCalendarInput, year)
	}

	// Day zero of the next month is the last day of this one.
	dayCount := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()

	c := &MonthCalendar{
		Year:         year,
		Month:        month,
		DayCount:     dayCount,
		WeekdayByDay: make(map[int]int, dayCount),
	}

	for day := 1; day <= dayCount; day++ {
		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		weekday := (int(date.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
		c.WeekdayByDay[day] = weekday
		if weekday < 5 {
			c.BusinessDays++
		}
	}

	return c, nil
}
