package models

import "fmt"

// BaseMonth is the sort-key sentinel that marks a user's profile row,
// distinguishing it from the per-month rows sharing the same partition key.
const BaseMonth = "_base"

// HolidayEntry describes one public holiday as stored on a BaseRecord.
// Counties is nil for nation-wide holidays.
type HolidayEntry struct {
	Name     string   `json:"name" yaml:"name" dynamodbav:"name"`
	IsGlobal bool     `json:"is_global" yaml:"is_global" dynamodbav:"is_global"`
	Counties []string `json:"counties,omitempty" yaml:"counties,omitempty" dynamodbav:"counties,omitempty"`
}

// BaseRecord is the per-user profile row, written once at onboarding.
// Holidays is keyed by ISO date ("2006-01-02") and scoped to the creation year.
type BaseRecord struct {
	ID         string                  `json:"id" dynamodbav:"id"`
	Month      string                  `json:"month" dynamodbav:"month"`
	OfficeIPs  []string                `json:"office_ips" dynamodbav:"office_ips"`
	Rounding   string                  `json:"rounding" dynamodbav:"rounding"`
	Timezone   string                  `json:"timezone" dynamodbav:"timezone"`
	Percentage int                     `json:"percentage" dynamodbav:"percentage"`
	Holidays   map[string]HolidayEntry `json:"holidays" dynamodbav:"holidays"`
	CreatedAt  string                  `json:"created_at" dynamodbav:"created_at"`
	County     string                  `json:"county" dynamodbav:"county"`
	Country    string                  `json:"country" dynamodbav:"country"`
}

// MonthRecord is the per-user-per-month attendance row. Days maps the
// day-of-month ("1".."31") to the IP that checked in, or nil when the day has
// no check-in. Holidays maps the day-of-month to the holiday name for entries
// in scope for the user.
type MonthRecord struct {
	ID           string             `json:"id" dynamodbav:"id"`
	Month        string             `json:"month" dynamodbav:"month"`
	Days         map[string]*string `json:"days" dynamodbav:"days"`
	BusinessDays int                `json:"business_days" dynamodbav:"business_days"`
	Holidays     map[string]string  `json:"holidays" dynamodbav:"holidays"`
}

// MonthKey renders the sort key for a month row, e.g. "2024-02".
// Keys sort lexicographically in chronological order.
func MonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
