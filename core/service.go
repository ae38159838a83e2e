package core

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"rtotrack.dev/rtotrack/core/models"
	"rtotrack.dev/rtotrack/utils"
)

// CheckInStatus is the outcome of a check-in transition.
type CheckInStatus string

const (
	// CheckInRecorded means today's check-in was written.
	CheckInRecorded CheckInStatus = "recorded"
	// CheckInAlreadyRecorded means today already had a check-in; nothing was
	// written.
	CheckInAlreadyRecorded CheckInStatus = "already_recorded"
	// CheckInIgnored means the source IP is not an office IP. The call still
	// succeeds but the day is left untouched.
	CheckInIgnored CheckInStatus = "ignored"
)

// Stats is the attendance summary for one month. EligibleDays lets callers
// distinguish a genuine 0% from a month with no eligible days at all.
type Stats struct {
	Attendance   float64 `json:"attendance"`
	Attended     int     `json:"attended"`
	EligibleDays int     `json:"eligible_days"`
}

// Service orchestrates onboarding, check-ins and statistics over the tracker
// store and the external collaborators. Each call is stateless; the only
// shared state is the idempotency cache inside the resolver and enricher.
type Service struct {
	store     TrackerStore
	geo       *GeoResolver
	holidays  *HolidayEnricher
	officeIPs []string
	now       func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the wall clock, e.g. in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires a Service. officeIPs comes from deployment configuration,
// never from user input.
func NewService(store TrackerStore, geo *GeoResolver, holidays *HolidayEnricher, officeIPs []string, opts ...Option) *Service {
	s := &Service{
		store:     store,
		geo:       geo,
		holidays:  holidays,
		officeIPs: officeIPs,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Onboard registers a new anonymous user. The timezone override is optional;
// when empty the zone from the IP geolocation is used. Both the base row and
// the first month row are written, in that order, without a transaction.
// On any validation or collaborator failure nothing is written.
func (s *Service) Onboard(ctx context.Context, timezone, sourceIP string) (*models.BaseRecord, error) {
	location, err := s.geo.Resolve(ctx, sourceIP)
	if err != nil {
		return nil, err
	}

	if timezone == "" {
		timezone = location.Timezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil || timezone == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, timezone)
	}

	now := s.now().In(loc)

	base := NewBaseRecord(uuid.NewString(), timezone, now)
	base.County = location.CountyCode()
	base.Country = location.Country
	base.OfficeIPs = s.officeIPs

	holidays, err := s.holidays.FetchHolidays(ctx, base.Country, now.Year())
	if err != nil {
		return nil, err
	}
	base.Holidays = holidays

	month, err := BuildMonthRecord(base, now.Year(), int(now.Month()))
	if err != nil {
		return nil, err
	}

	if err := s.store.PutBase(ctx, base); err != nil {
		return nil, fmt.Errorf("failed to write base record: %w", err)
	}
	if err := s.store.PutMonth(ctx, month); err != nil {
		// The base row is already persisted; the missing month row will be
		// recreated lazily on the next check-in or read.
		return nil, fmt.Errorf("failed to write month record: %w", err)
	}

	return base, nil
}

// GetBase returns a user's profile row.
func (s *Service) GetBase(ctx context.Context, id string) (*models.BaseRecord, error) {
	base, err := s.store.GetBase(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read base record: %w", err)
	}
	if base == nil {
		return nil, ErrUserNotFound
	}
	return base, nil
}

// GetMonth returns a user's month row, creating and persisting it from the
// stored profile when it does not exist yet. Without a base row there is
// nothing to derive the month from and ErrRecordNotFound is returned.
func (s *Service) GetMonth(ctx context.Context, id string, year, month int) (*models.MonthRecord, error) {
	base, err := s.store.GetBase(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read base record: %w", err)
	}
	if base == nil {
		return nil, ErrRecordNotFound
	}
	return s.loadOrCreateMonth(ctx, base, year, month)
}

// CheckIn records today's attendance for the user. The current date is taken
// in the user's stored timezone; the month row is created lazily when absent.
// Re-checking an already recorded day is a no-op, and a source IP outside the
// user's office IPs succeeds silently without recording anything.
func (s *Service) CheckIn(ctx context.Context, id, sourceIP string) (CheckInStatus, error) {
	base, err := s.store.GetBase(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to read base record: %w", err)
	}
	if base == nil {
		return "", ErrUserNotFound
	}

	loc, err := time.LoadLocation(base.Timezone)
	if err != nil {
		return "", fmt.Errorf("%w: stored zone %q", ErrInvalidTimezone, base.Timezone)
	}
	now := s.now().In(loc)

	record, err := s.loadOrCreateMonth(ctx, base, now.Year(), int(now.Month()))
	if err != nil {
		return "", err
	}

	day := strconv.Itoa(now.Day())
	if record.Days[day] != nil {
		return CheckInAlreadyRecorded, nil
	}

	if !utils.Contains(base.OfficeIPs, sourceIP) {
		// Silent success: the day stays untouched. A lazily created row was
		// already persisted by loadOrCreateMonth.
		return CheckInIgnored, nil
	}

	record.Days[day] = &sourceIP
	if err := s.store.PutMonth(ctx, record); err != nil {
		return "", fmt.Errorf("failed to write month record: %w", err)
	}
	return CheckInRecorded, nil
}

// Stats computes the attendance percentage for one month. Eligible days are
// the business days that are not holidays; a month without any eligible days
// reports 0 with EligibleDays set to 0.
func (s *Service) Stats(ctx context.Context, id string, year, month int) (*Stats, error) {
	record, err := s.GetMonth(ctx, id, year, month)
	if err != nil {
		return nil, err
	}

	attended := 0
	for _, ip := range record.Days {
		if ip != nil {
			attended++
		}
	}

	dayCount := len(record.Days)
	excluded := dayCount - record.BusinessDays + len(record.Holidays)
	eligible := dayCount - excluded

	stats := &Stats{Attended: attended, EligibleDays: eligible}
	if eligible > 0 {
		stats.Attendance = float64(attended) / float64(eligible) * 100
	}
	return stats, nil
}

// loadOrCreateMonth reads the month row or, when the base row exists but the
// month row does not, rebuilds it from the stored holiday set and persists it.
func (s *Service) loadOrCreateMonth(ctx context.Context, base *models.BaseRecord, year, month int) (*models.MonthRecord, error) {
	key := models.MonthKey(year, month)
	record, err := s.store.GetMonth(ctx, base.ID, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read month record: %w", err)
	}
	if record != nil {
		return record, nil
	}

	record, err = BuildMonthRecord(base, year, month)
	if err != nil {
		return nil, err
	}
	if err := s.store.PutMonth(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to write month record: %w", err)
	}
	return record, nil
}
