package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rtotrack.dev/rtotrack/core/models"
	"rtotrack.dev/rtotrack/idempotency"
	"rtotrack.dev/rtotrack/utils"
)

type fakeStore struct {
	bases  map[string]*models.BaseRecord
	months map[string]*models.MonthRecord

	basePuts  int
	monthPuts int
	err       error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bases:  map[string]*models.BaseRecord{},
		months: map[string]*models.MonthRecord{},
	}
}

func (s *fakeStore) GetBase(ctx context.Context, id string) (*models.BaseRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.bases[id], nil
}

func (s *fakeStore) PutBase(ctx context.Context, record *models.BaseRecord) error {
	if s.err != nil {
		return s.err
	}
	s.basePuts++
	s.bases[record.ID] = record
	return nil
}

func (s *fakeStore) GetMonth(ctx context.Context, id, month string) (*models.MonthRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.months[id+"|"+month], nil
}

func (s *fakeStore) PutMonth(ctx context.Context, record *models.MonthRecord) error {
	if s.err != nil {
		return s.err
	}
	s.monthPuts++
	s.months[record.ID+"|"+record.Month] = record
	return nil
}

type fakeGeoLookup struct {
	location models.Location
	err      error
}

func (f *fakeGeoLookup) Lookup(ctx context.Context, ip string) (models.Location, error) {
	return f.location, f.err
}

type serviceFixture struct {
	store   *fakeStore
	geo     *fakeGeoLookup
	feed    *fakeHolidayFeed
	service *Service
}

func newServiceFixture(t *testing.T, now time.Time) *serviceFixture {
	t.Helper()

	store := newFakeStore()
	geo := &fakeGeoLookup{
		location: models.Location{
			Country:     "Australia",
			CountryCode: "AU",
			Region:      "NSW",
			Timezone:    "Australia/Sydney",
		},
	}
	feed := &fakeHolidayFeed{
		countries: []models.Country{{Name: "Australia", CountryCode: "AU"}},
		holidays: []models.PublicHoliday{
			{Date: "2024-01-01", LocalName: "New Year's Day", Global: true},
			{Date: "2024-01-26", LocalName: "Australia Day", Global: true},
		},
	}

	cache := idempotency.New(0)
	countries := NewCountryTable(feed)
	assert.NoError(t, countries.Reload(context.Background()))

	service := NewService(
		store,
		NewGeoResolver(geo, cache),
		NewHolidayEnricher(feed, countries, cache),
		[]string{"203.0.113.5", "203.0.113.6"},
		WithClock(func() time.Time { return now }),
	)

	return &serviceFixture{store: store, geo: geo, feed: feed, service: service}
}

func TestOnboard(t *testing.T) {
	// 2024-01-15 was a Monday.
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	fx := newServiceFixture(t, now)

	base, err := fx.service.Onboard(context.Background(), "UTC", "203.0.113.5")
	assert.NoError(t, err)

	assert.NotEmpty(t, base.ID)
	assert.Equal(t, models.BaseMonth, base.Month)
	assert.Equal(t, "UTC", base.Timezone)
	assert.Equal(t, "Australia", base.Country)
	assert.Equal(t, "AU-NSW", base.County)
	assert.Equal(t, []string{"203.0.113.5", "203.0.113.6"}, base.OfficeIPs)
	assert.Equal(t, "2024-01-15", base.CreatedAt)
	assert.Len(t, base.Holidays, 2)

	assert.Equal(t, 1, fx.store.basePuts)
	assert.Equal(t, 1, fx.store.monthPuts)

	month := fx.store.months[base.ID+"|2024-01"]
	assert.NotNil(t, month)
	assert.Equal(t, 23, month.BusinessDays)
	assert.Equal(t, map[string]string{"1": "New Year's Day", "26": "Australia Day"}, month.Holidays)
}

func TestOnboardTimezoneFromLocation(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	fx := newServiceFixture(t, now)
	fx.geo.location.Timezone = "UTC"

	base, err := fx.service.Onboard(context.Background(), "", "203.0.113.5")
	assert.NoError(t, err)
	assert.Equal(t, "UTC", base.Timezone)
}

func TestOnboardInvalidTimezone(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	fx := newServiceFixture(t, now)

	base, err := fx.service.Onboard(context.Background(), "Not/AZone", "203.0.113.5")
	assert.Nil(t, base)
	assert.ErrorIs(t, err, ErrInvalidTimezone)
	assert.Zero(t, fx.store.basePuts)
	assert.Zero(t, fx.store.monthPuts)
}

func TestOnboardGeolocationFailure(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	fx := newServiceFixture(t, now)
	fx.geo.err = errors.New("timeout")

	base, err := fx.service.Onboard(context.Background(), "UTC", "203.0.113.5")
	assert.Nil(t, base)
	assert.ErrorIs(t, err, ErrGeolocationUnavailable)
	assert.Zero(t, fx.store.basePuts)
	assert.Zero(t, fx.store.monthPuts)
}

func TestOnboardUnknownCountry(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	fx := newServiceFixture(t, now)
	fx.geo.location.Country = "Atlantis"

	base, err := fx.service.Onboard(context.Background(), "UTC", "203.0.113.5")
	assert.Nil(t, base)
	assert.ErrorIs(t, err, ErrUnknownCountry)
	assert.Zero(t, fx.store.basePuts)
}

func TestGetBaseNotFound(t *testing.T) {
	fx := newServiceFixture(t, time.Now())

	base, err := fx.service.GetBase(context.Background(), "missing")
	assert.Nil(t, base)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetMonthLazyCreation(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	fx := newServiceFixture(t, now)

	base, err := fx.service.Onboard(context.Background(), "UTC", "203.0.113.5")
	assert.NoError(t, err)
	puts := fx.store.monthPuts

	// February was never written; reading it creates and persists it.
	record, err := fx.service.GetMonth(context.Background(), base.ID, 2024, 2)
	assert.NoError(t, err)
	assert.Equal(t, "2024-02", record.Month)
	assert.Equal(t, 21, record.BusinessDays)
	assert.Equal(t, puts+1, fx.store.monthPuts)

	// A second read returns the stored row without another write.
	_, err = fx.service.GetMonth(context.Background(), base.ID, 2024, 2)
	assert.NoError(t, err)
	assert.Equal(t, puts+1, fx.store.monthPuts)
}

func TestGetMonthWithoutBase(t *testing.T) {
	fx := newServiceFixture(t, time.Now())

	record, err := fx.service.GetMonth(context.Background(), "missing", 2024, 1)
	assert.Nil(t, record)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestCheckIn(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	fx := newServiceFixture(t, now)

	base, err := fx.service.Onboard(context.Background(), "UTC", "203.0.113.5")
	assert.NoError(t, err)

	status, err := fx.service.CheckIn(context.Background(), base.ID, "203.0.113.5")
	assert.NoError(t, err)
	assert.Equal(t, CheckInRecorded, status)

	month := fx.store.months[base.ID+"|2024-01"]
	assert.Equal(t, utils.Ptr("203.0.113.5"), month.Days["15"])
}

func TestCheckInAlreadyRecorded(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	fx := newServiceFixture(t, now)

	base, err := fx.service.Onboard(context.Background(), "UTC", "203.0.113.5")
	assert.NoError(t, err)

	_, err = fx.service.CheckIn(context.Background(), base.ID, "203.0.113.5")
	assert.NoError(t, err)
	puts := fx.store.monthPuts

	status, err := fx.service.CheckIn(context.Background(), base.ID, "203.0.113.6")
	assert.NoError(t, err)
	assert.Equal(t, CheckInAlreadyRecorded, status)
	assert.Equal(t, puts, fx.store.monthPuts)

	// The original IP is preserved.
	month := fx.store.months[base.ID+"|2024-01"]
	assert.Equal(t, utils.Ptr("203.0.113.5"), month.Days["15"])
}

func TestCheckInUnauthorizedIP(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	fx := newServiceFixture(t, now)

	base, err := fx.service.Onboard(context.Background(), "UTC", "203.0.113.5")
	assert.NoError(t, err)

	status, err := fx.service.CheckIn(context.Background(), base.ID, "198.51.100.99")
	assert.NoError(t, err)
	assert.Equal(t, CheckInIgnored, status)

	month := fx.store.months[base.ID+"|2024-01"]
	assert.Nil(t, month.Days["15"])
}

func TestCheckInCreatesMonthLazily(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	fx := newServiceFixture(t, now)

	base, err := fx.service.Onboard(context.Background(), "UTC", "203.0.113.5")
	assert.NoError(t, err)

	// Simulate the month row never having been written.
	delete(fx.store.months, base.ID+"|2024-01")

	status, err := fx.service.CheckIn(context.Background(), base.ID, "203.0.113.5")
	assert.NoError(t, err)
	assert.Equal(t, CheckInRecorded, status)

	month := fx.store.months[base.ID+"|2024-01"]
	assert.NotNil(t, month)
	assert.Equal(t, utils.Ptr("203.0.113.5"), month.Days["15"])
	assert.Equal(t, map[string]string{"1": "New Year's Day", "26": "Australia Day"}, month.Holidays)
}

func TestCheckInUserNotFound(t *testing.T) {
	fx := newServiceFixture(t, time.Now())

	_, err := fx.service.CheckIn(context.Background(), "missing", "203.0.113.5")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStats(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	fx := newServiceFixture(t, now)
	fx.feed.holidays = nil // no holidays this year

	base, err := fx.service.Onboard(context.Background(), "UTC", "203.0.113.5")
	assert.NoError(t, err)

	month := fx.store.months[base.ID+"|2024-01"]
	month.Days["8"] = utils.Ptr("203.0.113.5")
	month.Days["9"] = utils.Ptr("203.0.113.5")
	month.Days["15"] = utils.Ptr("203.0.113.6")

	stats, err := fx.service.Stats(context.Background(), base.ID, 2024, 1)
	assert.NoError(t, err)
	assert.Equal(t, 3, stats.Attended)
	assert.Equal(t, 23, stats.EligibleDays)
	assert.InDelta(t, 13.04, stats.Attendance, 0.01)
}

func TestStatsHolidaysReduceEligibleDays(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	fx := newServiceFixture(t, now)

	base, err := fx.service.Onboard(context.Background(), "UTC", "203.0.113.5")
	assert.NoError(t, err)

	// Two global holidays in January leave 21 eligible days.
	stats, err := fx.service.Stats(context.Background(), base.ID, 2024, 1)
	assert.NoError(t, err)
	assert.Equal(t, 21, stats.EligibleDays)
	assert.Zero(t, stats.Attended)
	assert.Zero(t, stats.Attendance)
}

func TestStatsNoEligibleDays(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	fx := newServiceFixture(t, now)

	base, err := fx.service.Onboard(context.Background(), "UTC", "203.0.113.5")
	assert.NoError(t, err)

	month := fx.store.months[base.ID+"|2024-01"]
	month.BusinessDays = 2 // with two holidays every business day is excluded

	stats, err := fx.service.Stats(context.Background(), base.ID, 2024, 1)
	assert.NoError(t, err)
	assert.Zero(t, stats.EligibleDays)
	assert.Zero(t, stats.Attendance)
}

func TestStatsWithoutBase(t *testing.T) {
	fx := newServiceFixture(t, time.Now())

	stats, err := fx.service.Stats(context.Background(), "missing", 2024, 1)
	assert.Nil(t, stats)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
