package core

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"rtotrack.dev/rtotrack/core/models"
	"rtotrack.dev/rtotrack/idempotency"
	"rtotrack.dev/rtotrack/utils"
)

// CountrySource lists the countries supported by the holiday feed.
type CountrySource interface {
	AvailableCountries(ctx context.Context) ([]models.Country, error)
}

// HolidaySource fetches the public holidays of one country and year.
type HolidaySource interface {
	PublicHolidays(ctx context.Context, countryCode string, year int) ([]models.PublicHoliday, error)
}

// CountryTable maps country names to feed country codes. It is loaded
// explicitly (at startup and on demand via Reload) rather than at import time.
type CountryTable struct {
	source CountrySource

	mu    sync.RWMutex
	codes map[string]string
}

func NewCountryTable(source CountrySource) *CountryTable {
	return &CountryTable{source: source, codes: map[string]string{}}
}

// Reload replaces the table with a fresh copy of the feed's country list.
func (t *CountryTable) Reload(ctx context.Context) error {
	countries, err := t.source.AvailableCountries(ctx)
	if err != nil {
		return fmt.Errorf("failed to load country list: %w", err)
	}

	codes := make(map[string]string, len(countries))
	for _, c := range countries {
		codes[c.Name] = c.CountryCode
	}

	t.mu.Lock()
	t.codes = codes
	t.mu.Unlock()
	return nil
}

// Code resolves a country name to its feed code. The match is exact.
func (t *CountryTable) Code(name string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	code, ok := t.codes[name]
	return code, ok
}

// HolidayEnricher merges the external holiday feed into tracker records.
// Feed results are memoized per (country, year) through the idempotency cache
// so that concurrent onboardings hit the feed at most once per key.
type HolidayEnricher struct {
	source    HolidaySource
	countries *CountryTable
	cache     *idempotency.Cache
}

func NewHolidayEnricher(source HolidaySource, countries *CountryTable, cache *idempotency.Cache) *HolidayEnricher {
	return &HolidayEnricher{source: source, countries: countries, cache: cache}
}

// FetchHolidays returns the holiday set for a country name and year, keyed by
// ISO date.
func (e *HolidayEnricher) FetchHolidays(ctx context.Context, country string, year int) (map[string]models.HolidayEntry, error) {
	code, ok := e.countries.Code(country)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCountry, country)
	}

	key := fmt.Sprintf("holidays|%s|%d", code, year)
	value, err := e.cache.Do(key, func() (any, error) {
		feed, err := e.source.PublicHolidays(ctx, code, year)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch holidays for %s/%d: %w", code, year, err)
		}

		holidays := make(map[string]models.HolidayEntry, len(feed))
		for _, h := range feed {
			holidays[h.Date] = models.HolidayEntry{
				Name:     h.LocalName,
				IsGlobal: h.Global,
				Counties: h.Counties,
			}
		}
		return holidays, nil
	})
	if err != nil {
		return nil, err
	}

	// Callers own the returned map; the cached copy must stay untouched.
	cached := value.(map[string]models.HolidayEntry)
	holidays := make(map[string]models.HolidayEntry, len(cached))
	for date, entry := range cached {
		holidays[date] = entry
	}
	return holidays, nil
}

// FilterMonthHolidays selects the entries of a stored holiday set that fall in
// (year, month) and apply to the given county: either the holiday is global or
// the county appears in its counties list. Out-of-scope entries are dropped
// silently. The result is keyed by day-of-month.
func FilterMonthHolidays(holidays map[string]models.HolidayEntry, year, month int, county string) map[string]string {
	selected := map[string]string{}

	for date, entry := range holidays {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			continue
		}
		if d.Year() != year || int(d.Month()) != month {
			continue
		}
		if !entry.IsGlobal && !utils.Contains(entry.Counties, county) {
			continue
		}
		selected[strconv.Itoa(d.Day())] = entry.Name
	}

	return selected
}
