package core

import "errors"

var (
	// ErrInvalidCalendarInput is returned for a month outside 1-12 or a year
	// outside the supported range.
	ErrInvalidCalendarInput = errors.New("invalid calendar input")

	// ErrInvalidTimezone rejects onboarding with an unrecognized IANA zone.
	// Nothing is written when it is returned.
	ErrInvalidTimezone = errors.New("invalid timezone")

	// ErrUnknownCountry is returned when a country name is not present in the
	// holiday feed's supported-country table.
	ErrUnknownCountry = errors.New("unknown country")

	// ErrGeolocationUnavailable wraps any failure of the external IP lookup.
	// The core never retries; retry policy belongs to the transport.
	ErrGeolocationUnavailable = errors.New("geolocation unavailable")

	// ErrUserNotFound means no BaseRecord exists for the given id.
	ErrUserNotFound = errors.New("user not found")

	// ErrRecordNotFound means the requested row does not exist.
	ErrRecordNotFound = errors.New("record not found")
)
