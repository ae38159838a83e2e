package core

import (
	"context"
	"fmt"

	"rtotrack.dev/rtotrack/core/models"
	"rtotrack.dev/rtotrack/idempotency"
)

// GeoLookup resolves a source IP to a coarse location.
type GeoLookup interface {
	Lookup(ctx context.Context, ip string) (models.Location, error)
}

// GeoResolver fronts the external lookup with the idempotency cache: repeated
// resolutions of the same IP within the TTL reuse the first result, and
// concurrent resolutions trigger at most one outbound call per IP.
type GeoResolver struct {
	lookup GeoLookup
	cache  *idempotency.Cache
}

func NewGeoResolver(lookup GeoLookup, cache *idempotency.Cache) *GeoResolver {
	return &GeoResolver{lookup: lookup, cache: cache}
}

// Resolve returns the location of ip. Lookup failures surface as
// ErrGeolocationUnavailable and are never retried here.
func (r *GeoResolver) Resolve(ctx context.Context, ip string) (models.Location, error) {
	value, err := r.cache.Do("geo|"+ip, func() (any, error) {
		location, err := r.lookup.Lookup(ctx, ip)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGeolocationUnavailable, err)
		}
		return location, nil
	})
	if err != nil {
		return models.Location{}, err
	}

	return value.(models.Location), nil
}
