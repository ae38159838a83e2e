package core

import (
	"context"

	"rtotrack.dev/rtotrack/core/models"
)

// TrackerStore is the key-value storage contract for tracker rows, keyed by
// (id, month). Get operations return (nil, nil) when no row matches; writes
// are unconditional overwrites (last writer wins). No cross-row transaction
// is provided: the two onboarding writes may partially fail, which readers
// tolerate by lazily recreating the missing month row.
type TrackerStore interface {
	GetBase(ctx context.Context, id string) (*models.BaseRecord, error)
	PutBase(ctx context.Context, record *models.BaseRecord) error
	GetMonth(ctx context.Context, id, month string) (*models.MonthRecord, error)
	PutMonth(ctx context.Context, record *models.MonthRecord) error
}
