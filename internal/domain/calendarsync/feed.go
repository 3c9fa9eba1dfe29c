package calendarsync

import (
	"context"
	"errors"
	"time"

	"wanderstay/internal/domain/property"
)

var ErrFeedNotFound = errors.New("calendarsync: feed not found")

type FeedID string

type SyncStatus string

const (
	SyncPending SyncStatus = "PENDING"
	SyncSuccess SyncStatus = "SUCCESS"
	SyncError   SyncStatus = "ERROR"
)

// Feed is an external calendar subscription (e.g. an iCal export from
// another marketplace) attached to a property. While at least one
// enabled, non-deleted feed exists, new bookings are admitted
// provisionally until the feed reconciles.
type Feed struct {
	ID         FeedID
	PropertyID property.PropertyID
	URL        string
	Enabled    bool
	Status     SyncStatus
	LastSyncAt time.Time
	LastError  string
	CreatedAt  time.Time
	DeletedAt  *time.Time
}

func (f Feed) Active() bool {
	return f.Enabled && f.DeletedAt == nil
}

type Repository interface {
	ByProperty(ctx context.Context, id property.PropertyID) ([]Feed, error)
	Save(ctx context.Context, feed Feed) error
	// HasActive reports whether the property carries at least one
	// enabled, non-deleted feed. Admission reads this fresh on every
	// attempt; a cached answer would misclassify booking status.
	HasActive(ctx context.Context, id property.PropertyID) (bool, error)
}
