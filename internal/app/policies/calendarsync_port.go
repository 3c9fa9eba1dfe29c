package policies

import (
	"context"

	"wanderstay/internal/domain/property"
)

// CalendarSyncInspector answers whether a property currently has an
// active external calendar integration. The answer decides whether a new
// booking is CONFIRMED or PENDING_CONFIRMATION, so it must be queried
// fresh on every admission attempt.
type CalendarSyncInspector interface {
	HasActiveSync(ctx context.Context, id property.PropertyID) (bool, error)
}
