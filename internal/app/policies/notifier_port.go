package policies

import (
	"context"

	"wanderstay/internal/domain/booking"
)

// Notifier delivers the guest-facing confirmation notice. Callers treat
// it as fire-and-forget: a delivery failure is logged, never propagated
// into the admission result.
type Notifier interface {
	ConfirmationNotice(ctx context.Context, b *booking.Booking) error
}
