package memory

import (
	"context"
	"sync"

	"wanderstay/internal/app/policies"
	domainbooking "wanderstay/internal/domain/booking"
)

// Notifier records confirmation notices instead of delivering them.
type Notifier struct {
	mu       sync.Mutex
	FailWith error
	sent     []domainbooking.BookingID
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) ConfirmationNotice(ctx context.Context, b *domainbooking.Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, b.ID)
	return n.FailWith
}

// Sent returns the booking IDs notified so far.
func (n *Notifier) Sent() []domainbooking.BookingID {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domainbooking.BookingID(nil), n.sent...)
}

var _ policies.Notifier = (*Notifier)(nil)
