package kafka

import (
	"context"
	"encoding/json"
	"time"

	"wanderstay/internal/app/policies"
	domainbooking "wanderstay/internal/domain/booking"
)

// Notifier publishes confirmation notices to a Kafka topic for the
// notification service to deliver. The admission path treats delivery as
// fire-and-forget, so publish errors stop here.
type Notifier struct {
	Producer *Producer
	Topic    string
}

type confirmationNotice struct {
	BookingID  string    `json:"booking_id"`
	PropertyID string    `json:"property_id"`
	GuestID    string    `json:"guest_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	SentAt     time.Time `json:"sent_at"`
}

func (n *Notifier) ConfirmationNotice(ctx context.Context, b *domainbooking.Booking) error {
	payload, err := json.Marshal(confirmationNotice{
		BookingID:  string(b.ID),
		PropertyID: string(b.PropertyID),
		GuestID:    b.GuestID,
		CheckIn:    b.Range.CheckIn,
		CheckOut:   b.Range.CheckOut,
		SentAt:     time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return n.Producer.Publish(ctx, n.Topic, string(b.ID), payload, map[string]string{
		"content-type": "application/json",
	})
}

var _ policies.Notifier = (*Notifier)(nil)
