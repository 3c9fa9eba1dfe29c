package booking

import (
	"context"
	"errors"
	"time"

	"wanderstay/internal/domain/property"
	"wanderstay/internal/domain/shared/daterange"
	"wanderstay/internal/domain/shared/events"
)

var (
	ErrInvalidGuests   = errors.New("booking: guests count must be positive")
	ErrGuestRequired   = errors.New("booking: guest id required")
	ErrInvalidState    = errors.New("booking: invalid state transition")
	ErrNegativeTotal   = errors.New("booking: total must be non-negative")
	ErrBookingNotFound = errors.New("booking: not found")
)

type BookingID string

type BookingStatus string

const (
	// StatusRequested is the transient state between validation and
	// persistence; it is never written to storage.
	StatusRequested BookingStatus = "REQUESTED"
	// StatusPendingConfirmation marks a stay admitted on a property with
	// an active external calendar feed: the slot is held until the feed
	// reconciles.
	StatusPendingConfirmation BookingStatus = "PENDING_CONFIRMATION"
	StatusConfirmed           BookingStatus = "CONFIRMED"
)

type Booking struct {
	ID         BookingID
	PropertyID property.PropertyID
	GuestID    string
	Range      daterange.DateRange
	Guests     int
	TotalCents int64
	Status     BookingStatus
	CreatedAt  time.Time
	Version    int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	// Create persists the booking in a single write; a failed create
	// leaves no partial record behind.
	Create(ctx context.Context, b *Booking) error
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)
}

type CreateParams struct {
	ID         BookingID
	PropertyID property.PropertyID
	GuestID    string
	Range      daterange.DateRange
	Guests     int
	TotalCents int64
	CreatedAt  time.Time
}

func NewRequest(params CreateParams) (*Booking, error) {
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if params.GuestID == "" {
		return nil, ErrGuestRequired
	}
	if params.TotalCents < 0 {
		return nil, ErrNegativeTotal
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	return &Booking{
		ID:         params.ID,
		PropertyID: params.PropertyID,
		GuestID:    params.GuestID,
		Range:      params.Range,
		Guests:     params.Guests,
		TotalCents: params.TotalCents,
		Status:     StatusRequested,
		CreatedAt:  params.CreatedAt.UTC(),
	}, nil
}

// AdmitPending moves a request to PENDING_CONFIRMATION: the property has
// an external calendar feed that must reconcile before the slot is
// guaranteed.
func (b *Booking) AdmitPending(now time.Time) error {
	if b.Status != StatusRequested {
		return ErrInvalidState
	}
	b.Status = StatusPendingConfirmation
	b.Record(AdmittedPendingSync{BookingID: b.ID, PropertyID: b.PropertyID, Range: b.Range, At: now.UTC()})
	return nil
}

// AdmitConfirmed moves a request straight to CONFIRMED.
func (b *Booking) AdmitConfirmed(now time.Time) error {
	if b.Status != StatusRequested {
		return ErrInvalidState
	}
	b.Status = StatusConfirmed
	b.Record(AdmittedConfirmed{BookingID: b.ID, PropertyID: b.PropertyID, Range: b.Range, At: now.UTC()})
	return nil
}
