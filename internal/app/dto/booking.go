package dto

import (
	"time"

	"wanderstay/internal/domain/booking"
)

type Booking struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	GuestID    string    `json:"guest_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Guests     int       `json:"guests"`
	TotalCents int64     `json:"total_cents"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func MapBooking(b *booking.Booking) Booking {
	if b == nil {
		return Booking{}
	}
	return Booking{
		ID:         string(b.ID),
		PropertyID: string(b.PropertyID),
		GuestID:    b.GuestID,
		CheckIn:    b.Range.CheckIn,
		CheckOut:   b.Range.CheckOut,
		Guests:     b.Guests,
		TotalCents: b.TotalCents,
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt,
	}
}

// ValidationResult is the UI-facing answer to "can these dates be
// booked": ok, or the first failing rule plus its structured context.
type ValidationResult struct {
	OK     bool       `json:"ok"`
	Reason string     `json:"reason,omitempty"`
	Date   *time.Time `json:"date,omitempty"`
	Nights int        `json:"nights,omitempty"`
	Limit  int        `json:"limit,omitempty"`
}

func MapValidation(v *booking.RuleViolation) ValidationResult {
	if v == nil {
		return ValidationResult{OK: true}
	}
	res := ValidationResult{
		Reason: string(v.Kind),
		Nights: v.Nights,
		Limit:  v.Limit,
	}
	if !v.Date.IsZero() {
		d := v.Date
		res.Date = &d
	}
	return res
}
