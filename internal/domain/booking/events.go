package booking

import (
	"time"

	"wanderstay/internal/domain/property"
	"wanderstay/internal/domain/shared/daterange"
)

type AdmittedConfirmed struct {
	BookingID  BookingID
	PropertyID property.PropertyID
	Range      daterange.DateRange
	At         time.Time
}

func (e AdmittedConfirmed) EventName() string     { return "booking.confirmed" }
func (e AdmittedConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e AdmittedConfirmed) OccurredAt() time.Time { return e.At }

type AdmittedPendingSync struct {
	BookingID  BookingID
	PropertyID property.PropertyID
	Range      daterange.DateRange
	At         time.Time
}

func (e AdmittedPendingSync) EventName() string     { return "booking.pending_sync" }
func (e AdmittedPendingSync) AggregateID() string   { return string(e.BookingID) }
func (e AdmittedPendingSync) OccurredAt() time.Time { return e.At }
