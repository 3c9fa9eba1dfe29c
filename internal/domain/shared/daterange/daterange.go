package daterange

import (
	"errors"
	"time"
)

var (
	ErrMissingDates = errors.New("daterange: both checkin and checkout are required")
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
)

const day = 24 * time.Hour

// DateRange represents a half-open stay interval [checkIn, checkOut).
// The checkout date is the departure day and stays open for the next
// guest's arrival.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: checkIn.UTC(), CheckOut: checkOut.UTC()}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.CheckIn.IsZero() || dr.CheckOut.IsZero() {
		return ErrMissingDates
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// Nights counts whole nights in the range, rounding partial days up so a
// drifted timestamp never undercounts a stay.
func (dr DateRange) Nights() int {
	diff := dr.CheckOut.Sub(dr.CheckIn)
	nights := int(diff / day)
	if diff%day != 0 {
		nights++
	}
	return nights
}

// StayDates yields every occupied night of the range: checkIn's date up
// to but excluding checkOut's date, normalized to midnight UTC. The
// departure date never appears even when timestamps carry a time of day.
func (dr DateRange) StayDates() []time.Time {
	var dates []time.Time
	end := Midnight(dr.CheckOut)
	for d := Midnight(dr.CheckIn); d.Before(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = t.UTC()
	return (t.Equal(dr.CheckIn) || t.After(dr.CheckIn)) && t.Before(dr.CheckOut)
}

// Midnight truncates a timestamp to its calendar date in UTC.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EarliestCheckIn returns the first date a guest may check in given a
// lead-time requirement in calendar days. Zero lead time means today.
func EarliestCheckIn(today time.Time, leadTimeDays int) time.Time {
	base := Midnight(today)
	if leadTimeDays <= 0 {
		return base
	}
	return base.AddDate(0, 0, leadTimeDays)
}

// SameDate reports whether two timestamps fall on the same calendar date in UTC.
func SameDate(a, b time.Time) bool {
	return Midnight(a).Equal(Midnight(b))
}
