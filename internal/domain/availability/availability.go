package availability

import (
	"context"
	"time"

	"wanderstay/internal/domain/property"
	"wanderstay/internal/domain/shared/daterange"
)

type DayStatus string

const (
	StatusAvailable DayStatus = "AVAILABLE"
	StatusBlocked   DayStatus = "BLOCKED"
)

// DayAvailability is the per-date status a source reports for a property
// inside a query window. Value type, never persisted by the engine.
type DayAvailability struct {
	Date   time.Time
	Status DayStatus
}

// Source supplies per-date availability for a property over a window.
type Source interface {
	FetchWindow(ctx context.Context, id property.PropertyID, from, to time.Time) ([]DayAvailability, error)
}

// Calendar is a source that also records new blocks, so admitted stays
// show up in later window queries.
type Calendar interface {
	Source
	BlockRange(ctx context.Context, id property.PropertyID, r daterange.DateRange, reference string) error
}

// BlockedDates is a set of calendar dates a property cannot be booked on.
// Keys are midnight-UTC dates. Derived and ephemeral: rebuilt on every
// availability fetch, never cached across requests.
type BlockedDates map[time.Time]struct{}

func (b BlockedDates) Contains(t time.Time) bool {
	_, ok := b[daterange.Midnight(t)]
	return ok
}

func (b BlockedDates) Add(t time.Time) {
	b[daterange.Midnight(t)] = struct{}{}
}

// Dates returns the set members in unspecified order.
func (b BlockedDates) Dates() []time.Time {
	out := make([]time.Time, 0, len(b))
	for d := range b {
		out = append(out, d)
	}
	return out
}

// BuildBlockedDates derives the blocked-date set from a source window.
// A date is in the set iff its entry reported StatusBlocked. Total: any
// input, including nil, yields a usable set.
func BuildBlockedDates(days []DayAvailability) BlockedDates {
	blocked := make(BlockedDates, len(days))
	for _, d := range days {
		if d.Status == StatusBlocked {
			blocked.Add(d.Date)
		}
	}
	return blocked
}
