package memory

import (
	"context"
	"sync"
	"time"

	domainavailability "wanderstay/internal/domain/availability"
	domainproperty "wanderstay/internal/domain/property"
	"wanderstay/internal/domain/shared/daterange"
)

// AvailabilityCalendar keeps per-property blocked dates in memory and
// serves window queries over them.
type AvailabilityCalendar struct {
	mu      sync.RWMutex
	blocked map[domainproperty.PropertyID]map[time.Time]string
}

func NewAvailabilityCalendar() *AvailabilityCalendar {
	return &AvailabilityCalendar{
		blocked: make(map[domainproperty.PropertyID]map[time.Time]string),
	}
}

// FetchWindow reports one entry per date in [from, to] inclusive; the
// checkout day of a stay is never blocked by that stay.
func (c *AvailabilityCalendar) FetchWindow(ctx context.Context, id domainproperty.PropertyID, from, to time.Time) ([]domainavailability.DayAvailability, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	set := c.blocked[id]
	var days []domainavailability.DayAvailability
	for d := daterange.Midnight(from); !d.After(daterange.Midnight(to)); d = d.AddDate(0, 0, 1) {
		status := domainavailability.StatusAvailable
		if _, ok := set[d]; ok {
			status = domainavailability.StatusBlocked
		}
		days = append(days, domainavailability.DayAvailability{Date: d, Status: status})
	}
	return days, nil
}

func (c *AvailabilityCalendar) BlockRange(ctx context.Context, id domainproperty.PropertyID, r daterange.DateRange, reference string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.blocked[id]
	if !ok {
		set = make(map[time.Time]string)
		c.blocked[id] = set
	}
	for _, d := range r.StayDates() {
		set[d] = reference
	}
	return nil
}

// BlockDate marks a single date unavailable, e.g. a host block.
func (c *AvailabilityCalendar) BlockDate(id domainproperty.PropertyID, date time.Time, reference string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.blocked[id]
	if !ok {
		set = make(map[time.Time]string)
		c.blocked[id] = set
	}
	set[daterange.Midnight(date)] = reference
}

var _ domainavailability.Calendar = (*AvailabilityCalendar)(nil)
