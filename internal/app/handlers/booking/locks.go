package booking

import (
	"sync"

	"wanderstay/internal/domain/property"
)

// propertyLocks hands out one mutex per property so admission attempts
// for the same property run one at a time. Locks are never removed; the
// map grows with the number of distinct properties seen by this process.
type propertyLocks struct {
	mu    sync.Mutex
	locks map[property.PropertyID]*sync.Mutex
}

// acquire locks the property's mutex and returns the unlock func.
func (p *propertyLocks) acquire(id property.PropertyID) func() {
	p.mu.Lock()
	if p.locks == nil {
		p.locks = make(map[property.PropertyID]*sync.Mutex)
	}
	l, ok := p.locks[id]
	if !ok {
		l = &sync.Mutex{}
		p.locks[id] = l
	}
	p.mu.Unlock()
	l.Lock()
	return l.Unlock
}
