package memory

import (
	"context"
	"sync"

	domainsync "wanderstay/internal/domain/calendarsync"
	domainproperty "wanderstay/internal/domain/property"
)

// CalendarSyncRepository keeps external calendar feeds in memory.
type CalendarSyncRepository struct {
	mu    sync.RWMutex
	feeds map[domainproperty.PropertyID][]domainsync.Feed
}

func NewCalendarSyncRepository() *CalendarSyncRepository {
	return &CalendarSyncRepository{
		feeds: make(map[domainproperty.PropertyID][]domainsync.Feed),
	}
}

func (r *CalendarSyncRepository) ByProperty(ctx context.Context, id domainproperty.PropertyID) ([]domainsync.Feed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domainsync.Feed(nil), r.feeds[id]...), nil
}

func (r *CalendarSyncRepository) Save(ctx context.Context, feed domainsync.Feed) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.feeds[feed.PropertyID]
	for i, f := range list {
		if f.ID == feed.ID {
			list[i] = feed
			return nil
		}
	}
	r.feeds[feed.PropertyID] = append(list, feed)
	return nil
}

func (r *CalendarSyncRepository) HasActive(ctx context.Context, id domainproperty.PropertyID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.feeds[id] {
		if f.Active() {
			return true, nil
		}
	}
	return false, nil
}

var _ domainsync.Repository = (*CalendarSyncRepository)(nil)
