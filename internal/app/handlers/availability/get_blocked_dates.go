package availability

import (
	"context"
	"time"

	"wanderstay/internal/app/dto"
	"wanderstay/internal/app/queries"
	domainavailability "wanderstay/internal/domain/availability"
	"wanderstay/internal/domain/property"
	"wanderstay/internal/domain/shared/daterange"
)

const getBlockedDatesKey = "availability.blocked_dates"

// defaultWindowDays bounds an unqualified calendar query.
const defaultWindowDays = 180

type GetBlockedDatesQuery struct {
	PropertyID string
	From       time.Time
	To         time.Time
}

func (q GetBlockedDatesQuery) Key() string { return getBlockedDatesKey }

type GetBlockedDatesHandler struct {
	Source domainavailability.Source
	Now    func() time.Time
}

func (h *GetBlockedDatesHandler) Handle(ctx context.Context, q GetBlockedDatesQuery) (dto.BlockedDates, error) {
	from, to := h.window(q)
	days, err := h.Source.FetchWindow(ctx, property.PropertyID(q.PropertyID), from, to)
	if err != nil {
		return dto.BlockedDates{}, err
	}
	blocked := domainavailability.BuildBlockedDates(days)
	return dto.MapBlockedDates(q.PropertyID, from, to, blocked), nil
}

func (h *GetBlockedDatesHandler) window(q GetBlockedDatesQuery) (time.Time, time.Time) {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	from := q.From
	if from.IsZero() {
		from = daterange.Midnight(now())
	}
	to := q.To
	if to.IsZero() || !to.After(from) {
		to = from.AddDate(0, 0, defaultWindowDays)
	}
	return from.UTC(), to.UTC()
}

var _ queries.Handler[GetBlockedDatesQuery, dto.BlockedDates] = (*GetBlockedDatesHandler)(nil)
