package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderstay/internal/infra/storage/memory"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGetBlockedDatesReturnsSortedDates(t *testing.T) {
	cal := memory.NewAvailabilityCalendar()
	cal.BlockDate("prop-1", day(2026, 7, 20), "host block")
	cal.BlockDate("prop-1", day(2026, 7, 16), "host block")

	h := &GetBlockedDatesHandler{Source: cal}
	res, err := h.Handle(context.Background(), GetBlockedDatesQuery{
		PropertyID: "prop-1",
		From:       day(2026, 7, 15),
		To:         day(2026, 7, 22),
	})
	require.NoError(t, err)

	assert.Equal(t, "prop-1", res.PropertyID)
	require.Len(t, res.Blocked, 2)
	assert.Equal(t, day(2026, 7, 16), res.Blocked[0])
	assert.Equal(t, day(2026, 7, 20), res.Blocked[1])
}

func TestGetBlockedDatesDefaultsWindow(t *testing.T) {
	cal := memory.NewAvailabilityCalendar()
	now := day(2026, 7, 15)

	h := &GetBlockedDatesHandler{Source: cal, Now: func() time.Time { return now }}
	res, err := h.Handle(context.Background(), GetBlockedDatesQuery{PropertyID: "prop-1"})
	require.NoError(t, err)

	assert.Equal(t, now, res.From)
	assert.Equal(t, now.AddDate(0, 0, defaultWindowDays), res.To)
	assert.Empty(t, res.Blocked)
}

func TestGetBlockedDatesIsPure(t *testing.T) {
	cal := memory.NewAvailabilityCalendar()
	cal.BlockDate("prop-1", day(2026, 7, 16), "host block")
	cal.BlockDate("prop-1", day(2026, 7, 17), "host block")

	h := &GetBlockedDatesHandler{Source: cal}
	query := GetBlockedDatesQuery{
		PropertyID: "prop-1",
		From:       day(2026, 7, 15),
		To:         day(2026, 7, 22),
	}

	first, err := h.Handle(context.Background(), query)
	require.NoError(t, err)
	second, err := h.Handle(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGetBlockedDatesIgnoresOtherProperties(t *testing.T) {
	cal := memory.NewAvailabilityCalendar()
	cal.BlockDate("prop-2", day(2026, 7, 16), "host block")

	h := &GetBlockedDatesHandler{Source: cal}
	res, err := h.Handle(context.Background(), GetBlockedDatesQuery{
		PropertyID: "prop-1",
		From:       day(2026, 7, 15),
		To:         day(2026, 7, 22),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Blocked)
}
