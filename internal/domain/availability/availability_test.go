package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildBlockedDatesKeepsOnlyBlockedEntries(t *testing.T) {
	blocked := BuildBlockedDates([]DayAvailability{
		{Date: day(2026, 7, 15), Status: StatusAvailable},
		{Date: day(2026, 7, 16), Status: StatusBlocked},
		{Date: day(2026, 7, 17), Status: StatusBlocked},
		{Date: day(2026, 7, 18), Status: StatusAvailable},
	})

	assert.False(t, blocked.Contains(day(2026, 7, 15)))
	assert.True(t, blocked.Contains(day(2026, 7, 16)))
	assert.True(t, blocked.Contains(day(2026, 7, 17)))
	assert.False(t, blocked.Contains(day(2026, 7, 18)))
	assert.Len(t, blocked.Dates(), 2)
}

func TestBuildBlockedDatesToleratesNilInput(t *testing.T) {
	blocked := BuildBlockedDates(nil)
	assert.NotNil(t, blocked)
	assert.False(t, blocked.Contains(day(2026, 7, 16)))
	assert.Empty(t, blocked.Dates())
}

func TestBlockedDatesNormalizesTimestamps(t *testing.T) {
	blocked := BuildBlockedDates([]DayAvailability{
		{Date: time.Date(2026, 7, 16, 13, 30, 0, 0, time.UTC), Status: StatusBlocked},
	})

	assert.True(t, blocked.Contains(day(2026, 7, 16)))
	assert.True(t, blocked.Contains(time.Date(2026, 7, 16, 23, 59, 0, 0, time.UTC)))
	assert.False(t, blocked.Contains(day(2026, 7, 17)))
}

func TestBlockedDatesAdd(t *testing.T) {
	blocked := make(BlockedDates)
	blocked.Add(time.Date(2026, 7, 16, 9, 0, 0, 0, time.UTC))
	blocked.Add(day(2026, 7, 16))

	assert.Len(t, blocked.Dates(), 1)
	assert.True(t, blocked.Contains(day(2026, 7, 16)))
}
