package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderstay/internal/domain/property"
	"wanderstay/internal/domain/shared/daterange"
)

func validParams(t *testing.T) CreateParams {
	t.Helper()
	dr, err := daterange.New(day(2026, 7, 15), day(2026, 7, 18))
	require.NoError(t, err)
	return CreateParams{
		ID:         "bk-1",
		PropertyID: property.PropertyID("prop-1"),
		GuestID:    "guest-1",
		Range:      dr,
		Guests:     2,
		TotalCents: 43500,
		CreatedAt:  time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewRequestStartsRequested(t *testing.T) {
	b, err := NewRequest(validParams(t))
	require.NoError(t, err)
	assert.Equal(t, StatusRequested, b.Status)
	assert.Empty(t, b.PendingEvents())
}

func TestNewRequestValidation(t *testing.T) {
	p := validParams(t)
	p.Guests = 0
	_, err := NewRequest(p)
	assert.ErrorIs(t, err, ErrInvalidGuests)

	p = validParams(t)
	p.GuestID = ""
	_, err = NewRequest(p)
	assert.ErrorIs(t, err, ErrGuestRequired)

	p = validParams(t)
	p.TotalCents = -1
	_, err = NewRequest(p)
	assert.ErrorIs(t, err, ErrNegativeTotal)

	p = validParams(t)
	p.Range = daterange.DateRange{}
	_, err = NewRequest(p)
	assert.ErrorIs(t, err, daterange.ErrMissingDates)
}

func TestAdmitConfirmed(t *testing.T) {
	b, err := NewRequest(validParams(t))
	require.NoError(t, err)

	now := time.Date(2026, 7, 1, 12, 30, 0, 0, time.UTC)
	require.NoError(t, b.AdmitConfirmed(now))
	assert.Equal(t, StatusConfirmed, b.Status)

	events := b.PendingEvents()
	require.Len(t, events, 1)
	ev, ok := events[0].(AdmittedConfirmed)
	require.True(t, ok)
	assert.Equal(t, b.ID, ev.BookingID)
	assert.Equal(t, "booking.confirmed", ev.EventName())
}

func TestAdmitPending(t *testing.T) {
	b, err := NewRequest(validParams(t))
	require.NoError(t, err)

	now := time.Date(2026, 7, 1, 12, 30, 0, 0, time.UTC)
	require.NoError(t, b.AdmitPending(now))
	assert.Equal(t, StatusPendingConfirmation, b.Status)

	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.pending_sync", events[0].EventName())
}

func TestAdmitTwiceFails(t *testing.T) {
	b, err := NewRequest(validParams(t))
	require.NoError(t, err)

	require.NoError(t, b.AdmitConfirmed(time.Now()))
	assert.ErrorIs(t, b.AdmitConfirmed(time.Now()), ErrInvalidState)
	assert.ErrorIs(t, b.AdmitPending(time.Now()), ErrInvalidState)
}
