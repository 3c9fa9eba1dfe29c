package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderstay/internal/app/commands"
	"wanderstay/internal/app/middleware"
	domainbooking "wanderstay/internal/domain/booking"
	"wanderstay/internal/domain/property"
	"wanderstay/internal/infra/storage/memory"
)

func TestReplayErrorCodecRoundTripsRejection(t *testing.T) {
	codec := ReplayErrorCodec{}
	original := rejected(&domainbooking.RuleViolation{
		Kind: domainbooking.RangeContainsUnavailable,
		Date: day(2026, 7, 16),
	})

	payload, ok := codec.EncodeError(original)
	require.True(t, ok)

	decoded, ok := codec.DecodeError(payload)
	require.True(t, ok)
	ae, ok := AsAdmissionError(decoded)
	require.True(t, ok)
	assert.Equal(t, KindRejected, ae.Kind)
	require.NotNil(t, ae.Violation)
	assert.Equal(t, domainbooking.RangeContainsUnavailable, ae.Violation.Kind)
	assert.True(t, ae.Violation.Date.Equal(day(2026, 7, 16)))
}

func TestReplayErrorCodecRoundTripsUpstreamFailure(t *testing.T) {
	codec := ReplayErrorCodec{}
	original := upstreamFailure(KindUpstreamTimeout, errors.New("calendar fetch timed out"))

	payload, ok := codec.EncodeError(original)
	require.True(t, ok)

	decoded, ok := codec.DecodeError(payload)
	require.True(t, ok)
	ae, ok := AsAdmissionError(decoded)
	require.True(t, ok)
	assert.Equal(t, KindUpstreamTimeout, ae.Kind)
	assert.Contains(t, decoded.Error(), "calendar fetch timed out")
}

func TestReplayErrorCodecRoundTripsPropertySentinels(t *testing.T) {
	codec := ReplayErrorCodec{}
	for _, sentinel := range []error{property.ErrNotFound, property.ErrNotListed} {
		payload, ok := codec.EncodeError(sentinel)
		require.True(t, ok)
		decoded, ok := codec.DecodeError(payload)
		require.True(t, ok)
		assert.ErrorIs(t, decoded, sentinel)
	}
}

func TestReplayErrorCodecSkipsUnknownErrors(t *testing.T) {
	_, ok := ReplayErrorCodec{}.EncodeError(errors.New("unrelated"))
	assert.False(t, ok)
}

// A rejected admission retried with the same idempotency key must replay
// as the same typed error, not as a flattened string.
func TestAdmitRejectionReplayKeepsTypedError(t *testing.T) {
	fx := newAdmitFixture(t, property.BookingRules{}, stubSync{active: false})
	fx.calendar.BlockDate("prop-1", day(2026, 7, 16), "host block")

	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[AdmitBookingCommand, *AdmitBookingResult](
		bus, AdmitBookingCommand{}.Key(), fx.handler)
	dispatcher := middleware.ChainCommands(bus,
		middleware.Idempotency(memory.NewIdempotencyStore(), nil, ReplayErrorCodec{}))

	cmd := admitCmd("bk-1")
	cmd.IdempotencyKeyV = "retry-1"

	_, err := commands.Dispatch[AdmitBookingCommand, *AdmitBookingResult](context.Background(), dispatcher, cmd)
	ae, ok := AsAdmissionError(err)
	require.True(t, ok)
	assert.Equal(t, KindRejected, ae.Kind)

	_, err = commands.Dispatch[AdmitBookingCommand, *AdmitBookingResult](context.Background(), dispatcher, cmd)
	ae, ok = AsAdmissionError(err)
	require.True(t, ok, "replayed rejection keeps its type")
	assert.Equal(t, KindRejected, ae.Kind)
	require.NotNil(t, ae.Violation)
	assert.Equal(t, domainbooking.RangeContainsUnavailable, ae.Violation.Kind)
}
