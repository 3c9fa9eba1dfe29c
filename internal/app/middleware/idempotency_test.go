package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderstay/internal/app/commands"
)

type echoCommand struct {
	Value string
	key   string
}

func (c echoCommand) Key() string            { return "test.echo" }
func (c echoCommand) IdempotencyKey() string { return c.key }
func (c echoCommand) ResultPrototype() any   { return &echoResult{} }

type echoResult struct {
	Value string `json:"value"`
	Calls int    `json:"calls"`
}

type plainCommand struct{}

func (plainCommand) Key() string { return "test.plain" }

type mapStore struct {
	mu    sync.Mutex
	items map[string]IdempotencyRecord
}

func newMapStore() *mapStore {
	return &mapStore{items: make(map[string]IdempotencyRecord)}
}

func (s *mapStore) Get(ctx context.Context, key string) (IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[key]
	return rec, ok, nil
}

func (s *mapStore) Save(ctx context.Context, rec IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[rec.Key] = rec
	return nil
}

type countingHandler struct {
	calls int
	err   error
}

func (h *countingHandler) Handle(ctx context.Context, cmd echoCommand) (*echoResult, error) {
	h.calls++
	if h.err != nil {
		return nil, h.err
	}
	return &echoResult{Value: cmd.Value, Calls: h.calls}, nil
}

func newTestBus(h *countingHandler, store IdempotencyStore) commands.Bus {
	base := commands.NewInMemoryBus()
	commands.RegisterHandler[echoCommand, *echoResult](base, echoCommand{}.Key(), h)
	return ChainCommands(base, Idempotency(store, nil, nil))
}

type failingSaveStore struct {
	*mapStore
	saveErr error
}

func (s *failingSaveStore) Save(ctx context.Context, rec IdempotencyRecord) error {
	return s.saveErr
}

// kindError stands in for any typed failure a caller maps responses from.
type kindError struct {
	Kind string
}

func (e *kindError) Error() string { return "kind: " + e.Kind }

type kindCodec struct{}

func (kindCodec) EncodeError(err error) ([]byte, bool) {
	var ke *kindError
	if !errors.As(err, &ke) {
		return nil, false
	}
	return []byte(ke.Kind), true
}

func (kindCodec) DecodeError(payload []byte) (error, bool) {
	return &kindError{Kind: string(payload)}, true
}

func TestIdempotencyReplaysStoredResult(t *testing.T) {
	handler := &countingHandler{}
	bus := newTestBus(handler, newMapStore())

	cmd := echoCommand{Value: "hello", key: "key-1"}
	first, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, cmd)
	require.NoError(t, err)
	assert.Equal(t, 1, handler.calls)

	second, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, cmd)
	require.NoError(t, err)
	assert.Equal(t, 1, handler.calls, "handler must not run again for the same key")
	assert.Equal(t, first.Value, second.Value)
	assert.Equal(t, first.Calls, second.Calls)
}

func TestIdempotencyReplaysStoredError(t *testing.T) {
	handler := &countingHandler{err: errors.New("boom")}
	bus := newTestBus(handler, newMapStore())

	cmd := echoCommand{Value: "hello", key: "key-1"}
	_, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, cmd)
	require.Error(t, err)

	handler.err = nil
	_, err = commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, cmd)
	require.Error(t, err, "stored failure replays even after the cause clears")
	assert.Equal(t, 1, handler.calls)
}

func TestIdempotencyReplaysTypedErrorViaCodec(t *testing.T) {
	handler := &countingHandler{err: &kindError{Kind: "REJECTED"}}
	base := commands.NewInMemoryBus()
	commands.RegisterHandler[echoCommand, *echoResult](base, echoCommand{}.Key(), handler)
	bus := ChainCommands(base, Idempotency(newMapStore(), nil, kindCodec{}))

	cmd := echoCommand{Value: "hello", key: "key-1"}
	_, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, cmd)
	var ke *kindError
	require.ErrorAs(t, err, &ke)

	_, err = commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, cmd)
	require.ErrorAs(t, err, &ke, "replayed failure keeps its type")
	assert.Equal(t, "REJECTED", ke.Kind)
	assert.Equal(t, 1, handler.calls)
}

func TestIdempotencySaveFailureJoinsHandlerError(t *testing.T) {
	handlerErr := errors.New("boom")
	saveErr := errors.New("store down")
	handler := &countingHandler{err: handlerErr}
	store := &failingSaveStore{mapStore: newMapStore(), saveErr: saveErr}
	bus := newTestBus(handler, store)

	_, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, echoCommand{Value: "x", key: "key-1"})
	require.ErrorIs(t, err, handlerErr)
	require.ErrorIs(t, err, saveErr)
}

func TestIdempotencySaveFailureKeepsResult(t *testing.T) {
	handler := &countingHandler{}
	store := &failingSaveStore{mapStore: newMapStore(), saveErr: errors.New("store down")}
	bus := newTestBus(handler, store)

	cmd := echoCommand{Value: "hello", key: "key-1"}
	result, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, cmd)
	require.NoError(t, err, "a lost replay record must not fail the command")
	require.NotNil(t, result)
	assert.Equal(t, "hello", result.Value)

	_, err = commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, cmd)
	require.NoError(t, err)
	assert.Equal(t, 2, handler.calls, "without a record the handler runs again")
}

func TestIdempotencyEmptyKeyRunsEveryTime(t *testing.T) {
	handler := &countingHandler{}
	bus := newTestBus(handler, newMapStore())

	cmd := echoCommand{Value: "hello"}
	for i := 0; i < 3; i++ {
		_, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, cmd)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, handler.calls)
}

func TestIdempotencyDistinctKeysRunIndependently(t *testing.T) {
	handler := &countingHandler{}
	bus := newTestBus(handler, newMapStore())

	_, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, echoCommand{Value: "a", key: "key-a"})
	require.NoError(t, err)
	_, err = commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, echoCommand{Value: "b", key: "key-b"})
	require.NoError(t, err)
	assert.Equal(t, 2, handler.calls)
}

func TestIdempotencyPassesThroughPlainCommands(t *testing.T) {
	base := commands.NewInMemoryBus()
	calls := 0
	base.RegisterRaw(plainCommand{}.Key(), func(ctx context.Context, cmd commands.Command) (any, error) {
		calls++
		return nil, nil
	})
	bus := ChainCommands(base, Idempotency(newMapStore(), nil, nil))

	for i := 0; i < 2; i++ {
		_, err := bus.Dispatch(context.Background(), plainCommand{})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}
