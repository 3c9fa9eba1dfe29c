package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"wanderstay/internal/app/commands"
)

// IdempotentCommand is implemented by commands that want replay
// protection keyed on a caller-supplied idempotency key.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	ResultPrototype() any
}

type IdempotencyRecord struct {
	Key          string
	Payload      []byte
	Error        string
	ErrorPayload []byte
	OccurredAt   time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

// ErrorCodec round-trips typed failures through the store. Without one,
// a replayed failure degrades to a plain string error and callers lose
// the error kind they map responses from.
type ErrorCodec interface {
	EncodeError(err error) ([]byte, bool)
	DecodeError(payload []byte) (error, bool)
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONResultCodec) Decode(data []byte, out any) error {
	return json.Unmarshal(data, out)
}

var errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

// Idempotency replays the stored outcome for a repeated key instead of
// re-running the handler, so a retried booking submit cannot admit twice.
// errCodec may be nil; typed failures then replay as string errors.
func Idempotency(store IdempotencyStore, codec ResultCodec, errCodec ErrorCodec) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok {
				return nextFn(ctx, cmd)
			}
			key := idCmd.IdempotencyKey()
			if key == "" {
				return nextFn(ctx, cmd)
			}
			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found {
				if len(rec.ErrorPayload) > 0 && errCodec != nil {
					if replayed, ok := errCodec.DecodeError(rec.ErrorPayload); ok {
						return nil, replayed
					}
				}
				if rec.Error != "" {
					return nil, errors.New(rec.Error)
				}
				proto := idCmd.ResultPrototype()
				if proto == nil {
					return nil, errMissingPrototype
				}
				if err := codec.Decode(rec.Payload, proto); err != nil {
					return nil, err
				}
				return normalizePrototype(proto), nil
			}
			result, err := nextFn(ctx, cmd)
			record := IdempotencyRecord{
				Key:        key,
				OccurredAt: time.Now().UTC(),
			}
			if err != nil {
				record.Error = err.Error()
				if errCodec != nil {
					if payload, ok := errCodec.EncodeError(err); ok {
						record.ErrorPayload = payload
					}
				}
				if saveErr := store.Save(ctx, record); saveErr != nil {
					return nil, errors.Join(err, saveErr)
				}
				return nil, err
			}
			if result != nil {
				payload, encErr := codec.Encode(result)
				if encErr != nil {
					return nil, encErr
				}
				record.Payload = payload
			}
			// The command already took effect, so a failed record save
			// only costs replay protection, never the result.
			_ = store.Save(ctx, record)
			return result, nil
		})
	}
}

func normalizePrototype(proto any) any {
	rv := reflect.ValueOf(proto)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return rv.Interface()
	}
	return proto
}
