package booking

import (
	"encoding/json"
	"errors"
	"time"

	"wanderstay/internal/app/middleware"
	domainbooking "wanderstay/internal/domain/booking"
	"wanderstay/internal/domain/property"
)

// ReplayErrorCodec persists admission failures alongside the idempotency
// record so a retried request replays the same typed error. Only errors
// the HTTP layer maps to a status are encoded; anything else falls back
// to the middleware's string replay.
type ReplayErrorCodec struct{}

var _ middleware.ErrorCodec = ReplayErrorCodec{}

const (
	sentinelPropertyNotFound  = "PROPERTY_NOT_FOUND"
	sentinelPropertyNotListed = "PROPERTY_NOT_LISTED"
)

type replayedError struct {
	Sentinel  string             `json:"sentinel,omitempty"`
	Kind      AdmissionErrorKind `json:"kind,omitempty"`
	Violation *replayedViolation `json:"violation,omitempty"`
	Cause     string             `json:"cause,omitempty"`
}

type replayedViolation struct {
	Kind   domainbooking.ViolationKind `json:"kind"`
	Date   time.Time                   `json:"date,omitempty"`
	Nights int                         `json:"nights,omitempty"`
	Limit  int                         `json:"limit,omitempty"`
}

func (ReplayErrorCodec) EncodeError(err error) ([]byte, bool) {
	var re replayedError
	switch {
	case errors.Is(err, property.ErrNotFound):
		re.Sentinel = sentinelPropertyNotFound
	case errors.Is(err, property.ErrNotListed):
		re.Sentinel = sentinelPropertyNotListed
	default:
		ae, ok := AsAdmissionError(err)
		if !ok {
			return nil, false
		}
		re.Kind = ae.Kind
		if ae.Violation != nil {
			re.Violation = &replayedViolation{
				Kind:   ae.Violation.Kind,
				Date:   ae.Violation.Date,
				Nights: ae.Violation.Nights,
				Limit:  ae.Violation.Limit,
			}
		}
		if ae.cause != nil {
			re.Cause = ae.cause.Error()
		}
	}
	payload, marshalErr := json.Marshal(re)
	if marshalErr != nil {
		return nil, false
	}
	return payload, true
}

func (ReplayErrorCodec) DecodeError(payload []byte) (error, bool) {
	var re replayedError
	if err := json.Unmarshal(payload, &re); err != nil {
		return nil, false
	}
	switch re.Sentinel {
	case sentinelPropertyNotFound:
		return property.ErrNotFound, true
	case sentinelPropertyNotListed:
		return property.ErrNotListed, true
	}
	if re.Kind == "" {
		return nil, false
	}
	ae := &AdmissionError{Kind: re.Kind}
	if re.Violation != nil {
		ae.Violation = &domainbooking.RuleViolation{
			Kind:   re.Violation.Kind,
			Date:   re.Violation.Date,
			Nights: re.Violation.Nights,
			Limit:  re.Violation.Limit,
		}
	}
	if re.Cause != "" {
		ae.cause = errors.New(re.Cause)
	}
	return ae, true
}
