package booking

import (
	"errors"
	"fmt"

	domainbooking "wanderstay/internal/domain/booking"
)

type AdmissionErrorKind string

const (
	// KindRejected carries a rule violation: an expected user-input
	// outcome, never logged as a failure.
	KindRejected            AdmissionErrorKind = "REJECTED"
	KindUpstreamTimeout     AdmissionErrorKind = "UPSTREAM_TIMEOUT"
	KindUpstreamUnavailable AdmissionErrorKind = "UPSTREAM_UNAVAILABLE"
	KindPersistenceFailure  AdmissionErrorKind = "PERSISTENCE_FAILURE"
)

// AdmissionError is the typed result of a failed admission attempt.
type AdmissionError struct {
	Kind      AdmissionErrorKind
	Violation *domainbooking.RuleViolation
	cause     error
}

func (e *AdmissionError) Error() string {
	if e.Violation != nil {
		return fmt.Sprintf("admission: %s: %s", e.Kind, e.Violation.Error())
	}
	if e.cause != nil {
		return fmt.Sprintf("admission: %s: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("admission: %s", e.Kind)
}

func (e *AdmissionError) Unwrap() error {
	if e.Violation != nil {
		return e.Violation
	}
	return e.cause
}

func rejected(v *domainbooking.RuleViolation) *AdmissionError {
	return &AdmissionError{Kind: KindRejected, Violation: v}
}

func upstreamFailure(kind AdmissionErrorKind, err error) *AdmissionError {
	return &AdmissionError{Kind: kind, cause: err}
}

func persistenceFailure(err error) *AdmissionError {
	return &AdmissionError{Kind: KindPersistenceFailure, cause: err}
}

// AsAdmissionError unwraps an AdmissionError from an error chain.
func AsAdmissionError(err error) (*AdmissionError, bool) {
	var ae *AdmissionError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
