package pricing

import (
	"errors"
	"fmt"
)

// Kind classifies why a stay request cannot be quoted.
type Kind string

const (
	KindNonPositiveDuration      Kind = "non_positive_duration"
	KindNoApplicableRate         Kind = "no_applicable_rate"
	KindUnknownRoomCategory      Kind = "unknown_room_category"
	KindUnsupportedPaymentMethod Kind = "unsupported_payment_method"
)

// ErrInvalidRequest is matched by every InvalidRequestError through errors.Is.
var ErrInvalidRequest = errors.New("pricing: invalid request")

// InvalidRequestError is a caller error: retrying without changing the input
// yields the same failure.
type InvalidRequestError struct {
	Kind   Kind
	Detail string
}

func (e *InvalidRequestError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("pricing: invalid request (%s)", e.Kind)
	}
	return fmt.Sprintf("pricing: invalid request (%s): %s", e.Kind, e.Detail)
}

func (e *InvalidRequestError) Is(target error) bool {
	return target == ErrInvalidRequest
}

func invalid(kind Kind, format string, args ...any) *InvalidRequestError {
	return &InvalidRequestError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// NewInvalidRequest builds an InvalidRequestError for callers that detect
// request problems before reaching the engine.
func NewInvalidRequest(kind Kind, detail string) *InvalidRequestError {
	return &InvalidRequestError{Kind: kind, Detail: detail}
}

// KindOf extracts the failure kind if err wraps an InvalidRequestError.
func KindOf(err error) (Kind, bool) {
	var ir *InvalidRequestError
	if errors.As(err, &ir) {
		return ir.Kind, true
	}
	return "", false
}
