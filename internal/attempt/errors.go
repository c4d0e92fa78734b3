package attempt

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both a missing attempt and an attempt owned by
	// someone else, so callers cannot probe for other users' attempts.
	ErrNotFound          = errors.New("attempt not found")
	ErrAlreadySubmitted  = errors.New("attempt already submitted")
	ErrThresholdExceeded = errors.New("violation threshold exceeded")
	ErrUnauthorized      = errors.New("unauthorized")
)

type AdmissionDeniedError struct {
	Reason DeniedReason
}

func (e *AdmissionDeniedError) Error() string {
	return fmt.Sprintf("admission denied: %s", e.Reason)
}

func AsAdmissionDenied(err error) (*AdmissionDeniedError, bool) {
	var denied *AdmissionDeniedError
	if errors.As(err, &denied) {
		return denied, true
	}
	return nil, false
}
