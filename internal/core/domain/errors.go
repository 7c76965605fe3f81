package domain

import (
	"errors"
	"fmt"
)

// Reader errors.
var (
	ErrMalformedFrame  = errors.New("malformed frame")
	ErrTransportClosed = errors.New("reader transport closed")
	ErrScanTimeout     = errors.New("no chip scanned before timeout")
	ErrSubmitDisabled  = errors.New("reader does not accept submitted scans")
)

// Resolution errors.
var (
	ErrChipNotFound = errors.New("chip not assigned")
	ErrChipInactive = errors.New("chip deactivated")
	ErrInvalidChip  = errors.New("invalid chip id")
)

// HR platform errors.
var (
	ErrAuthenticationFailed = errors.New("hr platform authentication failed")
	ErrInvalidAction        = errors.New("invalid booking action")
	ErrMissingPersonnel     = errors.New("personnel number is required")
	ErrBookingFailed        = errors.New("booking rejected by hr platform")
	ErrRemoteUnreachable    = errors.New("hr platform unreachable")
	ErrTimeout              = errors.New("hr platform timed out")
	ErrDuplicateBooking     = errors.New("booking already submitted")
	ErrLookupFailed         = errors.New("hr platform person lookup failed")
)

// Operator errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOperatorNotFound   = errors.New("operator not found")
	ErrOperatorExists     = errors.New("operator already exists")
	ErrForbidden          = errors.New("access forbidden")
)

// BookingError describes a booking attempt the HR platform did not accept.
// StatusCode is zero when no response was received.
type BookingError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *BookingError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%v: %v", ErrBookingFailed, e.Err)
	}
	if e.Body == "" {
		return fmt.Sprintf("%v: status %d", ErrBookingFailed, e.StatusCode)
	}
	return fmt.Sprintf("%v: status %d: %s", ErrBookingFailed, e.StatusCode, e.Body)
}

// Is makes every BookingError match ErrBookingFailed.
func (e *BookingError) Is(target error) bool {
	return target == ErrBookingFailed
}

func (e *BookingError) Unwrap() error {
	return e.Err
}
