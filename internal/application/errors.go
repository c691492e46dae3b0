package application

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist or is
	// not visible to the caller. Cancellation deliberately reports the same
	// ErrNotFound for a reservation owned by a different user, so existence is
	// never leaked across accounts.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a create collides with a unique field.
	ErrAlreadyExists = errors.New("application: already exists")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// RejectionReason is the closed set of reasons a booking request can fail.
// Every reason is an expected, recoverable outcome reported to the caller;
// none of them indicates an infrastructure problem.
type RejectionReason string

const (
	// ReasonUserNotFound indicates the requesting user does not exist.
	ReasonUserNotFound RejectionReason = "user_not_found"
	// ReasonDeskNotFound indicates the requested desk does not exist.
	ReasonDeskNotFound RejectionReason = "desk_not_found"
	// ReasonPastDate indicates a requested date lies before today.
	ReasonPastDate RejectionReason = "past_date"
	// ReasonTooFarInFuture indicates a requested date lies beyond the booking horizon.
	ReasonTooFarInFuture RejectionReason = "too_far_in_future"
	// ReasonDeskConflict indicates the desk already holds an active reservation
	// on a requested date.
	ReasonDeskConflict RejectionReason = "desk_conflict"
	// ReasonUserConflict indicates the user already holds an active reservation
	// on a requested date.
	ReasonUserConflict RejectionReason = "user_conflict"
	// ReasonExceedsBookingSize indicates the request names too many distinct dates.
	ReasonExceedsBookingSize RejectionReason = "exceeds_booking_size"
	// ReasonExceedsUserLimit indicates the user would exceed the active reservation ceiling.
	ReasonExceedsUserLimit RejectionReason = "exceeds_user_limit"
)

// BookingError is a structured booking rejection carrying a machine readable
// reason and a message precise enough to drive UI copy.
type BookingError struct {
	Reason  RejectionReason
	Message string
}

// Error implements the error interface.
func (e *BookingError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return string(e.Reason)
}

func rejection(reason RejectionReason, message string) *BookingError {
	return &BookingError{Reason: reason, Message: message}
}

// AsBookingError unwraps err into a BookingError when possible.
func AsBookingError(err error) (*BookingError, bool) {
	var bErr *BookingError
	if errors.As(err, &bErr) {
		return bErr, true
	}
	return nil, false
}
