package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a unique constraint other than the active
	// reservation indexes is violated, such as a reused ID or email address.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned when a CHECK constraint rejects a write.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKeyViolation is returned when a write references a missing record.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
	// ErrDeskConflict is returned when the active-reservation index on
	// (desk, day) rejects an insert. It is the last-resort detector for two
	// concurrent bookings of the same desk and date.
	ErrDeskConflict = errors.New("persistence: desk already reserved for date")
	// ErrUserConflict is returned when the active-reservation index on
	// (user, day) rejects an insert.
	ErrUserConflict = errors.New("persistence: user already reserved for date")
)
