package repository

import "errors"

var (
	// ErrCapacityExceeded is returned when the conditional insert finds the
	// event full (or no longer active) at write time.
	ErrCapacityExceeded = errors.New("event capacity exceeded")

	// ErrDuplicateRegistration is returned when the unique index on
	// (event_id, active_document) rejects an insert.
	ErrDuplicateRegistration = errors.New("duplicate registration for document")

	// ErrAlreadyCheckedIn is returned when a check-in is attempted on a
	// registration whose checked_in flag is already set.
	ErrAlreadyCheckedIn = errors.New("registration already checked in")

	// ErrImmutableEvent is returned when a status change is attempted on a
	// cancelled event.
	ErrImmutableEvent = errors.New("cancelled events are immutable")
)
