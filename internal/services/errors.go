package services

import "errors"

// Domain errors surfaced to handlers. Background notification
// delivery never returns these; only synchronous user-initiated
// operations do.
var (
	// ErrInvalidInput is returned when a request carries a missing
	// required field or a value outside an accepted set
	ErrInvalidInput = errors.New("invalid input")

	// ErrCoupleFull is returned when a third user tries to join a couple
	ErrCoupleFull = errors.New("this couple code already has 2 users")

	// ErrInvalidTransition is returned when a lifecycle operation is
	// attempted in the wrong state, e.g. accepting a non-pending date
	ErrInvalidTransition = errors.New("invalid date state transition")

	// ErrNotCoupleMember is returned when a user operates on a record
	// belonging to another couple
	ErrNotCoupleMember = errors.New("user is not a member of this couple")

	// ErrOwnRequest is returned when a user tries to accept or decline
	// their own date request
	ErrOwnRequest = errors.New("cannot respond to your own date request")

	// ErrMoodAlreadyLogged is returned when a user logs a second mood
	// for the same date
	ErrMoodAlreadyLogged = errors.New("mood already logged for this date")
)
