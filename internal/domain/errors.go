package domain

import "errors"

// Every failure reported by the core wraps one of these sentinels, so callers
// can branch with errors.Is while still getting a readable message.
var (
	// ErrNotFound is returned when the requested entity does not exist or is
	// soft-deleted. Handlers should map this to HTTP 404.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned on id collisions and on attempts to register a
	// second active flight with the same number and departure date.
	// Handlers should map this to HTTP 409.
	ErrDuplicate = errors.New("duplicate")

	// ErrInvalidInput is returned for nil or malformed arguments.
	// Handlers should map this to HTTP 400.
	ErrInvalidInput = errors.New("invalid input")

	// ErrFlightFull is returned by AddBooking when the flight has no free
	// passenger slots left.
	ErrFlightFull = errors.New("flight is fully booked")

	// ErrBookingCompleted is returned when a cancel or rebook is attempted
	// after the flight's departure date has passed.
	ErrBookingCompleted = errors.New("booking already completed")
)
