package booking

import "errors"

var (
	// ErrBookingNotFound is returned when a referenced booking doesn't exist.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrInvalidRange is returned when checkOut is before checkIn.
	ErrInvalidRange = errors.New("invalid booking range: check-out before check-in")
)
