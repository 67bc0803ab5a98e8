package booking

import "context"

// =============================================================================
// STORES - Persistence interfaces
// =============================================================================

// Store is the booking persistence interface. Method names carry the
// entity because the SQLite and Postgres stores implement this alongside
// ledger.Store on one type.
type Store interface {
	// InsertBooking persists a new booking and assigns its ID.
	InsertBooking(ctx context.Context, b *Booking) error

	// UpdateBooking rewrites an existing booking.
	UpdateBooking(ctx context.Context, b *Booking) error

	// DeleteBooking removes a booking. Returns ErrBookingNotFound if absent.
	DeleteBooking(ctx context.Context, id int64) error

	// GetBooking loads a booking by ID.
	GetBooking(ctx context.Context, id int64) (*Booking, error)

	// ListBookingsByUnit returns all bookings for a unit.
	ListBookingsByUnit(ctx context.Context, unitID int64) ([]Booking, error)
}

type SliceStore interface {
	// ReplaceForMonths deletes the booking's slices for the given months and
	// inserts the fresh ones, atomically. Wholesale replacement: all
	// prorated fields are jointly derived, so rows are never patched.
	ReplaceForMonths(ctx context.Context, bookingID int64, months []string, slices []MonthSlice) error

	// DeleteForBooking removes every slice of a booking.
	DeleteForBooking(ctx context.Context, bookingID int64) error

	// ListForBooking returns a booking's slices ordered by year_month.
	ListForBooking(ctx context.Context, bookingID int64) ([]MonthSlice, error)

	// ListForUnitMonth returns all slices for (unit, YYYY-MM). Read side:
	// occupancy and monthly summaries aggregate over these.
	ListForUnitMonth(ctx context.Context, unitID int64, yearMonth string) ([]MonthSlice, error)
}
