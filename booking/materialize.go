/*
materialize.go - Slice materializer

PURPOSE:
  Owns the refresh cycle for one booking's month slices. Given the old and
  new date ranges captured by the lifecycle layer, refreshes the UNION of
  months touched by both ranges: a booking moved from March to April must
  lose its stale March slice and gain the April one in the same pass.

REFRESH RULES:
  - insert: only the new range is known
  - update: both ranges are known (old first, to purge stale months)
  - delete: only the old range is known; zero rows remain afterwards
  - ineligible source or zero nights: all slices for the booking removed
  - idempotent: refreshing twice with identical ranges rewrites the same
    rows, keyed by (bookingId, yearMonth)
*/
package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// DefaultEligibleSources lists booking sources that get revenue slices.
// Channel-manager imports outside these are display-only.
var DefaultEligibleSources = []string{"private", "airbnb"}

type Materializer struct {
	bookings Store
	slices   SliceStore
	logger   *slog.Logger

	eligible map[string]bool
}

func NewMaterializer(bookings Store, slices SliceStore, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.Default()
	}
	eligible := make(map[string]bool, len(DefaultEligibleSources))
	for _, s := range DefaultEligibleSources {
		eligible[s] = true
	}
	return &Materializer{bookings: bookings, slices: slices, logger: logger, eligible: eligible}
}

// SetEligibleSources overrides the source filter. An empty list means every
// source is sliced.
func (m *Materializer) SetEligibleSources(sources []string) {
	m.eligible = make(map[string]bool, len(sources))
	for _, s := range sources {
		m.eligible[strings.ToLower(s)] = true
	}
}

func (m *Materializer) sourceEligible(source string) bool {
	if len(m.eligible) == 0 {
		return true
	}
	return m.eligible[strings.ToLower(strings.TrimSpace(source))]
}

// RefreshForBooking recomputes the slice rows for one booking. oldRange and
// newRange may each be nil (insert has no old range, delete no new one).
// Returns the number of slice rows written.
func (m *Materializer) RefreshForBooking(ctx context.Context, bookingID int64, oldRange, newRange *DateRange) (int, error) {
	b, err := m.bookings.GetBooking(ctx, bookingID)
	if errors.Is(err, ErrBookingNotFound) {
		// Deleted booking: purge everything it ever materialized.
		if err := m.slices.DeleteForBooking(ctx, bookingID); err != nil {
			return 0, err
		}
		m.logger.Debug("purged slices for deleted booking", "booking_id", bookingID)
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	if !m.sourceEligible(b.Source) {
		if err := m.slices.DeleteForBooking(ctx, bookingID); err != nil {
			return 0, err
		}
		m.logger.Debug("source not eligible, slices removed",
			"booking_id", bookingID, "source", b.Source)
		return 0, nil
	}

	months := unionMonths(oldRange, newRange, b.Range())
	if len(months) == 0 {
		return 0, nil
	}

	fresh := ComputeSlices(b)
	if err := m.slices.ReplaceForMonths(ctx, bookingID, months, fresh); err != nil {
		return 0, err
	}

	m.logger.Debug("refreshed month slices",
		"booking_id", bookingID, "months", len(months), "slices", len(fresh))
	return len(fresh), nil
}

// unionMonths collects the distinct months of every supplied range,
// preserving chronological order within each range.
func unionMonths(oldRange, newRange *DateRange, current DateRange) []string {
	seen := make(map[string]bool)
	var months []string
	add := func(r *DateRange) {
		if r == nil {
			return
		}
		for _, ym := range r.Months() {
			if !seen[ym] {
				seen[ym] = true
				months = append(months, ym)
			}
		}
	}
	add(oldRange)
	add(newRange)
	add(&current)
	return months
}
