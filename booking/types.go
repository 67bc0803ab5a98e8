/*
Package booking materializes per-calendar-month revenue slices from
reservations.

PURPOSE:
  A booking may span a month boundary. Occupancy and financial reporting
  work month by month, so each booking is decomposed into one row per
  calendar month it overlaps, with nights and every monetary field prorated
  by nights-in-month. The slice table is derived state: it is replaced
  wholesale whenever the owning booking changes and is never edited
  independently.

KEY CONCEPTS IN THIS FILE (types.go):
  - Booking: the external source entity (read-only for this package)
  - DateRange: half-open [checkIn, checkOut) stay interval
  - MonthSlice: one (booking, calendar month) row of booking_month_slice

SEE ALSO:
  - prorate.go: month enumeration and proration with residual correction
  - materialize.go: delete-stale + recompute + upsert refresh cycle
*/
package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BOOKING - Source entity
// =============================================================================

type Booking struct {
	ID     int64
	UnitID int64

	CheckIn  time.Time // inclusive
	CheckOut time.Time // exclusive

	// Booking-level money. Each gets a prorated *_in_month counterpart.
	RoomFee        decimal.Decimal
	Payout         decimal.Decimal
	TaxAmount      decimal.Decimal
	CleaningFee    decimal.Decimal
	CommissionBase decimal.Decimal
	O2Commission   decimal.Decimal // commission_value on the source row
	OwnerPayout    decimal.Decimal // client_income on the source row
	NetPayout      decimal.Decimal

	CommissionPercent decimal.Decimal

	City          string
	Source        string // Airbnb / Private / ...
	PaymentMethod string
	GuestType     string
	GuestName     string
	Status        string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Range returns the booking's current stay interval.
func (b *Booking) Range() DateRange {
	return DateRange{CheckIn: b.CheckIn, CheckOut: b.CheckOut}
}

// Nights returns the booking's total night count.
func (b *Booking) Nights() int {
	return b.Range().Nights()
}

// =============================================================================
// DATE RANGE - Half-open stay interval
// =============================================================================

type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func (r DateRange) Nights() int {
	in := dateOnly(r.CheckIn)
	out := dateOnly(r.CheckOut)
	n := int(out.Sub(in).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}

// Months returns every YYYY-MM the interval overlaps. A zero-night range
// yields nothing; the checkout day itself belongs to no month (half-open).
func (r DateRange) Months() []string {
	if r.Nights() <= 0 {
		return nil
	}
	var months []string
	cur := firstOfMonth(r.CheckIn)
	lastNight := dateOnly(r.CheckOut).AddDate(0, 0, -1)
	end := firstOfMonth(lastNight).AddDate(0, 1, 0)
	for cur.Before(end) {
		months = append(months, cur.Format("2006-01"))
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// MONTH SLICE - one row of booking_month_slice
// =============================================================================

type MonthSlice struct {
	ID        int64
	BookingID int64
	UnitID    int64

	YearMonth      string // YYYY-MM
	MonthStartDate time.Time
	MonthEndDate   time.Time // last day of the month, inclusive

	NightsTotal   int
	NightsInMonth int
	ProrateFactor decimal.Decimal // nightsInMonth / nightsTotal

	RoomFeeInMonth        decimal.Decimal
	PayoutInMonth         decimal.Decimal
	TaxInMonth            decimal.Decimal
	CleaningFeeInMonth    decimal.Decimal
	CommissionBaseInMonth decimal.Decimal
	O2CommissionInMonth   decimal.Decimal
	OwnerPayoutInMonth    decimal.Decimal
	NetPayoutInMonth      decimal.Decimal

	// Copied from the booking for fast filtering on the read side.
	City          string
	Source        string
	PaymentMethod string
	GuestType     string
}
