package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owners2/property-engine/booking"
	"github.com/owners2/property-engine/ledger"
	"github.com/owners2/property-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func sliceFor(bookingID, unitID int64, yearMonth string, nights int, ownerPayout string) booking.MonthSlice {
	start, _ := time.Parse("2006-01", yearMonth)
	return booking.MonthSlice{
		BookingID:          bookingID,
		UnitID:             unitID,
		YearMonth:          yearMonth,
		MonthStartDate:     start,
		MonthEndDate:       start.AddDate(0, 1, -1),
		NightsTotal:        nights,
		NightsInMonth:      nights,
		ProrateFactor:      decimal.NewFromInt(1),
		OwnerPayoutInMonth: dec(ownerPayout),
	}
}

// =============================================================================
// LEDGER STORE
// =============================================================================

func TestLedgerEntry_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	e := &ledger.Entry{
		UnitID:        5,
		TxnDate:       day(2025, 3, 14),
		YearMonth:     "2025-03",
		EntryType:     ledger.EntryPaymentFromClient,
		Amount:        dec("120.50"),
		PaymentMethod: "transfer",
		Reference:     "INV-0042",
		Note:          "march receipt",
		CreatedAt:     day(2025, 3, 14),
		CreatedBy:     "tester",
	}
	require.NoError(t, store.Insert(ctx, e))
	require.NotZero(t, e.ID)

	got, err := store.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.UnitID, got.UnitID)
	assert.True(t, got.TxnDate.Equal(e.TxnDate))
	assert.True(t, got.Date.IsZero(), "legacy date column stays null")
	assert.Equal(t, "2025-03", got.YearMonth)
	assert.Equal(t, ledger.EntryPaymentFromClient, got.EntryType)
	assert.Equal(t, "120.50", got.Amount.StringFixed(2))
	assert.Equal(t, "transfer", got.PaymentMethod)
	assert.Equal(t, "INV-0042", got.Reference)
	assert.Equal(t, "march receipt", got.Note)
	assert.Equal(t, "tester", got.CreatedBy)
}

func TestLedgerEntry_MissingRowSentinels(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Get(ctx, 404)
	assert.ErrorIs(t, err, ledger.ErrEntryNotFound)

	err = store.Update(ctx, &ledger.Entry{ID: 404, Amount: dec("1.00")})
	assert.ErrorIs(t, err, ledger.ErrEntryNotFound)

	err = store.Delete(ctx, 404)
	assert.ErrorIs(t, err, ledger.ErrEntryNotFound)
}

func TestUpdateBalances_RewritesDerivedColumns(t *testing.T) {
	// GIVEN: a stored entry with a stale balance and period
	// WHEN: a recompute result is applied
	// THEN: balance_after and yearmonth carry the recomputed values

	ctx := context.Background()
	store := newTestStore(t)

	e := &ledger.Entry{
		UnitID:    5,
		TxnDate:   day(2025, 3, 14),
		YearMonth: "1999-01",
		EntryType: ledger.EntryAdjustment,
		Amount:    dec("75.00"),
		CreatedAt: day(2025, 3, 14),
		CreatedBy: "tester",
	}
	require.NoError(t, store.Insert(ctx, e))

	require.NoError(t, store.UpdateBalances(ctx, e.UnitID, []ledger.BalanceUpdate{
		{EntryID: e.ID, BalanceAfter: "75.00", YearMonth: "2025-03"},
	}))

	got, err := store.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "75.00", got.BalanceAfter.StringFixed(2))
	assert.Equal(t, "2025-03", got.YearMonth)
}

// =============================================================================
// BOOKING STORE
// =============================================================================

func TestBooking_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	b := &booking.Booking{
		UnitID:            9,
		CheckIn:           day(2025, 6, 1),
		CheckOut:          day(2025, 6, 8),
		RoomFee:           dec("840.00"),
		Payout:            dec("800.00"),
		TaxAmount:         dec("84.00"),
		CleaningFee:       dec("60.00"),
		CommissionBase:    dec("780.00"),
		O2Commission:      dec("156.00"),
		OwnerPayout:       dec("644.00"),
		NetPayout:         dec("624.00"),
		CommissionPercent: dec("20"),
		City:              "valencia",
		Source:            "airbnb",
		PaymentMethod:     "card",
		GuestType:         "family",
		GuestName:         "B. Guest",
		Status:            "confirmed",
		CreatedAt:         day(2025, 5, 1),
		UpdatedAt:         day(2025, 5, 1),
	}
	require.NoError(t, store.InsertBooking(ctx, b))
	require.NotZero(t, b.ID)

	got, err := store.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.CheckIn.Equal(b.CheckIn))
	assert.True(t, got.CheckOut.Equal(b.CheckOut))
	assert.Equal(t, "840.00", got.RoomFee.StringFixed(2))
	assert.Equal(t, "644.00", got.OwnerPayout.StringFixed(2))
	assert.Equal(t, "valencia", got.City)
	assert.Equal(t, "B. Guest", got.GuestName)
	assert.Equal(t, "confirmed", got.Status)
}

func TestBooking_MissingRowSentinels(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.GetBooking(ctx, 404)
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)

	err = store.UpdateBooking(ctx, &booking.Booking{ID: 404})
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)

	err = store.DeleteBooking(ctx, 404)
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)
}

func TestListBookingsByUnit_FiltersUnit(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	mine := &booking.Booking{UnitID: 1, CheckIn: day(2025, 6, 1), CheckOut: day(2025, 6, 3)}
	other := &booking.Booking{UnitID: 2, CheckIn: day(2025, 6, 1), CheckOut: day(2025, 6, 3)}
	require.NoError(t, store.InsertBooking(ctx, mine))
	require.NoError(t, store.InsertBooking(ctx, other))

	got, err := store.ListBookingsByUnit(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mine.ID, got[0].ID)
}

// =============================================================================
// SLICE STORE
// =============================================================================

func TestReplaceForMonths_WholesalePerMonth(t *testing.T) {
	// GIVEN: slices in January and February for one booking
	// WHEN: replacing January and February with a February-only row
	// THEN: January is purged, February holds exactly the new row

	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.ReplaceForMonths(ctx, 1, []string{"2025-01", "2025-02"},
		[]booking.MonthSlice{
			sliceFor(1, 7, "2025-01", 4, "100.00"),
			sliceFor(1, 7, "2025-02", 2, "50.00"),
		}))

	require.NoError(t, store.ReplaceForMonths(ctx, 1, []string{"2025-01", "2025-02"},
		[]booking.MonthSlice{
			sliceFor(1, 7, "2025-02", 6, "150.00"),
		}))

	slices, err := store.ListForBooking(ctx, 1)
	require.NoError(t, err)
	require.Len(t, slices, 1)
	assert.Equal(t, "2025-02", slices[0].YearMonth)
	assert.Equal(t, 6, slices[0].NightsInMonth)
	assert.Equal(t, "150.00", slices[0].OwnerPayoutInMonth.StringFixed(2))
}

func TestReplaceForMonths_LeavesOtherBookingsAlone(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.ReplaceForMonths(ctx, 1, []string{"2025-01"},
		[]booking.MonthSlice{sliceFor(1, 7, "2025-01", 4, "100.00")}))
	require.NoError(t, store.ReplaceForMonths(ctx, 2, []string{"2025-01"},
		[]booking.MonthSlice{sliceFor(2, 7, "2025-01", 3, "90.00")}))

	require.NoError(t, store.ReplaceForMonths(ctx, 1, []string{"2025-01"}, nil))

	month, err := store.ListForUnitMonth(ctx, 7, "2025-01")
	require.NoError(t, err)
	require.Len(t, month, 1)
	assert.Equal(t, int64(2), month[0].BookingID)
}

func TestDeleteForBooking_RemovesEverything(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.ReplaceForMonths(ctx, 1, []string{"2025-01", "2025-02"},
		[]booking.MonthSlice{
			sliceFor(1, 7, "2025-01", 4, "100.00"),
			sliceFor(1, 7, "2025-02", 2, "50.00"),
		}))

	require.NoError(t, store.DeleteForBooking(ctx, 1))

	slices, err := store.ListForBooking(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, slices)
}

// =============================================================================
// UNIT ENUMERATION
// =============================================================================

func TestListUnits_UnionOfLedgerAndSlices(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Insert(ctx, &ledger.Entry{
		UnitID:    1,
		TxnDate:   day(2025, 1, 1),
		EntryType: ledger.EntryAdjustment,
		Amount:    dec("10.00"),
		CreatedAt: day(2025, 1, 1),
		CreatedBy: "tester",
	}))
	require.NoError(t, store.ReplaceForMonths(ctx, 1, []string{"2025-01"},
		[]booking.MonthSlice{sliceFor(1, 2, "2025-01", 3, "90.00")}))

	units, err := store.ListUnits(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2}, units)
}
