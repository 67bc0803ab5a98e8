package booking_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owners2/property-engine/booking"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

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

func stay(checkIn, checkOut time.Time, roomFee string) *booking.Booking {
	return &booking.Booking{
		ID:       1,
		UnitID:   10,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		RoomFee:  dec(roomFee),
		Source:   "airbnb",
	}
}

func sumField(slices []booking.MonthSlice, field func(*booking.MonthSlice) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for i := range slices {
		total = total.Add(field(&slices[i]))
	}
	return total
}

// =============================================================================
// DATE RANGE
// =============================================================================

func TestDateRange_Nights(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		want     int
	}{
		{"one night", day(2025, 1, 1), day(2025, 1, 2), 1},
		{"week", day(2025, 1, 1), day(2025, 1, 8), 7},
		{"zero nights", day(2025, 1, 1), day(2025, 1, 1), 0},
		{"inverted clamps to zero", day(2025, 1, 8), day(2025, 1, 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := booking.DateRange{CheckIn: tt.checkIn, CheckOut: tt.checkOut}
			assert.Equal(t, tt.want, r.Nights())
		})
	}
}

func TestDateRange_Months(t *testing.T) {
	t.Run("single month", func(t *testing.T) {
		r := booking.DateRange{CheckIn: day(2025, 3, 10), CheckOut: day(2025, 3, 15)}
		assert.Equal(t, []string{"2025-03"}, r.Months())
	})

	t.Run("cross month", func(t *testing.T) {
		r := booking.DateRange{CheckIn: day(2025, 1, 28), CheckOut: day(2025, 2, 3)}
		assert.Equal(t, []string{"2025-01", "2025-02"}, r.Months())
	})

	t.Run("cross year", func(t *testing.T) {
		r := booking.DateRange{CheckIn: day(2024, 12, 30), CheckOut: day(2025, 1, 2)}
		assert.Equal(t, []string{"2024-12", "2025-01"}, r.Months())
	})

	t.Run("checkout on the first touches no new month", func(t *testing.T) {
		// Half-open: the checkout day itself is not a night.
		r := booking.DateRange{CheckIn: day(2025, 1, 28), CheckOut: day(2025, 2, 1)}
		assert.Equal(t, []string{"2025-01"}, r.Months())
	})

	t.Run("zero nights yields nothing", func(t *testing.T) {
		r := booking.DateRange{CheckIn: day(2025, 1, 1), CheckOut: day(2025, 1, 1)}
		assert.Nil(t, r.Months())
	})
}

// =============================================================================
// SLICE COMPUTATION
// =============================================================================

func TestComputeSlices_SingleMonthGetsEverything(t *testing.T) {
	b := stay(day(2025, 3, 10), day(2025, 3, 15), "500.00")
	b.Payout = dec("450.00")
	b.OwnerPayout = dec("400.00")

	slices := booking.ComputeSlices(b)

	require.Len(t, slices, 1)
	sl := slices[0]
	assert.Equal(t, "2025-03", sl.YearMonth)
	assert.Equal(t, 5, sl.NightsTotal)
	assert.Equal(t, 5, sl.NightsInMonth)
	assert.True(t, sl.ProrateFactor.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, "500.00", sl.RoomFeeInMonth.StringFixed(2))
	assert.Equal(t, "450.00", sl.PayoutInMonth.StringFixed(2))
	assert.Equal(t, "400.00", sl.OwnerPayoutInMonth.StringFixed(2))
}

func TestComputeSlices_CrossMonthStay(t *testing.T) {
	// GIVEN: a 6-night stay Jan 28 -> Feb 3 with roomFee 700.00
	// WHEN: computing slices
	// THEN: January holds the 4 nights of Jan 28-31, February the 2 nights
	//       of Feb 1-2, and the room fee splits 4/6 + residual

	b := stay(day(2025, 1, 28), day(2025, 2, 3), "700.00")

	slices := booking.ComputeSlices(b)
	require.Len(t, slices, 2)

	jan, feb := slices[0], slices[1]
	assert.Equal(t, "2025-01", jan.YearMonth)
	assert.Equal(t, 4, jan.NightsInMonth)
	assert.Equal(t, 6, jan.NightsTotal)
	assert.Equal(t, "466.67", jan.RoomFeeInMonth.StringFixed(2))

	assert.Equal(t, "2025-02", feb.YearMonth)
	assert.Equal(t, 2, feb.NightsInMonth)
	assert.Equal(t, "233.33", feb.RoomFeeInMonth.StringFixed(2), "last slice absorbs the residual cent")

	assert.Equal(t, 6, jan.NightsInMonth+feb.NightsInMonth, "nights cover the stay exactly")
	total := sumField(slices, func(s *booking.MonthSlice) decimal.Decimal { return s.RoomFeeInMonth })
	assert.Equal(t, "700.00", total.StringFixed(2), "money conserved to the cent")
}

func TestComputeSlices_ResidualGoesToLastSlice(t *testing.T) {
	// GIVEN: a 31-night stay spanning three months with a total that does
	//        not divide evenly
	// WHEN: computing slices
	// THEN: earlier slices round to 2dp and the last slice absorbs the
	//       difference so the column sums exactly

	b := stay(day(2025, 1, 30), day(2025, 3, 2), "100.00")

	slices := booking.ComputeSlices(b)
	require.Len(t, slices, 3)

	assert.Equal(t, 2, slices[0].NightsInMonth)  // Jan 30, 31
	assert.Equal(t, 28, slices[1].NightsInMonth) // all of February
	assert.Equal(t, 1, slices[2].NightsInMonth)  // Mar 1

	assert.Equal(t, "6.45", slices[0].RoomFeeInMonth.StringFixed(2))
	assert.Equal(t, "90.32", slices[1].RoomFeeInMonth.StringFixed(2))
	assert.Equal(t, "3.23", slices[2].RoomFeeInMonth.StringFixed(2))

	total := sumField(slices, func(s *booking.MonthSlice) decimal.Decimal { return s.RoomFeeInMonth })
	assert.Equal(t, "100.00", total.StringFixed(2))
}

func TestComputeSlices_EveryMonetaryFieldConserved(t *testing.T) {
	b := stay(day(2025, 1, 28), day(2025, 2, 3), "700.00")
	b.Payout = dec("633.47")
	b.TaxAmount = dec("66.53")
	b.CleaningFee = dec("85.00")
	b.CommissionBase = dec("615.00")
	b.O2Commission = dec("123.01")
	b.OwnerPayout = dec("510.46")
	b.NetPayout = dec("548.47")

	slices := booking.ComputeSlices(b)
	require.Len(t, slices, 2)

	fields := map[string]struct {
		total string
		field func(*booking.MonthSlice) decimal.Decimal
	}{
		"payout":          {"633.47", func(s *booking.MonthSlice) decimal.Decimal { return s.PayoutInMonth }},
		"tax":             {"66.53", func(s *booking.MonthSlice) decimal.Decimal { return s.TaxInMonth }},
		"cleaning fee":    {"85.00", func(s *booking.MonthSlice) decimal.Decimal { return s.CleaningFeeInMonth }},
		"commission base": {"615.00", func(s *booking.MonthSlice) decimal.Decimal { return s.CommissionBaseInMonth }},
		"o2 commission":   {"123.01", func(s *booking.MonthSlice) decimal.Decimal { return s.O2CommissionInMonth }},
		"owner payout":    {"510.46", func(s *booking.MonthSlice) decimal.Decimal { return s.OwnerPayoutInMonth }},
		"net payout":      {"548.47", func(s *booking.MonthSlice) decimal.Decimal { return s.NetPayoutInMonth }},
	}
	for name, f := range fields {
		assert.Equal(t, f.total, sumField(slices, f.field).StringFixed(2), name)
	}
}

func TestComputeSlices_ZeroNightsProducesNoSlices(t *testing.T) {
	b := stay(day(2025, 1, 10), day(2025, 1, 10), "100.00")
	assert.Nil(t, booking.ComputeSlices(b))
}

func TestComputeSlices_CopiesBookingAttributes(t *testing.T) {
	b := stay(day(2025, 5, 1), day(2025, 5, 3), "200.00")
	b.City = "valencia"
	b.Source = "private"
	b.PaymentMethod = "bank_transfer"
	b.GuestType = "tourist"

	slices := booking.ComputeSlices(b)
	require.Len(t, slices, 1)
	assert.Equal(t, "valencia", slices[0].City)
	assert.Equal(t, "private", slices[0].Source)
	assert.Equal(t, "bank_transfer", slices[0].PaymentMethod)
	assert.Equal(t, "tourist", slices[0].GuestType)
}
