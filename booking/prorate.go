/*
prorate.go - Proration calculator

PURPOSE:
  Pure computation of a booking's month slices. For each overlapped month:

    segmentStart  = max(checkIn, firstDayOf(M))
    segmentEnd    = min(checkOut, firstDayOfNextMonth(M))
    nightsInMonth = segmentEnd - segmentStart in days (clamped at 0)
    prorateFactor = nightsInMonth / nightsTotal

  Every monetary field is booking total * prorateFactor rounded to 2dp,
  except that the LAST slice receives total minus the sum of the earlier
  slices. That residual correction makes the slice sums reproduce the
  booking totals to the cent, regardless of rounding direction.

INVARIANTS:
  - sum(nightsInMonth) == nightsTotal
  - sum(anyMoneyField) == booking total for that field, exactly
  - zero-night bookings produce no slices
*/
package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

// ComputeSlices decomposes a booking into its month slices using the
// booking's current dates. IDs are left zero; the store assigns them.
func ComputeSlices(b *Booking) []MonthSlice {
	r := b.Range()
	nightsTotal := r.Nights()
	if nightsTotal <= 0 {
		return nil
	}

	months := r.Months()
	slices := make([]MonthSlice, 0, len(months))
	checkIn := dateOnly(b.CheckIn)
	checkOut := dateOnly(b.CheckOut)
	total := decimal.NewFromInt(int64(nightsTotal))

	for _, ym := range months {
		monthStart, _ := time.Parse("2006-01", ym)
		nextMonth := monthStart.AddDate(0, 1, 0)

		segStart := maxTime(checkIn, monthStart)
		segEnd := minTime(checkOut, nextMonth)
		nights := int(segEnd.Sub(segStart).Hours() / 24)
		if nights <= 0 {
			continue
		}

		factor := decimal.NewFromInt(int64(nights)).Div(total)
		slices = append(slices, MonthSlice{
			BookingID:      b.ID,
			UnitID:         b.UnitID,
			YearMonth:      ym,
			MonthStartDate: monthStart,
			MonthEndDate:   nextMonth.AddDate(0, 0, -1),
			NightsTotal:    nightsTotal,
			NightsInMonth:  nights,
			ProrateFactor:  factor,
			City:           b.City,
			Source:         b.Source,
			PaymentMethod:  b.PaymentMethod,
			GuestType:      b.GuestType,
		})
	}

	prorateField(slices, b.RoomFee, func(s *MonthSlice) *decimal.Decimal { return &s.RoomFeeInMonth })
	prorateField(slices, b.Payout, func(s *MonthSlice) *decimal.Decimal { return &s.PayoutInMonth })
	prorateField(slices, b.TaxAmount, func(s *MonthSlice) *decimal.Decimal { return &s.TaxInMonth })
	prorateField(slices, b.CleaningFee, func(s *MonthSlice) *decimal.Decimal { return &s.CleaningFeeInMonth })
	prorateField(slices, b.CommissionBase, func(s *MonthSlice) *decimal.Decimal { return &s.CommissionBaseInMonth })
	prorateField(slices, b.O2Commission, func(s *MonthSlice) *decimal.Decimal { return &s.O2CommissionInMonth })
	prorateField(slices, b.OwnerPayout, func(s *MonthSlice) *decimal.Decimal { return &s.OwnerPayoutInMonth })
	prorateField(slices, b.NetPayout, func(s *MonthSlice) *decimal.Decimal { return &s.NetPayoutInMonth })

	return slices
}

// prorateField splits one booking total across the slices. All slices but
// the last get total*factor rounded to 2dp; the last absorbs the residual
// so the column sums to the booking total exactly.
func prorateField(slices []MonthSlice, total decimal.Decimal, field func(*MonthSlice) *decimal.Decimal) {
	if len(slices) == 0 {
		return
	}
	total = total.Round(2)
	allocated := decimal.Zero
	for i := range slices[:len(slices)-1] {
		v := total.Mul(slices[i].ProrateFactor).Round(2)
		*field(&slices[i]) = v
		allocated = allocated.Add(v)
	}
	*field(&slices[len(slices)-1]) = total.Sub(allocated)
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
