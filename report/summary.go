/*
summary.go - Read-side month aggregates

PURPOSE:
  Dashboard queries over the derived tables. Everything here is a pure
  fold over rows the materializer and the recompute engine already wrote;
  nothing is persisted.
*/
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/owners2/property-engine/booking"
	"github.com/owners2/property-engine/ledger"
)

// MonthSummary aggregates one unit's month across all its slices.
type MonthSummary struct {
	UnitID    int64  `json:"unitId"`
	YearMonth string `json:"yearMonth"`

	Bookings       int `json:"bookings"`
	NightsOccupied int `json:"nightsOccupied"`
	NightsInMonth  int `json:"nightsInMonth"`

	// OccupancyPercent is nightsOccupied over the month's night count, 2dp.
	OccupancyPercent decimal.Decimal `json:"occupancyPercent"`

	RoomFee        decimal.Decimal `json:"roomFee"`
	Payout         decimal.Decimal `json:"payout"`
	Tax            decimal.Decimal `json:"tax"`
	CleaningFee    decimal.Decimal `json:"cleaningFee"`
	CommissionBase decimal.Decimal `json:"commissionBase"`
	O2Commission   decimal.Decimal `json:"o2Commission"`
	OwnerPayout    decimal.Decimal `json:"ownerPayout"`
	NetPayout      decimal.Decimal `json:"netPayout"`
}

type SummaryService struct {
	entries ledger.Store
	slices  booking.SliceStore
}

func NewSummaryService(entries ledger.Store, slices booking.SliceStore) *SummaryService {
	return &SummaryService{entries: entries, slices: slices}
}

// MonthSummary folds the unit's slices for one month into occupancy and
// financial totals.
func (s *SummaryService) MonthSummary(ctx context.Context, unitID int64, yearMonth string) (*MonthSummary, error) {
	monthStart, err := time.Parse("2006-01", yearMonth)
	if err != nil {
		return nil, fmt.Errorf("invalid month %q: %w", yearMonth, err)
	}
	slices, err := s.slices.ListForUnitMonth(ctx, unitID, yearMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to load month slices: %w", err)
	}

	sum := &MonthSummary{
		UnitID:        unitID,
		YearMonth:     yearMonth,
		Bookings:      len(slices),
		NightsInMonth: daysInMonth(monthStart),
	}
	for i := range slices {
		sl := &slices[i]
		sum.NightsOccupied += sl.NightsInMonth
		sum.RoomFee = sum.RoomFee.Add(sl.RoomFeeInMonth)
		sum.Payout = sum.Payout.Add(sl.PayoutInMonth)
		sum.Tax = sum.Tax.Add(sl.TaxInMonth)
		sum.CleaningFee = sum.CleaningFee.Add(sl.CleaningFeeInMonth)
		sum.CommissionBase = sum.CommissionBase.Add(sl.CommissionBaseInMonth)
		sum.O2Commission = sum.O2Commission.Add(sl.O2CommissionInMonth)
		sum.OwnerPayout = sum.OwnerPayout.Add(sl.OwnerPayoutInMonth)
		sum.NetPayout = sum.NetPayout.Add(sl.NetPayoutInMonth)
	}
	if sum.NightsInMonth > 0 {
		sum.OccupancyPercent = decimal.NewFromInt(int64(sum.NightsOccupied)).
			Div(decimal.NewFromInt(int64(sum.NightsInMonth))).
			Mul(decimal.NewFromInt(100)).Round(2)
	}
	return sum, nil
}

// ClosingBalance returns the balance_after of the unit's chronologically
// last ledger row, zero for an empty ledger. The walk mirrors the
// recompute engine's ordering, not insertion order.
func (s *SummaryService) ClosingBalance(ctx context.Context, unitID int64) (decimal.Decimal, error) {
	entries, err := s.entries.ListByUnit(ctx, unitID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load ledger: %w", err)
	}
	if len(entries) == 0 {
		return decimal.Zero, nil
	}
	updates := ledger.Replay(entries)
	last := updates[len(updates)-1]
	closing, err := decimal.NewFromString(last.BalanceAfter)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse closing balance %q: %w", last.BalanceAfter, err)
	}
	return closing, nil
}

func daysInMonth(monthStart time.Time) int {
	next := monthStart.AddDate(0, 1, 0)
	return int(next.Sub(monthStart).Hours() / 24)
}
