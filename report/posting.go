/*
Package report generates the monthly client report checkpoint.

PURPOSE:
  A generated client report closes a unit's month: the opening balance is
  whatever the ledger accumulated up to the report month, the monthly
  result is the client income materialized in the month's slices plus the
  ledger movements dated inside the month, and the closing balance is
  opening + result. The closing balance is then written
  back into the ledger as a REPORT_POSTING row so that later replays start
  from the report instead of the full history.

POSTING SHAPE:
  - entry_type  = REPORT_POSTING
  - amount      = closing balance (the authoritative checkpoint the replay
    resets to)
  - txn_date    = first day of the month AFTER the report month, so the
    checkpoint sorts after every entry it summarizes
  - reference   = "Client Report YYMM"
  - note        = opening and monthly result, for audit

  Regenerating a report replaces the existing posting for the same unit
  and month (matched by reference); it never stacks a second checkpoint.

SEE ALSO:
  - ledger/recompute.go: how the posting behaves during replay
  - booking/materialize.go: where the summed slices come from
*/
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/owners2/property-engine/booking"
	"github.com/owners2/property-engine/ledger"
	"github.com/owners2/property-engine/lifecycle"
)

// Posting is the result snapshot returned after generating a report.
type Posting struct {
	UnitID    int64  `json:"unitId"`
	YearMonth string `json:"yearMonth"` // report month, YYYY-MM

	OpeningBalance decimal.Decimal `json:"openingBalance"`
	MonthlyResult  decimal.Decimal `json:"monthlyResult"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`

	EntryID   int64  `json:"entryId"`
	Reference string `json:"reference"`
	Replaced  bool   `json:"replaced"`
	Skipped   bool   `json:"skipped"` // existing posting kept (replace=false)
}

type PostingService struct {
	entries ledger.Store
	slices  booking.SliceStore
	writer  *lifecycle.LedgerWriter
	logger  *slog.Logger
}

func NewPostingService(entries ledger.Store, slices booking.SliceStore, writer *lifecycle.LedgerWriter, logger *slog.Logger) *PostingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostingService{entries: entries, slices: slices, writer: writer, logger: logger}
}

// Reference returns the deterministic posting reference for a report month,
// "Client Report YYMM".
func Reference(yearMonth string) string {
	if len(yearMonth) != 7 {
		return "Client Report " + yearMonth
	}
	return fmt.Sprintf("Client Report %s%s", yearMonth[2:4], yearMonth[5:7])
}

// Generate computes the unit's month and upserts its REPORT_POSTING row.
// When replace is false and a posting already exists, the existing snapshot
// is returned untouched.
//
// The write goes through the lifecycle ledger writer, so the running
// balances are recomputed the same way as for any other ledger mutation.
func (s *PostingService) Generate(ctx context.Context, unitID int64, yearMonth string, replace bool, createdBy string) (*Posting, error) {
	if unitID == 0 {
		return nil, ledger.ErrUnitRequired
	}
	monthStart, err := time.Parse("2006-01", yearMonth)
	if err != nil {
		return nil, fmt.Errorf("invalid report month %q: %w", yearMonth, err)
	}
	reference := Reference(yearMonth)

	all, err := s.entries.ListByUnit(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger for unit %d: %w", unitID, err)
	}
	existing := findPosting(all, reference)

	opening, err := replayBalanceBefore(all, monthStart, reference)
	if err != nil {
		return nil, err
	}
	throughMonth, err := replayBalanceBefore(all, monthStart.AddDate(0, 1, 0), reference)
	if err != nil {
		return nil, err
	}
	revenue, err := s.sliceRevenue(ctx, unitID, yearMonth)
	if err != nil {
		return nil, err
	}
	// The month's result is its slice revenue plus whatever the ledger
	// itself moved during the month (receipts, payouts, adjustments).
	monthly := revenue.Add(throughMonth.Sub(opening)).Round(2)
	closing := opening.Add(monthly).Round(2)

	posting := &Posting{
		UnitID:         unitID,
		YearMonth:      yearMonth,
		OpeningBalance: opening,
		MonthlyResult:  monthly,
		ClosingBalance: closing,
		Reference:      reference,
	}

	if existing != nil && !replace {
		// Keep the stored checkpoint; report what it actually says.
		posting.EntryID = existing.ID
		posting.ClosingBalance = existing.Amount
		posting.Skipped = true
		return posting, nil
	}

	entry := &ledger.Entry{
		UnitID:    unitID,
		EntryType: ledger.EntryReportPosting,
		Amount:    closing,
		TxnDate:   monthStart.AddDate(0, 1, 0),
		Reference: reference,
		Note: fmt.Sprintf("opening %s, monthly result %s",
			opening.StringFixed(2), monthly.StringFixed(2)),
		CreatedBy: createdBy,
	}

	if existing != nil {
		entry.ID = existing.ID
		entry.CreatedAt = existing.CreatedAt
		if entry.CreatedBy == "" {
			entry.CreatedBy = existing.CreatedBy
		}
		if err := s.writer.Update(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to replace report posting: %w", err)
		}
		posting.Replaced = true
	} else {
		if err := s.writer.Create(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to insert report posting: %w", err)
		}
	}
	posting.EntryID = entry.ID

	s.logger.Info("report posting generated",
		"unit_id", unitID, "year_month", yearMonth,
		"opening", opening.StringFixed(2),
		"monthly_result", monthly.StringFixed(2),
		"closing", closing.StringFixed(2),
		"replaced", posting.Replaced)
	return posting, nil
}

// sliceRevenue sums the client income materialized for the month.
func (s *PostingService) sliceRevenue(ctx context.Context, unitID int64, yearMonth string) (decimal.Decimal, error) {
	slices, err := s.slices.ListForUnitMonth(ctx, unitID, yearMonth)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load month slices for unit %d: %w", unitID, err)
	}
	total := decimal.Zero
	for i := range slices {
		total = total.Add(slices[i].OwnerPayoutInMonth)
	}
	return total.Round(2), nil
}

// replayBalanceBefore replays the unit's history up to (excluding) the
// cutoff date and returns the final running balance. The posting being
// regenerated is excluded so a rerun does not read its own previous
// output; checkpoints of other months still reset as usual.
func replayBalanceBefore(all []ledger.Entry, cutoff time.Time, selfReference string) (decimal.Decimal, error) {
	var prior []ledger.Entry
	for _, e := range all {
		if e.EntryType.Canonical() == ledger.EntryReportPosting && e.Reference == selfReference {
			continue
		}
		if e.EffectiveDate().Before(cutoff) {
			prior = append(prior, e)
		}
	}
	if len(prior) == 0 {
		return decimal.Zero, nil
	}
	updates := ledger.Replay(prior)
	last := updates[len(updates)-1]
	balance, err := decimal.NewFromString(last.BalanceAfter)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse replayed balance %q: %w", last.BalanceAfter, err)
	}
	return balance, nil
}

func findPosting(all []ledger.Entry, reference string) *ledger.Entry {
	for i := range all {
		e := &all[i]
		if e.EntryType.Canonical() == ledger.EntryReportPosting && e.Reference == reference {
			return e
		}
	}
	return nil
}
