/*
Package ledger maintains the running-balance column of a unit's financial
ledger.

PURPOSE:
  Every payment, adjustment, and report posting against a unit is one row in
  unit_balance_ledger. The balance_after column is derived: it is rewritten
  by replaying the whole ledger of the affected unit whenever any row
  changes. Rows themselves are the source of truth; balance_after is a
  materialized view of the cumulative sum.

KEY CONCEPTS IN THIS FILE (types.go):
  - Entry: one signed financial movement against a unit's account
  - EntryType: the movement kind, which decides the amount's stored sign
  - EffectiveDate: the single ordering rule (txnDate > date > createdAt)

SEE ALSO:
  - normalize.go: sign/period normalization applied before every write
  - recompute.go: the running-balance recompute engine
  - store.go: persistence interface
*/
package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENTRY TYPES
// =============================================================================

type EntryType string

const (
	// Money paid out to the unit's owner. Stored negative.
	EntryPaymentToClient        EntryType = "PAYMENT_TO_CLIENT"
	EntryPaymentToClientPartial EntryType = "PAYMENT_TO_CLIENT_PARTIAL"

	// Money received from the owner. Stored positive.
	EntryPaymentFromClient EntryType = "PAYMENT_FROM_CLIENT"

	// Checkpoint row written when a monthly report is issued. Its amount is
	// the report's authoritative closing balance; during replay it RESETS
	// the running balance to that figure instead of accumulating.
	EntryReportPosting EntryType = "REPORT_POSTING"

	// Manual correction. Caller supplies the already-signed value.
	EntryAdjustment EntryType = "ADJUSTMENT"
)

// Canonical returns the upper-cased entry type used for sign decisions.
// Stored data from older imports is not guaranteed to be upper case.
func (t EntryType) Canonical() EntryType {
	return EntryType(strings.ToUpper(strings.TrimSpace(string(t))))
}

// =============================================================================
// ENTRY - one row of unit_balance_ledger
// =============================================================================

type Entry struct {
	ID     int64
	UnitID int64

	// TxnDate is the business date of the movement. Date is a legacy field
	// kept for rows imported before txn_date existed.
	TxnDate time.Time
	Date    time.Time

	YearMonth string // YYYY-MM, derived from the effective date
	EntryType EntryType

	Amount       decimal.Decimal // signed, 2dp
	BalanceAfter decimal.Decimal // derived, 2dp

	PaymentMethod string
	Reference     string
	Note          string

	CreatedAt time.Time
	CreatedBy string
}

// EffectiveDate resolves the date used for ordering:
// txnDate, then date, then createdAt, then the epoch.
func (e *Entry) EffectiveDate() time.Time {
	switch {
	case !e.TxnDate.IsZero():
		return e.TxnDate
	case !e.Date.IsZero():
		return e.Date
	case !e.CreatedAt.IsZero():
		return e.CreatedAt
	default:
		return time.Unix(0, 0).UTC()
	}
}

// YearMonthOf formats a date as the ledger's YYYY-MM period key.
func YearMonthOf(t time.Time) string {
	return t.Format("2006-01")
}
