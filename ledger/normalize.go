/*
normalize.go - Sign and period normalization

PURPOSE:
  The UI and import flows always send positive amounts; the stored sign is
  decided by the entry type. Normalization runs synchronously before every
  insert/update so it is part of the same transaction as the primary write.

RULES:
  PAYMENT_TO_CLIENT, PAYMENT_TO_CLIENT_PARTIAL  -> -abs(amount)
  PAYMENT_FROM_CLIENT                           -> +abs(amount)
  everything else                               -> stored as-is

  All amounts are quantized to 2 decimal places. Money never touches
  binary floating point.
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// NormalizeAmount returns the signed, 2dp amount for an entry type.
// Pure function; safe to call during replay as well as before writes
// (normalization is idempotent: -abs(-x) == -x).
func NormalizeAmount(entryType EntryType, raw decimal.Decimal) decimal.Decimal {
	switch entryType.Canonical() {
	case EntryPaymentToClient, EntryPaymentToClientPartial:
		return raw.Abs().Neg().Round(2)
	case EntryPaymentFromClient:
		return raw.Abs().Round(2)
	default:
		return raw.Round(2)
	}
}

// NormalizeEntry applies sign normalization and fills the derived period
// fields in place. Called pre-insert and pre-update by the lifecycle layer.
//
// txnDate is backfilled from date, then createdAt, then now, so that every
// row carries a concrete ordering date going forward.
func NormalizeEntry(e *Entry, now time.Time) {
	e.Amount = NormalizeAmount(e.EntryType, e.Amount)

	if e.TxnDate.IsZero() {
		switch {
		case !e.Date.IsZero():
			e.TxnDate = e.Date
		case !e.CreatedAt.IsZero():
			e.TxnDate = e.CreatedAt
		default:
			e.TxnDate = now
		}
	}
	e.YearMonth = YearMonthOf(e.EffectiveDate())
}
