package ledger

import "context"

// =============================================================================
// STORE - Persistence interface for unit_balance_ledger
// =============================================================================

// BalanceUpdate is one rewritten balance_after value. The recompute engine
// never changes amount, entry type, or dates; only the derived columns.
type BalanceUpdate struct {
	EntryID      int64
	BalanceAfter string // 2dp decimal string
	YearMonth    string
}

type Store interface {
	// Insert persists a new entry and assigns its ID.
	Insert(ctx context.Context, e *Entry) error

	// Update rewrites all caller-editable fields of an existing entry.
	Update(ctx context.Context, e *Entry) error

	// Delete removes an entry. Returns ErrEntryNotFound if absent.
	Delete(ctx context.Context, id int64) error

	// Get loads a single entry by ID.
	Get(ctx context.Context, id int64) (*Entry, error)

	// ListByUnit returns every entry for a unit, in storage order.
	// Deliberately no ORDER BY: ordering is done in memory so the
	// (effectiveDate, id) tie-break rule lives in exactly one place.
	ListByUnit(ctx context.Context, unitID int64) ([]Entry, error)

	// UpdateBalances applies a recompute result in a single transaction.
	UpdateBalances(ctx context.Context, unitID int64, updates []BalanceUpdate) error
}

// UnitLocker is an optional store capability: a cross-process advisory lock
// per unit, held for the duration of a reload-sort-rewrite cycle. The
// Postgres store implements it with pg_advisory_lock; the SQLite store does
// not need it (single writer).
type UnitLocker interface {
	LockUnit(ctx context.Context, unitID int64) (release func(), err error)
}
