/*
recompute.go - Running-balance recompute engine

PURPOSE:
  Rewrites balance_after for every ledger row of one unit. Runs after each
  insert/update/delete of a row for that unit. The walk is deterministic:
  reload everything, sort by (effectiveDate, id) in memory, accumulate the
  sign-normalized amounts, write all balances back in one transaction.

REPLAY RULES:
  - Sign-bearing types add their normalized amount to the running total.
  - REPORT_POSTING SETS the running total to its own stored amount: a
    report's closing balance is authoritative and overrides accumulation.
    This applies wherever the row sorts, including backdated postings.

CONCURRENCY:
  - A per-unit in-flight flag short-circuits overlapping recomputes: the
    second caller gets ErrRecomputeInProgress instead of queueing up. The
    write that triggered it is fail-soft anyway, and the next write runs a
    fresh full replay.
  - Stores that implement UnitLocker additionally hold a cross-process
    advisory lock for the reload-sort-rewrite cycle.
*/
package ledger

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// =============================================================================
// REPLAY - Pure cumulative walk
// =============================================================================

// Replay sorts entries by (effectiveDate, id) ascending and computes the
// running balance for every row. It does not mutate its input.
func Replay(entries []Entry) []BalanceUpdate {
	ordered := make([]Entry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		di, dj := ordered[i].EffectiveDate(), ordered[j].EffectiveDate()
		if di.Equal(dj) {
			return ordered[i].ID < ordered[j].ID
		}
		return di.Before(dj)
	})

	running := decimal.Zero
	updates := make([]BalanceUpdate, 0, len(ordered))
	for _, e := range ordered {
		if e.EntryType.Canonical() == EntryReportPosting {
			// Checkpoint: reset to the report's closing amount.
			running = e.Amount.Round(2)
		} else {
			running = running.Add(NormalizeAmount(e.EntryType, e.Amount))
		}
		updates = append(updates, BalanceUpdate{
			EntryID:      e.ID,
			BalanceAfter: running.StringFixed(2),
			YearMonth:    YearMonthOf(e.EffectiveDate()),
		})
	}
	return updates
}

// =============================================================================
// ENGINE
// =============================================================================

type Engine struct {
	store  Store
	logger *slog.Logger

	mu          sync.Mutex
	recomputing map[int64]bool
}

func NewEngine(store Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:       store,
		logger:      logger,
		recomputing: make(map[int64]bool),
	}
}

// Recomputing reports whether a recompute for the unit is currently running.
// Post-write hooks check this to avoid re-triggering from the engine's own
// balance writes.
func (en *Engine) Recomputing(unitID int64) bool {
	en.mu.Lock()
	defer en.mu.Unlock()
	return en.recomputing[unitID]
}

// Recompute reloads every entry for the unit, replays the running balance,
// and rewrites balance_after and yearmonth on all rows in one transaction.
// Returns the number of rows rewritten.
//
// Returns ErrRecomputeInProgress when a recompute for the same unit is
// already running; the in-flight run (or the unit's next write) covers it.
func (en *Engine) Recompute(ctx context.Context, unitID int64) (int, error) {
	en.mu.Lock()
	if en.recomputing[unitID] {
		en.mu.Unlock()
		return 0, ErrRecomputeInProgress
	}
	en.recomputing[unitID] = true
	en.mu.Unlock()
	defer func() {
		en.mu.Lock()
		delete(en.recomputing, unitID)
		en.mu.Unlock()
	}()

	if locker, ok := en.store.(UnitLocker); ok {
		release, err := locker.LockUnit(ctx, unitID)
		if err != nil {
			return 0, &RecomputeError{UnitID: unitID, Err: err}
		}
		defer release()
	}

	entries, err := en.store.ListByUnit(ctx, unitID)
	if err != nil {
		return 0, &RecomputeError{UnitID: unitID, Err: err}
	}
	if len(entries) == 0 {
		return 0, nil
	}

	updates := Replay(entries)
	if err := en.store.UpdateBalances(ctx, unitID, updates); err != nil {
		return 0, &RecomputeError{UnitID: unitID, Err: err}
	}

	en.logger.Debug("recomputed unit running balance",
		"unit_id", unitID, "rows", len(updates))
	return len(updates), nil
}
