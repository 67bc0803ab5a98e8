package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEntryNotFound is returned when a referenced ledger row doesn't exist.
	ErrEntryNotFound = errors.New("ledger entry not found")

	// ErrUnitRequired is returned when an entry is written without a unit.
	ErrUnitRequired = errors.New("ledger entry requires a unit")

	// ErrRecomputeInProgress is returned when a recompute overlaps one
	// already running for the same unit. The in-flight run covers it.
	ErrRecomputeInProgress = errors.New("recompute already in progress for unit")
)

// RecomputeError wraps a failure during the reload-sort-rewrite cycle.
// The lifecycle layer logs and swallows it; it must never propagate to the
// caller that triggered the original ledger write.
type RecomputeError struct {
	UnitID int64
	Err    error
}

func (e *RecomputeError) Error() string {
	return fmt.Sprintf("recompute failed for unit %d: %v", e.UnitID, e.Err)
}

func (e *RecomputeError) Unwrap() error { return e.Err }
