/*
ledger_writer.go - Ledger write path

PURPOSE:
  Sign/period normalization happens synchronously before the primary write
  (same transaction); the running-balance recompute runs after it. The
  recompute is fail-soft: its error is logged, counted, and swallowed so a
  recorded payment never bounces because the derived column lagged.
*/
package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/owners2/property-engine/events"
	"github.com/owners2/property-engine/ledger"
	"github.com/owners2/property-engine/observability"
)

type LedgerWriter struct {
	store     ledger.Store
	engine    *ledger.Engine
	logger    *slog.Logger
	metrics   *observability.Metrics
	publisher events.Publisher
}

func NewLedgerWriter(store ledger.Store, engine *ledger.Engine, logger *slog.Logger, metrics *observability.Metrics, publisher events.Publisher) *LedgerWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &LedgerWriter{store: store, engine: engine, logger: logger, metrics: metrics, publisher: publisher}
}

// Create normalizes and inserts a ledger entry, then recomputes the unit's
// running balances.
func (w *LedgerWriter) Create(ctx context.Context, e *ledger.Entry) error {
	if e.UnitID == 0 {
		return ledger.ErrUnitRequired
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.CreatedBy == "" {
		e.CreatedBy = "system"
	}
	ledger.NormalizeEntry(e, now)

	if err := w.store.Insert(ctx, e); err != nil {
		return err
	}
	w.recomputeFailSoft(ctx, e.UnitID)
	return nil
}

// Update normalizes and rewrites an existing entry, then recomputes.
func (w *LedgerWriter) Update(ctx context.Context, e *ledger.Entry) error {
	if e.UnitID == 0 {
		return ledger.ErrUnitRequired
	}
	ledger.NormalizeEntry(e, time.Now().UTC())

	if err := w.store.Update(ctx, e); err != nil {
		return err
	}
	w.recomputeFailSoft(ctx, e.UnitID)
	return nil
}

// Delete removes an entry, then recomputes the remaining rows of its unit.
func (w *LedgerWriter) Delete(ctx context.Context, id int64) error {
	e, err := w.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := w.store.Delete(ctx, id); err != nil {
		return err
	}
	w.recomputeFailSoft(ctx, e.UnitID)
	return nil
}

// recomputeFailSoft triggers the engine post-commit. Never returns an
// error: callers that need guaranteed freshness re-trigger on next read.
func (w *LedgerWriter) recomputeFailSoft(ctx context.Context, unitID int64) {
	if w.engine.Recomputing(unitID) {
		// The engine's own writes would otherwise re-trigger this hook.
		return
	}

	start := time.Now()
	rows, err := w.engine.Recompute(ctx, unitID)
	if w.metrics != nil {
		w.metrics.RecomputeDuration.Observe(time.Since(start).Seconds())
	}
	switch {
	case errors.Is(err, ledger.ErrRecomputeInProgress):
		w.logger.Debug("recompute suppressed, already in progress", "unit_id", unitID)
	case err != nil:
		w.logger.Error("recompute failed, balances may lag until next write",
			"unit_id", unitID, "error", err)
		if w.metrics != nil {
			w.metrics.RecomputeRuns.WithLabelValues("error").Inc()
			w.metrics.SwallowedFailures.WithLabelValues("ledger").Inc()
		}
	default:
		if w.metrics != nil {
			w.metrics.RecomputeRuns.WithLabelValues("ok").Inc()
		}
		if perr := w.publisher.Publish(events.TopicLedgerRecomputed, events.NewLedgerRecomputed(unitID, rows)); perr != nil {
			w.logger.Warn("recompute event not published", "unit_id", unitID, "error", perr)
		}
	}
}
