package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owners2/property-engine/ledger"
	"github.com/owners2/property-engine/store/sqlite"
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

func entry(id int64, t ledger.EntryType, amount string, txnDate time.Time) ledger.Entry {
	return ledger.Entry{
		ID:        id,
		UnitID:    1,
		EntryType: t,
		Amount:    dec(amount),
		TxnDate:   txnDate,
	}
}

func balances(updates []ledger.BalanceUpdate) []string {
	out := make([]string, len(updates))
	for i, u := range updates {
		out[i] = u.BalanceAfter
	}
	return out
}

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// =============================================================================
// REPLAY TESTS
// =============================================================================

func TestReplay_AccumulatesSignedAmounts(t *testing.T) {
	// GIVEN: three payments in chronological order
	// WHEN: replaying
	// THEN: running balance accumulates the normalized signed amounts

	entries := []ledger.Entry{
		entry(1, ledger.EntryPaymentFromClient, "500.00", day(2025, 3, 1)),
		entry(2, ledger.EntryPaymentToClient, "-200.00", day(2025, 3, 5)),
		entry(3, ledger.EntryAdjustment, "-50.00", day(2025, 3, 9)),
	}

	updates := ledger.Replay(entries)
	assert.Equal(t, []string{"500.00", "300.00", "250.00"}, balances(updates))
}

func TestReplay_ReportPostingResets(t *testing.T) {
	// GIVEN: +1000 from client, -1000 to client, then a 250.00 report posting
	// WHEN: replaying
	// THEN: balances are [1000.00, 0.00, 250.00] - the posting resets the
	//       running total to its own amount instead of accumulating

	entries := []ledger.Entry{
		entry(1, ledger.EntryPaymentFromClient, "1000.00", day(2025, 1, 5)),
		entry(2, ledger.EntryPaymentToClient, "1000.00", day(2025, 1, 20)),
		entry(3, ledger.EntryReportPosting, "250.00", day(2025, 2, 1)),
	}

	updates := ledger.Replay(entries)
	assert.Equal(t, []string{"1000.00", "0.00", "250.00"}, balances(updates))
}

func TestReplay_ReportPostingStillResetsAfterDelete(t *testing.T) {
	// GIVEN: the same ledger with the middle row deleted
	// WHEN: replaying the remaining two rows
	// THEN: balances are [1000.00, 250.00] - the posting keeps overriding
	//       whatever accumulated before it

	entries := []ledger.Entry{
		entry(1, ledger.EntryPaymentFromClient, "1000.00", day(2025, 1, 5)),
		entry(3, ledger.EntryReportPosting, "250.00", day(2025, 2, 1)),
	}

	updates := ledger.Replay(entries)
	assert.Equal(t, []string{"1000.00", "250.00"}, balances(updates))
}

func TestReplay_OrdersByEffectiveDateThenID(t *testing.T) {
	// GIVEN: entries supplied out of chronological order, two sharing a date
	// WHEN: replaying
	// THEN: the walk follows (effectiveDate, id) ascending, not input order

	entries := []ledger.Entry{
		entry(7, ledger.EntryPaymentFromClient, "30.00", day(2025, 4, 10)),
		entry(3, ledger.EntryPaymentFromClient, "10.00", day(2025, 4, 1)),
		entry(5, ledger.EntryPaymentFromClient, "20.00", day(2025, 4, 1)),
	}

	updates := ledger.Replay(entries)

	require.Len(t, updates, 3)
	assert.Equal(t, int64(3), updates[0].EntryID)
	assert.Equal(t, int64(5), updates[1].EntryID)
	assert.Equal(t, int64(7), updates[2].EntryID)
	assert.Equal(t, []string{"10.00", "30.00", "60.00"}, balances(updates))
}

func TestReplay_BackdatedReportPostingOverridesLaterRows(t *testing.T) {
	// GIVEN: a report posting backdated before an existing payment
	// WHEN: replaying
	// THEN: the payment after it accumulates on top of the reset baseline

	entries := []ledger.Entry{
		entry(1, ledger.EntryPaymentFromClient, "900.00", day(2025, 6, 15)),
		entry(2, ledger.EntryReportPosting, "100.00", day(2025, 6, 1)),
	}

	updates := ledger.Replay(entries)
	assert.Equal(t, []string{"100.00", "1000.00"}, balances(updates))
}

func TestReplay_RewritesYearMonthFromEffectiveDate(t *testing.T) {
	e := entry(1, ledger.EntryPaymentFromClient, "10.00", day(2025, 11, 30))

	updates := ledger.Replay([]ledger.Entry{e})

	require.Len(t, updates, 1)
	assert.Equal(t, "2025-11", updates[0].YearMonth)
}

func TestReplay_DoesNotMutateInput(t *testing.T) {
	entries := []ledger.Entry{
		entry(2, ledger.EntryPaymentFromClient, "20.00", day(2025, 1, 2)),
		entry(1, ledger.EntryPaymentFromClient, "10.00", day(2025, 1, 1)),
	}

	ledger.Replay(entries)

	assert.Equal(t, int64(2), entries[0].ID, "input slice order must survive")
}

// =============================================================================
// EFFECTIVE DATE RESOLUTION
// =============================================================================

func TestEffectiveDate_FallbackChain(t *testing.T) {
	txn := day(2025, 5, 1)
	legacy := day(2025, 4, 1)
	created := day(2025, 3, 1)

	tests := []struct {
		name  string
		entry ledger.Entry
		want  time.Time
	}{
		{"txn date wins", ledger.Entry{TxnDate: txn, Date: legacy, CreatedAt: created}, txn},
		{"legacy date second", ledger.Entry{Date: legacy, CreatedAt: created}, legacy},
		{"created at third", ledger.Entry{CreatedAt: created}, created},
		{"epoch when nothing set", ledger.Entry{}, time.Unix(0, 0).UTC()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.entry.EffectiveDate().Equal(tt.want))
		})
	}
}

// =============================================================================
// SIGN NORMALIZATION
// =============================================================================

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name      string
		entryType ledger.EntryType
		raw       string
		want      string
	}{
		{"payment to client forced negative", ledger.EntryPaymentToClient, "350.00", "-350.00"},
		{"already negative stays negative", ledger.EntryPaymentToClient, "-350.00", "-350.00"},
		{"partial payment forced negative", ledger.EntryPaymentToClientPartial, "80.555", "-80.56"},
		{"payment from client forced positive", ledger.EntryPaymentFromClient, "-120.00", "120.00"},
		{"adjustment keeps caller sign", ledger.EntryAdjustment, "-42.40", "-42.40"},
		{"report posting keeps caller sign", ledger.EntryReportPosting, "250.00", "250.00"},
		{"lower case type still normalized", ledger.EntryType("payment_to_client"), "10.00", "-10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ledger.NormalizeAmount(tt.entryType, dec(tt.raw))
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestNormalizeEntry_BackfillsTxnDateAndYearMonth(t *testing.T) {
	now := day(2025, 8, 31)

	e := &ledger.Entry{
		UnitID:    1,
		EntryType: ledger.EntryPaymentFromClient,
		Amount:    dec("100.00"),
		Date:      day(2025, 7, 14),
	}
	ledger.NormalizeEntry(e, now)

	assert.True(t, e.TxnDate.Equal(day(2025, 7, 14)), "txn date backfilled from legacy date")
	assert.Equal(t, "2025-07", e.YearMonth)

	bare := &ledger.Entry{UnitID: 1, EntryType: ledger.EntryAdjustment, Amount: dec("1.00")}
	ledger.NormalizeEntry(bare, now)

	assert.True(t, bare.TxnDate.Equal(now), "txn date falls back to now")
	assert.Equal(t, "2025-08", bare.YearMonth)
}

// =============================================================================
// ENGINE TESTS (against the SQLite store)
// =============================================================================

func TestEngine_RecomputeRewritesStoredBalances(t *testing.T) {
	// GIVEN: three entries inserted out of chronological order
	// WHEN: recomputing the unit
	// THEN: every stored balance_after matches the (effectiveDate, id) walk

	ctx := context.Background()
	store := newTestStore(t)
	engine := ledger.NewEngine(store, nil)

	seed := []ledger.Entry{
		entry(0, ledger.EntryPaymentToClient, "-300.00", day(2025, 2, 10)),
		entry(0, ledger.EntryPaymentFromClient, "1000.00", day(2025, 2, 1)),
		entry(0, ledger.EntryPaymentFromClient, "250.00", day(2025, 2, 20)),
	}
	for i := range seed {
		seed[i].CreatedAt = day(2025, 2, 25)
		require.NoError(t, store.Insert(ctx, &seed[i]))
	}

	rows, err := engine.Recompute(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, rows)

	stored, err := store.ListByUnit(ctx, 1)
	require.NoError(t, err)

	byBalance := map[string]string{}
	for _, e := range stored {
		byBalance[e.TxnDate.Format("2006-01-02")] = e.BalanceAfter.StringFixed(2)
	}
	assert.Equal(t, "1000.00", byBalance["2025-02-01"])
	assert.Equal(t, "700.00", byBalance["2025-02-10"])
	assert.Equal(t, "950.00", byBalance["2025-02-20"])
}

func TestEngine_RecomputeEmptyUnitIsNoop(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	engine := ledger.NewEngine(store, nil)

	rows, err := engine.Recompute(ctx, 42)
	require.NoError(t, err)
	assert.Zero(t, rows)
}

func TestEngine_RecomputingFlagVisibleDuringRun(t *testing.T) {
	// The flag is how the post-write hook avoids re-triggering from the
	// engine's own balance writes.
	engine := ledger.NewEngine(newTestStore(t), nil)

	assert.False(t, engine.Recomputing(1))
}

// gateStore parks ListByUnit until released so a test can observe the
// engine mid-run.
type gateStore struct {
	ledger.Store
	entered chan struct{}
	release chan struct{}
}

func (g *gateStore) ListByUnit(ctx context.Context, unitID int64) ([]ledger.Entry, error) {
	g.entered <- struct{}{}
	<-g.release
	return g.Store.ListByUnit(ctx, unitID)
}

func TestEngine_OverlappingRecomputeShortCircuits(t *testing.T) {
	// GIVEN: a recompute for unit 1 parked inside its reload
	// WHEN: a second recompute for the same unit starts
	// THEN: it returns ErrRecomputeInProgress instead of queueing up, and
	//       the flag clears once the first run finishes

	ctx := context.Background()
	store := newTestStore(t)
	e := entry(0, ledger.EntryPaymentFromClient, "100.00", day(2025, 1, 5))
	require.NoError(t, store.Insert(ctx, &e))

	gate := &gateStore{
		Store:   store,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	engine := ledger.NewEngine(gate, nil)

	done := make(chan error, 1)
	go func() {
		_, err := engine.Recompute(ctx, 1)
		done <- err
	}()
	<-gate.entered

	assert.True(t, engine.Recomputing(1))
	_, err := engine.Recompute(ctx, 1)
	assert.ErrorIs(t, err, ledger.ErrRecomputeInProgress)

	close(gate.release)
	require.NoError(t, <-done)
	assert.False(t, engine.Recomputing(1))
}
