/*
scheduler.go - Automated month-close scheduler

PURPOSE:
  Periodically checks for units whose previous month has no report
  posting yet and generates one. Keeps the ledger checkpointed without a
  human clicking "generate" for every unit.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Always targets the month before the current one
  - Generates with replace=false, so a month already closed (manually or
    by an earlier run) is skipped, never overwritten

USAGE:
  scheduler := NewReportScheduler(store, postings, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: GenerateReport endpoint (manual month close)
  - report/posting.go: the posting computation
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/owners2/property-engine/report"
)

// UnitLister enumerates every unit that has ledger or slice rows.
// Both store backends implement it.
type UnitLister interface {
	ListUnits(ctx context.Context) ([]int64, error)
}

// ReportScheduler generates missing report postings on a timer.
type ReportScheduler struct {
	Units         UnitLister
	Postings      *report.PostingService
	CheckInterval time.Duration
	Enabled       bool

	logger *slog.Logger
	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewReportScheduler creates a new scheduler.
func NewReportScheduler(units UnitLister, postings *report.PostingService, logger *slog.Logger) *ReportScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportScheduler{
		Units:         units,
		Postings:      postings,
		CheckInterval: 12 * time.Hour,
		Enabled:       true,
		logger:        logger,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (rs *ReportScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		rs.logger.Info("report scheduler disabled, not starting")
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.wg.Add(1)

	go rs.run()

	rs.logger.Info("report scheduler started", "check_interval", rs.CheckInterval)
}

// Stop stops the scheduler.
func (rs *ReportScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		rs.logger.Info("report scheduler stopped")
	}
}

func (rs *ReportScheduler) run() {
	defer rs.wg.Done()

	// Run immediately on start
	rs.checkAndProcess()

	for {
		select {
		case <-rs.ticker.C:
			rs.checkAndProcess()
		case <-rs.stop:
			return
		}
	}
}

func (rs *ReportScheduler) checkAndProcess() {
	ctx := context.Background()
	now := time.Now().UTC()
	prevMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -1, 0).Format("2006-01")

	units, err := rs.Units.ListUnits(ctx)
	if err != nil {
		rs.logger.Error("report scheduler could not list units", "error", err)
		return
	}

	generated := 0
	skipped := 0
	for _, unitID := range units {
		posting, err := rs.Postings.Generate(ctx, unitID, prevMonth, false, "scheduler")
		if err != nil {
			rs.logger.Error("report scheduler could not close month",
				"unit_id", unitID, "year_month", prevMonth, "error", err)
			continue
		}
		if posting.Skipped {
			skipped++
		} else {
			generated++
		}
	}

	if generated > 0 || skipped > 0 {
		rs.logger.Info("report scheduler completed",
			"year_month", prevMonth, "generated", generated, "skipped", skipped)
	}
}

// RunNow triggers an immediate check (for testing/admin).
func (rs *ReportScheduler) RunNow() {
	rs.checkAndProcess()
}
