/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the property revenue engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env + environment, optional YAML rules file)
  2. Initialize store (sqlite or postgres)
  3. Wire the recompute engine, materializer, and lifecycle writers
  4. Configure HTTP router and report scheduler
  5. Start server with graceful shutdown

CONFIGURATION:
  LISTEN_ADDR            listen address (default :8080)
  STORE_DRIVER           sqlite | postgres (default sqlite)
  SQLITE_PATH            SQLite database path (":memory:" for in-memory)
  POSTGRES_DSN           lib/pq connection string
  KAFKA_BROKERS          comma-separated brokers; empty disables events
  RULES_PATH             YAML slicing rules file
  CORS_ORIGINS           comma-separated allowed origins
  SHUTDOWN_WAIT_SECONDS  graceful shutdown timeout
  DEBUG                  "true" enables debug logging

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the report scheduler
  2. Stop accepting new connections, drain active requests
  3. Close the event publisher and database connection
  4. Exit

SEE ALSO:
  - config/config.go: configuration loading
  - api/server.go: router configuration
*/
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/owners2/property-engine/api"
	"github.com/owners2/property-engine/booking"
	"github.com/owners2/property-engine/config"
	"github.com/owners2/property-engine/events"
	"github.com/owners2/property-engine/events/kafka"
	"github.com/owners2/property-engine/ledger"
	"github.com/owners2/property-engine/lifecycle"
	"github.com/owners2/property-engine/observability"
	"github.com/owners2/property-engine/report"
	"github.com/owners2/property-engine/store/postgres"
	"github.com/owners2/property-engine/store/sqlite"
)

// Store is the full persistence surface the server needs; both backends
// satisfy it.
type Store interface {
	ledger.Store
	booking.Store
	booking.SliceStore
	api.UnitLister
	Close() error
}

func main() {
	envPath := flag.String("env", "", "path to .env file (default: ./.env if present)")
	flag.Parse()

	cfg, err := config.Load(*envPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	var store Store
	switch cfg.Store.Driver {
	case "postgres":
		store, err = postgres.New(cfg.Store.PostgresDSN)
	default:
		store, err = sqlite.New(cfg.Store.SQLitePath)
	}
	if err != nil {
		logger.Error("failed to initialize store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	var publisher events.Publisher = events.Noop{}
	var kafkaPub *kafka.Publisher
	if cfg.Kafka.Enabled {
		kafkaPub = kafka.NewPublisher(cfg.Kafka.Brokers)
		publisher = kafkaPub
		defer kafkaPub.Close()
	}

	metrics := observability.New()

	// Domain wiring
	engine := ledger.NewEngine(store, logger)
	materializer := booking.NewMaterializer(store, store, logger)
	if len(cfg.Rules.EligibleSources) > 0 {
		materializer.SetEligibleSources(cfg.Rules.EligibleSources)
	}

	queue := lifecycle.NewQueue(materializer, logger, metrics, publisher)
	ledgerWriter := lifecycle.NewLedgerWriter(store, engine, logger, metrics, publisher)
	bookingWriter := lifecycle.NewBookingWriter(store, queue)

	postings := report.NewPostingService(store, store, ledgerWriter, logger)
	summaries := report.NewSummaryService(store, store)

	handler := &api.Handler{
		Ledger:       ledgerWriter,
		Bookings:     bookingWriter,
		Entries:      store,
		BookingStore: store,
		Slices:       store,
		Postings:     postings,
		Summaries:    summaries,
	}

	router := api.NewRouter(handler, api.RouterOptions{
		CORSOrigins: cfg.Server.CORSOrigins,
		Metrics:     metrics,
	})

	scheduler := api.NewReportScheduler(store, postings, logger)
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			"addr", cfg.Server.Addr, "driver", cfg.Store.Driver,
			"kafka", cfg.Kafka.Enabled)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownWait)*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
