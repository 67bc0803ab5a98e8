/*
Package lifecycle connects entity writes to the derived-state engines.

PURPOSE:
  Controllers never call the engines directly. They go through the writer
  services here, which (1) perform the primary write, (2) capture what the
  engines need from the before/after state, and (3) invoke the engines
  after the primary write has committed, fail-soft.

DEFERRED-QUEUE PATTERN:
  An inserted booking has no ID until the insert completes, so a slice
  refresh job for an insert is captured as a reference to the in-flight
  entity and resolved to a concrete ID only when the job is drained. For
  updates and deletes the ID is already known and the job carries it along
  with the old/new date ranges pulled from the change set. Each mutation
  works on its own forked queue, so concurrent requests cannot observe or
  wipe each other's captured jobs, and a failed primary write discards
  only its own fork.
*/
package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"github.com/owners2/property-engine/booking"
	"github.com/owners2/property-engine/events"
	"github.com/owners2/property-engine/observability"
)

// sliceJob is one pending refresh. Exactly one of entity / bookingID
// identifies the booking: entity for inserts whose ID is still pending,
// bookingID for updates and deletes.
type sliceJob struct {
	entity    *booking.Booking
	bookingID int64

	oldRange *booking.DateRange
	newRange *booking.DateRange
}

// Queue owns the pending jobs between capture and drain. The instance
// handed to a writer service is a template carrying only dependencies:
// each mutation forks its own empty queue, so concurrent requests never
// share pending state.
type Queue struct {
	materializer *booking.Materializer
	logger       *slog.Logger
	metrics      *observability.Metrics
	publisher    events.Publisher

	pending []sliceJob
}

func NewQueue(m *booking.Materializer, logger *slog.Logger, metrics *observability.Metrics, publisher events.Publisher) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Queue{materializer: m, logger: logger, metrics: metrics, publisher: publisher}
}

// fork returns an empty queue sharing this queue's dependencies. One fork
// per mutation; an abandoned fork (failed primary write) is simply dropped
// with its captured jobs.
func (q *Queue) fork() *Queue {
	return &Queue{
		materializer: q.materializer,
		logger:       q.logger,
		metrics:      q.metrics,
		publisher:    q.publisher,
	}
}

func (q *Queue) enqueueInsert(b *booking.Booking) {
	r := b.Range()
	q.pending = append(q.pending, sliceJob{entity: b, newRange: &r})
}

func (q *Queue) enqueueUpdate(bookingID int64, oldRange, newRange booking.DateRange) {
	q.pending = append(q.pending, sliceJob{bookingID: bookingID, oldRange: &oldRange, newRange: &newRange})
}

func (q *Queue) enqueueDelete(bookingID int64, oldRange booking.DateRange) {
	q.pending = append(q.pending, sliceJob{bookingID: bookingID, oldRange: &oldRange})
}

// drain resolves and executes every pending job, then leaves the queue
// empty no matter what failed. Job failures are logged and swallowed: the
// primary write already committed and must not be reported as failed.
func (q *Queue) drain(ctx context.Context) {
	jobs := q.pending
	q.pending = nil

	for _, job := range jobs {
		id := job.bookingID
		if job.entity != nil {
			id = job.entity.ID
		}
		if id == 0 {
			q.logger.Warn("slice refresh job skipped: booking ID never resolved")
			continue
		}

		start := time.Now()
		n, err := q.materializer.RefreshForBooking(ctx, id, job.oldRange, job.newRange)
		if q.metrics != nil {
			q.metrics.SliceRefreshSeconds.Observe(time.Since(start).Seconds())
		}
		if err != nil {
			q.logger.Error("slice refresh failed", "booking_id", id, "error", err)
			if q.metrics != nil {
				q.metrics.SliceRefreshes.WithLabelValues("error").Inc()
				q.metrics.SwallowedFailures.WithLabelValues("slices").Inc()
			}
			continue
		}
		if q.metrics != nil {
			q.metrics.SliceRefreshes.WithLabelValues("ok").Inc()
		}
		if err := q.publisher.Publish(events.TopicSlicesRefreshed, events.NewSlicesRefreshed(id, n)); err != nil {
			q.logger.Warn("slice refresh event not published", "booking_id", id, "error", err)
		}
	}
}
