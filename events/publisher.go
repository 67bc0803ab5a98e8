/*
Package events publishes derived-state audit events.

PURPOSE:
  Downstream consumers (reporting caches, anomaly checks) can observe when
  derived state was rewritten without polling the tables. Publishing is
  strictly fail-soft: a broker outage must never affect the primary write
  or the derived-state refresh that triggered the event.
*/
package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TopicLedgerRecomputed = "ledger.recomputed"
	TopicSlicesRefreshed  = "booking.slices_refreshed"
)

type Publisher interface {
	Publish(topic string, event any) error
}

// LedgerRecomputed is emitted after a unit's running balances were rewritten.
type LedgerRecomputed struct {
	EventID    string    `json:"event_id"`
	UnitID     int64     `json:"unit_id"`
	Rows       int       `json:"rows"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SlicesRefreshed is emitted after a booking's month slices were replaced.
type SlicesRefreshed struct {
	EventID    string    `json:"event_id"`
	BookingID  int64     `json:"booking_id"`
	Slices     int       `json:"slices"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewLedgerRecomputed(unitID int64, rows int) LedgerRecomputed {
	return LedgerRecomputed{
		EventID:    uuid.NewString(),
		UnitID:     unitID,
		Rows:       rows,
		OccurredAt: time.Now().UTC(),
	}
}

func NewSlicesRefreshed(bookingID int64, slices int) SlicesRefreshed {
	return SlicesRefreshed{
		EventID:    uuid.NewString(),
		BookingID:  bookingID,
		Slices:     slices,
		OccurredAt: time.Now().UTC(),
	}
}

// Noop discards every event. Used when no broker is configured and in tests.
type Noop struct{}

func (Noop) Publish(string, any) error { return nil }
