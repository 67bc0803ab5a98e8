/*
booking_writer.go - Booking write path

PURPOSE:
  The single entry point for booking mutations. Captures the old date range
  from the stored row before an update or delete, performs the primary
  write, then drains the slice refresh queue. Updates that touch none of
  the slice-relevant fields skip the refresh entirely.
*/
package lifecycle

import (
	"context"
	"time"

	"github.com/owners2/property-engine/booking"
)

type BookingWriter struct {
	store booking.Store
	queue *Queue
}

func NewBookingWriter(store booking.Store, queue *Queue) *BookingWriter {
	return &BookingWriter{store: store, queue: queue}
}

// Create validates and inserts a booking, then materializes its slices.
// The refresh job is captured before the insert (ID still pending) and
// resolved after, mirroring the deferred-ID flush pattern.
func (w *BookingWriter) Create(ctx context.Context, b *booking.Booking) error {
	if b.CheckOut.Before(b.CheckIn) {
		return booking.ErrInvalidRange
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	q := w.queue.fork()
	q.enqueueInsert(b)
	if err := w.store.InsertBooking(ctx, b); err != nil {
		return err
	}
	q.drain(ctx)
	return nil
}

// Update rewrites a booking and refreshes slices for the union of the old
// and new month ranges, so a booking moved across a month boundary loses
// its stale slice.
func (w *BookingWriter) Update(ctx context.Context, b *booking.Booking) error {
	if b.CheckOut.Before(b.CheckIn) {
		return booking.ErrInvalidRange
	}
	prev, err := w.store.GetBooking(ctx, b.ID)
	if err != nil {
		return err
	}
	b.CreatedAt = prev.CreatedAt
	b.UpdatedAt = time.Now().UTC()

	q := w.queue.fork()
	if sliceRelevantChanged(prev, b) {
		q.enqueueUpdate(b.ID, prev.Range(), b.Range())
	}
	if err := w.store.UpdateBooking(ctx, b); err != nil {
		return err
	}
	q.drain(ctx)
	return nil
}

// Delete removes a booking and purges its slices.
func (w *BookingWriter) Delete(ctx context.Context, id int64) error {
	prev, err := w.store.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	q := w.queue.fork()
	q.enqueueDelete(id, prev.Range())
	if err := w.store.DeleteBooking(ctx, id); err != nil {
		return err
	}
	q.drain(ctx)
	return nil
}

// sliceRelevantChanged reports whether any field that feeds the slice
// computation differs between the stored and incoming booking. UnitID and
// City are copied onto every slice, so they count too: a booking moved to
// another unit must take its slices with it.
func sliceRelevantChanged(old, cur *booking.Booking) bool {
	if old.UnitID != cur.UnitID {
		return true
	}
	if !old.CheckIn.Equal(cur.CheckIn) || !old.CheckOut.Equal(cur.CheckOut) {
		return true
	}
	moneyChanged := !old.RoomFee.Equal(cur.RoomFee) ||
		!old.Payout.Equal(cur.Payout) ||
		!old.TaxAmount.Equal(cur.TaxAmount) ||
		!old.CleaningFee.Equal(cur.CleaningFee) ||
		!old.CommissionBase.Equal(cur.CommissionBase) ||
		!old.O2Commission.Equal(cur.O2Commission) ||
		!old.OwnerPayout.Equal(cur.OwnerPayout) ||
		!old.NetPayout.Equal(cur.NetPayout) ||
		!old.CommissionPercent.Equal(cur.CommissionPercent)
	if moneyChanged {
		return true
	}
	return old.City != cur.City ||
		old.PaymentMethod != cur.PaymentMethod ||
		old.GuestType != cur.GuestType ||
		old.Status != cur.Status ||
		old.Source != cur.Source
}
