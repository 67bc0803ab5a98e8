/*
handlers.go - HTTP API handlers for the property revenue engine

PURPOSE:
  Exposes the ledger, booking, and reporting services via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to
  domain logic. All writes go through the lifecycle layer so that the
  derived state (running balances, month slices) is refreshed with the
  same guarantees as any other mutation.

ENDPOINTS:
  Ledger:
    GET    /api/units/{unitId}/ledger            Entries in replay order
    GET    /api/units/{unitId}/closing-balance   Latest balance_after
    POST   /api/ledger                           Create entry
    GET    /api/ledger/{id}                      Get entry
    PUT    /api/ledger/{id}                      Update entry
    DELETE /api/ledger/{id}                      Delete entry

  Bookings:
    GET    /api/units/{unitId}/bookings          List bookings
    POST   /api/bookings                         Create booking
    GET    /api/bookings/{id}                    Get booking
    PUT    /api/bookings/{id}                    Update booking
    DELETE /api/bookings/{id}                    Delete booking
    GET    /api/bookings/{id}/slices             Booking's month slices

  Reporting:
    GET    /api/units/{unitId}/months/{month}/slices    Slices for month
    GET    /api/units/{unitId}/months/{month}/summary   Occupancy + totals
    POST   /api/units/{unitId}/months/{month}/report    Generate posting

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - lifecycle/: the write paths these handlers call
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/owners2/property-engine/booking"
	"github.com/owners2/property-engine/ledger"
	"github.com/owners2/property-engine/lifecycle"
	"github.com/owners2/property-engine/report"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ledger   *lifecycle.LedgerWriter
	Bookings *lifecycle.BookingWriter

	Entries      ledger.Store
	BookingStore booking.Store
	Slices       booking.SliceStore

	Postings  *report.PostingService
	Summaries *report.SummaryService
}

// =============================================================================
// LEDGER HANDLERS
// =============================================================================

// ListUnitLedger returns all entries for a unit in replay order
// (effectiveDate, then id), the same order the recompute engine walks.
func (h *Handler) ListUnitLedger(w http.ResponseWriter, r *http.Request) {
	unitID, ok := pathID(w, r, "unitId")
	if !ok {
		return
	}

	entries, err := h.Entries.ListByUnit(r.Context(), unitID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list ledger entries", err)
		return
	}
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := entries[i].EffectiveDate(), entries[j].EffectiveDate()
		if di.Equal(dj) {
			return entries[i].ID < entries[j].ID
		}
		return di.Before(dj)
	})

	dtos := make([]LedgerEntryDTO, len(entries))
	for i := range entries {
		dtos[i] = toLedgerEntryDTO(&entries[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetClosingBalance returns the unit's current closing balance.
func (h *Handler) GetClosingBalance(w http.ResponseWriter, r *http.Request) {
	unitID, ok := pathID(w, r, "unitId")
	if !ok {
		return
	}

	closing, err := h.Summaries.ClosingBalance(r.Context(), unitID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute closing balance", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"unit_id":         unitID,
		"closing_balance": closing.StringFixed(2),
	})
}

// CreateLedgerEntry creates a new ledger entry and recomputes the unit's
// running balances.
func (h *Handler) CreateLedgerEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateLedgerEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	entry, err := requestToEntry(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ledger entry", err)
		return
	}

	if err := h.Ledger.Create(r.Context(), entry); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ledger.ErrUnitRequired) {
			status = http.StatusBadRequest
		}
		writeError(w, status, "Failed to create ledger entry", err)
		return
	}

	// Reload: the recompute rewrote balance_after.
	stored, err := h.Entries.Get(r.Context(), entry.ID)
	if err != nil {
		stored = entry
	}
	writeJSON(w, http.StatusCreated, toLedgerEntryDTO(stored))
}

// GetLedgerEntry returns a single entry.
func (h *Handler) GetLedgerEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	entry, err := h.Entries.Get(r.Context(), id)
	if errors.Is(err, ledger.ErrEntryNotFound) {
		writeError(w, http.StatusNotFound, "Ledger entry not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get ledger entry", err)
		return
	}
	writeJSON(w, http.StatusOK, toLedgerEntryDTO(entry))
}

// UpdateLedgerEntry rewrites an entry and recomputes.
func (h *Handler) UpdateLedgerEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req CreateLedgerEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	entry, err := requestToEntry(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ledger entry", err)
		return
	}
	entry.ID = id

	if err := h.Ledger.Update(r.Context(), entry); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, ledger.ErrEntryNotFound):
			status = http.StatusNotFound
		case errors.Is(err, ledger.ErrUnitRequired):
			status = http.StatusBadRequest
		}
		writeError(w, status, "Failed to update ledger entry", err)
		return
	}

	stored, err := h.Entries.Get(r.Context(), id)
	if err != nil {
		stored = entry
	}
	writeJSON(w, http.StatusOK, toLedgerEntryDTO(stored))
}

// DeleteLedgerEntry removes an entry and recomputes the remaining rows.
func (h *Handler) DeleteLedgerEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Ledger.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ledger.ErrEntryNotFound) {
			writeError(w, http.StatusNotFound, "Ledger entry not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete ledger entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// BOOKING HANDLERS
// =============================================================================

// ListUnitBookings returns all bookings for a unit.
func (h *Handler) ListUnitBookings(w http.ResponseWriter, r *http.Request) {
	unitID, ok := pathID(w, r, "unitId")
	if !ok {
		return
	}

	bookings, err := h.BookingStore.ListBookingsByUnit(r.Context(), unitID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bookings", err)
		return
	}

	dtos := make([]BookingDTO, len(bookings))
	for i := range bookings {
		dtos[i] = toBookingDTO(&bookings[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateBooking creates a booking and materializes its month slices.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	b, err := requestToBooking(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid booking", err)
		return
	}

	if err := h.Bookings.Create(r.Context(), b); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, booking.ErrInvalidRange) {
			status = http.StatusBadRequest
		}
		writeError(w, status, "Failed to create booking", err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingDTO(b))
}

// GetBooking returns a single booking.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	b, err := h.BookingStore.GetBooking(r.Context(), id)
	if errors.Is(err, booking.ErrBookingNotFound) {
		writeError(w, http.StatusNotFound, "Booking not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get booking", err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTO(b))
}

// UpdateBooking rewrites a booking and refreshes slices for the union of
// its old and new month ranges.
func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	b, err := requestToBooking(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid booking", err)
		return
	}
	b.ID = id

	if err := h.Bookings.Update(r.Context(), b); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, booking.ErrBookingNotFound):
			status = http.StatusNotFound
		case errors.Is(err, booking.ErrInvalidRange):
			status = http.StatusBadRequest
		}
		writeError(w, status, "Failed to update booking", err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTO(b))
}

// DeleteBooking removes a booking and purges its slices.
func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Bookings.Delete(r.Context(), id); err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			writeError(w, http.StatusNotFound, "Booking not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete booking", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListBookingSlices returns the booking's materialized month slices.
func (h *Handler) ListBookingSlices(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	slices, err := h.Slices.ListForBooking(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list slices", err)
		return
	}
	writeJSON(w, http.StatusOK, toMonthSliceDTOs(slices))
}

// =============================================================================
// REPORTING HANDLERS
// =============================================================================

// ListUnitMonthSlices returns every slice for a (unit, month).
func (h *Handler) ListUnitMonthSlices(w http.ResponseWriter, r *http.Request) {
	unitID, ok := pathID(w, r, "unitId")
	if !ok {
		return
	}
	yearMonth, ok := pathMonth(w, r)
	if !ok {
		return
	}

	slices, err := h.Slices.ListForUnitMonth(r.Context(), unitID, yearMonth)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list slices", err)
		return
	}
	writeJSON(w, http.StatusOK, toMonthSliceDTOs(slices))
}

// GetMonthSummary returns occupancy and financial totals for a month.
func (h *Handler) GetMonthSummary(w http.ResponseWriter, r *http.Request) {
	unitID, ok := pathID(w, r, "unitId")
	if !ok {
		return
	}
	yearMonth, ok := pathMonth(w, r)
	if !ok {
		return
	}

	summary, err := h.Summaries.MonthSummary(r.Context(), unitID, yearMonth)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build month summary", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GenerateReport computes the unit's month and upserts its report posting.
// ?replace=false keeps an existing posting instead of regenerating it.
func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	unitID, ok := pathID(w, r, "unitId")
	if !ok {
		return
	}
	yearMonth, ok := pathMonth(w, r)
	if !ok {
		return
	}
	replace := r.URL.Query().Get("replace") != "false"
	createdBy := r.URL.Query().Get("created_by")

	posting, err := h.Postings.Generate(r.Context(), unitID, yearMonth, replace, createdBy)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate report posting", err)
		return
	}
	writeJSON(w, http.StatusOK, posting)
}

// =============================================================================
// REQUEST PARSING
// =============================================================================

func requestToEntry(req *CreateLedgerEntryRequest) (*ledger.Entry, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, err
	}
	entry := &ledger.Entry{
		UnitID:        req.UnitID,
		EntryType:     ledger.EntryType(req.EntryType),
		Amount:        amount,
		PaymentMethod: req.PaymentMethod,
		Reference:     req.Reference,
		Note:          req.Note,
		CreatedBy:     req.CreatedBy,
	}
	if req.TxnDate != "" {
		if entry.TxnDate, err = time.Parse(dayFormat, req.TxnDate); err != nil {
			return nil, err
		}
	}
	if req.Date != "" {
		if entry.Date, err = time.Parse(dayFormat, req.Date); err != nil {
			return nil, err
		}
	}
	return entry, nil
}

func requestToBooking(req *CreateBookingRequest) (*booking.Booking, error) {
	checkIn, err := time.Parse(dayFormat, req.CheckIn)
	if err != nil {
		return nil, err
	}
	checkOut, err := time.Parse(dayFormat, req.CheckOut)
	if err != nil {
		return nil, err
	}

	b := &booking.Booking{
		UnitID:        req.UnitID,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		City:          req.City,
		Source:        req.Source,
		PaymentMethod: req.PaymentMethod,
		GuestType:     req.GuestType,
		GuestName:     req.GuestName,
		Status:        req.Status,
	}

	fields := []struct {
		raw string
		dst *decimal.Decimal
	}{
		{req.RoomFee, &b.RoomFee},
		{req.Payout, &b.Payout},
		{req.TaxAmount, &b.TaxAmount},
		{req.CleaningFee, &b.CleaningFee},
		{req.CommissionBase, &b.CommissionBase},
		{req.O2Commission, &b.O2Commission},
		{req.OwnerPayout, &b.OwnerPayout},
		{req.NetPayout, &b.NetPayout},
		{req.CommissionPercent, &b.CommissionPercent},
	}
	for _, f := range fields {
		if *f.dst, err = parseMoney(f.raw); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// pathID parses a numeric chi path parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid "+name, err)
		return 0, false
	}
	return id, true
}

// pathMonth parses the {month} path parameter as YYYY-MM.
func pathMonth(w http.ResponseWriter, r *http.Request) (string, bool) {
	month := chi.URLParam(r, "month")
	if _, err := time.Parse("2006-01", month); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return "", false
	}
	return month, true
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
