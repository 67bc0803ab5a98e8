/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY AND DATES:
  Monetary fields cross the wire as fixed 2dp strings, never floats.
  Dates are "YYYY-MM-DD", months "YYYY-MM", timestamps RFC3339.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/owners2/property-engine/booking"
	"github.com/owners2/property-engine/ledger"
)

// =============================================================================
// LEDGER TYPES
// =============================================================================

// LedgerEntryDTO represents one ledger row in API responses.
type LedgerEntryDTO struct {
	ID            int64  `json:"id"`
	UnitID        int64  `json:"unit_id"`
	TxnDate       string `json:"txn_date,omitempty"`
	Date          string `json:"date,omitempty"`
	YearMonth     string `json:"year_month,omitempty"`
	EntryType     string `json:"entry_type"`
	Amount        string `json:"amount"`
	BalanceAfter  string `json:"balance_after"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Reference     string `json:"reference,omitempty"`
	Note          string `json:"note,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
	CreatedBy     string `json:"created_by,omitempty"`
}

// CreateLedgerEntryRequest is the request body for creating or updating a
// ledger entry. Amount is sent unsigned; the server decides the stored
// sign from the entry type.
type CreateLedgerEntryRequest struct {
	UnitID        int64  `json:"unit_id"`
	TxnDate       string `json:"txn_date,omitempty"`
	Date          string `json:"date,omitempty"`
	EntryType     string `json:"entry_type"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Reference     string `json:"reference,omitempty"`
	Note          string `json:"note,omitempty"`
	CreatedBy     string `json:"created_by,omitempty"`
}

// =============================================================================
// BOOKING TYPES
// =============================================================================

// BookingDTO represents a booking in API responses.
type BookingDTO struct {
	ID       int64  `json:"id"`
	UnitID   int64  `json:"unit_id"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
	Nights   int    `json:"nights"`

	RoomFee           string `json:"room_fee"`
	Payout            string `json:"payout"`
	TaxAmount         string `json:"tax_amount"`
	CleaningFee       string `json:"cleaning_fee"`
	CommissionBase    string `json:"commission_base"`
	O2Commission      string `json:"o2_commission"`
	OwnerPayout       string `json:"owner_payout"`
	NetPayout         string `json:"net_payout"`
	CommissionPercent string `json:"commission_percent"`

	City          string `json:"city,omitempty"`
	Source        string `json:"source,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	GuestType     string `json:"guest_type,omitempty"`
	GuestName     string `json:"guest_name,omitempty"`
	Status        string `json:"status,omitempty"`

	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// CreateBookingRequest is the request body for creating or updating a
// booking.
type CreateBookingRequest struct {
	UnitID   int64  `json:"unit_id"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`

	RoomFee           string `json:"room_fee,omitempty"`
	Payout            string `json:"payout,omitempty"`
	TaxAmount         string `json:"tax_amount,omitempty"`
	CleaningFee       string `json:"cleaning_fee,omitempty"`
	CommissionBase    string `json:"commission_base,omitempty"`
	O2Commission      string `json:"o2_commission,omitempty"`
	OwnerPayout       string `json:"owner_payout,omitempty"`
	NetPayout         string `json:"net_payout,omitempty"`
	CommissionPercent string `json:"commission_percent,omitempty"`

	City          string `json:"city,omitempty"`
	Source        string `json:"source,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	GuestType     string `json:"guest_type,omitempty"`
	GuestName     string `json:"guest_name,omitempty"`
	Status        string `json:"status,omitempty"`
}

// MonthSliceDTO represents one (booking, month) slice.
type MonthSliceDTO struct {
	ID        int64  `json:"id"`
	BookingID int64  `json:"booking_id"`
	UnitID    int64  `json:"unit_id"`
	YearMonth string `json:"year_month"`

	NightsTotal   int    `json:"nights_total"`
	NightsInMonth int    `json:"nights_in_month"`
	ProrateFactor string `json:"prorate_factor"`

	RoomFeeInMonth        string `json:"room_fee_in_month"`
	PayoutInMonth         string `json:"payout_in_month"`
	TaxInMonth            string `json:"tax_in_month"`
	CleaningFeeInMonth    string `json:"cleaning_fee_in_month"`
	CommissionBaseInMonth string `json:"commission_base_in_month"`
	O2CommissionInMonth   string `json:"o2_commission_in_month"`
	OwnerPayoutInMonth    string `json:"owner_payout_in_month"`
	NetPayoutInMonth      string `json:"net_payout_in_month"`

	City          string `json:"city,omitempty"`
	Source        string `json:"source,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	GuestType     string `json:"guest_type,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

const dayFormat = "2006-01-02"

func toLedgerEntryDTO(e *ledger.Entry) LedgerEntryDTO {
	dto := LedgerEntryDTO{
		ID:            e.ID,
		UnitID:        e.UnitID,
		YearMonth:     e.YearMonth,
		EntryType:     string(e.EntryType),
		Amount:        e.Amount.StringFixed(2),
		BalanceAfter:  e.BalanceAfter.StringFixed(2),
		PaymentMethod: e.PaymentMethod,
		Reference:     e.Reference,
		Note:          e.Note,
		CreatedBy:     e.CreatedBy,
	}
	if !e.TxnDate.IsZero() {
		dto.TxnDate = e.TxnDate.Format(dayFormat)
	}
	if !e.Date.IsZero() {
		dto.Date = e.Date.Format(dayFormat)
	}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toBookingDTO(b *booking.Booking) BookingDTO {
	dto := BookingDTO{
		ID:                b.ID,
		UnitID:            b.UnitID,
		CheckIn:           b.CheckIn.Format(dayFormat),
		CheckOut:          b.CheckOut.Format(dayFormat),
		Nights:            b.Nights(),
		RoomFee:           b.RoomFee.StringFixed(2),
		Payout:            b.Payout.StringFixed(2),
		TaxAmount:         b.TaxAmount.StringFixed(2),
		CleaningFee:       b.CleaningFee.StringFixed(2),
		CommissionBase:    b.CommissionBase.StringFixed(2),
		O2Commission:      b.O2Commission.StringFixed(2),
		OwnerPayout:       b.OwnerPayout.StringFixed(2),
		NetPayout:         b.NetPayout.StringFixed(2),
		CommissionPercent: b.CommissionPercent.String(),
		City:              b.City,
		Source:            b.Source,
		PaymentMethod:     b.PaymentMethod,
		GuestType:         b.GuestType,
		GuestName:         b.GuestName,
		Status:            b.Status,
	}
	if !b.CreatedAt.IsZero() {
		dto.CreatedAt = b.CreatedAt.Format(time.RFC3339)
	}
	if !b.UpdatedAt.IsZero() {
		dto.UpdatedAt = b.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

func toMonthSliceDTO(sl *booking.MonthSlice) MonthSliceDTO {
	return MonthSliceDTO{
		ID:                    sl.ID,
		BookingID:             sl.BookingID,
		UnitID:                sl.UnitID,
		YearMonth:             sl.YearMonth,
		NightsTotal:           sl.NightsTotal,
		NightsInMonth:         sl.NightsInMonth,
		ProrateFactor:         sl.ProrateFactor.String(),
		RoomFeeInMonth:        sl.RoomFeeInMonth.StringFixed(2),
		PayoutInMonth:         sl.PayoutInMonth.StringFixed(2),
		TaxInMonth:            sl.TaxInMonth.StringFixed(2),
		CleaningFeeInMonth:    sl.CleaningFeeInMonth.StringFixed(2),
		CommissionBaseInMonth: sl.CommissionBaseInMonth.StringFixed(2),
		O2CommissionInMonth:   sl.O2CommissionInMonth.StringFixed(2),
		OwnerPayoutInMonth:    sl.OwnerPayoutInMonth.StringFixed(2),
		NetPayoutInMonth:      sl.NetPayoutInMonth.StringFixed(2),
		City:                  sl.City,
		Source:                sl.Source,
		PaymentMethod:         sl.PaymentMethod,
		GuestType:             sl.GuestType,
	}
}

func toMonthSliceDTOs(slices []booking.MonthSlice) []MonthSliceDTO {
	dtos := make([]MonthSliceDTO, len(slices))
	for i := range slices {
		dtos[i] = toMonthSliceDTO(&slices[i])
	}
	return dtos
}

// parseMoney parses an optional 2dp money string; empty means zero.
func parseMoney(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
