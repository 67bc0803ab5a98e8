/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements all persistence interfaces (ledger.Store, booking.Store,
  booking.SliceStore) using SQLite. In production the same patterns apply
  to PostgreSQL - see store/postgres.

KEY TABLES:
  unit_balance_ledger: financial movements per unit; balance_after and
                       yearmonth are derived columns rewritten by the
                       recompute engine
  bookings:            source-of-truth reservations
  booking_month_slice: derived per-month revenue rows, unique on
                       (booking_id, year_month)

MONEY:
  Decimals are stored as 2dp strings and parsed back through
  shopspring/decimal. No float conversion anywhere on the read or write
  path.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety plus WAL mode. The ledger recompute
  engine additionally serializes per unit in-process; SQLite's single
  writer covers the rest.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool with versioned migrations.

SEE ALSO:
  - ledger/store.go, booking/store.go: interface definitions
  - store/postgres: production implementation with advisory locks
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/owners2/property-engine/booking"
	"github.com/owners2/property-engine/ledger"
)

const dayFormat = "2006-01-02"

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite has a single writer, and a second pooled connection to a
	// ":memory:" path would see a different empty database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Unit ledger (source of truth; balance_after/yearmonth are derived)
	CREATE TABLE IF NOT EXISTS unit_balance_ledger (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		unit_id INTEGER NOT NULL,
		txn_date TEXT,
		date TEXT,
		yearmonth TEXT,
		entry_type TEXT NOT NULL,
		amount TEXT NOT NULL DEFAULT '0.00',
		balance_after TEXT NOT NULL DEFAULT '0.00',
		payment_method TEXT,
		reference TEXT,
		note TEXT,
		created_at TEXT NOT NULL,
		created_by TEXT NOT NULL DEFAULT 'system',
		updated_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_unit
		ON unit_balance_ledger(unit_id);
	CREATE INDEX IF NOT EXISTS idx_ledger_unit_yearmonth
		ON unit_balance_ledger(unit_id, yearmonth);
	CREATE INDEX IF NOT EXISTS idx_ledger_entry_type
		ON unit_balance_ledger(entry_type);

	-- Bookings (source of truth for slices)
	CREATE TABLE IF NOT EXISTS bookings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		unit_id INTEGER NOT NULL,
		check_in TEXT NOT NULL,
		check_out TEXT NOT NULL,
		room_fee TEXT NOT NULL DEFAULT '0.00',
		payout TEXT NOT NULL DEFAULT '0.00',
		tax_amount TEXT NOT NULL DEFAULT '0.00',
		cleaning_fee TEXT NOT NULL DEFAULT '0.00',
		commission_base TEXT NOT NULL DEFAULT '0.00',
		commission_value TEXT NOT NULL DEFAULT '0.00',
		client_income TEXT NOT NULL DEFAULT '0.00',
		net_payout TEXT NOT NULL DEFAULT '0.00',
		commission_percent TEXT NOT NULL DEFAULT '0',
		city TEXT,
		source TEXT,
		payment_method TEXT,
		guest_type TEXT,
		guest_name TEXT,
		status TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bookings_unit
		ON bookings(unit_id);
	CREATE INDEX IF NOT EXISTS idx_bookings_checkin
		ON bookings(check_in);

	-- Derived month slices, replaced wholesale per booking
	CREATE TABLE IF NOT EXISTS booking_month_slice (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		booking_id INTEGER NOT NULL,
		unit_id INTEGER NOT NULL,
		year_month TEXT NOT NULL,
		month_start_date TEXT NOT NULL,
		month_end_date TEXT NOT NULL,
		nights_total INTEGER NOT NULL DEFAULT 0,
		nights_in_month INTEGER NOT NULL DEFAULT 0,
		prorate_factor TEXT NOT NULL DEFAULT '0',
		room_fee_in_month TEXT NOT NULL DEFAULT '0.00',
		payout_in_month TEXT NOT NULL DEFAULT '0.00',
		tax_in_month TEXT NOT NULL DEFAULT '0.00',
		cleaning_fee_in_month TEXT NOT NULL DEFAULT '0.00',
		commission_base_in_month TEXT NOT NULL DEFAULT '0.00',
		o2_commission_in_month TEXT NOT NULL DEFAULT '0.00',
		owner_payout_in_month TEXT NOT NULL DEFAULT '0.00',
		net_payout_in_month TEXT NOT NULL DEFAULT '0.00',
		city TEXT,
		source TEXT,
		payment_method TEXT,
		guest_type TEXT,
		UNIQUE(booking_id, year_month)
	);

	CREATE INDEX IF NOT EXISTS idx_slice_unit_month
		ON booking_month_slice(unit_id, year_month);
	CREATE INDEX IF NOT EXISTS idx_slice_booking
		ON booking_month_slice(booking_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LEDGER STORE (ledger.Store interface)
// =============================================================================

// Insert persists a new ledger entry and assigns its ID.
func (s *Store) Insert(ctx context.Context, e *ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO unit_balance_ledger
		(unit_id, txn_date, date, yearmonth, entry_type, amount, balance_after,
		 payment_method, reference, note, created_at, created_by, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UnitID,
		dayOrNull(e.TxnDate),
		dayOrNull(e.Date),
		nullString(e.YearMonth),
		string(e.EntryType),
		e.Amount.StringFixed(2),
		e.BalanceAfter.StringFixed(2),
		nullString(e.PaymentMethod),
		nullString(e.Reference),
		nullString(e.Note),
		e.CreatedAt.UTC().Format(time.RFC3339),
		e.CreatedBy,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	e.ID, err = res.LastInsertId()
	return err
}

// Update rewrites an existing ledger entry.
func (s *Store) Update(ctx context.Context, e *ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE unit_balance_ledger
		SET unit_id = ?, txn_date = ?, date = ?, yearmonth = ?, entry_type = ?,
		    amount = ?, payment_method = ?, reference = ?, note = ?,
		    created_by = ?, updated_at = ?
		WHERE id = ?`,
		e.UnitID,
		dayOrNull(e.TxnDate),
		dayOrNull(e.Date),
		nullString(e.YearMonth),
		string(e.EntryType),
		e.Amount.StringFixed(2),
		nullString(e.PaymentMethod),
		nullString(e.Reference),
		nullString(e.Note),
		e.CreatedBy,
		time.Now().UTC().Format(time.RFC3339),
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ledger entry: %w", err)
	}
	return requireRow(res, ledger.ErrEntryNotFound)
}

// Delete removes a ledger entry.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM unit_balance_ledger WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete ledger entry: %w", err)
	}
	return requireRow(res, ledger.ErrEntryNotFound)
}

// Get loads a single ledger entry by ID.
func (s *Store) Get(ctx context.Context, id int64) (*ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, ledgerSelect+" WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entry: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ledger.ErrEntryNotFound
	}
	e, err := scanEntry(rows)
	if err != nil {
		return nil, err
	}
	return &e, rows.Err()
}

// ListByUnit returns every entry for a unit in storage order. Ordering by
// effective date is the recompute engine's job, not SQL's.
func (s *Store) ListByUnit(ctx context.Context, unitID int64) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, ledgerSelect+" WHERE unit_id = ?", unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpdateBalances applies a recompute result in a single transaction.
func (s *Store) UpdateBalances(ctx context.Context, unitID int64, updates []ledger.BalanceUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, u := range updates {
		if _, err := tx.ExecContext(ctx, `
			UPDATE unit_balance_ledger
			SET balance_after = ?, yearmonth = ?, updated_at = ?
			WHERE id = ?`,
			u.BalanceAfter, u.YearMonth, now, u.EntryID,
		); err != nil {
			return fmt.Errorf("failed to rewrite balance for entry %d: %w", u.EntryID, err)
		}
	}
	return tx.Commit()
}

const ledgerSelect = `
	SELECT id, unit_id, txn_date, date, yearmonth, entry_type, amount,
	       balance_after, payment_method, reference, note, created_at, created_by
	FROM unit_balance_ledger`

func scanEntry(rows *sql.Rows) (ledger.Entry, error) {
	var (
		e                          ledger.Entry
		txnDate, date, yearMonth   sql.NullString
		entryType, amount, balance string
		payMethod, reference, note sql.NullString
		createdAt                  string
	)
	if err := rows.Scan(&e.ID, &e.UnitID, &txnDate, &date, &yearMonth,
		&entryType, &amount, &balance, &payMethod, &reference, &note,
		&createdAt, &e.CreatedBy); err != nil {
		return ledger.Entry{}, fmt.Errorf("failed to scan ledger entry: %w", err)
	}
	e.TxnDate = parseDay(txnDate)
	e.Date = parseDay(date)
	e.YearMonth = yearMonth.String
	e.EntryType = ledger.EntryType(entryType)
	e.Amount = mustDecimal(amount)
	e.BalanceAfter = mustDecimal(balance)
	e.PaymentMethod = payMethod.String
	e.Reference = reference.String
	e.Note = note.String
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return e, nil
}

// ListUnits returns every distinct unit that has ledger or slice rows.
// Used by the report scheduler to enumerate units worth closing.
func (s *Store) ListUnits(ctx context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT unit_id FROM unit_balance_ledger
		UNION
		SELECT unit_id FROM booking_month_slice`)
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer rows.Close()

	var units []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan unit id: %w", err)
		}
		units = append(units, id)
	}
	return units, rows.Err()
}

// =============================================================================
// BOOKING STORE (booking.Store interface)
// =============================================================================

// InsertBooking persists a new booking and assigns its ID.
func (s *Store) InsertBooking(ctx context.Context, b *booking.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO bookings
		(unit_id, check_in, check_out, room_fee, payout, tax_amount,
		 cleaning_fee, commission_base, commission_value, client_income,
		 net_payout, commission_percent, city, source, payment_method,
		 guest_type, guest_name, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.UnitID,
		b.CheckIn.Format(dayFormat),
		b.CheckOut.Format(dayFormat),
		b.RoomFee.StringFixed(2),
		b.Payout.StringFixed(2),
		b.TaxAmount.StringFixed(2),
		b.CleaningFee.StringFixed(2),
		b.CommissionBase.StringFixed(2),
		b.O2Commission.StringFixed(2),
		b.OwnerPayout.StringFixed(2),
		b.NetPayout.StringFixed(2),
		b.CommissionPercent.String(),
		nullString(b.City),
		nullString(b.Source),
		nullString(b.PaymentMethod),
		nullString(b.GuestType),
		nullString(b.GuestName),
		nullString(b.Status),
		b.CreatedAt.UTC().Format(time.RFC3339),
		b.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	b.ID, err = res.LastInsertId()
	return err
}

// UpdateBooking rewrites an existing booking.
func (s *Store) UpdateBooking(ctx context.Context, b *booking.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE bookings
		SET unit_id = ?, check_in = ?, check_out = ?, room_fee = ?, payout = ?,
		    tax_amount = ?, cleaning_fee = ?, commission_base = ?,
		    commission_value = ?, client_income = ?, net_payout = ?,
		    commission_percent = ?, city = ?, source = ?, payment_method = ?,
		    guest_type = ?, guest_name = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		b.UnitID,
		b.CheckIn.Format(dayFormat),
		b.CheckOut.Format(dayFormat),
		b.RoomFee.StringFixed(2),
		b.Payout.StringFixed(2),
		b.TaxAmount.StringFixed(2),
		b.CleaningFee.StringFixed(2),
		b.CommissionBase.StringFixed(2),
		b.O2Commission.StringFixed(2),
		b.OwnerPayout.StringFixed(2),
		b.NetPayout.StringFixed(2),
		b.CommissionPercent.String(),
		nullString(b.City),
		nullString(b.Source),
		nullString(b.PaymentMethod),
		nullString(b.GuestType),
		nullString(b.GuestName),
		nullString(b.Status),
		b.UpdatedAt.UTC().Format(time.RFC3339),
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return requireRow(res, booking.ErrBookingNotFound)
}

// DeleteBooking removes a booking.
func (s *Store) DeleteBooking(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return requireRow(res, booking.ErrBookingNotFound)
}

// GetBooking loads a booking by ID.
func (s *Store) GetBooking(ctx context.Context, id int64) (*booking.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, bookingSelect+" WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query booking: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, booking.ErrBookingNotFound
	}
	b, err := scanBooking(rows)
	if err != nil {
		return nil, err
	}
	return &b, rows.Err()
}

// ListBookingsByUnit returns all bookings for a unit, newest check-in first.
func (s *Store) ListBookingsByUnit(ctx context.Context, unitID int64) ([]booking.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		bookingSelect+" WHERE unit_id = ? ORDER BY check_in DESC", unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

const bookingSelect = `
	SELECT id, unit_id, check_in, check_out, room_fee, payout, tax_amount,
	       cleaning_fee, commission_base, commission_value, client_income,
	       net_payout, commission_percent, city, source, payment_method,
	       guest_type, guest_name, status, created_at, updated_at
	FROM bookings`

func scanBooking(rows *sql.Rows) (booking.Booking, error) {
	var (
		b                             booking.Booking
		checkIn, checkOut             string
		roomFee, payout, taxAmount    string
		cleaningFee, commissionBase   string
		commissionValue, clientIncome string
		netPayout, commissionPercent  string
		city, source, payMethod       sql.NullString
		guestType, guestName, status  sql.NullString
		createdAt, updatedAt          string
	)
	if err := rows.Scan(&b.ID, &b.UnitID, &checkIn, &checkOut, &roomFee,
		&payout, &taxAmount, &cleaningFee, &commissionBase, &commissionValue,
		&clientIncome, &netPayout, &commissionPercent, &city, &source,
		&payMethod, &guestType, &guestName, &status, &createdAt,
		&updatedAt); err != nil {
		return booking.Booking{}, fmt.Errorf("failed to scan booking: %w", err)
	}
	b.CheckIn, _ = time.Parse(dayFormat, checkIn)
	b.CheckOut, _ = time.Parse(dayFormat, checkOut)
	b.RoomFee = mustDecimal(roomFee)
	b.Payout = mustDecimal(payout)
	b.TaxAmount = mustDecimal(taxAmount)
	b.CleaningFee = mustDecimal(cleaningFee)
	b.CommissionBase = mustDecimal(commissionBase)
	b.O2Commission = mustDecimal(commissionValue)
	b.OwnerPayout = mustDecimal(clientIncome)
	b.NetPayout = mustDecimal(netPayout)
	b.CommissionPercent = mustDecimal(commissionPercent)
	b.City = city.String
	b.Source = source.String
	b.PaymentMethod = payMethod.String
	b.GuestType = guestType.String
	b.GuestName = guestName.String
	b.Status = status.String
	b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	b.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return b, nil
}

// =============================================================================
// SLICE STORE (booking.SliceStore interface)
// =============================================================================

// ReplaceForMonths deletes the booking's slices for the given months and
// inserts the fresh ones in a single transaction.
func (s *Store) ReplaceForMonths(ctx context.Context, bookingID int64, months []string, slices []booking.MonthSlice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if len(months) > 0 {
		placeholders := strings.Repeat("?,", len(months)-1) + "?"
		args := make([]any, 0, len(months)+1)
		args = append(args, bookingID)
		for _, m := range months {
			args = append(args, m)
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM booking_month_slice WHERE booking_id = ? AND year_month IN ("+placeholders+")",
			args...,
		); err != nil {
			return fmt.Errorf("failed to delete stale slices: %w", err)
		}
	}

	for i := range slices {
		sl := &slices[i]
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO booking_month_slice
			(booking_id, unit_id, year_month, month_start_date, month_end_date,
			 nights_total, nights_in_month, prorate_factor,
			 room_fee_in_month, payout_in_month, tax_in_month,
			 cleaning_fee_in_month, commission_base_in_month,
			 o2_commission_in_month, owner_payout_in_month, net_payout_in_month,
			 city, source, payment_method, guest_type)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sl.BookingID,
			sl.UnitID,
			sl.YearMonth,
			sl.MonthStartDate.Format(dayFormat),
			sl.MonthEndDate.Format(dayFormat),
			sl.NightsTotal,
			sl.NightsInMonth,
			sl.ProrateFactor.String(),
			sl.RoomFeeInMonth.StringFixed(2),
			sl.PayoutInMonth.StringFixed(2),
			sl.TaxInMonth.StringFixed(2),
			sl.CleaningFeeInMonth.StringFixed(2),
			sl.CommissionBaseInMonth.StringFixed(2),
			sl.O2CommissionInMonth.StringFixed(2),
			sl.OwnerPayoutInMonth.StringFixed(2),
			sl.NetPayoutInMonth.StringFixed(2),
			nullString(sl.City),
			nullString(sl.Source),
			nullString(sl.PaymentMethod),
			nullString(sl.GuestType),
		); err != nil {
			return fmt.Errorf("failed to insert slice %s: %w", sl.YearMonth, err)
		}
	}
	return tx.Commit()
}

// DeleteForBooking removes every slice of a booking.
func (s *Store) DeleteForBooking(ctx context.Context, bookingID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM booking_month_slice WHERE booking_id = ?", bookingID)
	if err != nil {
		return fmt.Errorf("failed to delete slices: %w", err)
	}
	return nil
}

// ListForBooking returns a booking's slices ordered by year_month.
func (s *Store) ListForBooking(ctx context.Context, bookingID int64) ([]booking.MonthSlice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.querySlices(ctx,
		sliceSelect+" WHERE booking_id = ? ORDER BY year_month ASC", bookingID)
}

// ListForUnitMonth returns all slices for (unit, YYYY-MM).
func (s *Store) ListForUnitMonth(ctx context.Context, unitID int64, yearMonth string) ([]booking.MonthSlice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.querySlices(ctx,
		sliceSelect+" WHERE unit_id = ? AND year_month = ? ORDER BY booking_id ASC",
		unitID, yearMonth)
}

const sliceSelect = `
	SELECT id, booking_id, unit_id, year_month, month_start_date,
	       month_end_date, nights_total, nights_in_month, prorate_factor,
	       room_fee_in_month, payout_in_month, tax_in_month,
	       cleaning_fee_in_month, commission_base_in_month,
	       o2_commission_in_month, owner_payout_in_month, net_payout_in_month,
	       city, source, payment_method, guest_type
	FROM booking_month_slice`

func (s *Store) querySlices(ctx context.Context, query string, args ...any) ([]booking.MonthSlice, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query slices: %w", err)
	}
	defer rows.Close()

	var slices []booking.MonthSlice
	for rows.Next() {
		var (
			sl                             booking.MonthSlice
			monthStart, monthEnd, factor   string
			roomFee, payout, tax, cleaning string
			commBase, o2Comm, owner, net   string
			city, source, payMethod, gtype sql.NullString
		)
		if err := rows.Scan(&sl.ID, &sl.BookingID, &sl.UnitID, &sl.YearMonth,
			&monthStart, &monthEnd, &sl.NightsTotal, &sl.NightsInMonth,
			&factor, &roomFee, &payout, &tax, &cleaning, &commBase, &o2Comm,
			&owner, &net, &city, &source, &payMethod, &gtype); err != nil {
			return nil, fmt.Errorf("failed to scan slice: %w", err)
		}
		sl.MonthStartDate, _ = time.Parse(dayFormat, monthStart)
		sl.MonthEndDate, _ = time.Parse(dayFormat, monthEnd)
		sl.ProrateFactor = mustDecimal(factor)
		sl.RoomFeeInMonth = mustDecimal(roomFee)
		sl.PayoutInMonth = mustDecimal(payout)
		sl.TaxInMonth = mustDecimal(tax)
		sl.CleaningFeeInMonth = mustDecimal(cleaning)
		sl.CommissionBaseInMonth = mustDecimal(commBase)
		sl.O2CommissionInMonth = mustDecimal(o2Comm)
		sl.OwnerPayoutInMonth = mustDecimal(owner)
		sl.NetPayoutInMonth = mustDecimal(net)
		sl.City = city.String
		sl.Source = source.String
		sl.PaymentMethod = payMethod.String
		sl.GuestType = gtype.String
		slices = append(slices, sl)
	}
	return slices, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func dayOrNull(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(dayFormat)
}

func parseDay(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(dayFormat, s.String)
	if err != nil {
		// Older rows may carry full timestamps.
		t, _ = time.Parse(time.RFC3339, s.String)
	}
	return t
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func requireRow(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}
