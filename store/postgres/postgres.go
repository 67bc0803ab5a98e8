/*
Package postgres provides the production PostgreSQL implementation of the
storage interfaces.

PURPOSE:
  Same interfaces as store/sqlite (ledger.Store, booking.Store,
  booking.SliceStore), plus ledger.UnitLocker: a per-unit advisory lock
  held across the recompute engine's reload-sort-rewrite cycle, so two
  application instances cannot interleave reads and writes on the same
  unit's balances.

LOCKING:
  pg_advisory_lock(classLedger, unitId) on a dedicated connection. Session
  scope rather than transaction scope because the cycle spans a read
  outside the write transaction. The returned release func unlocks and
  returns the connection.

SEE ALSO:
  - store/sqlite: reference implementation and schema documentation
*/
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/owners2/property-engine/booking"
	"github.com/owners2/property-engine/ledger"
)

// Advisory lock class for ledger recompute, paired with the unit ID.
const lockClassLedger = 7201

type Store struct {
	db *sql.DB
}

// New connects and migrates. dsn is a lib/pq connection string.
func New(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS unit_balance_ledger (
		id BIGSERIAL PRIMARY KEY,
		unit_id BIGINT NOT NULL,
		txn_date DATE,
		date DATE,
		yearmonth VARCHAR(7),
		entry_type VARCHAR(32) NOT NULL,
		amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		balance_after NUMERIC(12,2) NOT NULL DEFAULT 0,
		payment_method VARCHAR(64),
		reference VARCHAR(128),
		note TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		created_by VARCHAR(120) NOT NULL DEFAULT 'system',
		updated_at TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS idx_ledger_unit
		ON unit_balance_ledger(unit_id);
	CREATE INDEX IF NOT EXISTS idx_ledger_unit_yearmonth
		ON unit_balance_ledger(unit_id, yearmonth);

	CREATE TABLE IF NOT EXISTS bookings (
		id BIGSERIAL PRIMARY KEY,
		unit_id BIGINT NOT NULL,
		check_in DATE NOT NULL,
		check_out DATE NOT NULL,
		room_fee NUMERIC(12,2) NOT NULL DEFAULT 0,
		payout NUMERIC(12,2) NOT NULL DEFAULT 0,
		tax_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		cleaning_fee NUMERIC(12,2) NOT NULL DEFAULT 0,
		commission_base NUMERIC(12,2) NOT NULL DEFAULT 0,
		commission_value NUMERIC(12,2) NOT NULL DEFAULT 0,
		client_income NUMERIC(12,2) NOT NULL DEFAULT 0,
		net_payout NUMERIC(12,2) NOT NULL DEFAULT 0,
		commission_percent NUMERIC(7,4) NOT NULL DEFAULT 0,
		city VARCHAR(64),
		source VARCHAR(32),
		payment_method VARCHAR(32),
		guest_type VARCHAR(32),
		guest_name VARCHAR(128),
		status VARCHAR(32),
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_bookings_unit ON bookings(unit_id);

	CREATE TABLE IF NOT EXISTS booking_month_slice (
		id BIGSERIAL PRIMARY KEY,
		booking_id BIGINT NOT NULL,
		unit_id BIGINT NOT NULL,
		year_month VARCHAR(7) NOT NULL,
		month_start_date DATE NOT NULL,
		month_end_date DATE NOT NULL,
		nights_total INT NOT NULL DEFAULT 0,
		nights_in_month INT NOT NULL DEFAULT 0,
		prorate_factor NUMERIC(12,10) NOT NULL DEFAULT 0,
		room_fee_in_month NUMERIC(12,2) NOT NULL DEFAULT 0,
		payout_in_month NUMERIC(12,2) NOT NULL DEFAULT 0,
		tax_in_month NUMERIC(12,2) NOT NULL DEFAULT 0,
		cleaning_fee_in_month NUMERIC(12,2) NOT NULL DEFAULT 0,
		commission_base_in_month NUMERIC(12,2) NOT NULL DEFAULT 0,
		o2_commission_in_month NUMERIC(12,2) NOT NULL DEFAULT 0,
		owner_payout_in_month NUMERIC(12,2) NOT NULL DEFAULT 0,
		net_payout_in_month NUMERIC(12,2) NOT NULL DEFAULT 0,
		city VARCHAR(64),
		source VARCHAR(32),
		payment_method VARCHAR(32),
		guest_type VARCHAR(32),
		UNIQUE(booking_id, year_month)
	);
	CREATE INDEX IF NOT EXISTS idx_slice_unit_month
		ON booking_month_slice(unit_id, year_month);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// UNIT LOCKER (ledger.UnitLocker interface)
// =============================================================================

// LockUnit takes a session advisory lock for the unit on a dedicated
// connection. Blocks until the lock is granted or ctx is done.
func (s *Store) LockUnit(ctx context.Context, unitID int64) (func(), error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection for advisory lock: %w", err)
	}
	if _, err := conn.ExecContext(ctx,
		"SELECT pg_advisory_lock($1, $2)", lockClassLedger, unitID); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to acquire advisory lock for unit %d: %w", unitID, err)
	}
	release := func() {
		// Unlock on a fresh context: release must work even if the
		// caller's context was already cancelled.
		_, _ = conn.ExecContext(context.Background(),
			"SELECT pg_advisory_unlock($1, $2)", lockClassLedger, unitID)
		conn.Close()
	}
	return release, nil
}

// =============================================================================
// LEDGER STORE (ledger.Store interface)
// =============================================================================

func (s *Store) Insert(ctx context.Context, e *ledger.Entry) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO unit_balance_ledger
		(unit_id, txn_date, date, yearmonth, entry_type, amount, balance_after,
		 payment_method, reference, note, created_at, created_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		e.UnitID,
		timeOrNull(e.TxnDate),
		timeOrNull(e.Date),
		nullString(e.YearMonth),
		string(e.EntryType),
		e.Amount.StringFixed(2),
		e.BalanceAfter.StringFixed(2),
		nullString(e.PaymentMethod),
		nullString(e.Reference),
		nullString(e.Note),
		e.CreatedAt.UTC(),
		e.CreatedBy,
		time.Now().UTC(),
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, e *ledger.Entry) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE unit_balance_ledger
		SET unit_id = $1, txn_date = $2, date = $3, yearmonth = $4,
		    entry_type = $5, amount = $6, payment_method = $7, reference = $8,
		    note = $9, created_by = $10, updated_at = $11
		WHERE id = $12`,
		e.UnitID,
		timeOrNull(e.TxnDate),
		timeOrNull(e.Date),
		nullString(e.YearMonth),
		string(e.EntryType),
		e.Amount.StringFixed(2),
		nullString(e.PaymentMethod),
		nullString(e.Reference),
		nullString(e.Note),
		e.CreatedBy,
		time.Now().UTC(),
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ledger entry: %w", err)
	}
	return requireRow(res, ledger.ErrEntryNotFound)
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM unit_balance_ledger WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete ledger entry: %w", err)
	}
	return requireRow(res, ledger.ErrEntryNotFound)
}

func (s *Store) Get(ctx context.Context, id int64) (*ledger.Entry, error) {
	rows, err := s.db.QueryContext(ctx, ledgerSelect+" WHERE id = $1", id)
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

func (s *Store) ListByUnit(ctx context.Context, unitID int64) ([]ledger.Entry, error) {
	rows, err := s.db.QueryContext(ctx, ledgerSelect+" WHERE unit_id = $1", unitID)
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

func (s *Store) UpdateBalances(ctx context.Context, unitID int64, updates []ledger.BalanceUpdate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, u := range updates {
		if _, err := tx.ExecContext(ctx, `
			UPDATE unit_balance_ledger
			SET balance_after = $1, yearmonth = $2, updated_at = $3
			WHERE id = $4`,
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
		txnDate, date              sql.NullTime
		yearMonth                  sql.NullString
		entryType, amount, balance string
		payMethod, reference, note sql.NullString
	)
	if err := rows.Scan(&e.ID, &e.UnitID, &txnDate, &date, &yearMonth,
		&entryType, &amount, &balance, &payMethod, &reference, &note,
		&e.CreatedAt, &e.CreatedBy); err != nil {
		return ledger.Entry{}, fmt.Errorf("failed to scan ledger entry: %w", err)
	}
	e.TxnDate = txnDate.Time
	e.Date = date.Time
	e.YearMonth = yearMonth.String
	e.EntryType = ledger.EntryType(entryType)
	e.Amount = mustDecimal(amount)
	e.BalanceAfter = mustDecimal(balance)
	e.PaymentMethod = payMethod.String
	e.Reference = reference.String
	e.Note = note.String
	return e, nil
}

// ListUnits returns every distinct unit that has ledger or slice rows.
func (s *Store) ListUnits(ctx context.Context) ([]int64, error) {
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

func (s *Store) InsertBooking(ctx context.Context, b *booking.Booking) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO bookings
		(unit_id, check_in, check_out, room_fee, payout, tax_amount,
		 cleaning_fee, commission_base, commission_value, client_income,
		 net_payout, commission_percent, city, source, payment_method,
		 guest_type, guest_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id`,
		b.UnitID, b.CheckIn, b.CheckOut,
		b.RoomFee.StringFixed(2), b.Payout.StringFixed(2),
		b.TaxAmount.StringFixed(2), b.CleaningFee.StringFixed(2),
		b.CommissionBase.StringFixed(2), b.O2Commission.StringFixed(2),
		b.OwnerPayout.StringFixed(2), b.NetPayout.StringFixed(2),
		b.CommissionPercent.String(),
		nullString(b.City), nullString(b.Source), nullString(b.PaymentMethod),
		nullString(b.GuestType), nullString(b.GuestName), nullString(b.Status),
		b.CreatedAt.UTC(), b.UpdatedAt.UTC(),
	).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (s *Store) UpdateBooking(ctx context.Context, b *booking.Booking) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE bookings
		SET unit_id = $1, check_in = $2, check_out = $3, room_fee = $4,
		    payout = $5, tax_amount = $6, cleaning_fee = $7,
		    commission_base = $8, commission_value = $9, client_income = $10,
		    net_payout = $11, commission_percent = $12, city = $13,
		    source = $14, payment_method = $15, guest_type = $16,
		    guest_name = $17, status = $18, updated_at = $19
		WHERE id = $20`,
		b.UnitID, b.CheckIn, b.CheckOut,
		b.RoomFee.StringFixed(2), b.Payout.StringFixed(2),
		b.TaxAmount.StringFixed(2), b.CleaningFee.StringFixed(2),
		b.CommissionBase.StringFixed(2), b.O2Commission.StringFixed(2),
		b.OwnerPayout.StringFixed(2), b.NetPayout.StringFixed(2),
		b.CommissionPercent.String(),
		nullString(b.City), nullString(b.Source), nullString(b.PaymentMethod),
		nullString(b.GuestType), nullString(b.GuestName), nullString(b.Status),
		b.UpdatedAt.UTC(), b.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return requireRow(res, booking.ErrBookingNotFound)
}

func (s *Store) DeleteBooking(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bookings WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return requireRow(res, booking.ErrBookingNotFound)
}

func (s *Store) GetBooking(ctx context.Context, id int64) (*booking.Booking, error) {
	rows, err := s.db.QueryContext(ctx, bookingSelect+" WHERE id = $1", id)
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

func (s *Store) ListBookingsByUnit(ctx context.Context, unitID int64) ([]booking.Booking, error) {
	rows, err := s.db.QueryContext(ctx,
		bookingSelect+" WHERE unit_id = $1 ORDER BY check_in DESC", unitID)
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
		roomFee, payout, taxAmount    string
		cleaningFee, commissionBase   string
		commissionValue, clientIncome string
		netPayout, commissionPercent  string
		city, source, payMethod       sql.NullString
		guestType, guestName, status  sql.NullString
	)
	if err := rows.Scan(&b.ID, &b.UnitID, &b.CheckIn, &b.CheckOut, &roomFee,
		&payout, &taxAmount, &cleaningFee, &commissionBase, &commissionValue,
		&clientIncome, &netPayout, &commissionPercent, &city, &source,
		&payMethod, &guestType, &guestName, &status, &b.CreatedAt,
		&b.UpdatedAt); err != nil {
		return booking.Booking{}, fmt.Errorf("failed to scan booking: %w", err)
	}
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
	return b, nil
}

// =============================================================================
// SLICE STORE (booking.SliceStore interface)
// =============================================================================

func (s *Store) ReplaceForMonths(ctx context.Context, bookingID int64, months []string, slices []booking.MonthSlice) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if len(months) > 0 {
		placeholders := make([]string, len(months))
		args := make([]any, 0, len(months)+1)
		args = append(args, bookingID)
		for i, m := range months {
			placeholders[i] = fmt.Sprintf("$%d", i+2)
			args = append(args, m)
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM booking_month_slice WHERE booking_id = $1 AND year_month IN ("+strings.Join(placeholders, ",")+")",
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
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			        $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
			sl.BookingID, sl.UnitID, sl.YearMonth,
			sl.MonthStartDate, sl.MonthEndDate,
			sl.NightsTotal, sl.NightsInMonth,
			sl.ProrateFactor.Round(10).String(),
			sl.RoomFeeInMonth.StringFixed(2),
			sl.PayoutInMonth.StringFixed(2),
			sl.TaxInMonth.StringFixed(2),
			sl.CleaningFeeInMonth.StringFixed(2),
			sl.CommissionBaseInMonth.StringFixed(2),
			sl.O2CommissionInMonth.StringFixed(2),
			sl.OwnerPayoutInMonth.StringFixed(2),
			sl.NetPayoutInMonth.StringFixed(2),
			nullString(sl.City), nullString(sl.Source),
			nullString(sl.PaymentMethod), nullString(sl.GuestType),
		); err != nil {
			return fmt.Errorf("failed to insert slice %s: %w", sl.YearMonth, err)
		}
	}
	return tx.Commit()
}

func (s *Store) DeleteForBooking(ctx context.Context, bookingID int64) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM booking_month_slice WHERE booking_id = $1", bookingID)
	if err != nil {
		return fmt.Errorf("failed to delete slices: %w", err)
	}
	return nil
}

func (s *Store) ListForBooking(ctx context.Context, bookingID int64) ([]booking.MonthSlice, error) {
	return s.querySlices(ctx,
		sliceSelect+" WHERE booking_id = $1 ORDER BY year_month ASC", bookingID)
}

func (s *Store) ListForUnitMonth(ctx context.Context, unitID int64, yearMonth string) ([]booking.MonthSlice, error) {
	return s.querySlices(ctx,
		sliceSelect+" WHERE unit_id = $1 AND year_month = $2 ORDER BY booking_id ASC",
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
			factor                         string
			roomFee, payout, tax, cleaning string
			commBase, o2Comm, owner, net   string
			city, source, payMethod, gtype sql.NullString
		)
		if err := rows.Scan(&sl.ID, &sl.BookingID, &sl.UnitID, &sl.YearMonth,
			&sl.MonthStartDate, &sl.MonthEndDate, &sl.NightsTotal,
			&sl.NightsInMonth, &factor, &roomFee, &payout, &tax, &cleaning,
			&commBase, &o2Comm, &owner, &net, &city, &source, &payMethod,
			&gtype); err != nil {
			return nil, fmt.Errorf("failed to scan slice: %w", err)
		}
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

func timeOrNull(t time.Time) any {
	if t.IsZero() {
		return nil
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
