/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements schedule.ShiftStore, billing.PaymentStore and
  billing.GoalStore using SQLite. In production the same patterns apply
  to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  shifts:       Scheduled intervals, roots and generated occurrences
  payments:     Billed values, optionally installment plans
  installments: Partial payments of a plan, received independently
  goals:        One goal configuration row per owner

INDEXES:
  idx_shifts_owner_start: Overlap validation and range listing (hot path)
  idx_shifts_parent:      Series-wide edits and deletes

ATOMIC BATCHES:
  CreateBatch persists a recurring series inside one SQL transaction.
  A 12-occurrence monthly series is written whole or not at all.

CONCURRENCY:
  sync.RWMutex for thread-safety, SQLite opened in WAL mode so readers
  do not block.

USAGE:
  store, err := sqlite.New("./data/shifts.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - schedule/store.go: ShiftStore interface definition
  - billing/store.go:  PaymentStore/GoalStore interface definitions
  - schedule/store/memory.go: In-memory implementation for testing
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

	"github.com/anesta/shift-engine/billing"
	"github.com/anesta/shift-engine/schedule"
)

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
	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		title TEXT NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		kind TEXT NOT NULL,
		hospital_name TEXT,
		is_recurring BOOLEAN DEFAULT FALSE,
		recurrence_rule TEXT,
		recurrence_end_at TEXT,
		parent_shift_id TEXT,
		payment_status TEXT NOT NULL DEFAULT 'pending',
		payment_value TEXT NOT NULL DEFAULT '0',
		payment_date TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Overlap validation and agenda range queries (hot path)
	CREATE INDEX IF NOT EXISTS idx_shifts_owner_start
		ON shifts(owner_id, start_at);

	-- Series-wide edits and deletes
	CREATE INDEX IF NOT EXISTS idx_shifts_parent
		ON shifts(parent_shift_id) WHERE parent_shift_id IS NOT NULL;

	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		description TEXT,
		value TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		paid_at TEXT,
		installments BOOLEAN DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payments_owner
		ON payments(owner_id);

	CREATE TABLE IF NOT EXISTS installments (
		id TEXT PRIMARY KEY,
		payment_id TEXT NOT NULL,
		number INTEGER NOT NULL,
		value TEXT NOT NULL,
		received BOOLEAN DEFAULT FALSE,
		received_at TEXT,
		UNIQUE(payment_id, number)
	);

	CREATE INDEX IF NOT EXISTS idx_installments_payment
		ON installments(payment_id);

	CREATE TABLE IF NOT EXISTS goals (
		owner_id TEXT PRIMARY KEY,
		enabled BOOLEAN DEFAULT FALSE,
		target_value TEXT NOT NULL DEFAULT '0',
		reset_day INTEGER NOT NULL DEFAULT 1,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SHIFT STORE (schedule.ShiftStore interface)
// =============================================================================

const shiftColumns = `id, owner_id, title, start_at, end_at, kind, hospital_name,
	is_recurring, recurrence_rule, recurrence_end_at, parent_shift_id,
	payment_status, payment_value, payment_date, created_at, updated_at`

// Get returns a shift by id.
func (s *Store) Get(ctx context.Context, id schedule.ShiftID) (schedule.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = ?`
	shifts, err := s.queryShifts(ctx, query, id)
	if err != nil {
		return schedule.Shift{}, err
	}
	if len(shifts) == 0 {
		return schedule.Shift{}, schedule.ErrNotFound
	}
	return shifts[0], nil
}

// ListByOwner returns every shift of an owner, ordered by start time.
func (s *Store) ListByOwner(ctx context.Context, ownerID schedule.OwnerID) ([]schedule.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + shiftColumns + ` FROM shifts
		WHERE owner_id = ?
		ORDER BY start_at ASC`
	return s.queryShifts(ctx, query, ownerID)
}

// ListByOwnerRange returns the owner's shifts intersecting [from, to).
func (s *Store) ListByOwnerRange(ctx context.Context, ownerID schedule.OwnerID, from, to time.Time) ([]schedule.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Half-open intersection: start_at < to AND end_at > from.
	query := `SELECT ` + shiftColumns + ` FROM shifts
		WHERE owner_id = ? AND start_at < ? AND end_at > ?
		ORDER BY start_at ASC`
	return s.queryShifts(ctx, query, ownerID,
		to.UTC().Format(time.RFC3339), from.UTC().Format(time.RFC3339))
}

// ListSeries returns the root and all children of a series.
func (s *Store) ListSeries(ctx context.Context, rootID schedule.ShiftID) ([]schedule.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + shiftColumns + ` FROM shifts
		WHERE id = ? OR parent_shift_id = ?
		ORDER BY start_at ASC`
	return s.queryShifts(ctx, query, rootID, rootID)
}

// Create persists a single shift.
func (s *Store) Create(ctx context.Context, shift schedule.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertShift(ctx, s.db, shift)
}

// CreateBatch persists a series atomically.
func (s *Store) CreateBatch(ctx context.Context, shifts []schedule.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, shift := range shifts {
		if err := s.insertShift(ctx, sqlTx, shift); err != nil {
			return err
		}
	}

	return sqlTx.Commit()
}

// execer is the surface shared by *sql.DB and *sql.Tx that the insert
// helpers need, so one helper serves both single writes and batches.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) insertShift(ctx context.Context, db execer, shift schedule.Shift) error {
	query := `
		INSERT INTO shifts
		(id, owner_id, title, start_at, end_at, kind, hospital_name,
		 is_recurring, recurrence_rule, recurrence_end_at, parent_shift_id,
		 payment_status, payment_value, payment_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		shift.ID,
		shift.OwnerID,
		shift.Title,
		shift.StartAt.UTC().Format(time.RFC3339),
		shift.EndAt.UTC().Format(time.RFC3339),
		shift.Kind,
		nullString(shift.HospitalName),
		shift.IsRecurring,
		nullString(string(shift.RecurrenceRule)),
		nullTime(shift.RecurrenceEndAt),
		nullString(string(shift.ParentShiftID)),
		shift.PaymentStatus,
		shift.PaymentValue.String(),
		nullTime(shift.PaymentDate),
		shift.CreatedAt.UTC().Format(time.RFC3339Nano),
		shift.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert shift: %w", err)
	}
	return nil
}

// Update overwrites a stored shift.
func (s *Store) Update(ctx context.Context, shift schedule.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE shifts SET
			title = ?, start_at = ?, end_at = ?, kind = ?, hospital_name = ?,
			is_recurring = ?, recurrence_rule = ?, recurrence_end_at = ?,
			payment_status = ?, payment_value = ?, payment_date = ?,
			updated_at = ?
		WHERE id = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		shift.Title,
		shift.StartAt.UTC().Format(time.RFC3339),
		shift.EndAt.UTC().Format(time.RFC3339),
		shift.Kind,
		nullString(shift.HospitalName),
		shift.IsRecurring,
		nullString(string(shift.RecurrenceRule)),
		nullTime(shift.RecurrenceEndAt),
		shift.PaymentStatus,
		shift.PaymentValue.String(),
		nullTime(shift.PaymentDate),
		shift.UpdatedAt.UTC().Format(time.RFC3339Nano),
		shift.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update shift: %w", err)
	}
	return requireRow(res)
}

// Delete removes a shift by id.
func (s *Store) Delete(ctx context.Context, id schedule.ShiftID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM shifts WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteSeries removes a root and all its children.
func (s *Store) DeleteSeries(ctx context.Context, rootID schedule.ShiftID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM shifts WHERE id = ? OR parent_shift_id = ?", rootID, rootID)
	return err
}

func (s *Store) queryShifts(ctx context.Context, query string, args ...any) ([]schedule.Shift, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []schedule.Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	return shifts, rows.Err()
}

func scanShift(rows *sql.Rows) (schedule.Shift, error) {
	var (
		shift           schedule.Shift
		startAt         string
		endAt           string
		hospitalName    sql.NullString
		recurrenceRule  sql.NullString
		recurrenceEndAt sql.NullString
		parentShiftID   sql.NullString
		paymentValue    string
		paymentDate     sql.NullString
		createdAt       string
		updatedAt       string
	)

	err := rows.Scan(
		&shift.ID, &shift.OwnerID, &shift.Title, &startAt, &endAt,
		&shift.Kind, &hospitalName, &shift.IsRecurring, &recurrenceRule,
		&recurrenceEndAt, &parentShiftID, &shift.PaymentStatus,
		&paymentValue, &paymentDate, &createdAt, &updatedAt,
	)
	if err != nil {
		return shift, fmt.Errorf("failed to scan shift: %w", err)
	}

	if shift.StartAt, err = parseTime(startAt); err != nil {
		return shift, err
	}
	if shift.EndAt, err = parseTime(endAt); err != nil {
		return shift, err
	}
	shift.HospitalName = hospitalName.String
	shift.RecurrenceRule = schedule.RecurrenceRule(recurrenceRule.String)
	if recurrenceEndAt.Valid {
		if shift.RecurrenceEndAt, err = parseTime(recurrenceEndAt.String); err != nil {
			return shift, err
		}
	}
	shift.ParentShiftID = schedule.ShiftID(parentShiftID.String)
	if shift.PaymentValue, err = parseDecimal(paymentValue); err != nil {
		return shift, err
	}
	if paymentDate.Valid {
		if shift.PaymentDate, err = parseTime(paymentDate.String); err != nil {
			return shift, err
		}
	}
	if shift.CreatedAt, err = parseTime(createdAt); err != nil {
		return shift, err
	}
	if shift.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return shift, err
	}

	return shift, nil
}

// =============================================================================
// PAYMENT STORE (billing.PaymentStore interface)
// =============================================================================

// CreatePayment saves a payment record.
func (s *Store) CreatePayment(ctx context.Context, p billing.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return insertPayment(ctx, s.db, p)
}

// CreatePaymentWithInstallments saves a plan and its parts in one SQL
// transaction. A failing installment insert rolls the payment back too.
func (s *Store) CreatePaymentWithInstallments(ctx context.Context, p billing.Payment, parts []billing.Installment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := insertPayment(ctx, sqlTx, p); err != nil {
		return err
	}
	for _, inst := range parts {
		if err := insertInstallment(ctx, sqlTx, inst); err != nil {
			return err
		}
	}

	return sqlTx.Commit()
}

func insertPayment(ctx context.Context, db execer, p billing.Payment) error {
	query := `
		INSERT INTO payments (id, owner_id, description, value, status, paid_at, installments, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		p.ID, p.OwnerID, p.Description, p.Value.String(), p.Status,
		nullTime(p.PaidAt), p.Installments,
		p.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func insertInstallment(ctx context.Context, db execer, inst billing.Installment) error {
	query := `
		INSERT INTO installments (id, payment_id, number, value, received, received_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		inst.ID, inst.PaymentID, inst.Number, inst.Value.String(),
		inst.Received, nullTime(inst.ReceivedAt))
	if err != nil {
		return fmt.Errorf("failed to insert installment: %w", err)
	}
	return nil
}

// GetPayment retrieves a payment by id.
func (s *Store) GetPayment(ctx context.Context, id billing.PaymentID) (billing.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payments, err := s.queryPayments(ctx,
		`SELECT id, owner_id, description, value, status, paid_at, installments, created_at
		 FROM payments WHERE id = ?`, id)
	if err != nil {
		return billing.Payment{}, err
	}
	if len(payments) == 0 {
		return billing.Payment{}, billing.ErrNotFound
	}
	return payments[0], nil
}

// ListPayments returns all payments of an owner.
func (s *Store) ListPayments(ctx context.Context, ownerID billing.OwnerID) ([]billing.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryPayments(ctx,
		`SELECT id, owner_id, description, value, status, paid_at, installments, created_at
		 FROM payments WHERE owner_id = ? ORDER BY created_at ASC`, ownerID)
}

func (s *Store) queryPayments(ctx context.Context, query string, args ...any) ([]billing.Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []billing.Payment
	for rows.Next() {
		var (
			p           billing.Payment
			value       string
			paidAt      sql.NullString
			createdAt   string
			description sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.OwnerID, &description, &value, &p.Status,
			&paidAt, &p.Installments, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.Description = description.String
		if p.Value, err = parseDecimal(value); err != nil {
			return nil, err
		}
		if paidAt.Valid {
			if p.PaidAt, err = parseTime(paidAt.String); err != nil {
				return nil, err
			}
		}
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}

	return payments, rows.Err()
}

// CreateInstallments saves the parts of an installment plan atomically.
func (s *Store) CreateInstallments(ctx context.Context, parts []billing.Installment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, inst := range parts {
		if err := insertInstallment(ctx, sqlTx, inst); err != nil {
			return err
		}
	}

	return sqlTx.Commit()
}

// ListInstallments returns the installments of a payment, ordered by number.
func (s *Store) ListInstallments(ctx context.Context, paymentID billing.PaymentID) ([]billing.Installment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, payment_id, number, value, received, received_at
		 FROM installments WHERE payment_id = ? ORDER BY number ASC`, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query installments: %w", err)
	}
	defer rows.Close()

	var parts []billing.Installment
	for rows.Next() {
		var (
			inst       billing.Installment
			value      string
			receivedAt sql.NullString
		)
		err := rows.Scan(&inst.ID, &inst.PaymentID, &inst.Number, &value,
			&inst.Received, &receivedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		if inst.Value, err = parseDecimal(value); err != nil {
			return nil, err
		}
		if receivedAt.Valid {
			if inst.ReceivedAt, err = parseTime(receivedAt.String); err != nil {
				return nil, err
			}
		}
		parts = append(parts, inst)
	}

	return parts, rows.Err()
}

// MarkInstallmentReceived flips an installment to received.
func (s *Store) MarkInstallmentReceived(ctx context.Context, id billing.InstallmentID, receivedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE installments SET received = TRUE, received_at = ? WHERE id = ?",
		receivedAt.UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return billing.ErrNotFound
	}
	return nil
}

// =============================================================================
// GOAL STORE (billing.GoalStore interface)
// =============================================================================

// GetGoal returns the owner's goal configuration. Owners without a stored
// row get a disabled goal, not an error.
func (s *Store) GetGoal(ctx context.Context, ownerID billing.OwnerID) (billing.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		g      billing.Goal
		target string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT owner_id, enabled, target_value, reset_day FROM goals WHERE owner_id = ?",
		ownerID,
	).Scan(&g.OwnerID, &g.Enabled, &target, &g.ResetDay)

	if err == sql.ErrNoRows {
		return billing.Goal{OwnerID: ownerID, Enabled: false, ResetDay: 1}, nil
	}
	if err != nil {
		return billing.Goal{}, err
	}

	if g.TargetValue, err = parseDecimal(target); err != nil {
		return billing.Goal{}, err
	}
	return g, nil
}

// SaveGoal upserts the owner's goal configuration.
func (s *Store) SaveGoal(ctx context.Context, g billing.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO goals (owner_id, enabled, target_value, reset_day, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET
			enabled = excluded.enabled,
			target_value = excluded.target_value,
			reset_day = excluded.reset_day,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		g.OwnerID, g.Enabled, g.TargetValue.String(), g.ResetDay,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"shifts", "payments", "installments", "goals"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return schedule.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed stored timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("malformed stored decimal %q: %w", s, err)
	}
	return d, nil
}
