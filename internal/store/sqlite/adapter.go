// Package sqlite implements store.Store on modernc.org/sqlite. It is the
// local/dev driver and backs the unit-level store compliance tests.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ptlog/ptlog/internal/model"
	"github.com/ptlog/ptlog/internal/store"
)

const dateLayout = "2006-01-02"

// New constructs a SQLite-backed store over an open connection with the
// schema applied.
func New(db *sql.DB) store.Store { return &sqliteStore{db: db} }

// OpenStore opens the database at path, applies the schema and returns a store.
func OpenStore(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db), nil
}

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Users() store.Users               { return &users{db: s.db} }
func (s *sqliteStore) Entries() store.Entries           { return &entries{db: s.db} }
func (s *sqliteStore) Weeks() store.Weeks               { return &weeks{db: s.db} }
func (s *sqliteStore) Checklists() store.Checklists     { return &checklists{db: s.db} }
func (s *sqliteStore) Snapshots() store.Snapshots       { return &snapshots{db: s.db} }
func (s *sqliteStore) Balances() store.Balances         { return &balances{db: s.db} }
func (s *sqliteStore) Transactions() store.Transactions { return &transactions{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	now := time.Now().UTC()

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
         INSERT INTO users (user_id, email, display_name, student_id, program, pt_phase,
                            company_name, supervisor_name, supervisor_email, phone_number, creation_time)
         VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		m.UserID, m.Email, m.DisplayName, m.StudentID, m.Program, m.PTPhase,
		m.CompanyName, m.SupervisorName, m.SupervisorEmail, m.PhoneNumber, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.NewConflictError("userId", "user already exists")
		}
		return nil, err
	}

	// Every account starts with a trial balance; same transaction so a user
	// row never exists without one.
	_, err = tx.ExecContext(ctx, `
         INSERT INTO token_balances (user_id, available_tokens, tokens_used, status, creation_time)
         VALUES (?,?,0,?,?)`,
		m.UserID, model.TrialTokens, model.BalanceTrial, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	out := *m
	out.CreationTime = now
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	row := u.db.QueryRowContext(ctx, `
         SELECT user_id, email, display_name, student_id, program, pt_phase,
                company_name, supervisor_name, supervisor_email, phone_number,
                creation_time, update_time
         FROM users WHERE user_id = ?`, userID)
	return scanUser(row)
}

func (u *users) UpdateProfile(ctx context.Context, m *model.User) (*model.User, error) {
	now := time.Now().UTC()
	res, err := u.db.ExecContext(ctx, `
         UPDATE users SET display_name=?, student_id=?, program=?, pt_phase=?,
                company_name=?, supervisor_name=?, supervisor_email=?, phone_number=?, update_time=?
         WHERE user_id=?`,
		m.DisplayName, m.StudentID, m.Program, m.PTPhase,
		m.CompanyName, m.SupervisorName, m.SupervisorEmail, m.PhoneNumber, now, m.UserID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.NewNotFoundError("user", "user "+m.UserID+" does not exist")
	}
	return u.Get(ctx, m.UserID)
}

func scanUser(row *sql.Row) (*model.User, error) {
	var m model.User
	err := row.Scan(&m.UserID, &m.Email, &m.DisplayName, &m.StudentID, &m.Program, &m.PTPhase,
		&m.CompanyName, &m.SupervisorName, &m.SupervisorEmail, &m.PhoneNumber,
		&m.CreationTime, &m.UpdateTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("user", "user does not exist")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// --- Daily entries ---

type entries struct{ db *sql.DB }

func (e *entries) Upsert(ctx context.Context, m *model.DailyEntry) (*model.DailyEntry, error) {
	now := time.Now().UTC()
	_, err := e.db.ExecContext(ctx, `
         INSERT INTO daily_entries (user_id, entry_date, week_number, description, hours, creation_time)
         VALUES (?,?,?,?,?,?)
         ON CONFLICT (user_id, entry_date) DO UPDATE SET
             week_number = excluded.week_number,
             description = excluded.description,
             hours       = excluded.hours,
             update_time = excluded.creation_time`,
		m.UserID, m.Date.Format(dateLayout), m.WeekNumber, m.Description, m.Hours.String(), now)
	if err != nil {
		return nil, err
	}
	return e.Get(ctx, m.UserID, m.Date)
}

func (e *entries) Get(ctx context.Context, userID string, date time.Time) (*model.DailyEntry, error) {
	row := e.db.QueryRowContext(ctx, `
         SELECT user_id, entry_date, week_number, description, hours, creation_time, update_time
         FROM daily_entries WHERE user_id = ? AND entry_date = ?`,
		userID, date.Format(dateLayout))
	m, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("entry", "no entry for "+date.Format(dateLayout))
	}
	return m, err
}

func (e *entries) ListByWeek(ctx context.Context, userID string, weekNumber int) ([]*model.DailyEntry, error) {
	rows, err := e.db.QueryContext(ctx, `
         SELECT user_id, entry_date, week_number, description, hours, creation_time, update_time
         FROM daily_entries WHERE user_id = ? AND week_number = ?
         ORDER BY entry_date ASC`, userID, weekNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (e *entries) List(ctx context.Context, userID string) ([]*model.DailyEntry, error) {
	rows, err := e.db.QueryContext(ctx, `
         SELECT user_id, entry_date, week_number, description, hours, creation_time, update_time
         FROM daily_entries WHERE user_id = ? ORDER BY entry_date ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (e *entries) Delete(ctx context.Context, userID string, date time.Time) error {
	res, err := e.db.ExecContext(ctx,
		`DELETE FROM daily_entries WHERE user_id = ? AND entry_date = ?`,
		userID, date.Format(dateLayout))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.NewNotFoundError("entry", "no entry for "+date.Format(dateLayout))
	}
	return nil
}

func collectEntries(rows *sql.Rows) ([]*model.DailyEntry, error) {
	var out []*model.DailyEntry
	for rows.Next() {
		m, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanEntry(scan func(...any) error) (*model.DailyEntry, error) {
	var (
		m     model.DailyEntry
		date  string
		hours string
	)
	if err := scan(&m.UserID, &date, &m.WeekNumber, &m.Description, &hours, &m.CreationTime, &m.UpdateTime); err != nil {
		return nil, err
	}
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, err
	}
	h, err := decimal.NewFromString(hours)
	if err != nil {
		return nil, err
	}
	m.Date = d
	m.DayName = d.Weekday().String()
	m.Hours = h
	return &m, nil
}

// --- Weekly reports ---

type weeks struct{ db *sql.DB }

func (w *weeks) Upsert(ctx context.Context, m *model.WeeklyReport) (*model.WeeklyReport, error) {
	now := time.Now().UTC()
	_, err := w.db.ExecContext(ctx, `
         INSERT INTO weekly_reports (user_id, week_number, start_date, end_date, total_hours,
                                     entry_count, is_complete, creation_time)
         VALUES (?,?,?,?,?,?,?,?)
         ON CONFLICT (user_id, week_number) DO UPDATE SET
             start_date  = excluded.start_date,
             end_date    = excluded.end_date,
             total_hours = excluded.total_hours,
             entry_count = excluded.entry_count,
             is_complete = excluded.is_complete,
             update_time = excluded.creation_time`,
		m.UserID, m.WeekNumber, m.StartDate.Format(dateLayout), m.EndDate.Format(dateLayout),
		m.TotalHours.String(), m.EntryCount, m.IsComplete, now)
	if err != nil {
		return nil, err
	}
	return w.Get(ctx, m.UserID, m.WeekNumber)
}

func (w *weeks) Get(ctx context.Context, userID string, weekNumber int) (*model.WeeklyReport, error) {
	row := w.db.QueryRowContext(ctx, `
         SELECT user_id, week_number, start_date, end_date, total_hours, entry_count,
                is_complete, creation_time, update_time
         FROM weekly_reports WHERE user_id = ? AND week_number = ?`, userID, weekNumber)
	m, err := scanWeek(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("week", "no weekly report for that week")
	}
	return m, err
}

func (w *weeks) List(ctx context.Context, userID string) ([]*model.WeeklyReport, error) {
	rows, err := w.db.QueryContext(ctx, `
         SELECT user_id, week_number, start_date, end_date, total_hours, entry_count,
                is_complete, creation_time, update_time
         FROM weekly_reports WHERE user_id = ? ORDER BY week_number DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.WeeklyReport
	for rows.Next() {
		m, err := scanWeek(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanWeek(scan func(...any) error) (*model.WeeklyReport, error) {
	var (
		m          model.WeeklyReport
		start, end string
		hours      string
	)
	if err := scan(&m.UserID, &m.WeekNumber, &start, &end, &hours, &m.EntryCount,
		&m.IsComplete, &m.CreationTime, &m.UpdateTime); err != nil {
		return nil, err
	}
	var err error
	if m.StartDate, err = time.Parse(dateLayout, start); err != nil {
		return nil, err
	}
	if m.EndDate, err = time.Parse(dateLayout, end); err != nil {
		return nil, err
	}
	if m.TotalHours, err = decimal.NewFromString(hours); err != nil {
		return nil, err
	}
	return &m, nil
}

// --- Checklists ---

type checklists struct{ db *sql.DB }

func (c *checklists) Upsert(ctx context.Context, m *model.JobChecklist) (*model.JobChecklist, error) {
	now := time.Now().UTC()
	_, err := c.db.ExecContext(ctx, `
         INSERT INTO job_checklists (user_id, week_number, title, description, creation_time)
         VALUES (?,?,?,?,?)
         ON CONFLICT (user_id, week_number) DO UPDATE SET
             title       = excluded.title,
             description = excluded.description,
             update_time = excluded.creation_time`,
		m.UserID, m.WeekNumber, m.Title, m.Description, now)
	if err != nil {
		return nil, err
	}
	return c.Get(ctx, m.UserID, m.WeekNumber)
}

func (c *checklists) Get(ctx context.Context, userID string, weekNumber int) (*model.JobChecklist, error) {
	row := c.db.QueryRowContext(ctx, `
         SELECT user_id, week_number, title, description, creation_time, update_time
         FROM job_checklists WHERE user_id = ? AND week_number = ?`, userID, weekNumber)
	var m model.JobChecklist
	err := row.Scan(&m.UserID, &m.WeekNumber, &m.Title, &m.Description, &m.CreationTime, &m.UpdateTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("checklist", "no checklist for that week")
	}
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, `
         SELECT step_number, operation, tools FROM checklist_steps
         WHERE user_id = ? AND week_number = ? ORDER BY step_number ASC`, userID, weekNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var st model.ChecklistStep
		if err := rows.Scan(&st.StepNumber, &st.Operation, &st.Tools); err != nil {
			return nil, err
		}
		m.Steps = append(m.Steps, st)
	}
	return &m, rows.Err()
}

func (c *checklists) ReplaceSteps(ctx context.Context, userID string, weekNumber int, steps []model.ChecklistStep) ([]model.ChecklistStep, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM job_checklists WHERE user_id = ? AND week_number = ?`,
		userID, weekNumber).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, model.NewNotFoundError("checklist", "no checklist for that week")
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM checklist_steps WHERE user_id = ? AND week_number = ?`,
		userID, weekNumber); err != nil {
		return nil, err
	}
	for _, st := range steps {
		if _, err := tx.ExecContext(ctx, `
             INSERT INTO checklist_steps (user_id, week_number, step_number, operation, tools)
             VALUES (?,?,?,?,?)`,
			userID, weekNumber, st.StepNumber, st.Operation, st.Tools); err != nil {
			if isUniqueViolation(err) {
				return nil, model.NewConflictError("stepNumber", "duplicate step number")
			}
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return steps, nil
}

// --- Snapshots ---

type snapshots struct{ db *sql.DB }

func (s *snapshots) Put(ctx context.Context, m *model.Snapshot) (*model.Snapshot, error) {
	entriesJSON, err := json.Marshal(m.Entries)
	if err != nil {
		return nil, err
	}
	stepsJSON, err := json.Marshal(m.Steps)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
         INSERT INTO snapshots (user_id, week_number, snapshot_id, title, entries, steps, instructions, captured_at)
         VALUES (?,?,?,?,?,?,?,?)
         ON CONFLICT (user_id, week_number) DO UPDATE SET
             snapshot_id  = excluded.snapshot_id,
             title        = excluded.title,
             entries      = excluded.entries,
             steps        = excluded.steps,
             instructions = excluded.instructions,
             captured_at  = excluded.captured_at`,
		m.UserID, m.WeekNumber, m.SnapshotID, m.Title, string(entriesJSON), string(stepsJSON), m.Instructions, now)
	if err != nil {
		return nil, err
	}
	out := *m
	out.CapturedAt = now
	return &out, nil
}

func (s *snapshots) Get(ctx context.Context, userID string, weekNumber int) (*model.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
         SELECT user_id, week_number, snapshot_id, title, entries, steps, instructions, captured_at
         FROM snapshots WHERE user_id = ? AND week_number = ?`, userID, weekNumber)
	var (
		m            model.Snapshot
		entriesJSON  string
		stepsJSON    string
	)
	err := row.Scan(&m.UserID, &m.WeekNumber, &m.SnapshotID, &m.Title, &entriesJSON, &stepsJSON, &m.Instructions, &m.CapturedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("snapshot", "no snapshot for that week")
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(entriesJSON), &m.Entries); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(stepsJSON), &m.Steps); err != nil {
		return nil, err
	}
	return &m, nil
}

// --- Token balances ---

type balances struct{ db *sql.DB }

func (b *balances) Get(ctx context.Context, userID string) (*model.TokenBalance, error) {
	row := b.db.QueryRowContext(ctx, `
         SELECT user_id, available_tokens, tokens_used, status, creation_time, update_time
         FROM token_balances WHERE user_id = ?`, userID)
	var m model.TokenBalance
	err := row.Scan(&m.UserID, &m.AvailableTokens, &m.TokensUsed, &m.Status, &m.CreationTime, &m.UpdateTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("balance", "no balance for user")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (b *balances) Debit(ctx context.Context, userID string, amount int) (*model.TokenBalance, error) {
	// Compare-and-decrement at the storage layer; two concurrent debits can
	// never both pass the sufficiency check.
	res, err := b.db.ExecContext(ctx, `
         UPDATE token_balances
         SET available_tokens = available_tokens - ?,
             tokens_used      = tokens_used + ?,
             update_time      = ?
         WHERE user_id = ? AND available_tokens >= ?`,
		amount, amount, time.Now().UTC(), userID, amount)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		bal, gerr := b.Get(ctx, userID)
		if gerr != nil {
			return nil, gerr
		}
		return nil, model.InsufficientTokensError{Available: bal.AvailableTokens, Required: amount}
	}
	return b.Get(ctx, userID)
}

// --- Payment transactions ---

type transactions struct{ db *sql.DB }

func (t *transactions) Create(ctx context.Context, m *model.PaymentTransaction) (*model.PaymentTransaction, error) {
	now := time.Now().UTC()
	_, err := t.db.ExecContext(ctx, `
         INSERT INTO payment_transactions (tx_id, user_id, amount, method, status, tokens_granted,
                                           sender_name, agent_name, phone_number, creation_time)
         VALUES (?,?,?,?,?,0,?,?,?,?)`,
		m.TxID, m.UserID, m.Amount.String(), m.Method, model.TxPending,
		m.SenderName, m.AgentName, m.PhoneNumber, now)
	if err != nil {
		return nil, err
	}
	return t.Get(ctx, m.TxID)
}

func (t *transactions) Get(ctx context.Context, txID string) (*model.PaymentTransaction, error) {
	row := t.db.QueryRowContext(ctx, txSelect+` WHERE tx_id = ?`, txID)
	m, err := scanTx(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("transaction", "transaction "+txID+" does not exist")
	}
	return m, err
}

const txSelect = `
         SELECT tx_id, user_id, amount, method, status, tokens_granted,
                sender_name, agent_name, phone_number, approved_by, creation_time, update_time
         FROM payment_transactions`

func (t *transactions) ListByUser(ctx context.Context, userID string) ([]*model.PaymentTransaction, error) {
	rows, err := t.db.QueryContext(ctx, txSelect+` WHERE user_id = ? ORDER BY creation_time DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTxs(rows)
}

func (t *transactions) ListPending(ctx context.Context) ([]*model.PaymentTransaction, error) {
	rows, err := t.db.QueryContext(ctx, txSelect+` WHERE status = ? ORDER BY creation_time ASC`, model.TxPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTxs(rows)
}

func (t *transactions) Approve(ctx context.Context, txID, approvedBy string) (*model.PaymentTransaction, error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var (
		userID    string
		amountStr string
		status    model.TransactionStatus
	)
	err = tx.QueryRowContext(ctx,
		`SELECT user_id, amount, status FROM payment_transactions WHERE tx_id = ?`, txID).
		Scan(&userID, &amountStr, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("transaction", "transaction "+txID+" does not exist")
	}
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, err
	}
	granted := model.TokensForAmount(amount)
	now := time.Now().UTC()

	// Guarded transition: the WHERE clause makes repeated approvals no-ops,
	// so the balance is credited at most once.
	res, err := tx.ExecContext(ctx, `
         UPDATE payment_transactions
         SET status = ?, tokens_granted = ?, approved_by = ?, update_time = ?
         WHERE tx_id = ? AND status = ?`,
		model.TxApproved, granted, approvedBy, now, txID, model.TxPending)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.InvalidStateTransitionError{Current: status, Target: model.TxApproved}
	}

	if _, err := tx.ExecContext(ctx, `
         UPDATE token_balances
         SET available_tokens = available_tokens + ?, status = ?, update_time = ?
         WHERE user_id = ?`,
		granted, model.BalanceSubscribed, now, userID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return t.Get(ctx, txID)
}

func (t *transactions) Reject(ctx context.Context, txID, rejectedBy string) (*model.PaymentTransaction, error) {
	cur, err := t.Get(ctx, txID)
	if err != nil {
		return nil, err
	}
	res, err := t.db.ExecContext(ctx, `
         UPDATE payment_transactions
         SET status = ?, approved_by = ?, update_time = ?
         WHERE tx_id = ? AND status = ?`,
		model.TxRejected, rejectedBy, time.Now().UTC(), txID, model.TxPending)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.InvalidStateTransitionError{Current: cur.Status, Target: model.TxRejected}
	}
	return t.Get(ctx, txID)
}

func collectTxs(rows *sql.Rows) ([]*model.PaymentTransaction, error) {
	var out []*model.PaymentTransaction
	for rows.Next() {
		m, err := scanTx(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanTx(scan func(...any) error) (*model.PaymentTransaction, error) {
	var (
		m      model.PaymentTransaction
		amount string
	)
	if err := scan(&m.TxID, &m.UserID, &amount, &m.Method, &m.Status, &m.TokensGranted,
		&m.SenderName, &m.AgentName, &m.PhoneNumber, &m.ApprovedBy, &m.CreationTime, &m.UpdateTime); err != nil {
		return nil, err
	}
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	m.Amount = a
	return &m, nil
}
