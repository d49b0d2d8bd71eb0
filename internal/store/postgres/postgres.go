// Package postgres implements store.Store on PostgreSQL via the pgx stdlib
// driver.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"github.com/ptlog/ptlog/internal/model"
	"github.com/ptlog/ptlog/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies
// connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema applies the embedded DDL. Statements are idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Users() store.Users               { return &users{db: s.db} }
func (s *pgStore) Entries() store.Entries           { return &entries{db: s.db} }
func (s *pgStore) Weeks() store.Weeks               { return &weeks{db: s.db} }
func (s *pgStore) Checklists() store.Checklists     { return &checklists{db: s.db} }
func (s *pgStore) Snapshots() store.Snapshots       { return &snapshots{db: s.db} }
func (s *pgStore) Balances() store.Balances         { return &balances{db: s.db} }
func (s *pgStore) Transactions() store.Transactions { return &transactions{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *pgStore) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var created time.Time
	err = tx.QueryRowContext(ctx, `
        INSERT INTO users (user_id, email, display_name, student_id, program, pt_phase,
                           company_name, supervisor_name, supervisor_email, phone_number)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING creation_time`,
		m.UserID, m.Email, m.DisplayName, m.StudentID, m.Program, m.PTPhase,
		m.CompanyName, m.SupervisorName, m.SupervisorEmail, m.PhoneNumber).Scan(&created)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.NewConflictError("userId", "user already exists")
		}
		return nil, err
	}

	// Trial balance rides the same transaction as the account row.
	_, err = tx.ExecContext(ctx, `
        INSERT INTO token_balances (user_id, available_tokens, tokens_used, status)
        VALUES ($1,$2,0,$3)`,
		m.UserID, model.TrialTokens, model.BalanceTrial)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	out := *m
	out.CreationTime = created
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var m model.User
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, email, display_name, student_id, program, pt_phase,
               company_name, supervisor_name, supervisor_email, phone_number,
               creation_time, update_time
        FROM users WHERE user_id = $1`, userID)
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

func (u *users) UpdateProfile(ctx context.Context, m *model.User) (*model.User, error) {
	res, err := u.db.ExecContext(ctx, `
        UPDATE users SET display_name=$1, student_id=$2, program=$3, pt_phase=$4,
               company_name=$5, supervisor_name=$6, supervisor_email=$7, phone_number=$8,
               update_time=now()
        WHERE user_id=$9`,
		m.DisplayName, m.StudentID, m.Program, m.PTPhase,
		m.CompanyName, m.SupervisorName, m.SupervisorEmail, m.PhoneNumber, m.UserID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.NewNotFoundError("user", "user "+m.UserID+" does not exist")
	}
	return u.Get(ctx, m.UserID)
}

// --- Daily entries ---

type entries struct{ db *sql.DB }

const entryCols = `user_id, entry_date, week_number, description, hours, creation_time, update_time`

func (e *entries) Upsert(ctx context.Context, m *model.DailyEntry) (*model.DailyEntry, error) {
	_, err := e.db.ExecContext(ctx, `
        INSERT INTO daily_entries (user_id, entry_date, week_number, description, hours)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (user_id, entry_date) DO UPDATE SET
            week_number = EXCLUDED.week_number,
            description = EXCLUDED.description,
            hours       = EXCLUDED.hours,
            update_time = now()`,
		m.UserID, m.Date, m.WeekNumber, m.Description, m.Hours)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, model.NewNotFoundError("user", "user does not exist")
		}
		return nil, err
	}
	return e.Get(ctx, m.UserID, m.Date)
}

func (e *entries) Get(ctx context.Context, userID string, date time.Time) (*model.DailyEntry, error) {
	row := e.db.QueryRowContext(ctx,
		`SELECT `+entryCols+` FROM daily_entries WHERE user_id = $1 AND entry_date = $2`,
		userID, date)
	m, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("entry", "no entry for "+date.Format("2006-01-02"))
	}
	return m, err
}

func (e *entries) ListByWeek(ctx context.Context, userID string, weekNumber int) ([]*model.DailyEntry, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT `+entryCols+` FROM daily_entries
         WHERE user_id = $1 AND week_number = $2 ORDER BY entry_date ASC`,
		userID, weekNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (e *entries) List(ctx context.Context, userID string) ([]*model.DailyEntry, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT `+entryCols+` FROM daily_entries WHERE user_id = $1 ORDER BY entry_date ASC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (e *entries) Delete(ctx context.Context, userID string, date time.Time) error {
	res, err := e.db.ExecContext(ctx,
		`DELETE FROM daily_entries WHERE user_id = $1 AND entry_date = $2`, userID, date)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.NewNotFoundError("entry", "no entry for "+date.Format("2006-01-02"))
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
	var m model.DailyEntry
	if err := scan(&m.UserID, &m.Date, &m.WeekNumber, &m.Description, &m.Hours,
		&m.CreationTime, &m.UpdateTime); err != nil {
		return nil, err
	}
	m.Date = m.Date.UTC()
	m.DayName = m.Date.Weekday().String()
	return &m, nil
}

// --- Weekly reports ---

type weeks struct{ db *sql.DB }

const weekCols = `user_id, week_number, start_date, end_date, total_hours, entry_count,
                  is_complete, creation_time, update_time`

func (w *weeks) Upsert(ctx context.Context, m *model.WeeklyReport) (*model.WeeklyReport, error) {
	_, err := w.db.ExecContext(ctx, `
        INSERT INTO weekly_reports (user_id, week_number, start_date, end_date, total_hours,
                                    entry_count, is_complete)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (user_id, week_number) DO UPDATE SET
            start_date  = EXCLUDED.start_date,
            end_date    = EXCLUDED.end_date,
            total_hours = EXCLUDED.total_hours,
            entry_count = EXCLUDED.entry_count,
            is_complete = EXCLUDED.is_complete,
            update_time = now()`,
		m.UserID, m.WeekNumber, m.StartDate, m.EndDate, m.TotalHours, m.EntryCount, m.IsComplete)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, model.NewNotFoundError("user", "user does not exist")
		}
		return nil, err
	}
	return w.Get(ctx, m.UserID, m.WeekNumber)
}

func (w *weeks) Get(ctx context.Context, userID string, weekNumber int) (*model.WeeklyReport, error) {
	row := w.db.QueryRowContext(ctx,
		`SELECT `+weekCols+` FROM weekly_reports WHERE user_id = $1 AND week_number = $2`,
		userID, weekNumber)
	m, err := scanWeek(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("week", "no weekly report for that week")
	}
	return m, err
}

func (w *weeks) List(ctx context.Context, userID string) ([]*model.WeeklyReport, error) {
	rows, err := w.db.QueryContext(ctx,
		`SELECT `+weekCols+` FROM weekly_reports WHERE user_id = $1 ORDER BY week_number DESC`,
		userID)
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
	var m model.WeeklyReport
	if err := scan(&m.UserID, &m.WeekNumber, &m.StartDate, &m.EndDate, &m.TotalHours,
		&m.EntryCount, &m.IsComplete, &m.CreationTime, &m.UpdateTime); err != nil {
		return nil, err
	}
	m.StartDate = m.StartDate.UTC()
	m.EndDate = m.EndDate.UTC()
	return &m, nil
}

// --- Checklists ---

type checklists struct{ db *sql.DB }

func (c *checklists) Upsert(ctx context.Context, m *model.JobChecklist) (*model.JobChecklist, error) {
	_, err := c.db.ExecContext(ctx, `
        INSERT INTO job_checklists (user_id, week_number, title, description)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (user_id, week_number) DO UPDATE SET
            title       = EXCLUDED.title,
            description = EXCLUDED.description,
            update_time = now()`,
		m.UserID, m.WeekNumber, m.Title, m.Description)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, model.NewNotFoundError("user", "user does not exist")
		}
		return nil, err
	}
	return c.Get(ctx, m.UserID, m.WeekNumber)
}

func (c *checklists) Get(ctx context.Context, userID string, weekNumber int) (*model.JobChecklist, error) {
	var m model.JobChecklist
	row := c.db.QueryRowContext(ctx, `
        SELECT user_id, week_number, title, description, creation_time, update_time
        FROM job_checklists WHERE user_id = $1 AND week_number = $2`, userID, weekNumber)
	err := row.Scan(&m.UserID, &m.WeekNumber, &m.Title, &m.Description, &m.CreationTime, &m.UpdateTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("checklist", "no checklist for that week")
	}
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, `
        SELECT step_number, operation, tools FROM checklist_steps
        WHERE user_id = $1 AND week_number = $2 ORDER BY step_number ASC`, userID, weekNumber)
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
		`SELECT COUNT(1) FROM job_checklists WHERE user_id = $1 AND week_number = $2`,
		userID, weekNumber).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, model.NewNotFoundError("checklist", "no checklist for that week")
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM checklist_steps WHERE user_id = $1 AND week_number = $2`,
		userID, weekNumber); err != nil {
		return nil, err
	}
	for _, st := range steps {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO checklist_steps (user_id, week_number, step_number, operation, tools)
            VALUES ($1,$2,$3,$4,$5)`,
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
	var captured time.Time
	err = s.db.QueryRowContext(ctx, `
        INSERT INTO snapshots (user_id, week_number, snapshot_id, title, entries, steps, instructions, captured_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,now())
        ON CONFLICT (user_id, week_number) DO UPDATE SET
            snapshot_id  = EXCLUDED.snapshot_id,
            title        = EXCLUDED.title,
            entries      = EXCLUDED.entries,
            steps        = EXCLUDED.steps,
            instructions = EXCLUDED.instructions,
            captured_at  = now()
        RETURNING captured_at`,
		m.UserID, m.WeekNumber, m.SnapshotID, m.Title, entriesJSON, stepsJSON, m.Instructions).Scan(&captured)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, model.NewNotFoundError("user", "user does not exist")
		}
		return nil, err
	}
	out := *m
	out.CapturedAt = captured
	return &out, nil
}

func (s *snapshots) Get(ctx context.Context, userID string, weekNumber int) (*model.Snapshot, error) {
	var (
		m           model.Snapshot
		entriesJSON []byte
		stepsJSON   []byte
	)
	row := s.db.QueryRowContext(ctx, `
        SELECT user_id, week_number, snapshot_id, title, entries, steps, instructions, captured_at
        FROM snapshots WHERE user_id = $1 AND week_number = $2`, userID, weekNumber)
	err := row.Scan(&m.UserID, &m.WeekNumber, &m.SnapshotID, &m.Title, &entriesJSON, &stepsJSON,
		&m.Instructions, &m.CapturedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("snapshot", "no snapshot for that week")
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(entriesJSON, &m.Entries); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(stepsJSON, &m.Steps); err != nil {
		return nil, err
	}
	return &m, nil
}

// --- Token balances ---

type balances struct{ db *sql.DB }

func (b *balances) Get(ctx context.Context, userID string) (*model.TokenBalance, error) {
	var m model.TokenBalance
	row := b.db.QueryRowContext(ctx, `
        SELECT user_id, available_tokens, tokens_used, status, creation_time, update_time
        FROM token_balances WHERE user_id = $1`, userID)
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
	// Compare-and-decrement in one statement; the condition closes the
	// check-then-use race between concurrent enhancement requests.
	var m model.TokenBalance
	row := b.db.QueryRowContext(ctx, `
        UPDATE token_balances
        SET available_tokens = available_tokens - $2,
            tokens_used      = tokens_used + $2,
            update_time      = now()
        WHERE user_id = $1 AND available_tokens >= $2
        RETURNING user_id, available_tokens, tokens_used, status, creation_time, update_time`,
		userID, amount)
	err := row.Scan(&m.UserID, &m.AvailableTokens, &m.TokensUsed, &m.Status, &m.CreationTime, &m.UpdateTime)
	if errors.Is(err, sql.ErrNoRows) {
		bal, gerr := b.Get(ctx, userID)
		if gerr != nil {
			return nil, gerr
		}
		return nil, model.InsufficientTokensError{Available: bal.AvailableTokens, Required: amount}
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// --- Payment transactions ---

type transactions struct{ db *sql.DB }

const txCols = `tx_id, user_id, amount, method, status, tokens_granted,
                sender_name, agent_name, phone_number, approved_by, creation_time, update_time`

func (t *transactions) Create(ctx context.Context, m *model.PaymentTransaction) (*model.PaymentTransaction, error) {
	_, err := t.db.ExecContext(ctx, `
        INSERT INTO payment_transactions (tx_id, user_id, amount, method, status,
                                          sender_name, agent_name, phone_number)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		m.TxID, m.UserID, m.Amount, m.Method, model.TxPending,
		m.SenderName, m.AgentName, m.PhoneNumber)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, model.NewNotFoundError("user", "user does not exist")
		}
		return nil, err
	}
	return t.Get(ctx, m.TxID)
}

func (t *transactions) Get(ctx context.Context, txID string) (*model.PaymentTransaction, error) {
	row := t.db.QueryRowContext(ctx,
		`SELECT `+txCols+` FROM payment_transactions WHERE tx_id = $1`, txID)
	m, err := scanTx(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("transaction", "transaction "+txID+" does not exist")
	}
	return m, err
}

func (t *transactions) ListByUser(ctx context.Context, userID string) ([]*model.PaymentTransaction, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT `+txCols+` FROM payment_transactions WHERE user_id = $1 ORDER BY creation_time DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTxs(rows)
}

func (t *transactions) ListPending(ctx context.Context) ([]*model.PaymentTransaction, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT `+txCols+` FROM payment_transactions WHERE status = $1 ORDER BY creation_time ASC`,
		model.TxPending)
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
		userID string
		amount decimal.Decimal
		status model.TransactionStatus
	)
	err = tx.QueryRowContext(ctx,
		`SELECT user_id, amount, status FROM payment_transactions WHERE tx_id = $1 FOR UPDATE`, txID).
		Scan(&userID, &amount, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("transaction", "transaction "+txID+" does not exist")
	}
	if err != nil {
		return nil, err
	}

	granted := model.TokensForAmount(amount)

	// Guarded transition: only a pending row is updated, so a repeated
	// approval cannot credit the balance twice.
	res, err := tx.ExecContext(ctx, `
        UPDATE payment_transactions
        SET status = $2, tokens_granted = $3, approved_by = $4, update_time = now()
        WHERE tx_id = $1 AND status = $5`,
		txID, model.TxApproved, granted, approvedBy, model.TxPending)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.InvalidStateTransitionError{Current: status, Target: model.TxApproved}
	}

	if _, err := tx.ExecContext(ctx, `
        UPDATE token_balances
        SET available_tokens = available_tokens + $2, status = $3, update_time = now()
        WHERE user_id = $1`,
		userID, granted, model.BalanceSubscribed); err != nil {
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
        SET status = $2, approved_by = $3, update_time = now()
        WHERE tx_id = $1 AND status = $4`,
		txID, model.TxRejected, rejectedBy, model.TxPending)
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
	var m model.PaymentTransaction
	if err := scan(&m.TxID, &m.UserID, &m.Amount, &m.Method, &m.Status, &m.TokensGranted,
		&m.SenderName, &m.AgentName, &m.PhoneNumber, &m.ApprovedBy,
		&m.CreationTime, &m.UpdateTime); err != nil {
		return nil, err
	}
	return &m, nil
}
