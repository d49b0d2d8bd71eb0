package store

import (
	"context"
	"time"

	"github.com/ptlog/ptlog/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
//
// Concurrency contract: upserts resolve conflicts at the storage layer
// (atomic insert-or-update keyed by the natural unique constraint), and
// Balances.Debit / Transactions.Approve are conditional updates that never
// rely on in-process locking.
type Store interface {
	Users() Users
	Entries() Entries
	Weeks() Weeks
	Checklists() Checklists
	Snapshots() Snapshots
	Balances() Balances
	Transactions() Transactions
}

type Users interface {
	// Create inserts the user and its trial token balance in one transaction.
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, u *model.User) (*model.User, error)
}

type Entries interface {
	// Upsert inserts or updates the entry keyed by (userID, date).
	Upsert(ctx context.Context, e *model.DailyEntry) (*model.DailyEntry, error)
	Get(ctx context.Context, userID string, date time.Time) (*model.DailyEntry, error)
	// ListByWeek returns the week's entries ordered by date ascending.
	ListByWeek(ctx context.Context, userID string, weekNumber int) ([]*model.DailyEntry, error)
	List(ctx context.Context, userID string) ([]*model.DailyEntry, error)
	Delete(ctx context.Context, userID string, date time.Time) error
}

type Weeks interface {
	// Upsert inserts or updates the roll-up keyed by (userID, weekNumber).
	Upsert(ctx context.Context, w *model.WeeklyReport) (*model.WeeklyReport, error)
	Get(ctx context.Context, userID string, weekNumber int) (*model.WeeklyReport, error)
	// List returns the user's weeks ordered by week number descending.
	List(ctx context.Context, userID string) ([]*model.WeeklyReport, error)
}

type Checklists interface {
	// Upsert inserts or updates title/description keyed by (userID, weekNumber).
	Upsert(ctx context.Context, c *model.JobChecklist) (*model.JobChecklist, error)
	// Get returns the checklist with steps ordered by step number, or
	// NotFoundError when none exists.
	Get(ctx context.Context, userID string, weekNumber int) (*model.JobChecklist, error)
	// ReplaceSteps deletes all steps for the checklist and inserts the given
	// list in one transaction.
	ReplaceSteps(ctx context.Context, userID string, weekNumber int, steps []model.ChecklistStep) ([]model.ChecklistStep, error)
}

type Snapshots interface {
	// Put overwrites the single retained snapshot for (userID, weekNumber).
	Put(ctx context.Context, s *model.Snapshot) (*model.Snapshot, error)
	Get(ctx context.Context, userID string, weekNumber int) (*model.Snapshot, error)
}

type Balances interface {
	Get(ctx context.Context, userID string) (*model.TokenBalance, error)
	// Debit atomically decrements availableTokens and increments tokensUsed.
	// Returns InsufficientTokensError (with the current balance attached)
	// when availableTokens < amount; no partial debit.
	Debit(ctx context.Context, userID string, amount int) (*model.TokenBalance, error)
}

type Transactions interface {
	Create(ctx context.Context, tx *model.PaymentTransaction) (*model.PaymentTransaction, error)
	Get(ctx context.Context, txID string) (*model.PaymentTransaction, error)
	// ListByUser returns the user's transactions newest first.
	ListByUser(ctx context.Context, userID string) ([]*model.PaymentTransaction, error)
	ListPending(ctx context.Context) ([]*model.PaymentTransaction, error)
	// Approve transitions PENDING -> APPROVED, freezes tokensGranted from the
	// stored amount, credits the owner's balance and marks it SUBSCRIBED, all
	// in one transaction. Any non-pending state yields
	// InvalidStateTransitionError; repeat approvals never double-credit.
	Approve(ctx context.Context, txID, approvedBy string) (*model.PaymentTransaction, error)
	// Reject transitions PENDING -> REJECTED with no balance effect.
	Reject(ctx context.Context, txID, rejectedBy string) (*model.PaymentTransaction, error)
}
