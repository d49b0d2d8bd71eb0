package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a student account in the system. Profile fields feed the
// enhancement prompt and the exported document.
type User struct {
	UserID          string     `json:"userId"`
	Email           string     `json:"email"`
	DisplayName     *string    `json:"displayName,omitempty"`
	StudentID       *string    `json:"studentId,omitempty"`
	Program         *string    `json:"program,omitempty"`
	PTPhase         *string    `json:"ptPhase,omitempty"`
	CompanyName     *string    `json:"companyName,omitempty"`
	SupervisorName  *string    `json:"supervisorName,omitempty"`
	SupervisorEmail *string    `json:"supervisorEmail,omitempty"`
	PhoneNumber     *string    `json:"phoneNumber,omitempty"`
	CreationTime    time.Time  `json:"creationTime"`
	UpdateTime      *time.Time `json:"updateTime,omitempty"`
}

// DailyEntry records one day of placement work. Unique per (user, date).
type DailyEntry struct {
	UserID       string          `json:"userId"`
	WeekNumber   int             `json:"weekNumber"`
	Date         time.Time       `json:"date"`
	DayName      string          `json:"dayName"`
	Description  string          `json:"description"`
	Hours        decimal.Decimal `json:"hours"`
	CreationTime time.Time       `json:"creationTime"`
	UpdateTime   *time.Time      `json:"updateTime,omitempty"`
}

// WeeklyReport is the per-week roll-up derived from daily entries.
// Unique per (user, weekNumber); recomputed on every entry write.
type WeeklyReport struct {
	UserID       string          `json:"userId"`
	WeekNumber   int             `json:"weekNumber"`
	StartDate    time.Time       `json:"startDate"`
	EndDate      time.Time       `json:"endDate"`
	TotalHours   decimal.Decimal `json:"totalHours"`
	EntryCount   int             `json:"entryCount"`
	IsComplete   bool            `json:"isComplete"`
	CreationTime time.Time       `json:"creationTime"`
	UpdateTime   *time.Time      `json:"updateTime,omitempty"`
}

// JobChecklist is the optional main-job record attached 1:1 to a week.
type JobChecklist struct {
	UserID       string          `json:"userId"`
	WeekNumber   int             `json:"weekNumber"`
	Title        string          `json:"title"`
	Description  *string         `json:"description,omitempty"`
	Steps        []ChecklistStep `json:"steps,omitempty"`
	CreationTime time.Time       `json:"creationTime"`
	UpdateTime   *time.Time      `json:"updateTime,omitempty"`
}

// ChecklistStep is one ordered operation of the main job.
// Unique per (checklist, stepNumber).
type ChecklistStep struct {
	StepNumber int    `json:"stepNumber"`
	Operation  string `json:"operation"`
	Tools      string `json:"tools,omitempty"`
}

// SnapshotEntry preserves one daily entry's text at capture time.
type SnapshotEntry struct {
	DayName     string          `json:"dayName"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Hours       decimal.Decimal `json:"hours"`
}

// Snapshot is the single retained pre-enhancement copy of a week's editable
// fields. A new capture overwrites the previous one.
type Snapshot struct {
	SnapshotID   string          `json:"snapshotId"`
	UserID       string          `json:"userId"`
	WeekNumber   int             `json:"weekNumber"`
	Title        string          `json:"title"`
	Entries      []SnapshotEntry `json:"entries"`
	Steps        []ChecklistStep `json:"steps"`
	Instructions string          `json:"instructions,omitempty"`
	CapturedAt   time.Time       `json:"capturedAt"`
}

// BalanceStatus is the subscription state of a token balance.
type BalanceStatus string

const (
	BalanceTrial        BalanceStatus = "TRIAL"
	BalanceUnsubscribed BalanceStatus = "UNSUBSCRIBED"
	BalanceSubscribed   BalanceStatus = "SUBSCRIBED"
)

// TrialTokens is the balance granted when an account is created.
const TrialTokens = 400

// TokenBalance tracks a user's enhancement tokens. AvailableTokens only
// decreases through debits that check sufficiency first.
type TokenBalance struct {
	UserID          string        `json:"userId"`
	AvailableTokens int           `json:"availableTokens"`
	TokensUsed      int           `json:"tokensUsed"`
	Status          BalanceStatus `json:"status"`
	CreationTime    time.Time     `json:"creationTime"`
	UpdateTime      *time.Time    `json:"updateTime,omitempty"`
}

// PaymentMethod distinguishes direct payments from money-agent payments.
type PaymentMethod string

const (
	PaymentDirect PaymentMethod = "DIRECT"
	PaymentAgent  PaymentMethod = "AGENT"
)

// TransactionStatus is the state of a payment transaction.
// PENDING -> APPROVED and PENDING -> REJECTED are the only transitions.
type TransactionStatus string

const (
	TxPending  TransactionStatus = "PENDING"
	TxApproved TransactionStatus = "APPROVED"
	TxRejected TransactionStatus = "REJECTED"
)

// PaymentTransaction is a token purchase awaiting staff approval.
// TokensGranted is computed and frozen at approval time.
type PaymentTransaction struct {
	TxID          string            `json:"txId"`
	UserID        string            `json:"userId"`
	Amount        decimal.Decimal   `json:"amount"`
	Method        PaymentMethod     `json:"method"`
	Status        TransactionStatus `json:"status"`
	TokensGranted int               `json:"tokensGranted"`
	SenderName    *string           `json:"senderName,omitempty"`
	AgentName     *string           `json:"agentName,omitempty"`
	PhoneNumber   *string           `json:"phoneNumber,omitempty"`
	ApprovedBy    *string           `json:"approvedBy,omitempty"`
	CreationTime  time.Time         `json:"creationTime"`
	UpdateTime    *time.Time        `json:"updateTime,omitempty"`
}

// TokensForAmount computes the token grant for a payment amount:
// floor(amount * 0.3). Frozen onto the transaction at approval.
func TokensForAmount(amount decimal.Decimal) int {
	return int(amount.Mul(decimal.NewFromFloat(0.3)).IntPart())
}
