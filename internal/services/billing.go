package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/ptlog/ptlog/internal/model"
	"github.com/ptlog/ptlog/internal/store"
)

// EnhanceMinTokens is the balance floor below which enhancement is refused.
const EnhanceMinTokens = 300

// BillingService owns the token balance and payment transaction lifecycle.
// Debits and approvals are atomic at the store layer; this service adds the
// pricing policy and input validation.
type BillingService struct {
	store store.Store
}

func NewBillingService(s store.Store) *BillingService {
	return &BillingService{store: s}
}

func (s *BillingService) GetBalance(ctx context.Context, userID string) (*model.TokenBalance, error) {
	return s.store.Balances().Get(ctx, userID)
}

// CanEnhance reports whether the user may start an enhancement: trial or
// subscribed status with at least EnhanceMinTokens available.
func (s *BillingService) CanEnhance(ctx context.Context, userID string) (bool, error) {
	bal, err := s.store.Balances().Get(ctx, userID)
	if err != nil {
		return false, err
	}
	if bal.Status == model.BalanceUnsubscribed {
		return false, nil
	}
	return bal.AvailableTokens >= EnhanceMinTokens, nil
}

// CostFor prices one enhancement by how much of the week is filled in. A
// full week is the cheapest tier.
func (s *BillingService) CostFor(entryCount int) int {
	switch {
	case entryCount == 5:
		return 300
	case entryCount == 3 || entryCount == 4:
		return 400
	default:
		return 500
	}
}

// DebitForEnhancement charges amount tokens, failing with
// InsufficientTokensError rather than overdrawing.
func (s *BillingService) DebitForEnhancement(ctx context.Context, userID string, amount int) (*model.TokenBalance, error) {
	if amount <= 0 {
		return nil, model.NewValidationError("amount", "debit amount must be positive")
	}
	bal, err := s.store.Balances().Debit(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	log.Info().Str("userID", userID).Int("amount", amount).Int("remaining", bal.AvailableTokens).Msg("Debited tokens for enhancement")
	return bal, nil
}

// SubmitTransaction records a payment claim for staff review. Nothing is
// credited until approval.
func (s *BillingService) SubmitTransaction(ctx context.Context, tx *model.PaymentTransaction) (*model.PaymentTransaction, error) {
	if tx.UserID == "" {
		return nil, model.NewValidationError("userId", "user ID is required")
	}
	if !tx.Amount.IsPositive() {
		return nil, model.NewValidationError("amount", "amount must be positive")
	}
	switch tx.Method {
	case model.PaymentDirect:
		if tx.SenderName == nil || strings.TrimSpace(*tx.SenderName) == "" {
			return nil, model.NewValidationError("senderName", "sender name is required for direct payments")
		}
	case model.PaymentAgent:
		if tx.AgentName == nil || strings.TrimSpace(*tx.AgentName) == "" {
			return nil, model.NewValidationError("agentName", "agent name is required for agent payments")
		}
	default:
		return nil, model.NewValidationError("method", "payment method must be DIRECT or AGENT")
	}
	if tx.TxID == "" {
		tx.TxID = uuid.New().String()
	}
	tx.Status = model.TxPending
	created, err := s.store.Transactions().Create(ctx, tx)
	if err != nil {
		log.Error().Err(err).Str("userID", tx.UserID).Msg("Failed to submit transaction")
		return nil, err
	}
	return created, nil
}

// ApproveTransaction credits floor(amount * 0.3) tokens and marks the owner
// subscribed. Only pending transactions can be approved; repeats return
// InvalidStateTransitionError without touching the balance.
func (s *BillingService) ApproveTransaction(ctx context.Context, txID, approvedBy string) (*model.PaymentTransaction, error) {
	tx, err := s.store.Transactions().Approve(ctx, txID, approvedBy)
	if err != nil {
		return nil, err
	}
	log.Info().Str("txID", txID).Str("userID", tx.UserID).Int("tokens", tx.TokensGranted).Msg("Approved payment transaction")
	return tx, nil
}

// RejectTransaction closes a pending transaction with no balance effect.
func (s *BillingService) RejectTransaction(ctx context.Context, txID, rejectedBy string) (*model.PaymentTransaction, error) {
	return s.store.Transactions().Reject(ctx, txID, rejectedBy)
}

func (s *BillingService) GetTransaction(ctx context.Context, txID string) (*model.PaymentTransaction, error) {
	return s.store.Transactions().Get(ctx, txID)
}

func (s *BillingService) ListTransactions(ctx context.Context, userID string) ([]*model.PaymentTransaction, error) {
	return s.store.Transactions().ListByUser(ctx, userID)
}

func (s *BillingService) ListPending(ctx context.Context) ([]*model.PaymentTransaction, error) {
	return s.store.Transactions().ListPending(ctx)
}

// PaymentSummary aggregates a user's payment history for the billing page.
type PaymentSummary struct {
	TotalApproved decimal.Decimal             `json:"totalApproved"`
	TokensGranted int                         `json:"tokensGranted"`
	PendingCount  int                         `json:"pendingCount"`
	Recent        []*model.PaymentTransaction `json:"recent"`
}

// Summary reports approved spend, granted tokens, pending count and the most
// recent transactions (newest first, capped at ten).
func (s *BillingService) Summary(ctx context.Context, userID string) (*PaymentSummary, error) {
	txs, err := s.store.Transactions().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sum := &PaymentSummary{TotalApproved: decimal.Zero}
	for _, tx := range txs {
		switch tx.Status {
		case model.TxApproved:
			sum.TotalApproved = sum.TotalApproved.Add(tx.Amount)
			sum.TokensGranted += tx.TokensGranted
		case model.TxPending:
			sum.PendingCount++
		}
	}
	if len(txs) > 10 {
		txs = txs[:10]
	}
	sum.Recent = txs
	return sum, nil
}
