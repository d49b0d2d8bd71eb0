package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptlog/ptlog/internal/model"
)

func newBillingService(t *testing.T) *BillingService {
	t.Helper()
	s := newTestStore(t)
	newTestUser(t, s, "student1")
	return NewBillingService(s)
}

func TestCostFor(t *testing.T) {
	svc := newBillingService(t)

	cases := []struct {
		entries int
		want    int
	}{
		{5, 300},
		{4, 400},
		{3, 400},
		{2, 500},
		{1, 500},
		{0, 500},
		{6, 500},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, svc.CostFor(tc.entries), "entries=%d", tc.entries)
	}
}

func TestCanEnhance(t *testing.T) {
	svc := newBillingService(t)
	ctx := context.Background()

	// Fresh trial account starts with 400 tokens.
	ok, err := svc.CanEnhance(ctx, "student1")
	require.NoError(t, err)
	assert.True(t, ok)

	// A 300-token debit leaves 100, below the floor.
	_, err = svc.DebitForEnhancement(ctx, "student1", 300)
	require.NoError(t, err)
	ok, err = svc.CanEnhance(ctx, "student1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDebitNeverOverdraws(t *testing.T) {
	svc := newBillingService(t)
	ctx := context.Background()

	_, err := svc.DebitForEnhancement(ctx, "student1", 500)
	require.True(t, model.IsInsufficientTokens(err), "err = %v", err)

	bal, err := svc.GetBalance(ctx, "student1")
	require.NoError(t, err)
	assert.Equal(t, model.TrialTokens, bal.AvailableTokens)
	assert.Equal(t, 0, bal.TokensUsed)
}

func TestSubmitTransactionValidation(t *testing.T) {
	svc := newBillingService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		tx   *model.PaymentTransaction
	}{
		{"zero amount", &model.PaymentTransaction{
			UserID: "student1", Amount: decimal.Zero, Method: model.PaymentDirect, SenderName: strptr("A"),
		}},
		{"negative amount", &model.PaymentTransaction{
			UserID: "student1", Amount: decimal.NewFromInt(-5), Method: model.PaymentDirect, SenderName: strptr("A"),
		}},
		{"direct without sender", &model.PaymentTransaction{
			UserID: "student1", Amount: decimal.NewFromInt(100), Method: model.PaymentDirect,
		}},
		{"agent without agent name", &model.PaymentTransaction{
			UserID: "student1", Amount: decimal.NewFromInt(100), Method: model.PaymentAgent,
		}},
		{"unknown method", &model.PaymentTransaction{
			UserID: "student1", Amount: decimal.NewFromInt(100), Method: "WIRE",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SubmitTransaction(ctx, tc.tx)
			assert.True(t, model.IsValidationError(err), "err = %v", err)
		})
	}
}

func TestApproveCreditsAndSubscribes(t *testing.T) {
	svc := newBillingService(t)
	ctx := context.Background()

	tx, err := svc.SubmitTransaction(ctx, &model.PaymentTransaction{
		UserID: "student1",
		Amount: decimal.RequireFromString("1000"),
		Method: model.PaymentDirect, SenderName: strptr("A Parent"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.TxPending, tx.Status)
	assert.NotEmpty(t, tx.TxID)

	approved, err := svc.ApproveTransaction(ctx, tx.TxID, "staff1")
	require.NoError(t, err)
	assert.Equal(t, model.TxApproved, approved.Status)
	assert.Equal(t, 300, approved.TokensGranted)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "staff1", *approved.ApprovedBy)

	bal, err := svc.GetBalance(ctx, "student1")
	require.NoError(t, err)
	assert.Equal(t, model.BalanceSubscribed, bal.Status)
	assert.Equal(t, model.TrialTokens+300, bal.AvailableTokens)

	// Approval is one-way; a repeat is rejected and credits nothing.
	_, err = svc.ApproveTransaction(ctx, tx.TxID, "staff1")
	assert.True(t, model.IsInvalidStateTransition(err), "err = %v", err)
	bal, _ = svc.GetBalance(ctx, "student1")
	assert.Equal(t, model.TrialTokens+300, bal.AvailableTokens)
}

func TestSummary(t *testing.T) {
	svc := newBillingService(t)
	ctx := context.Background()

	approved, err := svc.SubmitTransaction(ctx, &model.PaymentTransaction{
		UserID: "student1", Amount: decimal.RequireFromString("1000"),
		Method: model.PaymentDirect, SenderName: strptr("A Parent"),
	})
	require.NoError(t, err)
	_, err = svc.ApproveTransaction(ctx, approved.TxID, "staff1")
	require.NoError(t, err)

	rejected, err := svc.SubmitTransaction(ctx, &model.PaymentTransaction{
		UserID: "student1", Amount: decimal.RequireFromString("200"),
		Method: model.PaymentAgent, AgentName: strptr("Agent X"),
	})
	require.NoError(t, err)
	_, err = svc.RejectTransaction(ctx, rejected.TxID, "staff1")
	require.NoError(t, err)

	_, err = svc.SubmitTransaction(ctx, &model.PaymentTransaction{
		UserID: "student1", Amount: decimal.RequireFromString("500"),
		Method: model.PaymentDirect, SenderName: strptr("A Parent"),
	})
	require.NoError(t, err)

	sum, err := svc.Summary(ctx, "student1")
	require.NoError(t, err)
	assert.True(t, sum.TotalApproved.Equal(decimal.RequireFromString("1000")))
	assert.Equal(t, 300, sum.TokensGranted)
	assert.Equal(t, 1, sum.PendingCount)
	assert.Len(t, sum.Recent, 3)
}
