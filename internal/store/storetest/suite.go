// Package storetest holds a compliance suite shared by store adapters.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ptlog/ptlog/internal/model"
	"github.com/ptlog/ptlog/internal/store"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// Run exercises a compliance suite against a store.Store implementation.
// makeStore should provide a clean, isolated store.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	userID := "u_" + uuid.New().String()[:8]
	u := &model.User{UserID: userID, Email: userID + "@example.test"}
	if _, err := s.Users().Create(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if got, err := s.Users().Get(ctx, userID); err != nil || got.UserID != userID {
		t.Fatalf("GetUser: got=%v err=%v", got, err)
	}

	// Account creation must seed the trial balance atomically.
	bal, err := s.Balances().Get(ctx, userID)
	if err != nil {
		t.Fatalf("GetBalance after create: %v", err)
	}
	if bal.AvailableTokens != model.TrialTokens || bal.Status != model.BalanceTrial {
		t.Fatalf("trial balance = %+v", bal)
	}

	// Duplicate users conflict.
	if _, err := s.Users().Create(ctx, u); !model.IsConflictError(err) {
		t.Fatalf("duplicate CreateUser err = %v, want ConflictError", err)
	}

	// Daily entry upsert: insert then update under the same (user, date) key.
	e := &model.DailyEntry{
		UserID: userID, WeekNumber: 3, Date: d(2025, 8, 4),
		Description: "Installed conduit runs", Hours: decimal.NewFromFloat(6),
	}
	if _, err := s.Entries().Upsert(ctx, e); err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}
	e.Description = "Installed and inspected conduit runs"
	e.Hours = decimal.NewFromFloat(7.5)
	got, err := s.Entries().Upsert(ctx, e)
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if !got.Hours.Equal(decimal.NewFromFloat(7.5)) || got.Description != e.Description {
		t.Fatalf("Upsert did not update: %+v", got)
	}
	if lst, err := s.Entries().ListByWeek(ctx, userID, 3); err != nil || len(lst) != 1 {
		t.Fatalf("ListByWeek: n=%d err=%v (upsert must not duplicate)", len(lst), err)
	}

	// Ordering by date.
	for _, day := range []int{6, 5} {
		if _, err := s.Entries().Upsert(ctx, &model.DailyEntry{
			UserID: userID, WeekNumber: 3, Date: d(2025, 8, day),
			Description: "work", Hours: decimal.NewFromInt(8),
		}); err != nil {
			t.Fatalf("Upsert day %d: %v", day, err)
		}
	}
	lst, err := s.Entries().ListByWeek(ctx, userID, 3)
	if err != nil || len(lst) != 3 {
		t.Fatalf("ListByWeek: n=%d err=%v", len(lst), err)
	}
	for i := 1; i < len(lst); i++ {
		if !lst[i-1].Date.Before(lst[i].Date) {
			t.Fatalf("entries not ordered by date: %v then %v", lst[i-1].Date, lst[i].Date)
		}
	}

	// Delete.
	if err := s.Entries().Delete(ctx, userID, d(2025, 8, 6)); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Entries().Delete(ctx, userID, d(2025, 8, 6)); !model.IsNotFoundError(err) {
		t.Fatalf("Delete missing err = %v, want NotFoundError", err)
	}

	// Weekly report upsert keyed by (user, week).
	w := &model.WeeklyReport{
		UserID: userID, WeekNumber: 3,
		StartDate: d(2025, 8, 4), EndDate: d(2025, 8, 8),
		TotalHours: decimal.NewFromFloat(15.5), EntryCount: 2,
	}
	if _, err := s.Weeks().Upsert(ctx, w); err != nil {
		t.Fatalf("Weeks.Upsert insert: %v", err)
	}
	w.TotalHours = decimal.NewFromFloat(23.5)
	w.EntryCount = 3
	w.IsComplete = false
	if _, err := s.Weeks().Upsert(ctx, w); err != nil {
		t.Fatalf("Weeks.Upsert update: %v", err)
	}
	gw, err := s.Weeks().Get(ctx, userID, 3)
	if err != nil || !gw.TotalHours.Equal(decimal.NewFromFloat(23.5)) || gw.EntryCount != 3 {
		t.Fatalf("Weeks.Get: %+v err=%v", gw, err)
	}
	if wl, err := s.Weeks().List(ctx, userID); err != nil || len(wl) != 1 {
		t.Fatalf("Weeks.List: n=%d err=%v", len(wl), err)
	}
	if _, err := s.Weeks().Get(ctx, userID, 99); !model.IsNotFoundError(err) {
		t.Fatalf("Weeks.Get missing err = %v, want NotFoundError", err)
	}

	// Checklist upsert and full step replacement.
	cl := &model.JobChecklist{UserID: userID, WeekNumber: 3, Title: "Panel wiring"}
	if _, err := s.Checklists().Upsert(ctx, cl); err != nil {
		t.Fatalf("Checklists.Upsert: %v", err)
	}
	steps := []model.ChecklistStep{
		{StepNumber: 1, Operation: "Mark out panel layout", Tools: "tape, level"},
		{StepNumber: 2, Operation: "Fix trunking", Tools: "drill"},
	}
	if _, err := s.Checklists().ReplaceSteps(ctx, userID, 3, steps); err != nil {
		t.Fatalf("ReplaceSteps: %v", err)
	}
	replacement := []model.ChecklistStep{{StepNumber: 1, Operation: "Route cables", Tools: ""}}
	if _, err := s.Checklists().ReplaceSteps(ctx, userID, 3, replacement); err != nil {
		t.Fatalf("ReplaceSteps replace: %v", err)
	}
	gc, err := s.Checklists().Get(ctx, userID, 3)
	if err != nil || len(gc.Steps) != 1 || gc.Steps[0].Operation != "Route cables" {
		t.Fatalf("Checklists.Get after replace: %+v err=%v", gc, err)
	}
	dup := []model.ChecklistStep{{StepNumber: 1, Operation: "a"}, {StepNumber: 1, Operation: "b"}}
	if _, err := s.Checklists().ReplaceSteps(ctx, userID, 3, dup); !model.IsConflictError(err) {
		t.Fatalf("duplicate step numbers err = %v, want ConflictError", err)
	}
	if _, err := s.Checklists().ReplaceSteps(ctx, userID, 42, replacement); !model.IsNotFoundError(err) {
		t.Fatalf("ReplaceSteps without checklist err = %v, want NotFoundError", err)
	}

	// Snapshot overwrite semantics: exactly one generation retained.
	snap := &model.Snapshot{
		SnapshotID: uuid.New().String(), UserID: userID, WeekNumber: 3,
		Title: "Panel wiring",
		Entries: []model.SnapshotEntry{
			{DayName: "Monday", Date: d(2025, 8, 4), Description: "orig", Hours: decimal.NewFromInt(6)},
		},
		Steps:        []model.ChecklistStep{{StepNumber: 1, Operation: "orig step"}},
		Instructions: "keep it short",
	}
	if _, err := s.Snapshots().Put(ctx, snap); err != nil {
		t.Fatalf("Snapshots.Put: %v", err)
	}
	snap2 := *snap
	snap2.SnapshotID = uuid.New().String()
	snap2.Title = "Panel wiring v2"
	if _, err := s.Snapshots().Put(ctx, &snap2); err != nil {
		t.Fatalf("Snapshots.Put overwrite: %v", err)
	}
	gs, err := s.Snapshots().Get(ctx, userID, 3)
	if err != nil {
		t.Fatalf("Snapshots.Get: %v", err)
	}
	if gs.Title != "Panel wiring v2" || gs.SnapshotID != snap2.SnapshotID {
		t.Fatalf("snapshot not overwritten: %+v", gs)
	}
	if len(gs.Entries) != 1 || gs.Entries[0].Description != "orig" || !gs.Entries[0].Hours.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("snapshot entries not round-tripped: %+v", gs.Entries)
	}
	if _, err := s.Snapshots().Get(ctx, userID, 42); !model.IsNotFoundError(err) {
		t.Fatalf("Snapshots.Get missing err = %v, want NotFoundError", err)
	}

	// Debit: sufficiency enforced at the storage layer.
	if _, err := s.Balances().Debit(ctx, userID, 300); err != nil {
		t.Fatalf("Debit: %v", err)
	}
	bal, err = s.Balances().Get(ctx, userID)
	if err != nil || bal.AvailableTokens != model.TrialTokens-300 || bal.TokensUsed != 300 {
		t.Fatalf("balance after debit: %+v err=%v", bal, err)
	}
	if _, err := s.Balances().Debit(ctx, userID, 300); !model.IsInsufficientTokens(err) {
		t.Fatalf("overdraw err = %v, want InsufficientTokensError", err)
	}

	// Transactions: pending -> approved credits exactly once.
	ptx := &model.PaymentTransaction{
		TxID: uuid.New().String(), UserID: userID,
		Amount: decimal.RequireFromString("1000.00"), Method: model.PaymentDirect,
	}
	if _, err := s.Transactions().Create(ctx, ptx); err != nil {
		t.Fatalf("Transactions.Create: %v", err)
	}
	approved, err := s.Transactions().Approve(ctx, ptx.TxID, "staff1")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.TokensGranted != 300 || approved.Status != model.TxApproved {
		t.Fatalf("approved tx = %+v, want 300 tokens granted", approved)
	}
	bal, _ = s.Balances().Get(ctx, userID)
	if bal.AvailableTokens != model.TrialTokens-300+300 || bal.Status != model.BalanceSubscribed {
		t.Fatalf("balance after approval: %+v", bal)
	}
	if _, err := s.Transactions().Approve(ctx, ptx.TxID, "staff1"); !model.IsInvalidStateTransition(err) {
		t.Fatalf("double approval err = %v, want InvalidStateTransitionError", err)
	}
	bal2, _ := s.Balances().Get(ctx, userID)
	if bal2.AvailableTokens != bal.AvailableTokens {
		t.Fatalf("double approval changed balance: %d -> %d", bal.AvailableTokens, bal2.AvailableTokens)
	}

	// Fractional grant truncates: floor(333.33 * 0.3) = 99.
	frac := &model.PaymentTransaction{
		TxID: uuid.New().String(), UserID: userID,
		Amount: decimal.RequireFromString("333.33"), Method: model.PaymentAgent,
	}
	if _, err := s.Transactions().Create(ctx, frac); err != nil {
		t.Fatalf("Transactions.Create frac: %v", err)
	}
	if got, err := s.Transactions().Approve(ctx, frac.TxID, "staff1"); err != nil || got.TokensGranted != 99 {
		t.Fatalf("fractional approval = %+v err=%v, want 99 tokens", got, err)
	}

	// Reject is terminal and credits nothing.
	rej := &model.PaymentTransaction{
		TxID: uuid.New().String(), UserID: userID,
		Amount: decimal.RequireFromString("500.00"), Method: model.PaymentDirect,
	}
	if _, err := s.Transactions().Create(ctx, rej); err != nil {
		t.Fatalf("Transactions.Create rej: %v", err)
	}
	before, _ := s.Balances().Get(ctx, userID)
	if got, err := s.Transactions().Reject(ctx, rej.TxID, "staff1"); err != nil || got.Status != model.TxRejected {
		t.Fatalf("Reject: %+v err=%v", got, err)
	}
	after, _ := s.Balances().Get(ctx, userID)
	if after.AvailableTokens != before.AvailableTokens {
		t.Fatal("reject must not change the balance")
	}
	if _, err := s.Transactions().Approve(ctx, rej.TxID, "staff1"); !model.IsInvalidStateTransition(err) {
		t.Fatalf("approve after reject err = %v, want InvalidStateTransitionError", err)
	}

	if lst, err := s.Transactions().ListByUser(ctx, userID); err != nil || len(lst) != 3 {
		t.Fatalf("ListByUser: n=%d err=%v", len(lst), err)
	}
}

// RunConcurrentDebits verifies that parallel debits never overdraw.
// Sum of successful debits must not exceed the starting balance.
func RunConcurrentDebits(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	userID := "u_" + uuid.New().String()[:8]
	if _, err := s.Users().Create(ctx, &model.User{UserID: userID, Email: userID + "@example.test"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	// Trial balance 400; only one 300-token debit can win.
	const cost = 300
	const attempts = 8

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Balances().Debit(ctx, userID, cost)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok int
	for err := range results {
		if err == nil {
			ok++
		} else if !model.IsInsufficientTokens(err) {
			t.Fatalf("unexpected debit error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("successful debits = %d, want exactly 1", ok)
	}
	bal, err := s.Balances().Get(ctx, userID)
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if bal.AvailableTokens != model.TrialTokens-cost {
		t.Fatalf("balance = %d, want %d", bal.AvailableTokens, model.TrialTokens-cost)
	}
	if bal.AvailableTokens < 0 {
		t.Fatal("balance went negative")
	}
}
