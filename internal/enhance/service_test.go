package enhance

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptlog/ptlog/internal/model"
	"github.com/ptlog/ptlog/internal/services"
	"github.com/ptlog/ptlog/internal/store/sqlite"
	"github.com/ptlog/ptlog/internal/week"
)

type fakeProvider struct {
	reply string
	err   error
	calls int
}

func (f *fakeProvider) Complete(_ context.Context, _ CompletionRequest) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fixture struct {
	gateway *Service
	reports *services.ReportService
	snaps   *services.SnapshotService
	billing *services.BillingService
	lists   *services.ChecklistService
}

func newFixture(t *testing.T, provider Provider) *fixture {
	t.Helper()
	st, err := sqlite.OpenStore(filepath.Join(t.TempDir(), "ptlog_test.db"))
	require.NoError(t, err)
	_, err = st.Users().Create(context.Background(), &model.User{
		UserID: "student1", Email: "student1@example.test",
	})
	require.NoError(t, err)

	cal := week.MustCalendar(time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC))
	reports := services.NewReportService(st, cal)
	lists := services.NewChecklistService(st)
	snaps := services.NewSnapshotService(st, reports, lists)
	billing := services.NewBillingService(st)
	users := services.NewUserService(st)
	gateway := NewService(provider, reports, lists, snaps, billing, users, 5*time.Second, 2000)
	return &fixture{gateway: gateway, reports: reports, snaps: snaps, billing: billing, lists: lists}
}

func (f *fixture) seedWeek(t *testing.T, days ...int) {
	t.Helper()
	for _, day := range days {
		_, err := f.reports.UpsertDailyEntry(context.Background(), &model.DailyEntry{
			UserID:      "student1",
			Date:        time.Date(2025, 8, day, 0, 0, 0, 0, time.UTC),
			Description: "raw notes for the day",
			Hours:       decimal.NewFromInt(7),
		})
		require.NoError(t, err)
	}
}

const goodReply = `{"title":"Distribution board wiring","entries":[{"dayName":"Monday","description":"Installed and terminated conduit runs"},{"dayName":"Tuesday","description":"Completed panel terminations"}],"steps":[{"operation":"Mark out layout","tools":"tape, level"},{"operation":"Fix trunking","tools":"drill"}]}`

func TestEnhanceMissingCredential(t *testing.T) {
	f := newFixture(t, nil)
	f.seedWeek(t, 4)

	_, err := f.gateway.Enhance(context.Background(), "student1", 3, "")
	ee, ok := model.AsEnhancementError(err)
	require.True(t, ok, "err = %v", err)
	assert.Equal(t, model.MissingCredential, ee.Kind)
}

func TestEnhanceEmptyWeek(t *testing.T) {
	provider := &fakeProvider{reply: goodReply}
	f := newFixture(t, provider)

	_, err := f.gateway.Enhance(context.Background(), "student1", 3, "")
	assert.True(t, model.IsValidationError(err), "err = %v", err)
	assert.Zero(t, provider.calls)
}

func TestEnhanceInsufficientTokens(t *testing.T) {
	provider := &fakeProvider{reply: goodReply}
	f := newFixture(t, provider)
	// One entry prices at 500, above the 400 trial balance. The provider
	// must not be called at all.
	f.seedWeek(t, 4)

	_, err := f.gateway.Enhance(context.Background(), "student1", 3, "")
	require.True(t, model.IsInsufficientTokens(err), "err = %v", err)
	assert.Zero(t, provider.calls)

	bal, err := f.billing.GetBalance(context.Background(), "student1")
	require.NoError(t, err)
	assert.Equal(t, model.TrialTokens, bal.AvailableTokens)
}

func TestEnhanceProviderFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.New("upstream timeout")}
	f := newFixture(t, provider)
	f.seedWeek(t, 4, 5, 6)

	_, err := f.gateway.Enhance(context.Background(), "student1", 3, "")
	ee, ok := model.AsEnhancementError(err)
	require.True(t, ok, "err = %v", err)
	assert.Equal(t, model.ProviderFailure, ee.Kind)

	// No debit and no text change.
	bal, _ := f.billing.GetBalance(context.Background(), "student1")
	assert.Equal(t, model.TrialTokens, bal.AvailableTokens)
	entries, _ := f.reports.ListWeekEntries(context.Background(), "student1", 3)
	assert.Equal(t, "raw notes for the day", entries[0].Description)
}

func TestEnhanceUnparsableResponse(t *testing.T) {
	provider := &fakeProvider{reply: "Sorry, I can't help with that."}
	f := newFixture(t, provider)
	f.seedWeek(t, 4, 5, 6)

	_, err := f.gateway.Enhance(context.Background(), "student1", 3, "")
	ee, ok := model.AsEnhancementError(err)
	require.True(t, ok, "err = %v", err)
	assert.Equal(t, model.UnparsableResponse, ee.Kind)

	bal, _ := f.billing.GetBalance(context.Background(), "student1")
	assert.Equal(t, model.TrialTokens, bal.AvailableTokens)
	entries, _ := f.reports.ListWeekEntries(context.Background(), "student1", 3)
	assert.Equal(t, "raw notes for the day", entries[0].Description)
}

func TestEnhanceEmptyReplyNotBilled(t *testing.T) {
	// "{}" decodes cleanly but carries nothing; the user must not be charged
	// for a no-op merge.
	provider := &fakeProvider{reply: "{}"}
	f := newFixture(t, provider)
	f.seedWeek(t, 4, 5, 6)

	_, err := f.gateway.Enhance(context.Background(), "student1", 3, "")
	ee, ok := model.AsEnhancementError(err)
	require.True(t, ok, "err = %v", err)
	assert.Equal(t, model.UnparsableResponse, ee.Kind)

	bal, _ := f.billing.GetBalance(context.Background(), "student1")
	assert.Equal(t, model.TrialTokens, bal.AvailableTokens)
}

func TestEnhanceStepsWithoutChecklistDropped(t *testing.T) {
	// No checklist row exists and the reply names no title, so the returned
	// steps have nowhere to go. The entry rewrite still lands and is billed.
	provider := &fakeProvider{reply: `{"entries":[{"dayName":"Monday","description":"Installed conduit runs"}],"steps":[{"operation":"Mark out","tools":"tape"}]}`}
	f := newFixture(t, provider)
	f.seedWeek(t, 4, 5, 6)

	out, err := f.gateway.Enhance(context.Background(), "student1", 3, "")
	require.NoError(t, err)
	assert.Equal(t, 400, out.TokensCharged)

	ctx := context.Background()
	entries, err := f.reports.ListWeekEntries(ctx, "student1", 3)
	require.NoError(t, err)
	assert.Equal(t, "Installed conduit runs", entries[0].Description)

	_, err = f.lists.GetChecklist(ctx, "student1", 3)
	assert.True(t, model.IsNotFoundError(err), "err = %v", err)
}

func TestEnhanceSuccess(t *testing.T) {
	provider := &fakeProvider{reply: goodReply}
	f := newFixture(t, provider)
	// Three entries price at 400, exactly the trial balance.
	f.seedWeek(t, 4, 5, 6)

	out, err := f.gateway.Enhance(context.Background(), "student1", 3, "formal tone please")
	require.NoError(t, err)
	assert.Equal(t, 400, out.TokensCharged)
	assert.Equal(t, 0, out.TokensLeft)
	assert.Equal(t, 3, out.Week.EntryCount)

	ctx := context.Background()
	entries, err := f.reports.ListWeekEntries(ctx, "student1", 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "Installed and terminated conduit runs", entries[0].Description)
	assert.Equal(t, "Completed panel terminations", entries[1].Description)
	// No Wednesday element in the reply, so that entry keeps its text.
	assert.Equal(t, "raw notes for the day", entries[2].Description)
	// Hours never change.
	assert.True(t, entries[0].Hours.Equal(decimal.NewFromInt(7)))

	cl, err := f.lists.GetChecklist(ctx, "student1", 3)
	require.NoError(t, err)
	assert.Equal(t, "Distribution board wiring", cl.Title)
	require.Len(t, cl.Steps, 2)
	assert.Equal(t, 1, cl.Steps[0].StepNumber)

	// The pre-enhancement snapshot holds the raw text for revert.
	snap, err := f.snaps.GetSnapshot(ctx, "student1", 3)
	require.NoError(t, err)
	require.Len(t, snap.Entries, 3)
	assert.Equal(t, "raw notes for the day", snap.Entries[0].Description)
	assert.Equal(t, "formal tone please", snap.Instructions)

	require.NoError(t, f.snaps.Revert(ctx, "student1", 3))
	entries, err = f.reports.ListWeekEntries(ctx, "student1", 3)
	require.NoError(t, err)
	assert.Equal(t, "raw notes for the day", entries[0].Description)
}
