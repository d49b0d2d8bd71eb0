package enhance

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ptlog/ptlog/internal/model"
	"github.com/ptlog/ptlog/internal/services"
)

// Service is the enhancement gateway. It assembles the week, charges the
// token balance and merges the provider's rewrite back through the normal
// report and checklist paths. No store lock is held across the provider
// call.
type Service struct {
	provider  Provider
	reports   *services.ReportService
	lists     *services.ChecklistService
	snaps     *services.SnapshotService
	billing   *services.BillingService
	users     *services.UserService
	timeout   time.Duration
	maxTokens int
}

// NewService wires the gateway. provider may be nil when no API key is
// configured; every Enhance call then fails fast with MissingCredential.
func NewService(provider Provider, reports *services.ReportService, lists *services.ChecklistService, snaps *services.SnapshotService, billing *services.BillingService, users *services.UserService, timeout time.Duration, maxTokens int) *Service {
	return &Service{
		provider:  provider,
		reports:   reports,
		lists:     lists,
		snaps:     snaps,
		billing:   billing,
		users:     users,
		timeout:   timeout,
		maxTokens: maxTokens,
	}
}

// Outcome reports what one successful enhancement did.
type Outcome struct {
	Week          *model.WeeklyReport `json:"week"`
	TokensCharged int                 `json:"tokensCharged"`
	TokensLeft    int                 `json:"tokensLeft"`
}

// Enhance rewrites the week's text. The token debit happens only after the
// rewrite has been fully merged; every failure before that leaves both the
// logbook and the balance untouched.
func (s *Service) Enhance(ctx context.Context, userID string, weekNumber int, instructions string) (*Outcome, error) {
	if s.provider == nil {
		return nil, model.NewEnhancementError(model.MissingCredential, "no provider API key configured")
	}

	entries, err := s.reports.ListWeekEntries(ctx, userID, weekNumber)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, model.NewValidationError("weekNumber", "week has no entries to enhance")
	}

	cost := s.billing.CostFor(len(entries))
	bal, err := s.billing.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if bal.Status == model.BalanceUnsubscribed || bal.AvailableTokens < cost {
		return nil, model.InsufficientTokensError{Available: bal.AvailableTokens, Required: cost}
	}

	var title string
	var steps []model.ChecklistStep
	hasChecklist := false
	cl, err := s.lists.GetChecklist(ctx, userID, weekNumber)
	switch {
	case err == nil:
		hasChecklist = true
		title = cl.Title
		steps = cl.Steps
	case model.IsNotFoundError(err):
	default:
		return nil, err
	}

	// Best effort: a snapshot failure must not block the rewrite.
	if _, err := s.snaps.Capture(ctx, userID, weekNumber, instructions); err != nil {
		log.Warn().Err(err).Str("userID", userID).Int("week", weekNumber).Msg("Snapshot capture failed; continuing without revert point")
	}

	in := promptInput{
		WeekNumber:   weekNumber,
		Title:        title,
		Entries:      entries,
		Steps:        steps,
		Instructions: instructions,
	}
	if u, err := s.users.GetUser(ctx, userID); err == nil {
		if u.Program != nil {
			in.Program = *u.Program
		}
		if u.CompanyName != nil {
			in.Company = *u.CompanyName
		}
	}
	prompt, err := buildPrompt(in)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	text, err := s.provider.Complete(callCtx, CompletionRequest{
		System:    systemPrompt,
		Prompt:    prompt,
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Int("week", weekNumber).Msg("Provider call failed")
		return nil, model.NewEnhancementError(model.ProviderFailure, err.Error())
	}

	result, err := parseResult(text)
	if err != nil {
		return nil, err
	}

	if err := s.merge(ctx, userID, weekNumber, entries, hasChecklist, result); err != nil {
		return nil, err
	}

	balAfter, err := s.billing.DebitForEnhancement(ctx, userID, cost)
	if err != nil {
		return nil, err
	}
	wk, err := s.reports.GetWeek(ctx, userID, weekNumber)
	if err != nil {
		return nil, err
	}
	return &Outcome{Week: wk, TokensCharged: cost, TokensLeft: balAfter.AvailableTokens}, nil
}

// merge applies the rewrite through the normal upsert paths. Entries are
// matched by day name; dates and hours never change. Unmatched result
// entries are dropped.
func (s *Service) merge(ctx context.Context, userID string, weekNumber int, entries []*model.DailyEntry, hasChecklist bool, r *Result) error {
	byDay := make(map[string]*model.DailyEntry, len(entries))
	for _, e := range entries {
		byDay[e.DayName] = e
	}
	for _, re := range r.Entries {
		e, ok := byDay[re.DayName]
		if !ok || strings.TrimSpace(re.Description) == "" {
			continue
		}
		if _, err := s.reports.UpsertDailyEntry(ctx, &model.DailyEntry{
			UserID:      userID,
			Date:        e.Date,
			Description: re.Description,
			Hours:       e.Hours,
		}); err != nil {
			return err
		}
	}

	if strings.TrimSpace(r.Title) != "" {
		if _, err := s.lists.SetTitle(ctx, &model.JobChecklist{
			UserID: userID, WeekNumber: weekNumber, Title: r.Title,
		}); err != nil {
			return err
		}
		hasChecklist = true
	}
	if len(r.Steps) > 0 {
		// Steps need a checklist row to live on. With no existing row and no
		// returned title there is nowhere to put them, so they are dropped
		// rather than failing a merge whose entries are already applied.
		if !hasChecklist {
			log.Warn().Str("userID", userID).Int("week", weekNumber).Msg("Provider returned steps for a week without a checklist; steps dropped")
			return nil
		}
		steps := make([]model.ChecklistStep, 0, len(r.Steps))
		for _, rs := range r.Steps {
			if strings.TrimSpace(rs.Operation) == "" {
				continue
			}
			steps = append(steps, model.ChecklistStep{Operation: rs.Operation, Tools: rs.Tools})
		}
		if len(steps) > 0 {
			if _, err := s.lists.ReplaceSteps(ctx, userID, weekNumber, steps); err != nil {
				return err
			}
		}
	}
	return nil
}
