package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/ptlog/ptlog/internal/model"
	"github.com/ptlog/ptlog/internal/store"
	"github.com/ptlog/ptlog/internal/week"
)

var (
	minHours = decimal.NewFromFloat(0.5)
	maxHours = decimal.NewFromInt(12)
)

// ReportService maintains daily entries and their weekly roll-ups. Every
// entry write recomputes the owning week so the aggregate never drifts from
// the entries.
type ReportService struct {
	store store.Store
	cal   week.Calendar
	now   func() time.Time
}

func NewReportService(s store.Store, cal week.Calendar) *ReportService {
	return &ReportService{store: s, cal: cal, now: time.Now}
}

// UpsertDailyEntry validates and writes one day's entry, then recomputes the
// week. Writing the same date twice updates in place.
func (s *ReportService) UpsertDailyEntry(ctx context.Context, e *model.DailyEntry) (*model.DailyEntry, error) {
	if e.UserID == "" {
		return nil, model.NewValidationError("userId", "user ID is required")
	}
	if strings.TrimSpace(e.Description) == "" {
		return nil, model.NewValidationError("description", "description is required")
	}
	if e.Hours.LessThan(minHours) || e.Hours.GreaterThan(maxHours) {
		return nil, model.NewValidationError("hours", "hours must be between 0.5 and 12")
	}

	date := week.Truncate(e.Date)
	if date.After(week.Truncate(s.now())) {
		return nil, model.NewValidationError("date", "date cannot be in the future")
	}
	if !week.IsWorkday(date) {
		return nil, model.NewValidationError("date", "entries are limited to Monday through Friday")
	}
	wk := s.cal.ForDate(date)
	if wk < 1 {
		return nil, model.NewValidationError("date", "date is before the training start")
	}

	e.Date = date
	e.WeekNumber = wk
	e.DayName = week.DayName(date)

	saved, err := s.store.Entries().Upsert(ctx, e)
	if err != nil {
		log.Error().Err(err).Str("userID", e.UserID).Str("date", date.Format("2006-01-02")).Msg("Failed to upsert daily entry")
		return nil, err
	}
	if _, err := s.RecomputeWeek(ctx, e.UserID, wk); err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *ReportService) GetEntry(ctx context.Context, userID string, date time.Time) (*model.DailyEntry, error) {
	return s.store.Entries().Get(ctx, userID, week.Truncate(date))
}

func (s *ReportService) ListEntries(ctx context.Context, userID string) ([]*model.DailyEntry, error) {
	return s.store.Entries().List(ctx, userID)
}

func (s *ReportService) ListWeekEntries(ctx context.Context, userID string, weekNumber int) ([]*model.DailyEntry, error) {
	return s.store.Entries().ListByWeek(ctx, userID, weekNumber)
}

// DeleteDailyEntry removes the entry and recomputes its week. Dropping a week
// from five entries flips it back to incomplete; deleting the last entry
// leaves a zeroed aggregate.
func (s *ReportService) DeleteDailyEntry(ctx context.Context, userID string, date time.Time) error {
	date = week.Truncate(date)
	if err := s.store.Entries().Delete(ctx, userID, date); err != nil {
		return err
	}
	wk := s.cal.ForDate(date)
	if wk < 1 {
		return nil
	}
	_, err := s.RecomputeWeek(ctx, userID, wk)
	return err
}

// RecomputeWeek rebuilds the week's aggregate from its entries. Idempotent:
// recomputing an unchanged week writes the same values.
func (s *ReportService) RecomputeWeek(ctx context.Context, userID string, weekNumber int) (*model.WeeklyReport, error) {
	if weekNumber < 1 {
		return nil, model.NewValidationError("weekNumber", "week number must be positive")
	}
	entries, err := s.store.Entries().ListByWeek(ctx, userID, weekNumber)
	if err != nil {
		return nil, err
	}
	// Start/end track the observed entry dates, so a partial week spans only
	// the days that exist. The calendar range only covers the empty aggregate.
	start, end := s.cal.Range(weekNumber)
	if len(entries) > 0 {
		start, end = entries[0].Date, entries[0].Date
	}
	w := &model.WeeklyReport{
		UserID:     userID,
		WeekNumber: weekNumber,
		TotalHours: decimal.Zero,
		EntryCount: len(entries),
		IsComplete: len(entries) == 5,
	}
	for _, e := range entries {
		w.TotalHours = w.TotalHours.Add(e.Hours)
		if e.Date.Before(start) {
			start = e.Date
		}
		if e.Date.After(end) {
			end = e.Date
		}
	}
	w.StartDate = start
	w.EndDate = end
	return s.store.Weeks().Upsert(ctx, w)
}

func (s *ReportService) GetWeek(ctx context.Context, userID string, weekNumber int) (*model.WeeklyReport, error) {
	return s.store.Weeks().Get(ctx, userID, weekNumber)
}

func (s *ReportService) ListWeeks(ctx context.Context, userID string) ([]*model.WeeklyReport, error) {
	return s.store.Weeks().List(ctx, userID)
}
