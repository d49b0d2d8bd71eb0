package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ptlog/ptlog/internal/model"
	"github.com/ptlog/ptlog/internal/store"
)

// SnapshotService keeps one pre-enhancement copy of a week's inputs so the
// student can revert an AI rewrite. A new capture overwrites the previous
// one; there is no history.
type SnapshotService struct {
	store   store.Store
	reports *ReportService
	lists   *ChecklistService
}

func NewSnapshotService(s store.Store, reports *ReportService, lists *ChecklistService) *SnapshotService {
	return &SnapshotService{store: s, reports: reports, lists: lists}
}

// Capture records the week's current entries and checklist. The enhancement
// gateway treats a capture failure as best-effort and proceeds; callers that
// need the snapshot must check the error.
func (s *SnapshotService) Capture(ctx context.Context, userID string, weekNumber int, instructions string) (*model.Snapshot, error) {
	entries, err := s.store.Entries().ListByWeek(ctx, userID, weekNumber)
	if err != nil {
		return nil, err
	}

	snap := &model.Snapshot{
		SnapshotID:   uuid.New().String(),
		UserID:       userID,
		WeekNumber:   weekNumber,
		Instructions: instructions,
		CapturedAt:   time.Now().UTC(),
	}
	for _, e := range entries {
		snap.Entries = append(snap.Entries, model.SnapshotEntry{
			DayName:     e.DayName,
			Date:        e.Date,
			Description: e.Description,
			Hours:       e.Hours,
		})
	}

	// The checklist may not exist yet; snapshot whatever is there.
	cl, err := s.store.Checklists().Get(ctx, userID, weekNumber)
	switch {
	case err == nil:
		snap.Title = cl.Title
		snap.Steps = cl.Steps
	case model.IsNotFoundError(err):
	default:
		return nil, err
	}

	return s.store.Snapshots().Put(ctx, snap)
}

func (s *SnapshotService) GetSnapshot(ctx context.Context, userID string, weekNumber int) (*model.Snapshot, error) {
	return s.store.Snapshots().Get(ctx, userID, weekNumber)
}

// Revert restores the snapshotted title, per-day descriptions and hours, and
// checklist steps through the normal upsert paths, then recomputes the week.
// Returns NotFoundError when no snapshot exists.
func (s *SnapshotService) Revert(ctx context.Context, userID string, weekNumber int) error {
	snap, err := s.store.Snapshots().Get(ctx, userID, weekNumber)
	if err != nil {
		return err
	}

	for _, se := range snap.Entries {
		if _, err := s.reports.UpsertDailyEntry(ctx, &model.DailyEntry{
			UserID:      userID,
			Date:        se.Date,
			Description: se.Description,
			Hours:       se.Hours,
		}); err != nil {
			return err
		}
	}

	if snap.Title != "" {
		if _, err := s.lists.SetTitle(ctx, &model.JobChecklist{
			UserID: userID, WeekNumber: weekNumber, Title: snap.Title,
		}); err != nil {
			return err
		}
	}
	if len(snap.Steps) > 0 {
		if _, err := s.lists.ReplaceSteps(ctx, userID, weekNumber, snap.Steps); err != nil {
			return err
		}
	}

	log.Info().Str("userID", userID).Int("week", weekNumber).Msg("Reverted week to snapshot")
	return nil
}
