package services

import (
	"context"
	"strings"

	"github.com/ptlog/ptlog/internal/model"
	"github.com/ptlog/ptlog/internal/store"
)

// ChecklistService maintains the per-week job checklist and its ordered
// steps.
type ChecklistService struct {
	store store.Store
}

func NewChecklistService(s store.Store) *ChecklistService {
	return &ChecklistService{store: s}
}

// SetTitle creates the week's checklist on first use and updates the title
// and description afterwards.
func (s *ChecklistService) SetTitle(ctx context.Context, c *model.JobChecklist) (*model.JobChecklist, error) {
	if c.UserID == "" {
		return nil, model.NewValidationError("userId", "user ID is required")
	}
	if c.WeekNumber < 1 {
		return nil, model.NewValidationError("weekNumber", "week number must be positive")
	}
	if strings.TrimSpace(c.Title) == "" {
		return nil, model.NewValidationError("title", "title cannot be blank")
	}
	return s.store.Checklists().Upsert(ctx, c)
}

// ReplaceSteps swaps the checklist's full step list. Steps without caller
// numbering are numbered by position starting at 1; caller-supplied numbers
// must be unique.
func (s *ChecklistService) ReplaceSteps(ctx context.Context, userID string, weekNumber int, steps []model.ChecklistStep) ([]model.ChecklistStep, error) {
	if userID == "" {
		return nil, model.NewValidationError("userId", "user ID is required")
	}
	numbered := false
	for _, st := range steps {
		if st.StepNumber != 0 {
			numbered = true
			break
		}
	}
	seen := make(map[int]bool, len(steps))
	for i := range steps {
		if strings.TrimSpace(steps[i].Operation) == "" {
			return nil, model.NewValidationError("steps", "step operation cannot be blank")
		}
		if !numbered {
			steps[i].StepNumber = i + 1
		} else if steps[i].StepNumber < 1 {
			return nil, model.NewValidationError("steps", "step numbers must be positive")
		}
		if seen[steps[i].StepNumber] {
			return nil, model.NewValidationError("steps", "duplicate step number")
		}
		seen[steps[i].StepNumber] = true
	}
	return s.store.Checklists().ReplaceSteps(ctx, userID, weekNumber, steps)
}

func (s *ChecklistService) GetChecklist(ctx context.Context, userID string, weekNumber int) (*model.JobChecklist, error) {
	return s.store.Checklists().Get(ctx, userID, weekNumber)
}
