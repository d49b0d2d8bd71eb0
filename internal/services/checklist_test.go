package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptlog/ptlog/internal/model"
)

func newChecklistService(t *testing.T) *ChecklistService {
	t.Helper()
	s := newTestStore(t)
	newTestUser(t, s, "student1")
	return NewChecklistService(s)
}

func TestSetTitle(t *testing.T) {
	svc := newChecklistService(t)
	ctx := context.Background()

	_, err := svc.SetTitle(ctx, &model.JobChecklist{UserID: "student1", WeekNumber: 3, Title: "  "})
	assert.True(t, model.IsValidationError(err), "err = %v", err)

	cl, err := svc.SetTitle(ctx, &model.JobChecklist{UserID: "student1", WeekNumber: 3, Title: "Panel wiring"})
	require.NoError(t, err)
	assert.Equal(t, "Panel wiring", cl.Title)

	// Second call updates, not duplicates.
	cl, err = svc.SetTitle(ctx, &model.JobChecklist{
		UserID: "student1", WeekNumber: 3, Title: "Panel wiring and testing",
		Description: strptr("distribution board DB-4"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Panel wiring and testing", cl.Title)

	got, err := svc.GetChecklist(ctx, "student1", 3)
	require.NoError(t, err)
	assert.Equal(t, "Panel wiring and testing", got.Title)
}

func TestReplaceStepsPositionalNumbering(t *testing.T) {
	svc := newChecklistService(t)
	ctx := context.Background()

	_, err := svc.SetTitle(ctx, &model.JobChecklist{UserID: "student1", WeekNumber: 3, Title: "Panel wiring"})
	require.NoError(t, err)

	steps, err := svc.ReplaceSteps(ctx, "student1", 3, []model.ChecklistStep{
		{Operation: "Mark out layout", Tools: "tape, level"},
		{Operation: "Fix trunking", Tools: "drill"},
		{Operation: "Pull cables"},
	})
	require.NoError(t, err)
	require.Len(t, steps, 3)
	for i, st := range steps {
		assert.Equal(t, i+1, st.StepNumber)
	}
}

func TestReplaceStepsCallerNumbering(t *testing.T) {
	svc := newChecklistService(t)
	ctx := context.Background()

	_, err := svc.SetTitle(ctx, &model.JobChecklist{UserID: "student1", WeekNumber: 3, Title: "Panel wiring"})
	require.NoError(t, err)

	_, err = svc.ReplaceSteps(ctx, "student1", 3, []model.ChecklistStep{
		{StepNumber: 2, Operation: "Second"},
		{StepNumber: 1, Operation: "First"},
	})
	require.NoError(t, err)

	got, err := svc.GetChecklist(ctx, "student1", 3)
	require.NoError(t, err)
	require.Len(t, got.Steps, 2)
	assert.Equal(t, "First", got.Steps[0].Operation)
	assert.Equal(t, "Second", got.Steps[1].Operation)

	_, err = svc.ReplaceSteps(ctx, "student1", 3, []model.ChecklistStep{
		{StepNumber: 1, Operation: "a"},
		{StepNumber: 1, Operation: "b"},
	})
	assert.True(t, model.IsValidationError(err), "err = %v", err)
}

func TestReplaceStepsRequiresChecklist(t *testing.T) {
	svc := newChecklistService(t)

	_, err := svc.ReplaceSteps(context.Background(), "student1", 7, []model.ChecklistStep{
		{Operation: "anything"},
	})
	assert.True(t, model.IsNotFoundError(err), "err = %v", err)
}
