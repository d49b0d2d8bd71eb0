package enhance

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptlog/ptlog/internal/model"
)

func TestBuildPrompt(t *testing.T) {
	got, err := buildPrompt(promptInput{
		Program:    "Electrical Engineering",
		Company:    "Acme Switchgear",
		WeekNumber: 3,
		Title:      "Panel wiring",
		Entries: []*model.DailyEntry{
			{
				DayName:     "Monday",
				Date:        time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC),
				Description: "installed conduit",
				Hours:       decimal.NewFromFloat(7.5),
			},
		},
		Steps: []model.ChecklistStep{
			{StepNumber: 1, Operation: "Mark out layout", Tools: "tape"},
		},
		Instructions: "formal tone",
	})
	require.NoError(t, err)

	for _, want := range []string{
		"Electrical Engineering",
		"Acme Switchgear",
		"Week number: 3",
		"Panel wiring",
		"Monday (2025-08-04, 7.5 hours): installed conduit",
		"1. Mark out layout (tools: tape)",
		"Extra instructions from the student: formal tone",
		`"dayName": "Monday"`,
	} {
		assert.True(t, strings.Contains(got, want), "prompt missing %q\n%s", want, got)
	}
}

func TestBuildPromptOmitsEmptySections(t *testing.T) {
	got, err := buildPrompt(promptInput{
		WeekNumber: 1,
		Entries: []*model.DailyEntry{
			{DayName: "Monday", Date: time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC), Description: "work", Hours: decimal.NewFromInt(8)},
		},
	})
	require.NoError(t, err)
	assert.False(t, strings.Contains(got, "Student program:"))
	assert.False(t, strings.Contains(got, "Job steps:"))
	assert.False(t, strings.Contains(got, "Extra instructions"))
}
