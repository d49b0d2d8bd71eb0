// Package export renders an assembled weekly report into a document.
// Renderer implementations own the output format; the service ships with a
// plain-text renderer and leaves richer formats to other implementations.
package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ptlog/ptlog/internal/model"
)

// WeeklyDocument is everything a renderer needs for one week.
type WeeklyDocument struct {
	User      *model.User         `json:"user"`
	Week      *model.WeeklyReport `json:"week"`
	Entries   []*model.DailyEntry `json:"entries"`
	Checklist *model.JobChecklist `json:"checklist,omitempty"`
}

// Renderer turns a weekly document into output bytes.
type Renderer interface {
	Render(ctx context.Context, doc *WeeklyDocument) (data []byte, contentType string, err error)
}

// TextRenderer writes a plain-text logbook page.
type TextRenderer struct{}

func NewTextRenderer() *TextRenderer { return &TextRenderer{} }

func (r *TextRenderer) Render(_ context.Context, doc *WeeklyDocument) ([]byte, string, error) {
	var b bytes.Buffer

	fmt.Fprintf(&b, "Practical Training Logbook - Week %d\n", doc.Week.WeekNumber)
	fmt.Fprintf(&b, "%s to %s\n\n", doc.Week.StartDate.Format("2006-01-02"), doc.Week.EndDate.Format("2006-01-02"))

	name := doc.User.UserID
	if doc.User.DisplayName != nil {
		name = *doc.User.DisplayName
	}
	fmt.Fprintf(&b, "Student: %s\n", name)
	if doc.User.Program != nil {
		fmt.Fprintf(&b, "Program: %s\n", *doc.User.Program)
	}
	if doc.User.CompanyName != nil {
		fmt.Fprintf(&b, "Company: %s\n", *doc.User.CompanyName)
	}
	if doc.User.SupervisorName != nil {
		fmt.Fprintf(&b, "Supervisor: %s\n", *doc.User.SupervisorName)
	}
	b.WriteString("\n")

	if doc.Checklist != nil {
		fmt.Fprintf(&b, "Job: %s\n", doc.Checklist.Title)
		for _, st := range doc.Checklist.Steps {
			fmt.Fprintf(&b, "  %d. %s", st.StepNumber, st.Operation)
			if st.Tools != "" {
				fmt.Fprintf(&b, " (tools: %s)", st.Tools)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	for _, e := range doc.Entries {
		fmt.Fprintf(&b, "%s %s (%s hours)\n", e.DayName, e.Date.Format("2006-01-02"), e.Hours)
		fmt.Fprintf(&b, "  %s\n", e.Description)
	}
	fmt.Fprintf(&b, "\nTotal hours: %s  Entries: %d  Complete: %t\n",
		doc.Week.TotalHours, doc.Week.EntryCount, doc.Week.IsComplete)

	return b.Bytes(), "text/plain; charset=utf-8", nil
}
