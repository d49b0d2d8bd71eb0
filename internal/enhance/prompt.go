package enhance

import (
	"strings"
	"text/template"

	"github.com/ptlog/ptlog/internal/model"
)

const systemPrompt = "You are a technical writing assistant for industrial-training logbooks. " +
	"Rewrite the student's notes into clear, professional English without inventing work that was not described. " +
	"Respond with a single JSON object and nothing else."

// promptInput is the assembled week handed to the template.
type promptInput struct {
	Program      string
	Company      string
	WeekNumber   int
	Title        string
	Entries      []*model.DailyEntry
	Steps        []model.ChecklistStep
	Instructions string
}

var promptTmpl = template.Must(template.New("enhance").Parse(`Rewrite the following training logbook week.

{{if .Program}}Student program: {{.Program}}
{{end}}{{if .Company}}Placement company: {{.Company}}
{{end}}Week number: {{.WeekNumber}}
{{if .Title}}Job title: {{.Title}}
{{end}}
Daily entries:
{{range .Entries}}- {{.DayName}} ({{.Date.Format "2006-01-02"}}, {{.Hours}} hours): {{.Description}}
{{end}}{{if .Steps}}
Job steps:
{{range .Steps}}{{.StepNumber}}. {{.Operation}}{{if .Tools}} (tools: {{.Tools}}){{end}}
{{end}}{{end}}{{if .Instructions}}
Extra instructions from the student: {{.Instructions}}
{{end}}
Return JSON with this exact shape:
{"title": "...", "entries": [{"dayName": "Monday", "description": "..."}], "steps": [{"operation": "...", "tools": "..."}]}

Keep one entries element per daily entry above, matched by dayName. Do not change hours or dates.`))

func buildPrompt(in promptInput) (string, error) {
	var b strings.Builder
	if err := promptTmpl.Execute(&b, in); err != nil {
		return "", err
	}
	return b.String(), nil
}
