package enhance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptlog/ptlog/internal/model"
)

func TestParseResultDirectJSON(t *testing.T) {
	r, err := parseResult(`{"title":"Panel wiring","entries":[{"dayName":"Monday","description":"Installed conduit"}],"steps":[{"operation":"Mark out","tools":"tape"}]}`)
	require.NoError(t, err)
	assert.Equal(t, "Panel wiring", r.Title)
	require.Len(t, r.Entries, 1)
	assert.Equal(t, "Monday", r.Entries[0].DayName)
	require.Len(t, r.Steps, 1)
	assert.Equal(t, "tape", r.Steps[0].Tools)
}

func TestParseResultWrappedInProse(t *testing.T) {
	text := "Here is the rewritten logbook:\n```json\n" +
		`{"title":"Panel wiring","entries":[{"dayName":"Monday","description":"Installed conduit"}],"steps":[]}` +
		"\n```\nLet me know if you need changes."
	r, err := parseResult(text)
	require.NoError(t, err)
	assert.Equal(t, "Panel wiring", r.Title)
}

func TestParseResultBracesInsideStrings(t *testing.T) {
	text := `The result: {"title":"Use {brackets} carefully","entries":[{"dayName":"Friday","description":"Worked on \"special\" panel {A}"}],"steps":[]} done.`
	r, err := parseResult(text)
	require.NoError(t, err)
	assert.Equal(t, "Use {brackets} carefully", r.Title)
	require.Len(t, r.Entries, 1)
}

func TestParseResultGarbage(t *testing.T) {
	// Valid-but-empty JSON counts as unparsable too; an empty rewrite must
	// never reach the merge.
	for _, text := range []string{
		"I could not process that request.",
		"{broken json",
		"{]",
		"null",
		"{}",
		`{"title":"  ","entries":[],"steps":[]}`,
		"Sure, here you go: {} hope that helps",
	} {
		_, err := parseResult(text)
		ee, ok := model.AsEnhancementError(err)
		require.True(t, ok, "text=%q err=%v", text, err)
		assert.Equal(t, model.UnparsableResponse, ee.Kind)
	}
}

func TestExtractJSONObject(t *testing.T) {
	got, ok := extractJSONObject(`noise {"a":{"b":1}} trailing {"c":2}`)
	require.True(t, ok)
	assert.Equal(t, `{"a":{"b":1}}`, got)

	_, ok = extractJSONObject("no objects here")
	assert.False(t, ok)

	_, ok = extractJSONObject(`{"never":"closed"`)
	assert.False(t, ok)
}
