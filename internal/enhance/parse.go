package enhance

import (
	"encoding/json"
	"strings"

	"github.com/ptlog/ptlog/internal/model"
)

// Result is the fixed schema expected back from the provider.
type Result struct {
	Title   string        `json:"title"`
	Entries []ResultEntry `json:"entries"`
	Steps   []ResultStep  `json:"steps"`
}

type ResultEntry struct {
	DayName     string `json:"dayName"`
	Description string `json:"description"`
}

type ResultStep struct {
	Operation string `json:"operation"`
	Tools     string `json:"tools"`
}

// empty reports whether the result carries nothing to merge. A reply of
// "null" or "{}" decodes without error but must not be treated as a rewrite.
func (r *Result) empty() bool {
	return strings.TrimSpace(r.Title) == "" && len(r.Entries) == 0 && len(r.Steps) == 0
}

// parseResult decodes the provider text. Models often wrap the JSON in prose
// or code fences, so on a direct-unmarshal failure the first balanced-brace
// object is extracted and decoded once more.
func parseResult(text string) (*Result, error) {
	var r Result
	if err := json.Unmarshal([]byte(text), &r); err == nil && !r.empty() {
		return &r, nil
	}
	if candidate, ok := extractJSONObject(text); ok {
		r = Result{}
		if err := json.Unmarshal([]byte(candidate), &r); err == nil && !r.empty() {
			return &r, nil
		}
	}
	return nil, model.NewEnhancementError(model.UnparsableResponse, "provider reply did not contain a usable rewrite")
}

// extractJSONObject returns the first top-level {...} substring, tracking
// brace depth outside string literals.
func extractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
