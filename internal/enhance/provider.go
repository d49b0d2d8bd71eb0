// Package enhance rewrites a week's logbook text through an external LLM
// provider. The provider reply is parsed into a fixed schema and merged back
// through the normal report and checklist paths.
package enhance

import "context"

// CompletionRequest is a single-prompt completion call.
type CompletionRequest struct {
	System    string
	Prompt    string
	MaxTokens int
}

// Provider abstracts the LLM backend. Implementations must honour the
// context deadline and return the raw assistant text.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
