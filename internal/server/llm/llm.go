// Package llm is the boundary to the external text-completion service used
// for question answering over a user's document corpus.
package llm

import "context"

type Completer interface {
	// Complete submits prompt and returns the raw completion text.
	Complete(ctx context.Context, prompt string) (string, error)
}
