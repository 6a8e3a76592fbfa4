// Package llm provides text generation backed by hosted language model
// providers. Callers describe work as a Request; implementations handle
// transport retries and rate limiting internally.
package llm

import (
	"context"
	"errors"
)

// ErrRefused indicates the model declined to produce usable output after
// all retries were exhausted.
var ErrRefused = errors.New("model refused to generate content")

// Request describes a single generation call.
type Request struct {
	// System is the system prompt establishing the model's role.
	System string
	// Prompt is the user-facing content to act on.
	Prompt string
	// Temperature controls sampling randomness. Zero means provider default.
	Temperature float64
	// MaxTokens caps the response length. Zero means no explicit cap.
	MaxTokens int
}

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}
