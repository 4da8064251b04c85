// Package llm provides clients for language-model providers used by the AI
// classification strategy.
package llm

import (
	"context"
	"time"
)

// Client defines the interface for LLM providers. Parse sends one prompt and
// returns the raw model text; callers own decoding and validation.
type Client interface {
	Parse(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Config holds provider configuration.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	RateLimit   int // requests per minute
	Timeout     time.Duration
}
