// Package evaluator provides optional LLM-based labeling of unrecognized
// button text.
//
// The phrase classifier alone decides what gets clicked. The evaluator is
// advisory: when OCR text matches no phrase set, it can ask an LLM what the
// text most likely is, and the answer goes to the log and the operator view
// only. No input is ever emitted on the strength of an LLM label.
package evaluator

import (
	"context"
	"fmt"
	"strings"
)

// Label is the LLM's advisory reading of a piece of OCR text.
type Label struct {
	// Category is one of "accept", "completed", "busy", "dismiss", "unknown".
	Category string `json:"category"`
	// Reason is a one-sentence explanation.
	Reason string `json:"reason"`

	// Token usage from the underlying API call.
	Usage TokenUsage `json:"-"`
}

// TokenUsage tracks tokens consumed by a single evaluation.
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
}

// Evaluator sends OCR text to an LLM and returns an advisory label.
type Evaluator interface {
	// Label asks the LLM what the given OCR text most likely represents.
	Label(ctx context.Context, text string) (*Label, error)

	// Provider returns the provider name (e.g., "anthropic", "openai").
	Provider() string

	// Model returns the model name used for labeling.
	Model() string
}

// Config holds provider-independent evaluator configuration.
type Config struct {
	Provider  string
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int64
}

// New builds an evaluator for the configured provider.
func New(cfg Config) (Evaluator, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "anthropic":
		return NewAnthropicEvaluator(AnthropicConfig{
			BaseURL:   cfg.BaseURL,
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
		}), nil
	case "openai":
		return NewOpenAIEvaluator(OpenAIConfig{
			BaseURL:   cfg.BaseURL,
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
		}), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (want anthropic or openai)", cfg.Provider)
	}
}
