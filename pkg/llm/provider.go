package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// Complete issues a single system-instruction + user-prompt exchange.
// Every structured workflow stage funnels through this shape so the
// prompt layout stays uniform across providers.
func Complete(ctx context.Context, provider LLMProvider, system, prompt string, options ...Option) (string, error) {
	history := []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: prompt},
	}
	return provider.Chat(ctx, history, options...)
}
