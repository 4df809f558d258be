package llm

import (
	"context"
	"time"
)

// timeoutProvider bounds every model call with a deadline. A call that is
// already in flight runs until its own deadline; the workflow never
// hard-kills an external request.
type timeoutProvider struct {
	inner   LLMProvider
	timeout time.Duration
}

// WithCallTimeout wraps a provider so each Chat/Generate call gets its own
// deadline derived from the caller's context.
func WithCallTimeout(inner LLMProvider, timeout time.Duration) LLMProvider {
	if timeout <= 0 {
		return inner
	}
	return &timeoutProvider{inner: inner, timeout: timeout}
}

func (t *timeoutProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Chat(ctx, history, options...)
}

func (t *timeoutProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, prompt, options...)
}
