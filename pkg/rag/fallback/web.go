// Package fallback holds the secondary retrieval path used only after
// the reformulation budget is exhausted.
package fallback

import (
	"context"

	"agentic-rag-be/pkg/store"
)

// WebSearcher is the pluggable boundary for an external web-search
// collaborator. Results share the Document shape of the primary
// retriever.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]store.Document, error)
}

// NoopSearcher is the default implementation: no alternative source is
// configured, so it returns an empty set and the workflow proceeds to
// generation with whatever it has.
type NoopSearcher struct{}

var _ WebSearcher = NoopSearcher{}

func (NoopSearcher) Search(ctx context.Context, query string) ([]store.Document, error) {
	return nil, nil
}
