// Package search defines the boundary to the document search service.
// The workflow depends only on the Client interface; the pgvector
// subpackage provides the concrete corpus-backed implementation.
package search

import (
	"context"

	"github.com/google/uuid"

	"agentic-rag-be/pkg/store"
)

// Mode selects the ranking style of a search call.
type Mode string

const (
	ModeSemantic Mode = "semantic"
	ModeHybrid   Mode = "hybrid"
)

// Options encapsulates search parameters. Results are always scoped to
// the requesting user.
type Options struct {
	UserID   uuid.UUID
	TopK     int
	MinScore float64
	Mode     Mode
	Filter   map[string]string
}

// Client is the outbound contract to the search service. Implementations
// must return an empty slice (not an error the orchestrator cannot
// handle) when nothing matches.
type Client interface {
	Search(ctx context.Context, query string, opts Options) ([]store.Document, error)
}
