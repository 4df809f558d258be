package retrieve

import (
	"context"
	"time"

	"agentic-rag-be/internal/pkg/logger"
	"agentic-rag-be/pkg/rag/state"
	"agentic-rag-be/pkg/search"
)

// Config encapsulates retrieval parameters
type Config struct {
	TopK     int
	MinScore float64
	Timeout  time.Duration
}

// DefaultConfig returns default retrieval configuration
func DefaultConfig() Config {
	return Config{
		TopK:     10,
		MinScore: 0.5,
		Timeout:  20 * time.Second,
	}
}

// Retriever calls the document search service with the chosen strategy.
// Search failures are common (rate limits, transient timeouts) and must
// not fail the user-facing request: they degrade to zero documents.
type Retriever struct {
	client search.Client
	cfg    Config
	logger logger.ILogger
}

func NewRetriever(client search.Client, cfg Config, log logger.ILogger) *Retriever {
	return &Retriever{
		client: client,
		cfg:    cfg,
		logger: log,
	}
}

// Retrieve replaces the state's document set with fresh candidates and
// records the attempt.
func (r *Retriever) Retrieve(ctx context.Context, ws *state.WorkflowState) {
	query := ws.ActiveQuery()

	cctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	docs, err := r.client.Search(cctx, query, search.Options{
		UserID:   ws.UserID,
		TopK:     r.cfg.TopK,
		MinScore: r.cfg.MinScore,
		Mode:     toMode(ws.SearchStrategy),
	})
	if err != nil {
		r.logger.Warn("retrieve", "search call failed, continuing with zero documents", map[string]interface{}{
			"error": err.Error(),
			"query": query,
		})
		docs = nil
	}

	ws.RetrievedDocuments = docs
	ws.RecordAttempt(len(docs))

	ws.RecordDebug("retrieve", map[string]any{
		"query":          query,
		"strategy":       string(ws.SearchStrategy),
		"document_count": len(docs),
		"attempt":        len(ws.RetrievalAttempts),
		"failed":         err != nil,
	})
}

func toMode(strategy state.SearchStrategy) search.Mode {
	if strategy == state.StrategySemantic {
		return search.ModeSemantic
	}
	return search.ModeHybrid
}
