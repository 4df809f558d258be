package contract

import (
	"context"

	"github.com/google/uuid"

	"agentic-rag-be/internal/entity"
)

// ScoredDocument pairs a corpus entry with its similarity to a query.
type ScoredDocument struct {
	Document   *entity.Document
	Similarity float64
}

// IDocumentRepository is the read-side contract over the document corpus.
type IDocumentRepository interface {
	// SearchSimilarWithScore ranks by cosine similarity of the embedding.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, threshold float64) ([]*ScoredDocument, error)

	// SearchHybridWithScore blends cosine similarity with full-text rank.
	SearchHybridWithScore(ctx context.Context, query string, embedding []float32, limit int, userId uuid.UUID, threshold float64) ([]*ScoredDocument, error)

	Count(ctx context.Context) (int64, error)
}
