// Package pgvector implements the search client on top of the document
// corpus: query embedding plus cosine similarity, optionally blended with
// Postgres full-text rank in hybrid mode.
package pgvector

import (
	"context"
	"fmt"

	"agentic-rag-be/internal/pkg/logger"
	"agentic-rag-be/internal/repository/contract"
	"agentic-rag-be/pkg/embedding"
	"agentic-rag-be/pkg/search"
	"agentic-rag-be/pkg/store"
)

type Client struct {
	repo     contract.IDocumentRepository
	embedder embedding.EmbeddingProvider
	logger   logger.ILogger
}

var _ search.Client = &Client{}

func NewClient(repo contract.IDocumentRepository, embedder embedding.EmbeddingProvider, log logger.ILogger) *Client {
	return &Client{
		repo:     repo,
		embedder: embedder,
		logger:   log,
	}
}

func (c *Client) Search(ctx context.Context, query string, opts search.Options) ([]store.Document, error) {
	embeddingRes, err := c.embedder.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}
	vector := embeddingRes.Embedding.Values

	var scored []*contract.ScoredDocument
	if opts.Mode == search.ModeHybrid {
		scored, err = c.repo.SearchHybridWithScore(ctx, query, vector, opts.TopK, opts.UserID, opts.MinScore)
	} else {
		scored, err = c.repo.SearchSimilarWithScore(ctx, vector, opts.TopK, opts.UserID, opts.MinScore)
	}
	if err != nil {
		return nil, fmt.Errorf("corpus search failed: %w", err)
	}

	c.logger.Debug("search", "corpus search completed", map[string]interface{}{
		"mode":         string(opts.Mode),
		"result_count": len(scored),
	})

	docs := make([]store.Document, 0, len(scored))
	for _, res := range scored {
		if res.Document == nil {
			continue
		}
		docs = append(docs, store.Document{
			ID:      res.Document.Id.String(),
			Title:   res.Document.Title,
			Content: res.Document.Content,
			Metadata: map[string]any{
				"title":      res.Document.Title,
				"similarity": res.Similarity,
			},
			RelevanceScore: res.Similarity,
		})
	}

	return docs, nil
}
