package implementation

import (
	"context"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"agentic-rag-be/internal/entity"
	"agentic-rag-be/internal/repository/contract"
)

type DocumentRepositoryImpl struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) contract.IDocumentRepository {
	return &DocumentRepositoryImpl{db: db}
}

// SearchSimilarWithScore returns documents with similarity scores, filtered by threshold.
// Cosine distance in pgvector is: 1 - cosine_similarity
// So we compute: 1 - (embedding <=> query_vector) = cosine_similarity
func (r *DocumentRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, threshold float64) ([]*contract.ScoredDocument, error) {
	if limit <= 0 {
		limit = 10
	}

	type result struct {
		entity.Document
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("documents").
		Select("documents.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("documents.user_id = ?", userId).
		Where("1 - (embedding <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredDocument, len(results))
	for i := range results {
		doc := results[i].Document
		scored[i] = &contract.ScoredDocument{Document: &doc, Similarity: results[i].Similarity}
	}
	return scored, nil
}

// SearchHybridWithScore blends vector similarity with Postgres full-text
// rank so exact keywords still surface documents the embedding misses.
// The blend weights favor the semantic signal.
func (r *DocumentRepositoryImpl) SearchHybridWithScore(ctx context.Context, query string, embedding []float32, limit int, userId uuid.UUID, threshold float64) ([]*contract.ScoredDocument, error) {
	if limit <= 0 {
		limit = 10
	}

	type result struct {
		entity.Document
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("documents").
		Select(`documents.*,
			(0.7 * (1 - (embedding <=> ?)))
			+ (0.3 * ts_rank(to_tsvector('english', coalesce(title, '') || ' ' || content), plainto_tsquery('english', ?))) as similarity`,
			queryVector, query).
		Where("documents.user_id = ?", userId).
		Where(`(0.7 * (1 - (embedding <=> ?)))
			+ (0.3 * ts_rank(to_tsvector('english', coalesce(title, '') || ' ' || content), plainto_tsquery('english', ?))) >= ?`,
			queryVector, query, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredDocument, len(results))
	for i := range results {
		doc := results[i].Document
		scored[i] = &contract.ScoredDocument{Document: &doc, Similarity: results[i].Similarity}
	}
	return scored, nil
}

func (r *DocumentRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Document{}).Count(&count).Error
	return count, err
}
