package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedProvider memoizes query embeddings in Redis. Reformulation loops
// and repeated questions hit the same vectors often enough that skipping
// the upstream call is worth it. Redis being down just means a miss.
type CachedProvider struct {
	inner EmbeddingProvider
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedProvider(inner EmbeddingProvider, rdb *redis.Client, ttl time.Duration) EmbeddingProvider {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedProvider{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
	}
}

func (c *CachedProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	key := cacheKey(text, taskType)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if cached, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var values []float32
		if err := json.Unmarshal(cached, &values); err == nil && len(values) > 0 {
			return &EmbeddingResponse{
				Embedding: EmbeddingResponseEmbedding{Values: values},
			}, nil
		}
	}

	res, err := c.inner.Generate(text, taskType)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(res.Embedding.Values); err == nil {
		// Best effort, a failed SET only costs the next caller a recompute
		c.rdb.Set(ctx, key, payload, c.ttl)
	}

	return res, nil
}

func cacheKey(text, taskType string) string {
	sum := sha256.Sum256([]byte(taskType + ":" + text))
	return "emb:" + hex.EncodeToString(sum[:])
}
