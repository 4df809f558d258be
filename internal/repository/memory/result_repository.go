package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// QueryResult is the summary kept around so feedback submissions can be
// correlated with the query they judge.
type QueryResult struct {
	QueryID      string    `json:"query_id"`
	UserID       string    `json:"user_id"`
	Query        string    `json:"query"`
	Answer       string    `json:"answer"`
	QualityScore float64   `json:"quality_score"`
	CreatedAt    time.Time `json:"created_at"`
}

type ResultRepository struct {
	cache *cache.Cache
}

func NewResultRepository() *ResultRepository {
	// Feedback normally arrives within the session, an hour is plenty
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ResultRepository{
		cache: c,
	}
}

func (r *ResultRepository) Save(result *QueryResult) {
	r.cache.Set(result.QueryID, result, cache.DefaultExpiration)
}

func (r *ResultRepository) Get(queryID string) (*QueryResult, bool) {
	if x, found := r.cache.Get(queryID); found {
		return x.(*QueryResult), true
	}
	return nil, false
}

func (r *ResultRepository) Delete(queryID string) {
	r.cache.Delete(queryID)
}
