package store

// Document is a read-only reference to a corpus entry surfaced by the
// search service. The workflow never mutates the underlying corpus; it
// only carries these references between stages.
type Document struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Content        string         `json:"content"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	RelevanceScore float64        `json:"relevance_score,omitempty"`
}
