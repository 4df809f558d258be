package state

import (
	"time"

	"github.com/google/uuid"

	"agentic-rag-be/pkg/llm"
	"agentic-rag-be/pkg/store"
)

// SearchStrategy selects how the search service ranks candidates.
type SearchStrategy string

const (
	StrategySemantic SearchStrategy = "semantic"
	StrategyHybrid   SearchStrategy = "hybrid"
)

// ParseStrategy validates a caller-supplied strategy string.
func ParseStrategy(s string) (SearchStrategy, bool) {
	switch SearchStrategy(s) {
	case StrategySemantic:
		return StrategySemantic, true
	case StrategyHybrid:
		return StrategyHybrid, true
	}
	return "", false
}

// DebugEvent is one entry of the append-only audit trail. Routing logic
// never reads these; they exist for observability only.
type DebugEvent struct {
	Stage     string         `json:"stage"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload"`
}

// WorkflowState is the single mutable record threaded through every stage
// for one query's lifetime. It is created at request entry, mutated in
// place, and discarded after the final response is assembled.
type WorkflowState struct {
	// Query is the user's original text. Immutable after construction.
	Query  string
	UserID uuid.UUID

	// ReformulatedQuery, once set, is preferred over Query by downstream stages.
	ReformulatedQuery string

	SearchStrategy      SearchStrategy
	ConversationHistory []llm.Message

	// RetrievedDocuments is replaced (not appended) on each retrieval.
	// After grading only documents judged relevant survive.
	RetrievedDocuments []store.Document

	// RetrievalAttempts records the document count of each retrieval call
	// within the current generation cycle. Its length bounds the
	// reformulation loop.
	RetrievalAttempts []int

	// Confidence is the last-computed stage signal in [0,1]: analysis
	// confidence, then relevance ratio, then evaluation score. Overwritten,
	// never accumulated.
	Confidence float64

	// QualityScore gates the finalize-vs-retry branch.
	QualityScore float64

	// Response is the current best answer, possibly overwritten across
	// retry iterations. Never empty once generation has run.
	Response string

	// Sources snapshots the documents backing the current Response.
	Sources []store.Document

	// IterationCount increments once per generate-evaluate cycle.
	IterationCount int

	debug []DebugEvent
}

func New(query string, userID uuid.UUID, history []llm.Message) *WorkflowState {
	return &WorkflowState{
		Query:               query,
		UserID:              userID,
		SearchStrategy:      StrategyHybrid,
		ConversationHistory: history,
	}
}

// ActiveQuery returns the working query: the reformulation when one
// exists, the original text otherwise.
func (s *WorkflowState) ActiveQuery() string {
	if s.ReformulatedQuery != "" {
		return s.ReformulatedQuery
	}
	return s.Query
}

// RecordDebug appends a tagged event to the audit trail.
func (s *WorkflowState) RecordDebug(stage string, payload map[string]any) {
	s.debug = append(s.debug, DebugEvent{
		Stage:     stage,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}

// DebugLog returns the audit trail in insertion order.
func (s *WorkflowState) DebugLog() []DebugEvent {
	return s.debug
}

// RecordAttempt appends the document count of one retrieval call.
func (s *WorkflowState) RecordAttempt(docCount int) {
	s.RetrievalAttempts = append(s.RetrievalAttempts, docCount)
}

// ResetAttempts starts a fresh reformulation budget for the next
// generation cycle. The spent attempts stay visible in the audit trail.
func (s *WorkflowState) ResetAttempts() {
	if len(s.RetrievalAttempts) > 0 {
		s.RecordDebug("retry", map[string]any{
			"previous_attempts": append([]int(nil), s.RetrievalAttempts...),
			"iteration":         s.IterationCount,
		})
	}
	s.RetrievalAttempts = nil
}
