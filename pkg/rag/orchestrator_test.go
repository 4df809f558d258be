package rag

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"agentic-rag-be/internal/pkg/logger"
	"agentic-rag-be/pkg/llm"
	"agentic-rag-be/pkg/search"
	"agentic-rag-be/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// scriptedLLM routes each workflow prompt to a canned response. Grading
// marks a document relevant when its content contains "relevant material";
// evaluation scores are consumed from a sequence so multi-iteration
// behavior can be scripted.
type scriptedLLM struct {
	mu         sync.Mutex
	evalScores []float64
	evalCalls  int
	rawOutput  string // when set, returned verbatim for every prompt
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	prompt := history[len(history)-1].Content

	if s.rawOutput != "" {
		return s.rawOutput, nil
	}

	switch {
	case strings.Contains(prompt, `"complexity"`):
		return `{"complexity": "moderate", "query_type": "factual", "search_strategy": "hybrid", "answer_shape": "short_explanation", "confidence": 0.8}`, nil

	case strings.Contains(prompt, "<document>"):
		if strings.Contains(prompt, "relevant material") {
			return `{"relevance_score": 0.9, "is_relevant": true, "reasoning": "On topic."}`, nil
		}
		return `{"relevance_score": 0.1, "is_relevant": false, "reasoning": "Off topic."}`, nil

	case strings.Contains(prompt, "<original_query>"):
		return `{"query": "rewritten form of the question", "rationale": "Broaden vocabulary.", "confidence": 0.7}`, nil

	case strings.Contains(prompt, "<answer>"):
		s.mu.Lock()
		defer s.mu.Unlock()
		score := 0.9
		if s.evalCalls < len(s.evalScores) {
			score = s.evalScores[s.evalCalls]
		}
		s.evalCalls++
		return fmt.Sprintf(`{"relevance": %.2f, "completeness": %.2f, "accuracy": %.2f, "helpfulness": %.2f, "overall_quality": %.2f}`,
			score, score, score, score, score), nil

	default:
		return "A generated answer grounded in the provided material.", nil
	}
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

// scriptedSearch returns document batches in sequence, repeating the
// last batch once the script runs out.
type scriptedSearch struct {
	mu      sync.Mutex
	batches [][]store.Document
	calls   int
}

func (s *scriptedSearch) Search(ctx context.Context, query string, opts search.Options) ([]store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.batches) == 0 {
		s.calls++
		return nil, nil
	}
	idx := s.calls
	if idx >= len(s.batches) {
		idx = len(s.batches) - 1
	}
	s.calls++
	return append([]store.Document(nil), s.batches[idx]...), nil
}

func corpus(relevant, irrelevant int) []store.Document {
	docs := make([]store.Document, 0, relevant+irrelevant)
	for i := 0; i < relevant; i++ {
		docs = append(docs, store.Document{
			ID:      fmt.Sprintf("rel-%d", i),
			Title:   fmt.Sprintf("Relevant doc %d", i),
			Content: "relevant material about the topic",
		})
	}
	for i := 0; i < irrelevant; i++ {
		docs = append(docs, store.Document{
			ID:      fmt.Sprintf("irr-%d", i),
			Title:   fmt.Sprintf("Unrelated doc %d", i),
			Content: "something else entirely",
		})
	}
	return docs
}

func newTestOrchestrator(llmDouble llm.LLMProvider, searchDouble search.Client) *Orchestrator {
	return NewOrchestrator(DefaultConfig(), llmDouble, searchDouble, nil, logger.NopLogger{})
}

func TestProcessHappyPath(t *testing.T) {
	llmDouble := &scriptedLLM{}
	searchDouble := &scriptedSearch{batches: [][]store.Document{corpus(3, 7)}}

	o := newTestOrchestrator(llmDouble, searchDouble)

	result, err := o.Process(context.Background(), Request{
		Query:  "how does vector search work",
		UserID: uuid.New(),
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.IterationCount)
	assert.Equal(t, "A generated answer grounded in the provided material.", result.Answer)
	// 3 of 10 documents survive grading
	assert.Len(t, result.Sources, 3)
	assert.InDelta(t, 0.9, result.QualityScore, 0.001)
	assert.Empty(t, result.Suggestions)
}

func TestProcessRelevanceRatioConfidence(t *testing.T) {
	llmDouble := &scriptedLLM{evalScores: []float64{0.9}}
	searchDouble := &scriptedSearch{batches: [][]store.Document{corpus(3, 7)}}

	o := newTestOrchestrator(llmDouble, searchDouble)

	result, err := o.Process(context.Background(), Request{
		Query:  "ratio check",
		UserID: uuid.New(),
	})

	assert.NoError(t, err)
	// 3 relevant out of 10 still clears the minimum and generation runs once
	assert.Equal(t, 1, result.IterationCount)
	assert.Len(t, result.Sources, 3)
}

func TestProcessRetriesUntilQualityClearsThreshold(t *testing.T) {
	llmDouble := &scriptedLLM{evalScores: []float64{0.4, 0.5, 0.75}}
	searchDouble := &scriptedSearch{batches: [][]store.Document{corpus(4, 0)}}

	o := newTestOrchestrator(llmDouble, searchDouble)

	result, err := o.Process(context.Background(), Request{
		Query:  "needs several tries",
		UserID: uuid.New(),
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, result.IterationCount)
	assert.InDelta(t, 0.75, result.QualityScore, 0.001)
	assert.NotEmpty(t, result.Answer)
}

func TestProcessIterationCapTerminates(t *testing.T) {
	llmDouble := &scriptedLLM{evalScores: []float64{0.3, 0.3, 0.3, 0.3, 0.3}}
	searchDouble := &scriptedSearch{batches: [][]store.Document{corpus(4, 0)}}

	o := newTestOrchestrator(llmDouble, searchDouble)

	result, err := o.Process(context.Background(), Request{
		Query:  "quality never improves",
		UserID: uuid.New(),
	})

	assert.NoError(t, err)
	// the cap, not the threshold, ends the loop
	assert.Equal(t, 3, result.IterationCount)
	assert.InDelta(t, 0.3, result.QualityScore, 0.001)
	assert.NotEmpty(t, result.Answer)
	assert.Contains(t, result.Suggestions[0], "below the usual threshold")
}

func TestProcessReformulatesWhenFirstRetrievalIsThin(t *testing.T) {
	llmDouble := &scriptedLLM{}
	searchDouble := &scriptedSearch{batches: [][]store.Document{
		corpus(0, 5), // first retrieval: nothing relevant
		corpus(3, 2), // after reformulation: enough
	}}

	o := newTestOrchestrator(llmDouble, searchDouble)

	result, err := o.Process(context.Background(), Request{
		Query:            "obscure phrasing",
		UserID:           uuid.New(),
		IncludeDebugInfo: true,
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, searchDouble.calls)
	assert.Len(t, result.Sources, 3)

	stages := make([]string, 0, len(result.DebugInfo))
	for _, ev := range result.DebugInfo {
		stages = append(stages, ev.Stage)
	}
	assert.Contains(t, stages, "reformulate")

	// the reformulated interpretation is surfaced to the user
	assert.Contains(t, result.Suggestions[len(result.Suggestions)-1], "rewritten form of the question")
}

func TestProcessWebFallbackAfterExhaustedAttempts(t *testing.T) {
	llmDouble := &scriptedLLM{}
	// every retrieval comes back empty-handed
	searchDouble := &scriptedSearch{}

	o := newTestOrchestrator(llmDouble, searchDouble)

	result, err := o.Process(context.Background(), Request{
		Query:            "nothing in the corpus",
		UserID:           uuid.New(),
		IncludeDebugInfo: true,
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, searchDouble.calls)
	assert.Empty(t, result.Sources)
	assert.NotEmpty(t, result.Answer)
	assert.Contains(t, result.Suggestions[0], "No relevant documents found")

	stages := make([]string, 0, len(result.DebugInfo))
	for _, ev := range result.DebugInfo {
		stages = append(stages, ev.Stage)
	}
	assert.Contains(t, stages, "web_fallback")
}

func TestProcessSurvivesUnparseableModelOutput(t *testing.T) {
	llmDouble := &scriptedLLM{rawOutput: "I refuse to emit JSON today."}
	searchDouble := &scriptedSearch{batches: [][]store.Document{corpus(0, 4)}}

	o := newTestOrchestrator(llmDouble, searchDouble)

	result, err := o.Process(context.Background(), Request{
		Query:  "stress the parsers",
		UserID: uuid.New(),
	})

	// every stage falls back: grading drops all docs, evaluation scores 0.5,
	// the loop runs to the cap and the answer is still non-empty
	assert.NoError(t, err)
	assert.Equal(t, 3, result.IterationCount)
	assert.NotEmpty(t, result.Answer)
	assert.InDelta(t, 0.5, result.QualityScore, 0.001)
}

func TestProcessEmptyQueryRejected(t *testing.T) {
	o := newTestOrchestrator(&scriptedLLM{}, &scriptedSearch{})

	result, err := o.Process(context.Background(), Request{Query: "", UserID: uuid.New()})

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestProcessHonorsCancellation(t *testing.T) {
	o := newTestOrchestrator(&scriptedLLM{}, &scriptedSearch{batches: [][]store.Document{corpus(3, 0)}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := o.Process(ctx, Request{Query: "cancelled before start", UserID: uuid.New()})

	assert.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestProcessCallerStrategyOverride(t *testing.T) {
	llmDouble := &scriptedLLM{}
	searchDouble := &scriptedSearch{batches: [][]store.Document{corpus(3, 0)}}

	o := newTestOrchestrator(llmDouble, searchDouble)

	result, err := o.Process(context.Background(), Request{
		Query:          "force semantic",
		UserID:         uuid.New(),
		SearchStrategy: "semantic",
	})

	assert.NoError(t, err)
	// the analyzer said hybrid, the caller wins
	assert.EqualValues(t, "semantic", result.SearchStrategy)
}
