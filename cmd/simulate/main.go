package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"agentic-rag-be/internal/pkg/logger"
	"agentic-rag-be/pkg/llm"
	"agentic-rag-be/pkg/rag"
	"agentic-rag-be/pkg/search"
	"agentic-rag-be/pkg/store"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// scriptedLLM answers each workflow prompt from canned responses so the
// full state machine can be exercised without a model server.
type scriptedLLM struct{}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	prompt := history[len(history)-1].Content

	switch {
	case strings.Contains(prompt, "<conversation_history>") || strings.Contains(prompt, `"complexity"`):
		return `{"complexity": "moderate", "query_type": "factual", "search_strategy": "hybrid", "answer_shape": "short_explanation", "confidence": 0.8}`, nil
	case strings.Contains(prompt, "<document>"):
		return `{"relevance_score": 0.9, "is_relevant": true, "reasoning": "Directly covers the topic."}`, nil
	case strings.Contains(prompt, "<original_query>"):
		return `{"query": "pgvector cosine similarity index tuning", "rationale": "Narrow the vocabulary.", "confidence": 0.7}`, nil
	case strings.Contains(prompt, "<answer>"):
		return `{"relevance": 0.9, "completeness": 0.8, "accuracy": 0.9, "helpfulness": 0.85, "overall_quality": 0.86}`, nil
	default:
		return "Cosine similarity in pgvector is computed with the <=> operator; an IVFFlat or HNSW index keeps it fast at scale.", nil
	}
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

// scriptedSearch returns a fixed corpus slice regardless of the query.
type scriptedSearch struct{}

func (s *scriptedSearch) Search(ctx context.Context, query string, opts search.Options) ([]store.Document, error) {
	return []store.Document{
		{ID: "doc-1", Title: "Vector search in Postgres", Content: "pgvector adds a vector column type and the <=> cosine distance operator."},
		{ID: "doc-2", Title: "Index tuning", Content: "IVFFlat trades recall for speed; HNSW keeps recall high at higher build cost."},
		{ID: "doc-3", Title: "Unrelated release notes", Content: "The billing service now supports proration."},
	}, nil
}

func main() {
	stage := color.New(color.FgCyan, color.Bold)
	answer := color.New(color.FgGreen)
	meta := color.New(color.FgYellow)

	orchestrator := rag.NewOrchestrator(
		rag.DefaultConfig(),
		&scriptedLLM{},
		&scriptedSearch{},
		nil,
		logger.NopLogger{},
	)

	fmt.Println("=== Self-Reflective RAG Simulation ===")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	start := time.Now()
	result, err := orchestrator.Process(ctx, rag.Request{
		Query:            "How does cosine similarity search work in pgvector?",
		UserID:           uuid.New(),
		IncludeDebugInfo: true,
	})
	if err != nil {
		log.Fatalf("workflow failed: %v", err)
	}
	elapsed := time.Since(start)

	for _, ev := range result.DebugInfo {
		stage.Printf("[%s]", ev.Stage)
		fmt.Printf(" %v\n", ev.Payload)
	}

	fmt.Println()
	answer.Printf("ANSWER (%v):\n%s\n\n", elapsed, result.Answer)
	meta.Printf("quality=%.2f confidence=%.2f iterations=%d strategy=%s sources=%d\n",
		result.QualityScore, result.Confidence, result.IterationCount, result.SearchStrategy, len(result.Sources))
	for _, s := range result.Suggestions {
		meta.Printf("suggestion: %s\n", s)
	}
}
