package grade

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"agentic-rag-be/internal/pkg/logger"
	"agentic-rag-be/pkg/llm"
	"agentic-rag-be/pkg/rag/parse"
	"agentic-rag-be/pkg/rag/state"
	"agentic-rag-be/pkg/store"
)

// Grade is one per-document relevance judgment. Not persisted beyond the
// current iteration.
type Grade struct {
	DocumentID     string  `json:"document_id"`
	RelevanceScore float64 `json:"relevance_score"`
	IsRelevant     bool    `json:"is_relevant"`
	Reasoning      string  `json:"reasoning"`
}

// contentWindow bounds how much of each document the model sees.
const contentWindow = 500

// Grader scores each candidate document against the query, one model call
// per document. This is the workflow's dominant cost center, so the calls
// fan out concurrently under a worker limit.
type Grader struct {
	llmProvider llm.LLMProvider
	workers     int
	logger      logger.ILogger
}

func NewGrader(llmProvider llm.LLMProvider, workers int, log logger.ILogger) *Grader {
	if workers < 1 {
		workers = 1
	}
	return &Grader{
		llmProvider: llmProvider,
		workers:     workers,
		logger:      log,
	}
}

// GradeAll filters the state's documents down to the relevant ones,
// preserving their original relative order, and overwrites confidence
// with the relevance ratio.
func (g *Grader) GradeAll(ctx context.Context, ws *state.WorkflowState) []Grade {
	docs := ws.RetrievedDocuments
	query := ws.ActiveQuery()

	grades := make([]Grade, len(docs))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i := range docs {
		eg.Go(func() error {
			grades[i] = g.gradeOne(gctx, query, docs[i])
			return nil
		})
	}
	// Workers swallow their own failures, Wait cannot error here.
	_ = eg.Wait()

	var relevant []store.Document
	for i, doc := range docs {
		if grades[i].IsRelevant {
			doc.RelevanceScore = grades[i].RelevanceScore
			relevant = append(relevant, doc)
		}
	}

	ws.RetrievedDocuments = relevant
	ws.Confidence = ratio(len(relevant), len(docs))

	ws.RecordDebug("grade_documents", map[string]any{
		"total_count":    len(docs),
		"relevant_count": len(relevant),
		"ratio":          ws.Confidence,
		"grades":         grades,
	})

	return grades
}

// ratio avoids division by zero by treating an empty candidate set as
// zero confidence.
func ratio(relevant, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(relevant) / float64(total)
}

func (g *Grader) gradeOne(ctx context.Context, query string, doc store.Document) Grade {
	fallback := Grade{DocumentID: doc.ID, IsRelevant: false, Reasoning: "grading unavailable"}

	raw, err := llm.Complete(ctx, g.llmProvider, graderSystemPrompt, g.buildPrompt(query, doc))
	if err != nil {
		g.logger.Warn("grade", "grading call failed, treating document as irrelevant", map[string]interface{}{
			"document_id": doc.ID,
			"error":       err.Error(),
		})
		return fallback
	}

	grade, ok := parse.DecodeOr(raw, fallback)
	if !ok {
		g.logger.Warn("grade", "unparseable grading output, treating document as irrelevant", map[string]interface{}{
			"document_id": doc.ID,
		})
		return fallback
	}

	grade.DocumentID = doc.ID
	grade.RelevanceScore = parse.Clamp01(grade.RelevanceScore)
	return grade
}

const graderSystemPrompt = "You are a strict relevance grader for a retrieval system. " +
	"Judge whether a document excerpt helps answer the user's question. " +
	"Respond with ONLY valid JSON."

func (g *Grader) buildPrompt(query string, doc store.Document) string {
	var prompt strings.Builder

	prompt.WriteString("<question>\n")
	prompt.WriteString(query)
	prompt.WriteString("\n</question>\n\n")

	prompt.WriteString("<document>\n")
	if doc.Title != "" {
		prompt.WriteString(fmt.Sprintf("Title: %s\n", doc.Title))
	}
	prompt.WriteString(truncate(doc.Content, contentWindow))
	prompt.WriteString("\n</document>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON in this exact structure:\n\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"is_relevant\": true,\n")
	prompt.WriteString("  \"relevance_score\": 0.0,\n")
	prompt.WriteString("  \"reasoning\": \"one sentence explaining the judgment\"\n")
	prompt.WriteString("}\n")
	prompt.WriteString("</output_format>\n")

	return prompt.String()
}

func truncate(content string, maxLength int) string {
	if len(content) <= maxLength {
		return content
	}
	return content[:maxLength] + "..."
}
