package reformulate

import (
	"context"
	"fmt"
	"strings"

	"agentic-rag-be/internal/pkg/logger"
	"agentic-rag-be/pkg/llm"
	"agentic-rag-be/pkg/rag/parse"
	"agentic-rag-be/pkg/rag/state"
)

// Result is the structured rewrite returned by the model.
type Result struct {
	Query      string  `json:"query"`
	Rationale  string  `json:"rationale"`
	Confidence float64 `json:"confidence"`
}

// Reformulator rewrites the working query when retrieval yields
// insufficient relevant material. It never touches the original query.
type Reformulator struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewReformulator(llmProvider llm.LLMProvider, log logger.ILogger) *Reformulator {
	return &Reformulator{
		llmProvider: llmProvider,
		logger:      log,
	}
}

// Reformulate sets the state's working query for the next retrieval. On
// malformed output the unmodified original query is reused; the workflow
// still advances the attempt counter toward the fallback branch, so this
// default always terminates.
func (r *Reformulator) Reformulate(ctx context.Context, ws *state.WorkflowState) {
	fallback := Result{Query: ws.Query}

	raw, err := llm.Complete(ctx, r.llmProvider, reformulatorSystemPrompt, r.buildPrompt(ws))
	if err != nil {
		r.logger.Warn("reformulate", "reformulation call failed, reusing original query", map[string]interface{}{
			"error": err.Error(),
		})
		r.apply(ws, fallback, false)
		return
	}

	result, ok := parse.DecodeOr(raw, fallback)
	if !ok || strings.TrimSpace(result.Query) == "" {
		result = fallback
		ok = false
		r.logger.Warn("reformulate", "unparseable reformulation output, reusing original query", nil)
	}
	r.apply(ws, result, ok)
}

func (r *Reformulator) apply(ws *state.WorkflowState, result Result, parsed bool) {
	ws.ReformulatedQuery = strings.TrimSpace(result.Query)

	ws.RecordDebug("reformulate", map[string]any{
		"reformulated_query": ws.ReformulatedQuery,
		"rationale":          result.Rationale,
		"confidence":         parse.Clamp01(result.Confidence),
		"parsed":             parsed,
	})
}

const reformulatorSystemPrompt = "You rewrite search queries that failed to retrieve relevant documents. " +
	"Produce one sharper query that preserves the user's intent. " +
	"Respond with ONLY valid JSON."

func (r *Reformulator) buildPrompt(ws *state.WorkflowState) string {
	var prompt strings.Builder

	prompt.WriteString("<original_query>\n")
	prompt.WriteString(ws.Query)
	prompt.WriteString("\n</original_query>\n\n")

	if ws.ReformulatedQuery != "" && ws.ReformulatedQuery != ws.Query {
		prompt.WriteString("<previous_reformulation>\n")
		prompt.WriteString(ws.ReformulatedQuery)
		prompt.WriteString("\n</previous_reformulation>\n\n")
	}

	prompt.WriteString("<retrieval_history>\n")
	for i, count := range ws.RetrievalAttempts {
		prompt.WriteString(fmt.Sprintf("Attempt %d returned %d documents before relevance filtering.\n", i+1, count))
	}
	prompt.WriteString(fmt.Sprintf("Documents currently judged relevant: %d\n", len(ws.RetrievedDocuments)))
	prompt.WriteString("</retrieval_history>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON in this exact structure:\n\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"query\": \"the rewritten search query\",\n")
	prompt.WriteString("  \"rationale\": \"why this phrasing should retrieve better material\",\n")
	prompt.WriteString("  \"confidence\": 0.0\n")
	prompt.WriteString("}\n")
	prompt.WriteString("</output_format>\n")

	return prompt.String()
}
