package evaluate

import (
	"context"
	"strings"

	"agentic-rag-be/internal/pkg/logger"
	"agentic-rag-be/pkg/llm"
	"agentic-rag-be/pkg/rag/parse"
	"agentic-rag-be/pkg/rag/state"
)

// Result is the structured quality judgment returned by the model.
type Result struct {
	Relevance      float64 `json:"relevance"`
	Completeness   float64 `json:"completeness"`
	Accuracy       float64 `json:"accuracy"`
	Helpfulness    float64 `json:"helpfulness"`
	OverallQuality float64 `json:"overall_quality"`
}

const fallbackQuality = 0.5

// Evaluator scores the generated answer against the query on four axes
// plus an aggregate. The aggregate drives the finalize-vs-retry branch.
type Evaluator struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewEvaluator(llmProvider llm.LLMProvider, log logger.ILogger) *Evaluator {
	return &Evaluator{
		llmProvider: llmProvider,
		logger:      log,
	}
}

// Evaluate overwrites the state's quality score and confidence with the
// aggregate. Parse failures degrade to 0.5.
func (e *Evaluator) Evaluate(ctx context.Context, ws *state.WorkflowState) {
	fallback := Result{OverallQuality: fallbackQuality}

	raw, err := llm.Complete(ctx, e.llmProvider, evaluatorSystemPrompt, e.buildPrompt(ws))
	if err != nil {
		e.logger.Warn("evaluate", "evaluation call failed, using default score", map[string]interface{}{
			"error": err.Error(),
		})
		e.apply(ws, fallback, false)
		return
	}

	result, ok := parse.DecodeOr(raw, fallback)
	if !ok {
		e.logger.Warn("evaluate", "unparseable evaluation output, using default score", nil)
	}
	e.apply(ws, result, ok)
}

func (e *Evaluator) apply(ws *state.WorkflowState, result Result, parsed bool) {
	quality := parse.Clamp01(result.OverallQuality)
	ws.QualityScore = quality
	ws.Confidence = quality

	ws.RecordDebug("evaluate", map[string]any{
		"relevance":       parse.Clamp01(result.Relevance),
		"completeness":    parse.Clamp01(result.Completeness),
		"accuracy":        parse.Clamp01(result.Accuracy),
		"helpfulness":     parse.Clamp01(result.Helpfulness),
		"overall_quality": quality,
		"iteration":       ws.IterationCount,
		"parsed":          parsed,
	})
}

const evaluatorSystemPrompt = "You are a quality evaluator for a retrieval-augmented assistant. " +
	"Score how well the answer serves the question. " +
	"Respond with ONLY valid JSON."

func (e *Evaluator) buildPrompt(ws *state.WorkflowState) string {
	var prompt strings.Builder

	prompt.WriteString("<question>\n")
	prompt.WriteString(ws.Query)
	prompt.WriteString("\n</question>\n\n")

	prompt.WriteString("<answer>\n")
	prompt.WriteString(ws.Response)
	prompt.WriteString("\n</answer>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Score each axis in [0,1]. Respond with ONLY valid JSON in this exact structure:\n\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"relevance\": 0.0,\n")
	prompt.WriteString("  \"completeness\": 0.0,\n")
	prompt.WriteString("  \"accuracy\": 0.0,\n")
	prompt.WriteString("  \"helpfulness\": 0.0,\n")
	prompt.WriteString("  \"overall_quality\": 0.0\n")
	prompt.WriteString("}\n")
	prompt.WriteString("</output_format>\n")

	return prompt.String()
}
