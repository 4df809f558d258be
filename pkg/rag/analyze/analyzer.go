package analyze

import (
	"context"
	"fmt"
	"strings"

	"agentic-rag-be/internal/pkg/logger"
	"agentic-rag-be/pkg/llm"
	"agentic-rag-be/pkg/rag/parse"
	"agentic-rag-be/pkg/rag/state"
)

// Result is the structured judgment returned by the model.
type Result struct {
	Complexity     string  `json:"complexity"`
	QueryType      string  `json:"query_type"`
	SearchStrategy string  `json:"search_strategy"`
	AnswerShape    string  `json:"answer_shape"`
	Confidence     float64 `json:"confidence"`
}

// Analyzer classifies the query and picks a retrieval strategy. It never
// fails the workflow: malformed model output degrades to hybrid / 0.5.
type Analyzer struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewAnalyzer(llmProvider llm.LLMProvider, log logger.ILogger) *Analyzer {
	return &Analyzer{
		llmProvider: llmProvider,
		logger:      log,
	}
}

const fallbackConfidence = 0.5

// Analyze updates the state's search strategy and confidence.
func (a *Analyzer) Analyze(ctx context.Context, ws *state.WorkflowState) {
	prompt := a.buildPrompt(ws)

	fallback := Result{SearchStrategy: string(state.StrategyHybrid), Confidence: fallbackConfidence}

	raw, err := llm.Complete(ctx, a.llmProvider, analyzerSystemPrompt, prompt)
	if err != nil {
		a.logger.Warn("analyze", "query analysis call failed, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		a.apply(ws, fallback, nil)
		return
	}

	result, ok := parse.DecodeOr(raw, fallback)
	if !ok {
		a.logger.Warn("analyze", "unparseable analysis output, using defaults", nil)
	}
	a.apply(ws, result, map[string]any{
		"complexity":   result.Complexity,
		"query_type":   result.QueryType,
		"answer_shape": result.AnswerShape,
		"parsed":       ok,
	})
}

func (a *Analyzer) apply(ws *state.WorkflowState, result Result, payload map[string]any) {
	strategy, valid := state.ParseStrategy(result.SearchStrategy)
	if !valid {
		strategy = state.StrategyHybrid
	}
	ws.SearchStrategy = strategy
	ws.Confidence = parse.Clamp01(result.Confidence)

	if payload == nil {
		payload = map[string]any{}
	}
	payload["strategy"] = string(strategy)
	payload["confidence"] = ws.Confidence
	ws.RecordDebug("analyze_query", payload)
}

const analyzerSystemPrompt = "You are a query analyst for a retrieval-augmented knowledge base assistant. " +
	"You classify the user's question so the system can pick the right retrieval strategy. " +
	"Respond with ONLY valid JSON."

func (a *Analyzer) buildPrompt(ws *state.WorkflowState) string {
	var prompt strings.Builder

	if len(ws.ConversationHistory) > 0 {
		prompt.WriteString("<conversation_history>\n")
		for _, msg := range recentMessages(ws.ConversationHistory, 4) {
			prompt.WriteString(fmt.Sprintf("%s: %s\n", msg.Role, trimContent(msg.Content, 200)))
		}
		prompt.WriteString("</conversation_history>\n\n")
	}

	prompt.WriteString("<user_query>\n")
	prompt.WriteString(ws.Query)
	prompt.WriteString("\n</user_query>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON in this exact structure:\n\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"complexity\": \"simple|moderate|complex\",\n")
	prompt.WriteString("  \"query_type\": \"factual|analytical|exploratory|conversational\",\n")
	prompt.WriteString("  \"search_strategy\": \"semantic|hybrid\",\n")
	prompt.WriteString("  \"answer_shape\": \"short description of the expected answer form\",\n")
	prompt.WriteString("  \"confidence\": 0.0\n")
	prompt.WriteString("}\n\n")
	prompt.WriteString("Use \"semantic\" for conceptual questions and \"hybrid\" when exact keywords, names or identifiers matter.\n")
	prompt.WriteString("IMPORTANT: Output ONLY the JSON. No preamble, no explanation outside the JSON.\n")
	prompt.WriteString("</output_format>\n")

	return prompt.String()
}

func recentMessages(history []llm.Message, window int) []llm.Message {
	if len(history) <= window {
		return history
	}
	return history[len(history)-window:]
}

func trimContent(content string, maxLength int) string {
	if len(content) <= maxLength {
		return content
	}
	return content[:maxLength] + "..."
}
