package response

import (
	"context"
	"fmt"
	"strings"

	"agentic-rag-be/internal/pkg/logger"
	"agentic-rag-be/pkg/llm"
	"agentic-rag-be/pkg/rag/state"
	"agentic-rag-be/pkg/store"
)

// ApologyMessage keeps the non-empty response invariant when generation
// produces nothing at all.
const ApologyMessage = "I'm sorry, I wasn't able to put together an answer this time. Please try again in a moment."

// Generator produces the answer from the query, the relevant documents
// and the conversation history. No retries happen inside this stage.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewGenerator(llmProvider llm.LLMProvider, log logger.ILogger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      log,
	}
}

// Generate sets the state's response and snapshots the documents backing
// it. The response is never left empty.
func (g *Generator) Generate(ctx context.Context, ws *state.WorkflowState) {
	promptText := g.buildGroundedPrompt(ws)

	fullHistory := append(append([]llm.Message(nil), ws.ConversationHistory...), llm.Message{
		Role:    "user",
		Content: promptText,
	})

	answer, err := g.llmProvider.Chat(ctx, fullHistory)
	if err != nil {
		g.logger.Error("generate", "answer generation failed", map[string]interface{}{
			"error": err.Error(),
		})
		answer = ""
	}

	if strings.TrimSpace(answer) == "" {
		answer = ApologyMessage
	}

	ws.Response = answer
	ws.Sources = append([]store.Document(nil), ws.RetrievedDocuments...)

	ws.RecordDebug("generate", map[string]any{
		"source_count":    len(ws.Sources),
		"response_length": len(answer),
		"iteration":       ws.IterationCount,
		"failed":          err != nil,
	})
}

func (g *Generator) buildGroundedPrompt(ws *state.WorkflowState) string {
	var prompt strings.Builder

	prompt.WriteString("<grounded_reference_material>\n")
	if len(ws.RetrievedDocuments) == 0 {
		prompt.WriteString("No documents were retrieved for this question.\n")
	} else {
		prompt.WriteString("CRITICAL: This is the ONLY data source. Do NOT use outside knowledge.\n\n")
		for _, doc := range ws.RetrievedDocuments {
			title := doc.Title
			if title == "" {
				title = "Untitled"
			}
			prompt.WriteString(fmt.Sprintf("\n--- CONTENT OF: %s ---\n", title))
			prompt.WriteString(doc.Content)
			prompt.WriteString(fmt.Sprintf("\n--- END OF: %s ---\n", title))
		}
	}
	prompt.WriteString("</grounded_reference_material>\n\n")

	prompt.WriteString("<task_instructions>\n")
	prompt.WriteString("You are a diligent assistant answering based on the provided content.\n\n")
	prompt.WriteString("EXECUTION RULES (MUST FOLLOW):\n")
	prompt.WriteString("1. Answer ONLY using the text in <grounded_reference_material>.\n")
	prompt.WriteString("2. Cite the source titles you drew from, e.g. 'According to [Title]...'.\n")
	prompt.WriteString("3. If the material is insufficient to answer, say so explicitly instead of guessing.\n")
	prompt.WriteString("4. Answer directly. Never ask 'Do you want me to...'.\n")
	prompt.WriteString("</task_instructions>\n\n")

	prompt.WriteString("<user_question>\n")
	prompt.WriteString(ws.ActiveQuery())
	prompt.WriteString("\n</user_question>\n\n")

	prompt.WriteString("Answer:")

	return prompt.String()
}
