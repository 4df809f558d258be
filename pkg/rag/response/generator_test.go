package response

import (
	"context"
	"errors"
	"strings"
	"testing"

	"agentic-rag-be/internal/pkg/logger"
	"agentic-rag-be/pkg/llm"
	"agentic-rag-be/pkg/rag/state"
	"agentic-rag-be/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubLLM struct {
	response    string
	err         error
	lastHistory []llm.Message
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.lastHistory = history
	return s.response, s.err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.response, s.err
}

func stateWithDocs() *state.WorkflowState {
	ws := state.New("what does the handbook say about travel", uuid.New(), nil)
	ws.RetrievedDocuments = []store.Document{
		{ID: "d1", Title: "Travel policy", Content: "Flights above 6 hours may be booked business class."},
		{ID: "d2", Title: "Expense rules", Content: "Receipts are required above 25 EUR."},
	}
	return ws
}

func TestGenerateSetsResponseAndSources(t *testing.T) {
	stub := &stubLLM{response: "According to [Travel policy], long flights may be business class."}
	ws := stateWithDocs()

	NewGenerator(stub, logger.NopLogger{}).Generate(context.Background(), ws)

	assert.Equal(t, stub.response, ws.Response)
	assert.Len(t, ws.Sources, 2)
	assert.Equal(t, "d1", ws.Sources[0].ID)
}

func TestGenerateGroundsPromptInDocuments(t *testing.T) {
	stub := &stubLLM{response: "ok"}
	ws := stateWithDocs()

	NewGenerator(stub, logger.NopLogger{}).Generate(context.Background(), ws)

	prompt := stub.lastHistory[len(stub.lastHistory)-1].Content
	assert.True(t, strings.Contains(prompt, "CONTENT OF: Travel policy"))
	assert.True(t, strings.Contains(prompt, "Receipts are required above 25 EUR."))
	assert.True(t, strings.Contains(prompt, "<user_question>"))
}

func TestGeneratePromptAnnouncesEmptyCorpus(t *testing.T) {
	stub := &stubLLM{response: "I don't have material on that."}
	ws := state.New("unknown topic", uuid.New(), nil)

	NewGenerator(stub, logger.NopLogger{}).Generate(context.Background(), ws)

	prompt := stub.lastHistory[len(stub.lastHistory)-1].Content
	assert.True(t, strings.Contains(prompt, "No documents were retrieved"))
	assert.Empty(t, ws.Sources)
}

func TestGenerateApologizesOnCallFailure(t *testing.T) {
	stub := &stubLLM{err: errors.New("model down")}
	ws := stateWithDocs()

	NewGenerator(stub, logger.NopLogger{}).Generate(context.Background(), ws)

	assert.Equal(t, ApologyMessage, ws.Response)
}

func TestGenerateApologizesOnBlankOutput(t *testing.T) {
	stub := &stubLLM{response: "   \n"}
	ws := stateWithDocs()

	NewGenerator(stub, logger.NopLogger{}).Generate(context.Background(), ws)

	assert.Equal(t, ApologyMessage, ws.Response)
}

func TestGeneratePrependsConversationHistory(t *testing.T) {
	stub := &stubLLM{response: "answer"}
	history := []llm.Message{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}
	ws := state.New("follow-up", uuid.New(), history)

	NewGenerator(stub, logger.NopLogger{}).Generate(context.Background(), ws)

	assert.Len(t, stub.lastHistory, 3)
	assert.Equal(t, "earlier question", stub.lastHistory[0].Content)
	// the original history slice is not mutated
	assert.Len(t, history, 2)
}
