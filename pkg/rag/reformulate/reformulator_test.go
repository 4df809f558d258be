package reformulate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"agentic-rag-be/internal/pkg/logger"
	"agentic-rag-be/pkg/llm"
	"agentic-rag-be/pkg/rag/state"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubLLM struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.lastPrompt = history[len(history)-1].Content
	return s.response, s.err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	s.lastPrompt = prompt
	return s.response, s.err
}

func TestReformulateSetsWorkingQuery(t *testing.T) {
	stub := &stubLLM{response: `{"query": "postgres pgvector cosine index", "rationale": "sharper terms", "confidence": 0.8}`}
	ws := state.New("how fast is my db search", uuid.New(), nil)

	NewReformulator(stub, logger.NopLogger{}).Reformulate(context.Background(), ws)

	assert.Equal(t, "postgres pgvector cosine index", ws.ReformulatedQuery)
	assert.Equal(t, "postgres pgvector cosine index", ws.ActiveQuery())
	// the original query is never modified
	assert.Equal(t, "how fast is my db search", ws.Query)
}

func TestReformulateReusesOriginalOnCallFailure(t *testing.T) {
	stub := &stubLLM{err: errors.New("timeout")}
	ws := state.New("original question", uuid.New(), nil)

	NewReformulator(stub, logger.NopLogger{}).Reformulate(context.Background(), ws)

	assert.Equal(t, "original question", ws.ReformulatedQuery)
}

func TestReformulateReusesOriginalOnEmptyRewrite(t *testing.T) {
	stub := &stubLLM{response: `{"query": "   ", "rationale": "oops"}`}
	ws := state.New("original question", uuid.New(), nil)

	NewReformulator(stub, logger.NopLogger{}).Reformulate(context.Background(), ws)

	assert.Equal(t, "original question", ws.ReformulatedQuery)
}

func TestReformulatePromptCarriesRetrievalHistory(t *testing.T) {
	stub := &stubLLM{response: `{"query": "rewrite"}`}
	ws := state.New("original question", uuid.New(), nil)
	ws.RecordAttempt(7)
	ws.RecordAttempt(0)

	NewReformulator(stub, logger.NopLogger{}).Reformulate(context.Background(), ws)

	assert.True(t, strings.Contains(stub.lastPrompt, "Attempt 1 returned 7 documents"))
	assert.True(t, strings.Contains(stub.lastPrompt, "Attempt 2 returned 0 documents"))
}

func TestReformulatePromptShowsPreviousRewrite(t *testing.T) {
	stub := &stubLLM{response: `{"query": "third phrasing"}`}
	ws := state.New("original question", uuid.New(), nil)
	ws.ReformulatedQuery = "second phrasing"

	NewReformulator(stub, logger.NopLogger{}).Reformulate(context.Background(), ws)

	assert.True(t, strings.Contains(stub.lastPrompt, "<previous_reformulation>"))
	assert.True(t, strings.Contains(stub.lastPrompt, "second phrasing"))
	assert.Equal(t, "third phrasing", ws.ReformulatedQuery)
}
