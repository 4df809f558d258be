package evaluate

import (
	"context"
	"errors"
	"testing"

	"agentic-rag-be/internal/pkg/logger"
	"agentic-rag-be/pkg/llm"
	"agentic-rag-be/pkg/rag/state"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubLLM struct {
	response string
	err      error
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.response, s.err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.response, s.err
}

func newAnsweredState() *state.WorkflowState {
	ws := state.New("the question", uuid.New(), nil)
	ws.Response = "the answer"
	return ws
}

func TestEvaluateAppliesAggregateScore(t *testing.T) {
	stub := &stubLLM{response: `{"relevance": 0.9, "completeness": 0.8, "accuracy": 0.95, "helpfulness": 0.85, "overall_quality": 0.88}`}
	ws := newAnsweredState()

	NewEvaluator(stub, logger.NopLogger{}).Evaluate(context.Background(), ws)

	assert.InDelta(t, 0.88, ws.QualityScore, 0.001)
	assert.InDelta(t, 0.88, ws.Confidence, 0.001)
}

func TestEvaluateDefaultsOnCallFailure(t *testing.T) {
	stub := &stubLLM{err: errors.New("unreachable")}
	ws := newAnsweredState()

	NewEvaluator(stub, logger.NopLogger{}).Evaluate(context.Background(), ws)

	assert.InDelta(t, 0.5, ws.QualityScore, 0.001)
}

func TestEvaluateDefaultsOnGarbageOutput(t *testing.T) {
	stub := &stubLLM{response: "looks great, ship it"}
	ws := newAnsweredState()

	NewEvaluator(stub, logger.NopLogger{}).Evaluate(context.Background(), ws)

	assert.InDelta(t, 0.5, ws.QualityScore, 0.001)
}

func TestEvaluateClampsOutOfRangeScore(t *testing.T) {
	stub := &stubLLM{response: `{"overall_quality": 4.2}`}
	ws := newAnsweredState()

	NewEvaluator(stub, logger.NopLogger{}).Evaluate(context.Background(), ws)

	assert.InDelta(t, 1.0, ws.QualityScore, 0.001)
}

func TestEvaluateRecordsDebugEvent(t *testing.T) {
	stub := &stubLLM{response: `{"overall_quality": 0.75}`}
	ws := newAnsweredState()
	ws.IterationCount = 2

	NewEvaluator(stub, logger.NopLogger{}).Evaluate(context.Background(), ws)

	events := ws.DebugLog()
	assert.Len(t, events, 1)
	assert.Equal(t, "evaluate", events[0].Stage)
	assert.Equal(t, 2, events[0].Payload["iteration"])
}
