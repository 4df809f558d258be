package state

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestActiveQuery(t *testing.T) {
	ws := New("original", uuid.New(), nil)
	assert.Equal(t, "original", ws.ActiveQuery())

	ws.ReformulatedQuery = "rewritten"
	assert.Equal(t, "rewritten", ws.ActiveQuery())
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in     string
		want   SearchStrategy
		wantOk bool
	}{
		{"semantic", StrategySemantic, true},
		{"hybrid", StrategyHybrid, true},
		{"", "", false},
		{"keyword", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseStrategy(tt.in)
		assert.Equal(t, tt.wantOk, ok, "ParseStrategy(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseStrategy(%q)", tt.in)
	}
}

func TestRecordAttempt(t *testing.T) {
	ws := New("q", uuid.New(), nil)

	ws.RecordAttempt(7)
	ws.RecordAttempt(0)

	assert.Equal(t, []int{7, 0}, ws.RetrievalAttempts)
}

func TestResetAttemptsKeepsAuditTrail(t *testing.T) {
	ws := New("q", uuid.New(), nil)
	ws.RecordAttempt(3)
	ws.RecordAttempt(1)
	ws.IterationCount = 1

	ws.ResetAttempts()

	assert.Empty(t, ws.RetrievalAttempts)

	events := ws.DebugLog()
	assert.Len(t, events, 1)
	assert.Equal(t, "retry", events[0].Stage)
	assert.Equal(t, []int{3, 1}, events[0].Payload["previous_attempts"])
}

func TestResetAttemptsIsSilentWhenNothingSpent(t *testing.T) {
	ws := New("q", uuid.New(), nil)

	ws.ResetAttempts()

	assert.Empty(t, ws.RetrievalAttempts)
	assert.Empty(t, ws.DebugLog())
}

func TestDefaultStrategyIsHybrid(t *testing.T) {
	ws := New("q", uuid.New(), nil)
	assert.Equal(t, StrategyHybrid, ws.SearchStrategy)
}
