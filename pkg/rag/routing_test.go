package rag

import (
	"testing"

	"agentic-rag-be/pkg/rag/state"
	"agentic-rag-be/pkg/store"

	"github.com/google/uuid"
)

func newState() *state.WorkflowState {
	return state.New("test query", uuid.New(), nil)
}

func docs(n int) []store.Document {
	out := make([]store.Document, n)
	for i := range out {
		out[i] = store.Document{ID: uuid.NewString()}
	}
	return out
}

func TestRouteAfterGrading(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name         string
		relevantDocs int
		attempts     int
		want         Stage
	}{
		{
			name:         "enough relevant docs goes to generate",
			relevantDocs: 2,
			attempts:     1,
			want:         StageGenerate,
		},
		{
			name:         "more than enough goes to generate",
			relevantDocs: 5,
			attempts:     3,
			want:         StageGenerate,
		},
		{
			name:         "too few docs with budget left reformulates",
			relevantDocs: 1,
			attempts:     1,
			want:         StageReformulate,
		},
		{
			name:         "no docs on first attempt reformulates",
			relevantDocs: 0,
			attempts:     1,
			want:         StageReformulate,
		},
		{
			name:         "too few docs with budget exhausted falls back to web",
			relevantDocs: 1,
			attempts:     3,
			want:         StageWebFallback,
		},
		{
			name:         "no docs with budget exhausted falls back to web",
			relevantDocs: 0,
			attempts:     3,
			want:         StageWebFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := newState()
			ws.RetrievedDocuments = docs(tt.relevantDocs)
			for i := 0; i < tt.attempts; i++ {
				ws.RecordAttempt(tt.relevantDocs)
			}

			if got := routeAfterGrading(ws, cfg); got != tt.want {
				t.Errorf("routeAfterGrading() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRouteAfterEvaluation(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name       string
		quality    float64
		iterations int
		want       Stage
	}{
		{
			name:       "quality above threshold finalizes",
			quality:    0.8,
			iterations: 1,
			want:       StageFinalize,
		},
		{
			name:       "quality exactly at threshold finalizes",
			quality:    0.7,
			iterations: 1,
			want:       StageFinalize,
		},
		{
			name:       "low quality with iterations left retries",
			quality:    0.3,
			iterations: 1,
			want:       StageReformulate,
		},
		{
			name:       "low quality at iteration cap finalizes",
			quality:    0.3,
			iterations: 3,
			want:       StageFinalize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := newState()
			ws.QualityScore = tt.quality
			ws.IterationCount = tt.iterations

			if got := routeAfterEvaluation(ws, cfg); got != tt.want {
				t.Errorf("routeAfterEvaluation() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStageString(t *testing.T) {
	stages := map[Stage]string{
		StageAnalyzeQuery:   "analyze_query",
		StageRetrieve:       "retrieve",
		StageGradeDocuments: "grade_documents",
		StageReformulate:    "reformulate",
		StageWebFallback:    "web_fallback",
		StageGenerate:       "generate",
		StageEvaluate:       "evaluate",
		StageFinalize:       "finalize",
	}

	for stage, want := range stages {
		if got := stage.String(); got != want {
			t.Errorf("Stage(%d).String() = %q, want %q", stage, got, want)
		}
	}
}
