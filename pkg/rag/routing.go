package rag

import (
	"agentic-rag-be/pkg/rag/state"
)

// Stage is the closed set of workflow states. Every transition is
// produced either statically in the run loop or by one of the two pure
// routing functions below, so the whole graph is enumerable in tests.
type Stage int

const (
	StageAnalyzeQuery Stage = iota
	StageRetrieve
	StageGradeDocuments
	StageReformulate
	StageWebFallback
	StageGenerate
	StageEvaluate
	StageFinalize
)

func (s Stage) String() string {
	switch s {
	case StageAnalyzeQuery:
		return "analyze_query"
	case StageRetrieve:
		return "retrieve"
	case StageGradeDocuments:
		return "grade_documents"
	case StageReformulate:
		return "reformulate"
	case StageWebFallback:
		return "web_fallback"
	case StageGenerate:
		return "generate"
	case StageEvaluate:
		return "evaluate"
	case StageFinalize:
		return "finalize"
	}
	return "unknown"
}

// routeAfterGrading is the ternary branch behind document grading:
// enough relevant material proceeds to generation, a remaining
// reformulation budget loops back through retrieval, and an exhausted
// budget forces the web fallback.
func routeAfterGrading(ws *state.WorkflowState, cfg Config) Stage {
	switch {
	case len(ws.RetrievedDocuments) >= cfg.MinRelevantDocuments:
		return StageGenerate
	case len(ws.RetrievalAttempts) < cfg.MaxRetrievalAttempts:
		return StageReformulate
	default:
		return StageWebFallback
	}
}

// routeAfterEvaluation is the terminal branch. The iteration cap is
// checked independently of the quality threshold, which is what makes
// termination unconditional.
func routeAfterEvaluation(ws *state.WorkflowState, cfg Config) Stage {
	if ws.QualityScore >= cfg.QualityThreshold || ws.IterationCount >= cfg.MaxIterations {
		return StageFinalize
	}
	return StageReformulate
}
