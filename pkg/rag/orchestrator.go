// Package rag drives one query through the self-reflective workflow:
// analyze, retrieve, grade, then either generate or reformulate, with a
// bounded retry loop gated by answer quality.
package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"agentic-rag-be/internal/pkg/logger"
	"agentic-rag-be/pkg/llm"
	"agentic-rag-be/pkg/rag/analyze"
	"agentic-rag-be/pkg/rag/evaluate"
	"agentic-rag-be/pkg/rag/fallback"
	"agentic-rag-be/pkg/rag/grade"
	"agentic-rag-be/pkg/rag/reformulate"
	"agentic-rag-be/pkg/rag/response"
	"agentic-rag-be/pkg/rag/retrieve"
	"agentic-rag-be/pkg/rag/state"
	"agentic-rag-be/pkg/search"
	"agentic-rag-be/pkg/store"
)

// Config encapsulates the workflow tuning knobs.
type Config struct {
	QualityThreshold     float64
	MaxIterations        int
	MaxRetrievalAttempts int
	MinRelevantDocuments int
	TopK                 int
	MinScore             float64
	GraderWorkers        int
	CallTimeout          time.Duration
}

// DefaultConfig returns the default workflow configuration.
func DefaultConfig() Config {
	return Config{
		QualityThreshold:     0.7,
		MaxIterations:        3,
		MaxRetrievalAttempts: 3,
		MinRelevantDocuments: 2,
		TopK:                 10,
		MinScore:             0.5,
		GraderWorkers:        4,
		CallTimeout:          30 * time.Second,
	}
}

// Request is one inbound query.
type Request struct {
	Query               string
	UserID              uuid.UUID
	ConversationHistory []llm.Message
	SearchStrategy      state.SearchStrategy // optional caller override, empty means analyzer decides
	IncludeDebugInfo    bool
}

// Result is the public outcome handed back to the caller.
type Result struct {
	Answer         string
	Sources        []store.Document
	Confidence     float64
	QualityScore   float64
	IterationCount int
	SearchStrategy state.SearchStrategy
	Suggestions    []string
	DebugInfo      []state.DebugEvent
}

// Orchestrator owns the workflow state machine. One instance serves many
// concurrent queries; all per-query state lives in the WorkflowState.
type Orchestrator struct {
	cfg          Config
	analyzer     *analyze.Analyzer
	retriever    *retrieve.Retriever
	grader       *grade.Grader
	reformulator *reformulate.Reformulator
	webSearcher  fallback.WebSearcher
	generator    *response.Generator
	evaluator    *evaluate.Evaluator
	logger       logger.ILogger
}

// NewOrchestrator wires the stages explicitly. Collaborators arrive as
// parameters so tests can substitute doubles; there is no package-level
// service instance anywhere in the workflow.
func NewOrchestrator(
	cfg Config,
	llmProvider llm.LLMProvider,
	searchClient search.Client,
	webSearcher fallback.WebSearcher,
	log logger.ILogger,
) *Orchestrator {

	bounded := llm.WithCallTimeout(llmProvider, cfg.CallTimeout)

	if webSearcher == nil {
		webSearcher = fallback.NoopSearcher{}
	}

	return &Orchestrator{
		cfg:      cfg,
		analyzer: analyze.NewAnalyzer(bounded, log),
		retriever: retrieve.NewRetriever(searchClient, retrieve.Config{
			TopK:     cfg.TopK,
			MinScore: cfg.MinScore,
			Timeout:  cfg.CallTimeout,
		}, log),
		grader:       grade.NewGrader(bounded, cfg.GraderWorkers, log),
		reformulator: reformulate.NewReformulator(bounded, log),
		webSearcher:  webSearcher,
		generator:    response.NewGenerator(bounded, log),
		evaluator:    evaluate.NewEvaluator(bounded, log),
		logger:       log,
	}
}

// Process runs the graph to its terminal state and assembles the result.
// Stage-level failures degrade per stage; only orchestrator-internal
// faults (and caller cancellation) surface as errors.
func (o *Orchestrator) Process(ctx context.Context, req Request) (*Result, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	ws := state.New(req.Query, req.UserID, req.ConversationHistory)

	stage := StageAnalyzeQuery
	for stage != StageFinalize {
		// Cancellation is cooperative: checked between stage transitions,
		// never mid-flight.
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("workflow aborted at %s: %w", stage, err)
		}

		switch stage {
		case StageAnalyzeQuery:
			o.analyzer.Analyze(ctx, ws)
			if req.SearchStrategy != "" {
				ws.SearchStrategy = req.SearchStrategy
			}
			stage = StageRetrieve

		case StageRetrieve:
			o.retriever.Retrieve(ctx, ws)
			stage = StageGradeDocuments

		case StageGradeDocuments:
			o.grader.GradeAll(ctx, ws)
			stage = routeAfterGrading(ws, o.cfg)

		case StageReformulate:
			o.reformulator.Reformulate(ctx, ws)
			stage = StageRetrieve

		case StageWebFallback:
			o.runWebFallback(ctx, ws)
			stage = StageGenerate

		case StageGenerate:
			ws.IterationCount++
			o.generator.Generate(ctx, ws)
			stage = StageEvaluate

		case StageEvaluate:
			o.evaluator.Evaluate(ctx, ws)
			stage = routeAfterEvaluation(ws, o.cfg)
			if stage == StageReformulate {
				ws.ResetAttempts()
			}

		default:
			return nil, fmt.Errorf("workflow reached unknown stage %d", stage)
		}
	}

	o.logger.Info("workflow", "query processed", map[string]interface{}{
		"iterations":    ws.IterationCount,
		"quality_score": ws.QualityScore,
		"source_count":  len(ws.Sources),
		"strategy":      string(ws.SearchStrategy),
	})

	result := &Result{
		Answer:         ws.Response,
		Sources:        ws.Sources,
		Confidence:     ws.Confidence,
		QualityScore:   ws.QualityScore,
		IterationCount: ws.IterationCount,
		SearchStrategy: ws.SearchStrategy,
		Suggestions:    buildSuggestions(ws, o.cfg),
	}
	if req.IncludeDebugInfo {
		result.DebugInfo = ws.DebugLog()
	}
	return result, nil
}

func (o *Orchestrator) runWebFallback(ctx context.Context, ws *state.WorkflowState) {
	cctx, cancel := context.WithTimeout(ctx, o.cfg.CallTimeout)
	defer cancel()

	docs, err := o.webSearcher.Search(cctx, ws.ActiveQuery())
	if err != nil {
		o.logger.Warn("web_fallback", "fallback search failed, continuing with zero documents", map[string]interface{}{
			"error": err.Error(),
		})
		docs = nil
	}

	ws.RetrievedDocuments = docs
	ws.RecordDebug("web_fallback", map[string]any{
		"document_count": len(docs),
		"failed":         err != nil,
	})
}

// buildSuggestions derives a small rule-based advisory list from the
// final state.
func buildSuggestions(ws *state.WorkflowState, cfg Config) []string {
	var suggestions []string

	if len(ws.Sources) == 0 {
		suggestions = append(suggestions, "No relevant documents found. Try different keywords or add more content to your knowledge base.")
	}
	if ws.QualityScore < cfg.QualityThreshold {
		suggestions = append(suggestions, "Answer quality is below the usual threshold. Consider refining your question.")
	}
	if ws.ReformulatedQuery != "" && ws.ReformulatedQuery != ws.Query {
		suggestions = append(suggestions, fmt.Sprintf("Your question was interpreted as: %q.", ws.ReformulatedQuery))
	}

	return suggestions
}
