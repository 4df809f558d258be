package service

import (
	"context"
	"fmt"
	"time"

	"agentic-rag-be/internal/dto"
	"agentic-rag-be/internal/pkg/logger"
	"agentic-rag-be/internal/repository/memory"
	"agentic-rag-be/pkg/feedback"
	"agentic-rag-be/pkg/llm"
	"agentic-rag-be/pkg/rag"
	"agentic-rag-be/pkg/rag/state"

	"github.com/google/uuid"
)

// IRagService defines the query answering service interface
type IRagService interface {
	ProcessQuery(ctx context.Context, userId uuid.UUID, request *dto.ProcessQueryRequest) (*dto.ProcessQueryResponse, error)
	SubmitFeedback(ctx context.Context, userId uuid.UUID, request *dto.SubmitFeedbackRequest) (*dto.SubmitFeedbackResponse, error)
}

type ragService struct {
	orchestrator *rag.Orchestrator
	resultRepo   *memory.ResultRepository
	feedbackBus  *feedback.Bus
	logger       logger.ILogger
}

func NewRagService(
	orchestrator *rag.Orchestrator,
	resultRepo *memory.ResultRepository,
	feedbackBus *feedback.Bus,
	log logger.ILogger,
) IRagService {
	return &ragService{
		orchestrator: orchestrator,
		resultRepo:   resultRepo,
		feedbackBus:  feedbackBus,
		logger:       log,
	}
}

func (s *ragService) ProcessQuery(ctx context.Context, userId uuid.UUID, request *dto.ProcessQueryRequest) (*dto.ProcessQueryResponse, error) {
	history := make([]llm.Message, 0, len(request.ConversationHistory))
	for _, m := range request.ConversationHistory {
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}

	result, err := s.orchestrator.Process(ctx, rag.Request{
		Query:               request.Query,
		UserID:              userId,
		ConversationHistory: history,
		SearchStrategy:      state.SearchStrategy(request.SearchStrategy),
		IncludeDebugInfo:    request.IncludeDebugInfo,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to process query: %w", err)
	}

	queryId := uuid.New()
	s.resultRepo.Save(&memory.QueryResult{
		QueryID:      queryId.String(),
		UserID:       userId.String(),
		Query:        request.Query,
		Answer:       result.Answer,
		QualityScore: result.QualityScore,
		CreatedAt:    time.Now(),
	})

	response := &dto.ProcessQueryResponse{
		QueryId:        queryId,
		Answer:         result.Answer,
		Sources:        make([]dto.SourceDTO, 0, len(result.Sources)),
		Confidence:     result.Confidence,
		QualityScore:   result.QualityScore,
		IterationCount: result.IterationCount,
		SearchStrategy: string(result.SearchStrategy),
		Suggestions:    result.Suggestions,
	}

	for _, doc := range result.Sources {
		response.Sources = append(response.Sources, dto.SourceDTO{
			Id:      doc.ID,
			Title:   doc.Title,
			Content: doc.Content,
			Score:   doc.RelevanceScore,
			Meta:    doc.Metadata,
		})
	}

	if request.IncludeDebugInfo {
		response.DebugInfo = make([]dto.DebugEventDTO, 0, len(result.DebugInfo))
		for _, ev := range result.DebugInfo {
			response.DebugInfo = append(response.DebugInfo, dto.DebugEventDTO{
				Stage:     ev.Stage,
				Timestamp: ev.Timestamp.Format(time.RFC3339Nano),
				Payload:   ev.Payload,
			})
		}
	}

	return response, nil
}

func (s *ragService) SubmitFeedback(ctx context.Context, userId uuid.UUID, request *dto.SubmitFeedbackRequest) (*dto.SubmitFeedbackResponse, error) {
	stored, found := s.resultRepo.Get(request.QueryId.String())
	if !found {
		return nil, fmt.Errorf("query %s not found or expired", request.QueryId)
	}
	if stored.UserID != userId.String() {
		return nil, fmt.Errorf("query %s does not belong to this user", request.QueryId)
	}

	fb := feedback.Feedback{
		QueryID:     request.QueryId.String(),
		UserID:      userId.String(),
		Rating:      request.Rating,
		Comment:     request.Comment,
		Query:       stored.Query,
		SubmittedAt: time.Now(),
	}

	// Publishing is fire-and-forget; a full bus must not fail the request.
	if err := s.feedbackBus.Publish(fb); err != nil {
		s.logger.Warn("rag_service", "failed to publish feedback", map[string]interface{}{
			"query_id": fb.QueryID,
			"error":    err.Error(),
		})
	}

	return &dto.SubmitFeedbackResponse{
		QueryId:  request.QueryId,
		Accepted: true,
	}, nil
}
