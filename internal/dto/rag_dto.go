package dto

import (
	"github.com/google/uuid"
)

type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

type ProcessQueryRequest struct {
	Query               string        `json:"query" validate:"required,min=1,max=4000"`
	ConversationHistory []ChatMessage `json:"conversation_history,omitempty" validate:"max=50,dive"`
	SearchStrategy      string        `json:"search_strategy,omitempty" validate:"omitempty,oneof=semantic hybrid"`
	IncludeDebugInfo    bool          `json:"include_debug_info,omitempty"`
}

type SourceDTO struct {
	Id      string         `json:"id"`
	Title   string         `json:"title"`
	Content string         `json:"content"`
	Score   float64        `json:"score"`
	Meta    map[string]any `json:"meta,omitempty"`
}

type DebugEventDTO struct {
	Stage     string         `json:"stage"`
	Timestamp string         `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

type ProcessQueryResponse struct {
	QueryId        uuid.UUID       `json:"query_id"`
	Answer         string          `json:"answer"`
	Sources        []SourceDTO     `json:"sources"`
	Confidence     float64         `json:"confidence"`
	QualityScore   float64         `json:"quality_score"`
	IterationCount int             `json:"iteration_count"`
	SearchStrategy string          `json:"search_strategy"`
	Suggestions    []string        `json:"suggestions,omitempty"`
	DebugInfo      []DebugEventDTO `json:"debug_info,omitempty"`
}

type SubmitFeedbackRequest struct {
	QueryId uuid.UUID `json:"query_id" validate:"required"`
	Rating  int       `json:"rating" validate:"required,min=1,max=5"`
	Comment string    `json:"comment,omitempty" validate:"max=2000"`
}

type SubmitFeedbackResponse struct {
	QueryId  uuid.UUID `json:"query_id"`
	Accepted bool      `json:"accepted"`
}
