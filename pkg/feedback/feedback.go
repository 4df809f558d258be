// Package feedback records user feedback on produced answers. Recording
// is best-effort telemetry: it never blocks and never fails the primary
// request path.
package feedback

import (
	"context"
	"time"

	"agentic-rag-be/internal/pkg/logger"
)

// Feedback is one user judgment about an answer.
type Feedback struct {
	QueryID     string    `json:"query_id"`
	UserID      string    `json:"user_id"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	Query       string    `json:"query,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Recorder durably stores feedback for later model-tuning use.
type Recorder interface {
	Record(ctx context.Context, queryID string, fb Feedback) error
}

// LogRecorder is the recorder of last resort when no durable sink is
// configured.
type LogRecorder struct {
	logger logger.ILogger
}

var _ Recorder = &LogRecorder{}

func NewLogRecorder(log logger.ILogger) *LogRecorder {
	return &LogRecorder{logger: log}
}

func (r *LogRecorder) Record(ctx context.Context, queryID string, fb Feedback) error {
	r.logger.Info("feedback", "feedback received", map[string]interface{}{
		"query_id": queryID,
		"rating":   fb.Rating,
		"comment":  fb.Comment,
	})
	return nil
}
