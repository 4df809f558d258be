package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"agentic-rag-be/internal/pkg/logger"
)

const (
	feedbackStream  = "FEEDBACK"
	feedbackSubject = "feedback.answer"
)

// NatsRecorder persists feedback to a JetStream stream.
type NatsRecorder struct {
	nc *nats.Conn
	js jetstream.JetStream
}

var _ Recorder = &NatsRecorder{}

// NewNatsRecorder connects to NATS and ensures the feedback stream exists.
func NewNatsRecorder(url string, log logger.ILogger) (*NatsRecorder, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      feedbackStream,
		Subjects:  []string{"feedback.>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
	})
	if err != nil {
		// Maybe it already exists or NATS isn't ready, don't fail hard here
		log.Warn("feedback", "failed to ensure feedback stream", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return &NatsRecorder{nc: nc, js: js}, nil
}

func (r *NatsRecorder) Record(ctx context.Context, queryID string, fb Feedback) error {
	data, err := json.Marshal(fb)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback: %w", err)
	}

	if _, err := r.js.Publish(ctx, feedbackSubject, data); err != nil {
		return fmt.Errorf("failed to publish feedback for query %s: %w", queryID, err)
	}

	return nil
}

func (r *NatsRecorder) Close() {
	if r.nc != nil {
		r.nc.Close()
	}
}
