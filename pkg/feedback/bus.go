package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"agentic-rag-be/internal/pkg/logger"
)

const feedbackTopic = "rag.feedback"

// Bus decouples the request path from the durable sink: handlers publish
// to an in-process channel and a forwarder goroutine drains it into the
// Recorder. A slow or broken sink can then never stall a response.
type Bus struct {
	pubSub *gochannel.GoChannel
}

func NewBus() *Bus {
	return &Bus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NewStdLogger(false, false),
		),
	}
}

// Publish enqueues one feedback event. Fire-and-forget from the caller's
// perspective; the error only matters for logging.
func (b *Bus) Publish(fb Feedback) error {
	payload, err := json.Marshal(fb)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.pubSub.Publish(feedbackTopic, msg); err != nil {
		return fmt.Errorf("failed to publish feedback event: %w", err)
	}
	return nil
}

// Forward drains the bus into the recorder until ctx is done. Recording
// failures are logged and the message is acknowledged anyway: feedback is
// best-effort telemetry, not something to redeliver forever.
func (b *Bus) Forward(ctx context.Context, recorder Recorder, log logger.ILogger) error {
	messages, err := b.pubSub.Subscribe(ctx, feedbackTopic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to feedback topic: %w", err)
	}

	go func() {
		for msg := range messages {
			var fb Feedback
			if err := json.Unmarshal(msg.Payload, &fb); err != nil {
				log.Error("feedback", "malformed feedback event dropped", map[string]interface{}{
					"error": err.Error(),
				})
				msg.Ack()
				continue
			}

			recordCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			if err := recorder.Record(recordCtx, fb.QueryID, fb); err != nil {
				log.Error("feedback", "failed to record feedback", map[string]interface{}{
					"query_id": fb.QueryID,
					"error":    err.Error(),
				})
			}
			cancel()
			msg.Ack()
		}
	}()

	return nil
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}
