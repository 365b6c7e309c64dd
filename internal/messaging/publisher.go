package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"talentforge/internal/domain"
	"talentforge/internal/logger"
)

// payloadField is the stream entry field holding the JSON body.
const payloadField = "payload"

// StreamPublisher implements domain.EventPublisher by appending to a
// Redis stream.
type StreamPublisher struct {
	client *redis.Client
	stream string
}

func NewStreamPublisher(client *redis.Client, stream string) domain.EventPublisher {
	return &StreamPublisher{client: client, stream: stream}
}

// PublishAssignment appends the assignment event to the stream.
func (p *StreamPublisher) PublishAssignment(ctx context.Context, event *domain.AssignmentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal assignment event: %w", err)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{payloadField: string(payload)},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", p.stream, err)
	}

	logger.Get().Info("published assignment event",
		zap.String("stream", p.stream),
		zap.String("entry_id", id),
		zap.Int("candidates", len(event.CandidateIDs)))
	return nil
}
