package messaging

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"talentforge/internal/logger"
)

// ErrBadPayload marks an entry whose body cannot be decoded. Such entries
// are acknowledged and dropped instead of being redelivered forever.
var ErrBadPayload = errors.New("messaging: undecodable payload")

// Handler processes one decoded stream entry body. A nil return
// acknowledges the entry; any other error leaves it pending for
// redelivery, except ErrBadPayload which drops it.
type Handler func(ctx context.Context, payload []byte) error

const (
	readBlock = 5 * time.Second
	readCount = 10
	// claimMinIdle is how long an entry may sit unacknowledged before a
	// consumer reclaims it from the pending list.
	claimMinIdle  = time.Minute
	claimInterval = 30 * time.Second
)

// StreamConsumer reads a Redis stream through a consumer group and feeds
// each entry to its handler. Delivery is at least once; handlers are
// expected to tolerate replays.
type StreamConsumer struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
	handler  Handler
}

func NewStreamConsumer(client *redis.Client, stream, group, consumer string, handler Handler) *StreamConsumer {
	return &StreamConsumer{
		client:   client,
		stream:   stream,
		group:    group,
		consumer: consumer,
		handler:  handler,
	}
}

// Run consumes the stream until ctx is cancelled.
func (c *StreamConsumer) Run(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		return err
	}
	logger.Get().Info("stream consumer started",
		zap.String("stream", c.stream),
		zap.String("group", c.group),
		zap.String("consumer", c.consumer))

	nextClaim := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !time.Now().Before(nextClaim) {
			c.claimPending(ctx)
			nextClaim = time.Now().Add(claimInterval)
		}
		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.consumer,
			Streams:  []string{c.stream, ">"},
			Count:    readCount,
			Block:    readBlock,
		}).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			logger.Get().Error("stream read failed", zap.String("stream", c.stream), zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		for _, stream := range streams {
			for _, message := range stream.Messages {
				c.processEntry(ctx, message)
			}
		}
	}
}

// claimPending walks the group's pending list and retries entries idle
// past claimMinIdle: work abandoned by a crashed consumer and entries
// whose handler failed transiently both come back through here.
func (c *StreamConsumer) claimPending(ctx context.Context) {
	start := "0-0"
	for {
		messages, next, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   c.stream,
			Group:    c.group,
			Consumer: c.consumer,
			MinIdle:  claimMinIdle,
			Start:    start,
			Count:    readCount,
		}).Result()
		if err != nil {
			if err != redis.Nil {
				logger.Get().Error("pending reclaim failed",
					zap.String("stream", c.stream),
					zap.Error(err))
			}
			return
		}
		for _, message := range messages {
			c.processEntry(ctx, message)
		}
		if next == "0-0" || len(messages) == 0 {
			return
		}
		start = next
	}
}

// ensureGroup creates the consumer group if it does not exist yet.
func (c *StreamConsumer) ensureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// processEntry runs the handler for one entry and acknowledges it on
// success. Failed entries stay pending until the reclaim pass retries
// them.
func (c *StreamConsumer) processEntry(ctx context.Context, message redis.XMessage) {
	payload, ok := message.Values[payloadField].(string)
	if !ok {
		logger.Get().Warn("dropping entry without payload field",
			zap.String("stream", c.stream),
			zap.String("entry_id", message.ID))
		c.ack(ctx, message.ID)
		return
	}

	if err := c.handler(ctx, []byte(payload)); err != nil {
		if errors.Is(err, ErrBadPayload) {
			logger.Get().Warn("dropping undecodable entry",
				zap.String("stream", c.stream),
				zap.String("entry_id", message.ID),
				zap.Error(err))
			c.ack(ctx, message.ID)
			return
		}
		logger.Get().Error("entry handling failed, leaving pending",
			zap.String("stream", c.stream),
			zap.String("entry_id", message.ID),
			zap.Error(err))
		return
	}
	c.ack(ctx, message.ID)
}

func (c *StreamConsumer) ack(ctx context.Context, entryID string) {
	if err := c.client.XAck(ctx, c.stream, c.group, entryID).Err(); err != nil {
		logger.Get().Error("failed to ack entry",
			zap.String("stream", c.stream),
			zap.String("entry_id", entryID),
			zap.Error(err))
	}
}
