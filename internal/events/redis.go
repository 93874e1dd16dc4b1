package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"mediajobs/internal/logging"
)

const redisPingTimeout = 5 * time.Second

// RedisPublisher mirrors hub events onto a redis pub/sub channel so other
// processes can follow job progress.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

// NewRedisPublisher connects to redisURL and verifies the connection.
func NewRedisPublisher(ctx context.Context, redisURL, channel string, logger *slog.Logger) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(redisURL))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = "mediajobs:events"
	}
	return &RedisPublisher{
		client:  client,
		channel: channel,
		logger:  logging.NewComponentLogger(logger, "events"),
	}, nil
}

// Channel returns the pub/sub channel name.
func (p *RedisPublisher) Channel() string {
	return p.channel
}

// Run forwards events from sub until ctx ends or the subscription closes.
func (p *RedisPublisher) Run(ctx context.Context, sub *Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := p.publish(ctx, evt); err != nil {
				p.logger.Warn("redis publish failed",
					logging.String(logging.FieldJobID, evt.JobID),
					logging.Error(err),
					logging.String(logging.FieldEventType, "redis_publish_failed"),
					logging.String(logging.FieldErrorHint, "check events.redis_url"))
			}
		}
	}
}

func (p *RedisPublisher) publish(ctx context.Context, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.client.Publish(ctx, p.channel, data).Err()
}

// Close closes the redis connection.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
