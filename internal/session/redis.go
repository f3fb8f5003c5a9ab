package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/openpulpit/sermoncast/internal/pipeline"
)

// RedisPublisher fans finalized segments out to remote subscribers over a
// pub/sub channel, so overflow rooms can run their own display clients.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(ctx context.Context, addr, channel string) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisPublisher{client: client, channel: channel}, nil
}

func (p *RedisPublisher) PublishSegment(ctx context.Context, seg pipeline.Segment) error {
	payload, err := json.Marshal(seg)
	if err != nil {
		return fmt.Errorf("failed to encode segment %d: %w", seg.Seq, err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish segment %d: %w", seg.Seq, err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
