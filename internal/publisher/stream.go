package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// StreamPublisher publishes settlement events to Redis streams.
type StreamPublisher struct {
	redis *redis.Client
}

func NewStreamPublisher(redisClient *redis.Client) *StreamPublisher {
	return &StreamPublisher{redis: redisClient}
}

func (p *StreamPublisher) PublishPositionSettled(ctx context.Context, evt PositionSettled) error {
	return p.publish(ctx, StreamPositionSettled, evt)
}

func (p *StreamPublisher) PublishExpertStatistics(ctx context.Context, evt ExpertStatisticsRecalculated) error {
	return p.publish(ctx, StreamExpertStats, evt)
}

func (p *StreamPublisher) publish(ctx context.Context, stream string, evt any) error {
	if p == nil || p.redis == nil {
		return nil
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("publish to stream %s: %w", stream, err)
	}
	return nil
}
