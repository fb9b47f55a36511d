package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisSink fans events out over a Redis pub/sub channel so admin
// dashboards on other instances see them too.
type RedisSink struct {
	client  *redis.Client
	channel string
}

func NewRedisSink(addr, password, channel string, log *zap.Logger) (*RedisSink, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis relay connected", zap.String("addr", addr), zap.String("channel", channel))
	return &RedisSink{client: rdb, channel: channel}, nil
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Send(ctx context.Context, ev Event) error {
	return s.client.Publish(ctx, s.channel, ev.JSON()).Err()
}

func (s *RedisSink) Close() error { return s.client.Close() }
