package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// ParseRedisOptions accepts a redis:// (or rediss://) URL or a bare host:port.
func ParseRedisOptions(raw string) (*redis.Options, error) {
	if raw == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	if !strings.Contains(raw, "://") {
		return &redis.Options{Addr: raw}, nil
	}
	opts, err := redis.ParseURL(raw)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return opts, nil
}

// Connect opens a Redis client for raw and verifies it with a ping.
func Connect(ctx context.Context, raw string) (*redis.Client, error) {
	opts, err := ParseRedisOptions(raw)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return rdb, nil
}
