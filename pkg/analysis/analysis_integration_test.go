//go:build integration

package analysis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/CirclesUBI/circles-analysis/internal/testutil"
	"github.com/CirclesUBI/circles-analysis/pkg/graph"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: endpoint})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// TestFullRunFlow runs an analysis twice through the Redis response cache:
// the second run is answered entirely from Redis.
func TestFullRunFlow(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockSubgraph()
	defer mock.Close()
	mock.SetEntity("transfers", testutil.Transfers(1203, 10, 7, DefaultRelayerAddress).Records)
	mock.SetCacheControl("max-age=300")

	cfg := DefaultConfig().Merge(Config{Endpoint: mock.URL(), PageSize: 500})
	graphCfg := graph.DefaultConfig(cfg.Endpoint)
	graphCfg.Redis = redisClient

	newRun := func() *Result {
		client, err := graph.New(graphCfg)
		if err != nil {
			t.Fatalf("graph.New() error = %v", err)
		}
		env, err := NewEnv(cfg, client)
		if err != nil {
			t.Fatalf("NewEnv() error = %v", err)
		}
		res, err := Builtin().Run(context.Background(), "transfers", env)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		return res
	}

	first := newRun()
	if mock.RequestCount() != 4 {
		t.Fatalf("first run requests = %d, want 4", mock.RequestCount())
	}

	second := newRun()
	if mock.RequestCount() != 4 {
		t.Errorf("second run requests = %d, want 4 (all cached)", mock.RequestCount())
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Error("cached run produced different output")
	}

	keys, err := redisClient.Keys(context.Background(), "subgraph:*").Result()
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if len(keys) != 4 {
		t.Errorf("cached entries = %d, want 4", len(keys))
	}
	ttl := redisClient.TTL(context.Background(), keys[0]).Val()
	if ttl <= 0 || ttl.Seconds() > 300 {
		t.Errorf("TTL = %v, want within max-age", ttl)
	}
}
