//go:build integration

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a Redis container and returns a client
func setupRedis(t *testing.T) (*redis.Client, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: endpoint,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

func TestManager_Integration_RoundTrip(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	manager := NewManager(redisClient)
	ctx := context.Background()
	key := CacheKey{
		Endpoint: "https://graph.example/subgraphs/name/circles",
		Query:    `{ safes(first: 1000, orderBy: id, where: {id_gt: ""}) { id } }`,
	}

	if _, err := manager.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get() on empty cache error = %v, want ErrCacheMiss", err)
	}

	data := []byte(`{"safes":[{"id":"0x01"},{"id":"0x02"}]}`)
	if err := manager.Set(ctx, key, NewEntry(data, time.Minute)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	entry, err := manager.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(entry.Data) != string(data) {
		t.Errorf("Data = %s, want %s", entry.Data, data)
	}

	// Redis expiry follows the entry TTL
	ttl, err := redisClient.TTL(ctx, key.String()).Result()
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("redis TTL = %v, want (0, 1m]", ttl)
	}
}

func TestManager_Integration_ShortTTLExpires(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	manager := NewManager(redisClient)
	ctx := context.Background()
	key := CacheKey{Endpoint: "https://graph.example", Query: "{ safes { id } }"}

	if err := manager.Set(ctx, key, NewEntry([]byte(`{}`), 1*time.Second)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	time.Sleep(1500 * time.Millisecond)

	if _, err := manager.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() after expiry error = %v, want ErrCacheMiss", err)
	}
}
