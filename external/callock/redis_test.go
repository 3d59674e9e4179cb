package callock

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newTestLocker(t *testing.T) *RedisLocker {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL is not set")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	l := NewRedisLocker(redis.NewClient(opts), 5*time.Second)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestRedisLocker_ExcludesSecondHolder(t *testing.T) {
	l := newTestLocker(t)
	key := "CA" + uuid.NewString()

	unlock, err := l.Lock(context.Background(), key)
	if err != nil {
		t.Fatalf("lock failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, key); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	unlock()
	unlock2, err := l.Lock(context.Background(), key)
	if err != nil {
		t.Fatalf("expected lock after release: %v", err)
	}
	unlock2()
}

func TestRedisLocker_UnlockKeepsForeignToken(t *testing.T) {
	l := newTestLocker(t)
	key := "CA" + uuid.NewString()

	unlock, err := l.Lock(context.Background(), key)
	if err != nil {
		t.Fatalf("lock failed: %v", err)
	}
	// Simulate TTL expiry and takeover by another instance.
	if err := l.client.Set(context.Background(), keyPrefix+key, "other", time.Minute).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}
	unlock()

	got, err := l.client.Get(context.Background(), keyPrefix+key).Result()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "other" {
		t.Fatalf("expected foreign token to survive, got %q", got)
	}
	_ = l.client.Del(context.Background(), keyPrefix+key).Err()
}
