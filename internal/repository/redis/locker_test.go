package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"coinvest-go/internal/config"
	"github.com/google/uuid"
)

func newTestLocker(t *testing.T, wait time.Duration) *Locker {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := NewClient(config.RedisConfig{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	return NewLocker(client, 5*time.Second, wait)
}

func TestLockerExcludesSecondHolder(t *testing.T) {
	locker := newTestLocker(t, 100*time.Millisecond)
	ctx := context.Background()
	communityID := uuid.NewString()

	unlock, err := locker.Lock(ctx, communityID)
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}

	if _, err := locker.Lock(ctx, communityID); !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}

	unlock()
	again, err := locker.Lock(ctx, communityID)
	if err != nil {
		t.Fatalf("lock after release: %v", err)
	}
	again()
}

func TestLockerReleaseKeepsForeignToken(t *testing.T) {
	locker := newTestLocker(t, 100*time.Millisecond)
	ctx := context.Background()
	key := LockKeyPrefix + uuid.NewString()

	if err := locker.rdb.Set(ctx, key, "someone-else", time.Minute).Err(); err != nil {
		t.Fatalf("seed key: %v", err)
	}
	t.Cleanup(func() { locker.rdb.Del(context.Background(), key) })

	locker.unlock(key, "my-token")()

	value, err := locker.rdb.Get(ctx, key).Result()
	if err != nil {
		t.Fatalf("get key: %v", err)
	}
	if value != "someone-else" {
		t.Fatalf("expected foreign token to survive, got %q", value)
	}
}

func TestLockerHonorsCallerContext(t *testing.T) {
	locker := newTestLocker(t, time.Second)
	communityID := uuid.NewString()

	unlock, err := locker.Lock(context.Background(), communityID)
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := locker.Lock(ctx, communityID); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
