package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coinvest-go/internal/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	LockKeyPrefix = "lock:community:"
	pollInterval  = 25 * time.Millisecond
)

var ErrLockTimeout = errors.New("timed out waiting for community lock")

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`)

// Locker is a community lock shared by every API instance. The key expires
// after ttl so a crashed holder cannot block a community forever.
type Locker struct {
	rdb  redis.UniversalClient
	ttl  time.Duration
	wait time.Duration
}

func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func NewLocker(rdb redis.UniversalClient, ttl, wait time.Duration) *Locker {
	return &Locker{rdb: rdb, ttl: ttl, wait: wait}
}

func (l *Locker) Lock(ctx context.Context, communityID string) (func(), error) {
	key := LockKeyPrefix + communityID
	token := uuid.NewString()

	waitCtx := ctx
	if l.wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.rdb.SetNX(waitCtx, key, token, l.ttl).Result()
		if err != nil && waitCtx.Err() == nil {
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			return l.unlock(key, token), nil
		}

		select {
		case <-ticker.C:
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, ErrLockTimeout
		}
	}
}

// unlock deletes the key only while it still carries our token.
func (l *Locker) unlock(key, token string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.rdb, []string{key}, token).Err()
	}
}
