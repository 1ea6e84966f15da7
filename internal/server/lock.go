package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/desertthunder/recipeshift/internal/shared"
)

// DefaultLockKey is the Redis key guarding migration runs.
const DefaultLockKey = "recipeshift:migration:lock"

// RunLock serializes migration runs.
type RunLock interface {
	// Acquire takes the lock or fails with [shared.ErrLockHeld] when another run holds it.
	// The returned func releases it.
	Acquire(ctx context.Context) (release func(context.Context) error, err error)
}

// MemoryLock is a [RunLock] local to one process.
type MemoryLock struct {
	mu sync.Mutex
}

// NewMemoryLock creates a new MemoryLock.
func NewMemoryLock() *MemoryLock {
	return &MemoryLock{}
}

func (l *MemoryLock) Acquire(context.Context) (func(context.Context) error, error) {
	if !l.mu.TryLock() {
		return nil, shared.ErrLockHeld
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(l.mu.Unlock)
		return nil
	}, nil
}

// releaseScript deletes the key only while it still holds our token.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// redisClient is the subset of [redis.Client] used by [RedisLock].
type redisClient interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
}

// RedisLock is a [RunLock] shared by every process using the same Redis key.
//
// The key expires after ttl so a holder that dies cannot block runs forever.
type RedisLock struct {
	client redisClient
	key    string
	ttl    time.Duration
	token  func() string
}

// NewRedisLock creates a lock on key. An empty key uses [DefaultLockKey].
func NewRedisLock(client *redis.Client, key string, ttl time.Duration) *RedisLock {
	return newRedisLock(client, key, ttl)
}

func newRedisLock(client redisClient, key string, ttl time.Duration) *RedisLock {
	if key == "" {
		key = DefaultLockKey
	}
	return &RedisLock{client: client, key: key, ttl: ttl, token: shared.GenerateID}
}

func (l *RedisLock) Acquire(ctx context.Context) (func(context.Context) error, error) {
	token := l.token()

	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to acquire lock: %w", shared.ErrServiceUnavail, err)
	}
	if !ok {
		return nil, shared.ErrLockHeld
	}

	return func(ctx context.Context) error {
		n, err := l.client.Eval(ctx, releaseScript, []string{l.key}, token).Int64()
		if err != nil {
			return fmt.Errorf("failed to release lock: %w", err)
		}
		if n == 0 {
			return shared.ErrLockNotHeld
		}
		return nil
	}, nil
}

// NewRunLock builds the lock selected by cfg. The redis backend pings the server first.
func NewRunLock(ctx context.Context, cfg shared.LockConfig) (RunLock, func() error, error) {
	if cfg.Backend != "redis" {
		return NewMemoryLock(), func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("%w: redis ping failed: %w", shared.ErrServiceUnavail, err)
	}

	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	return NewRedisLock(client, DefaultLockKey, ttl), client.Close, nil
}
