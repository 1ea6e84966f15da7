package server

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/recipeshift/internal/shared"
	tu "github.com/desertthunder/recipeshift/internal/testing"
)

// fakeRedis keeps keys in a map and understands the release script.
type fakeRedis struct {
	mu   sync.Mutex
	keys map[string]string
	ttls map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{keys: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	if _, ok := f.keys[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Eval(_ context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.keys[keys[0]] != args[0] {
		return redis.NewCmdResult(int64(0), nil)
	}
	delete(f.keys, keys[0])
	return redis.NewCmdResult(int64(1), nil)
}

func TestMemoryLock(t *testing.T) {
	ctx := context.Background()
	lock := NewMemoryLock()

	release, err := lock.Acquire(ctx)
	require.NoError(t, err)

	_, err = lock.Acquire(ctx)
	assert.ErrorIs(t, err, shared.ErrLockHeld)

	require.NoError(t, release(ctx))
	// a second release must not unlock someone else's hold
	again, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.NoError(t, release(ctx))

	_, err = lock.Acquire(ctx)
	assert.ErrorIs(t, err, shared.ErrLockHeld)
	require.NoError(t, again(ctx))
}

func TestRedisLock(t *testing.T) {
	ctx := context.Background()

	t.Run("acquire and release", func(t *testing.T) {
		client := newFakeRedis()
		lock := newRedisLock(client, "", time.Minute)

		release, err := lock.Acquire(ctx)
		require.NoError(t, err)
		assert.Contains(t, client.keys, DefaultLockKey)
		assert.Equal(t, time.Minute, client.ttls[DefaultLockKey])

		_, err = newRedisLock(client, "", time.Minute).Acquire(ctx)
		assert.ErrorIs(t, err, shared.ErrLockHeld)

		require.NoError(t, release(ctx))
		assert.NotContains(t, client.keys, DefaultLockKey)
	})

	t.Run("release after expiry", func(t *testing.T) {
		client := newFakeRedis()
		lock := newRedisLock(client, "runs", time.Second)

		release, err := lock.Acquire(ctx)
		require.NoError(t, err)

		// the key expired and another process took it
		client.keys["runs"] = "someone-else"

		assert.ErrorIs(t, release(ctx), shared.ErrLockNotHeld)
		assert.Equal(t, "someone-else", client.keys["runs"])
	})

	t.Run("backend unavailable", func(t *testing.T) {
		client := newFakeRedis()
		client.err = tu.ErrInjected

		_, err := newRedisLock(client, "", time.Minute).Acquire(ctx)
		assert.True(t, errors.Is(err, shared.ErrServiceUnavail))
		assert.True(t, errors.Is(err, tu.ErrInjected))
	})
}

func TestNewRunLock(t *testing.T) {
	lock, closeFn, err := NewRunLock(context.Background(), shared.LockConfig{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryLock{}, lock)
	assert.NoError(t, closeFn())
}
