package ratelimit

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisLimiterInvalidURL(t *testing.T) {
	_, err := NewRedisLimiter("not a url", 10, time.Minute)
	assert.Error(t, err)
}

func TestRedisLimiterWithServer(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL is not set, skip redis integration test")
	}

	l, err := NewRedisLimiter(redisURL, 3, time.Minute)
	require.NoError(t, err)
	defer l.Close()

	ctx := context.Background()
	key := "test-" + uuid.NewString()
	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisLimiterConcurrentCallers(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL is not set, skip redis integration test")
	}

	l, err := NewRedisLimiter(redisURL, 10, time.Minute)
	require.NoError(t, err)
	defer l.Close()

	ctx := context.Background()
	key := "test-" + uuid.NewString()
	var (
		wg      sync.WaitGroup
		allowed atomic.Int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := l.Allow(ctx, key)
			assert.NoError(t, err)
			if ok {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 10, allowed.Load())
}
