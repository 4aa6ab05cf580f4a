package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketstats/ticketstats/internal/adapter/store"
	"github.com/ticketstats/ticketstats/internal/config"
	"github.com/ticketstats/ticketstats/internal/logger"
)

func TestNew_Disabled(t *testing.T) {
	limiter, err := New(config.RateLimitConfig{Enabled: false}, nil, logger.NewNop())
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		allowed, err := limiter.Allow(context.Background(), "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestNew_EnabledWithoutClient(t *testing.T) {
	_, err := New(config.RateLimitConfig{Enabled: true, Requests: 1, Window: time.Minute}, nil, logger.NewNop())
	assert.Error(t, err)
}

func TestRedisLimiter_Allow(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}

	ctx := context.Background()
	client, err := store.Connect(ctx, url)
	require.NoError(t, err)
	defer client.Close()

	limiter, err := New(config.RateLimitConfig{Enabled: true, Requests: 3, Window: time.Minute}, client, logger.NewNop())
	require.NoError(t, err)

	key := uuid.NewString()
	defer client.Del(ctx, "ticketstats:ratelimit:"+key)

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, allowed)

	ttl, err := client.PTTL(ctx, "ticketstats:ratelimit:"+key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
