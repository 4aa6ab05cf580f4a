package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ticketstats/ticketstats/internal/config"
	"github.com/ticketstats/ticketstats/internal/logger"
	"github.com/ticketstats/ticketstats/internal/ports"
)

// redisLimiter counts requests per key in fixed windows
type redisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
	logger logger.Logger
}

// New returns a Redis-backed limiter, or one that allows everything when
// rate limiting is disabled
func New(cfg config.RateLimitConfig, client *redis.Client, log logger.Logger) (ports.RateLimiter, error) {
	if !cfg.Enabled {
		log.Info(context.Background(), "Rate limiting disabled", nil)
		return &noopLimiter{}, nil
	}
	if client == nil {
		return nil, fmt.Errorf("rate limiting requires a Redis client")
	}

	log.Info(context.Background(), "Rate limiting initialized", map[string]interface{}{
		"requests": cfg.Requests,
		"window":   cfg.Window.String(),
	})

	return &redisLimiter{
		client: client,
		limit:  cfg.Requests,
		window: cfg.Window,
		prefix: "ticketstats:ratelimit:",
		logger: log,
	}, nil
}

// Allow increments the counter for key. Redis failures let the request through.
func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := l.prefix + key

	pipeline := l.client.Pipeline()
	incrCmd := pipeline.Incr(ctx, redisKey)
	ttlCmd := pipeline.PTTL(ctx, redisKey)

	if _, err := pipeline.Exec(ctx); err != nil {
		l.logger.Error(ctx, "Failed to increment rate limit counter", err, map[string]interface{}{
			"key": key,
		})
		return true, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	count := incrCmd.Val()

	// start the window on the first hit, or repair a counter left without expiry
	if count == 1 || ttlCmd.Val() < 0 {
		if err := l.client.PExpire(ctx, redisKey, l.window).Err(); err != nil {
			l.logger.Warn(ctx, "Failed to set rate limit window", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}
	allowed := count <= int64(l.limit)

	l.logger.Debug(ctx, "Rate limit check", map[string]interface{}{
		"key":     key,
		"current": count,
		"limit":   l.limit,
		"allowed": allowed,
	})

	return allowed, nil
}

type noopLimiter struct{}

func (n *noopLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return true, nil
}
