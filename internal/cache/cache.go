package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/ticketstats/ticketstats/internal/domain"
	"github.com/ticketstats/ticketstats/internal/logger"
	"github.com/ticketstats/ticketstats/internal/ports"
)

// DefaultFreshness is how long a fetched dataset is served before it is refetched
const DefaultFreshness = 60 * time.Second

// Cache serves the upstream dataset, refetching it once it is older than the
// freshness interval. A failed fetch never replaces the held snapshot.
type Cache struct {
	fetcher      ports.Fetcher
	store        ports.SnapshotStore
	clock        clockwork.Clock
	freshness    time.Duration
	logger       logger.Logger
	singleFlight bool
	group        singleflight.Group
}

// Option configures a Cache
type Option func(*Cache)

// WithClock sets the clock used to stamp and age snapshots
func WithClock(clock clockwork.Clock) Option {
	return func(c *Cache) {
		c.clock = clock
	}
}

// WithFreshness sets the freshness interval
func WithFreshness(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.freshness = d
		}
	}
}

// WithLogger sets the logger for fetch and cache-hit events
func WithLogger(log logger.Logger) Option {
	return func(c *Cache) {
		c.logger = log
	}
}

// WithSingleFlight controls whether concurrent stale readers share one fetch
func WithSingleFlight(enabled bool) Option {
	return func(c *Cache) {
		c.singleFlight = enabled
	}
}

// New creates a cache over fetcher, holding snapshots in store
func New(fetcher ports.Fetcher, store ports.SnapshotStore, opts ...Option) *Cache {
	c := &Cache{
		fetcher:      fetcher,
		store:        store,
		clock:        clockwork.NewRealClock(),
		freshness:    DefaultFreshness,
		logger:       logger.NewNop(),
		singleFlight: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the held snapshot while it is fresh, otherwise fetches a new one
func (c *Cache) Get(ctx context.Context) (*domain.Snapshot, error) {
	held, err := c.store.Load(ctx)
	if err != nil {
		// an unreadable store behaves like an empty one
		c.logger.Warn(ctx, "failed to load held snapshot", map[string]interface{}{
			"error": err.Error(),
		})
		held = nil
	}

	if held != nil && c.fresh(held) {
		c.logger.Info(ctx, "Serving cached data", map[string]interface{}{
			"age_ms": held.Age(c.clock.Now()).Milliseconds(),
		})
		return held, nil
	}

	if !c.singleFlight {
		return c.refresh(ctx)
	}

	// the flight outlives any single caller; each caller waits on its own context
	flight := c.group.DoChan("snapshot", func() (interface{}, error) {
		return c.refresh(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-flight:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.logger.Debug(ctx, "shared an in-flight fetch", nil)
		}
		return res.Val.(*domain.Snapshot), nil
	}
}

// Age reports how old the held snapshot is. ok is false when nothing is held.
func (c *Cache) Age(ctx context.Context) (age time.Duration, ok bool, err error) {
	held, err := c.store.Load(ctx)
	if err != nil {
		return 0, false, err
	}
	if held == nil {
		return 0, false, nil
	}
	return held.Age(c.clock.Now()), true, nil
}

func (c *Cache) fresh(s *domain.Snapshot) bool {
	return s.Age(c.clock.Now()) < c.freshness
}

func (c *Cache) refresh(ctx context.Context) (*domain.Snapshot, error) {
	// another caller may have refreshed while this one waited for the flight
	if held, err := c.store.Load(ctx); err == nil && held != nil && c.fresh(held) {
		return held, nil
	}

	c.logger.Info(ctx, "Fetching fresh data", map[string]interface{}{
		"freshness_ms": c.freshness.Milliseconds(),
	})

	raw, err := c.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := domain.NewSnapshot(raw, c.clock.Now())
	if err := c.store.Save(ctx, snapshot); err != nil {
		// the fetched data is still good for this request
		c.logger.Error(ctx, "failed to save snapshot", fmt.Errorf("save snapshot: %w", err), map[string]interface{}{
			"bytes": len(raw),
		})
	}
	return snapshot, nil
}
