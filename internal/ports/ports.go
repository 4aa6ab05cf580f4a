package ports

import (
	"context"

	"github.com/ticketstats/ticketstats/internal/domain"
)

// Fetcher retrieves the complete, unpaginated ticket collection from the upstream API
type Fetcher interface {
	// Fetch returns the raw JSON payload. No retries are performed.
	Fetch(ctx context.Context) ([]byte, error)
}

// TokenProvider issues the bearer credential used against the upstream API
type TokenProvider interface {
	// Token returns a bearer token
	Token(ctx context.Context) (string, error)
}

// SnapshotStore holds the most recently fetched dataset
type SnapshotStore interface {
	// Load returns the held snapshot, or nil when nothing has been fetched yet
	Load(ctx context.Context) (*domain.Snapshot, error)

	// Save replaces the held snapshot wholesale
	Save(ctx context.Context, snapshot *domain.Snapshot) error
}

// ChartRenderer converts a chart specification into embeddable markup
type ChartRenderer interface {
	// Render returns the markup fragment and the ordered script fragments it needs
	Render(spec domain.ChartSpec) (*domain.ChartFragment, error)
}

// RateLimiter decides whether a caller identified by key may proceed
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
