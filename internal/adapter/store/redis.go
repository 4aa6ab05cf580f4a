package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ticketstats/ticketstats/internal/domain"
	"github.com/ticketstats/ticketstats/internal/ports"
)

// RedisStore shares the fetched dataset between replicas
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

var _ ports.SnapshotStore = (*RedisStore)(nil)

type snapshotRecord struct {
	Raw       json.RawMessage `json:"raw"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// NewRedis creates a store writing the snapshot under key. A zero ttl keeps it without expiry.
func NewRedis(client *redis.Client, key string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

// Connect parses a Redis URL and verifies the server answers
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Load returns a new snapshot decoded from Redis, or nil when the key is absent
func (s *RedisStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var rec snapshotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return domain.NewSnapshot(rec.Raw, rec.FetchedAt), nil
}

func (s *RedisStore) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	data, err := json.Marshal(snapshotRecord{
		Raw:       snapshot.Raw,
		FetchedAt: snapshot.FetchedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}
