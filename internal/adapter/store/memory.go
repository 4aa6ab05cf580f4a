package store

import (
	"context"
	"sync"

	"github.com/ticketstats/ticketstats/internal/domain"
	"github.com/ticketstats/ticketstats/internal/ports"
)

// MemoryStore keeps the snapshot in process memory
type MemoryStore struct {
	mu       sync.RWMutex
	snapshot *domain.Snapshot
}

var _ ports.SnapshotStore = (*MemoryStore)(nil)

// NewMemory creates an empty in-memory snapshot store
func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the held snapshot pointer, or nil
func (s *MemoryStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, nil
}

func (s *MemoryStore) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()
	return nil
}
