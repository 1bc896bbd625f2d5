package job

import (
	"context"
	"sync"
)

// Store persists job snapshots. Get returns nil, nil when the job is
// unknown.
type Store interface {
	Put(ctx context.Context, snap Snapshot) error
	Get(ctx context.Context, id string) (*Snapshot, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps snapshots in process memory. The default driver.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]Snapshot)}
}

func (s *MemoryStore) Put(ctx context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[snap.ID] = snap
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
	return nil
}
