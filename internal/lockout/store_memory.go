package lockout

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and Redis-less deployments
type MemoryStore struct {
	mu          sync.Mutex
	failures    map[string]*failureRecord
	maxAttempts int64
	window      time.Duration
}

type failureRecord struct {
	count     int64
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory lockout store
func NewMemoryStore(maxAttempts int64, window time.Duration) *MemoryStore {
	return &MemoryStore{
		failures:    make(map[string]*failureRecord),
		maxAttempts: maxAttempts,
		window:      window,
	}
}

func (s *MemoryStore) RecordFailure(_ context.Context, identifier string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.failures[identifier]
	if !ok || time.Now().After(record.expiresAt) {
		record = &failureRecord{expiresAt: time.Now().Add(s.window)}
		s.failures[identifier] = record
	}

	record.count++
	return record.count, nil
}

func (s *MemoryStore) IsLocked(_ context.Context, identifier string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.failures[identifier]
	if !ok || time.Now().After(record.expiresAt) {
		return false, nil
	}

	return record.count >= s.maxAttempts, nil
}

func (s *MemoryStore) Clear(_ context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.failures, identifier)
	return nil
}

func (s *MemoryStore) Health(_ context.Context) error {
	return nil
}
