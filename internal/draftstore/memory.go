package draftstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps records in process. Used by tests and by the `memory`
// store backend.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	hub     *hub
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]Record{}, hub: newHub()}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Record, bool, error) {
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}
	if s.hub.closed() {
		return nil, false, ErrClosed
	}
	s.mu.RLock()
	rec, ok := s.records[key]
	s.mu.RUnlock()
	return rec.Clone(), ok, nil
}

// Merge applies patch to the record at key, creating it when absent.
func (s *MemoryStore) Merge(_ context.Context, key string, patch Patch) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if s.hub.closed() {
		return ErrClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.records[key].Merge(patch)
	s.records[key] = next
	s.hub.publish(key, next, true)
	return nil
}

// Reset removes the whole record. Subscribers see an absent snapshot.
func (s *MemoryStore) Reset(_ context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if s.hub.closed() {
		return ErrClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; !ok {
		return nil
	}
	delete(s.records, key)
	s.hub.publish(key, nil, false)
	return nil
}

func (s *MemoryStore) Subscribe(key string) *Subscription {
	if ValidateKey(key) != nil {
		return closedSubscription(key)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	return s.hub.add(key, Snapshot{Record: rec.Clone(), Present: ok})
}

// Keys lists stored keys in lexical order.
func (s *MemoryStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.records))
	for k := range s.records {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

// Close ends every subscription; later calls fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.hub.close()
	return nil
}
