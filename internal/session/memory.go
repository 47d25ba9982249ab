package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store useful for tests. It is not
// intended for production use: state is process-local, which would let
// a revoked token survive on other replicas.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]memoryEntry
	sets   map[string]map[string]struct{}
	clock  func() time.Time
}

type memoryEntry struct {
	value    string
	expireAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]memoryEntry),
		sets:   make(map[string]map[string]struct{}),
		clock:  time.Now,
	}
}

func (s *MemoryStore) get(key string) (string, bool) {
	e, ok := s.values[key]
	if !ok {
		return "", false
	}
	if !e.expireAt.IsZero() && !s.clock().Before(e.expireAt) {
		delete(s.values, key)
		return "", false
	}
	return e.value, true
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expireAt = s.clock().Add(ttl)
	}
	s.values[key] = e
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.get(key)
	return v, ok, nil
}

func (s *MemoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
		delete(s.sets, k)
	}
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.get(key)
	return ok, nil
}

func (s *MemoryStore) SAdd(_ context.Context, set, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.sets[set]
	if !ok {
		m = make(map[string]struct{})
		s.sets[set] = m
	}
	m[member] = struct{}{}
	return nil
}

func (s *MemoryStore) SMembers(_ context.Context, set string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.sets[set]
	out := make([]string, 0, len(m))
	for member := range m {
		out = append(out, member)
	}
	return out, nil
}

func (s *MemoryStore) SRem(_ context.Context, set, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.sets[set]; ok {
		delete(m, member)
		if len(m) == 0 {
			delete(s.sets, set)
		}
	}
	return nil
}

func (s *MemoryStore) CompareAndDelete(_ context.Context, key, expected string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.get(key)
	if !ok || v != expected {
		return false, nil
	}
	delete(s.values, key)
	return true, nil
}
