package repository

import (
	"context"
	"sync"

	"github.com/comitanigiacomo/onepunch-tracker/internal/core/domain"
)

var _ domain.KeyValueStore = (*InMemoryStore)(nil)

type InMemoryStore struct {
	store map[string][]byte

	mu sync.RWMutex
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		store: make(map[string][]byte),
	}
}

func (s *InMemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.store[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return append([]byte(nil), val...), nil
}

func (s *InMemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store[key] = append([]byte(nil), value...)
	return nil
}

func (s *InMemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.store, key)
	return nil
}

func (s *InMemoryStore) Ping(ctx context.Context) error {
	return nil
}
