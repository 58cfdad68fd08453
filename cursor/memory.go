package cursor

import (
	"context"
	"sync"
)

type MemoryStore struct {
	store sync.Map
}

var _ Store = &MemoryStore{}

func (m *MemoryStore) Set(_ context.Context, key, cursor string) error {
	m.store.Store(key, cursor)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	if result, ok := m.store.Load(key); ok {
		if val, ok := result.(string); ok {
			return val, nil
		}
	}

	return "", nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.store.Delete(key)
	return nil
}
