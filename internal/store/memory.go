package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps entries in a map. Used by tests and DB_DRIVER=memory.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[string][]byte
	// Fail, when set, is returned by Put.
	Fail error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string][]byte)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), b...), true, nil
}

func (m *MemoryBackend) Put(_ context.Context, entries map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	for k, v := range entries {
		m.entries[k] = append([]byte(nil), v...)
	}
	return nil
}
