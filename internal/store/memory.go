package store

import (
	"context"
	"sync"
)

type memoryBackend struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryBackend builds a process-local backend. Contents are lost on exit.
func NewMemoryBackend() Backend {
	return &memoryBackend{slots: make(map[string][]byte)}
}

func (b *memoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	raw, ok := b.slots[key]
	if !ok {
		return nil, ErrNoRecord
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (b *memoryBackend) Put(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	b.slots[key] = stored
	return nil
}

func (b *memoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.slots, key)
	return nil
}
