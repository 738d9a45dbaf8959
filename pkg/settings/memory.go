package settings

import (
	"context"
	"maps"
	"sync"
)

// MemoryBackend keeps the settings document in process memory.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryBackend creates a memory backend seeded with initial, which may be nil.
func NewMemoryBackend(initial map[string]string) *MemoryBackend {
	values := make(map[string]string, len(initial))
	maps.Copy(values, initial)
	return &MemoryBackend{values: values}
}

func (b *MemoryBackend) Load(ctx context.Context) (map[string]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return maps.Clone(b.values), nil
}

func (b *MemoryBackend) Save(ctx context.Context, values map[string]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values = maps.Clone(values)
	return nil
}
