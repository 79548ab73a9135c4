package session

import (
	"context"
	"maps"
	"sync"
	"time"
)

type memoryEntry struct {
	values  map[string]string
	touched time.Time
}

// MemoryBackend keeps sessions in process. Entries idle longer than the
// configured TTL are removed by Sweep.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	idle    time.Duration
	now     func() time.Time
}

func NewMemoryBackend(idle time.Duration) *MemoryBackend {
	return &MemoryBackend{
		entries: make(map[string]*memoryEntry),
		idle:    idle,
		now:     time.Now,
	}
}

func (b *MemoryBackend) Scope(key string) Storage {
	return &memoryStorage{backend: b, key: key}
}

// Sweep drops idle entries and reports how many were removed.
func (b *MemoryBackend) Sweep() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	cutoff := b.now().Add(-b.idle)
	removed := 0
	for key, entry := range b.entries {
		if entry.touched.Before(cutoff) {
			delete(b.entries, key)
			removed++
		}
	}
	return removed
}

func (b *MemoryBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

type memoryStorage struct {
	backend *MemoryBackend
	key     string
}

func (s *memoryStorage) Load(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	entry, ok := s.backend.entries[s.key]
	if !ok {
		return map[string]string{}, nil
	}
	entry.touched = s.backend.now()
	return maps.Clone(entry.values), nil
}

func (s *memoryStorage) Save(ctx context.Context, values map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	entry, ok := s.backend.entries[s.key]
	if !ok {
		entry = &memoryEntry{values: make(map[string]string, len(values))}
		s.backend.entries[s.key] = entry
	}
	maps.Copy(entry.values, values)
	entry.touched = s.backend.now()
	return nil
}

func (s *memoryStorage) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.backend.mu.Lock()
	delete(s.backend.entries, s.key)
	s.backend.mu.Unlock()
	return nil
}
