package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// FlashBackend stores notices between requests of one browser session.
type FlashBackend interface {
	Push(ctx context.Context, sid string, n Notice) error
	Drain(ctx context.Context, sid string) ([]Notice, error)
}

// Flash is a Notifier bound to one browser session.
type Flash struct {
	backend FlashBackend
	sid     string
	log     zerolog.Logger
}

func NewFlash(backend FlashBackend, sid string, log zerolog.Logger) *Flash {
	return &Flash{backend: backend, sid: sid, log: log}
}

func (f *Flash) Notify(ctx context.Context, n Notice) {
	if err := f.backend.Push(ctx, f.sid, n); err != nil {
		f.log.Error().Err(err).Str("kind", string(n.Kind)).Msg("flash push failed")
	}
}

// Move rebinds the flash to another session, carrying pending notices over.
func (f *Flash) Move(ctx context.Context, sid string) {
	pending, err := f.backend.Drain(ctx, f.sid)
	if err != nil {
		f.log.Error().Err(err).Msg("flash drain failed")
	}
	f.sid = sid
	for _, n := range pending {
		f.Notify(ctx, n)
	}
}

// Drain returns pending notices, deduplicated by ID, oldest first.
func (f *Flash) Drain(ctx context.Context) []Notice {
	notices, err := f.backend.Drain(ctx, f.sid)
	if err != nil {
		f.log.Error().Err(err).Msg("flash drain failed")
		return nil
	}
	var out []Notice
	for _, n := range notices {
		out = appendUnique(out, n)
	}
	return out
}

type memoryEntry struct {
	notices []Notice
	touched time.Time
}

type MemoryFlash struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryFlash(ttl time.Duration) *MemoryFlash {
	return &MemoryFlash{entries: make(map[string]*memoryEntry), ttl: ttl, now: time.Now}
}

func (m *MemoryFlash) Push(_ context.Context, sid string, n Notice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[sid]
	if !ok {
		entry = &memoryEntry{}
		m.entries[sid] = entry
	}
	entry.notices = append(entry.notices, n)
	entry.touched = m.now()
	return nil
}

func (m *MemoryFlash) Drain(_ context.Context, sid string) ([]Notice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[sid]
	if !ok {
		return nil, nil
	}
	delete(m.entries, sid)
	return entry.notices, nil
}

// Sweep drops notices nobody collected within the TTL.
func (m *MemoryFlash) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-m.ttl)
	removed := 0
	for sid, entry := range m.entries {
		if entry.touched.Before(cutoff) {
			delete(m.entries, sid)
			removed++
		}
	}
	return removed
}

type RedisFlash struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisFlash(client *redis.Client, ttl time.Duration) *RedisFlash {
	return &RedisFlash{client: client, prefix: "portal:flash:", ttl: ttl}
}

func (r *RedisFlash) Push(ctx context.Context, sid string, n Notice) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notice: %w", err)
	}
	key := r.prefix + sid
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, payload)
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	return err
}

func (r *RedisFlash) Drain(ctx context.Context, sid string) ([]Notice, error) {
	key := r.prefix + sid
	var rng *redis.StringSliceCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		rng = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	raw := rng.Val()
	notices := make([]Notice, 0, len(raw))
	for _, item := range raw {
		var n Notice
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			continue
		}
		notices = append(notices, n)
	}
	return notices, nil
}
