package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	st := NewRedisBackend(client, time.Hour).Scope("digest")

	if err := st.Save(ctx, map[string]string{KeyUser: `{"id":"1"}`, KeyToken: "tok", KeyExpiresAt: "1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := mr.TTL(redisKeyPrefix + "digest"); ttl != time.Hour {
		t.Fatalf("expected ttl 1h, got %s", ttl)
	}
	values, err := st.Load(ctx)
	if err != nil || values[KeyToken] != "tok" || len(values) != 3 {
		t.Fatalf("load: %v %v", values, err)
	}
	if err := st.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if mr.Exists(redisKeyPrefix + "digest") {
		t.Fatal("hash survived clear")
	}
}

func TestMemoryBackendSweep(t *testing.T) {
	now := time.Now()
	b := NewMemoryBackend(time.Minute)
	b.now = func() time.Time { return now }
	ctx := context.Background()

	_ = b.Scope("old").Save(ctx, map[string]string{KeyToken: "a"})
	now = now.Add(2 * time.Minute)
	_ = b.Scope("fresh").Save(ctx, map[string]string{KeyToken: "b"})

	if removed := b.Sweep(); removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if b.Len() != 1 {
		t.Fatalf("expected 1 remaining, got %d", b.Len())
	}
	values, _ := b.Scope("fresh").Load(ctx)
	if values[KeyToken] != "b" {
		t.Fatalf("fresh entry lost: %v", values)
	}
}
