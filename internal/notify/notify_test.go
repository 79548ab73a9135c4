package notify

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func TestRecorderDedupesByID(t *testing.T) {
	var rec Recorder
	ctx := context.Background()

	rec.Notify(ctx, Notice{ID: "unauthorized-access", Kind: KindError, Message: "no"})
	rec.Notify(ctx, Notice{ID: "unauthorized-access", Kind: KindError, Message: "no"})
	Success(ctx, &rec, "saved")
	Success(ctx, &rec, "saved")

	got := rec.Drain()
	if len(got) != 3 {
		t.Fatalf("expected 3 notices (one deduped), got %d: %+v", len(got), got)
	}
	if len(rec.Notices()) != 0 {
		t.Fatalf("expected recorder to be empty after drain")
	}
}

func TestMemoryFlashDrainAndSweep(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryFlash(time.Minute)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	backend.now = func() time.Time { return now }

	flash := NewFlash(backend, "sid-1", zerolog.Nop())
	Info(ctx, flash, "first")
	Error(ctx, flash, "second")

	got := flash.Drain(ctx)
	if len(got) != 2 || got[0].Message != "first" || got[1].Kind != KindError {
		t.Fatalf("unexpected notices: %+v", got)
	}
	if again := flash.Drain(ctx); len(again) != 0 {
		t.Fatalf("expected drained flash to be empty, got %+v", again)
	}

	Info(ctx, flash, "stale")
	now = now.Add(2 * time.Minute)
	if removed := backend.Sweep(); removed != 1 {
		t.Fatalf("expected 1 swept entry, got %d", removed)
	}
}

func TestRedisFlash(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	flash := NewFlash(NewRedisFlash(rdb, time.Minute), "sid-2", zerolog.Nop())
	flash.Notify(ctx, Notice{ID: "dup", Kind: KindWarning, Message: "a"})
	flash.Notify(ctx, Notice{ID: "dup", Kind: KindWarning, Message: "a"})
	Success(ctx, flash, "b")

	if ttl := mr.TTL("portal:flash:sid-2"); ttl <= 0 {
		t.Fatalf("expected ttl on flash key, got %s", ttl)
	}

	got := flash.Drain(ctx)
	if len(got) != 2 {
		t.Fatalf("expected 2 notices, got %+v", got)
	}
	if mr.Exists("portal:flash:sid-2") {
		t.Fatalf("expected flash key to be deleted after drain")
	}
}

func TestFlashMoveCarriesPendingNotices(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryFlash(time.Minute)
	flash := NewFlash(backend, "old", zerolog.Nop())
	Success(ctx, flash, "welcome")

	flash.Move(ctx, "new")
	Info(ctx, flash, "after")

	if left := NewFlash(backend, "old", zerolog.Nop()).Drain(ctx); len(left) != 0 {
		t.Fatalf("old session must be empty, got %+v", left)
	}
	got := NewFlash(backend, "new", zerolog.Nop()).Drain(ctx)
	if len(got) != 2 || got[0].Message != "welcome" || got[1].Message != "after" {
		t.Fatalf("unexpected notices: %+v", got)
	}
}
