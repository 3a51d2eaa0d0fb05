package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache(8, time.Minute, zerolog.Nop())
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

func TestMemoryCachePerKeyTTL(t *testing.T) {
	c := NewMemoryCache(8, time.Hour, zerolog.Nop())
	ctx := context.Background()

	if err := c.Set(ctx, "short", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := c.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expired entry to miss, got %v", err)
	}
}

func TestGetOrLoad(t *testing.T) {
	c := NewMemoryCache(8, time.Minute, zerolog.Nop())
	ctx := context.Background()

	type payload struct {
		N int `json:"n"`
	}
	calls := 0
	load := func(context.Context) (payload, error) {
		calls++
		return payload{N: 42}, nil
	}

	for i := 0; i < 3; i++ {
		v, err := GetOrLoad(ctx, c, zerolog.Nop(), "test:answer", time.Minute, load)
		if err != nil {
			t.Fatalf("GetOrLoad: %v", err)
		}
		if v.N != 42 {
			t.Fatalf("got %+v", v)
		}
	}
	if calls != 1 {
		t.Fatalf("loader ran %d times, want 1", calls)
	}

	boom := errors.New("boom")
	_, err := GetOrLoad(ctx, c, zerolog.Nop(), "test:fail", time.Minute, func(context.Context) (payload, error) {
		return payload{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	if _, err := c.Get(ctx, "test:fail"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("failed loads must not be cached")
	}
}
