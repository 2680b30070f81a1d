package cache

import (
	"context"
	"testing"
)

func TestLRUTierSetGet(t *testing.T) {
	c, err := NewLRUTier(10, nil)
	if err != nil {
		t.Fatalf("NewLRUTier: %v", err)
	}
	ctx := context.Background()

	if _, ok, _ := c.Get(ctx, "missing"); ok {
		t.Fatalf("expected miss on empty cache")
	}
	if err := c.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(v) != "v" {
		t.Fatalf("got %q,%v,%v want v,true,nil", v, ok, err)
	}

	stats, _ := c.Stats(ctx)
	if stats.TotalHits != 1 || stats.TotalMiss != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestHybridCacheL1Only(t *testing.T) {
	l1, err := NewLRUTier(10, nil)
	if err != nil {
		t.Fatalf("NewLRUTier: %v", err)
	}
	h := NewHybridCache(l1, nil, nil)
	ctx := context.Background()

	if err := h.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := h.Get(ctx, "k")
	if err != nil || !ok || string(v) != "v" {
		t.Fatalf("got %q,%v,%v want v,true,nil", v, ok, err)
	}
}
