package core

import (
	"context"
	"errors"
	"testing"
)

func TestCredentialCache_ReadThroughAndOverlay(t *testing.T) {
	ctx := context.Background()
	store := newMemoryCredentialStore()
	store.values["gemini"] = "DURABLE"
	cache := NewCredentialCache(store, nil)

	value, ok := cache.Get(ctx, "gemini")
	if !ok || value != "DURABLE" {
		t.Fatalf("expected durable read, got %q (%v)", value, ok)
	}

	cache.Put(ctx, "gemini", "FRESH")
	if value, ok := cache.Get(ctx, "gemini"); !ok || value != "FRESH" {
		t.Fatalf("expected overlay value, got %q (%v)", value, ok)
	}
	if stored, ok := store.value("gemini"); !ok || stored != "FRESH" {
		t.Fatalf("expected write-through, got %q (%v)", stored, ok)
	}
}

func TestCredentialCache_WriteFailureDegradesToMemory(t *testing.T) {
	ctx := context.Background()
	store := newMemoryCredentialStore()
	store.putErr = errors.New("disk full")
	cache := NewCredentialCache(store, nil)

	cache.Put(ctx, "gemini", "KEY")
	if value, ok := cache.Get(ctx, "gemini"); !ok || value != "KEY" {
		t.Fatalf("expected in-memory credential after write failure, got %q (%v)", value, ok)
	}
	if _, ok := store.value("gemini"); ok {
		t.Fatalf("expected durable store untouched after failed write")
	}
}

func TestCredentialCache_ClearTombstoneBlocksResurrection(t *testing.T) {
	ctx := context.Background()
	store := newMemoryCredentialStore()
	store.values["gemini"] = "BAD"
	store.clearEr = errors.New("readonly database")
	cache := NewCredentialCache(store, nil)

	cache.Clear(ctx, "gemini")
	if _, ok := cache.Get(ctx, "gemini"); ok {
		t.Fatalf("cleared credential resurrected from a failing durable store")
	}
}

func TestCredentialCache_ReadFailureTreatedAsAbsent(t *testing.T) {
	ctx := context.Background()
	store := newMemoryCredentialStore()
	store.getErr = errors.New("database is locked")
	cache := NewCredentialCache(store, nil)

	if _, ok := cache.Get(ctx, "gemini"); ok {
		t.Fatalf("expected failed read to report no credential")
	}
}

func TestCredentialCache_IgnoresBlankInput(t *testing.T) {
	ctx := context.Background()
	store := newMemoryCredentialStore()
	cache := NewCredentialCache(store, nil)

	cache.Put(ctx, "  ", "KEY")
	cache.Put(ctx, "gemini", "   ")
	if len(store.values) != 0 {
		t.Fatalf("expected blank puts to be dropped, got %v", store.values)
	}
}
