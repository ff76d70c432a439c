package kv

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}

	if err := store.Set(ctx, "doc", []byte(`{"id":"1"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, err := store.Get(ctx, "doc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(value) != `{"id":"1"}` {
		t.Fatalf("unexpected value %s", value)
	}

	if err := store.Set(ctx, "doc", []byte(`{"id":"2"}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, _ = store.Get(ctx, "doc")
	if string(value) != `{"id":"2"}` {
		t.Fatalf("overwrite not visible: %s", value)
	}

	if err := store.Delete(ctx, "doc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "doc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete got %v", err)
	}

	// Deleting an absent key is a no-op.
	if err := store.Delete(ctx, "doc"); err != nil {
		t.Fatalf("delete absent: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, NewMemory())
}

func TestFileStore(t *testing.T) {
	store, err := NewFile(filepath.Join(t.TempDir(), "data", "billcraft.json"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	testStoreContract(t, store)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "billcraft.json")
	ctx := context.Background()

	first, err := NewFile(path)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if err := first.Set(ctx, "company", []byte(`{"name":"Acme"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}

	second, err := NewFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	value, err := second.Get(ctx, "company")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if string(value) != `{"name":"Acme"}` {
		t.Fatalf("unexpected value %s", value)
	}
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	testStoreContract(t, NewRedisFromClient(client))
}
