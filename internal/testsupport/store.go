package testsupport

import (
	"context"
	"testing"

	"shoebox/internal/config"
	"shoebox/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewRoot creates a new batch item for tests using the provided store.
func NewRoot(t testing.TB, store *queue.Store, rootPath string) *queue.Item {
	t.Helper()

	item, err := store.NewRoot(context.Background(), rootPath)
	if err != nil {
		t.Fatalf("store.NewRoot: %v", err)
	}
	return item
}
