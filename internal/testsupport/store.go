package testsupport

import (
	"context"
	"testing"

	"tonearm/internal/config"
	"tonearm/internal/queue"
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

// NewTrack creates a new track item for tests using the provided store.
func NewTrack(t testing.TB, store *queue.Store, relPath string) *queue.Item {
	t.Helper()

	item, err := store.NewTrack(context.Background(), "", relPath, "", "")
	if err != nil {
		t.Fatalf("store.NewTrack: %v", err)
	}
	return item
}
