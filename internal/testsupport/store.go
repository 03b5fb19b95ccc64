package testsupport

import (
	"context"
	"testing"

	"qualfill/internal/config"
	"qualfill/internal/quality"
	"qualfill/internal/queue"
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

// NewItem enqueues a title with no known quality.
func NewItem(t testing.TB, store *queue.Store, title string) *queue.Item {
	t.Helper()

	item, err := store.NewItem(context.Background(), title, quality.Descriptor{})
	if err != nil {
		t.Fatalf("store.NewItem: %v", err)
	}
	return item
}

// MustParseQuality parses descriptor text or fails the test.
func MustParseQuality(t testing.TB, text string) quality.Descriptor {
	t.Helper()

	d, err := quality.Parse(text)
	if err != nil {
		t.Fatalf("quality.Parse(%q): %v", text, err)
	}
	return d
}
