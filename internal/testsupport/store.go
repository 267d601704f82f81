package testsupport

import (
	"context"
	"testing"

	"refit/internal/catalog"
	"refit/internal/config"
	"refit/internal/tracking"
)

// MustOpenTracking opens a tracking.Store for tests and registers cleanup.
func MustOpenTracking(t testing.TB, cfg *config.Config) *tracking.Store {
	t.Helper()

	store, err := tracking.Open(cfg)
	if err != nil {
		t.Fatalf("tracking.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewCatalog returns an in-memory catalog store for tests.
func NewCatalog(t testing.TB) *catalog.MemoryStore {
	t.Helper()
	return catalog.NewMemoryStore()
}

// SeedProduct upserts a product into the store, failing the test on error.
func SeedProduct(t testing.TB, store catalog.Store, product *catalog.Product) {
	t.Helper()
	if err := store.Upsert(context.Background(), product); err != nil {
		t.Fatalf("catalog.Upsert %s: %v", product.ID, err)
	}
}
