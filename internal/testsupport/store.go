package testsupport

import (
	"testing"

	"marquee/internal/config"
	"marquee/internal/listing"
)

// MustOpenStore opens a listing.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *listing.Store {
	t.Helper()

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	store, err := listing.OpenStore(cfg.Paths.ListingsDB)
	if err != nil {
		t.Fatalf("listing.OpenStore: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
