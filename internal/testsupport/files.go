package testsupport

import (
	"path/filepath"
	"testing"

	"marquee/internal/listing"
)

// WriteListings writes records to a listings JSON file under the test's temp
// directory and returns its path.
func WriteListings(t testing.TB, dir, name string, records []listing.Record) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := listing.WriteFile(path, records); err != nil {
		t.Fatalf("write listings %s: %v", path, err)
	}
	return path
}

// ReadListings reads a listings JSON file, failing the test on error.
func ReadListings(t testing.TB, path string) []listing.Record {
	t.Helper()

	records, err := listing.ReadFile(path)
	if err != nil {
		t.Fatalf("read listings %s: %v", path, err)
	}
	return records
}
