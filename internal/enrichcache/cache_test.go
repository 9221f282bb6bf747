package enrichcache

import (
	"os"
	"path/filepath"
	"testing"

	"marquee/internal/listing"
)

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	cache, err := Open(filepath.Join(t.TempDir(), "cache.json"), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if cache.Len() != 0 || cache.Dirty() {
		t.Fatalf("expected clean empty cache, got len=%d dirty=%v", cache.Len(), cache.Dirty())
	}
}

func TestOpenCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	cache, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open failed on corrupt file: %v", err)
	}
	if cache.Len() != 0 {
		t.Fatalf("expected empty cache after corruption, got %d entries", cache.Len())
	}
}

func TestStoreFlushReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	cache, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	film := &listing.Film{TMDBID: 26606, Title: "House", OriginalTitle: "ハウス", ReleaseDate: "1977-07-30", Runtime: 88}
	cache.Store("hausu", film, 1977, 88)
	cache.MarkAbsent("members quiz night", 0, 0)
	if !cache.Dirty() {
		t.Fatal("cache should be dirty after writes")
	}
	if err := cache.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if cache.Dirty() {
		t.Fatal("cache should be clean after flush")
	}

	reloaded, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	entry, ok := reloaded.Lookup("hausu")
	if !ok || entry.Film == nil || entry.Film.TMDBID != 26606 {
		t.Fatalf("unexpected reloaded entry: %+v ok=%v", entry, ok)
	}
	if entry.DeclaredRuntime != 88 {
		t.Fatalf("DeclaredRuntime = %d, want 88", entry.DeclaredRuntime)
	}
	absent, ok := reloaded.Lookup("members quiz night")
	if !ok || !absent.Absent {
		t.Fatalf("absent marker lost: %+v ok=%v", absent, ok)
	}
}

func TestFlushSkipsWhenClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	cache, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := cache.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("clean cache must not write a file")
	}
}

func TestEvictAndPruneAbsent(t *testing.T) {
	cache, err := Open(filepath.Join(t.TempDir(), "cache.json"), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	cache.Store("stalker", &listing.Film{TMDBID: 1398}, 0, 0)
	cache.MarkAbsent("pub quiz", 0, 0)
	cache.MarkAbsent("open mic", 0, 0)

	cache.Evict("stalker")
	if _, ok := cache.Lookup("stalker"); ok {
		t.Fatal("evicted entry still present")
	}

	if pruned := cache.PruneAbsent(); pruned != 2 {
		t.Fatalf("PruneAbsent = %d, want 2", pruned)
	}
	if cache.Len() != 0 {
		t.Fatalf("Len = %d after prune, want 0", cache.Len())
	}

	if keys := cache.Keys(); len(keys) != 0 {
		t.Fatalf("Keys = %v, want empty", keys)
	}
}
