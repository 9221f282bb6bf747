package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"marquee/internal/config"
	"marquee/internal/listing"
	"marquee/internal/resolve/tmdb"
	"marquee/internal/testsupport"
)

func newStubTMDBServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		response := tmdb.Response{Page: 1, TotalPages: 1}
		if strings.EqualFold(r.URL.Query().Get("query"), "Stalker") {
			response.Results = []tmdb.Result{
				{ID: 1398, Title: "Stalker", ReleaseDate: "1979-05-25", VoteCount: 3000},
			}
			response.TotalResults = 1
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			t.Errorf("encode search response: %v", err)
		}
	})
	mux.HandleFunc("/movie/1398", func(w http.ResponseWriter, r *http.Request) {
		details := tmdb.Details{
			ID:          1398,
			Title:       "Stalker",
			ReleaseDate: "1979-05-25",
			Runtime:     162,
			Genres:      []tmdb.Genre{{ID: 878, Name: "Science Fiction"}},
			Credits: tmdb.Credits{
				Crew: []tmdb.CrewMember{{Name: "Andrei Tarkovsky", Job: "Director"}},
			},
		}
		if err := json.NewEncoder(w).Encode(details); err != nil {
			t.Errorf("encode details response: %v", err)
		}
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newCLIConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()

	// Neutralize any ambient key so the config file is authoritative.
	t.Setenv("TMDB_API_KEY", "")
	return testsupport.NewConfig(t,
		testsupport.WithTMDBBaseURL(serverURL),
		testsupport.WithTMDBKey("test-key"))
}

func writeTestConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("marquee %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestRunCommandEnrichesAndRecordsHistory(t *testing.T) {
	server := newStubTMDBServer(t)
	cfg := newCLIConfig(t, server.URL)
	configPath := writeTestConfig(t, cfg)

	sourcePath := testsupport.WriteListings(t, testsupport.BaseDir(cfg), "bfi.json", []listing.Record{
		{Venue: "BFI Southbank", Title: "Stalker", Date: "2026-09-02", Time: "20:00"},
		{Venue: "BFI Southbank", Title: "Pub Quiz Night", Date: "2026-09-02", Time: "21:00"},
	})
	outPath := filepath.Join(testsupport.BaseDir(cfg), "combined.json")

	output := runCLI(t, "--config", configPath, "run", "--source", "bfi="+sourcePath, "--out", outPath)

	records := testsupport.ReadListings(t, outPath)
	if len(records) != 2 {
		t.Fatalf("combined records = %d, want 2", len(records))
	}
	if records[0].TMDBID != 1398 {
		t.Fatalf("Stalker not enriched: tmdb_id = %d", records[0].TMDBID)
	}
	if records[0].Director != "Andrei Tarkovsky" {
		t.Fatalf("director = %q, want Andrei Tarkovsky", records[0].Director)
	}
	if records[1].TMDBID != 0 {
		t.Fatalf("non-film listing was enriched: tmdb_id = %d", records[1].TMDBID)
	}
	if !strings.Contains(output, "bfi") {
		t.Fatalf("report missing source name:\n%s", output)
	}

	runsOutput := runCLI(t, "--config", configPath, "runs")
	if strings.Contains(runsOutput, "No runs recorded yet.") {
		t.Fatalf("run history not recorded:\n%s", runsOutput)
	}

	store := testsupport.MustOpenStore(t, cfg)
	runs, err := store.RecentRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].Listings != 2 || runs[0].Enriched != 1 {
		t.Fatalf("unexpected run history: %+v", runs)
	}
}

func TestEnrichCommandReusesCacheAcrossInvocations(t *testing.T) {
	server := newStubTMDBServer(t)
	cfg := newCLIConfig(t, server.URL)
	configPath := writeTestConfig(t, cfg)

	inPath := testsupport.WriteListings(t, testsupport.BaseDir(cfg), "listings.json", []listing.Record{
		{Venue: "Prince Charles", Title: "Stalker", Date: "2026-09-03", Time: "17:45"},
	})

	runCLI(t, "--config", configPath, "enrich", "--in", inPath)

	if _, err := os.Stat(cfg.Paths.CacheFile); err != nil {
		t.Fatalf("cache file not written: %v", err)
	}

	// Second invocation resolves from the persisted cache, not the stub.
	server.Close()
	runCLI(t, "--config", configPath, "enrich", "--in", inPath)

	records := testsupport.ReadListings(t, inPath)
	if records[0].TMDBID != 1398 {
		t.Fatalf("cached enrichment missing: tmdb_id = %d", records[0].TMDBID)
	}
}

func TestCacheShowPrintsEntry(t *testing.T) {
	server := newStubTMDBServer(t)
	cfg := newCLIConfig(t, server.URL)
	configPath := writeTestConfig(t, cfg)

	inPath := testsupport.WriteListings(t, testsupport.BaseDir(cfg), "listings.json", []listing.Record{
		{Venue: "Prince Charles", Title: "Stalker", Date: "2026-09-03", Time: "17:45"},
	})
	runCLI(t, "--config", configPath, "enrich", "--in", inPath)

	output := runCLI(t, "--config", configPath, "cache", "show", "Stalker")
	if !strings.Contains(output, "\"tmdb_id\": 1398") {
		t.Fatalf("cache show missing entry:\n%s", output)
	}

	// A noisy argument must hit the same entry as the enricher's key.
	noisy := runCLI(t, "--config", configPath, "cache", "show", "Stalker (4K Restoration)")
	if !strings.Contains(noisy, "\"tmdb_id\": 1398") {
		t.Fatalf("cache show missed entry for noisy title:\n%s", noisy)
	}
}
