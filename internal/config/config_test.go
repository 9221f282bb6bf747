package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "test-key")

	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %s, got %s", path, resolved)
	}
	if cfg.TMDB.APIKey != "test-key" {
		t.Fatalf("expected env api key, got %q", cfg.TMDB.APIKey)
	}
	if cfg.TMDB.BaseURL != defaultTMDBBaseURL {
		t.Fatalf("unexpected base url %q", cfg.TMDB.BaseURL)
	}
	if cfg.Matching.AcceptThreshold != defaultAcceptScore {
		t.Fatalf("unexpected accept threshold %v", cfg.Matching.AcceptThreshold)
	}
}

func TestLoadAppliesOverridesAndMarketAdditions(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[tmdb]
api_key = "abc123"
language = "en-US"

[matching]
accept_threshold = 0.6
broadcast_threshold = 0.75

[market]
non_film_keywords = ["pub quiz", " Bingo "]

[market.aliases]
"HAUSU" = "Hausu (1977)"

[logging]
level = "debug"
format = "json"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.TMDB.APIKey != "abc123" {
		t.Fatalf("unexpected api key %q", cfg.TMDB.APIKey)
	}
	if cfg.Matching.AcceptThreshold != 0.6 || cfg.Matching.BroadcastThreshold != 0.75 {
		t.Fatalf("matching overrides not applied: %+v", cfg.Matching)
	}
	if len(cfg.Market.NonFilmKeywords) != 2 || cfg.Market.NonFilmKeywords[1] != "bingo" {
		t.Fatalf("market keywords not normalized: %v", cfg.Market.NonFilmKeywords)
	}
	if cfg.Market.Aliases["hausu"] != "Hausu (1977)" {
		t.Fatalf("alias keys should be lowercased: %v", cfg.Market.Aliases)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("unexpected log format %q", cfg.Logging.Format)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "key")

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "threshold out of range",
			mutate: func(c *Config) { c.Matching.AcceptThreshold = 1.5 },
			want:   "accept_threshold",
		},
		{
			name:   "broadcast below accept",
			mutate: func(c *Config) { c.Matching.BroadcastThreshold = 0.5 },
			want:   "broadcast_threshold",
		},
		{
			name:   "bad log format",
			mutate: func(c *Config) { c.Logging.Format = "yaml" },
			want:   "logging.format",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.TMDB.APIKey = "key"
			cfg.Logging.Level = "info"
			cfg.Logging.Format = "console"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestValidateRequiresAPIKey(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.toml")
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected missing api key error")
	}
}
