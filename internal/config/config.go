package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations.
type Paths struct {
	DataDir    string `toml:"data_dir"`
	CacheFile  string `toml:"cache_file"`
	ListingsDB string `toml:"listings_db"`
	LogDir     string `toml:"log_dir"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Language       string `toml:"language"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Matching holds the scoring and validation thresholds. The stated defaults
// are heuristics, not guaranteed-correct constants, so every one of them is
// tunable here.
type Matching struct {
	AcceptThreshold      float64 `toml:"accept_threshold"`
	BroadcastThreshold   float64 `toml:"broadcast_threshold"`
	CacheThreshold       float64 `toml:"cache_threshold"`
	YearForgivenessGap   int     `toml:"year_forgiveness_gap"`
	NearExactRatio       float64 `toml:"near_exact_ratio"`
	RuntimeTolerance     int     `toml:"runtime_tolerance"`
	LongRuntimeTolerance int     `toml:"long_runtime_tolerance"`
	LongRuntimeMinutes   int     `toml:"long_runtime_minutes"`
	MaxFinalists         int     `toml:"max_finalists"`
}

// Market extends the built-in per-market vocabularies. Entries here are
// appended to the curated defaults, never replacing them.
type Market struct {
	NonFilmKeywords   []string          `toml:"non_film_keywords"`
	ProgrammeKeywords []string          `toml:"programme_keywords"`
	FestivalKeywords  []string          `toml:"festival_keywords"`
	Aliases           map[string]string `toml:"aliases"`
}

// Logging controls log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Pipeline controls source execution and external-call pacing.
type Pipeline struct {
	SourceWorkers  int  `toml:"source_workers"`
	TitleDelayMS   int  `toml:"title_delay_ms"`
	SourceTimeout  int  `toml:"source_timeout"`
	EnrichDisabled bool `toml:"enrich_disabled"`
}

// Config is the root configuration document.
type Config struct {
	Paths    Paths    `toml:"paths"`
	TMDB     TMDB     `toml:"tmdb"`
	Matching Matching `toml:"matching"`
	Market   Market   `toml:"market"`
	Logging  Logging  `toml:"logging"`
	Pipeline Pipeline `toml:"pipeline"`
}

// Load reads configuration from path (or the default locations when path is
// empty), applies defaults, normalizes, and validates. The returned bool
// reports whether a config file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg, resolvedPath, exists, err := load(path)
	if err != nil {
		return nil, "", false, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return cfg, resolvedPath, exists, nil
}

func load(path string) (*Config, string, bool, error) {
	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		data, readErr := os.ReadFile(resolvedPath)
		if readErr != nil {
			return nil, "", false, fmt.Errorf("read config: %w", readErr)
		}
		if unmarshalErr := toml.Unmarshal(data, &cfg); unmarshalErr != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, unmarshalErr)
		}
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/marquee/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("marquee.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run needs.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DefaultConfigPath returns the expanded default config location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/marquee/config.toml")
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
