package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validatePipeline()
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/marquee/config.toml"
		}
		return fmt.Errorf("tmdb.api_key is required. Set TMDB_API_KEY env var or edit %s (create with 'marquee config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateMatching() error {
	m := c.Matching
	for name, v := range map[string]float64{
		"matching.accept_threshold":    m.AcceptThreshold,
		"matching.broadcast_threshold": m.BroadcastThreshold,
		"matching.cache_threshold":     m.CacheThreshold,
		"matching.near_exact_ratio":    m.NearExactRatio,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}
	if m.BroadcastThreshold < m.AcceptThreshold {
		return errors.New("matching.broadcast_threshold must not be below matching.accept_threshold")
	}
	if m.LongRuntimeTolerance < m.RuntimeTolerance {
		return errors.New("matching.long_runtime_tolerance must not be below matching.runtime_tolerance")
	}
	if m.MaxFinalists < 1 {
		return errors.New("matching.max_finalists must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.SourceWorkers < 1 {
		return errors.New("pipeline.source_workers must be at least 1")
	}
	return nil
}
