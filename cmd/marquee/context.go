package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"marquee/internal/config"
	"marquee/internal/enrichcache"
	"marquee/internal/logging"
	"marquee/internal/resolve"
	"marquee/internal/resolve/tmdb"
	"marquee/internal/title"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolvedPath
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.loggerOnce.Do(func() {
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// engine bundles everything one enrichment pass needs.
type engine struct {
	enricher *resolve.Enricher
	cache    *enrichcache.Cache
}

func (c *commandContext) buildEngine() (*engine, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
		tmdb.WithTimeout(time.Duration(cfg.TMDB.RequestTimeout)*time.Second))
	if err != nil {
		return nil, err
	}
	cache, err := enrichcache.Open(cfg.Paths.CacheFile, logger)
	if err != nil {
		return nil, err
	}

	profile := title.NewProfile(cfg.Market)
	scorer := resolve.NewScorer(cfg.Matching)
	resolver := resolve.NewResolver(client, scorer, profile, cfg.Matching, logger)
	limiter := rate.NewLimiter(rate.Every(time.Duration(cfg.Pipeline.TitleDelayMS)*time.Millisecond), 1)

	return &engine{
		enricher: resolve.NewEnricher(resolver, cache, profile, scorer, cfg.Matching, limiter, logger),
		cache:    cache,
	}, nil
}

func (c *commandContext) openCache() (*enrichcache.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return enrichcache.Open(cfg.Paths.CacheFile, logger)
}
