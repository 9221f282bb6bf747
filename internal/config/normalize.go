package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTMDB()
	c.normalizeMatching()
	c.normalizeMarket()
	c.normalizeLogging()
	c.normalizePipeline()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheFile) == "" {
		c.Paths.CacheFile = defaultCacheFile
	}
	if c.Paths.CacheFile, err = expandPath(c.Paths.CacheFile); err != nil {
		return fmt.Errorf("paths.cache_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.ListingsDB) == "" {
		c.Paths.ListingsDB = defaultListingsDB
	}
	if c.Paths.ListingsDB, err = expandPath(c.Paths.ListingsDB); err != nil {
		return fmt.Errorf("paths.listings_db: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTMDB() {
	if env := strings.TrimSpace(os.Getenv("TMDB_API_KEY")); env != "" {
		c.TMDB.APIKey = env
	}
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
	if c.TMDB.RequestTimeout <= 0 {
		c.TMDB.RequestTimeout = defaultTMDBTimeout
	}
}

func (c *Config) normalizeMatching() {
	m := &c.Matching
	if m.AcceptThreshold == 0 {
		m.AcceptThreshold = defaultAcceptScore
	}
	if m.BroadcastThreshold == 0 {
		m.BroadcastThreshold = defaultBroadcastScore
	}
	if m.CacheThreshold == 0 {
		m.CacheThreshold = defaultCacheScore
	}
	if m.YearForgivenessGap <= 0 {
		m.YearForgivenessGap = defaultYearGap
	}
	if m.NearExactRatio == 0 {
		m.NearExactRatio = defaultNearExactRatio
	}
	if m.RuntimeTolerance <= 0 {
		m.RuntimeTolerance = defaultRuntimeTol
	}
	if m.LongRuntimeTolerance <= 0 {
		m.LongRuntimeTolerance = defaultLongRuntimeTol
	}
	if m.LongRuntimeMinutes <= 0 {
		m.LongRuntimeMinutes = defaultLongRuntimeMin
	}
	if m.MaxFinalists <= 0 {
		m.MaxFinalists = defaultMaxFinalists
	}
}

func (c *Config) normalizeMarket() {
	c.Market.NonFilmKeywords = trimAll(c.Market.NonFilmKeywords)
	c.Market.ProgrammeKeywords = trimAll(c.Market.ProgrammeKeywords)
	c.Market.FestivalKeywords = trimAll(c.Market.FestivalKeywords)
	if len(c.Market.Aliases) > 0 {
		aliases := make(map[string]string, len(c.Market.Aliases))
		for from, to := range c.Market.Aliases {
			from = strings.ToLower(strings.TrimSpace(from))
			to = strings.TrimSpace(to)
			if from == "" || to == "" {
				continue
			}
			aliases[from] = to
		}
		c.Market.Aliases = aliases
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.SourceWorkers <= 0 {
		c.Pipeline.SourceWorkers = defaultSourceWorkers
	}
	if c.Pipeline.TitleDelayMS < 0 {
		c.Pipeline.TitleDelayMS = defaultTitleDelayMS
	}
	if c.Pipeline.SourceTimeout <= 0 {
		c.Pipeline.SourceTimeout = defaultSourceTimeout
	}
}

func trimAll(values []string) []string {
	out := values[:0]
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
