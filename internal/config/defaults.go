package config

const (
	defaultDataDir        = "~/.local/share/marquee"
	defaultCacheFile      = "~/.local/share/marquee/tmdb_cache.json"
	defaultListingsDB     = "~/.local/share/marquee/listings.db"
	defaultLogDir         = "~/.local/share/marquee/logs"
	defaultTMDBBaseURL    = "https://api.themoviedb.org/3"
	defaultTMDBLanguage   = "en-GB"
	defaultTMDBTimeout    = 10
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultSourceWorkers  = 4
	defaultTitleDelayMS   = 300
	defaultSourceTimeout  = 120
	defaultAcceptScore    = 0.65
	defaultBroadcastScore = 0.70
	defaultCacheScore     = 0.70
	defaultYearGap        = 20
	defaultNearExactRatio = 0.9
	defaultRuntimeTol     = 30
	defaultLongRuntimeTol = 45
	defaultLongRuntimeMin = 180
	defaultMaxFinalists   = 3
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			CacheFile:  defaultCacheFile,
			ListingsDB: defaultListingsDB,
			LogDir:     defaultLogDir,
		},
		TMDB: TMDB{
			BaseURL:        defaultTMDBBaseURL,
			Language:       defaultTMDBLanguage,
			RequestTimeout: defaultTMDBTimeout,
		},
		Matching: Matching{
			AcceptThreshold:      defaultAcceptScore,
			BroadcastThreshold:   defaultBroadcastScore,
			CacheThreshold:       defaultCacheScore,
			YearForgivenessGap:   defaultYearGap,
			NearExactRatio:       defaultNearExactRatio,
			RuntimeTolerance:     defaultRuntimeTol,
			LongRuntimeTolerance: defaultLongRuntimeTol,
			LongRuntimeMinutes:   defaultLongRuntimeMin,
			MaxFinalists:         defaultMaxFinalists,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Pipeline: Pipeline{
			SourceWorkers: defaultSourceWorkers,
			TitleDelayMS:  defaultTitleDelayMS,
			SourceTimeout: defaultSourceTimeout,
		},
	}
}
