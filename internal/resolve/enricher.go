package resolve

import (
	"context"
	"errors"
	"log/slog"

	"marquee/internal/config"
	"marquee/internal/enrichcache"
	"marquee/internal/listing"
	"marquee/internal/logging"
	"marquee/internal/title"
)

// Waiter paces external calls between titles. *rate.Limiter satisfies it;
// tests inject a no-op.
type Waiter interface {
	Wait(ctx context.Context) error
}

// Stats summarizes one enrichment pass.
type Stats struct {
	Titles          int
	CacheHits       int
	NewlyResolved   int
	Skipped         int
	Unmatched       int
	EnrichedRecords int
}

// Enricher groups listings by title, resolves each unique title once, and
// back-fills accepted films into the records in place. It owns all mutable
// state for a run; resolution is sequential per title.
type Enricher struct {
	resolver *Resolver
	cache    *enrichcache.Cache
	profile  *title.Profile
	scorer   *Scorer
	cfg      config.Matching
	limiter  Waiter
	logger   *slog.Logger
}

// NewEnricher wires an enricher. A nil limiter disables pacing.
func NewEnricher(resolver *Resolver, cache *enrichcache.Cache, profile *title.Profile, scorer *Scorer, cfg config.Matching, limiter Waiter, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Enricher{
		resolver: resolver,
		cache:    cache,
		profile:  profile,
		scorer:   scorer,
		cfg:      cfg,
		limiter:  limiter,
		logger:   logging.NewComponentLogger(logger, "enricher"),
	}
}

// titleGroup is one unique title with the representative declared values
// collected across its listings.
type titleGroup struct {
	raw     string
	key     string
	year    int
	runtime int
}

// Enrich resolves every unique title in the records and applies the results
// in place. The cache is flushed once at the end; a clean cache writes
// nothing. Per-title failures never abort the pass.
func (e *Enricher) Enrich(ctx context.Context, records []listing.Record) (Stats, error) {
	var stats Stats
	logger := logging.WithContext(ctx, e.logger)
	groups := e.groupTitles(records)
	stats.Titles = len(groups)

	films := make(map[string]*listing.Film, len(groups))

	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if skip, reason := e.profile.ShouldSkip(group.raw); skip {
			logger.Info("title skipped",
				logging.String(logging.FieldTitle, group.raw),
				logging.String(logging.FieldDecision, reason))
			e.cache.Evict(group.key)
			stats.Skipped++
			continue
		}

		if film, hit := e.cachedFilm(group, logger); hit {
			if film != nil {
				films[group.key] = film
				stats.CacheHits++
			} else {
				stats.Unmatched++
			}
			continue
		}

		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return stats, err
			}
		}

		film, err := e.resolver.Resolve(ctx, Request{
			RawTitle:        group.raw,
			DeclaredYear:    group.year,
			DeclaredRuntime: group.runtime,
		})
		switch {
		case err == nil:
			e.cache.Store(group.key, film, group.year, group.runtime)
			films[group.key] = film
			stats.NewlyResolved++
		case errors.Is(err, ErrFinalistsRejected):
			e.cache.MarkAbsent(group.key, group.year, group.runtime)
			stats.Unmatched++
		case errors.Is(err, ErrNoMatch):
			stats.Unmatched++
		default:
			logger.Warn("resolution failed",
				logging.String(logging.FieldTitle, group.raw),
				logging.Error(err))
			stats.Unmatched++
		}
	}

	for i := range records {
		if film, ok := films[e.cacheKey(records[i].Title)]; ok {
			records[i].Apply(film)
			stats.EnrichedRecords++
		}
	}

	if err := e.cache.Flush(); err != nil {
		logger.Warn("cache flush failed", logging.Error(err))
	}
	return stats, nil
}

// cachedFilm re-validates a cache entry against the current guard rules and
// the group's declared values. The second return is false when no usable
// entry exists (missing, evicted, or drifted) and a fresh resolution is
// needed. A (nil, true) return means a still-valid absent marker.
func (e *Enricher) cachedFilm(group titleGroup, logger *slog.Logger) (*listing.Film, bool) {
	entry, ok := e.cache.Lookup(group.key)
	if !ok {
		return nil, false
	}

	if entry.Absent {
		if entry.DeclaredYear == group.year && entry.DeclaredRuntime == group.runtime {
			return nil, true
		}
		e.cache.Evict(group.key)
		return nil, false
	}
	if entry.Film == nil {
		e.cache.Evict(group.key)
		return nil, false
	}

	tokens := e.profile.RequiredBrandTokens(group.raw)
	if !passesBrandGate(tokens, entry.Film.Title, entry.Film.OriginalTitle) {
		e.evictStale(logger, group, "brand gate")
		return nil, false
	}
	if !RuntimeWithinTolerance(e.cfg, group.runtime, entry.Film.Runtime) {
		e.evictStale(logger, group, "runtime drift")
		return nil, false
	}

	score := e.scorer.Score(QueryFacts{
		Query:           e.profile.Clean(group.raw),
		DeclaredYear:    group.year,
		DeclaredRuntime: group.runtime,
		StrictYear:      e.profile.HasBroadcastBrand(group.raw),
	}, CandidateFacts{
		Title:         entry.Film.Title,
		OriginalTitle: entry.Film.OriginalTitle,
		Year:          entry.Film.Year(),
		Runtime:       entry.Film.Runtime,
		VoteCount:     vettedVoteCount,
	})
	if score < e.cfg.CacheThreshold {
		e.evictStale(logger, group, "re-score below threshold")
		return nil, false
	}
	return entry.Film, true
}

// vettedVoteCount stands in for the unknown vote count of a cached film; a
// cached entry already passed acceptance once.
const vettedVoteCount = 1000

func (e *Enricher) evictStale(logger *slog.Logger, group titleGroup, reason string) {
	logger.Info("cache entry evicted",
		logging.String(logging.FieldTitle, group.raw),
		logging.String(logging.FieldDecision, reason))
	e.cache.Evict(group.key)
}

// CacheKey is the cache key for a raw listing title: the normalized cleaned
// form, so noise variants of the same film ("Amélie", "Drink & Dine: Amélie")
// share one cache entry. The cache CLI must build keys the same way.
func CacheKey(profile *title.Profile, raw string) string {
	key := title.Normalize(profile.Clean(raw))
	if key == "" {
		key = title.Normalize(raw)
	}
	return key
}

func (e *Enricher) cacheKey(raw string) string {
	return CacheKey(e.profile, raw)
}

// groupTitles collapses records to unique titles in first-seen order, taking
// the first non-zero declared year and runtime as representative.
func (e *Enricher) groupTitles(records []listing.Record) []titleGroup {
	var groups []titleGroup
	index := make(map[string]int)
	for _, record := range records {
		key := e.cacheKey(record.Title)
		if key == "" {
			continue
		}
		pos, ok := index[key]
		if !ok {
			index[key] = len(groups)
			groups = append(groups, titleGroup{raw: record.Title, key: key})
			pos = len(groups) - 1
		}
		if groups[pos].year == 0 {
			groups[pos].year = record.DeclaredYear()
		}
		if groups[pos].runtime == 0 {
			groups[pos].runtime = record.DeclaredRuntime()
		}
	}
	return groups
}
