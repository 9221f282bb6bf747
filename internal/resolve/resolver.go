package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"marquee/internal/config"
	"marquee/internal/listing"
	"marquee/internal/logging"
	"marquee/internal/resolve/tmdb"
	"marquee/internal/title"
)

// ErrNoMatch reports that no candidate cleared the acceptance threshold.
// It is a per-title outcome, never fatal.
var ErrNoMatch = errors.New("no confident match")

// ErrFinalistsRejected reports that candidates cleared the threshold but
// every checked finalist was explicitly rejected by detail validation
// (runtime mismatch or brand gate). The distinction matters to the cache: a
// rejected title is marked absent, while no-candidate outcomes and transient
// detail-fetch failures surface as plain ErrNoMatch so the title is retried
// next run.
var ErrFinalistsRejected = fmt.Errorf("%w: all finalists rejected", ErrNoMatch)

// nearCertainScore stops the variant loop early: once a candidate scores this
// high, further searches cannot displace it meaningfully.
const nearCertainScore = 0.92

// searchResultDepth bounds how many results of one search are considered.
const searchResultDepth = 5

// Request is one title to resolve, with whatever the scraper declared.
type Request struct {
	RawTitle        string
	DeclaredYear    int
	DeclaredRuntime int
}

// Resolver drives one title through query generation, candidate search,
// scoring, the broadcast gate, and detail validation.
type Resolver struct {
	searcher tmdb.Searcher
	scorer   *Scorer
	profile  *title.Profile
	cfg      config.Matching
	logger   *slog.Logger
}

// NewResolver wires a resolver from its collaborators.
func NewResolver(searcher tmdb.Searcher, scorer *Scorer, profile *title.Profile, cfg config.Matching, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{
		searcher: searcher,
		scorer:   scorer,
		profile:  profile,
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "resolver"),
	}
}

type scoredCandidate struct {
	result tmdb.Result
	score  float64
	query  string
}

// Resolve returns the accepted film for a raw listing title, or ErrNoMatch.
// Network failures on individual variants contribute zero candidates and are
// never fatal; the guard must be consulted by the caller before Resolve so
// that skipped titles issue no external calls.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*listing.Film, error) {
	variants := r.profile.Queries(req.RawTitle)
	if len(variants) == 0 {
		return nil, ErrNoMatch
	}

	strict := r.profile.HasBroadcastBrand(req.RawTitle)
	requiredTokens := r.profile.RequiredBrandTokens(req.RawTitle)

	var pool []scoredCandidate
	seen := make(map[int64]struct{})
	bestScore := 0.0

	for _, variant := range variants {
		year := req.DeclaredYear
		if year == 0 {
			year = variant.Year
		}
		resp, err := r.searcher.SearchMovie(ctx, variant.Query, tmdb.SearchOptions{Year: year})
		if err != nil {
			r.logger.Warn("search failed, variant skipped",
				logging.String(logging.FieldTitle, req.RawTitle),
				logging.String("query", variant.Query),
				logging.Error(err))
			continue
		}
		results := resp.Results
		if len(results) > searchResultDepth {
			results = results[:searchResultDepth]
		}
		for _, result := range results {
			if result.ID <= 0 {
				continue
			}
			if _, dup := seen[result.ID]; dup {
				continue
			}
			seen[result.ID] = struct{}{}
			if !passesBrandGate(requiredTokens, result.Title, result.OriginalTitle) {
				continue
			}
			score := r.scorer.Score(QueryFacts{
				Query:           variant.Query,
				DeclaredYear:    year,
				DeclaredRuntime: req.DeclaredRuntime,
				StrictYear:      strict,
			}, CandidateFacts{
				Title:         result.Title,
				OriginalTitle: result.OriginalTitle,
				Year:          result.Year(),
				VoteCount:     result.VoteCount,
			})
			pool = append(pool, scoredCandidate{result: result, score: score, query: variant.Query})
			if score > bestScore {
				bestScore = score
			}
		}
		if bestScore >= nearCertainScore {
			break
		}
	}

	threshold := r.cfg.AcceptThreshold
	if strict {
		threshold = r.cfg.BroadcastThreshold
	}

	sort.SliceStable(pool, func(i, j int) bool { return pool[i].score > pool[j].score })

	var finalists []scoredCandidate
	for _, candidate := range pool {
		if candidate.score >= threshold {
			finalists = append(finalists, candidate)
		}
	}
	if len(finalists) == 0 {
		return nil, ErrNoMatch
	}

	checkLimit := 1
	if req.DeclaredRuntime > 0 {
		checkLimit = r.cfg.MaxFinalists
	}
	if checkLimit > len(finalists) {
		checkLimit = len(finalists)
	}

	rejected := false
	for _, finalist := range finalists[:checkLimit] {
		details, err := r.searcher.MovieDetails(ctx, finalist.result.ID)
		if err != nil {
			// Transient failure, not a verdict on the candidate. Leaving
			// rejected unset keeps the title out of the absent cache so the
			// next run retries.
			r.logger.Warn("detail fetch failed, finalist skipped",
				logging.String(logging.FieldTitle, req.RawTitle),
				logging.Int64("tmdb_id", finalist.result.ID),
				logging.Error(err))
			continue
		}
		if !RuntimeWithinTolerance(r.cfg, req.DeclaredRuntime, details.Runtime) {
			rejected = true
			r.logger.Info("finalist rejected",
				logging.String(logging.FieldTitle, req.RawTitle),
				logging.String(logging.FieldDecision, "runtime mismatch"),
				logging.String("candidate", details.Title),
				logging.Int("declared_runtime", req.DeclaredRuntime),
				logging.Int("tmdb_runtime", details.Runtime))
			continue
		}
		if !passesBrandGate(requiredTokens, details.Title, details.OriginalTitle) {
			rejected = true
			r.logger.Info("finalist rejected",
				logging.String(logging.FieldTitle, req.RawTitle),
				logging.String(logging.FieldDecision, "brand gate"),
				logging.String("candidate", details.Title))
			continue
		}
		film := filmFromDetails(details)
		r.logger.Info("title resolved",
			logging.String(logging.FieldTitle, req.RawTitle),
			logging.String("query", finalist.query),
			logging.Int64("tmdb_id", film.TMDBID),
			logging.Float64("score", finalist.score))
		return film, nil
	}

	if rejected {
		return nil, ErrFinalistsRejected
	}
	return nil, ErrNoMatch
}

// RuntimeWithinTolerance checks a declared listing runtime against the
// service's runtime. Long films get a wider tolerance because cinema
// listings fold intermissions into the advertised length.
func RuntimeWithinTolerance(cfg config.Matching, declared, actual int) bool {
	if declared <= 0 || actual <= 0 {
		return true
	}
	diff := declared - actual
	if diff < 0 {
		diff = -diff
	}
	tolerance := cfg.RuntimeTolerance
	if declared > cfg.LongRuntimeMinutes {
		tolerance = cfg.LongRuntimeTolerance
	}
	return diff <= tolerance
}

// passesBrandGate requires at least one brand token in the candidate's
// display or original title. Empty tokens means no gate.
func passesBrandGate(tokens []string, displayTitle, originalTitle string) bool {
	if len(tokens) == 0 {
		return true
	}
	haystack := title.Normalize(displayTitle) + " " + title.Normalize(originalTitle)
	for _, token := range tokens {
		if strings.Contains(haystack, token) {
			return true
		}
	}
	return false
}

// filmFromDetails projects the accepted detail payload, preferring a
// Latin-script display title over a non-Latin one when both exist.
func filmFromDetails(details *tmdb.Details) *listing.Film {
	displayTitle := details.Title
	if displayTitle == "" || (hasNonLatin(displayTitle) && details.OriginalTitle != "" && !hasNonLatin(details.OriginalTitle)) {
		displayTitle = details.OriginalTitle
	}
	return &listing.Film{
		TMDBID:        details.ID,
		Title:         displayTitle,
		OriginalTitle: details.OriginalTitle,
		ReleaseDate:   details.ReleaseDate,
		Director:      details.Director(),
		Runtime:       details.Runtime,
		Genres:        details.GenreNames(),
		PosterPath:    details.PosterPath,
		BackdropPath:  details.BackdropPath,
		Overview:      details.Overview,
		VoteAverage:   details.VoteAverage,
	}
}
