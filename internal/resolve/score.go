package resolve

import (
	"strings"
	"time"
	"unicode"

	"github.com/hbollon/go-edlib"

	"marquee/internal/config"
	"marquee/internal/title"
)

// QueryFacts is what the listing side contributes to one scoring call.
type QueryFacts struct {
	Query           string
	DeclaredYear    int
	DeclaredRuntime int
	StrictYear      bool
}

// CandidateFacts is what the candidate side contributes. Runtime is zero for
// search results (only detail payloads and cached entries carry it).
type CandidateFacts struct {
	Title         string
	OriginalTitle string
	Year          int
	Runtime       int
	VoteCount     int64
}

// scoreSubject precomputes the text comparisons every rule shares.
type scoreSubject struct {
	query     QueryFacts
	candidate CandidateFacts

	queryNorm     string
	titleNorm     string
	originalNorm  string
	titleRatio    float64
	originalRatio float64
	bestRatio     float64
	bestTokens    []string
	screeningYear bool
}

type rule struct {
	name string
	fn   func(*scoreSubject) float64
}

// Scorer ranks candidates against a query using an ordered list of
// independent rules whose contributions are summed and clamped to [0,1].
type Scorer struct {
	cfg   config.Matching
	now   func() time.Time
	rules []rule
}

// NewScorer builds a scorer with the configured thresholds.
func NewScorer(cfg config.Matching) *Scorer {
	s := &Scorer{cfg: cfg, now: time.Now}
	s.rules = []rule{
		{"title-similarity", titleSimilarity},
		{"token-overlap", tokenOverlap},
		{"foreign-original", foreignOriginal},
		{"year", s.yearRule},
		{"runtime", runtimeRule},
		{"vote-count", voteCount},
		{"short-query", shortQuery},
	}
	return s
}

// Score computes the match score for one query/candidate pair.
func (s *Scorer) Score(query QueryFacts, candidate CandidateFacts) float64 {
	subject := newScoreSubject(query, candidate, s.now())
	if subject == nil {
		return 0
	}
	total := 0.0
	for _, r := range s.rules {
		total += r.fn(subject)
	}
	if total < 0 {
		return 0
	}
	if total > 1 {
		return 1
	}
	return total
}

func newScoreSubject(query QueryFacts, candidate CandidateFacts, now time.Time) *scoreSubject {
	queryNorm := title.Normalize(query.Query)
	if queryNorm == "" {
		return nil
	}
	subject := &scoreSubject{
		query:         query,
		candidate:     candidate,
		queryNorm:     queryNorm,
		titleNorm:     title.Normalize(candidate.Title),
		originalNorm:  title.Normalize(candidate.OriginalTitle),
		screeningYear: query.DeclaredYear >= now.Year(),
	}
	if subject.titleNorm == "" && subject.originalNorm == "" {
		return nil
	}
	if subject.titleNorm != "" {
		subject.titleRatio = similarityRatio(queryNorm, subject.titleNorm)
	}
	if subject.originalNorm != "" && subject.originalNorm != subject.titleNorm {
		subject.originalRatio = similarityRatio(queryNorm, subject.originalNorm)
	}
	subject.bestRatio = subject.titleRatio
	subject.bestTokens = strings.Fields(subject.titleNorm)
	if subject.originalRatio > subject.bestRatio || subject.titleNorm == "" {
		subject.bestRatio = subject.originalRatio
		subject.bestTokens = strings.Fields(subject.originalNorm)
	}
	return subject
}

// similarityRatio is a longest-common-subsequence ratio over runes, in [0,1].
func similarityRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	lcs := edlib.LCS(a, b)
	total := len([]rune(a)) + len([]rune(b))
	if total == 0 {
		return 0
	}
	return 2 * float64(lcs) / float64(total)
}

func titleSimilarity(s *scoreSubject) float64 {
	return 0.7 * s.bestRatio
}

func tokenOverlap(s *scoreSubject) float64 {
	queryTokens := strings.Fields(s.queryNorm)
	if len(queryTokens) == 0 || len(s.bestTokens) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(queryTokens))
	for _, token := range queryTokens {
		set[token] = struct{}{}
	}
	union := len(set)
	intersection := 0
	seen := make(map[string]struct{}, len(s.bestTokens))
	for _, token := range s.bestTokens {
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		if _, ok := set[token]; ok {
			intersection++
		} else {
			union++
		}
	}
	return 0.3 * float64(intersection) / float64(union)
}

// foreignOriginal rewards matches against the original-language title, the
// usual case when a foreign film is listed under its native name.
func foreignOriginal(s *scoreSubject) float64 {
	bonus := 0.0
	if s.originalRatio > s.titleRatio+0.1 {
		bonus += 0.1
	}
	if hasNonLatin(s.candidate.OriginalTitle) && (s.originalRatio > 0.7 || s.titleRatio > 0.85) {
		bonus += 0.05
	}
	return bonus
}

func hasNonLatin(text string) bool {
	for _, r := range text {
		if r > unicode.MaxASCII && !unicode.In(r, unicode.Latin) {
			return true
		}
	}
	return false
}

// yearRule boosts exact and near release-year matches and penalizes large
// gaps, unless the declared year looks like a screening year (the scraper
// reported when the film shows, not when it was released) and the title
// match is near-exact. Strict-year titles never get that forgiveness.
func (s *Scorer) yearRule(subject *scoreSubject) float64 {
	declared := subject.query.DeclaredYear
	candidateYear := subject.candidate.Year
	if declared == 0 || candidateYear == 0 {
		return 0
	}
	diff := declared - candidateYear
	if diff < 0 {
		diff = -diff
	}
	forgiven := subject.screeningYear &&
		subject.bestRatio > s.cfg.NearExactRatio &&
		!subject.query.StrictYear
	switch {
	case diff == 0:
		return 0.15
	case diff == 1:
		return 0.05
	case diff > s.cfg.YearForgivenessGap:
		if forgiven {
			return 0
		}
		return -0.3
	default:
		if forgiven {
			return 0
		}
		return -0.1
	}
}

// runtimeRule separates shorts from features sharing a title. Only cached
// entries and detail payloads carry a candidate runtime.
func runtimeRule(s *scoreSubject) float64 {
	declared := s.query.DeclaredRuntime
	candidate := s.candidate.Runtime
	if declared <= 0 || candidate <= 0 {
		return 0
	}
	diff := declared - candidate
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= 15:
		return 0.1
	case diff > 40:
		return -0.25
	default:
		return 0
	}
}

func voteCount(s *scoreSubject) float64 {
	switch {
	case s.candidate.VoteCount > 5000:
		return 0.05
	case s.candidate.VoteCount < 5:
		return -0.05
	default:
		return 0
	}
}

// shortQuery penalizes one-word queries, which collide across films
// constantly, unless the candidate is both popular and a near-perfect match.
func shortQuery(s *scoreSubject) float64 {
	if len(strings.Fields(s.queryNorm)) > 1 {
		return 0
	}
	penalty := 0.0
	switch {
	case s.candidate.VoteCount < 50:
		penalty -= 0.25
	case s.candidate.VoteCount < 200:
		penalty -= 0.1
	}
	if s.bestRatio < 0.95 {
		penalty -= 0.1
	}
	return penalty
}
