package resolve_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"marquee/internal/config"
	"marquee/internal/resolve"
	"marquee/internal/resolve/tmdb"
	"marquee/internal/title"
)

// stubSearcher serves canned payloads keyed by query and records call counts
// so tests can assert which external calls were made.
type stubSearcher struct {
	responses   map[string]*tmdb.Response
	details     map[int64]*tmdb.Details
	failQueries map[string]error

	searchCalls int
	detailCalls int
	lastOptions tmdb.SearchOptions
}

func (s *stubSearcher) SearchMovie(_ context.Context, query string, opts tmdb.SearchOptions) (*tmdb.Response, error) {
	s.searchCalls++
	s.lastOptions = opts
	if err, ok := s.failQueries[query]; ok {
		return nil, err
	}
	if resp, ok := s.responses[query]; ok {
		return resp, nil
	}
	return &tmdb.Response{}, nil
}

func (s *stubSearcher) MovieDetails(_ context.Context, movieID int64) (*tmdb.Details, error) {
	s.detailCalls++
	if details, ok := s.details[movieID]; ok {
		return details, nil
	}
	return nil, fmt.Errorf("no details for id %d", movieID)
}

func newResolver(searcher tmdb.Searcher) *resolve.Resolver {
	cfg := config.Default().Matching
	return resolve.NewResolver(searcher, resolve.NewScorer(cfg), title.DefaultProfile(), cfg, nil)
}

func TestResolveBroadcastGateRejectsDrama(t *testing.T) {
	stub := &stubSearcher{
		responses: map[string]*tmdb.Response{
			"NT Live: A Streetcar Named Desire": {Results: []tmdb.Result{
				{ID: 300, Title: "Desire", ReleaseDate: "1936-04-11", VoteCount: 100},
				{ID: 301, Title: "National Theatre Live: A Streetcar Named Desire", ReleaseDate: "2014-09-16", VoteCount: 60},
			}},
			"A Streetcar Named Desire": {Results: []tmdb.Result{
				{ID: 702, Title: "A Streetcar Named Desire", ReleaseDate: "1951-09-19", VoteCount: 2500},
			}},
		},
		details: map[int64]*tmdb.Details{
			301: {ID: 301, Title: "National Theatre Live: A Streetcar Named Desire", ReleaseDate: "2014-09-16", Runtime: 180},
		},
	}

	film, err := newResolver(stub).Resolve(context.Background(), resolve.Request{RawTitle: "NT Live: A Streetcar Named Desire"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if film.TMDBID != 301 {
		t.Fatalf("resolved to %d (%s), want the broadcast recording", film.TMDBID, film.Title)
	}
}

func TestResolveYearFilterAndEarlyBreak(t *testing.T) {
	stub := &stubSearcher{
		responses: map[string]*tmdb.Response{
			"Amélie": {Results: []tmdb.Result{
				{ID: 194, Title: "Amélie", OriginalTitle: "Le Fabuleux Destin d'Amélie Poulain", ReleaseDate: "2001-04-25", VoteCount: 11000},
			}},
		},
		details: map[int64]*tmdb.Details{
			194: {
				ID: 194, Title: "Amélie", OriginalTitle: "Le Fabuleux Destin d'Amélie Poulain",
				ReleaseDate: "2001-04-25", Runtime: 122,
				Credits: tmdb.Credits{Crew: []tmdb.CrewMember{{Name: "Jean-Pierre Jeunet", Job: "Director"}}},
			},
		},
	}

	film, err := newResolver(stub).Resolve(context.Background(), resolve.Request{
		RawTitle:     "Drink & Dine: Amélie",
		DeclaredYear: 2001,
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if film.TMDBID != 194 || film.Director != "Jean-Pierre Jeunet" {
		t.Fatalf("unexpected film: %+v", film)
	}
	if stub.lastOptions.Year != 2001 {
		t.Fatalf("declared year not passed to search: %+v", stub.lastOptions)
	}
	if stub.searchCalls != 1 {
		t.Fatalf("searchCalls = %d, want 1 (near-certain match breaks the variant loop)", stub.searchCalls)
	}
}

func TestResolveBracketVariantsShareIdentifier(t *testing.T) {
	result := tmdb.Result{ID: 372058, Title: "Your Name.", OriginalTitle: "Kimi no Na wa.", ReleaseDate: "2016-08-26", VoteCount: 12000}
	details := &tmdb.Details{ID: 372058, Title: "Your Name.", OriginalTitle: "Kimi no Na wa.", ReleaseDate: "2016-08-26", Runtime: 106}

	for _, query := range []string{"Your Name", "Kimi no Na wa"} {
		stub := &stubSearcher{
			responses: map[string]*tmdb.Response{query: {Results: []tmdb.Result{result}}},
			details:   map[int64]*tmdb.Details{372058: details},
		}
		film, err := newResolver(stub).Resolve(context.Background(), resolve.Request{RawTitle: "Your Name [Kimi no Na wa.]"})
		if err != nil {
			t.Fatalf("Resolve via %q failed: %v", query, err)
		}
		if film.TMDBID != 372058 {
			t.Fatalf("Resolve via %q = %d, want 372058", query, film.TMDBID)
		}
	}
}

func TestResolveAliasPath(t *testing.T) {
	stub := &stubSearcher{
		responses: map[string]*tmdb.Response{
			"Hausu": {Results: []tmdb.Result{
				{ID: 500, Title: "House", ReleaseDate: "2008-10-23", VoteCount: 30},
			}},
			"House": {Results: []tmdb.Result{
				{ID: 26606, Title: "House", OriginalTitle: "ハウス", ReleaseDate: "1977-07-30", VoteCount: 400},
			}},
		},
		details: map[int64]*tmdb.Details{
			26606: {ID: 26606, Title: "House", OriginalTitle: "ハウス", ReleaseDate: "1977-07-30", Runtime: 88},
		},
	}

	film, err := newResolver(stub).Resolve(context.Background(), resolve.Request{RawTitle: "Hausu"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if film.TMDBID != 26606 {
		t.Fatalf("resolved to %d, want alias-path hit 26606", film.TMDBID)
	}
	if stub.lastOptions.Year != 1977 {
		t.Fatalf("alias year hint not passed to search: %+v", stub.lastOptions)
	}
}

func TestResolveSearchFailureDegradesToNextVariant(t *testing.T) {
	stub := &stubSearcher{
		failQueries: map[string]error{"Your Name": errors.New("gateway timeout")},
		responses: map[string]*tmdb.Response{
			"Kimi no Na wa": {Results: []tmdb.Result{
				{ID: 372058, Title: "Your Name.", OriginalTitle: "Kimi no Na wa.", ReleaseDate: "2016-08-26", VoteCount: 12000},
			}},
		},
		details: map[int64]*tmdb.Details{
			372058: {ID: 372058, Title: "Your Name.", OriginalTitle: "Kimi no Na wa.", Runtime: 106},
		},
	}

	film, err := newResolver(stub).Resolve(context.Background(), resolve.Request{RawTitle: "Your Name [Kimi no Na wa.]"})
	if err != nil {
		t.Fatalf("Resolve failed after variant error: %v", err)
	}
	if film.TMDBID != 372058 {
		t.Fatalf("resolved to %d, want 372058", film.TMDBID)
	}
}

func TestResolveRuntimeValidationTriesNextFinalist(t *testing.T) {
	stub := &stubSearcher{
		responses: map[string]*tmdb.Response{
			"Solaris": {Results: []tmdb.Result{
				{ID: 1, Title: "Solaris", ReleaseDate: "1972-03-20", VoteCount: 3000},
				{ID: 2, Title: "Solaris", ReleaseDate: "2002-11-27", VoteCount: 2000},
			}},
		},
		details: map[int64]*tmdb.Details{
			1: {ID: 1, Title: "Solaris", Runtime: 167},
			2: {ID: 2, Title: "Solaris", Runtime: 99},
		},
	}

	film, err := newResolver(stub).Resolve(context.Background(), resolve.Request{
		RawTitle:        "Solaris",
		DeclaredRuntime: 99,
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if film.TMDBID != 2 {
		t.Fatalf("resolved to %d, want the runtime-consistent remake", film.TMDBID)
	}
	if stub.detailCalls != 2 {
		t.Fatalf("detailCalls = %d, want 2 (first finalist rejected on runtime)", stub.detailCalls)
	}
}

func TestResolveNoCandidatesIsErrNoMatch(t *testing.T) {
	stub := &stubSearcher{}
	_, err := newResolver(stub).Resolve(context.Background(), resolve.Request{RawTitle: "Completely Unknown Film"})
	if !errors.Is(err, resolve.ErrNoMatch) {
		t.Fatalf("err = %v, want ErrNoMatch", err)
	}
}

func TestResolveDetailFetchFailureIsNotRejection(t *testing.T) {
	// details map left empty: every detail fetch errors.
	stub := &stubSearcher{
		responses: map[string]*tmdb.Response{
			"Stalker": {Results: []tmdb.Result{
				{ID: 1398, Title: "Stalker", ReleaseDate: "1979-05-25", VoteCount: 3000},
			}},
		},
	}

	_, err := newResolver(stub).Resolve(context.Background(), resolve.Request{RawTitle: "Stalker"})
	if !errors.Is(err, resolve.ErrNoMatch) {
		t.Fatalf("err = %v, want ErrNoMatch", err)
	}
	if errors.Is(err, resolve.ErrFinalistsRejected) {
		t.Fatalf("err = %v, a transient detail failure must not count as rejection", err)
	}
	if stub.detailCalls == 0 {
		t.Fatal("detail fetch was never attempted")
	}
}

func TestResolveAllFinalistsRejected(t *testing.T) {
	stub := &stubSearcher{
		responses: map[string]*tmdb.Response{
			"The Red Balloon": {Results: []tmdb.Result{
				{ID: 9, Title: "The Red Balloon", ReleaseDate: "1956-10-15", VoteCount: 900},
			}},
		},
		details: map[int64]*tmdb.Details{
			9: {ID: 9, Title: "The Red Balloon", Runtime: 34},
		},
	}

	_, err := newResolver(stub).Resolve(context.Background(), resolve.Request{
		RawTitle:        "The Red Balloon",
		DeclaredRuntime: 120,
	})
	if !errors.Is(err, resolve.ErrFinalistsRejected) {
		t.Fatalf("err = %v, want ErrFinalistsRejected", err)
	}
	if !errors.Is(err, resolve.ErrNoMatch) {
		t.Fatal("ErrFinalistsRejected must wrap ErrNoMatch")
	}
}
