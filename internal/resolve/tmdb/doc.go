// Package tmdb provides the minimal TMDB API client used during listing
// enrichment.
//
// It authenticates requests and exposes movie search with an optional
// release-year filter, plus movie detail retrieval with credits appended so
// the resolver can extract the director. Responses are strongly typed so the
// scorer can rank them. Options allow tests to supply custom HTTP clients
// without modifying production code.
package tmdb
