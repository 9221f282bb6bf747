// Package title turns raw cinema listing titles into search query variants.
// It holds the normalizer used for cache keys and similarity comparison, the
// cleaning rules that strip venue event noise, and the guard that decides
// which titles never reach the metadata service.
package title
