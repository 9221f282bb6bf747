// Package listing defines the showtime record and enriched film types shared
// across the pipeline, plus JSON exchange helpers and the SQLite run-history
// store.
package listing
