// Command marquee collects cinema showtime listings from scraping
// collaborators and enriches them with film metadata from TMDB. It exposes
// run/enrich commands for the pipeline, cache inspection, run history, and
// configuration management.
package main
