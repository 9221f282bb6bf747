// Package resolve matches cinema listing titles to films on the metadata
// service. The Resolver drives one title through query variants, candidate
// scoring, the broadcast-brand gate, and runtime validation; the Enricher
// orchestrates a whole run, re-validating cached resolutions and
// back-filling accepted films into the listings.
package resolve
