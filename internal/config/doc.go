// Package config loads, normalizes, and validates the marquee TOML
// configuration. Defaults live in defaults.go; path expansion and env
// overrides happen in normalize.go.
package config
