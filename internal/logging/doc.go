// Package logging builds the process-wide slog logger and provides the
// standardized attribute helpers and field names used across marquee.
// Console output is a compact key=value format; JSON output is suitable for
// log shipping.
package logging
