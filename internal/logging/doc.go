// Package logging constructs the toolkit's slog loggers and provides attr
// alias helpers so call sites stay terse. Text output is the default; JSON is
// available for machine consumption via the [logging] config section.
package logging
