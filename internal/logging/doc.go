// Package logging assembles structured slog loggers and formatting helpers used
// across vidblur.
//
// It owns the console and JSON handlers, fans records out to the terminal and
// the rotating log directory, and exposes context-aware helpers so render and
// mux code automatically tag log lines with the run ID and pipeline stage. A
// no-op logger is provided for tests and wiring code that cannot fail.
package logging
