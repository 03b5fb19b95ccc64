// Package logging assembles structured slog loggers and formatting helpers used
// across qualfill.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code can automatically
// tag log lines with queue item IDs, stages, and run correlation IDs. Stage
// loggers honour per-stage level overrides from configuration, which is how
// the assume_quality slot decisions are surfaced at debug level without
// turning on debug output everywhere. A no-op logger is provided for tests and
// wiring code that cannot fail.
package logging
