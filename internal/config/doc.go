// Package config loads, normalizes, and validates qualfill configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// QUALFILL_DATA_DIR. The assume_quality setting accepts either a single quality
// string or a table of target/quality pairs; table declaration order is
// recovered from the document because it breaks ties when rules are ranked.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
