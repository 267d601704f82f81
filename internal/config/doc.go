// Package config loads, normalizes, and validates Refit configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CATALOG_DSN. The Config type centralizes every knob the pipeline and CLI
// need, so tracking/catalog locations and source settings are discovered in
// one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
