// Package config loads, normalizes, and validates Shoebox configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// pipeline and CLI need, from matcher constants through clustering thresholds
// to exiftool settings, so tuning happens in one file.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
