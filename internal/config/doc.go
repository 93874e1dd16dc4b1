// Package config loads, normalizes, and validates mediajobs configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, overlays .env files, and honours environment
// fallbacks such as MEDIAJOBS_WORKFLOW_ROOT. The Config type centralizes every
// knob the daemon and CLI need: the storage root that owns job history, the
// external tool paths, and the concurrency cap.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
