package config

import "errors"

// Configuration validation errors, returned by Config.Validate.
// Package-level sentinels so callers can use errors.Is while the
// messages stay human-readable.
var (
	// ErrNoSeedSource is returned when neither seed URLs nor brands
	// were provided. The crawler has nowhere to start.
	ErrNoSeedSource = errors.New("no seed source: provide --start-url, --brand, or --brands-file")

	// ErrSeedsAndBrands is returned when explicit seed URLs are
	// combined with brand scopes. Seeds belong to exactly one scope,
	// so the combination is ambiguous.
	ErrSeedsAndBrands = errors.New("conflicting seed sources: --start-url cannot be combined with --brand or --brands-file")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBaseDelay is returned when the politeness delay is
	// negative. Use 0 for no delay floor.
	ErrInvalidBaseDelay = errors.New("invalid base delay: must be non-negative")

	// ErrInvalidSessionBreak is returned when the cooldown duration
	// is negative. Use 0 to disable cooldowns.
	ErrInvalidSessionBreak = errors.New("invalid session break: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is
	// negative. Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
