// Package config provides configuration structures and utilities for
// scentcrawl: crawl pacing, identity pools, seed sources, and output
// locations, populated from CLI flags and optional list files.
package config
