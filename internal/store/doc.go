// Package store persists fragrance records to a CSV file with a
// fixed column schema and tracks which canonical URLs are already
// recorded.
//
// The file is the single source of truth for deduplication: known
// URLs are loaded when the store is opened, so a crawl resumed after
// a restart never re-fetches or re-persists a URL it already holds.
// Appends go straight to the file; bulk corrections rewrite the whole
// file through a temp-file-then-rename cycle that leaves the original
// untouched on failure.
package store
