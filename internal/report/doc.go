// Package report renders a crawl run as a Markdown summary: overall
// totals, a per-brand breakdown, and pacing details worth reviewing
// before the next run.
package report
