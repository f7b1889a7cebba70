// Package main provides the entry point for the scentcrawl CLI.
//
// scentcrawl is a resilient single-site crawler for the Fragrantica
// fragrance catalog. It collects per-fragrance records (brand, name,
// community rating, vote count, audience, category) into CSV files,
// pacing itself to survive the site's aggressive rate limiting.
//
// Usage:
//
//	scentcrawl crawl --brand "Chanel"
//	scentcrawl crawl --brands-file brands.txt
//	scentcrawl enrich --csv Chanel.csv
//	scentcrawl export --out catalog.xlsx
//
// See --help for all available options.
package main

// main is the entry point for scentcrawl.
func main() {
	Execute()
}
