// Package identity manages the request identity presented to the
// target site: the (proxy, user agent, accept-language) triple.
//
// The Provider hands out immutable Identity values in round-robin
// order over the configured proxy pool, tracks per-proxy failure
// counts, blacklists proxies after repeated failures, and recovers
// them when every proxy is exhausted so the crawl never stalls on
// proxy hygiene alone.
package identity
