// Package robots loads and evaluates the target site's robots.txt
// policy. The policy is fetched once per crawl through the same
// identity-aware transport the crawler uses, so the request carries
// the active user agent and proxy.
package robots
