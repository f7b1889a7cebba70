// Package frontier manages the set of discovered-but-not-yet-fetched
// URLs and the scope rules deciding which links are worth queueing.
//
// URLs are normalized (scheme forced, host canonicalized to the
// primary www form, fragment stripped) before any scope test or
// queue insertion, so the seen set holds exactly one form per page.
// Link candidates must resolve to the target domain and either match
// the detail page shape or one of a small whitelist of hub page
// shapes used purely for traversal; explicit deny prefixes and asset
// extensions are rejected outright.
package frontier
