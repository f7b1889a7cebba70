// Package fetch retrieves pages from the target site and absorbs its
// failure modes.
//
// A Transport performs one HTTP GET under a given identity and
// reports the status, decoded body, and final post-redirect URL. The
// Engine wraps a Transport with a retry/backoff state machine: each
// attempt's outcome is classified into a tagged Outcome (success,
// rate limited, server error, transport error, or terminal skip) and
// dispatched to the matching policy - identity rotation plus linear
// backoff for transport failures, rotation plus exponential backoff
// for rate-limit signals, Retry-After-aware jittered backoff for
// server errors. Proxy health feedback flows to the identity
// Provider on every attempt.
package fetch
