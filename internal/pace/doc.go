// Package pace spreads requests out so the crawl looks and behaves
// like a patient human visitor.
//
// The Scheduler owns three cadences: a jittered per-request delay, an
// identity rotation trigger by attempted-request volume, and a long
// cooldown pause after a burst of successful saves. The save counter
// deliberately lives on the Scheduler rather than in any single crawl
// so that cooldown cadence stays global when one process runs several
// scoped crawls back to back.
package pace
