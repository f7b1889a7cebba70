// Package crawler coordinates one crawl over the fragrance catalog.
//
// # Architecture
//
// The package is built around the Spider type, which owns the control
// loop: pop a URL from the frontier, check the robots policy and the
// store's known set, wait out the politeness delay, fetch through the
// retry engine, and on success extract a record and harvest links.
//
// Exactly one fetch is outstanding at any moment. The spider blocks
// only inside the engine and the scheduler's sleeps, so cancellation
// through the context is prompt.
//
// # Components
//
//   - Spider: the sequential control loop
//   - Stats: per-run counters for the crawl report
//
// The frontier, retry engine, politeness scheduler, robots agent, and
// CSV store are injected, so a run over several brands can share the
// long-lived pieces (identity pool, save counter) while each sub-run
// gets its own frontier and store.
//
// # Usage
//
//	spider := crawler.NewSpider(engine, front, st, sched,
//	    crawler.WithPageBudget(200),
//	    crawler.WithBrandScope(scope),
//	)
//	stats, err := spider.Run(ctx, seeds)
package crawler
