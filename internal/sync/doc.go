// Package sync implements the incremental reconciliation engine for the
// catalog.
//
// The core abstraction is [Engine], which runs one pass over all tracked
// feeds: resolve the tracking URL, fetch feed-level metadata, refresh the
// stored details, and — when the kind-specific threshold policy warrants it
// — pull the item list and insert the genuinely new items. [Backfiller]
// runs afterwards over the committed state and fills in per-item detail the
// flat listing cannot provide, bounded by a per-feed quota and a rate
// limiter. [Maintain] finishes the cycle with store upkeep.
//
// Per-feed and per-item failures are isolated: they are recorded in the
// pass report and never abort the run. Operations emit progress updates via
// channels for non-blocking status reporting to CLI/UI layers.
package sync
