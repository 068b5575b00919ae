// Package repositories implements SQLite persistence for the catalog.
//
// Each repository wraps a shared *sql.DB handle passed in explicitly; there
// is no ambient connection state. Multi-row mutations that must be atomic
// (the feed creation triple, the item/content pair, the enrichment write)
// run inside their own transactions, so an interrupted pass never leaves a
// half-written record and a re-run is safe.
//
// Key Implementations:
//   - [FeedRepository] : feed rows plus their details and sync metadata
//   - [ItemRepository] : item/content pairs, uniqueness checks, enrichment
//   - [MaintenanceRepository] : FTS optimize, VACUUM, snapshot queries
package repositories
