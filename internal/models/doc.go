// Package models defines the plain data structures shared between the
// store, the reconciliation engine, and the exporters.
//
// A [Feed] is a tracked playlist or channel keyed by its tracking URL; an
// [Item] is one video belonging to a feed, unique by URL across the whole
// catalog. Items are created unenriched (PublishedAt zero, empty
// description) and filled in later by the backfill pass.
package models
