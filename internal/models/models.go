package models

import "fmt"

// Kind distinguishes the two tracked feed shapes.
type Kind string

const (
	KindPlaylist Kind = "playlist"
	KindChannel  Kind = "channel"
)

// ParseKind converts a stored kind value back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindPlaylist, KindChannel:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown feed kind %q", s)
	}
}

// Feed represents a tracked source in the catalog.
//
// TrackingURL is the externally supplied identifier and unique lookup key;
// CanonicalURL is the resolved provider-native address used for fetches.
// ID is assigned by the store on first sight and never changes.
type Feed struct {
	ID           int64
	Title        string
	TrackingURL  string
	CanonicalURL string
	Kind         Kind
}

// FeedDetails holds the descriptive fields refreshed on every pass.
type FeedDetails struct {
	Home        string
	Description string
	Language    string
	Image       string
	Author      string
}

// Item represents one video belonging to a feed.
//
// PublishedAt is epoch milliseconds and stays 0 until the backfill pass
// enriches the item.
type Item struct {
	ID          int64
	FeedID      int64
	PublishedAt int64
	Title       string
	URL         string
}

// Enriched reports whether the item already carries backfilled detail.
func (i Item) Enriched() bool {
	return i.PublishedAt > 0
}

// FeedSummary is one row of the startup snapshot's per-feed listing.
type FeedSummary struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	ItemCount int    `json:"nEntries"`
}

// CatalogStats aggregates catalog-wide counts for the startup snapshot.
type CatalogStats struct {
	FeedCount int   `json:"nFeeds"`
	ItemCount int   `json:"nItems"`
	StoreSize int64 `json:"dbSize"`
}
