package provider

import (
	"context"
)

// Provider defines the metadata extractor operations the sync engine
// depends on. Each call may fail independently; failures carry no structure
// beyond the wrapped error.
type Provider interface {
	// FetchFeed retrieves feed-level metadata for a canonical URL without
	// enumerating its items.
	FetchFeed(ctx context.Context, canonicalURL string) (*FeedMetadata, error)

	// FetchFeedItems retrieves the flat item list for a canonical URL.
	FetchFeedItems(ctx context.Context, canonicalURL string) ([]ItemMetadata, error)

	// FetchItemDetail retrieves the per-item fields not present in the flat
	// listing (description, publish timestamp).
	FetchItemDetail(ctx context.Context, itemURL string) (*ItemDetail, error)
}

// Thumbnail is one candidate image for a feed.
type Thumbnail struct {
	URL   string
	Width int
}

// FeedMetadata is the feed-level document returned by the extractor.
//
// ItemCount is the provider-reported total and only authoritative for
// playlists; it is 0 for channels. ModifiedDate is the playlist's reported
// modification marker, empty for channels.
type FeedMetadata struct {
	Title        string
	Description  string
	Thumbnails   []Thumbnail
	WebpageURL   string
	ItemCount    int
	ChannelName  string
	Language     string
	ModifiedDate string
}

// BestThumbnail returns the URL of the widest thumbnail candidate, or the
// empty string when none were provided.
func (m *FeedMetadata) BestThumbnail() string {
	var best Thumbnail
	for _, t := range m.Thumbnails {
		if t.Width >= best.Width && t.URL != "" {
			best = t
		}
	}
	return best.URL
}

// ItemMetadata is one entry of a flat item listing.
//
// ViewCount is nil when the provider omits it, which marks upcoming or
// unpublished entries that are not yet complete records.
type ItemMetadata struct {
	URL             string
	Title           string
	DurationSeconds int64
	ViewCount       *int64
	ChannelName     string
	ChannelURL      string
}

// Complete reports whether the entry carries the popularity fields required
// for ingestion.
func (m ItemMetadata) Complete() bool {
	return m.ViewCount != nil
}

// ItemDetail carries the deferred enrichment fields for a single item.
//
// PublishEpoch is seconds since the epoch as reported by the provider.
type ItemDetail struct {
	Description  string
	PublishEpoch int64
}
