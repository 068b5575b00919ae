package shared

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// TrackedFeed is one entry of the externally supplied feed list.
type TrackedFeed struct {
	URL  string   `json:"url"`
	Tags []string `json:"tags,omitempty"`
}

type trackedFeedsFile struct {
	Feeds []TrackedFeed `json:"feeds"`
}

// LoadTrackedFeeds reads the tracked-feed list from a JSON file and returns
// the entries pointing at the provider, preserving their order.
//
// Entries for other platforms share the same file with the RSS reader and
// are ignored here.
func LoadTrackedFeeds(path string) ([]TrackedFeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feeds file: %w", err)
	}

	var parsed trackedFeedsFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse feeds file: %w", err)
	}

	var feeds []TrackedFeed
	for _, feed := range parsed.Feeds {
		if strings.Contains(feed.URL, "youtube.com") {
			feeds = append(feeds, feed)
		}
	}
	return feeds, nil
}

// TrackingURLs extracts the URL sequence from a tracked-feed list.
func TrackingURLs(feeds []TrackedFeed) []string {
	urls := make([]string, 0, len(feeds))
	for _, feed := range feeds {
		urls = append(urls, feed.URL)
	}
	return urls
}
