// package export builds the startup snapshot document and renders pass
// reports for CLI output
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/desertthunder/ytsync/internal/models"
	"github.com/desertthunder/ytsync/internal/sync"
)

// SnapshotSource is the read-only query surface the exporter needs.
// Implemented by repositories.MaintenanceRepository.
type SnapshotSource interface {
	FeedSummaries() ([]models.FeedSummary, error)
	Stats() (*models.CatalogStats, error)
	TagNames() ([]string, error)
}

// Snapshot is the startup document consumed by the reader frontend: every
// feed with items, catalog-wide stats, and the distinct tag set.
type Snapshot struct {
	Feeds []models.FeedSummary `json:"feeds"`
	Stats models.CatalogStats  `json:"stats"`
	Tags  []string             `json:"tags"`
}

// BuildSnapshot assembles a snapshot from the committed store state.
func BuildSnapshot(source SnapshotSource) (*Snapshot, error) {
	feeds, err := source.FeedSummaries()
	if err != nil {
		return nil, fmt.Errorf("failed to collect feed summaries: %w", err)
	}

	stats, err := source.Stats()
	if err != nil {
		return nil, fmt.Errorf("failed to collect stats: %w", err)
	}

	tags, err := source.TagNames()
	if err != nil {
		return nil, fmt.Errorf("failed to collect tags: %w", err)
	}

	if feeds == nil {
		feeds = []models.FeedSummary{}
	}
	if tags == nil {
		tags = []string{}
	}

	return &Snapshot{Feeds: feeds, Stats: *stats, Tags: tags}, nil
}

// JSON serializes the snapshot, optionally indented.
func (s *Snapshot) JSON(pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(s, "", "  ")
	}
	return json.Marshal(s)
}

// WriteSnapshot writes the snapshot document to path.
func WriteSnapshot(s *Snapshot, path string) error {
	data, err := s.JSON(true)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return nil
}

// FormatSyncReport renders a reconciliation pass report as plain text.
func FormatSyncReport(report *sync.SyncReport) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Sync run %s\n", report.RunID))
	buf.WriteString(fmt.Sprintf("Feeds processed: %d (%d failed)\n", report.FeedsProcessed, len(report.Failures)))
	buf.WriteString(fmt.Sprintf("New items: %d\n\n", report.TotalInserted()))

	for i, result := range report.Results {
		refreshed := "unchanged"
		if result.Refreshed {
			refreshed = fmt.Sprintf("%d new", result.ItemsInserted)
		}
		buf.WriteString(fmt.Sprintf("%d. %s [%s] - %s\n", i+1, result.Title, result.Kind, refreshed))
	}

	if len(report.Failures) > 0 {
		buf.WriteString("\nFailures:\n")
		for _, failure := range report.Failures {
			buf.WriteString(fmt.Sprintf("- %s: %s\n", failure.TrackingURL, failure.Reason))
		}
	}

	return buf.Bytes()
}

// FormatBackfillReport renders an enrichment pass report as plain text.
func FormatBackfillReport(report *sync.BackfillReport) []byte {
	var buf bytes.Buffer

	if !report.Enabled {
		buf.WriteString("Backfill disabled, nothing fetched\n")
		return buf.Bytes()
	}

	buf.WriteString(fmt.Sprintf("Backfill run %s\n", report.RunID))
	buf.WriteString(fmt.Sprintf("Items enriched: %d (%d failed)\n", report.ItemsEnriched, len(report.Failures)))

	for _, failure := range report.Failures {
		buf.WriteString(fmt.Sprintf("- %s: %s\n", failure.URL, failure.Reason))
	}

	return buf.Bytes()
}
