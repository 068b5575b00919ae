package sync

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytsync/internal/models"
	"github.com/desertthunder/ytsync/internal/provider"
	"github.com/desertthunder/ytsync/internal/shared"
)

// DefaultChannelDepthThreshold stops deep refreshes of a channel once this
// many items are stored. Channel item totals are not reliably known in
// advance, so channels are only refreshed while still shallow. The value is
// a heuristic carried over from the original catalog job, not a provider
// guarantee.
const DefaultChannelDepthThreshold = 15

// FeedStore is the feed-side persistence contract the engine depends on.
// Implemented by repositories.FeedRepository; tests substitute an in-memory
// fake.
type FeedStore interface {
	GetByTrackingURL(trackingURL string) (*models.Feed, error)
	Create(feed *models.Feed, details models.FeedDetails) error
	UpdateDetails(feedID int64, title string, details models.FeedDetails) error
	CountItems(feedID int64) (int, error)
	TouchFetched(feedID int64, fetchedAt time.Time) error
	ReplaceTags(feedID int64, names []string) error
}

// ItemStore is the item-side persistence contract.
// Implemented by repositories.ItemRepository.
type ItemStore interface {
	Exists(url string) (bool, error)
	InsertPair(item *models.Item, description string) error
	SelectUnenriched(feedID int64, limit int) ([]models.Item, error)
	UpdateEnrichment(feedID, itemID int64, description string, publishedAt int64) error
}

// FeedResult records the outcome for one successfully processed feed.
type FeedResult struct {
	TrackingURL   string      // Externally supplied identifier
	Title         string      // Freshly fetched title
	Kind          models.Kind // playlist | channel
	ItemsInserted int         // Genuinely new items this pass
	Refreshed     bool        // Whether the item list was pulled
}

// FeedFailure records a feed skipped during the pass and why.
type FeedFailure struct {
	TrackingURL string
	Reason      string
}

// SyncReport aggregates one reconciliation pass.
type SyncReport struct {
	RunID          string
	StartedAt      time.Time
	Duration       time.Duration
	FeedsProcessed int
	Results        []FeedResult
	Failures       []FeedFailure
}

// TotalInserted sums the new items across all feeds of the pass.
func (r *SyncReport) TotalInserted() int {
	total := 0
	for _, res := range r.Results {
		total += res.ItemsInserted
	}
	return total
}

// EngineOpts contains configuration options for creating an [Engine].
type EngineOpts struct {
	Provider provider.Provider
	Feeds    FeedStore
	Items    ItemStore
	Logger   *log.Logger
	// ChannelDepthThreshold overrides [DefaultChannelDepthThreshold] when > 0.
	ChannelDepthThreshold int
}

// Engine orchestrates one reconciliation pass over all tracked feeds.
type Engine struct {
	provider  provider.Provider
	feeds     FeedStore
	items     ItemStore
	logger    *log.Logger
	threshold int
}

// NewEngine creates an Engine with the provided dependencies.
func NewEngine(opts EngineOpts) *Engine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.ChannelDepthThreshold <= 0 {
		opts.ChannelDepthThreshold = DefaultChannelDepthThreshold
	}
	return &Engine{
		provider:  opts.Provider,
		feeds:     opts.Feeds,
		items:     opts.Items,
		logger:    opts.Logger,
		threshold: opts.ChannelDepthThreshold,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// SyncAll runs one reconciliation pass over the tracked feeds, in order.
// Failure of one feed never aborts the others; every skipped feed is
// recorded in the report with its reason. The pass is idempotent: re-running
// it against unchanged remote data inserts nothing.
func (e *Engine) SyncAll(ctx context.Context, trackingURLs []string, progress chan<- ProgressUpdate) (*SyncReport, error) {
	report := &SyncReport{
		RunID:     shared.GenerateID(),
		StartedAt: time.Now(),
	}

	total := len(trackingURLs)
	for i, trackingURL := range trackingURLs {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(report.StartedAt)
			return report, fmt.Errorf("pass interrupted: %w", err)
		}

		result, err := e.syncFeed(ctx, trackingURL, i+1, total, progress)
		report.FeedsProcessed++
		if err != nil {
			e.logger.Warn("feed skipped", "url", trackingURL, "reason", err)
			report.Failures = append(report.Failures, FeedFailure{TrackingURL: trackingURL, Reason: err.Error()})
			continue
		}
		report.Results = append(report.Results, *result)
	}

	report.Duration = time.Since(report.StartedAt)
	return report, nil
}

// syncFeed reconciles a single tracked feed.
func (e *Engine) syncFeed(ctx context.Context, trackingURL string, step, total int, progress chan<- ProgressUpdate) (*FeedResult, error) {
	sendProgress(progress, resolveFeedUpdate(step, total, trackingURL))

	canonicalURL, kind, err := Resolve(trackingURL)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, fetchMetadataUpdate(step, total, canonicalURL))

	// A fetch failure skips the feed for the rest of the pass. It is not
	// "zero items" and must not wipe the stored details.
	meta, err := e.provider.FetchFeed(ctx, canonicalURL)
	if err != nil {
		return nil, err
	}

	details := models.FeedDetails{
		Home:        meta.WebpageURL,
		Description: meta.Description,
		Language:    meta.Language,
		Image:       meta.BestThumbnail(),
		Author:      meta.ChannelName,
	}

	feed, err := e.feeds.GetByTrackingURL(trackingURL)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		feed = &models.Feed{
			Title:        meta.Title,
			TrackingURL:  trackingURL,
			CanonicalURL: canonicalURL,
			Kind:         kind,
		}
		if err := e.feeds.Create(feed, details); err != nil {
			return nil, err
		}
		e.logger.Info("feed created", "url", trackingURL, "kind", kind, "id", feed.ID)
	case err != nil:
		return nil, err
	default:
		if err := e.feeds.UpdateDetails(feed.ID, meta.Title, details); err != nil {
			return nil, err
		}
	}

	if err := e.feeds.TouchFetched(feed.ID, time.Now()); err != nil {
		return nil, err
	}

	result := &FeedResult{
		TrackingURL: trackingURL,
		Title:       meta.Title,
		Kind:        kind,
	}

	stored, err := e.feeds.CountItems(feed.ID)
	if err != nil {
		return nil, err
	}

	if e.shouldRefresh(kind, meta.ItemCount, stored) {
		sendProgress(progress, fetchItemsUpdate(step, total, meta.Title))

		inserted, err := e.refreshItems(ctx, feed)
		if err != nil {
			return nil, err
		}
		result.ItemsInserted = inserted
		result.Refreshed = true

		sendProgress(progress, insertItemsUpdate(step, total, inserted, meta.Title))
	}

	if err := e.feeds.ReplaceTags(feed.ID, []string{"video", string(kind)}); err != nil {
		return nil, err
	}

	return result, nil
}

// shouldRefresh applies the kind-specific threshold policy. The provider
// reports an authoritative total for playlists but not for channels, hence
// the asymmetry.
func (e *Engine) shouldRefresh(kind models.Kind, reportedCount, storedCount int) bool {
	if kind == models.KindChannel {
		return storedCount <= e.threshold
	}
	return reportedCount > storedCount
}

// refreshItems pulls the feed's item list and inserts the genuinely new
// entries, unenriched. Returns the number of inserted items.
func (e *Engine) refreshItems(ctx context.Context, feed *models.Feed) (int, error) {
	entries, err := e.provider.FetchFeedItems(ctx, feed.CanonicalURL)
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, entry := range entries {
		// Entries without popularity fields are upcoming/unpublished and not
		// yet complete records; entries off the provider domain are decoys.
		if !entry.Complete() || !providerDomain(entry.URL) {
			continue
		}

		exists, err := e.items.Exists(entry.URL)
		if err != nil {
			return inserted, err
		}
		if exists {
			continue
		}

		item := &models.Item{
			FeedID:      feed.ID,
			PublishedAt: 0,
			Title:       entry.Title,
			URL:         entry.URL,
		}
		if err := e.items.InsertPair(item, ""); err != nil {
			return inserted, err
		}
		inserted++
	}

	return inserted, nil
}

// providerDomain reports whether the item address belongs to the expected
// provider domain.
func providerDomain(itemURL string) bool {
	parsed, err := url.Parse(itemURL)
	if err != nil {
		return false
	}
	host := parsed.Hostname()
	return host == "youtube.com" || strings.HasSuffix(host, ".youtube.com")
}
