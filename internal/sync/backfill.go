package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytsync/internal/provider"
	"github.com/desertthunder/ytsync/internal/shared"
	"golang.org/x/time/rate"
)

// EmptyDescription replaces an empty provider description so the
// unenriched-item predicate never reselects the item.
const EmptyDescription = "(no description)"

// ItemFailure records one item whose detail fetch failed.
type ItemFailure struct {
	URL    string
	Reason string
}

// BackfillReport aggregates one enrichment pass.
type BackfillReport struct {
	RunID         string
	Enabled       bool
	StartedAt     time.Time
	Duration      time.Duration
	ItemsEnriched int
	Failures      []ItemFailure
}

// BackfillerOpts contains configuration options for creating a [Backfiller].
type BackfillerOpts struct {
	Provider provider.Provider
	Feeds    FeedStore
	Items    ItemStore
	Logger   *log.Logger
	// RateLimit is the maximum detail fetches per second (default 2).
	RateLimit float64
}

// Backfiller fills in the per-item detail the flat listing cannot provide.
type Backfiller struct {
	provider provider.Provider
	feeds    FeedStore
	items    ItemStore
	logger   *log.Logger
	limiter  *rate.Limiter
}

// NewBackfiller creates a Backfiller with the provided dependencies.
func NewBackfiller(opts BackfillerOpts) *Backfiller {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}
	return &Backfiller{
		provider: opts.Provider,
		feeds:    opts.Feeds,
		items:    opts.Items,
		logger:   opts.Logger,
		limiter:  rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
	}
}

// Backfill enriches up to quotaPerFeed unenriched items per tracked feed
// with description and publish timestamp. When enabled is false (the
// running environment lacks provider credentials) the pass is a no-op and
// the report says so. Per-item failures are recorded and never abort the
// feed's backfill; the update is idempotent.
func (b *Backfiller) Backfill(ctx context.Context, trackingURLs []string, quotaPerFeed int, enabled bool, progress chan<- ProgressUpdate) (*BackfillReport, error) {
	report := &BackfillReport{
		RunID:     shared.GenerateID(),
		Enabled:   enabled,
		StartedAt: time.Now(),
	}
	if !enabled {
		b.logger.Info("backfill disabled, skipping")
		return report, nil
	}
	if quotaPerFeed <= 0 {
		return nil, fmt.Errorf("%w: quota per feed must be positive, got %d", shared.ErrInvalidArgument, quotaPerFeed)
	}

	for _, trackingURL := range trackingURLs {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(report.StartedAt)
			return report, fmt.Errorf("backfill interrupted: %w", err)
		}

		feed, err := b.feeds.GetByTrackingURL(trackingURL)
		if err != nil {
			// Feeds that never synced have nothing to enrich.
			b.logger.Debug("no stored feed for backfill", "url", trackingURL, "reason", err)
			continue
		}

		items, err := b.items.SelectUnenriched(feed.ID, quotaPerFeed)
		if err != nil {
			return report, err
		}

		for i, item := range items {
			sendProgress(progress, backfillUpdate(i+1, len(items), item.URL))

			if err := b.limiter.Wait(ctx); err != nil {
				report.Duration = time.Since(report.StartedAt)
				return report, fmt.Errorf("backfill interrupted: %w", err)
			}

			detail, err := b.provider.FetchItemDetail(ctx, item.URL)
			if err != nil {
				b.logger.Warn("item detail fetch failed", "url", item.URL, "reason", err)
				report.Failures = append(report.Failures, ItemFailure{URL: item.URL, Reason: err.Error()})
				continue
			}

			description := detail.Description
			if description == "" {
				description = EmptyDescription
			}

			if err := b.items.UpdateEnrichment(feed.ID, item.ID, description, detail.PublishEpoch*1000); err != nil {
				return report, err
			}
			report.ItemsEnriched++
		}
	}

	report.Duration = time.Since(report.StartedAt)
	return report, nil
}
