package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/ytsync/internal/provider"
	"github.com/desertthunder/ytsync/internal/repositories"
	"github.com/desertthunder/ytsync/internal/shared"
	mocks "github.com/desertthunder/ytsync/internal/testing"
)

func newTestBackfiller(t *testing.T, feeds FeedStore, items ItemStore, p provider.Provider) *Backfiller {
	t.Helper()
	return NewBackfiller(BackfillerOpts{
		Provider:  p,
		Feeds:     feeds,
		Items:     items,
		RateLimit: 1000, // keep tests fast
	})
}

func TestBackfillerBackfill(t *testing.T) {
	trackingURL := "https://host/rss?playlist_id=PL1"
	canonical := "https://www.youtube.com/playlist?list=PL1"

	seed := func(t *testing.T, engine *Engine) {
		t.Helper()
		if _, err := engine.SyncAll(context.Background(), []string{trackingURL}, nil); err != nil {
			t.Fatalf("failed to seed catalog: %v", err)
		}
	}

	t.Run("enriches pending items", func(t *testing.T) {
		db := setupTestDB(t)
		feeds := repositories.NewFeedRepository(db)
		items := repositories.NewItemRepository(db)

		mock := mocks.NewMockProvider()
		playlistFixture(mock, canonical, "Talks",
			"https://www.youtube.com/watch?v=a",
			"https://www.youtube.com/watch?v=b",
		)
		mock.Details["https://www.youtube.com/watch?v=a"] = &provider.ItemDetail{Description: "first talk", PublishEpoch: 1700000000}
		mock.Details["https://www.youtube.com/watch?v=b"] = &provider.ItemDetail{Description: "", PublishEpoch: 1700000100}

		seed(t, newTestEngine(t, db, mock))

		backfiller := newTestBackfiller(t, feeds, items, mock)
		report, err := backfiller.Backfill(context.Background(), []string{trackingURL}, 10, true, nil)
		if err != nil {
			t.Fatalf("failed to backfill: %v", err)
		}

		if report.ItemsEnriched != 2 || len(report.Failures) != 0 {
			t.Fatalf("unexpected report: %+v", report)
		}

		var publishedAt int64
		var description string
		row := db.QueryRow(`
			SELECT items.published_at, item_content.description
			FROM items JOIN item_content ON item_content.item_id = items.id
			WHERE items.url = ?`, "https://www.youtube.com/watch?v=a")
		if err := row.Scan(&publishedAt, &description); err != nil {
			t.Fatalf("failed to read enriched item: %v", err)
		}
		if publishedAt != 1700000000000 {
			t.Errorf("expected epoch millis 1700000000000, got %d", publishedAt)
		}
		if description != "first talk" {
			t.Errorf("unexpected description %q", description)
		}

		// Empty provider descriptions get the placeholder so the item is
		// never reselected.
		row = db.QueryRow("SELECT description FROM item_content JOIN items ON items.id = item_content.item_id WHERE items.url = ?", "https://www.youtube.com/watch?v=b")
		if err := row.Scan(&description); err != nil {
			t.Fatalf("failed to read placeholder description: %v", err)
		}
		if description != EmptyDescription {
			t.Errorf("expected %q, got %q", EmptyDescription, description)
		}
	})

	t.Run("disabled pass is a no-op", func(t *testing.T) {
		db := setupTestDB(t)
		feeds := repositories.NewFeedRepository(db)
		items := repositories.NewItemRepository(db)

		mock := mocks.NewMockProvider()
		playlistFixture(mock, canonical, "Talks", "https://www.youtube.com/watch?v=a")
		seed(t, newTestEngine(t, db, mock))

		backfiller := newTestBackfiller(t, feeds, items, mock)
		report, err := backfiller.Backfill(context.Background(), []string{trackingURL}, 10, false, nil)
		if err != nil {
			t.Fatalf("disabled backfill should not error: %v", err)
		}

		if report.Enabled {
			t.Error("report should record the disabled state")
		}
		if report.ItemsEnriched != 0 || mock.DetailCalls != 0 {
			t.Errorf("disabled pass must not fetch, got %d enriched and %d calls", report.ItemsEnriched, mock.DetailCalls)
		}
	})

	t.Run("second pass selects nothing", func(t *testing.T) {
		db := setupTestDB(t)
		feeds := repositories.NewFeedRepository(db)
		items := repositories.NewItemRepository(db)

		mock := mocks.NewMockProvider()
		playlistFixture(mock, canonical, "Talks", "https://www.youtube.com/watch?v=a")
		mock.Details["https://www.youtube.com/watch?v=a"] = &provider.ItemDetail{Description: "d", PublishEpoch: 1700000000}
		seed(t, newTestEngine(t, db, mock))

		backfiller := newTestBackfiller(t, feeds, items, mock)
		if _, err := backfiller.Backfill(context.Background(), []string{trackingURL}, 10, true, nil); err != nil {
			t.Fatalf("first backfill failed: %v", err)
		}
		callsAfterFirst := mock.DetailCalls

		report, err := backfiller.Backfill(context.Background(), []string{trackingURL}, 10, true, nil)
		if err != nil {
			t.Fatalf("second backfill failed: %v", err)
		}
		if report.ItemsEnriched != 0 || mock.DetailCalls != callsAfterFirst {
			t.Errorf("expected idempotent second pass, got %d enriched and %d extra calls", report.ItemsEnriched, mock.DetailCalls-callsAfterFirst)
		}
	})

	t.Run("per-item failure is recorded, rest continue", func(t *testing.T) {
		db := setupTestDB(t)
		feeds := repositories.NewFeedRepository(db)
		items := repositories.NewItemRepository(db)

		mock := mocks.NewMockProvider()
		playlistFixture(mock, canonical, "Talks",
			"https://www.youtube.com/watch?v=a",
			"https://www.youtube.com/watch?v=b",
		)
		mock.Fail["https://www.youtube.com/watch?v=a"] = true
		mock.Details["https://www.youtube.com/watch?v=b"] = &provider.ItemDetail{Description: "survives", PublishEpoch: 1700000000}
		seed(t, newTestEngine(t, db, mock))

		backfiller := newTestBackfiller(t, feeds, items, mock)
		report, err := backfiller.Backfill(context.Background(), []string{trackingURL}, 10, true, nil)
		if err != nil {
			t.Fatalf("failed to backfill: %v", err)
		}

		if report.ItemsEnriched != 1 {
			t.Errorf("expected the surviving item enriched, got %d", report.ItemsEnriched)
		}
		if len(report.Failures) != 1 || report.Failures[0].URL != "https://www.youtube.com/watch?v=a" {
			t.Errorf("unexpected failures: %+v", report.Failures)
		}
	})

	t.Run("quota bounds the fetches", func(t *testing.T) {
		db := setupTestDB(t)
		feeds := repositories.NewFeedRepository(db)
		items := repositories.NewItemRepository(db)

		mock := mocks.NewMockProvider()
		playlistFixture(mock, canonical, "Talks",
			"https://www.youtube.com/watch?v=a",
			"https://www.youtube.com/watch?v=b",
			"https://www.youtube.com/watch?v=c",
		)
		for _, v := range []string{"a", "b", "c"} {
			mock.Details["https://www.youtube.com/watch?v="+v] = &provider.ItemDetail{Description: v, PublishEpoch: 1700000000}
		}
		seed(t, newTestEngine(t, db, mock))

		backfiller := newTestBackfiller(t, feeds, items, mock)
		report, err := backfiller.Backfill(context.Background(), []string{trackingURL}, 2, true, nil)
		if err != nil {
			t.Fatalf("failed to backfill: %v", err)
		}
		if report.ItemsEnriched != 2 || mock.DetailCalls != 2 {
			t.Errorf("expected quota of 2 honored, got %d enriched and %d calls", report.ItemsEnriched, mock.DetailCalls)
		}
	})

	t.Run("invalid quota", func(t *testing.T) {
		db := setupTestDB(t)
		backfiller := newTestBackfiller(t,
			repositories.NewFeedRepository(db),
			repositories.NewItemRepository(db),
			mocks.NewMockProvider(),
		)

		_, err := backfiller.Backfill(context.Background(), []string{trackingURL}, 0, true, nil)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("unsynced feed skipped silently", func(t *testing.T) {
		db := setupTestDB(t)
		mock := mocks.NewMockProvider()
		backfiller := newTestBackfiller(t,
			repositories.NewFeedRepository(db),
			repositories.NewItemRepository(db),
			mock,
		)

		report, err := backfiller.Backfill(context.Background(), []string{"https://host/rss?playlist_id=never"}, 10, true, nil)
		if err != nil {
			t.Fatalf("unsynced feed should not error: %v", err)
		}
		if report.ItemsEnriched != 0 || mock.DetailCalls != 0 {
			t.Errorf("expected nothing enriched, got %+v", report)
		}
	})
}

func TestMaintain(t *testing.T) {
	db := setupTestDB(t)

	if err := Maintain(repositories.NewMaintenanceRepository(db), shared.NewLogger(nil)); err != nil {
		t.Fatalf("maintenance failed: %v", err)
	}
}
