package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/ytsync/internal/models"
	"github.com/desertthunder/ytsync/internal/shared"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func createTestFeed(t *testing.T, repo *FeedRepository, trackingURL string) *models.Feed {
	t.Helper()

	feed := &models.Feed{
		Title:        "Test Feed",
		TrackingURL:  trackingURL,
		CanonicalURL: "https://www.youtube.com/playlist?list=PL1",
		Kind:         models.KindPlaylist,
	}
	details := models.FeedDetails{
		Home:        "https://www.youtube.com/playlist?list=PL1",
		Description: "a playlist",
		Language:    "en",
		Author:      "someone",
	}
	if err := repo.Create(feed, details); err != nil {
		t.Fatalf("failed to create feed: %v", err)
	}
	return feed
}

func TestFeedRepository(t *testing.T) {
	t.Run("Create assigns identity and stores all rows", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewFeedRepository(db)

		feed := createTestFeed(t, repo, "https://host/rss?playlist_id=PL1")
		if feed.ID == 0 {
			t.Fatal("expected feed ID to be assigned")
		}

		var details, metadata int
		if err := db.QueryRow("SELECT COUNT(*) FROM feed_details WHERE feed_id = ?", feed.ID).Scan(&details); err != nil {
			t.Fatalf("failed to count details: %v", err)
		}
		if err := db.QueryRow("SELECT COUNT(*) FROM feed_metadata WHERE feed_id = ?", feed.ID).Scan(&metadata); err != nil {
			t.Fatalf("failed to count metadata: %v", err)
		}
		if details != 1 || metadata != 1 {
			t.Errorf("expected one details and one metadata row, got %d and %d", details, metadata)
		}
	})

	t.Run("GetByTrackingURL", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewFeedRepository(db)

		created := createTestFeed(t, repo, "https://host/rss?playlist_id=PL1")

		found, err := repo.GetByTrackingURL("https://host/rss?playlist_id=PL1")
		if err != nil {
			t.Fatalf("failed to look up feed: %v", err)
		}
		if found.ID != created.ID {
			t.Errorf("expected feed %d, got %d", created.ID, found.ID)
		}
		if found.Kind != models.KindPlaylist {
			t.Errorf("expected playlist kind, got %s", found.Kind)
		}

		_, err = repo.GetByTrackingURL("https://host/rss?playlist_id=unknown")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateDetails", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewFeedRepository(db)

		feed := createTestFeed(t, repo, "https://host/rss?playlist_id=PL1")

		err := repo.UpdateDetails(feed.ID, "Renamed", models.FeedDetails{Author: "new author"})
		if err != nil {
			t.Fatalf("failed to update details: %v", err)
		}

		var title, author string
		if err := db.QueryRow("SELECT title FROM feeds WHERE id = ?", feed.ID).Scan(&title); err != nil {
			t.Fatalf("failed to read title: %v", err)
		}
		if err := db.QueryRow("SELECT author FROM feed_details WHERE feed_id = ?", feed.ID).Scan(&author); err != nil {
			t.Fatalf("failed to read author: %v", err)
		}
		if title != "Renamed" || author != "new author" {
			t.Errorf("unexpected values after update: %q %q", title, author)
		}

		if err := repo.UpdateDetails(feed.ID, "", models.FeedDetails{Author: "kept title"}); err != nil {
			t.Fatalf("failed to update with empty title: %v", err)
		}
		if err := db.QueryRow("SELECT title FROM feeds WHERE id = ?", feed.ID).Scan(&title); err != nil {
			t.Fatalf("failed to read title: %v", err)
		}
		if title != "Renamed" {
			t.Errorf("empty title should not overwrite, got %q", title)
		}

		err = repo.UpdateDetails(9999, "x", models.FeedDetails{})
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound for unknown feed, got %v", err)
		}
	})

	t.Run("CountItems and TouchFetched", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewFeedRepository(db)
		items := NewItemRepository(db)

		feed := createTestFeed(t, repo, "https://host/rss?playlist_id=PL1")

		count, err := repo.CountItems(feed.ID)
		if err != nil {
			t.Fatalf("failed to count items: %v", err)
		}
		if count != 0 {
			t.Errorf("expected 0 items, got %d", count)
		}

		item := &models.Item{FeedID: feed.ID, Title: "v", URL: "https://www.youtube.com/watch?v=a"}
		if err := items.InsertPair(item, ""); err != nil {
			t.Fatalf("failed to insert item: %v", err)
		}

		count, err = repo.CountItems(feed.ID)
		if err != nil {
			t.Fatalf("failed to count items: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 item, got %d", count)
		}

		fetchedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		if err := repo.TouchFetched(feed.ID, fetchedAt); err != nil {
			t.Fatalf("failed to touch fetch time: %v", err)
		}

		var lastFetch int64
		if err := db.QueryRow("SELECT last_fetch FROM feed_metadata WHERE feed_id = ?", feed.ID).Scan(&lastFetch); err != nil {
			t.Fatalf("failed to read last fetch: %v", err)
		}
		if lastFetch != fetchedAt.Unix() {
			t.Errorf("expected last fetch %d, got %d", fetchedAt.Unix(), lastFetch)
		}
	})

	t.Run("ReplaceTags", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewFeedRepository(db)

		feed := createTestFeed(t, repo, "https://host/rss?playlist_id=PL1")

		if err := repo.ReplaceTags(feed.ID, []string{"video", "playlist"}); err != nil {
			t.Fatalf("failed to replace tags: %v", err)
		}
		if err := repo.ReplaceTags(feed.ID, []string{"video", "channel"}); err != nil {
			t.Fatalf("failed to replace tags again: %v", err)
		}

		rows, err := db.Query(`
			SELECT tags.name FROM feed_tags
			JOIN tags ON tags.id = feed_tags.tag_id
			WHERE feed_tags.feed_id = ?
			ORDER BY tags.name`, feed.ID)
		if err != nil {
			t.Fatalf("failed to query feed tags: %v", err)
		}
		defer rows.Close()

		var names []string
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				t.Fatalf("failed to scan tag: %v", err)
			}
			names = append(names, name)
		}
		if len(names) != 2 || names[0] != "channel" || names[1] != "video" {
			t.Errorf("expected [channel video], got %v", names)
		}
	})
}

func TestItemRepository(t *testing.T) {
	t.Run("Exists and InsertPair", func(t *testing.T) {
		db := setupTestDB(t)
		feeds := NewFeedRepository(db)
		repo := NewItemRepository(db)

		feed := createTestFeed(t, feeds, "https://host/rss?playlist_id=PL1")

		exists, err := repo.Exists("https://www.youtube.com/watch?v=a")
		if err != nil {
			t.Fatalf("failed to check existence: %v", err)
		}
		if exists {
			t.Error("expected item to not exist yet")
		}

		item := &models.Item{FeedID: feed.ID, Title: "video", URL: "https://www.youtube.com/watch?v=a"}
		if err := repo.InsertPair(item, ""); err != nil {
			t.Fatalf("failed to insert pair: %v", err)
		}
		if item.ID == 0 {
			t.Fatal("expected item ID to be assigned")
		}

		exists, err = repo.Exists("https://www.youtube.com/watch?v=a")
		if err != nil {
			t.Fatalf("failed to check existence: %v", err)
		}
		if !exists {
			t.Error("expected item to exist after insert")
		}

		var contentCount int
		if err := db.QueryRow("SELECT COUNT(*) FROM item_content WHERE item_id = ?", item.ID).Scan(&contentCount); err != nil {
			t.Fatalf("failed to count content rows: %v", err)
		}
		if contentCount != 1 {
			t.Errorf("expected exactly one content row, got %d", contentCount)
		}
	})

	t.Run("duplicate URL rejected by schema", func(t *testing.T) {
		db := setupTestDB(t)
		feeds := NewFeedRepository(db)
		repo := NewItemRepository(db)

		feed := createTestFeed(t, feeds, "https://host/rss?playlist_id=PL1")

		first := &models.Item{FeedID: feed.ID, Title: "video", URL: "https://www.youtube.com/watch?v=a"}
		if err := repo.InsertPair(first, ""); err != nil {
			t.Fatalf("failed to insert first item: %v", err)
		}

		dup := &models.Item{FeedID: feed.ID, Title: "copy", URL: "https://www.youtube.com/watch?v=a"}
		if err := repo.InsertPair(dup, ""); err == nil {
			t.Error("expected unique constraint violation for duplicate URL")
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM item_content").Scan(&count); err != nil {
			t.Fatalf("failed to count content rows: %v", err)
		}
		if count != 1 {
			t.Errorf("failed insert should not leave a content row, got %d", count)
		}
	})

	t.Run("SelectUnenriched", func(t *testing.T) {
		db := setupTestDB(t)
		feeds := NewFeedRepository(db)
		repo := NewItemRepository(db)

		feed := createTestFeed(t, feeds, "https://host/rss?playlist_id=PL1")

		pending := &models.Item{FeedID: feed.ID, Title: "pending", URL: "https://www.youtube.com/watch?v=a"}
		if err := repo.InsertPair(pending, ""); err != nil {
			t.Fatalf("failed to insert pending item: %v", err)
		}

		done := &models.Item{FeedID: feed.ID, PublishedAt: 1700000000000, Title: "done", URL: "https://www.youtube.com/watch?v=b"}
		if err := repo.InsertPair(done, "already has a description"); err != nil {
			t.Fatalf("failed to insert enriched item: %v", err)
		}

		items, err := repo.SelectUnenriched(feed.ID, 10)
		if err != nil {
			t.Fatalf("failed to select unenriched items: %v", err)
		}
		if len(items) != 1 || items[0].ID != pending.ID {
			t.Fatalf("expected only the pending item, got %v", items)
		}

		items, err = repo.SelectUnenriched(feed.ID, 0)
		if err != nil {
			t.Fatalf("failed to select with zero limit: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("expected limit to bound the result, got %d items", len(items))
		}
	})

	t.Run("UpdateEnrichment bumps last entry monotonically", func(t *testing.T) {
		db := setupTestDB(t)
		feeds := NewFeedRepository(db)
		repo := NewItemRepository(db)

		feed := createTestFeed(t, feeds, "https://host/rss?playlist_id=PL1")

		item := &models.Item{FeedID: feed.ID, Title: "video", URL: "https://www.youtube.com/watch?v=a"}
		if err := repo.InsertPair(item, ""); err != nil {
			t.Fatalf("failed to insert item: %v", err)
		}

		if err := repo.UpdateEnrichment(feed.ID, item.ID, "a description", 1700000000000); err != nil {
			t.Fatalf("failed to enrich item: %v", err)
		}

		var publishedAt, lastEntry int64
		var description string
		if err := db.QueryRow("SELECT published_at FROM items WHERE id = ?", item.ID).Scan(&publishedAt); err != nil {
			t.Fatalf("failed to read published_at: %v", err)
		}
		if err := db.QueryRow("SELECT description FROM item_content WHERE item_id = ?", item.ID).Scan(&description); err != nil {
			t.Fatalf("failed to read description: %v", err)
		}
		if err := db.QueryRow("SELECT last_entry FROM feed_metadata WHERE feed_id = ?", feed.ID).Scan(&lastEntry); err != nil {
			t.Fatalf("failed to read last_entry: %v", err)
		}
		if publishedAt != 1700000000000 || description != "a description" || lastEntry != 1700000000000 {
			t.Errorf("unexpected enrichment state: %d %q %d", publishedAt, description, lastEntry)
		}

		// An older item must not move the marker backwards.
		older := &models.Item{FeedID: feed.ID, Title: "older", URL: "https://www.youtube.com/watch?v=b"}
		if err := repo.InsertPair(older, ""); err != nil {
			t.Fatalf("failed to insert older item: %v", err)
		}
		if err := repo.UpdateEnrichment(feed.ID, older.ID, "older video", 1600000000000); err != nil {
			t.Fatalf("failed to enrich older item: %v", err)
		}
		if err := db.QueryRow("SELECT last_entry FROM feed_metadata WHERE feed_id = ?", feed.ID).Scan(&lastEntry); err != nil {
			t.Fatalf("failed to read last_entry: %v", err)
		}
		if lastEntry != 1700000000000 {
			t.Errorf("last_entry regressed to %d", lastEntry)
		}

		selected, err := repo.SelectUnenriched(feed.ID, 10)
		if err != nil {
			t.Fatalf("failed to select after enrichment: %v", err)
		}
		if len(selected) != 0 {
			t.Errorf("enriched items should not be selected again, got %d", len(selected))
		}
	})

	t.Run("CountAll", func(t *testing.T) {
		db := setupTestDB(t)
		feeds := NewFeedRepository(db)
		repo := NewItemRepository(db)

		feed := createTestFeed(t, feeds, "https://host/rss?playlist_id=PL1")
		for _, url := range []string{"https://www.youtube.com/watch?v=a", "https://www.youtube.com/watch?v=b"} {
			item := &models.Item{FeedID: feed.ID, Title: "v", URL: url}
			if err := repo.InsertPair(item, ""); err != nil {
				t.Fatalf("failed to insert item: %v", err)
			}
		}

		count, err := repo.CountAll()
		if err != nil {
			t.Fatalf("failed to count items: %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2 items, got %d", count)
		}
	})
}

func TestMaintenanceRepository(t *testing.T) {
	t.Run("FeedSummaries orders by last entry and skips empty feeds", func(t *testing.T) {
		db := setupTestDB(t)
		feeds := NewFeedRepository(db)
		items := NewItemRepository(db)
		repo := NewMaintenanceRepository(db)

		quiet := createTestFeed(t, feeds, "https://host/rss?playlist_id=quiet")
		_ = quiet

		older := createTestFeed(t, feeds, "https://host/rss?playlist_id=older")
		olderItem := &models.Item{FeedID: older.ID, Title: "old", URL: "https://www.youtube.com/watch?v=old"}
		if err := items.InsertPair(olderItem, ""); err != nil {
			t.Fatalf("failed to insert item: %v", err)
		}
		if err := items.UpdateEnrichment(older.ID, olderItem.ID, "old", 1600000000000); err != nil {
			t.Fatalf("failed to enrich: %v", err)
		}

		newer := createTestFeed(t, feeds, "https://host/rss?playlist_id=newer")
		newerItem := &models.Item{FeedID: newer.ID, Title: "new", URL: "https://www.youtube.com/watch?v=new"}
		if err := items.InsertPair(newerItem, ""); err != nil {
			t.Fatalf("failed to insert item: %v", err)
		}
		if err := items.UpdateEnrichment(newer.ID, newerItem.ID, "new", 1700000000000); err != nil {
			t.Fatalf("failed to enrich: %v", err)
		}

		summaries, err := repo.FeedSummaries()
		if err != nil {
			t.Fatalf("failed to query summaries: %v", err)
		}
		if len(summaries) != 2 {
			t.Fatalf("expected 2 summaries, got %d", len(summaries))
		}
		if summaries[0].ID != newer.ID {
			t.Errorf("expected most recently updated feed first, got feed %d", summaries[0].ID)
		}
		if summaries[0].ItemCount != 1 {
			t.Errorf("expected item count 1, got %d", summaries[0].ItemCount)
		}
	})

	t.Run("Stats", func(t *testing.T) {
		db := setupTestDB(t)
		feeds := NewFeedRepository(db)
		items := NewItemRepository(db)
		repo := NewMaintenanceRepository(db)

		feed := createTestFeed(t, feeds, "https://host/rss?playlist_id=PL1")
		item := &models.Item{FeedID: feed.ID, Title: "v", URL: "https://www.youtube.com/watch?v=a"}
		if err := items.InsertPair(item, ""); err != nil {
			t.Fatalf("failed to insert item: %v", err)
		}

		stats, err := repo.Stats()
		if err != nil {
			t.Fatalf("failed to query stats: %v", err)
		}
		if stats.FeedCount != 1 || stats.ItemCount != 1 {
			t.Errorf("expected 1 feed and 1 item, got %d and %d", stats.FeedCount, stats.ItemCount)
		}
		if stats.StoreSize <= 0 {
			t.Errorf("expected positive store size, got %d", stats.StoreSize)
		}
	})

	t.Run("TagNames", func(t *testing.T) {
		db := setupTestDB(t)
		feeds := NewFeedRepository(db)
		repo := NewMaintenanceRepository(db)

		feed := createTestFeed(t, feeds, "https://host/rss?playlist_id=PL1")
		if err := feeds.ReplaceTags(feed.ID, []string{"video", "playlist"}); err != nil {
			t.Fatalf("failed to tag feed: %v", err)
		}

		names, err := repo.TagNames()
		if err != nil {
			t.Fatalf("failed to query tag names: %v", err)
		}
		if len(names) != 2 || names[0] != "playlist" || names[1] != "video" {
			t.Errorf("expected [playlist video], got %v", names)
		}
	})

	t.Run("OptimizeSearchIndex and Compact", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewMaintenanceRepository(db)

		if err := repo.OptimizeSearchIndex(); err != nil {
			t.Errorf("failed to optimize search index: %v", err)
		}
		if err := repo.Compact(); err != nil {
			t.Errorf("failed to compact store: %v", err)
		}
	})
}
