package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/ytsync/internal/models"
	"github.com/desertthunder/ytsync/internal/shared"
)

// FeedRepository persists feeds together with their details and sync
// metadata rows.
type FeedRepository struct {
	db *sql.DB
}

// NewFeedRepository creates a new FeedRepository with the given database connection
func NewFeedRepository(db *sql.DB) *FeedRepository {
	return &FeedRepository{db: db}
}

// GetByTrackingURL looks a feed up by its tracking URL.
// Returns [shared.ErrNotFound] when the URL has never been synced.
func (r *FeedRepository) GetByTrackingURL(trackingURL string) (*models.Feed, error) {
	query := `
		SELECT id, COALESCE(title, ''), tracking_url, canonical_url, kind
		FROM feeds
		WHERE tracking_url = ?
	`

	var feed models.Feed
	var kind string
	err := r.db.QueryRow(query, trackingURL).Scan(&feed.ID, &feed.Title, &feed.TrackingURL, &feed.CanonicalURL, &kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: feed %s", shared.ErrNotFound, trackingURL)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query feed: %w", err)
	}

	feed.Kind, err = models.ParseKind(kind)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed %d: %w", feed.ID, err)
	}
	return &feed, nil
}

// Create inserts a feed with its details and sync metadata rows in one
// transaction and assigns the feed its permanent identity.
func (r *FeedRepository) Create(feed *models.Feed, details models.FeedDetails) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		"INSERT INTO feeds (title, tracking_url, canonical_url, kind) VALUES (?, ?, ?, ?)",
		feed.Title, feed.TrackingURL, feed.CanonicalURL, string(feed.Kind),
	)
	if err != nil {
		return fmt.Errorf("failed to insert feed: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get feed id: %w", err)
	}

	if _, err := tx.Exec(
		"INSERT INTO feed_details (feed_id, home, description, language, image, author) VALUES (?, ?, ?, ?, ?, ?)",
		id, details.Home, details.Description, details.Language, details.Image, details.Author,
	); err != nil {
		return fmt.Errorf("failed to insert feed details: %w", err)
	}

	if _, err := tx.Exec("INSERT INTO feed_metadata (feed_id) VALUES (?)", id); err != nil {
		return fmt.Errorf("failed to insert feed metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit feed creation: %w", err)
	}

	feed.ID = id
	return nil
}

// UpdateDetails overwrites the feed title and details row with freshly
// fetched values. Details stay current on every pass even when no new
// items exist.
func (r *FeedRepository) UpdateDetails(feedID int64, title string, details models.FeedDetails) error {
	if title != "" {
		if _, err := r.db.Exec("UPDATE feeds SET title = ? WHERE id = ?", title, feedID); err != nil {
			return fmt.Errorf("failed to update feed title: %w", err)
		}
	}

	result, err := r.db.Exec(`
		UPDATE feed_details
		SET home = ?, description = ?, language = ?, image = ?, author = ?
		WHERE feed_id = ?`,
		details.Home, details.Description, details.Language, details.Image, details.Author, feedID,
	)
	if err != nil {
		return fmt.Errorf("failed to update feed details: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: details row for feed %d", shared.ErrNotFound, feedID)
	}

	return nil
}

// CountItems returns the number of items stored for the feed.
func (r *FeedRepository) CountItems(feedID int64) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM items WHERE feed_id = ?", feedID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// TouchFetched records a successful metadata fetch on the feed's sync
// metadata row.
func (r *FeedRepository) TouchFetched(feedID int64, fetchedAt time.Time) error {
	_, err := r.db.Exec("UPDATE feed_metadata SET last_fetch = ? WHERE feed_id = ?", fetchedAt.Unix(), feedID)
	if err != nil {
		return fmt.Errorf("failed to update last fetch: %w", err)
	}
	return nil
}

// ReplaceTags replaces the feed's tag set with the given names, creating
// tags as needed.
func (r *FeedRepository) ReplaceTags(feedID int64, names []string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM feed_tags WHERE feed_id = ?", feedID); err != nil {
		return fmt.Errorf("failed to clear feed tags: %w", err)
	}

	for _, name := range names {
		if _, err := tx.Exec("INSERT OR IGNORE INTO tags (name) VALUES (?)", name); err != nil {
			return fmt.Errorf("failed to insert tag %q: %w", name, err)
		}

		var tagID int64
		if err := tx.QueryRow("SELECT id FROM tags WHERE name = ?", name).Scan(&tagID); err != nil {
			return fmt.Errorf("failed to look up tag %q: %w", name, err)
		}

		if _, err := tx.Exec("INSERT INTO feed_tags (feed_id, tag_id) VALUES (?, ?)", feedID, tagID); err != nil {
			return fmt.Errorf("failed to tag feed: %w", err)
		}
	}

	return tx.Commit()
}
