package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/ytsync/internal/models"
)

// ItemRepository persists item/content pairs and the enrichment writes of
// the backfill pass.
type ItemRepository struct {
	db *sql.DB
}

// NewItemRepository creates a new ItemRepository with the given database connection
func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Exists reports whether an item with the given URL is already stored,
// regardless of owning feed. The engine checks before every insert; the
// provider can return the same item across repeated fetches and two feeds
// can reference the same URL.
func (r *ItemRepository) Exists(url string) (bool, error) {
	var exists bool
	err := r.db.QueryRow("SELECT EXISTS(SELECT 1 FROM items WHERE url = ?)", url).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check item url: %w", err)
	}
	return exists, nil
}

// InsertPair inserts an item and its content row in one transaction and
// assigns the item its identity. An item must never exist without its
// content row.
func (r *ItemRepository) InsertPair(item *models.Item, description string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		"INSERT INTO items (feed_id, published_at, title, url) VALUES (?, ?, ?, ?)",
		item.FeedID, item.PublishedAt, item.Title, item.URL,
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get item id: %w", err)
	}

	if _, err := tx.Exec(
		"INSERT INTO item_content (item_id, title, description) VALUES (?, ?, ?)",
		id, item.Title, description,
	); err != nil {
		return fmt.Errorf("failed to insert item content: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit item insert: %w", err)
	}

	item.ID = id
	return nil
}

// SelectUnenriched returns up to limit items of the feed still lacking
// enrichment (no publish timestamp or an empty description), oldest first.
// Enriched items are excluded by the predicate, which is what makes
// re-running backfill a no-op for them.
func (r *ItemRepository) SelectUnenriched(feedID int64, limit int) ([]models.Item, error) {
	query := `
		SELECT items.id, items.feed_id, items.published_at, COALESCE(items.title, ''), items.url
		FROM items
		JOIN item_content ON item_content.item_id = items.id
		WHERE items.feed_id = ?
		  AND (items.published_at = 0 OR item_content.description IS NULL OR item_content.description = '')
		ORDER BY items.id
		LIMIT ?
	`

	rows, err := r.db.Query(query, feedID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select unenriched items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.FeedID, &item.PublishedAt, &item.Title, &item.URL); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateEnrichment writes the backfilled description and publish timestamp
// (epoch millis) to an item and bumps the owning feed's last-entry marker
// monotonically. Re-applying the same detail yields the same stored state.
func (r *ItemRepository) UpdateEnrichment(feedID, itemID int64, description string, publishedAt int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE items SET published_at = ? WHERE id = ?", publishedAt, itemID); err != nil {
		return fmt.Errorf("failed to update item timestamp: %w", err)
	}

	if _, err := tx.Exec("UPDATE item_content SET description = ? WHERE item_id = ?", description, itemID); err != nil {
		return fmt.Errorf("failed to update item description: %w", err)
	}

	if _, err := tx.Exec(
		"UPDATE feed_metadata SET last_entry = ? WHERE feed_id = ? AND last_entry < ?",
		publishedAt, feedID, publishedAt,
	); err != nil {
		return fmt.Errorf("failed to bump last entry: %w", err)
	}

	return tx.Commit()
}

// CountAll returns the number of items in the whole catalog.
func (r *ItemRepository) CountAll() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM items").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}
