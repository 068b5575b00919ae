package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/ytsync/internal/models"
)

// MaintenanceRepository owns the post-pass store upkeep and the read-only
// queries backing the startup snapshot.
type MaintenanceRepository struct {
	db *sql.DB
}

// NewMaintenanceRepository creates a new MaintenanceRepository with the given database connection
func NewMaintenanceRepository(db *sql.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

// OptimizeSearchIndex merges the FTS index's internal structures.
func (r *MaintenanceRepository) OptimizeSearchIndex() error {
	if _, err := r.db.Exec("INSERT INTO search(search) VALUES('optimize')"); err != nil {
		return fmt.Errorf("failed to optimize search index: %w", err)
	}
	return nil
}

// Compact reclaims unused pages from the store file.
func (r *MaintenanceRepository) Compact() error {
	if _, err := r.db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum store: %w", err)
	}
	return nil
}

// FeedSummaries returns one row per feed with at least one item, most
// recently updated feed first.
func (r *MaintenanceRepository) FeedSummaries() ([]models.FeedSummary, error) {
	query := `
		SELECT feeds.id, COALESCE(feeds.title, ''), COUNT(items.id)
		FROM feeds
		JOIN items         ON feeds.id = items.feed_id
		JOIN feed_metadata ON feeds.id = feed_metadata.feed_id
		GROUP BY items.feed_id
		HAVING COUNT(items.id) > 0
		ORDER BY feed_metadata.last_entry DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed summaries: %w", err)
	}
	defer rows.Close()

	var summaries []models.FeedSummary
	for rows.Next() {
		var s models.FeedSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.ItemCount); err != nil {
			return nil, fmt.Errorf("failed to scan feed summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Stats returns catalog-wide counts and the physical store size in bytes.
func (r *MaintenanceRepository) Stats() (*models.CatalogStats, error) {
	query := `
		SELECT *
		FROM (SELECT COUNT(1) FROM feeds)
		JOIN (SELECT COUNT(1) FROM items)
		JOIN (SELECT page_size * page_count FROM pragma_page_count(), pragma_page_size())
	`

	var stats models.CatalogStats
	if err := r.db.QueryRow(query).Scan(&stats.FeedCount, &stats.ItemCount, &stats.StoreSize); err != nil {
		return nil, fmt.Errorf("failed to query catalog stats: %w", err)
	}
	return &stats, nil
}

// TagNames returns the distinct tag set.
func (r *MaintenanceRepository) TagNames() ([]string, error) {
	rows, err := r.db.Query("SELECT name FROM tags ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
