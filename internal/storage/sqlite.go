// ABOUTME: SQLite storage implementation using modernc.org/sqlite (pure Go)
// ABOUTME: Sources and items with foreign-key cascade and id-keyed upserts

package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
	_ "modernc.org/sqlite"

	"github.com/quinn/skimmer/internal/models"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite storage instance.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	// WAL for concurrency; foreign keys drive the cascade delete.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sources (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL,
			url TEXT UNIQUE NOT NULL,
			created_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			source_id TEXT NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
			source_type TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			author TEXT NOT NULL DEFAULT '',
			audio_url TEXT NOT NULL DEFAULT '',
			audio_mime_type TEXT NOT NULL DEFAULT '',
			audio_duration_seconds INTEGER,
			episode_number INTEGER,
			image_url TEXT NOT NULL DEFAULT '',
			published_at TIMESTAMP,
			saved INTEGER NOT NULL DEFAULT 0,
			read_state TEXT NOT NULL DEFAULT 'unread',
			created_at TIMESTAMP NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_items_source_id ON items(source_id);
		CREATE INDEX IF NOT EXISTS idx_items_read_state ON items(read_state);
		CREATE INDEX IF NOT EXISTS idx_items_saved ON items(saved);
		CREATE INDEX IF NOT EXISTS idx_items_published_at ON items(published_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Source operations

// CreateSource stores a new source.
func (s *SQLiteStore) CreateSource(source *models.Source) error {
	query := `INSERT INTO sources (id, name, type, url, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query, source.ID, source.Name, string(source.Type), source.URL, source.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert source: %w", err)
	}
	return nil
}

// UpsertSources inserts or refreshes sources by id.
func (s *SQLiteStore) UpsertSources(sources []*models.Source) error {
	if len(sources) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO sources (id, name, type, url, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, type = excluded.type, url = excluded.url
	`
	for _, source := range sources {
		if _, err := tx.Exec(query, source.ID, source.Name, string(source.Type), source.URL, source.CreatedAt); err != nil {
			return fmt.Errorf("upsert source %s: %w", source.ID, err)
		}
	}

	return tx.Commit()
}

// GetSource retrieves a source by ID.
func (s *SQLiteStore) GetSource(id string) (*models.Source, error) {
	row := s.db.QueryRow(`SELECT id, name, type, url, created_at FROM sources WHERE id = ?`, id)
	return scanSource(row)
}

// GetSourceByURL finds a source by its canonical feed URL.
func (s *SQLiteStore) GetSourceByURL(url string) (*models.Source, error) {
	row := s.db.QueryRow(`SELECT id, name, type, url, created_at FROM sources WHERE url = ?`, url)
	return scanSource(row)
}

// ListSources returns all sources, newest first.
func (s *SQLiteStore) ListSources() ([]*models.Source, error) {
	rows, err := s.db.Query(`SELECT id, name, type, url, created_at FROM sources ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var sources []*models.Source
	for rows.Next() {
		var src models.Source
		var typ string
		if err := rows.Scan(&src.ID, &src.Name, &typ, &src.URL, &src.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		src.Type = models.SourceType(typ)
		sources = append(sources, &src)
	}
	return sources, rows.Err()
}

// UpdateSource renames or re-points an existing source.
func (s *SQLiteStore) UpdateSource(id, name, url string) error {
	result, err := s.db.Exec(`UPDATE sources SET name = ?, url = ? WHERE id = ?`, name, url, id)
	if err != nil {
		return fmt.Errorf("update source: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("source %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteSourceCascade removes a source and all its items atomically.
// The items cascade via the foreign key inside the same statement.
func (s *SQLiteStore) DeleteSourceCascade(id string) error {
	result, err := s.db.Exec(`DELETE FROM sources WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("source %s: %w", id, ErrNotFound)
	}
	return nil
}

// Item operations

const itemColumns = `id, source_id, source_type, title, summary, content, url, author,
	audio_url, audio_mime_type, audio_duration_seconds, episode_number, image_url,
	published_at, saved, read_state, created_at`

// GetItemsByIDs retrieves the items with the given ids.
func (s *SQLiteStore) GetItemsByIDs(ids []string) ([]*models.ContentItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Join(lo.Map(ids, func(string, int) string { return "?" }), ",")
	args := lo.Map(ids, func(id string, _ int) any { return id })

	rows, err := s.db.Query(`SELECT `+itemColumns+` FROM items WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("query items by ids: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// UpsertItems inserts or fully refreshes merged items by id. Callers
// are expected to have merged user-owned fields already; the row is
// written whole.
func (s *SQLiteStore) UpsertItems(items []models.ContentItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			summary = excluded.summary,
			content = excluded.content,
			url = excluded.url,
			author = excluded.author,
			audio_url = excluded.audio_url,
			audio_mime_type = excluded.audio_mime_type,
			audio_duration_seconds = excluded.audio_duration_seconds,
			episode_number = excluded.episode_number,
			image_url = excluded.image_url,
			published_at = excluded.published_at,
			saved = excluded.saved,
			read_state = excluded.read_state
	`
	for _, item := range items {
		_, err := tx.Exec(query,
			item.ID, item.SourceID, string(item.SourceType), item.Title, item.Summary,
			item.Content, item.URL, item.Author, item.AudioURL, item.AudioMimeType,
			item.AudioDurationSeconds, item.EpisodeNumber, item.ImageURL,
			timeToSQL(item.PublishedAt), boolToInt(item.Saved), string(item.ReadState),
			item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert item %s: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

// GetItemByIDOrPrefix fetches an item by exact id, falling back to a
// unique prefix match (min 6 chars).
func (s *SQLiteStore) GetItemByIDOrPrefix(ref string) (*models.ContentItem, error) {
	row := s.db.QueryRow(`SELECT `+itemColumns+` FROM items WHERE id = ?`, ref)
	item, err := scanItem(row)
	if err == nil {
		return item, nil
	}

	if len(ref) < 6 {
		return nil, fmt.Errorf("item %s: %w", ref, ErrNotFound)
	}

	rows, err := s.db.Query(`SELECT `+itemColumns+` FROM items WHERE id LIKE ?`, ref+"%")
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	matches, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("item %s: %w", ref, ErrNotFound)
	}
	if len(matches) > 1 {
		return nil, fmt.Errorf("ambiguous prefix %s matches %d items", ref, len(matches))
	}
	return matches[0], nil
}

// ListItems returns items matching the filter, newest first.
func (s *SQLiteStore) ListItems(filter *ItemFilter) ([]*models.ContentItem, error) {
	query := `SELECT ` + itemColumns + ` FROM items`

	var conditions []string
	var args []any

	if filter != nil {
		if filter.SourceID != nil {
			conditions = append(conditions, "source_id = ?")
			args = append(args, *filter.SourceID)
		}
		if filter.UnreadOnly {
			conditions = append(conditions, "read_state = ?")
			args = append(args, string(models.StateUnread))
		}
		if filter.SavedOnly {
			conditions = append(conditions, "saved = 1")
		}
		if filter.Since != nil {
			conditions = append(conditions, "published_at >= ?")
			args = append(args, *filter.Since)
		}
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY published_at DESC"
	if filter != nil && filter.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *filter.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// UpdateReadState sets the read state of an item.
func (s *SQLiteStore) UpdateReadState(id string, state models.ReadState) error {
	result, err := s.db.Exec(`UPDATE items SET read_state = ? WHERE id = ?`, string(state), id)
	if err != nil {
		return fmt.Errorf("update read state: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateSaved sets the saved flag of an item.
func (s *SQLiteStore) UpdateSaved(id string, saved bool) error {
	result, err := s.db.Exec(`UPDATE items SET saved = ? WHERE id = ?`, boolToInt(saved), id)
	if err != nil {
		return fmt.Errorf("update saved: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return nil
}

// CountItems returns the total number of stored items.
func (s *SQLiteStore) CountItems() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}

// CountUnread returns the number of unread items.
func (s *SQLiteStore) CountUnread() (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM items WHERE read_state = ?`
	if err := s.db.QueryRow(query, string(models.StateUnread)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

// SourceStats returns per-source item counts.
func (s *SQLiteStore) SourceStats() ([]SourceStatsRow, error) {
	query := `
		SELECT s.id, s.name, s.type,
			   COUNT(i.id) AS item_count,
			   SUM(CASE WHEN i.read_state = 'unread' THEN 1 ELSE 0 END) AS unread_count
		FROM sources s
		LEFT JOIN items i ON s.id = i.source_id
		GROUP BY s.id
		ORDER BY s.created_at DESC
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query source stats: %w", err)
	}
	defer rows.Close()

	var stats []SourceStatsRow
	for rows.Next() {
		var row SourceStatsRow
		var typ string
		var unread sql.NullInt64
		if err := rows.Scan(&row.SourceID, &row.SourceName, &typ, &row.ItemCount, &unread); err != nil {
			return nil, fmt.Errorf("scan source stats: %w", err)
		}
		row.SourceType = models.SourceType(typ)
		if unread.Valid {
			row.UnreadCount = int(unread.Int64)
		}
		stats = append(stats, row)
	}
	return stats, rows.Err()
}

var _ Store = (*SQLiteStore)(nil)

// Scan helpers

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row *sql.Row) (*models.Source, error) {
	var src models.Source
	var typ string
	if err := row.Scan(&src.ID, &src.Name, &typ, &src.URL, &src.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("source: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scan source: %w", err)
	}
	src.Type = models.SourceType(typ)
	return &src, nil
}

func scanItemFields(scanner rowScanner) (*models.ContentItem, error) {
	var item models.ContentItem
	var sourceType, readState string
	var publishedAt sql.NullTime
	var savedInt int
	var duration, episode sql.NullInt64

	err := scanner.Scan(
		&item.ID, &item.SourceID, &sourceType, &item.Title, &item.Summary,
		&item.Content, &item.URL, &item.Author, &item.AudioURL, &item.AudioMimeType,
		&duration, &episode, &item.ImageURL, &publishedAt, &savedInt, &readState,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.SourceType = models.SourceType(sourceType)
	item.ReadState = models.ReadState(readState)
	item.Saved = savedInt == 1
	if publishedAt.Valid {
		item.PublishedAt = &publishedAt.Time
	}
	if duration.Valid {
		d := int(duration.Int64)
		item.AudioDurationSeconds = &d
	}
	if episode.Valid {
		e := int(episode.Int64)
		item.EpisodeNumber = &e
	}
	return &item, nil
}

func scanItem(row *sql.Row) (*models.ContentItem, error) {
	item, err := scanItemFields(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("item: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scan item: %w", err)
	}
	return item, nil
}

func scanItems(rows *sql.Rows) ([]*models.ContentItem, error) {
	var items []*models.ContentItem
	for rows.Next() {
		item, err := scanItemFields(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func timeToSQL(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
