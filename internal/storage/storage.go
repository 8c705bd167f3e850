// ABOUTME: Storage interface and filter types for skimmer persistence
// ABOUTME: Defines the contract for source and content-item operations

package storage

import (
	"errors"
	"time"

	"github.com/quinn/skimmer/internal/models"
)

// ErrNotFound is returned when a requested source or item does not exist.
var ErrNotFound = errors.New("not found")

// ItemFilter specifies criteria for listing content items.
type ItemFilter struct {
	SourceID   *string
	UnreadOnly bool
	SavedOnly  bool
	Since      *time.Time
	Limit      *int
}

// SourceStatsRow represents per-source item counts.
type SourceStatsRow struct {
	SourceID    string
	SourceName  string
	SourceType  models.SourceType
	ItemCount   int
	UnreadCount int
}

// Store defines the persistence contract for skimmer data.
type Store interface {
	// Close closes the store and releases resources.
	Close() error

	// Source operations

	// CreateSource stores a new source.
	CreateSource(source *models.Source) error

	// UpsertSources inserts or refreshes the given sources by id.
	UpsertSources(sources []*models.Source) error

	// GetSource retrieves a source by ID.
	GetSource(id string) (*models.Source, error)

	// GetSourceByURL finds a source by its canonical feed URL.
	GetSourceByURL(url string) (*models.Source, error)

	// ListSources returns all sources, newest first.
	ListSources() ([]*models.Source, error)

	// UpdateSource renames or re-points an existing source.
	UpdateSource(id, name, url string) error

	// DeleteSourceCascade removes a source and all its items in one
	// atomic operation; partial cleanup is never observable.
	DeleteSourceCascade(id string) error

	// Item operations

	// GetItemsByIDs retrieves the items with the given ids; missing ids
	// are simply absent from the result.
	GetItemsByIDs(ids []string) ([]*models.ContentItem, error)

	// UpsertItems inserts or fully refreshes merged items by id.
	UpsertItems(items []models.ContentItem) error

	// GetItemByIDOrPrefix fetches an item by exact id, falling back to
	// unique prefix match (min 6 chars).
	GetItemByIDOrPrefix(ref string) (*models.ContentItem, error)

	// ListItems returns items matching the filter, newest first.
	ListItems(filter *ItemFilter) ([]*models.ContentItem, error)

	// UpdateReadState sets the read state of an item.
	UpdateReadState(id string, state models.ReadState) error

	// UpdateSaved sets the saved flag of an item.
	UpdateSaved(id string, saved bool) error

	// CountItems returns the total number of stored items.
	CountItems() (int, error)

	// CountUnread returns the number of unread items.
	CountUnread() (int, error)

	// SourceStats returns per-source item counts.
	SourceStats() ([]SourceStatsRow, error)
}
