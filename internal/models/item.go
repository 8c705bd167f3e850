// ABOUTME: ContentItem model, the unified shape for ingested content
// ABOUTME: Splits source-owned descriptive fields from user-owned state

package models

import "time"

// ReadState tracks whether the user has read an item.
type ReadState string

const (
	StateUnread ReadState = "unread"
	StateRead   ReadState = "read"
)

// ContentItem is a normalized unit of ingested content (article,
// episode, or video). ID is a stable content-addressed hash derived
// from the owning source and the item's natural key, so repeated syncs
// of unchanged content land on the same row.
//
// Saved and ReadState are user-owned and survive refreshes; every
// other field is refreshed from the source on each sync.
type ContentItem struct {
	ID         string
	SourceID   string
	SourceType SourceType
	Title      string
	Summary    string
	Content    string
	URL        string
	Author     string

	// Podcast-only fields, best-effort.
	AudioURL             string
	AudioMimeType        string
	AudioDurationSeconds *int
	EpisodeNumber        *int
	ImageURL             string

	PublishedAt *time.Time
	Saved       bool
	ReadState   ReadState
	CreatedAt   time.Time
}

// MarkRead marks the item as read.
func (i *ContentItem) MarkRead() {
	i.ReadState = StateRead
}

// MarkUnread marks the item as unread.
func (i *ContentItem) MarkUnread() {
	i.ReadState = StateUnread
}

// IsRead reports whether the item has been read.
func (i *ContentItem) IsRead() bool {
	return i.ReadState == StateRead
}
