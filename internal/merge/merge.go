// ABOUTME: Merge engine reconciling fetched items against stored ones
// ABOUTME: User-owned fields stick; source-owned fields refresh; dates pin

package merge

import (
	"time"

	"github.com/quinn/skimmer/internal/models"
)

// Items reconciles freshly normalized candidates against previously
// stored items, keyed by item id. The result is ready to upsert.
//
// Per candidate:
//   - PublishedAt: an existing non-nil value is pinned forever; else the
//     candidate's parsed value; else now. An item is never back-dated
//     once a timestamp is assigned, which keeps display order total
//     even when source dates are missing.
//   - Saved and ReadState come from the existing record when present;
//     new items default to unsaved and unread.
//   - Everything else (title, summary, content, url, author, media
//     fields) comes from the candidate: the source is authoritative for
//     descriptive content.
//
// Re-merging identical candidates against their own prior output is a
// no-op with respect to observable state.
func Items(existing map[string]models.ContentItem, candidates []models.ContentItem, now time.Time) []models.ContentItem {
	out := make([]models.ContentItem, 0, len(candidates))

	for _, c := range candidates {
		if prev, ok := existing[c.ID]; ok {
			c.Saved = prev.Saved
			c.ReadState = prev.ReadState
			c.CreatedAt = prev.CreatedAt
			if prev.PublishedAt != nil {
				c.PublishedAt = prev.PublishedAt
			}
		} else {
			c.Saved = false
			if c.ReadState == "" {
				c.ReadState = models.StateUnread
			}
			c.CreatedAt = now
		}

		if c.PublishedAt == nil {
			t := now
			c.PublishedAt = &t
		}

		out = append(out, c)
	}

	return out
}
