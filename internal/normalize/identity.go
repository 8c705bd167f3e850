// ABOUTME: Stable content-addressed identity for ingested items
// ABOUTME: Natural key selection plus a deterministic hash over source and key

package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/quinn/skimmer/internal/feed"
)

// NaturalKey returns the best-available identifying string for a raw
// item: the first non-blank of guid, link, title, publish-date text.
// An empty result means the item cannot be identified and is dropped.
func NaturalKey(raw feed.RawItem) string {
	for _, candidate := range []string{raw.GUID, raw.Link, raw.Title, raw.PubDateText} {
		if s := strings.TrimSpace(candidate); s != "" {
			return s
		}
	}
	return ""
}

// ItemID derives the stable item identifier from the owning source and
// the item's natural key. The same inputs always produce the same id,
// across process restarts and repeated syncs.
func ItemID(sourceID, naturalKey string) string {
	sum := sha256.Sum256([]byte(sourceID + "|" + naturalKey))
	return hex.EncodeToString(sum[:])
}
