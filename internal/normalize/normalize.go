// ABOUTME: Normalization of raw feed items into the canonical ContentItem shape
// ABOUTME: Summary extraction, multi-format date parsing, podcast field parsing

package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/jaytaylor/html2text"

	"github.com/quinn/skimmer/internal/feed"
	"github.com/quinn/skimmer/internal/models"
)

// maxSummaryRunes is the display length budget for item summaries.
const maxSummaryRunes = 200

// dateLayouts is the ordered list of known publish-date formats.
// First successful parse wins; dateparse handles the long tail.
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Item maps a raw feed item into the canonical ContentItem shape for
// the given source. Returns false if the item has no natural key and
// must be excluded (not an error, just unidentifiable).
//
// Malformed optional fields (dates, durations, episode numbers) degrade
// to nil rather than rejecting the item.
func Item(source *models.Source, raw feed.RawItem) (models.ContentItem, bool) {
	key := NaturalKey(raw)
	if key == "" {
		return models.ContentItem{}, false
	}

	item := models.ContentItem{
		ID:          ItemID(source.ID, key),
		SourceID:    source.ID,
		SourceType:  source.Type,
		Title:       strings.TrimSpace(raw.Title),
		Summary:     Summary(raw.Description, raw.Content),
		Content:     raw.Content,
		URL:         raw.Link,
		Author:      strings.TrimSpace(raw.Author),
		PublishedAt: ParseDate(raw.PubDateText),
		ReadState:   models.StateUnread,
	}

	if source.Type == models.TypePodcast {
		item.AudioURL = raw.EnclosureURL
		item.AudioMimeType = raw.EnclosureType
		item.AudioDurationSeconds = ParseDurationSeconds(raw.DurationText)
		item.EpisodeNumber = parseEpisode(raw.EpisodeText)
		item.ImageURL = raw.ImageURL
	}

	return item, true
}

// Summary builds a plain-text summary, preferring the description and
// falling back to full content. HTML is stripped, whitespace collapsed,
// and the result truncated with an ellipsis marker.
func Summary(description, content string) string {
	text := description
	if strings.TrimSpace(text) == "" {
		text = content
	}
	if strings.TrimSpace(text) == "" {
		return ""
	}

	plain, err := html2text.FromString(text, html2text.Options{TextOnly: true})
	if err != nil {
		plain = text
	}

	plain = strings.Join(strings.Fields(plain), " ")

	runes := []rune(plain)
	if len(runes) > maxSummaryRunes {
		return strings.TrimSpace(string(runes[:maxSummaryRunes])) + "…"
	}
	return plain
}

// ParseDate parses publish-date text against the known layouts, then
// falls back to lenient parsing. Unparseable or absent text yields nil;
// the merge step assigns a first-seen fallback later.
func ParseDate(text string) *time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return &t
		}
	}

	if t, err := dateparse.ParseAny(text); err == nil {
		return &t
	}
	return nil
}

// ParseDurationSeconds parses podcast duration text. Digits-only input
// is seconds; colon-delimited input is H:MM:SS or MM:SS. Malformed
// text yields nil, never an error.
func ParseDurationSeconds(text string) *int {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if !strings.Contains(text, ":") {
		secs, err := strconv.Atoi(text)
		if err != nil || secs < 0 {
			return nil
		}
		return &secs
	}

	parts := strings.Split(text, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return nil
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return nil
		}
		total = total*60 + n
	}
	return &total
}

func parseEpisode(text string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 0 {
		return nil
	}
	return &n
}
