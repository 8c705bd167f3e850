// ABOUTME: Feed fetching and parsing into raw items via gofeed
// ABOUTME: Podcast extras are read defensively; absence never fails a fetch

package feed

import (
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"

	"github.com/quinn/skimmer/internal/fetch"
)

// RawItem carries the fields extracted from one feed entry before
// normalization. All fields are optional; dates stay textual so the
// normalizer controls parsing.
type RawItem struct {
	GUID        string
	Link        string
	Title       string
	Description string
	Content     string
	Author      string
	PubDateText string

	// Podcast extras, best-effort.
	EnclosureURL  string
	EnclosureType string
	DurationText  string
	EpisodeText   string
	ImageURL      string
}

// Feed is the parsed result of fetching one feed location.
type Feed struct {
	Title string
	Items []RawItem
}

// Fetch retrieves a feed URL over HTTP and parses it.
func Fetch(ctx context.Context, feedURL string) (*Feed, error) {
	body, err := fetch.Get(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	parsed, err := Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}
	return parsed, nil
}

// Parse parses RSS/Atom/JSON-feed data into raw items.
func Parse(data []byte) (*Feed, error) {
	parser := gofeed.NewParser()
	parsed, err := parser.ParseString(string(data))
	if err != nil {
		return nil, err
	}

	out := &Feed{
		Title: parsed.Title,
		Items: make([]RawItem, 0, len(parsed.Items)),
	}

	for _, item := range parsed.Items {
		raw := RawItem{
			GUID:        item.GUID,
			Link:        item.Link,
			Title:       item.Title,
			Description: item.Description,
			Content:     item.Content,
			PubDateText: item.Published,
			Author:      authorName(item),
		}

		// Atom feeds populate Updated instead of Published.
		if raw.PubDateText == "" {
			raw.PubDateText = item.Updated
		}

		for _, enc := range item.Enclosures {
			if enc != nil && enc.URL != "" {
				raw.EnclosureURL = enc.URL
				raw.EnclosureType = enc.Type
				break
			}
		}

		if item.ITunesExt != nil {
			raw.DurationText = item.ITunesExt.Duration
			raw.EpisodeText = item.ITunesExt.Episode
			raw.ImageURL = item.ITunesExt.Image
		}
		if raw.ImageURL == "" && item.Image != nil {
			raw.ImageURL = item.Image.URL
		}

		out.Items = append(out.Items, raw)
	}

	return out, nil
}

func authorName(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	return ""
}
