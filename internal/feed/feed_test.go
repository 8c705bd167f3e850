// ABOUTME: Tests for feed parsing into raw items.
// ABOUTME: Covers RSS, Atom date fallback, and podcast extras.

package feed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quinn/skimmer/internal/feed"
)

const rssSample = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Example Blog</title>
    <item>
      <guid>post-1</guid>
      <title>First Post</title>
      <link>https://example.com/1</link>
      <description>Hello world</description>
      <pubDate>Mon, 02 Jan 2006 15:04:05 -0700</pubDate>
      <author>alice@example.com (Alice)</author>
    </item>
  </channel>
</rss>`

const podcastSample = `<?xml version="1.0"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
  <channel>
    <title>Example Pod</title>
    <item>
      <guid>ep-42</guid>
      <title>Episode 42</title>
      <enclosure url="https://example.com/ep42.mp3" type="audio/mpeg" length="1024"/>
      <itunes:duration>1:02:03</itunes:duration>
      <itunes:episode>42</itunes:episode>
    </item>
  </channel>
</rss>`

const atomSample = `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Feed</title>
  <entry>
    <id>entry-1</id>
    <title>Entry One</title>
    <updated>2024-03-01T10:00:00Z</updated>
  </entry>
</feed>`

func TestParse_RSS(t *testing.T) {
	parsed, err := feed.Parse([]byte(rssSample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if parsed.Title != "Example Blog" {
		t.Errorf("expected title 'Example Blog', got %q", parsed.Title)
	}
	if len(parsed.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(parsed.Items))
	}

	item := parsed.Items[0]
	if item.GUID != "post-1" {
		t.Errorf("expected GUID 'post-1', got %q", item.GUID)
	}
	if item.Link != "https://example.com/1" {
		t.Errorf("expected link, got %q", item.Link)
	}
	if item.PubDateText != "Mon, 02 Jan 2006 15:04:05 -0700" {
		t.Errorf("expected raw pubDate text, got %q", item.PubDateText)
	}
}

func TestParse_PodcastExtras(t *testing.T) {
	parsed, err := feed.Parse([]byte(podcastSample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(parsed.Items))
	}

	item := parsed.Items[0]
	if item.EnclosureURL != "https://example.com/ep42.mp3" {
		t.Errorf("expected enclosure URL, got %q", item.EnclosureURL)
	}
	if item.EnclosureType != "audio/mpeg" {
		t.Errorf("expected enclosure type 'audio/mpeg', got %q", item.EnclosureType)
	}
	if item.DurationText != "1:02:03" {
		t.Errorf("expected duration text '1:02:03', got %q", item.DurationText)
	}
	if item.EpisodeText != "42" {
		t.Errorf("expected episode text '42', got %q", item.EpisodeText)
	}
}

func TestParse_AtomUpdatedFallback(t *testing.T) {
	parsed, err := feed.Parse([]byte(atomSample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(parsed.Items))
	}
	if parsed.Items[0].PubDateText == "" {
		t.Error("expected PubDateText to fall back to updated timestamp")
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := feed.Parse([]byte("this is not a feed"))
	if err == nil {
		t.Fatal("expected error for non-feed data")
	}
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rssSample))
	}))
	defer server.Close()

	parsed, err := feed.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Title != "Example Blog" {
		t.Errorf("expected title 'Example Blog', got %q", parsed.Title)
	}
}

func TestFetch_ParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("garbage"))
	}))
	defer server.Close()

	_, err := feed.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected parse error")
	}
}
