// ABOUTME: Tests for OPML parsing and serialization.
// ABOUTME: Folder flattening, type mapping, and file round-trips.

package opml_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quinn/skimmer/internal/models"
	"github.com/quinn/skimmer/internal/opml"
)

const nestedOPML = `<?xml version="1.0" encoding="UTF-8"?>
<opml version="2.0">
  <head><title>Subscriptions</title></head>
  <body>
    <outline text="Tech">
      <outline text="Example Blog" type="rss" xmlUrl="https://example.com/feed"/>
      <outline text="Example Pod" type="podcast" xmlUrl="https://example.com/pod"/>
    </outline>
    <outline text="Direct" type="unknown-kind" xmlUrl="https://direct.example.com/feed"/>
    <outline text="Folder only, no URL"/>
  </body>
</opml>`

func TestParse_FlattensFolders(t *testing.T) {
	outlines, err := opml.Parse(strings.NewReader(nestedOPML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(outlines) != 3 {
		t.Fatalf("expected 3 outlines, got %d", len(outlines))
	}
	if outlines[0].Title != "Example Blog" || outlines[0].Type != models.TypeRSS {
		t.Errorf("unexpected first outline: %+v", outlines[0])
	}
	if outlines[1].Type != models.TypePodcast {
		t.Errorf("expected podcast type, got %q", outlines[1].Type)
	}
	// Unknown type attributes default to RSS.
	if outlines[2].Type != models.TypeRSS {
		t.Errorf("expected unknown type to default to rss, got %q", outlines[2].Type)
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := opml.Parse(strings.NewReader("not xml at all <<<"))
	if err == nil {
		t.Fatal("expected error for invalid XML")
	}
}

func TestWriteAndParse_RoundTrip(t *testing.T) {
	sources := []*models.Source{
		{ID: "1", Name: "Blog", Type: models.TypeRSS, URL: "https://example.com/feed"},
		{ID: "2", Name: "Channel", Type: models.TypeYouTube, URL: "https://www.youtube.com/feeds/videos.xml?channel_id=UCx"},
	}

	var buf bytes.Buffer
	if err := opml.Write(&buf, "skimmer sources", sources); err != nil {
		t.Fatalf("Write: %v", err)
	}

	outlines, err := opml.Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(outlines) != 2 {
		t.Fatalf("expected 2 outlines, got %d", len(outlines))
	}
	if outlines[0].Title != "Blog" || outlines[0].URL != "https://example.com/feed" {
		t.Errorf("unexpected outline: %+v", outlines[0])
	}
	if outlines[1].Type != models.TypeYouTube {
		t.Errorf("expected youtube type preserved, got %q", outlines[1].Type)
	}
}

func TestWriteFile_ParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export", "sources.opml")
	sources := []*models.Source{
		{ID: "1", Name: "Blog", Type: models.TypeRSS, URL: "https://example.com/feed"},
	}

	if err := opml.WriteFile(path, "skimmer sources", sources); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	outlines, err := opml.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(outlines) != 1 || outlines[0].URL != "https://example.com/feed" {
		t.Errorf("unexpected outlines: %+v", outlines)
	}
}
