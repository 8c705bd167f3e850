// ABOUTME: OPML import/export for skimmer sources
// ABOUTME: Maps outline type attributes to and from source types

package opml

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/quinn/skimmer/internal/models"
)

// Outline is a flat OPML entry describing one source.
type Outline struct {
	Title string
	Type  models.SourceType
	URL   string
}

type opmlXML struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    headXML  `xml:"head"`
	Body    bodyXML  `xml:"body"`
}

type headXML struct {
	Title string `xml:"title"`
}

type bodyXML struct {
	Outlines []outlineXML `xml:"outline"`
}

type outlineXML struct {
	Text     string       `xml:"text,attr"`
	Title    string       `xml:"title,attr,omitempty"`
	Type     string       `xml:"type,attr,omitempty"`
	XMLURL   string       `xml:"xmlUrl,attr,omitempty"`
	Children []outlineXML `xml:"outline,omitempty"`
}

// Parse reads OPML data and returns the flattened source outlines.
// Nested folders are flattened; outlines without a feed URL are
// skipped.
func Parse(r io.Reader) ([]Outline, error) {
	var doc opmlXML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode OPML: %w", err)
	}

	var out []Outline
	var collect func([]outlineXML)
	collect = func(nodes []outlineXML) {
		for _, node := range nodes {
			if node.XMLURL != "" {
				out = append(out, Outline{
					Title: outlineTitle(node),
					Type:  typeFromAttr(node.Type),
					URL:   node.XMLURL,
				})
			}
			collect(node.Children)
		}
	}
	collect(doc.Body.Outlines)
	return out, nil
}

// ParseFile reads OPML outlines from a file.
func ParseFile(path string) ([]Outline, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Write serializes sources as an OPML document.
func Write(w io.Writer, title string, sources []*models.Source) error {
	doc := opmlXML{
		Version: "2.0",
		Head:    headXML{Title: title},
		Body:    bodyXML{Outlines: make([]outlineXML, 0, len(sources))},
	}

	for _, src := range sources {
		doc.Body.Outlines = append(doc.Body.Outlines, outlineXML{
			Text:   src.DisplayName(),
			Title:  src.DisplayName(),
			Type:   attrFromType(src.Type),
			XMLURL: src.URL,
		})
	}

	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return fmt.Errorf("write XML header: %w", err)
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("encode OPML: %w", err)
	}
	return nil
}

// WriteFile serializes sources as an OPML file.
func WriteFile(path, title string, sources []*models.Source) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()
	return Write(file, title, sources)
}

// typeFromAttr maps an OPML outline type to a source type. Unknown or
// missing attributes default to RSS, the OPML convention.
func typeFromAttr(attr string) models.SourceType {
	if t, err := models.ParseSourceType(attr); err == nil && attr != "" {
		return t
	}
	return models.TypeRSS
}

func attrFromType(t models.SourceType) string {
	return string(t)
}

func outlineTitle(node outlineXML) string {
	if node.Title != "" {
		return node.Title
	}
	return node.Text
}
