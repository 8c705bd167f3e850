// ABOUTME: Content display helpers for terminal rendering
// ABOUTME: HTML detection, HTML-to-Markdown conversion, and previews

package content

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

var htmlTagPattern = regexp.MustCompile(`<\s*(p|div|span|a|br|img|h[1-6]|ul|ol|li|table|tr|td|th|strong|em|b|i|code|pre|blockquote)[^>]*>`)

// IsHTML checks whether content appears to be HTML.
func IsHTML(s string) bool {
	if strings.Contains(s, "<!DOCTYPE") || strings.Contains(s, "<html") {
		return true
	}
	return htmlTagPattern.MatchString(s)
}

// ToMarkdown converts HTML content to Markdown for terminal display.
// Non-HTML content and failed conversions pass through unchanged.
func ToMarkdown(s string) string {
	if s == "" || !IsHTML(s) {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(markdown)
}

// Preview returns the first n runes of s on a single line, with an
// ellipsis when truncated.
func Preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}
