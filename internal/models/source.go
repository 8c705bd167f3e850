// ABOUTME: Source model and the closed set of source types
// ABOUTME: Each type carries an input mode, display name, and enabled flag

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SourceType tags a source with its resolution and sync strategy.
type SourceType string

const (
	TypeRSS     SourceType = "rss"
	TypePodcast SourceType = "podcast"
	TypeYouTube SourceType = "youtube"
	TypeMedium  SourceType = "medium"
	TypeBluesky SourceType = "bluesky"
	TypeCustom  SourceType = "custom"
)

// InputMode describes what kind of user input a source type accepts.
type InputMode int

const (
	// InputURL means the input must already be a fetchable http(s) URL.
	InputURL InputMode = iota
	// InputURLOrHandle also accepts @name-style handles that need
	// indirect resolution to a feed location.
	InputURLOrHandle
)

// TypeInfo is the per-type capability record.
type TypeInfo struct {
	DisplayName string
	Mode        InputMode
	Enabled     bool
}

// typeInfos is the fixed registry of known source types. Bluesky is
// registered but disabled until a feed mapping exists for it.
var typeInfos = map[SourceType]TypeInfo{
	TypeRSS:     {DisplayName: "RSS", Mode: InputURL, Enabled: true},
	TypePodcast: {DisplayName: "Podcast", Mode: InputURL, Enabled: true},
	TypeYouTube: {DisplayName: "YouTube", Mode: InputURLOrHandle, Enabled: true},
	TypeMedium:  {DisplayName: "Medium", Mode: InputURLOrHandle, Enabled: true},
	TypeBluesky: {DisplayName: "Bluesky", Mode: InputURLOrHandle, Enabled: false},
	TypeCustom:  {DisplayName: "Custom", Mode: InputURL, Enabled: true},
}

// sourceTypeOrder fixes the display order of types.
var sourceTypeOrder = []SourceType{
	TypeRSS, TypePodcast, TypeYouTube, TypeMedium, TypeBluesky, TypeCustom,
}

// SourceTypes returns all known source types in display order.
func SourceTypes() []SourceType {
	out := make([]SourceType, len(sourceTypeOrder))
	copy(out, sourceTypeOrder)
	return out
}

// Info returns the capability record for the type. Unknown tags are
// treated as custom sources.
func (t SourceType) Info() TypeInfo {
	if info, ok := typeInfos[t]; ok {
		return info
	}
	info := typeInfos[TypeCustom]
	info.DisplayName = string(t)
	return info
}

// Enabled reports whether the type is currently usable.
func (t SourceType) Enabled() bool {
	return t.Info().Enabled
}

// ParseSourceType maps a user-supplied string to a SourceType.
func ParseSourceType(s string) (SourceType, error) {
	t := SourceType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := typeInfos[t]; !ok {
		return "", fmt.Errorf("unknown source type: %q", s)
	}
	return t, nil
}

// Source represents a user-added subscription. URL is always the
// canonical, fetchable feed location, never a raw handle.
type Source struct {
	ID        string
	Name      string
	Type      SourceType
	URL       string
	CreatedAt time.Time
}

// NewSource creates a Source with a generated ID and timestamp.
func NewSource(name string, typ SourceType, url string) *Source {
	return &Source{
		ID:        uuid.New().String(),
		Name:      name,
		Type:      typ,
		URL:       url,
		CreatedAt: time.Now(),
	}
}

// DisplayName returns the source name, falling back to its URL.
func (s *Source) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.URL
}
