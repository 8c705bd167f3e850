// ABOUTME: Source locator resolution turning user input into canonical feed URLs
// ABOUTME: Per-type strategies dispatched from a fixed registry

package resolve

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/quinn/skimmer/internal/feed"
	"github.com/quinn/skimmer/internal/fetch"
	"github.com/quinn/skimmer/internal/models"
)

// Resolution errors surfaced to the caller. These block the add-source
// action entirely; no sync is attempted on a failed resolution.
var (
	ErrBlankInput       = errors.New("input is blank")
	ErrInvalidURL       = errors.New("not a valid http(s) URL")
	ErrUnresolvedHandle = errors.New("could not resolve handle to a feed")
	ErrTypeDisabled     = errors.New("source type is not enabled")
	ErrUnsupported      = errors.New("unsupported source type")
)

// Resolution is the outcome of resolving user input: a canonical,
// fetchable feed URL plus an optional display name.
type Resolution struct {
	FeedURL     string
	DisplayName string
}

// FetchFunc retrieves a URL body. Injectable for tests.
type FetchFunc func(ctx context.Context, url string) ([]byte, error)

// Resolver resolves user input to feed locations per source type.
// Resolution never mutates state; it is a pure function of network
// responses and input.
type Resolver struct {
	fetch       FetchFunc
	youtubeBase string
	mediumHost  string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFetchFunc replaces the HTTP fetch used for lookups.
func WithFetchFunc(f FetchFunc) Option {
	return func(r *Resolver) { r.fetch = f }
}

// WithYouTubeBase overrides the YouTube lookup base URL (for tests).
// Canonical feed URLs in resolutions are unaffected.
func WithYouTubeBase(base string) Option {
	return func(r *Resolver) { r.youtubeBase = strings.TrimRight(base, "/") }
}

// New creates a Resolver with default network lookups.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		fetch:       fetch.Get,
		youtubeBase: "https://www.youtube.com",
		mediumHost:  "medium.com",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve turns arbitrary user input into a canonical feed location
// for the given source type.
func (r *Resolver) Resolve(ctx context.Context, input string, typ models.SourceType) (*Resolution, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrBlankInput
	}

	if !typ.Enabled() {
		return nil, fmt.Errorf("%w: %s", ErrTypeDisabled, typ.Info().DisplayName)
	}

	switch typ {
	case models.TypeRSS, models.TypePodcast, models.TypeCustom:
		return r.resolveDirect(ctx, input)
	case models.TypeYouTube:
		return r.resolveYouTube(ctx, input)
	case models.TypeMedium:
		return r.resolveMedium(input)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, typ)
	}
}

// resolveDirect handles URL-only types: the input must already be a
// fetchable feed URL. The display name is read from the feed's channel
// title, best-effort; a fetch failure leaves it empty rather than
// failing the resolution.
func (r *Resolver) resolveDirect(ctx context.Context, input string) (*Resolution, error) {
	if err := validateHTTPURL(input); err != nil {
		return nil, err
	}
	return &Resolution{
		FeedURL:     input,
		DisplayName: r.channelTitle(ctx, input),
	}, nil
}

// channelTitle fetches a feed and reads its title. Best-effort only.
func (r *Resolver) channelTitle(ctx context.Context, feedURL string) string {
	body, err := r.fetch(ctx, feedURL)
	if err != nil {
		return ""
	}
	parsed, err := feed.Parse(body)
	if err != nil {
		return ""
	}
	return parsed.Title
}

// validateHTTPURL checks for a syntactically valid http(s) URL with a
// non-empty host.
func validateHTTPURL(input string) error {
	u, err := url.Parse(input)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, input)
	}
	return nil
}
