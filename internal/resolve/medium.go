// ABOUTME: Medium resolution: handles, publications, and custom domains
// ABOUTME: Maps all inputs to canonical medium.com/feed/... locations

package resolve

import (
	"fmt"
	"net/url"
	"strings"
)

const mediumFeedBase = "https://medium.com/feed/"

// resolveMedium accepts an @handle, a Medium feed or profile or
// publication URL, or an arbitrary custom domain (for which /feed is
// appended).
func (r *Resolver) resolveMedium(input string) (*Resolution, error) {
	// Bare handle.
	if strings.HasPrefix(input, "@") {
		return &Resolution{FeedURL: mediumFeedBase + input, DisplayName: input}, nil
	}

	if err := validateHTTPURL(input); err != nil {
		return nil, err
	}
	u, _ := url.Parse(input)

	host := strings.ToLower(u.Hostname())
	if host != r.mediumHost && !strings.HasSuffix(host, "."+r.mediumHost) {
		// Custom domain publication: the feed lives at /feed.
		return &Resolution{FeedURL: strings.TrimRight(input, "/") + "/feed", DisplayName: host}, nil
	}

	// Medium-hosted: inspect the path.
	if strings.HasPrefix(u.Path, "/feed/") {
		return &Resolution{FeedURL: input}, nil
	}

	segment := firstPathSegment(u.Path)
	if segment == "" {
		return nil, fmt.Errorf("%w: no handle or publication in %q", ErrInvalidURL, input)
	}

	// Handles (/@name) and publications (/pub) both map under /feed/.
	return &Resolution{FeedURL: mediumFeedBase + segment, DisplayName: segment}, nil
}

func firstPathSegment(path string) string {
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			return segment
		}
	}
	return ""
}
