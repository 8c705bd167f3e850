// ABOUTME: YouTube resolution: channel IDs, playlists, and @handle lookup
// ABOUTME: Handles resolve via oEmbed first, then page-HTML pattern scan

package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// youtubeFeedBase is the canonical host for feed URLs, regardless of
// where lookups are pointed.
const youtubeFeedBase = "https://www.youtube.com"

// channelIDPattern matches a YouTube channel ID: UC plus 22 characters.
var channelIDPattern = regexp.MustCompile(`UC[0-9A-Za-z_-]{22}`)

// channelIDKeys are the embedded-JSON key names a channel ID hides
// behind on public channel pages, scanned in plain and escaped forms.
var channelIDKeys = []string{"channelId", "browseId", "externalId"}

func youtubeChannelFeed(channelID string) string {
	return youtubeFeedBase + "/feeds/videos.xml?channel_id=" + channelID
}

func youtubePlaylistFeed(playlistID string) string {
	return youtubeFeedBase + "/feeds/videos.xml?playlist_id=" + playlistID
}

// resolveYouTube accepts a feed URL, channel URL or bare channel ID, a
// playlist URL, or an @handle, and resolves to the canonical
// videos-feed URL.
func (r *Resolver) resolveYouTube(ctx context.Context, input string) (*Resolution, error) {
	// Already a videos feed: pass through untouched.
	if strings.Contains(input, "/feeds/videos.xml") {
		if err := validateHTTPURL(input); err != nil {
			return nil, err
		}
		return &Resolution{FeedURL: input}, nil
	}

	// Bare channel ID.
	if channelIDPattern.MatchString(input) && len(input) == 24 {
		return &Resolution{FeedURL: youtubeChannelFeed(input)}, nil
	}

	// Bare handle.
	if strings.HasPrefix(input, "@") {
		return r.resolveYouTubeHandle(ctx, input)
	}

	if err := validateHTTPURL(input); err != nil {
		return nil, err
	}
	u, _ := url.Parse(input)

	// Playlist URL.
	if list := u.Query().Get("list"); list != "" {
		return &Resolution{FeedURL: youtubePlaylistFeed(list)}, nil
	}

	// Channel URL (/channel/UC...).
	if id := channelIDPattern.FindString(u.Path); id != "" {
		return &Resolution{FeedURL: youtubeChannelFeed(id)}, nil
	}

	// Handle embedded in the URL path (youtube.com/@name).
	if handle := handleFromPath(u.Path); handle != "" {
		return r.resolveYouTubeHandle(ctx, handle)
	}

	return nil, fmt.Errorf("%w: no channel, playlist, or handle in %q", ErrInvalidURL, input)
}

// handleFromPath extracts an @name segment from a URL path.
func handleFromPath(path string) string {
	for _, segment := range strings.Split(path, "/") {
		if strings.HasPrefix(segment, "@") && len(segment) > 1 {
			return segment
		}
	}
	return ""
}

// oembedResponse is the subset of the oEmbed payload resolution needs.
type oembedResponse struct {
	AuthorName string `json:"author_name"`
	AuthorURL  string `json:"author_url"`
	Title      string `json:"title"`
}

// resolveYouTubeHandle resolves an @name handle to a channel feed.
// It tries oEmbed lookups against candidate handle URLs to recover an
// author URL containing the channel ID, then falls back to scanning the
// handle's public page HTML for embedded channel-ID keys.
func (r *Resolver) resolveYouTubeHandle(ctx context.Context, handle string) (*Resolution, error) {
	name := strings.TrimPrefix(handle, "@")
	candidates := []string{
		r.youtubeBase + "/@" + name,
		r.youtubeBase + "/c/" + name,
		r.youtubeBase + "/user/" + name,
	}

	for _, candidate := range candidates {
		oembedURL := r.youtubeBase + "/oembed?url=" + url.QueryEscape(candidate) + "&format=json"
		body, err := r.fetch(ctx, oembedURL)
		if err != nil {
			continue
		}
		var resp oembedResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			continue
		}
		if id := channelIDPattern.FindString(resp.AuthorURL); id != "" {
			return &Resolution{FeedURL: youtubeChannelFeed(id), DisplayName: resp.AuthorName}, nil
		}
	}

	// Fallback: fetch the handle's public page and scan for a channel ID.
	body, err := r.fetch(ctx, candidates[0])
	if err == nil {
		if id := scanChannelID(body); id != "" {
			return &Resolution{FeedURL: youtubeChannelFeed(id), DisplayName: handle}, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrUnresolvedHandle, handle)
}

// scanChannelID searches page HTML for a channel ID under the known
// embedded-JSON keys (plain and escaped forms), then falls back to
// walking the document for identifying meta tags.
func scanChannelID(body []byte) string {
	page := string(body)

	for _, key := range channelIDKeys {
		patterns := []string{
			`"` + key + `":"(UC[0-9A-Za-z_-]{22})"`,
			`\\"` + key + `\\":\\"(UC[0-9A-Za-z_-]{22})\\"`,
		}
		for _, pattern := range patterns {
			re := regexp.MustCompile(pattern)
			if m := re.FindStringSubmatch(page); m != nil {
				return m[1]
			}
		}
	}

	return metaChannelID(page)
}

// metaChannelID walks HTML looking for <meta itemprop="identifier"> or
// <meta itemprop="channelId"> carrying a channel ID.
func metaChannelID(page string) string {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return ""
	}

	var found string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "meta" {
			var itemprop, content string
			for _, attr := range n.Attr {
				switch attr.Key {
				case "itemprop":
					itemprop = attr.Val
				case "content":
					content = attr.Val
				}
			}
			if itemprop == "identifier" || itemprop == "channelId" {
				if id := channelIDPattern.FindString(content); id != "" {
					found = id
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found
}
