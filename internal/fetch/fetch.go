// ABOUTME: HTTP fetcher used for feed bodies and source resolution lookups
// ABOUTME: Fixed User-Agent, response size cap, and private-range blocking

package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// MaxResponseSize caps response bodies to guard against runaway feeds.
const MaxResponseSize = 10 * 1024 * 1024 // 10MB

// UserAgent identifies skimmer to remote servers on every request.
const UserAgent = "skimmer/1.0 (feed reader)"

var httpClient = &http.Client{
	Timeout: 30 * time.Second,
}

// isPrivateIP checks if an IP address is in a private range.
// Loopback is allowed so tests can run against httptest servers.
func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() {
		return false
	}
	return ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
}

// Get retrieves a URL and returns the response body.
// Non-200 responses are errors. Responses over MaxResponseSize are
// rejected rather than truncated.
func Get(ctx context.Context, urlStr string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if ips, err := net.LookupIP(req.URL.Hostname()); err == nil {
		for _, ip := range ips {
			if isPrivateIP(ip) {
				return nil, fmt.Errorf("access to private IP ranges is not allowed")
			}
		}
	}

	req.Header.Set("User-Agent", UserAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", urlStr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status code %d", urlStr, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response too large (exceeds %d bytes)", MaxResponseSize)
	}

	return body, nil
}
