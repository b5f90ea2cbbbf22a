package integrations

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a resource doesn't exist on the server.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with a standard timeout for API requests.
func NewHTTPClient() *http.Client {
	return NewHTTPClientWithTimeout(httpTimeout)
}

// NewHTTPClientWithTimeout creates an HTTP client whose requests give up
// after d, including reading the body. A non-positive d means the default.
func NewHTTPClientWithTimeout(d time.Duration) *http.Client {
	if d <= 0 {
		d = httpTimeout
	}
	return &http.Client{Timeout: d}
}

// PathEscape percent-encodes s for use as a single URL path segment.
// Module names keep their "::" separators readable.
func PathEscape(s string) string { return url.PathEscape(s) }

// JoinURL joins a base URL and path segments, escaping each segment.
// Trailing slashes on base are dropped.
func JoinURL(base string, segments ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(PathEscape(s))
	}
	return b.String()
}
