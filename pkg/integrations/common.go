package integrations

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	errs "github.com/matzehuels/ghfolio/pkg/errors"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a user, repository, ref or file doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrRateLimited is returned when the API quota is exhausted. The error
	// chain also holds an [errs.RateLimitedError] with the reset time.
	ErrRateLimited = errors.New("rate limited")
)

// NewHTTPClient creates an HTTP client with a standard timeout for API requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// EscapePath percent-encodes each segment of a slash-separated path, leaving
// the separators intact.
func EscapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}

// rateLimitReset reads the reset time advertised by a rate-limited response.
// Retry-After wins over X-RateLimit-Reset when both are present.
func rateLimitReset(h http.Header, now time.Time) time.Time {
	if s := h.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil {
			return now.Add(time.Duration(secs) * time.Second)
		}
	}
	if s := h.Get("X-RateLimit-Reset"); s != "" {
		if epoch, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Unix(epoch, 0)
		}
	}
	return time.Time{}
}

// isRateLimited reports whether a response signals an exhausted quota.
// GitHub answers 403 for both permission problems and primary rate limits;
// only the latter sets X-RateLimit-Remaining to zero.
func isRateLimited(code int, h http.Header) bool {
	switch code {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden:
		return h.Get("X-RateLimit-Remaining") == "0" || h.Get("Retry-After") != ""
	}
	return false
}

func rateLimitedError(h http.Header, now time.Time) error {
	return &rateLimitErr{detail: errs.NewRateLimited(rateLimitReset(h, now), now)}
}

// rateLimitErr matches both ErrRateLimited and *errs.RateLimitedError.
type rateLimitErr struct {
	detail *errs.RateLimitedError
}

func (e *rateLimitErr) Error() string   { return e.detail.Error() }
func (e *rateLimitErr) Unwrap() []error { return []error{ErrRateLimited, e.detail} }
