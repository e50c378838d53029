package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// StatusError reports a non-200 answer from an HTTP server.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.StatusCode)
}

// HTTPOptions configures an HTTPStore.
type HTTPOptions struct {
	// Timeout for individual requests. Zero means none.
	Timeout time.Duration

	// ProbeMethod is "head" (default) or "get".
	ProbeMethod string

	// RateLimit in requests per second. Zero disables limiting.
	RateLimit float64

	// RateBurst maximum burst size when RateLimit is set.
	RateBurst int

	// UserAgent sent with every request.
	UserAgent string

	// Transport allows injecting a custom HTTP transport (for tests/stubs).
	Transport http.RoundTripper
}

// HTTPStore probes and fetches http and https URLs.
type HTTPStore struct {
	client      *http.Client
	probeMethod string
	userAgent   string
	limiter     *rate.Limiter
}

// NewHTTPStore creates an HTTPStore.
func NewHTTPStore(opts HTTPOptions) *HTTPStore {
	s := &HTTPStore{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: opts.Transport,
		},
		probeMethod: http.MethodHead,
		userAgent:   opts.UserAgent,
	}
	if opts.ProbeMethod == "get" {
		s.probeMethod = http.MethodGet
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return s
}

// Probe reports whether u answers with status 200. Servers that reject HEAD
// with 405 or 501 are asked again with GET.
func (s *HTTPStore) Probe(ctx context.Context, u *url.URL) error {
	status, err := s.status(ctx, s.probeMethod, u)
	if err != nil {
		return err
	}
	if s.probeMethod == http.MethodHead &&
		(status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
		status, err = s.status(ctx, http.MethodGet, u)
		if err != nil {
			return err
		}
		return statusErr(http.MethodGet, u, status)
	}
	return statusErr(s.probeMethod, u, status)
}

func statusErr(method string, u *url.URL, status int) error {
	if status != http.StatusOK {
		return &StatusError{Method: method, URL: u.Redacted(), StatusCode: status}
	}
	return nil
}

func (s *HTTPStore) status(ctx context.Context, method string, u *url.URL) (int, error) {
	resp, err := s.do(ctx, method, u)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close() //nolint:errcheck
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// Open issues a GET and returns the body. Any status other than 200 is an error.
func (s *HTTPStore) Open(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	resp, err := s.do(ctx, http.MethodGet, u)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, statusErr(http.MethodGet, u, resp.StatusCode)
	}
	return resp.Body, nil
}

func (s *HTTPStore) do(ctx context.Context, method string, u *url.URL) (*http.Response, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	return s.client.Do(req)
}
