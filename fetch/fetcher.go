// Package fetch downloads channel repodata with DNS caching, optional retry
// with exponential backoff, and per-host circuit breaking.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cenk/backoff"
	"github.com/rs/dnscache"
)

var (
	ErrNotFound     = errors.New("repodata not found")
	ErrRateLimited  = errors.New("rate limited by upstream")
	ErrUpstreamDown = errors.New("upstream channel unavailable")
)

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s: %s", e.StatusCode, e.URL, e.Body)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// Unwrap maps the status code onto the package sentinels.
func (e *HTTPError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.StatusCode >= 500:
		return ErrUpstreamDown
	}
	return nil
}

func (e *HTTPError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Artifact contains the response from fetching an upstream document.
type Artifact struct {
	Body        io.ReadCloser
	Size        int64 // -1 if unknown
	ContentType string
	ETag        string
}

// FetcherInterface defines the interface for repodata fetchers.
type FetcherInterface interface {
	Fetch(ctx context.Context, url string) (*Artifact, error)
}

// Fetcher downloads documents from conda channels.
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	breakers   *Breakers
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxRetries sets the maximum retry attempts. The default is 0: the
// first failure is returned.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		f.maxRetries = n
	}
}

// WithBaseDelay sets the initial delay for exponential backoff.
func WithBaseDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.baseDelay = d
	}
}

// WithBreakers shares a breaker set between fetchers.
func WithBreakers(b *Breakers) Option {
	return func(f *Fetcher) {
		f.breakers = b
	}
}

// WithTripThreshold sets how many consecutive failed requests open a host's
// breaker.
func WithTripThreshold(n int64) Option {
	return func(f *Fetcher) {
		f.breakers = NewBreakers(n)
	}
}

// WithTimeout sets the overall timeout of a single request.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// NewFetcher creates a new Fetcher with the given options.
func NewFetcher(opts ...Option) *Fetcher {
	resolver := &dnscache.Resolver{}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	f := &Fetcher{
		client: &http.Client{
			Timeout: 5 * time.Minute, // repodata.json for conda-forge is large
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					host, port, err := net.SplitHostPort(addr)
					if err != nil {
						return nil, err
					}
					ips, err := resolver.LookupHost(ctx, host)
					if err != nil {
						return nil, err
					}
					for _, ip := range ips {
						conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
						if err == nil {
							return conn, nil
						}
					}
					return nil, fmt.Errorf("failed to dial any resolved IP for %s", host)
				},
				Proxy:                 http.ProxyFromEnvironment,
				MaxIdleConns:          10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		userAgent:  "repodata-patches/1.0",
		maxRetries: 0,
		baseDelay:  500 * time.Millisecond,
		maxDelay:   30 * time.Second,
		breakers:   NewBreakers(DefaultTripThreshold),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// newBackOff returns the retry delay schedule: exponential from baseDelay
// with 10% jitter.
func (f *Fetcher) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.baseDelay
	b.MaxInterval = f.maxDelay
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.1
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Fetch downloads the document at url.
// The caller must close the returned Artifact.Body when done.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Artifact, error) {
	var lastErr error
	schedule := f.newBackOff()

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(schedule.NextBackOff()):
			}
		}

		var artifact *Artifact
		err := f.breakers.call(url, func() error {
			var fetchErr error
			artifact, fetchErr = f.doFetch(ctx, url)
			return fetchErr
		})
		if err == nil {
			return artifact, nil
		}

		var openErr *BreakerOpenError
		if errors.As(err, &openErr) {
			if lastErr != nil {
				return nil, fmt.Errorf("%w after %w", err, lastErr)
			}
			return nil, err
		}

		lastErr = err

		// Only rate limits and server errors are worth another attempt.
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.retryable() {
			continue
		}
		return nil, err
	}

	return nil, lastErr
}

// BreakerState returns "open" or "closed" for every host fetched so far.
func (f *Fetcher) BreakerState() map[string]string {
	return f.breakers.BreakerState()
}

func (f *Fetcher) doFetch(ctx context.Context, url string) (*Artifact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		_ = resp.Body.Close()
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url, Body: string(body)}
	}

	size := int64(-1)
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			size = n
		}
	}

	return &Artifact{
		Body:        resp.Body,
		Size:        size,
		ContentType: resp.Header.Get("Content-Type"),
		ETag:        resp.Header.Get("ETag"),
	}, nil
}
