package hn

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Hiring threads are only ever fetched from the HN frontend.
const sourceHost = "news.ycombinator.com"

// userAgent mirrors a desktop browser; the HN frontend serves a reduced
// page to unknown agents.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

const defaultTimeout = 10 * time.Second

// Client fetches thread pages from the HN frontend.
// A single fetch attempt is made per call: no retry, no backoff.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the fetch timeout. Default is 10 seconds.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new HN page client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default().With("component", "hn-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ValidateThreadURL checks that rawURL points at the HN frontend.
// Returns ErrInvalidThreadURL otherwise. No I/O is performed.
func ValidateThreadURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidThreadURL, rawURL, err)
	}
	host := parsed.Hostname()
	if host != sourceHost && !strings.HasSuffix(host, "."+sourceHost) {
		return fmt.Errorf("%w: %q", ErrInvalidThreadURL, rawURL)
	}
	return nil
}

// FetchPage retrieves the raw HTML of a thread page.
// Any transport failure or non-success status aborts with ErrFetchFailed.
func (c *Client) FetchPage(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("fetch failed", "url", rawURL, "err", err)
		return "", fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("fetch returned non-success status", "url", rawURL, "status", resp.StatusCode)
		return "", fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %w", ErrFetchFailed, err)
	}

	return string(body), nil
}
