package infra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// maxBodyBytes caps how much of a response is read into memory.
const maxBodyBytes = 8 << 20

// HTTPStatusError is returned for responses with status >= 400.
type HTTPStatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// HTTPClient wraps http.Client with a user agent, default headers and an
// optional rate limiter shared by every request it sends.
type HTTPClient struct {
	client    *http.Client
	userAgent string
	limiter   *RateLimiter
}

// NewHTTPClient builds a client. A zero timeout means no client timeout;
// an empty user agent falls back to DefaultUserAgent.
func NewHTTPClient(timeout time.Duration, userAgent string, limiter *RateLimiter) *HTTPClient {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPClient{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		limiter:   limiter,
	}
}

// Standard exposes the underlying *http.Client for SDKs that need one.
func (c *HTTPClient) Standard() *http.Client { return c.client }

// UserAgent returns the configured user agent.
func (c *HTTPClient) UserAgent() string { return c.userAgent }

// Get performs a GET request and returns the body.
// The caller is responsible for closing the returned ReadCloser.
func (c *HTTPClient) Get(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/html, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", url, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &HTTPStatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	return resp.Body, nil
}

// GetBytes is Get followed by a bounded read of the whole body.
func (c *HTTPClient) GetBytes(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	body, err := c.Get(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body %s: %w", url, err)
	}
	return data, nil
}
