// Package transport provides the HTTP client used by every upstream
// fetcher. It is a thin wrapper: shared client with a timeout, context on
// every request, and JSON helpers that fold non-success statuses into the
// error taxonomy.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/campusops/wayfind/pkg/errors"
)

// DefaultTimeout is the default timeout for upstream requests.
const DefaultTimeout = 30 * time.Second

// Client provides HTTP access to upstream sources.
type Client struct {
	http *http.Client
}

// New creates a transport client. A non-positive timeout falls back to
// DefaultTimeout.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{http: &http.Client{Timeout: timeout}}
}

// Get performs a GET request with optional query parameters. The caller
// owns the response body.
func (c *Client) Get(ctx context.Context, rawURL string, params map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.WrapResource("create", "request", "GET "+rawURL, err)
	}
	if len(params) > 0 {
		q := url.Values{}
		for key, value := range params {
			q.Set(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}
	req.Header.Set("Accept", "application/json")
	return c.http.Do(req)
}

// GetJSON performs a GET request and decodes a JSON response into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params map[string]string, out any) error {
	resp, err := c.Get(ctx, rawURL, params)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d: %w", rawURL, resp.StatusCode, errors.ErrSourceUnavailable)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: %v: %w", rawURL, err, errors.ErrMalformedPayload)
	}
	return nil
}

// GetBytes performs a GET request and returns the raw body.
func (c *Client) GetBytes(ctx context.Context, rawURL string, params map[string]string) ([]byte, error) {
	resp, err := c.Get(ctx, rawURL, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d: %w", rawURL, resp.StatusCode, errors.ErrSourceUnavailable)
	}
	return io.ReadAll(resp.Body)
}

// PostJSON performs a POST with a JSON body and decodes a JSON response
// into out. Extra headers are applied to the request.
func (c *Client) PostJSON(ctx context.Context, rawURL string, body any, headers map[string]string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.WrapResource("encode", "request body", rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(payload))
	if err != nil {
		return errors.WrapResource("create", "request", "POST "+rawURL, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("POST %s: status %d: %w", rawURL, resp.StatusCode, errors.ErrSourceUnavailable)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("POST %s: %v: %w", rawURL, err, errors.ErrMalformedPayload)
	}
	return nil
}
