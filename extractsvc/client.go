// Package extractsvc carries extraction calls over HTTP: a rate-limited
// client implementing peel.Extractor and a chi handler that serves any
// peel.Extractor.
package extractsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/phanxgames/peel"
	"golang.org/x/time/rate"
)

const (
	defaultRatePerSecond = 2.0
	maxErrorBody         = 512
)

// ClientOptions configures a Client.
type ClientOptions struct {
	// RatePerSecond caps outgoing calls. Zero means 2.
	RatePerSecond float64
	// Timeout bounds each call. Zero means 30s.
	Timeout time.Duration
	// HTTPClient overrides the transport. Nil means a client with Timeout.
	HTTPClient *http.Client
}

// Client calls a remote extraction endpoint. Safe for concurrent use.
type Client struct {
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
}

var _ peel.Extractor = (*Client)(nil)

// NewClient creates a client posting to endpoint. The URL is used as given,
// so it names the route too, e.g. "http://localhost:8089/extract".
func NewClient(endpoint string, opts ClientOptions) *Client {
	rps := opts.RatePerSecond
	if rps <= 0 {
		rps = defaultRatePerSecond
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		endpoint: endpoint,
		http:     hc,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Extract posts the raw image bytes and decodes the JSON response.
func (c *Client) Extract(ctx context.Context, image []byte) (peel.ExtractResponse, error) {
	var resp peel.ExtractResponse
	if err := c.limiter.Wait(ctx); err != nil {
		return resp, fmt.Errorf("extract: rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(image))
	if err != nil {
		return resp, fmt.Errorf("extract: build request: %w", err)
	}
	req.Header.Set("Content-Type", http.DetectContentType(image))
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return resp, fmt.Errorf("extract: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return resp, fmt.Errorf("extract: %s: %s", res.Status, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return resp, fmt.Errorf("extract: decode response: %w", err)
	}
	return resp, nil
}
