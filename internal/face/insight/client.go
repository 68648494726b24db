package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config holds the configuration for the inference daemon client.
type Config struct {
	// BaseURL is the primary daemon address; FallbackURL is tried when the
	// primary cannot serve model loading (mirrors the local-then-CDN model
	// sourcing of the original pipeline).
	BaseURL     string
	FallbackURL string
	Timeout     time.Duration
	Model       string
	Detector    string
	RetryCount  int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:    "http://localhost:5005",
		Timeout:    30 * time.Second,
		Model:      "facenet",
		Detector:   "retinaface",
		RetryCount: 3,
	}
}

// Client is the HTTP client for the face inference daemon.
type Client struct {
	httpClient *http.Client
	config     Config

	// baseURL is the address that answered the status probe; empty until
	// the first successful probe.
	baseURL string
}

// NewClient creates a new inference daemon client.
func NewClient(config Config) *Client {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// Probe checks the primary and then the fallback daemon for readiness and
// pins the first one that answers. Returns the last error when both are
// exhausted.
func (c *Client) Probe(ctx context.Context) error {
	urls := []string{c.config.BaseURL}
	if c.config.FallbackURL != "" {
		urls = append(urls, c.config.FallbackURL)
	}

	var lastErr error
	for _, base := range urls {
		var status StatusResponse
		if err := c.doRequestAt(ctx, base, "GET", "/status", nil, &status); err != nil {
			lastErr = err
			continue
		}
		if !status.Ready {
			lastErr = fmt.Errorf("daemon at %s not ready", base)
			continue
		}
		c.baseURL = base
		return nil
	}
	return fmt.Errorf("%w: %v", ErrDaemonUnavailable, lastErr)
}

// Represent calls POST /represent to extract embeddings and eye landmarks.
func (c *Client) Represent(ctx context.Context, imageBase64 string) (*RepresentResponse, error) {
	req := RepresentRequest{
		Img:       imageBase64,
		Model:     c.config.Model,
		Detector:  c.config.Detector,
		Landmarks: true,
	}

	var resp RepresentResponse
	if err := c.doRequestWithRetry(ctx, "POST", "/represent", req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// maxBackoff is the maximum backoff duration for retries.
const maxBackoff = 30 * time.Second

// calculateBackoff returns 1s, 2s, 4s, 8s, etc. for a given attempt,
// capped at maxBackoff.
func calculateBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		return time.Second
	}
	seconds := 1
	for i := 1; i < attempt && i < 6; i++ {
		seconds *= 2
	}
	return time.Duration(seconds) * time.Second
}

// doRequestWithRetry executes an HTTP request with retry logic.
func (c *Client) doRequestWithRetry(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= c.config.RetryCount; attempt++ {
		if attempt > 0 {
			backoff := calculateBackoff(attempt)
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		lastErr = c.doRequest(ctx, method, path, body, result)
		if lastErr == nil {
			return nil
		}

		// Don't retry on context errors
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// Don't retry on client errors (4xx) - only retry on server errors (5xx)
		if isClientError(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("%w: %v", ErrDaemonUnavailable, lastErr)
}

// isClientError checks if the error is a 4xx client error.
func isClientError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	for status := 400; status < 500; status++ {
		if strings.Contains(errStr, fmt.Sprintf("status %d", status)) {
			return true
		}
	}
	return false
}

func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	base := c.baseURL
	if base == "" {
		base = c.config.BaseURL
	}
	return c.doRequestAt(ctx, base, method, path, body, result)
}

// doRequestAt executes a single HTTP request against an explicit base URL.
func (c *Client) doRequestAt(ctx context.Context, base, method, path string, body interface{}, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	url := base + path
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("daemon returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}

	return nil
}
