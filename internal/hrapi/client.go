// Package hrapi is the client for the HR attendance backend. The agent
// only ever sends frames or opaque decisions; descriptors never leave the
// process.
package hrapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/veridesk/facegate/internal/domain"
)

// Config holds the backend connection settings.
type Config struct {
	BaseURL string
	// Token is the employee's bearer token, passed through opaquely.
	Token string
	// SigningSecret, when set, adds an HMAC signature header to check-in,
	// check-out and request submissions.
	SigningSecret string
	Timeout       time.Duration
	RetryCount    int
}

// signatureHeader carries the submission HMAC.
const signatureHeader = "X-Facegate-Signature"

// Client talks to the HR backend.
type Client struct {
	httpClient *http.Client
	config     Config
}

// NewClient creates a backend client.
func NewClient(config Config) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
	}
}

// ServerTime fetches the trusted server clock.
func (c *Client) ServerTime(ctx context.Context) (time.Time, error) {
	var resp ServerTimeResponse
	if err := c.get(ctx, "/attendance/time", &resp); err != nil {
		return time.Time{}, err
	}
	ts, err := time.Parse(time.RFC3339, resp.ISOTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse server time %q: %w", resp.ISOTime, err)
	}
	return ts, nil
}

// MyInfo fetches the employee's geofence configuration.
func (c *Client) MyInfo(ctx context.Context) (*EmployeeInfo, error) {
	var info EmployeeInfo
	if err := c.get(ctx, "/attendance/me/info", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// MyImages fetches the enrollment photos. A 4xx with a "No face images"
// detail maps to domain.ErrNoEnrollment so callers can block verification
// with a message directing the user to an administrator.
func (c *Client) MyImages(ctx context.Context) (*EnrollmentImages, error) {
	var images EnrollmentImages
	if err := c.get(ctx, "/attendance/me/images", &images); err != nil {
		if isNoEnrollment(err) {
			return nil, domain.ErrNoEnrollment.WithError(err)
		}
		return nil, err
	}
	if len(images.Images) == 0 {
		return nil, domain.ErrNoEnrollment
	}
	return &images, nil
}

// MatchFace submits one frame for server-side matching (remote strategy).
// Only the captured frame is transmitted, never descriptors.
func (c *Client) MatchFace(ctx context.Context, frame []byte) (*MatchFaceResponse, error) {
	req := MatchFaceRequest{Image: base64.StdEncoding.EncodeToString(frame)}
	var resp MatchFaceResponse
	if err := c.post(ctx, "/attendance/match-face", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CheckIn submits a check-in. Callers must have re-verified the geofence
// immediately before this call.
func (c *Client) CheckIn(ctx context.Context, lat, lng float64) error {
	return c.post(ctx, "/attendance/check-in", CheckPayload{Lat: lat, Lng: lng}, nil, true)
}

// CheckOut submits a check-out after a fresh geofence re-check.
func (c *Client) CheckOut(ctx context.Context, lat, lng float64) error {
	return c.post(ctx, "/attendance/check-out", CheckPayload{Lat: lat, Lng: lng}, nil, true)
}

// SubmitRequest files the manual-exception fallback.
func (c *Client) SubmitRequest(ctx context.Context, req *domain.AttendanceRequest) error {
	payload := RequestPayload{
		Type:   string(req.Kind),
		Reason: req.Reason,
		Lat:    req.Lat,
		Lng:    req.Lng,
	}
	if len(req.Snapshot) > 0 {
		payload.Snapshot = base64.StdEncoding.EncodeToString(req.Snapshot)
	}
	return c.post(ctx, "/attendance/request", payload, nil, true)
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.doWithRetry(ctx, http.MethodGet, path, nil, result, false)
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}, signed bool) error {
	return c.doWithRetry(ctx, http.MethodPost, path, body, result, signed)
}

// maxBackoff caps the retry backoff.
const maxBackoff = 30 * time.Second

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

func (c *Client) doWithRetry(ctx context.Context, method, path string, body, result interface{}, signed bool) error {
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

		lastErr = c.do(ctx, method, path, body, result, signed)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// 4xx responses are final; only transport and 5xx errors retry.
		if isClientError(lastErr) {
			return lastErr
		}
	}

	return domain.ErrNetwork.WithError(lastErr)
}

type statusError struct {
	status int
	detail string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.status, e.detail)
}

func isClientError(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.status >= 400 && se.status < 500
	}
	return false
}

func isNoEnrollment(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.status >= 400 && se.status < 500 &&
			strings.Contains(strings.ToLower(se.detail), "no face images")
	}
	return false
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}, signed bool) error {
	var payload []byte
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = b
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.Token)
	if signed && c.config.SigningSecret != "" {
		req.Header.Set(signatureHeader, Sign(c.config.SigningSecret, payload))
	}

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
		detail := string(respBody)
		var envelope ErrorResponse
		if json.Unmarshal(respBody, &envelope) == nil && envelope.Detail != "" {
			detail = envelope.Detail
		}
		return &statusError{status: resp.StatusCode, detail: detail}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
