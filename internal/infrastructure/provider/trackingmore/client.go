// Package trackingmore is a TrackingProvider backed by the TrackingMore v4
// REST API.
package trackingmore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/trackflow/tracking-service/internal/api/metrics"
	"github.com/trackflow/tracking-service/internal/core/domain"
	"github.com/trackflow/tracking-service/internal/core/ports"
)

const (
	Name = "trackingmore"

	DefaultBaseURL = "https://api.trackingmore.com/v4"
	defaultTimeout = 15 * time.Second
	apiKeyHeader   = "Tracking-Api-Key"
	maxErrorBody   = 4 << 10
)

// Config captures the settings for the TrackingMore client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default client; Timeout is then ignored.
	HTTPClient *http.Client
}

// APIError is a non-success, non-conflict response. It matches
// domain.ErrProviderUnavailable with errors.Is.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("trackingmore %s: status %d: %s", e.Operation, e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return domain.ErrProviderUnavailable
}

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	now     func() time.Time
}

var _ ports.TrackingProvider = (*Client)(nil)

func New(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		http:    hc,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (c *Client) Name() string { return Name }

// Track registers the number with TrackingMore and returns its current
// state. A number TrackingMore already knows is fetched instead.
func (c *Client) Track(ctx context.Context, trackingNumber, carrierCode string) (*ports.ProviderResponse, error) {
	courier := CourierCode(carrierCode)

	body, err := json.Marshal(createRequest{TrackingNumber: trackingNumber, CourierCode: courier})
	if err != nil {
		return nil, err
	}

	status, payload, err := c.do(ctx, "create", http.MethodPost, c.baseURL+"/trackings/create", body)
	if err != nil {
		return nil, err
	}

	if status == http.StatusConflict {
		return c.fetchExisting(ctx, trackingNumber, carrierCode, courier)
	}
	if status < 200 || status > 299 {
		return nil, &APIError{Operation: "create", StatusCode: status, Body: truncate(payload)}
	}

	env, err := decode(payload)
	if err != nil {
		return nil, err
	}
	if env.Meta.Code == conflictMetaCode {
		return c.fetchExisting(ctx, trackingNumber, carrierCode, courier)
	}
	return normalize(env.Data.tracking, trackingNumber, carrierCode, c.now())
}

func (c *Client) fetchExisting(ctx context.Context, trackingNumber, carrierCode, courier string) (*ports.ProviderResponse, error) {
	metrics.ProviderConflictsTotal.WithLabelValues(Name).Inc()

	endpoint := fmt.Sprintf("%s/trackings/%s/%s", c.baseURL, url.PathEscape(courier), url.PathEscape(trackingNumber))
	status, payload, err := c.do(ctx, "get", http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &APIError{Operation: "get", StatusCode: status, Body: truncate(payload)}
	}

	env, err := decode(payload)
	if err != nil {
		return nil, err
	}
	return normalize(env.Data.tracking, trackingNumber, carrierCode, c.now())
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("trackingmore %s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ProviderRequestDuration.WithLabelValues(Name, op, "error").Observe(time.Since(start).Seconds())
		return 0, nil, fmt.Errorf("trackingmore %s: %w: %w", op, domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	metrics.ProviderRequestDuration.WithLabelValues(Name, op, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())
	if err != nil {
		return 0, nil, fmt.Errorf("trackingmore %s: read body: %w: %w", op, domain.ErrProviderUnavailable, err)
	}
	return resp.StatusCode, payload, nil
}

func decode(payload []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, malformed(err.Error())
	}
	return &env, nil
}

func malformed(reason string) error {
	return fmt.Errorf("trackingmore: %w: %s", domain.ErrMalformedProviderResponse, reason)
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return string(bytes.TrimSpace(b))
}
