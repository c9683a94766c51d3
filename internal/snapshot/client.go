// Package snapshot provides the HTTP client for the probability-market
// aggregator's snapshot-by-key endpoint.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rewired-gh/oddswatch/internal/models"
)

// ErrNoData signals that the key is valid but the aggregator has no
// probability data for it. Distinct from transport or auth failures so
// callers can surface it differently.
var ErrNoData = errors.New("no probability data for this event")

// PaymentError carries the aggregator's instructive payment/authorization
// message, which must reach the user verbatim.
type PaymentError struct {
	Message string
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment required: %s", e.Message)
}

// ClientConfig tunes retry behavior for the snapshot client.
type ClientConfig struct {
	MaxRetries     int
	RetryDelayBase time.Duration
}

// Client fetches probability snapshots from the aggregator.
type Client struct {
	baseURL        string
	apiKey         string
	httpClient     *http.Client
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a snapshot client. The apiKey is passed through to the
// collaborator as a bearer credential; the engine does no auth handling of
// its own.
func NewClient(baseURL, apiKey string, timeout time.Duration, cfg ClientConfig) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelayBase <= 0 {
		cfg.RetryDelayBase = time.Second
	}
	return &Client{
		baseURL:        baseURL,
		apiKey:         apiKey,
		httpClient:     &http.Client{Timeout: timeout},
		maxRetries:     cfg.MaxRetries,
		retryDelayBase: cfg.RetryDelayBase,
	}
}

// Snapshot fetches the current probability snapshot for eventKey.
// Returns ErrNoData when the aggregator has nothing for the key, a
// *PaymentError on a payment/authorization rejection, and a wrapped
// transport error otherwise.
func (c *Client) Snapshot(ctx context.Context, eventKey string) (*models.ProbabilitySnapshot, error) {
	u := fmt.Sprintf("%s/v1/probabilities/%s", c.baseURL, url.PathEscape(eventKey))

	resp, err := c.doRequest(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot for %s: %w", eventKey, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", eventKey, ErrNoData)
	case resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusForbidden:
		return nil, &PaymentError{Message: readAPIMessage(resp.Body)}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, eventKey)
	}

	var snap models.ProbabilitySnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot for %s: %w", eventKey, err)
	}
	if snap.EventKey == "" {
		snap.EventKey = eventKey
	}
	snap.Normalize()
	if snap.Empty() {
		return nil, fmt.Errorf("%s: %w", eventKey, ErrNoData)
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("invalid snapshot for %s: %w", eventKey, err)
	}
	return &snap, nil
}

// readAPIMessage extracts the "message" field from an error body, falling
// back to the raw body text.
func readAPIMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return "upstream rejected the request"
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return string(raw)
}

// doRequest performs an HTTP GET with linear-backoff retry on transport
// errors and 5xx responses.
func (c *Client) doRequest(ctx context.Context, urlStr string) (*http.Response, error) {
	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			time.Sleep(c.retryDelayBase * time.Duration(i+1))
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			time.Sleep(c.retryDelayBase * time.Duration(i+1))
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
