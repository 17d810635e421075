// Package httpclient provides the resilient request executor used by every
// upstream connector: bounded retries with exponential backoff behind a
// shared per-target circuit breaker.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/weekendly/planner/pkg/breaker"
	"github.com/weekendly/planner/pkg/domain"
)

// HTTPError is a permanent upstream error (4xx). It is not retried and does
// not count as a breaker failure.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// TransientError wraps timeouts, connection errors and 5xx responses after
// retries are exhausted.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient upstream error: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Response is the raw result of a successful execution.
type Response struct {
	StatusCode int
	Body       []byte
}

// Config holds the executor knobs, one set per upstream target.
type Config struct {
	Timeout       time.Duration
	Retries       int
	BackoffFactor time.Duration
}

// Client executes requests against a single upstream target.
type Client struct {
	httpClient *http.Client
	cfg        Config
	breaker    *breaker.Breaker
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// New creates a Client. The breaker may be nil for targets that do not need
// circuit breaking (tests, bundled-data-only connectors).
func New(cfg Config, b *breaker.Breaker, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.BackoffFactor <= 0 {
		cfg.BackoffFactor = 500 * time.Millisecond
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		breaker:    b,
		logger:     logger,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Execute performs one logical request with retries and backoff. A response
// with status < 500 counts as success for the breaker; 5xx, timeouts and
// connection errors are retried up to cfg.Retries additional attempts with
// backoffFactor * 2^attempt between them. When the breaker is open and not
// yet probe-eligible it fails immediately with domain.ErrCircuitOpen,
// without any network I/O.
func (c *Client) Execute(ctx context.Context, method, rawURL string, params map[string]string, headers map[string]string) (*Response, error) {
	if c.breaker != nil && !c.breaker.Allow() {
		return nil, domain.ErrCircuitOpen
	}

	target, err := buildURL(rawURL, params)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		resp, err := c.do(ctx, method, target, headers)
		if err == nil {
			if c.breaker != nil {
				c.breaker.Success()
			}
			return resp, nil
		}

		var permErr *HTTPError
		if errors.As(err, &permErr) {
			// 4xx is the upstream answering; the target is healthy.
			if c.breaker != nil {
				c.breaker.Success()
			}
			return nil, err
		}

		lastErr = err
		if c.breaker != nil {
			c.breaker.Failure()
		}
		if attempt == c.cfg.Retries {
			break
		}
		delay := c.cfg.BackoffFactor * (1 << attempt)
		c.logger.Warn("request attempt failed, retrying",
			"url", rawURL, "attempt", attempt+1, "delay", delay, "error", err)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, &TransientError{Err: err}
		}
	}

	c.logger.Error("request failed after retries",
		"url", rawURL, "attempts", c.cfg.Retries+1, "error", lastErr)
	return nil, &TransientError{Err: lastErr}
}

func (c *Client) do(ctx context.Context, method, target string, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("server error: status %d", resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: body}
	default:
		return &Response{StatusCode: resp.StatusCode, Body: body}, nil
	}
}

// GetJSON executes a GET request and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params map[string]string, headers map[string]string, out any) error {
	resp, err := c.Execute(ctx, http.MethodGet, rawURL, params, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", rawURL, err)
	}
	return nil
}

func buildURL(rawURL string, params map[string]string) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
