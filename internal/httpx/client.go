// Package httpx is the outbound HTTP layer every adapter goes through. It
// retries rate limits and server errors with capped exponential backoff,
// honors Retry-After exactly, paces requests through an optional limiter,
// and classifies failures as transient or fatal.
package httpx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultMaxAttempts = 3
	defaultBaseBackoff = 500 * time.Millisecond
	defaultMaxDelay    = 60 * time.Second
	defaultTimeout     = 30 * time.Second

	// maxErrorBodyBytes bounds how much of an error response is kept for
	// the error message.
	maxErrorBodyBytes = 2 << 10
)

// Request describes one outbound call.
type Request struct {
	Method string
	URL    string
	Header http.Header // optional extra headers
	Body   any         // JSON-encoded when non-nil
}

// Client wraps *http.Client with the retry policy shared by all adapters.
type Client struct {
	hc          *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	baseBackoff time.Duration
	maxDelay    time.Duration
	userAgent   string
	logger      zerolog.Logger

	// sleep is swapped out in tests to observe waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithMaxAttempts sets how many times a request is tried in total.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBackoff sets the base backoff and the cap applied to every wait,
// including Retry-After values.
func WithBackoff(base, max time.Duration) Option {
	return func(c *Client) {
		if base > 0 {
			c.baseBackoff = base
		}
		if max > 0 {
			c.maxDelay = max
		}
	}
}

// WithRateLimit paces attempts to rps requests per second. A non-positive
// rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger attaches a logger for retry warnings.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New constructs a Client with the default policy: 3 attempts, 500ms base
// backoff capped at 60s, 30s per-request timeout, no pacing.
func New(opts ...Option) *Client {
	c := &Client{
		hc:          &http.Client{Timeout: defaultTimeout},
		maxAttempts: defaultMaxAttempts,
		baseBackoff: defaultBaseBackoff,
		maxDelay:    defaultMaxDelay,
		logger:      zerolog.Nop(),
		sleep:       sleepWithContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DoJSON performs the request and decodes the response body into out when
// out is non-nil. Responses with status >= 400 become a *StatusError; 429
// and 5xx are retried first.
func (c *Client) DoJSON(ctx context.Context, r Request, out any) error {
	resp, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return newStatusError(resp, 1)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("httpx: decode response: %w", err)
	}
	return nil
}

// do runs the retry loop. It returns a response for any non-retryable
// status; retryable statuses and transport failures surface as errors once
// attempts are exhausted.
func (c *Client) do(ctx context.Context, r Request) (*http.Response, error) {
	var reader io.Reader
	if r.Body != nil {
		payload, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("httpx: marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, reader)
	if err != nil {
		return nil, fmt.Errorf("httpx: build request: %w", err)
	}
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	var lastNetErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("httpx: request canceled: %w", err)
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("httpx: rate limit wait: %w", err)
			}
		}
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("httpx: reset request body: %w", err)
			}
			req.Body = body
		}

		resp, netErr := c.hc.Do(req)
		retryAfter, retry := shouldRetry(resp, netErr)
		if !retry {
			return resp, nil
		}

		lastNetErr = netErr
		if netErr != nil {
			c.logger.Warn().Int("attempt", attempt+1).Int("max", c.maxAttempts).Err(netErr).Msg("retrying request after transport error")
		} else {
			c.logger.Warn().Int("attempt", attempt+1).Int("max", c.maxAttempts).Int("status", resp.StatusCode).Str("url", r.URL).Msg("retrying request")
		}

		if attempt == c.maxAttempts-1 {
			if netErr != nil {
				return nil, &TransportError{Attempts: c.maxAttempts, Err: netErr}
			}
			defer resp.Body.Close()
			return nil, newStatusError(resp, c.maxAttempts)
		}
		if resp != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}

		delay := c.backoff(attempt)
		if retryAfter > 0 {
			delay = retryAfter
		}
		if delay > c.maxDelay {
			delay = c.maxDelay
		}
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, &TransportError{Attempts: c.maxAttempts, Err: lastNetErr}
}

// backoff computes the exponential delay for an attempt with uniform
// jitter of half the base spread around it.
func (c *Client) backoff(attempt int) time.Duration {
	delay := c.baseBackoff * time.Duration(1<<attempt)
	delay += rand.N(c.baseBackoff) - c.baseBackoff/2
	if delay < 0 {
		delay = 0
	}
	return delay
}

// shouldRetry decides whether a response or error warrants another attempt
// and surfaces any Retry-After the upstream asked for.
func shouldRetry(resp *http.Response, err error) (time.Duration, bool) {
	if err != nil {
		return 0, true
	}
	if resp == nil {
		return 0, false
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return parseRetryAfter(resp), true
	}
	return 0, false
}

// parseRetryAfter reads the Retry-After header as integer seconds or an
// HTTP date. Zero means the header was absent or useless.
func parseRetryAfter(resp *http.Response) time.Duration {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(retryAfter); err == nil {
		if until := time.Until(when); until > 0 {
			return until
		}
	}
	return 0
}

func newStatusError(resp *http.Response, attempts int) *StatusError {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	return &StatusError{
		Status:   resp.StatusCode,
		Body:     string(bytes.TrimSpace(snippet)),
		Attempts: attempts,
	}
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("httpx: request canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
