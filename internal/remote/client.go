// Package remote talks to the dashboard HTTP API. Every call carries the
// bearer credential it was constructed with and passes through a circuit
// breaker. Nothing is retried.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	dasherrors "github.com/abatilo/dash/internal/errors"
)

const (
	// DefaultTimeout bounds a single request when no timeout is configured.
	DefaultTimeout = 10 * time.Second

	requestIDHeader  = "X-Request-ID"
	maxResponseBytes = 4 << 20
	maxDetailLen     = 200

	defaultTripAfter = 5
	breakerCooldown  = 30 * time.Second
)

// Credentials is the bearer token attached to every request.
type Credentials struct {
	AccessToken string
	TokenType   string
}

func (c Credentials) authorization() string {
	typ := c.TokenType
	if typ == "" || strings.EqualFold(typ, "bearer") {
		typ = "Bearer"
	}
	return typ + " " + c.AccessToken
}

// Client is a JSON-over-HTTP client for the dashboard API.
type Client struct {
	baseURL        string
	creds          Credentials
	httpClient     *http.Client
	timeout        time.Duration
	logger         *slog.Logger
	onUnauthorized func()
	tripAfter      uint32
	breaker        *gobreaker.CircuitBreaker[*reply]
}

// reply is a completed HTTP exchange.
type reply struct {
	status    int
	body      []byte
	requestID string
}

// serverError carries a 5xx reply through the breaker so it counts as a failure.
type serverError struct {
	r *reply
}

func (e serverError) Error() string {
	return http.StatusText(e.r.status)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUnauthorizedHook registers fn to run whenever the API answers 401.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// WithTripAfter opens the breaker after n consecutive failures.
func WithTripAfter(n uint32) Option {
	return func(c *Client) {
		if n > 0 {
			c.tripAfter = n
		}
	}
}

// NewClient creates a Client for the API at baseURL.
func NewClient(baseURL string, creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		tripAfter:  defaultTripAfter,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker[*reply](gobreaker.Settings{
		Name:        "dash-api",
		MaxRequests: 1,
		Timeout:     breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.tripAfter
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up is not the server's fault.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends in as the JSON body of method path and decodes a 2xx response into
// out. Either may be nil. op names the operation in returned errors.
func (c *Client) Do(ctx context.Context, op, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return dasherrors.RemoteError{Op: op, Message: "encode request", Err: err}
		}
	}

	r, err := c.breaker.Execute(func() (*reply, error) {
		return c.roundTrip(ctx, method, path, body)
	})
	if err != nil {
		var se serverError
		switch {
		case errors.As(err, &se):
			r = se.r
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return dasherrors.RemoteError{Op: op, Message: "service unavailable: circuit open", Err: err}
		default:
			c.logger.Debug("api request failed", "method", method, "path", path, "error", err)
			return dasherrors.RemoteError{Op: op, Err: err}
		}
	}

	c.logger.Debug("api request", "method", method, "path", path, "status", r.status, "request_id", r.requestID)

	if r.status == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	if r.status < 200 || r.status >= 300 {
		return dasherrors.RemoteError{Op: op, StatusCode: r.status, Message: errorDetail(r.body)}
	}

	if out == nil || len(r.body) == 0 {
		return nil
	}
	if err = json.Unmarshal(r.body, out); err != nil {
		return dasherrors.RemoteError{Op: op, StatusCode: r.status, Message: "decode response", Err: err}
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body []byte) (*reply, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, id)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds.AccessToken != "" {
		req.Header.Set("Authorization", c.creds.authorization())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}

	r := &reply{status: resp.StatusCode, body: data, requestID: id}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, serverError{r: r}
	}
	return r, nil
}

// errorDetail extracts the human-readable reason from an error body. The API
// answers {"detail": "..."}, or a list of field problems for rejected input.
func errorDetail(body []byte) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if len(payload.Detail) > 0 {
			var s string
			if json.Unmarshal(payload.Detail, &s) == nil {
				return s
			}
			return truncate(string(payload.Detail))
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return truncate(strings.TrimSpace(string(body)))
}

// truncate cuts s to at most maxDetailLen bytes without splitting a rune.
func truncate(s string) string {
	if len(s) <= maxDetailLen {
		return s
	}
	cut := maxDetailLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
