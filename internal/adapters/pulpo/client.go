package pulpo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/altruan/pulpobot/internal/domain/shared"
)

const (
	defaultBaseURL    = "https://api.pulpo.co/"
	defaultSandboxURL = "https://sandbox.api.pulpo.co/"
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	defaultRetryDelay = 30 * time.Second
	defaultMaxCalls   = 100
	defaultTimeWindow = time.Minute
)

// Config carries the connection settings of one WMS session
type Config struct {
	BaseURL    string
	SandboxURL string
	Sandbox    bool
	Username   string
	Password   string
	MaxCalls   int
	TimeWindow time.Duration
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
}

// withDefaults fills the zero-valued fields of a Config
func (cfg Config) withDefaults() Config {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.SandboxURL == "" {
		cfg.SandboxURL = defaultSandboxURL
	}
	if cfg.MaxCalls == 0 {
		cfg.MaxCalls = defaultMaxCalls
	}
	if cfg.TimeWindow == 0 {
		cfg.TimeWindow = defaultTimeWindow
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return cfg
}

// Client is the authenticated, throttled request layer against the WMS HTTP
// API. One client serves one run; all components share it and only the
// orchestrator closes it.
type Client struct {
	httpClient *http.Client
	cfg        Config
	limiter    *CallLimiter
	clock      shared.Clock
	logger     *zap.Logger
	token      string
}

// NewClient creates a WMS client. If clock is nil, RealClock is used. The
// first request authenticates implicitly.
func NewClient(cfg Config, clock shared.Clock, logger *zap.Logger) *Client {
	cfg = cfg.withDefaults()
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		limiter:    NewCallLimiter(cfg.MaxCalls, cfg.TimeWindow, clock, logger),
		clock:      clock,
		logger:     logger,
	}
}

// baseURL returns the production or sandbox base depending on the config
func (c *Client) baseURL() string {
	if c.cfg.Sandbox {
		return c.cfg.SandboxURL
	}
	return c.cfg.BaseURL
}

// Authenticate performs the password-grant exchange and stores the bearer
// token. Failing to obtain a token is the only fatal startup error.
func (c *Client) Authenticate(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{
		"grant_type": "password",
		"username":   c.cfg.Username,
		"password":   c.cfg.Password,
		"scope":      "default",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+"auth", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach wms auth endpoint: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read auth response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	c.limiter.Record()

	var auth struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(respBody, &auth); err != nil {
		return &DecodeError{Endpoint: "auth", Err: err}
	}
	if auth.AccessToken == "" {
		return &BusinessError{Payload: string(respBody)}
	}

	c.token = auth.AccessToken
	c.logger.Info("new wms token generated")
	return nil
}

// Request sends one call to the WMS and returns the shaped response body.
// List responses of the form {total_results, <key>: [...]} are unwrapped to
// the list; creation responses carrying a created key come back verbatim.
// Rate limits, both the business payload and HTTP 429, are retried up to the
// configured attempt budget; every other failure surfaces immediately.
func (c *Client) Request(ctx context.Context, method, endpoint string, params url.Values, body any) (json.RawMessage, error) {
	if c.token == "" {
		if err := c.Authenticate(ctx); err != nil {
			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		raw, err := c.send(ctx, method, endpoint, params, body)
		if err == nil {
			return raw, nil
		}
		lastErr = err

		delay, retryable := c.retryDelay(err)
		if !retryable || attempt == c.cfg.MaxRetries {
			return nil, err
		}
		c.logger.Warn("api rate limit reached, retrying",
			zap.String("endpoint", endpoint),
			zap.Duration("delay", delay),
			zap.Int("attempt", attempt),
			zap.Int("retries", c.cfg.MaxRetries))
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.clock.Sleep(delay)
	}
	return nil, lastErr
}

// retryDelay reports whether the error is a rate limit and how long to back
// off before the next attempt
func (c *Client) retryDelay(err error) (time.Duration, bool) {
	switch e := err.(type) {
	case *RateLimitError:
		if e.RetryAfter > 0 {
			return e.RetryAfter, true
		}
		return c.cfg.RetryDelay, true
	case *HTTPError:
		if e.StatusCode == http.StatusTooManyRequests {
			return c.cfg.RetryDelay, true
		}
	}
	return 0, false
}

// send performs a single attempt and shapes the response
func (c *Client) send(ctx context.Context, method, endpoint string, params url.Values, body any) (json.RawMessage, error) {
	target := c.baseURL() + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("authorization", "bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach wms: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	// The attempt reached the WMS; retries of business-level rate limits
	// must not occupy a second window slot
	c.limiter.Record()

	return shapeResponse(endpoint, respBody)
}

// shapeResponse unwraps the WMS response conventions and converts error
// payloads into typed errors
func shapeResponse(endpoint string, body []byte) (json.RawMessage, error) {
	raw := bytes.TrimSpace(body)
	if len(raw) == 0 {
		return nil, nil
	}

	if raw[0] == '"' {
		var message string
		if err := json.Unmarshal(raw, &message); err != nil {
			return nil, &DecodeError{Endpoint: endpoint, Err: err}
		}
		return nil, &BusinessError{Payload: message}
	}
	if raw[0] != '{' {
		return raw, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Err: err}
	}

	if _, ok := obj["total_results"]; ok {
		for key, value := range obj {
			if key != "total_results" {
				return value, nil
			}
		}
		return raw, nil
	}
	if _, ok := obj["created"]; ok {
		return raw, nil
	}
	if messageRaw, ok := obj["message"]; ok {
		var message string
		if err := json.Unmarshal(messageRaw, &message); err != nil {
			return nil, &DecodeError{Endpoint: endpoint, Err: err}
		}
		if message == rateLimitMessage {
			return nil, &RateLimitError{RetryAfter: retryAfterSeconds(obj)}
		}
		return nil, &BusinessError{Message: message, Payload: string(raw)}
	}
	if _, ok := obj["errors"]; ok {
		return nil, &BusinessError{Payload: string(raw)}
	}
	return raw, nil
}

// retryAfterSeconds reads the retry_after_seconds hint of a rate-limit
// payload, zero when absent or malformed
func retryAfterSeconds(obj map[string]json.RawMessage) time.Duration {
	hint, ok := obj["retry_after_seconds"]
	if !ok {
		return 0
	}
	seconds, err := strconv.Atoi(string(bytes.TrimSpace(hint)))
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// Close releases the connection pool. Idempotent.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
