// Package api is the HTTP client for the job board REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/KhushiMandaliya2/RoleCall/internal/metrics"
	"github.com/KhushiMandaliya2/RoleCall/internal/schemas"
)

// DefaultTimeout is the default per-request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for API requests.
const DefaultUserAgent = "RoleCall/1.0"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// Options configures the client.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Token     string
	Headers   map[string]string
	// RequestsPerSecond paces outgoing requests. Zero disables pacing.
	RequestsPerSecond float64
	HTTPClient        *http.Client
	Logger            *slog.Logger
	Metrics           metrics.Recorder
}

// DefaultOptions returns sensible defaults for the client.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Client talks to the job board API. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	token      string
	headers    map[string]string
	limiter    *rate.Limiter
	logger     *slog.Logger
	metrics    metrics.Recorder
}

// New creates a client for the API rooted at baseURL, e.g. http://localhost:8000.
func New(baseURL string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: opts.HTTPClient,
		timeout:    opts.Timeout,
		userAgent:  opts.UserAgent,
		token:      opts.Token,
		headers:    opts.Headers,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.metrics == nil {
		c.metrics = metrics.Nop{}
	}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return c, nil
}

// call describes one request.
type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	// schema validates a 2xx body; empty skips validation.
	schema string
	// out receives the decoded 2xx body; nil ignores it.
	out any
	// allowEmpty accepts an empty 2xx body.
	allowEmpty bool
}

func (c *Client) do(ctx context.Context, cl call) error {
	start := time.Now()
	requestID := uuid.NewString()

	fail := func(status int, detail string, cause error) error {
		outcome := metrics.OutcomeTransport
		if status != 0 {
			outcome = metrics.OutcomeRejected
		}
		c.metrics.ObserveRemote(cl.op, outcome, time.Since(start))

		apiErr := &Error{
			Op:         cl.op,
			Method:     cl.method,
			Path:       cl.path,
			StatusCode: status,
			Detail:     detail,
			RequestID:  requestID,
			Err:        cause,
		}
		c.logger.Warn("remote call failed",
			slog.String("op", cl.op),
			slog.String("method", cl.method),
			slog.String("path", cl.path),
			slog.Int("status", status),
			slog.String("reason", apiErr.Reason()),
			slog.String("request_id", requestID),
		)
		return apiErr
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fail(0, "", fmt.Errorf("request not sent: %w", err))
		}
	}

	var reqBody io.Reader
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return fail(0, "", fmt.Errorf("failed to encode request body: %w", err))
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.resolve(cl.path, cl.query), reqBody)
	if err != nil {
		return fail(0, "", fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(0, "", fmt.Errorf("HTTP request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fail(0, "", fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(resp.StatusCode, parseDetail(body), nil)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		if cl.allowEmpty || cl.out == nil {
			c.metrics.ObserveRemote(cl.op, metrics.OutcomeSuccess, time.Since(start))
			return nil
		}
		return fail(0, "", fmt.Errorf("malformed response: empty body"))
	}

	if cl.schema != "" {
		if err := schemas.Validate(cl.schema, body); err != nil {
			return fail(0, "", fmt.Errorf("malformed response: %w", err))
		}
	}
	if cl.out != nil {
		if err := json.Unmarshal(body, cl.out); err != nil {
			return fail(0, "", fmt.Errorf("malformed response: %w", err))
		}
	}

	c.metrics.ObserveRemote(cl.op, metrics.OutcomeSuccess, time.Since(start))
	c.logger.Debug("remote call succeeded",
		slog.String("op", cl.op),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
		slog.String("request_id", requestID),
	)
	return nil
}

// resolve joins the base URL with an already escaped path and the query.
func (c *Client) resolve(path string, query url.Values) string {
	u := c.baseURL.String() + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}
