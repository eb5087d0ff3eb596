package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/chatflow/internal/logging"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
)

const (
	// DefaultTimeout bounds a single webhook call.
	DefaultTimeout = 10 * time.Second
	// DefaultMaxBodySize bounds how much of a response body is read.
	DefaultMaxBodySize int64 = 1 << 20
)

// ErrInvalidConfig is returned when headers or body are not valid JSON.
var ErrInvalidConfig = errors.New("invalid JSON in Headers or Body")

// ErrUnsupportedMethod is returned for methods outside GET, POST, PUT, DELETE and PATCH.
var ErrUnsupportedMethod = errors.New("unsupported method")

// ErrBodyNotAllowed is returned when a GET request is configured with a body.
var ErrBodyNotAllowed = errors.New("request with GET method cannot have body")

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
	http.MethodPatch:  true,
}

// Request is the authored configuration of a webhook call.
type Request struct {
	URL     string `json:"url"`
	Method  string `json:"method,omitempty"`
	Headers string `json:"headers,omitempty"`
	Body    string `json:"body,omitempty"`
}

// FromPayload converts a webhook node payload into a Request.
func FromPayload(p domain.WebhookPayload) Request {
	return Request{URL: p.URL, Method: p.Method, Headers: p.Headers, Body: p.Body}
}

// Result is the classified outcome of a completed call.
type Result struct {
	Status     int
	StatusText string
	// Success is true for statuses in [200, 400).
	Success  bool
	Duration time.Duration
}

// TestResult is the outcome of Client.Test. Either Error is set, or Status and Body are.
type TestResult struct {
	Status     int    `json:"status,omitempty"`
	StatusText string `json:"statusText,omitempty"`
	Body       any    `json:"body,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Client performs webhook calls.
type Client struct {
	doer        ports.HTTPDoer
	timeout     time.Duration
	maxBodySize int64
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport. Defaults to a plain *http.Client.
func WithHTTPClient(doer ports.HTTPDoer) Option {
	return func(c *Client) {
		c.doer = doer
	}
}

// WithTimeout sets the hard per-call timeout. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxBodySize bounds how many response bytes are read.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		doer:        &http.Client{},
		timeout:     DefaultTimeout,
		maxBodySize: DefaultMaxBodySize,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Timeout returns the configured per-call timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// NewHTTPRequest builds the outgoing request.
// Content-Type defaults to application/json; authored headers override it.
// A body that parses to a falsy JSON value (null, false, 0, "") is not sent.
func NewHTTPRequest(ctx context.Context, r Request) (*http.Request, error) {
	method := strings.ToUpper(strings.TrimSpace(r.Method))
	if method == "" {
		method = http.MethodGet
	}
	if !allowedMethods[method] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, r.Method)
	}

	headers, err := parseHeaders(r.Headers)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if strings.TrimSpace(r.Body) != "" {
		var parsed any
		if err := json.Unmarshal([]byte(r.Body), &parsed); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		if truthy(parsed) {
			if method == http.MethodGet {
				return nil, ErrBodyNotAllowed
			}
			b, err := json.Marshal(parsed)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
			}
			body = bytes.NewReader(b)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, r.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	}
	return true
}

func parseHeaders(raw string) (map[string]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if parsed == nil {
		return nil, nil
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: headers must be a JSON object", ErrInvalidConfig)
	}
	out := make(map[string]string, len(obj))
	for k, v := range obj {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out, nil
}

// Do performs the call and classifies the response.
// It returns an error when the request cannot be built or no response arrives in time.
func (c *Client) Do(ctx context.Context, r Request) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := NewHTTPRequest(ctx, r)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	c.logger.Debug("calling webhook", "method", req.Method, "url", r.URL)

	resp, err := c.doer.Do(req)
	if err != nil {
		return Result{Duration: time.Since(start)}, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, c.maxBodySize))

	res := Result{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		Success:    resp.StatusCode >= 200 && resp.StatusCode < 400,
		Duration:   time.Since(start),
	}
	c.logger.Debug("webhook responded", "status", res.Status, "duration", res.Duration)
	return res, nil
}

// Test performs the call and captures the response body.
// JSON responses are decoded; anything else is returned as text.
// Failures are reported in TestResult.Error rather than as a Go error.
func (c *Client) Test(ctx context.Context, r Request) TestResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := NewHTTPRequest(ctx, r)
	if err != nil {
		return TestResult{Error: configErrorMessage(err)}
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return TestResult{Error: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return TestResult{Error: fmt.Sprintf("failed to read response body: %v", err)}
	}

	out := TestResult{Status: resp.StatusCode, StatusText: statusText(resp)}
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			out.Body = "Failed to parse JSON response body."
		} else {
			out.Body = decoded
		}
		return out
	}

	if len(raw) == 0 {
		out.Body = "Response body is empty."
	} else {
		out.Body = string(raw)
	}
	return out
}

// configErrorMessage renders configuration errors the way the editor displays them.
func configErrorMessage(err error) string {
	if errors.Is(err, ErrInvalidConfig) {
		return "Invalid JSON in Headers or Body: " + strings.TrimPrefix(err.Error(), ErrInvalidConfig.Error()+": ")
	}
	return err.Error()
}

func statusText(resp *http.Response) string {
	text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" ")
	if text == "" || text == resp.Status {
		return http.StatusText(resp.StatusCode)
	}
	return text
}
