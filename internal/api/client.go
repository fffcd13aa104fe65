// Package api wraps the remote e-commerce REST API: one method per endpoint,
// building the URL and body and decoding the JSON reply. Authenticated calls
// send the bearer token in the "token" header.
//
// Every failure is a *model.APIError whose Message is safe to show users.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shopfront/internal/metrics"
	"shopfront/internal/model"
)

// DefaultBaseURL is the public Route e-commerce API.
const DefaultBaseURL = "https://ecommerce.routemisr.com/api/v1"

// DefaultTimeout bounds a whole request, body included.
const DefaultTimeout = 30 * time.Second

// userAgent identifies the storefront to the upstream CDN.
const userAgent = "Shopfront/1.0"

// Config holds API client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Transport defaults to http.DefaultTransport; see package transport.
	Transport http.RoundTripper
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	// Header is added to every request.
	Header http.Header
}

// Client talks to the remote API. It is safe for concurrent use and holds
// no per-user state; tokens are passed per call.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *metrics.Metrics
	logger     *slog.Logger
	header     http.Header
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", base)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout, Transport: cfg.Transport},
		baseURL:    strings.TrimSuffix(base, "/"),
		metrics:    cfg.Metrics,
		logger:     logger,
		header:     cfg.Header.Clone(),
	}, nil
}

// BaseURL returns the API origin the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// call describes one request.
type call struct {
	method string
	path   string
	query  url.Values
	token  string
	body   any
	// resource labels metrics ("cart", "wishlist", ...).
	resource string
	// fallback is the user-facing message when the reply carries none.
	fallback string
}

// do executes rc and decodes a 2xx body into out (which may be nil).
func (c *Client) do(ctx context.Context, rc call, out any) error {
	var bodyReader io.Reader
	if rc.body != nil {
		jsonBody, err := json.Marshal(rc.body)
		if err != nil {
			return model.NewInternalError(fmt.Errorf("marshaling request: %w", err))
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	target := c.baseURL + rc.path
	if len(rc.query) > 0 {
		target += "?" + rc.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, rc.method, target, bodyReader)
	if err != nil {
		return model.NewInternalError(fmt.Errorf("creating request: %w", err))
	}
	c.setHeaders(req, rc.token, rc.body != nil)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.APIRequest(rc.method, rc.resource, "error", time.Since(start))
		c.logger.WarnContext(ctx, "api request failed",
			slog.String("method", rc.method),
			slog.String("resource", rc.resource),
			slog.String("error", err.Error()),
		)
		return model.NewUpstreamError(rc.fallback, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	c.metrics.APIRequest(rc.method, rc.resource, strconv.Itoa(resp.StatusCode), time.Since(start))
	if err != nil {
		return model.NewUpstreamError(rc.fallback, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode >= 400 {
		apiErr := parseErrorResponse(resp.StatusCode, respBody, rc.fallback)
		c.logger.DebugContext(ctx, "api error response",
			slog.String("method", rc.method),
			slog.String("resource", rc.resource),
			slog.Int("status", resp.StatusCode),
			slog.String("message", apiErr.Message),
		)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return model.NewDecodeError(rc.fallback, err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, token string, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for k, v := range c.header {
		req.Header[k] = v
	}
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("token", token)
	}
}

// errorBody covers both failure shapes the API sends:
// {"statusMsg":"fail","message":"..."} and the validator's
// {"message":"fail","errors":{"msg":"...","param":"..."}}.
type errorBody struct {
	StatusMsg string `json:"statusMsg"`
	Message   string `json:"message"`
	Errors    *struct {
		Msg   string `json:"msg"`
		Param string `json:"param"`
	} `json:"errors"`
}

func (b errorBody) text() string {
	if b.Errors != nil && b.Errors.Msg != "" {
		return b.Errors.Msg
	}
	if b.Message == "fail" {
		return ""
	}
	return b.Message
}

// parseErrorResponse maps an HTTP failure onto a model.APIError.
func parseErrorResponse(statusCode int, body []byte, fallback string) *model.APIError {
	var eb errorBody
	_ = json.Unmarshal(body, &eb) // best effort
	msg := eb.text()
	if msg == "" {
		msg = fallback
	}

	switch {
	case statusCode == http.StatusNotFound:
		return model.NewNotFoundError(msg)
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return model.NewUnauthorizedError(msg)
	case statusCode == http.StatusTooManyRequests:
		return model.NewRateLimitError(msg)
	case statusCode >= 400 && statusCode < 500:
		e := model.NewValidationError(msg)
		e.StatusCode = statusCode
		return e
	default:
		return model.NewUpstreamError(msg, fmt.Errorf("status %d", statusCode))
	}
}

// IsUnauthorized reports whether err means the token was rejected.
func IsUnauthorized(err error) bool {
	return errors.Is(err, model.ErrUnauthorized)
}

func pathID(id string) string {
	return "/" + url.PathEscape(id)
}
