package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/internal/metrics"
	"shopfront/internal/model"
)

type recorded struct {
	method string
	path   string
	query  string
	token  string
	body   map[string]any
}

// newTestClient starts an upstream that records each request and answers
// with respond.
func newTestClient(t *testing.T, respond func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			token:  r.Header.Get("token"),
		}
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &rec.body)
		}
		calls = append(calls, rec)
		respond(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := New(Config{
		BaseURL: srv.URL + "/api/v1",
		Timeout: 5 * time.Second,
		Metrics: metrics.New(prometheus.NewRegistry()),
	})
	require.NoError(t, err)
	return c, &calls
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{BaseURL: "not a url"})
	assert.Error(t, err)

	c, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())

	c, err = New(Config{BaseURL: "https://example.com/api/v1/"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/api/v1", c.BaseURL())
}

func TestParseErrorResponse(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		code     string
		sentinel error
		message  string
	}{
		{"not found with message", 404, `{"statusMsg":"fail","message":"No product for this id"}`, "NOT_FOUND", model.ErrNotFound, "No product for this id"},
		{"unauthorized", 401, `{"statusMsg":"fail","message":"Invalid Token. please login again"}`, "UNAUTHORIZED", model.ErrUnauthorized, "Invalid Token. please login again"},
		{"validator shape", 400, `{"message":"fail","errors":{"value":"x","msg":"Invalid email","param":"email"}}`, "VALIDATION_ERROR", model.ErrInvalidRequest, "Invalid email"},
		{"conflict", 409, `{"statusMsg":"fail","message":"Account Already Exists"}`, "VALIDATION_ERROR", model.ErrInvalidRequest, "Account Already Exists"},
		{"rate limited", 429, ``, "RATE_LIMITED", model.ErrRateLimited, "fallback"},
		{"server error without body", 500, `oops`, "UPSTREAM_ERROR", model.ErrUpstreamError, "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseErrorResponse(tt.status, []byte(tt.body), "fallback")
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestDo_TransportFailure(t *testing.T) {
	c, err := New(Config{BaseURL: "http://127.0.0.1:1/api/v1", Timeout: time.Second})
	require.NoError(t, err)

	_, err = c.GetCart(context.Background(), "tok")
	require.Error(t, err)

	var apiErr *model.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Failed to fetch cart", apiErr.Message)
	assert.ErrorIs(t, err, model.ErrUpstreamError)
}

func TestDo_DecodeFailure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"status":"success","data":`)
	})

	_, err := c.GetCart(context.Background(), "tok")
	assert.ErrorIs(t, err, model.ErrDecode)
	assert.Equal(t, "Failed to fetch cart", model.UserMessage(err, ""))
}

func TestDo_ContextCanceled(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{}`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetWishlist(ctx, "tok")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsUnauthorized(t *testing.T) {
	assert.True(t, IsUnauthorized(model.NewUnauthorizedError("x")))
	assert.False(t, IsUnauthorized(model.NewNotFoundError("x")))
}

func TestDo_ConfiguredHeader(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Shopfront-Client")
		writeJSON(w, 200, `{"status":"success","count":0,"data":[]}`)
	}))
	t.Cleanup(srv.Close)

	c, err := New(Config{
		BaseURL: srv.URL + "/api/v1",
		Header:  http.Header{"Shopfront-Client": []string{`name="shopcli", version="v1.0.0"`}},
	})
	require.NoError(t, err)

	_, err = c.GetWishlist(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, `name="shopcli", version="v1.0.0"`, got)
}
