package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			name: "without wrapped error",
			err:  &APIError{Code: "NOT_FOUND", Message: "cart not found"},
			want: "NOT_FOUND: cart not found",
		},
		{
			name: "with wrapped error",
			err: &APIError{
				Code:    "UPSTREAM_ERROR",
				Message: "Failed to fetch cart",
				Err:     errors.New("connection reset"),
			},
			want: "UPSTREAM_ERROR: Failed to fetch cart (connection reset)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		code       string
		statusCode int
		sentinel   error
	}{
		{"not found", NewNotFoundError("product not found"), "NOT_FOUND", 404, ErrNotFound},
		{"validation", NewValidationError("count must be at least 1"), "VALIDATION_ERROR", 400, ErrInvalidRequest},
		{"unauthorized", NewUnauthorizedError("Invalid Token. please login again"), "UNAUTHORIZED", 401, ErrUnauthorized},
		{"upstream", NewUpstreamError("Failed to fetch cart", errors.New("eof")), "UPSTREAM_ERROR", 502, ErrUpstreamError},
		{"decode", NewDecodeError("Failed to fetch cart", errors.New("bad json")), "DECODE_ERROR", 502, ErrDecode},
		{"rate limited", NewRateLimitError("too many requests"), "RATE_LIMITED", 429, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.code)
			}
			if tt.err.StatusCode != tt.statusCode {
				t.Errorf("StatusCode = %d, want %d", tt.err.StatusCode, tt.statusCode)
			}
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.sentinel)
			}

			wrapped := fmt.Errorf("cart refresh: %w", tt.err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Error("sentinel lost through fmt.Errorf wrapping")
			}
		})
	}
}

func TestNewInternalError(t *testing.T) {
	underlying := errors.New("nil map")
	err := NewInternalError(underlying)
	if err.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", err.StatusCode)
	}
	if err.Err != underlying {
		t.Error("wrapped error should be preserved")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback string
		want     string
	}{
		{"api error message", NewUpstreamError("Product not found", nil), "Failed to add to cart", "Product not found"},
		{"wrapped api error", fmt.Errorf("add: %w", NewUnauthorizedError("expired")), "x", "expired"},
		{"plain error", errors.New("boom"), "Failed to update", "Failed to update"},
		{"empty message", &APIError{Code: "X"}, "Failed to remove item", "Failed to remove item"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err, tt.fallback); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
