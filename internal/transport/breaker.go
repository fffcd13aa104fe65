package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned while the breaker rejects requests.
var ErrCircuitOpen = gobreaker.ErrOpenState

// BreakerConfig holds circuit breaker settings.
type BreakerConfig struct {
	// Name identifies the breaker in logs and metrics.
	Name string
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval clears the closed-state counts; 0 never clears.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration
	// FailureRatio trips the breaker once MinRequests have been seen.
	FailureRatio float64
	MinRequests  uint32
	// OnStateChange is called with the gauge value of the new state
	// (0=closed, 1=half-open, 2=open).
	OnStateChange func(name string, state float64)
	Logger        *slog.Logger
}

// DefaultBreakerConfig returns the settings the storefront ships with.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

// serverError marks a 5xx response as a breaker failure while still
// handing the response back to the caller.
type serverError struct {
	status int
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server error %d", e.status)
}

// BreakerTransport fails fast with ErrCircuitOpen once the upstream keeps
// failing. Transport errors and 5xx responses count as failures.
type BreakerTransport struct {
	next    http.RoundTripper
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

// NewBreakerTransport wraps next with a circuit breaker.
func NewBreakerTransport(next http.RoundTripper, cfg BreakerConfig) *BreakerTransport {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			if cfg.OnStateChange != nil {
				cfg.OnStateChange(name, stateValue(to))
			}
		},
	}
	if cfg.OnStateChange != nil {
		cfg.OnStateChange(cfg.Name, 0)
	}
	return &BreakerTransport{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[*http.Response](settings),
	}
}

// RoundTrip implements http.RoundTripper.
func (t *BreakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.breaker.Execute(func() (*http.Response, error) {
		resp, err := t.next.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return resp, &serverError{status: resp.StatusCode}
		}
		return resp, nil
	})
	var se *serverError
	if errors.As(err, &se) {
		return resp, nil
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// State returns the current breaker state.
func (t *BreakerTransport) State() gobreaker.State {
	return t.breaker.State()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
