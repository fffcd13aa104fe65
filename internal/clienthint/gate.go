package clienthint

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"golang.org/x/mod/semver"

	"shopfront/internal/metrics"
)

// contextKey is the type for context values to avoid collisions
type contextKey string

// clientContextKey is the context key for storing the parsed Client
const clientContextKey contextKey = "shopfront.client"

// Error codes returned by the gate.
const (
	CodeInvalidHeader   = "invalid_client_header"
	CodeUpgradeRequired = "client_upgrade_required"
)

// VersionError is returned when a client is older than the minimum.
type VersionError struct {
	Client  Client
	Minimum string
}

func (e *VersionError) Error() string {
	return "client " + e.Client.Name + " " + e.Client.Version + " is older than " + e.Minimum
}

// Check reports whether c satisfies minimum. An empty minimum or a client
// without a version always passes.
func Check(minimum string, c Client) error {
	if minimum == "" || c.Version == "" {
		return nil
	}
	if semver.Compare(c.Version, semver.Canonical(normalizeVersion(minimum))) < 0 {
		return &VersionError{Client: c, Minimum: minimum}
	}
	return nil
}

// Gate creates HTTP middleware that parses the Shopfront-Client header,
// stores the Client in the request context and rejects outdated clients
// with 426 Upgrade Required. Requests without the header pass untouched.
func Gate(minimum string, m *metrics.Metrics, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isExemptPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get(Header)
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			client, err := Parse(header)
			if err != nil {
				logger.Warn("invalid Shopfront-Client header",
					slog.String("header", header),
					slog.String("error", err.Error()))
				m.ClientRejected("invalid_header")
				writeGateError(w, http.StatusBadRequest, CodeInvalidHeader,
					"Invalid Shopfront-Client header: "+err.Error())
				return
			}

			if err := Check(minimum, client); err != nil {
				m.ClientRejected("outdated")
				writeGateError(w, http.StatusUpgradeRequired, CodeUpgradeRequired,
					"Please upgrade "+client.Name+" to "+minimum+" or newer")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClient(r.Context(), client)))
		})
	}
}

// isExemptPath returns true for infrastructure paths.
func isExemptPath(path string) bool {
	switch path {
	case "/health", "/healthz", "/metrics":
		return true
	default:
		return false
	}
}

// writeGateError writes the storefront error envelope.
func writeGateError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}{}
	resp.Error.Code = code
	resp.Error.Message = message

	json.NewEncoder(w).Encode(resp)
}

// WithClient returns ctx carrying c.
func WithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, clientContextKey, c)
}

// FromContext retrieves the Client stored by Gate.
func FromContext(ctx context.Context) (Client, bool) {
	c, ok := ctx.Value(clientContextKey).(Client)
	return c, ok
}
