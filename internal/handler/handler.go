// Package handler provides the HTTP surface of the storefront server: a JSON
// API over each visitor's session stores, a server-sent event stream, and an
// MCP endpoint exposing the same operations as tools.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shopfront/internal/backend"
	"shopfront/internal/clienthint"
	"shopfront/internal/metrics"
	"shopfront/internal/middleware"
	"shopfront/internal/model"
	"shopfront/internal/session"
	"shopfront/internal/validation"
)

// Options holds the handler's dependencies.
type Options struct {
	Backend  backend.Backend
	Sessions *session.Manager
	Signer   *session.Signer
	Metrics  *metrics.Metrics
	// Gatherer backs GET /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// MinClientVersion rejects older Shopfront-Client versions. Empty
	// accepts every client.
	MinClientVersion string
	// PublicBaseURL is where card checkout returns the shopper.
	PublicBaseURL string
	SecureCookies bool
	SessionTTL    time.Duration
	Logger        *slog.Logger
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	backend  backend.Backend
	sessions *session.Manager
	signer   *session.Signer
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	opts     Options
	logger   *slog.Logger
}

// New creates a Handler.
func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		backend:  opts.Backend,
		sessions: opts.Sessions,
		signer:   opts.Signer,
		metrics:  opts.Metrics,
		gatherer: opts.Gatherer,
		opts:     opts,
		logger:   logger,
	}
}

// Routes builds the server's router with its middleware chain applied.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Recovery must be outermost to catch panics from logging middleware.
	r.Use(
		middleware.Recovery(h.logger),
		middleware.Logging(h.logger),
		middleware.Metrics(h.metrics),
		clienthint.Gate(h.opts.MinClientVersion, h.metrics, h.logger),
	)

	r.Get("/health", h.handleHealth)
	r.Get("/healthz", h.handleHealth)
	if h.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}

	// MCP transport - JSON-RPC endpoint using official MCP SDK. MCP
	// sessions carry their own storefront session instead of a cookie.
	r.Handle("/mcp", h.NewMCPHandler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(middleware.SessionOptions{
			Manager: h.sessions,
			Signer:  h.signer,
			Secure:  h.opts.SecureCookies,
			MaxAge:  h.opts.SessionTTL,
			Logger:  h.logger,
		}))

		r.Route("/api", func(r chi.Router) {
			r.Route("/auth", func(r chi.Router) {
				r.Post("/login", h.handleLogin)
				r.Post("/register", h.handleRegister)
				r.Post("/logout", h.handleLogout)
				r.Get("/me", h.handleMe)
				r.Post("/password/forgot", h.handleForgotPassword)
				r.Post("/password/verify", h.handleVerifyResetCode)
				r.Put("/password/reset", h.handleResetPassword)
			})

			r.Get("/products", h.handleListProducts)
			r.Get("/products/{id}", h.handleGetProduct)
			r.Get("/categories", h.handleListCategories)
			r.Get("/categories/{id}", h.handleGetCategory)
			r.Get("/categories/{id}/subcategories", h.handleCategorySubcategories)
			r.Get("/subcategories", h.handleListSubcategories)
			r.Get("/brands", h.handleListBrands)
			r.Get("/brands/{id}", h.handleGetBrand)

			r.Get("/wishlist", h.handleGetWishlist)
			r.Post("/wishlist/{productId}/toggle", h.handleToggleWishlist)
			r.Delete("/wishlist", h.handleClearWishlist)

			r.Get("/events", h.handleEvents)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireLogin)

				r.Get("/cart", h.handleGetCart)
				r.Put("/cart", h.handleReplaceCart)
				r.Delete("/cart", h.handleClearCart)
				r.Post("/cart/items", h.handleAddCartItem)
				r.Patch("/cart/items/{productId}", h.handleUpdateCartItem)
				r.Delete("/cart/items/{productId}", h.handleRemoveCartItem)

				r.Get("/addresses", h.handleListAddresses)
				r.Post("/addresses", h.handleAddAddress)
				r.Put("/addresses/{id}", h.handleUpdateAddress)
				r.Delete("/addresses/{id}", h.handleRemoveAddress)

				r.Get("/orders", h.handleListOrders)
				r.Post("/orders/cash", h.handleCashOrder)
				r.Post("/orders/checkout-session", h.handleCheckoutSession)
			})
		})
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": h.sessions.Len(),
	})
}

// === Response Helpers ===

// writeJSON sends a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError sends an error response, extracting status/code from APIError if present.
// Uses errors.As() to unwrap error chains (e.g., fmt.Errorf wrapping).
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError

	if !errors.As(err, &apiErr) {
		// Wrap unexpected errors
		h.logger.Error("internal error", slog.String("error", err.Error()))
		apiErr = model.NewInternalError(err)
	}

	resp := errorResponse{Error: errorBody{Code: apiErr.Code, Message: apiErr.Message}}
	var ve *validation.ValidationError
	if errors.As(err, &ve) {
		resp.Error.Fields = ve.Fields()
	}
	h.writeJSON(w, apiErr.StatusCode, resp)
}

// errorResponse is the JSON structure for error responses.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// MaxRequestBodySize limits JSON request bodies to 1MB.
const MaxRequestBodySize = 1 << 20

// decodeForm reads and validates a JSON body into dst.
func decodeForm(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	return validation.DecodeAndValidate(r, dst)
}

// currentSession returns the request's session. The Session middleware
// guarantees one on every /api route.
func currentSession(r *http.Request) *session.Session {
	return session.FromContext(r.Context())
}
