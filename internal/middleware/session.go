package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"shopfront/internal/session"
)

// SessionOptions configures the Session middleware.
type SessionOptions struct {
	Manager *session.Manager
	Signer  *session.Signer
	// Secure marks the cookie HTTPS-only.
	Secure bool
	MaxAge time.Duration
	Logger *slog.Logger
}

// Session returns middleware that resolves the visitor's session from its
// signed cookie. A valid cookie naming a session that is no longer live
// (evicted, or lost to a restart) recreates it under the same id, keeping
// the guest wishlist in storage. A missing or invalid cookie starts a new
// guest session. The session is stored in the request context.
func Session(opts SessionOptions) func(http.Handler) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			var sess *session.Session
			var id string

			if c, err := r.Cookie(session.CookieName); err == nil {
				if id, err = opts.Signer.Verify(c.Value); err == nil {
					sess, _ = opts.Manager.Get(id)
				} else {
					id = ""
					logger.DebugContext(ctx, "rejected session cookie", slog.String("error", err.Error()))
				}
			}

			if sess == nil {
				sess = opts.Manager.Create(ctx, id)
				value, err := opts.Signer.Sign(sess.ID, time.Now())
				if err != nil {
					logger.ErrorContext(ctx, "signing session cookie failed", slog.String("error", err.Error()))
					writeJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     session.CookieName,
					Value:    value,
					Path:     "/",
					MaxAge:   int(opts.MaxAge.Seconds()),
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			AddLogAttrs(ctx, slog.String("session_id", sess.ID))
			if u := sess.User(); u != nil {
				AddLogAttrs(ctx, slog.String("user_id", u.UserID))
			}
			next.ServeHTTP(w, r.WithContext(session.WithSession(ctx, sess)))
		})
	}
}

// RequireLogin rejects requests whose session has no token with 401, the
// server-side counterpart of redirecting to the login page.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		if sess == nil || !sess.LoggedIn() {
			writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Please login first")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSONError writes the storefront error envelope.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
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
