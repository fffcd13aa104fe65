package handler

import (
	"log/slog"
	"net/http"

	"shopfront/internal/middleware"
	"shopfront/internal/model"
	"shopfront/internal/validation"
)

// Messages shown after account flows.
const (
	msgPasswordReset = "Password reset successfully! Please login."
	msgRegistered    = "Account created"
)

type authResponse struct {
	Message string     `json:"message,omitempty"`
	User    model.User `json:"user"`
}

// handleLogin signs in against the remote API and attaches the token to the
// visitor's session, re-hydrating its cart and wishlist.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var form validation.LoginForm
	if err := decodeForm(w, r, &form); err != nil {
		h.writeError(w, err)
		return
	}

	resp, err := h.backend.Signin(r.Context(), form.Request())
	if err != nil {
		h.writeError(w, err)
		return
	}

	sess := currentSession(r)
	if err := h.sessions.Login(r.Context(), sess, resp.Token); err != nil {
		h.writeError(w, model.NewUnauthorizedError("Login failed"))
		return
	}
	if u := sess.User(); u != nil {
		middleware.AddLogAttrs(r.Context(), slog.String("user_id", u.UserID))
	}

	h.writeJSON(w, http.StatusOK, authResponse{Message: resp.Message, User: resp.User})
}

// handleRegister creates an account. The visitor still signs in separately.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var form validation.RegisterForm
	if err := decodeForm(w, r, &form); err != nil {
		h.writeError(w, err)
		return
	}

	resp, err := h.backend.Signup(r.Context(), form.Request())
	if err != nil {
		h.writeError(w, err)
		return
	}
	msg := resp.Message
	if msg == "" {
		msg = msgRegistered
	}
	h.writeJSON(w, http.StatusCreated, authResponse{Message: msg, User: resp.User})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(r.Context(), currentSession(r))
	w.WriteHeader(http.StatusNoContent)
}

// handleMe reports who the session belongs to.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	resp := map[string]any{"loggedIn": sess.LoggedIn()}
	if u := sess.User(); u != nil {
		resp["user"] = u
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// === Password reset: forgot → verify code → reset ===

func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var form validation.ForgotPasswordForm
	if err := decodeForm(w, r, &form); err != nil {
		h.writeError(w, err)
		return
	}
	resp, err := h.backend.ForgotPassword(r.Context(), form.Email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleVerifyResetCode(w http.ResponseWriter, r *http.Request) {
	var form validation.ResetCodeForm
	if err := decodeForm(w, r, &form); err != nil {
		h.writeError(w, err)
		return
	}
	resp, err := h.backend.VerifyResetCode(r.Context(), form.ResetCode)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var form validation.NewPasswordForm
	if err := decodeForm(w, r, &form); err != nil {
		h.writeError(w, err)
		return
	}
	if _, err := h.backend.ResetPassword(r.Context(), form.Email, form.NewPassword); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, model.StatusResponse{Status: "success", Message: msgPasswordReset})
}
