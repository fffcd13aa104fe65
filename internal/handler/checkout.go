package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"shopfront/internal/model"
	"shopfront/internal/session"
	"shopfront/internal/store"
	"shopfront/internal/validation"
)

// Order flow messages.
const (
	msgOrderPlaced      = "Order placed successfully!"
	msgRedirectPayment  = "Redirecting to payment..."
	msgCartEmpty        = "Your cart is empty"
	msgAddressNotFound  = "Selected address not found"
	ordersReturnPath    = "/orders"
	defaultReturnScheme = "https"
)

type cashOrderRequest struct {
	AddressID string `json:"addressId" validate:"required"`
}

// checkoutSessionRequest names a saved address or carries one inline.
type checkoutSessionRequest struct {
	AddressID       string                          `json:"addressId"`
	ShippingAddress *validation.CheckoutAddressForm `json:"shippingAddress" validate:"required_without=AddressID"`
}

type checkoutSessionResponse struct {
	URL string `json:"url"`
}

// handleListOrders lists the signed-in user's orders. The user id comes from
// the session token's claims.
func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	u := sess.User()
	if u == nil {
		h.writeError(w, model.NewUnauthorizedError("Please login first"))
		return
	}
	orders, err := h.backend.UserOrders(r.Context(), sess.Token(), u.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, orders)
}

// handleCashOrder places a cash-on-delivery order for the session's cart.
// POST /api/orders/cash
func (h *Handler) handleCashOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req cashOrderRequest
	if err := decodeForm(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	sess := currentSession(r)
	cartID, err := h.checkoutCartID(r, sess)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "placing cash order",
		slog.String("cart_id", cartID),
		slog.String("address_id", req.AddressID),
	)

	order, err := h.backend.CreateCashOrder(ctx, sess.Token(), cartID, req.AddressID)
	if err != nil {
		sess.Feed.Notify(ctx, store.Notification{Level: store.LevelError, Message: model.UserMessage(err, "Failed to place order")})
		h.writeError(w, err)
		return
	}
	sess.Feed.Notify(ctx, store.Notification{Level: store.LevelSuccess, Message: msgOrderPlaced})

	// The API empties the cart once the order exists.
	if err := sess.Cart.Refresh(ctx); err != nil {
		h.logger.WarnContext(ctx, "cart refresh after order failed", slog.String("error", err.Error()))
	}

	h.writeJSON(w, http.StatusCreated, order)
}

// handleCheckoutSession starts a hosted card payment and returns the URL to
// send the shopper to.
// POST /api/orders/checkout-session
func (h *Handler) handleCheckoutSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req checkoutSessionRequest
	if err := decodeForm(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	sess := currentSession(r)
	cartID, err := h.checkoutCartID(r, sess)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var addr model.ShippingAddress
	if req.ShippingAddress != nil {
		addr = req.ShippingAddress.Address()
	} else {
		addr, err = h.savedAddress(r, sess, req.AddressID)
		if err != nil {
			h.writeError(w, err)
			return
		}
	}

	h.logger.InfoContext(ctx, "creating checkout session", slog.String("cart_id", cartID))

	cs, err := h.backend.CreateCheckoutSession(ctx, sess.Token(), cartID, h.returnURL(r), addr)
	if err != nil {
		sess.Feed.Notify(ctx, store.Notification{Level: store.LevelError, Message: model.UserMessage(err, "Failed to place order")})
		h.writeError(w, err)
		return
	}
	sess.Feed.Notify(ctx, store.Notification{Level: store.LevelSuccess, Message: msgRedirectPayment})
	h.writeJSON(w, http.StatusCreated, checkoutSessionResponse{URL: cs.Session.URL})
}

// checkoutCartID returns the id of the session's current, non-empty cart.
func (h *Handler) checkoutCartID(r *http.Request, sess *session.Session) (string, error) {
	if err := sess.Cart.Refresh(r.Context()); err != nil {
		return "", err
	}
	c := sess.Cart.Snapshot().Cart
	if c == nil || c.ID == "" || len(c.Products) == 0 {
		return "", model.NewValidationError(msgCartEmpty)
	}
	return c.ID, nil
}

func (h *Handler) savedAddress(r *http.Request, sess *session.Session, id string) (model.ShippingAddress, error) {
	addrs, err := h.backend.Addresses(r.Context(), sess.Token())
	if err != nil {
		return model.ShippingAddress{}, err
	}
	for _, a := range addrs {
		if a.ID == id {
			return model.ShippingAddress{Details: a.Details, Phone: a.Phone, City: a.City}, nil
		}
	}
	return model.ShippingAddress{}, model.NewNotFoundError(msgAddressNotFound)
}

// returnURL is the orders page the payment provider sends the shopper back
// to. Without a configured public URL it is derived from the request.
func (h *Handler) returnURL(r *http.Request) string {
	base := strings.TrimSuffix(h.opts.PublicBaseURL, "/")
	if base == "" {
		scheme := defaultReturnScheme
		if r.TLS == nil && !h.opts.SecureCookies {
			scheme = "http"
		}
		if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
			scheme = fwd
		}
		base = scheme + "://" + r.Host
	}
	return base + ordersReturnPath
}
