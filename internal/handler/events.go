package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Server-sent event names.
const (
	sseCart     = "cart"
	sseWishlist = "wishlist"
)

// sseHeartbeat keeps idle connections open through proxies.
const sseHeartbeat = 25 * time.Second

// handleEvents streams the session's store snapshots and notifications as
// server-sent events. Both snapshots are sent on connect, then again after
// every state change; notifications and login prompts are forwarded as
// they are published.
// GET /api/events
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := currentSession(r)
	rc := http.NewResponseController(w)
	// The stream outlives the server's write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	cartCh, stopCart := sess.Cart.Subscribe()
	defer stopCart()
	wishlistCh, stopWishlist := sess.Wishlist.Subscribe()
	defer stopWishlist()
	feedCh, stopFeed := sess.Feed.Subscribe()
	defer stopFeed()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	send := func(event string, data any) bool {
		payload, err := json.Marshal(data)
		if err != nil {
			h.logger.ErrorContext(ctx, "encoding event failed",
				slog.String("event", event),
				slog.String("error", err.Error()))
			return true
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
			return false
		}
		return rc.Flush() == nil
	}

	if !send(sseCart, sess.Cart.Snapshot()) || !send(sseWishlist, sess.Wishlist.Snapshot()) {
		return
	}

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	for {
		var ok bool
		select {
		case <-ctx.Done():
			return
		case <-cartCh:
			ok = send(sseCart, sess.Cart.Snapshot())
		case <-wishlistCh:
			ok = send(sseWishlist, sess.Wishlist.Snapshot())
		case e := <-feedCh:
			ok = send(e.Type, e.Data)
		case <-heartbeat.C:
			_, err := fmt.Fprint(w, ": ping\n\n")
			ok = err == nil && rc.Flush() == nil
		}
		if !ok {
			return
		}
	}
}
