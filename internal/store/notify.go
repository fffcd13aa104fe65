package store

import (
	"context"
	"log/slog"
	"time"

	"shopfront/internal/model"
)

// User-facing messages.
const (
	MsgLoginToAddToCart = "Please login to add items to cart"
	MsgAddedToCart      = "Added to cart"
	MsgQuantityUpdated  = "Quantity updated"
	MsgItemRemoved      = "Item removed"
	MsgCartCleared      = "Cart cleared"
	MsgAddFailed        = "Failed to add to cart"
	MsgUpdateFailed     = "Failed to update"
	MsgRemoveFailed     = "Failed to remove item"
	MsgClearFailed      = "Failed to clear cart"
	MsgCartReplaced     = "Cart updated"
	MsgReplaceFailed    = "Failed to update cart"

	MsgWishlistAdded       = "Added to wishlist"
	MsgWishlistRemoved     = "Removed from wishlist"
	MsgWishlistCleared     = "Wishlist cleared"
	MsgWishlistLoadFailed  = "Failed to load wishlist"
	MsgWishlistToggleFail  = "Wishlist operation failed"
	MsgWishlistClearFailed = "Failed to clear wishlist"
)

// CartToastDuration is how long the post-add cart summary stays visible.
const CartToastDuration = 5 * time.Second

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is a transient message for the user. Cart is set on the
// summary shown after an item is added.
type Notification struct {
	Level    Level         `json:"level"`
	Message  string        `json:"message"`
	Cart     *model.Cart   `json:"cart,omitempty"`
	Duration time.Duration `json:"-"`
}

// Notifier delivers notifications to whatever UI is attached.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// SlogNotifier writes notifications to a logger. It is the default when no
// UI is attached.
type SlogNotifier struct {
	Logger *slog.Logger
}

func (s SlogNotifier) Notify(ctx context.Context, n Notification) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	if n.Level == LevelError {
		level = slog.LevelWarn
	}
	attrs := []slog.Attr{slog.String("level", string(n.Level))}
	if n.Cart != nil {
		attrs = append(attrs, slog.Int("cart_items", n.Cart.ItemCount()))
	}
	logger.LogAttrs(ctx, level, n.Message, attrs...)
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, x := range m {
		x.Notify(ctx, n)
	}
}
