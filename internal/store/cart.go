package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"shopfront/internal/metrics"
	"shopfront/internal/model"
	"shopfront/internal/optimistic"
)

// CartState is a snapshot of the cart store. Cart is nil when the user has
// no cart or is logged out.
type CartState struct {
	Cart    *model.Cart `json:"cart"`
	Loading bool        `json:"loading"`
}

// Count is the number of distinct cart lines.
func (s CartState) Count() int {
	return s.Cart.ItemCount()
}

func cloneCartState(s CartState) CartState {
	s.Cart = s.Cart.Clone()
	return s
}

// AddOptions tunes AddItem.
type AddOptions struct {
	// ShowToast suppresses the cart summary notification when set to false.
	ShowToast *bool
}

// CartOptions configures a CartStore.
type CartOptions struct {
	Notifier Notifier
	// OnLoginRequired runs when an action needs a token and none is set.
	OnLoginRequired func(ctx context.Context)
	Metrics         *metrics.Metrics
	Logger          *slog.Logger
}

// CartStore is the single source of truth for one session's cart.
type CartStore struct {
	box     *optimistic.Box[CartState]
	api     CartService
	notify  Notifier
	onLogin func(ctx context.Context)
	metrics *metrics.Metrics
	logger  *slog.Logger

	tokenMu sync.RWMutex
	token   string
}

// NewCartStore creates an empty, logged-out cart store.
func NewCartStore(svc CartService, opts CartOptions) *CartStore {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = SlogNotifier{Logger: logger}
	}
	return &CartStore{
		box:     optimistic.NewBox(CartState{}, cloneCartState),
		api:     svc,
		notify:  notifier,
		onLogin: opts.OnLoginRequired,
		metrics: opts.Metrics,
		logger:  logger.With(slog.String("store", "cart")),
	}
}

// SetToken replaces the credential. Callers follow with Refresh.
func (s *CartStore) SetToken(token string) {
	s.tokenMu.Lock()
	s.token = token
	s.tokenMu.Unlock()
}

// Token returns the current credential.
func (s *CartStore) Token() string {
	s.tokenMu.RLock()
	defer s.tokenMu.RUnlock()
	return s.token
}

// Snapshot returns a copy of the current state.
func (s *CartStore) Snapshot() CartState {
	return s.box.Get()
}

// Count is the number of distinct lines in the cart.
func (s *CartStore) Count() int {
	var n int
	s.box.Read(func(st CartState) { n = st.Count() })
	return n
}

// Subscribe returns a coalescing change signal and its cancel func.
func (s *CartStore) Subscribe() (<-chan struct{}, func()) {
	return s.box.Subscribe()
}

// Refresh replaces the cart with the server's copy. Without a token the
// cart is cleared and nothing is fetched. On failure the previous cart is
// kept and the error returned.
func (s *CartStore) Refresh(ctx context.Context) error {
	token := s.Token()
	if token == "" {
		s.box.Reset(func(CartState) CartState { return CartState{} })
		s.record("refresh", metrics.OutcomeGuarded)
		return nil
	}

	outcome, _, err := optimistic.Run(ctx, s.box, optimistic.Update[CartState, *model.Cart]{
		Key: optimistic.WholeStore,
		Apply: func(st CartState) CartState {
			st.Loading = true
			return st
		},
		Call: func(ctx context.Context) (*model.Cart, error) {
			resp, err := s.api.GetCart(ctx, token)
			if err != nil {
				return nil, err
			}
			return resp.Data, nil
		},
		Commit: func(st CartState, c *model.Cart) CartState {
			st.Cart = c
			return st
		},
		Settle: func(st CartState, _ optimistic.Outcome) CartState {
			st.Loading = false
			return st
		},
	})
	s.record("refresh", outcome.String())
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load cart", slog.String("error", err.Error()))
	}
	return err
}

// AddItem adds one unit of productID. Without a token the user is told to
// log in and the login hook runs. There is no optimistic step: the cart is
// replaced once the server confirms, using a fresh GET so that lines carry
// populated products.
func (s *CartStore) AddItem(ctx context.Context, productID string, opts AddOptions) error {
	return s.addItem(ctx, productID, opts, false)
}

func (s *CartStore) addItem(ctx context.Context, productID string, opts AddOptions, quiet bool) error {
	token := s.Token()
	if token == "" {
		s.notify.Notify(ctx, Notification{Level: LevelError, Message: MsgLoginToAddToCart})
		if s.onLogin != nil {
			s.onLogin(ctx)
		}
		s.record("add_item", metrics.OutcomeGuarded)
		return nil
	}

	outcome, cart, err := optimistic.Run(ctx, s.box, optimistic.Update[CartState, *model.Cart]{
		Key: productID,
		Call: func(ctx context.Context) (*model.Cart, error) {
			resp, err := s.api.AddToCart(ctx, token, productID)
			if err != nil {
				return nil, err
			}
			full := resp.Data
			refreshed, err := s.api.GetCart(ctx, token)
			if err != nil {
				s.logger.WarnContext(ctx, "cart fetch after add failed; using add response",
					slog.String("product_id", productID),
					slog.String("error", err.Error()),
				)
			} else {
				full = refreshed.Data
			}
			return full, nil
		},
		Commit: func(st CartState, c *model.Cart) CartState {
			st.Cart = c
			return st
		},
	})
	s.record("add_item", outcome.String())

	switch {
	case outcome == optimistic.Stale:
		return err
	case err != nil && quiet:
		return err
	case err != nil:
		s.notify.Notify(ctx, Notification{Level: LevelError, Message: model.UserMessage(err, MsgAddFailed)})
		return err
	}

	if !quiet && (opts.ShowToast == nil || *opts.ShowToast) {
		s.notify.Notify(ctx, Notification{
			Level:    LevelSuccess,
			Message:  MsgAddedToCart,
			Cart:     cart.Clone(),
			Duration: CartToastDuration,
		})
	}
	return nil
}

// UpdateQuantity sets productID's line to count, optimistically rewriting
// the line and the total. Callers clamp count with ClampQuantity.
func (s *CartStore) UpdateQuantity(ctx context.Context, productID string, count int) error {
	return s.updateQuantity(ctx, productID, count, false)
}

func (s *CartStore) updateQuantity(ctx context.Context, productID string, count int, quiet bool) error {
	token := s.Token()
	if token == "" {
		s.record("update_quantity", metrics.OutcomeGuarded)
		return nil
	}

	prev := -1
	outcome, _, err := optimistic.Run(ctx, s.box, optimistic.Update[CartState, *model.Cart]{
		Key: productID,
		Apply: func(st CartState) CartState {
			if st.Cart == nil {
				return st
			}
			if i := st.Cart.Line(productID); i >= 0 {
				prev = st.Cart.Products[i].Count
				st.Cart.Products[i].Count = count
			}
			st.Cart.Recalculate()
			return st
		},
		Undo: func(st CartState) CartState {
			if i := st.Cart.Line(productID); i >= 0 && prev >= 0 {
				st.Cart.Products[i].Count = prev
				st.Cart.Recalculate()
			}
			return st
		},
		Call: func(ctx context.Context) (*model.Cart, error) {
			resp, err := s.api.UpdateCartItem(ctx, token, productID, count)
			if err != nil {
				return nil, err
			}
			return resp.Data, nil
		},
		Commit: func(st CartState, c *model.Cart) CartState {
			st.Cart = c
			return st
		},
	})
	return s.finish(ctx, "update_quantity", outcome, err, quiet, MsgQuantityUpdated, MsgUpdateFailed)
}

// RemoveItem drops productID's line, optimistically filtering it out.
func (s *CartStore) RemoveItem(ctx context.Context, productID string) error {
	return s.removeItem(ctx, productID, false)
}

func (s *CartStore) removeItem(ctx context.Context, productID string, quiet bool) error {
	token := s.Token()
	if token == "" {
		s.record("remove_item", metrics.OutcomeGuarded)
		return nil
	}

	var removed *model.CartProduct
	at := 0
	outcome, _, err := optimistic.Run(ctx, s.box, optimistic.Update[CartState, *model.Cart]{
		Key: productID,
		Apply: func(st CartState) CartState {
			if st.Cart == nil {
				return st
			}
			kept := st.Cart.Products[:0]
			for i, line := range st.Cart.Products {
				if line.Product.ID() != productID {
					kept = append(kept, line)
				} else {
					removed, at = &line, i
				}
			}
			st.Cart.Products = kept
			st.Cart.Recalculate()
			return st
		},
		Undo: func(st CartState) CartState {
			if removed == nil || st.Cart == nil || st.Cart.Line(productID) >= 0 {
				return st
			}
			st.Cart.Products = slices.Insert(st.Cart.Products, min(at, len(st.Cart.Products)), *removed)
			st.Cart.Recalculate()
			return st
		},
		Call: func(ctx context.Context) (*model.Cart, error) {
			resp, err := s.api.RemoveCartItem(ctx, token, productID)
			if err != nil {
				return nil, err
			}
			return resp.Data, nil
		},
		Commit: func(st CartState, c *model.Cart) CartState {
			st.Cart = c
			return st
		},
	})
	return s.finish(ctx, "remove_item", outcome, err, quiet, MsgItemRemoved, MsgRemoveFailed)
}

// Clear empties the cart, optimistically dropping it to nil.
func (s *CartStore) Clear(ctx context.Context) error {
	token := s.Token()
	if token == "" {
		s.record("clear", metrics.OutcomeGuarded)
		return nil
	}

	outcome, _, err := optimistic.Run(ctx, s.box, optimistic.Update[CartState, struct{}]{
		Key: optimistic.WholeStore,
		Apply: func(st CartState) CartState {
			st.Cart = nil
			return st
		},
		Call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.ClearCart(ctx, token)
		},
	})
	return s.finish(ctx, "clear", outcome, err, false, MsgCartCleared, MsgClearFailed)
}

// finish records the outcome and tells the user how it went. Superseded
// and quiet actions stay silent.
func (s *CartStore) finish(ctx context.Context, action string, outcome optimistic.Outcome, err error, quiet bool, okMsg, failMsg string) error {
	s.record(action, outcome.String())
	if outcome == optimistic.Stale || quiet {
		return err
	}
	if err != nil {
		s.logger.WarnContext(ctx, "cart action failed",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
		s.notify.Notify(ctx, Notification{Level: LevelError, Message: model.UserMessage(err, failMsg)})
		return err
	}
	s.notify.Notify(ctx, Notification{Level: LevelSuccess, Message: okMsg})
	return nil
}

func (s *CartStore) record(action, outcome string) {
	s.metrics.StoreAction("cart", action, outcome)
}

// ClampQuantity enforces the minimum line quantity of 1.
func ClampQuantity(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
