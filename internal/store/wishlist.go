package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"shopfront/internal/localstore"
	"shopfront/internal/metrics"
	"shopfront/internal/model"
	"shopfront/internal/optimistic"
)

// WishlistState is a snapshot of the wishlist store. For guests only IDs
// are known; Products stays empty.
type WishlistState struct {
	IDs      []string        `json:"ids"`
	Products []model.Product `json:"products"`
	Count    int             `json:"count"`
	Loading  bool            `json:"loading"`
	Err      string          `json:"error,omitempty"`
}

func cloneWishlistState(s WishlistState) WishlistState {
	s.IDs = slices.Clone(s.IDs)
	s.Products = slices.Clone(s.Products)
	return s
}

// ToggleOptions tunes Toggle.
type ToggleOptions struct {
	// Silent suppresses success and error notifications, for bulk updates.
	Silent bool
}

// WishlistOptions configures a WishlistStore.
type WishlistOptions struct {
	Notifier Notifier
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// WishlistStore tracks favorited products for one device or session.
type WishlistStore struct {
	box     *optimistic.Box[WishlistState]
	api     WishlistService
	local   LocalStrategy
	notify  Notifier
	metrics *metrics.Metrics
	logger  *slog.Logger

	tokenMu sync.RWMutex
	token   string
}

// NewWishlistStore creates an empty guest-mode store. Guest ids persist in
// storage.
func NewWishlistStore(svc WishlistService, storage localstore.Storage, opts WishlistOptions) *WishlistStore {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = SlogNotifier{Logger: logger}
	}
	return &WishlistStore{
		box: optimistic.NewBox(WishlistState{
			IDs:      []string{},
			Products: []model.Product{},
		}, cloneWishlistState),
		api:     svc,
		local:   LocalStrategy{Storage: storage},
		notify:  notifier,
		metrics: opts.Metrics,
		logger:  logger.With(slog.String("store", "wishlist")),
	}
}

// SetToken replaces the credential and with it the strategy used by later
// actions. It does not reload; callers follow with Load.
func (s *WishlistStore) SetToken(token string) {
	s.tokenMu.Lock()
	s.token = token
	s.tokenMu.Unlock()
}

// Token returns the current credential.
func (s *WishlistStore) Token() string {
	s.tokenMu.RLock()
	defer s.tokenMu.RUnlock()
	return s.token
}

// Strategy returns the backend matching the current credential.
func (s *WishlistStore) Strategy() Strategy {
	if token := s.Token(); token != "" {
		return RemoteStrategy{API: s.api, Token: token}
	}
	return s.local
}

// Snapshot returns a copy of the current state.
func (s *WishlistStore) Snapshot() WishlistState {
	return s.box.Get()
}

// Subscribe returns a coalescing change signal and its cancel func.
func (s *WishlistStore) Subscribe() (<-chan struct{}, func()) {
	return s.box.Subscribe()
}

// IsInWishlist reports membership, including optimistic in-flight adds.
func (s *WishlistStore) IsInWishlist(productID string) bool {
	var ok bool
	s.box.Read(func(st WishlistState) { ok = slices.Contains(st.IDs, productID) })
	return ok
}

// Load replaces the state from the current backend. On failure the prior
// state is kept and Err is set.
func (s *WishlistStore) Load(ctx context.Context) error {
	strat := s.Strategy()
	var loadErr error

	outcome, _, err := optimistic.Run(ctx, s.box, optimistic.Update[WishlistState, Loaded]{
		Key: optimistic.WholeStore,
		Apply: func(st WishlistState) WishlistState {
			st.Loading = strat.Remote()
			st.Err = ""
			return st
		},
		Call: func(ctx context.Context) (Loaded, error) {
			l, err := strat.Load(ctx)
			loadErr = err
			return l, err
		},
		Commit: func(st WishlistState, l Loaded) WishlistState {
			st.IDs = l.IDs
			st.Products = l.Products
			st.Count = l.Count
			return st
		},
		Settle: func(st WishlistState, outcome optimistic.Outcome) WishlistState {
			st.Loading = false
			if loadErr != nil && outcome != optimistic.Stale {
				st.Err = model.UserMessage(loadErr, MsgWishlistLoadFailed)
			}
			return st
		},
	})
	s.record("load", outcome)
	if err != nil && outcome != optimistic.Stale {
		s.logger.WarnContext(ctx, "failed to load wishlist", slog.String("error", err.Error()))
		s.notify.Notify(ctx, Notification{Level: LevelError, Message: model.UserMessage(err, MsgWishlistLoadFailed)})
	}
	return err
}

// Toggle adds productID when absent and removes it when present. The change
// is visible immediately; a failed remote call reverts it, leaving toggles
// of other products in place. Additions do not insert into Products until
// the next Load.
func (s *WishlistStore) Toggle(ctx context.Context, productID string, opts ToggleOptions) error {
	strat := s.Strategy()
	var existed bool
	var next []string
	// Position and product of a removed id, for Undo.
	idAt, productAt := -1, -1
	var product model.Product

	outcome, _, err := optimistic.Run(ctx, s.box, optimistic.Update[WishlistState, struct{}]{
		Key: productID,
		Apply: func(st WishlistState) WishlistState {
			idAt = slices.Index(st.IDs, productID)
			existed = idAt >= 0
			if existed {
				productAt = slices.IndexFunc(st.Products, func(p model.Product) bool {
					return p.Identifier() == productID
				})
				if productAt >= 0 {
					product = st.Products[productAt]
				}
				st.IDs = slices.DeleteFunc(st.IDs, func(id string) bool { return id == productID })
				st.Products = slices.DeleteFunc(st.Products, func(p model.Product) bool {
					return p.Identifier() == productID
				})
				st.Count = max(0, st.Count-1)
			} else {
				st.IDs = append(st.IDs, productID)
				st.Count++
			}
			if !strat.Remote() {
				st.Count = len(st.IDs)
			}
			next = slices.Clone(st.IDs)
			return st
		},
		Undo: func(st WishlistState) WishlistState {
			present := slices.Contains(st.IDs, productID)
			switch {
			case existed && !present:
				st.IDs = slices.Insert(st.IDs, min(idAt, len(st.IDs)), productID)
				if productAt >= 0 {
					st.Products = slices.Insert(st.Products, min(productAt, len(st.Products)), product)
				}
				st.Count++
			case !existed && present:
				st.IDs = slices.DeleteFunc(st.IDs, func(id string) bool { return id == productID })
				st.Count = max(0, st.Count-1)
			}
			if !strat.Remote() {
				st.Count = len(st.IDs)
			}
			return st
		},
		Call: func(ctx context.Context) (struct{}, error) {
			if existed {
				return struct{}{}, strat.Remove(ctx, productID, next)
			}
			return struct{}{}, strat.Add(ctx, productID, next)
		},
	})
	s.record("toggle", outcome)

	if outcome == optimistic.Stale || opts.Silent {
		return err
	}
	if err != nil {
		s.logger.WarnContext(ctx, "wishlist toggle failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		s.notify.Notify(ctx, Notification{Level: LevelError, Message: model.UserMessage(err, MsgWishlistToggleFail)})
		return err
	}
	msg := MsgWishlistAdded
	if existed {
		msg = MsgWishlistRemoved
	}
	s.notify.Notify(ctx, Notification{Level: LevelSuccess, Message: msg})
	return nil
}

// Clear empties the wishlist optimistically. Remotely every id is deleted
// concurrently; if any delete fails the full prior state is restored.
func (s *WishlistStore) Clear(ctx context.Context) error {
	strat := s.Strategy()
	var ids []string

	outcome, _, err := optimistic.Run(ctx, s.box, optimistic.Update[WishlistState, struct{}]{
		Key: optimistic.WholeStore,
		Apply: func(st WishlistState) WishlistState {
			ids = slices.Clone(st.IDs)
			st.IDs = []string{}
			st.Products = []model.Product{}
			st.Count = 0
			return st
		},
		Call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, strat.Clear(ctx, ids)
		},
	})
	s.record("clear", outcome)

	if outcome == optimistic.Stale {
		return err
	}
	if err != nil {
		s.logger.WarnContext(ctx, "wishlist clear failed", slog.String("error", err.Error()))
		s.notify.Notify(ctx, Notification{Level: LevelError, Message: model.UserMessage(err, MsgWishlistClearFailed)})
		return err
	}
	s.notify.Notify(ctx, Notification{Level: LevelSuccess, Message: MsgWishlistCleared})
	return nil
}

// Reset drops to an empty state without touching any backend, as on
// logout before the guest list is reloaded.
func (s *WishlistStore) Reset() {
	s.box.Reset(func(WishlistState) WishlistState {
		return WishlistState{IDs: []string{}, Products: []model.Product{}}
	})
}

func (s *WishlistStore) record(action string, outcome optimistic.Outcome) {
	s.metrics.StoreAction("wishlist", action, outcome.String())
}
