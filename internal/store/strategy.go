package store

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"shopfront/internal/localstore"
	"shopfront/internal/model"
)

// GuestWishlistKey is the device-storage key holding a guest's wishlist as a
// JSON array of product ids.
const GuestWishlistKey = "wishlist_guide_ids"

// maxConcurrentDeletes bounds the fan-out of a remote wishlist clear.
const maxConcurrentDeletes = 8

// Loaded is the result of reading a wishlist backend.
type Loaded struct {
	IDs      []string
	Products []model.Product
	Count    int
}

// Strategy is the persistence backend behind a WishlistStore. The store
// picks LocalStrategy for guests and RemoteStrategy once a token is set.
type Strategy interface {
	Load(ctx context.Context) (Loaded, error)
	// Add persists productID; next is the full id list after the change.
	Add(ctx context.Context, productID string, next []string) error
	// Remove deletes productID; next is the full id list after the change.
	Remove(ctx context.Context, productID string, next []string) error
	// Clear deletes every id in ids.
	Clear(ctx context.Context, ids []string) error
	// Remote reports whether the strategy talks to the network.
	Remote() bool
}

// LocalStrategy keeps guest wishlist ids in device storage.
type LocalStrategy struct {
	Storage localstore.Storage
}

// Load reads the stored ids. A missing or malformed value is an empty list.
func (l LocalStrategy) Load(ctx context.Context) (Loaded, error) {
	ids, err := ReadGuestIDs(ctx, l.Storage)
	if err != nil {
		return Loaded{}, err
	}
	return Loaded{IDs: ids, Products: []model.Product{}, Count: len(ids)}, nil
}

func (l LocalStrategy) Add(ctx context.Context, _ string, next []string) error {
	return l.write(ctx, next)
}

func (l LocalStrategy) Remove(ctx context.Context, _ string, next []string) error {
	return l.write(ctx, next)
}

func (l LocalStrategy) Clear(ctx context.Context, _ []string) error {
	return l.Storage.RemoveItem(ctx, GuestWishlistKey)
}

func (LocalStrategy) Remote() bool { return false }

func (l LocalStrategy) write(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encoding guest wishlist: %w", err)
	}
	return l.Storage.SetItem(ctx, GuestWishlistKey, string(data))
}

// ReadGuestIDs returns the guest wishlist ids held in s. Storage errors are
// returned; a missing or malformed value reads as empty.
func ReadGuestIDs(ctx context.Context, s localstore.Storage) ([]string, error) {
	raw, ok, err := s.GetItem(ctx, GuestWishlistKey)
	if err != nil {
		return nil, fmt.Errorf("reading guest wishlist: %w", err)
	}
	ids := []string{}
	if !ok {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(raw), &ids); err != nil || ids == nil {
		return []string{}, nil
	}
	return ids, nil
}

// RemoteStrategy syncs the wishlist with the remote API.
type RemoteStrategy struct {
	API   WishlistService
	Token string
}

func (r RemoteStrategy) Load(ctx context.Context) (Loaded, error) {
	resp, err := r.API.GetWishlist(ctx, r.Token)
	if err != nil {
		return Loaded{}, err
	}
	products := resp.Data
	if products == nil {
		products = []model.Product{}
	}
	ids := model.WishlistIDs(products)
	count := len(ids)
	if resp.Count != nil {
		count = *resp.Count
	}
	return Loaded{IDs: ids, Products: products, Count: count}, nil
}

func (r RemoteStrategy) Add(ctx context.Context, productID string, _ []string) error {
	_, err := r.API.AddToWishlist(ctx, r.Token, productID)
	return err
}

func (r RemoteStrategy) Remove(ctx context.Context, productID string, _ []string) error {
	_, err := r.API.RemoveFromWishlist(ctx, r.Token, productID)
	return err
}

// Clear issues one delete per id concurrently. The first failure cancels
// the remaining deletes and is returned.
func (r RemoteStrategy) Clear(ctx context.Context, ids []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDeletes)
	for _, id := range ids {
		g.Go(func() error {
			_, err := r.API.RemoveFromWishlist(ctx, r.Token, id)
			return err
		})
	}
	return g.Wait()
}

func (RemoteStrategy) Remote() bool { return true }
