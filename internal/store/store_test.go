package store

import (
	"context"
	"sync"

	"shopfront/internal/model"
)

// recorder collects notifications for assertions.
type recorder struct {
	mu  sync.Mutex
	got []Notification
}

func (r *recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
}

func (r *recorder) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.got))
	copy(out, r.got)
	return out
}

func (r *recorder) last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.got) == 0 {
		return Notification{}, false
	}
	return r.got[len(r.got)-1], true
}

func product(id, title string, price int64) model.Product {
	return model.Product{ID: id, Title: title, Price: model.NewMoney(price)}
}

func line(p model.Product, count int) model.CartProduct {
	return model.CartProduct{
		ID:      "line-" + p.ID,
		Count:   count,
		Price:   p.Price,
		Product: model.RefProduct(p),
	}
}

func cart(lines ...model.CartProduct) *model.Cart {
	c := &model.Cart{ID: "cart1", Owner: "user1", Products: lines}
	c.Recalculate()
	return c
}

func ok(c *model.Cart) *model.CartResponse {
	return &model.CartResponse{Status: "success", NumOfCartItems: c.ItemCount(), CartID: c.ID, Data: c}
}

// gate blocks a mock call until released, so tests can observe in-flight
// optimistic state.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (g *gate) wait(ctx context.Context) error {
	g.entered <- struct{}{}
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
