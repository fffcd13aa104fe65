// Package localstore is device-local key/value storage for guest state.
// It mirrors a browser's localStorage: string values under string keys,
// with a missing key distinct from an empty value.
package localstore

import (
	"context"
	"sync"
)

// Storage is the localStorage-like contract guest strategies persist through.
type Storage interface {
	// GetItem returns the value for key and whether it exists.
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Memory keeps values in process memory. The zero value is ready to use.
type Memory struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *Memory) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = make(map[string]string)
	}
	m.items[key] = value
	return nil
}

func (m *Memory) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// prefixed namespaces every key of an underlying Storage.
type prefixed struct {
	next   Storage
	prefix string
}

// WithPrefix scopes s to keys beginning with prefix, giving each server
// session its own guest storage on a shared backend.
func WithPrefix(s Storage, prefix string) Storage {
	return &prefixed{next: s, prefix: prefix}
}

func (p *prefixed) GetItem(ctx context.Context, key string) (string, bool, error) {
	return p.next.GetItem(ctx, p.prefix+key)
}

func (p *prefixed) SetItem(ctx context.Context, key, value string) error {
	return p.next.SetItem(ctx, p.prefix+key, value)
}

func (p *prefixed) RemoveItem(ctx context.Context, key string) error {
	return p.next.RemoveItem(ctx, p.prefix+key)
}
