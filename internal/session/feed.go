package session

import (
	"context"
	"sync"

	"shopfront/internal/store"
)

// Event types published on a Feed.
const (
	EventNotification  = "notification"
	EventLoginRequired = "login_required"
)

// feedBuffer bounds events queued for a slow subscriber.
const feedBuffer = 16

// Event is one message for the session's attached UI.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Feed fans session events out to subscribers. It implements
// store.Notifier so stores can publish notifications to it directly.
// Events for a subscriber whose buffer is full are dropped.
type Feed struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[int]chan Event)}
}

// Notify publishes n as a notification event.
func (f *Feed) Notify(_ context.Context, n store.Notification) {
	f.Publish(Event{Type: EventNotification, Data: n})
}

// Publish sends e to every subscriber without blocking.
func (f *Feed) Publish(e Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe returns an event channel and its cancel func.
func (f *Feed) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, feedBuffer)

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = ch
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
}
