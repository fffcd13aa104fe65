// Package optimistic implements the optimistic-update protocol shared by the
// cart and wishlist stores:
//
//  1. snapshot the current state,
//  2. apply the expected next state synchronously,
//  3. issue the remote call outside the lock,
//  4. on success commit the server result (or keep the optimistic state),
//  5. on failure restore the snapshot, or undo only this action's change
//     when the state was written since.
//
// The protocol is one-shot; it never retries. Results that arrive after a
// newer action on the same entity (or on the whole store) are dropped
// without commit or rollback.
package optimistic

import (
	"context"
	"sync"
)

// Outcome is how an action resolved.
type Outcome int

const (
	// Committed means the call succeeded and its result is now the state.
	Committed Outcome = iota
	// RolledBack means the call failed and its optimistic step was undone.
	RolledBack
	// Failed means the call failed but there was no optimistic step to undo.
	Failed
	// Stale means a newer action superseded this one; state was not touched.
	Stale
)

func (o Outcome) String() string {
	switch o {
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled_back"
	case Failed:
		return "failed"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

// Box owns a state value of type S behind a RWMutex and notifies
// subscribers after every change. S is treated as a value: Apply and
// Commit receive a clone and return the next state.
type Box[S any] struct {
	mu    sync.RWMutex
	state S
	clone func(S) S
	seq   Sequencer
	// version counts state writes.
	version uint64

	subMu  sync.Mutex
	subs   map[int]chan struct{}
	nextID int
}

// NewBox creates a Box holding initial. clone must deep-copy S.
func NewBox[S any](initial S, clone func(S) S) *Box[S] {
	return &Box[S]{
		state: initial,
		clone: clone,
		subs:  make(map[int]chan struct{}),
	}
}

// Get returns a copy of the current state.
func (b *Box[S]) Get() S {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.clone(b.state)
}

// Read calls fn with the live state under the read lock. fn must not
// retain or mutate it.
func (b *Box[S]) Read(fn func(S)) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	fn(b.state)
}

// Set replaces the state with fn(copy of state) and notifies.
func (b *Box[S]) Set(fn func(S) S) {
	b.mu.Lock()
	b.state = fn(b.clone(b.state))
	b.version++
	b.mu.Unlock()
	b.notify()
}

// Reset replaces the state as a WholeStore action, so in-flight results
// are dropped when they resolve.
func (b *Box[S]) Reset(fn func(S) S) {
	b.mu.Lock()
	b.seq.Begin(WholeStore)
	b.state = fn(b.clone(b.state))
	b.version++
	b.mu.Unlock()
	b.notify()
}

// Subscribe returns a channel that receives a signal after state changes.
// Signals coalesce: a slow reader sees at most one pending signal. Call
// cancel to unsubscribe.
func (b *Box[S]) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	b.subMu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.subMu.Lock()
			delete(b.subs, id)
			b.subMu.Unlock()
		})
	}
}

func (b *Box[S]) notify() {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Update describes one optimistic action producing a remote result R.
type Update[S, R any] struct {
	// Key is the entity the action targets; WholeStore for the entire state.
	Key string
	// Apply computes the expected state before the call. Nil skips the
	// optimistic step, and a failure then leaves state untouched.
	Apply func(S) S
	// Call performs the remote request.
	Call func(ctx context.Context) (R, error)
	// Undo reverses Apply against a state that other actions have written
	// since. Nil restores the snapshot taken before Apply.
	Undo func(S) S
	// Commit folds a successful result into the state. Nil keeps the
	// optimistic state as final.
	Commit func(S, R) S
	// Settle runs under the lock after every outcome, including Stale.
	Settle func(S, Outcome) S
}

// Run executes u against b and reports how it resolved. The call's result
// and error are returned as-is so the caller can report them.
func Run[S, R any](ctx context.Context, b *Box[S], u Update[S, R]) (Outcome, R, error) {
	b.mu.Lock()
	snapshot := b.state
	ticket := b.seq.Begin(u.Key)
	if u.Apply != nil {
		b.state = u.Apply(b.clone(snapshot))
		b.version++
	}
	applied := b.version
	b.mu.Unlock()
	if u.Apply != nil {
		b.notify()
	}

	res, err := u.Call(ctx)

	b.mu.Lock()
	var outcome Outcome
	switch {
	case !b.seq.Finish(ticket):
		outcome = Stale
	case err != nil && u.Apply != nil:
		if b.version != applied && u.Undo != nil {
			b.state = u.Undo(b.clone(b.state))
		} else {
			b.state = snapshot
		}
		b.version++
		outcome = RolledBack
	case err != nil:
		outcome = Failed
	default:
		if u.Commit != nil {
			b.state = u.Commit(b.clone(b.state), res)
			b.version++
		}
		outcome = Committed
	}
	if u.Settle != nil {
		b.state = u.Settle(b.clone(b.state), outcome)
		b.version++
	}
	b.mu.Unlock()

	changed := outcome == Committed || outcome == RolledBack
	if changed || u.Settle != nil {
		b.notify()
	}
	return outcome, res, err
}
