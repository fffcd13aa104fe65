package optimistic

import "sync"

// WholeStore is the sequencer key of actions that replace the entire state
// (refresh, load, clear). Starting one makes every older ticket stale.
const WholeStore = ""

// Ticket identifies one in-flight action.
type Ticket struct {
	key string
	seq uint64
}

// Key returns the entity key the ticket was issued for.
func (t Ticket) Key() string { return t.key }

// Sequencer hands out latest-wins tickets. A per-key ticket stays current
// until a newer ticket for the same key or a newer WholeStore ticket is
// issued. A WholeStore ticket stays current until any newer ticket is issued.
type Sequencer struct {
	mu      sync.Mutex
	next    uint64
	barrier uint64
	latest  map[string]uint64
}

// Begin issues a ticket for key.
func (s *Sequencer) Begin(key string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	if key == WholeStore {
		s.barrier = s.next
		clear(s.latest)
	} else {
		if s.latest == nil {
			s.latest = make(map[string]uint64)
		}
		s.latest[key] = s.next
	}
	return Ticket{key: key, seq: s.next}
}

// Current reports whether t is still the newest action for its key.
func (s *Sequencer) Current(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current(t)
}

// Finish reports whether t is current and releases its bookkeeping.
func (s *Sequencer) Finish(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok := s.current(t)
	if ok && t.key != WholeStore {
		delete(s.latest, t.key)
	}
	return ok
}

func (s *Sequencer) current(t Ticket) bool {
	if t.key == WholeStore {
		return t.seq == s.next
	}
	return t.seq > s.barrier && s.latest[t.key] == t.seq
}
