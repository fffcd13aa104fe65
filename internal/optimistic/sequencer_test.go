package optimistic

import "testing"

func TestSequencer(t *testing.T) {
	tests := []struct {
		name    string
		run     func(s *Sequencer) Ticket
		current bool
	}{
		{
			name:    "lone ticket is current",
			run:     func(s *Sequencer) Ticket { return s.Begin("p1") },
			current: true,
		},
		{
			name: "newer ticket on same key supersedes",
			run: func(s *Sequencer) Ticket {
				t := s.Begin("p1")
				s.Begin("p1")
				return t
			},
			current: false,
		},
		{
			name: "other keys do not interfere",
			run: func(s *Sequencer) Ticket {
				t := s.Begin("p1")
				s.Begin("p2")
				return t
			},
			current: true,
		},
		{
			name: "whole store supersedes keys",
			run: func(s *Sequencer) Ticket {
				t := s.Begin("p1")
				s.Begin(WholeStore)
				return t
			},
			current: false,
		},
		{
			name: "any newer action supersedes whole store",
			run: func(s *Sequencer) Ticket {
				t := s.Begin(WholeStore)
				s.Begin("p1")
				return t
			},
			current: false,
		},
		{
			name: "key started after whole store is current",
			run: func(s *Sequencer) Ticket {
				s.Begin(WholeStore)
				return s.Begin("p1")
			},
			current: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Sequencer
			ticket := tt.run(&s)
			if got := s.Current(ticket); got != tt.current {
				t.Errorf("Current() = %v, want %v", got, tt.current)
			}
		})
	}
}

func TestSequencer_FinishReleasesKey(t *testing.T) {
	var s Sequencer
	t1 := s.Begin("p1")
	if !s.Finish(t1) {
		t.Fatal("Finish() = false for current ticket")
	}
	if len(s.latest) != 0 {
		t.Errorf("latest has %d entries after Finish, want 0", len(s.latest))
	}
	if s.Finish(t1) {
		t.Error("finished ticket should not be current again")
	}
}
