package session

import (
	"sync"
	"testing"
	"time"

	"github.com/keepsake-bot/keepsake/pkg/events"
	"github.com/keepsake-bot/keepsake/pkg/memory"
)

func TestPageListNavigateClamps(t *testing.T) {
	var p PageList[int]
	p.Set([]int{10, 20, 30})

	if !p.AtStart() {
		t.Error("fresh list should be at start")
	}
	if p.Navigate(-1) {
		t.Error("navigating before the start must be rejected")
	}
	if p.Index() != 0 {
		t.Errorf("index corrupted by rejected navigation: %d", p.Index())
	}

	if !p.Navigate(1) || p.Index() != 1 {
		t.Fatalf("expected index 1, got %d", p.Index())
	}
	if !p.Navigate(1) || !p.AtEnd() {
		t.Fatalf("expected end of list, index %d", p.Index())
	}
	if p.Navigate(1) {
		t.Error("navigating past the end must be rejected")
	}

	cur, ok := p.Current()
	if !ok || cur != 30 {
		t.Errorf("current = %v, %v", cur, ok)
	}
}

func TestPageListEmpty(t *testing.T) {
	var p PageList[string]

	if _, ok := p.Current(); ok {
		t.Error("empty list should have no current item")
	}
	if p.Navigate(1) || p.Navigate(-1) {
		t.Error("navigation on an empty list must be a no-op")
	}
}

func TestPageListSetResetsIndex(t *testing.T) {
	var p PageList[int]
	p.Set([]int{1, 2, 3})
	p.Navigate(2)
	p.Set([]int{4, 5})
	if p.Index() != 0 {
		t.Errorf("index after Set = %d, want 0", p.Index())
	}
}

func TestCacheKindsAreIndependent(t *testing.T) {
	var s Session
	s.Events.Set([]events.Event{{Title: "a"}, {Title: "b"}})
	s.Events.Navigate(1)

	s.Memories.Set([]*memory.Memory{{ID: 1}})

	if s.Events.Index() != 1 || s.Events.Len() != 2 {
		t.Errorf("events list disturbed: index %d len %d", s.Events.Index(), s.Events.Len())
	}
	if s.Memories.Index() != 0 || s.Memories.Len() != 1 {
		t.Errorf("memories list wrong: index %d len %d", s.Memories.Index(), s.Memories.Len())
	}
}

func TestResetClearsFlowNotLists(t *testing.T) {
	var s Session
	s.State = AwaitingRating
	s.Draft = Draft{Date: "15.03.2024", Place: "Hermitage"}
	s.Category = events.CategoryConcert
	s.Events.Set([]events.Event{{Title: "a"}})

	s.Reset()

	if s.State != Idle {
		t.Errorf("state = %v", s.State)
	}
	if s.Draft != (Draft{}) {
		t.Errorf("draft not cleared: %+v", s.Draft)
	}
	if s.Category != "" {
		t.Errorf("category not cleared: %q", s.Category)
	}
	if s.Events.Len() != 1 {
		t.Error("page list should survive a reset")
	}
}

func TestManagerCreatesOnFirstUse(t *testing.T) {
	m := NewManager(time.Hour)

	m.With(1, func(s *Session) {
		if s.State != Idle {
			t.Errorf("new session state = %v", s.State)
		}
		s.State = AwaitingPlace
	})
	m.With(1, func(s *Session) {
		if s.State != AwaitingPlace {
			t.Error("session not retained between calls")
		}
	})
	if m.Len() != 1 {
		t.Errorf("len = %d", m.Len())
	}
}

func TestManagerSerializesPerUser(t *testing.T) {
	m := NewManager(time.Hour)

	const workers = 8
	const rounds = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				m.With(1, func(s *Session) {
					s.Draft.Rating++
				})
			}
		}()
	}
	wg.Wait()

	m.With(1, func(s *Session) {
		if s.Draft.Rating != workers*rounds {
			t.Errorf("lost updates: %d", s.Draft.Rating)
		}
	})
}

func TestManagerSweepEvictsIdle(t *testing.T) {
	m := NewManager(time.Minute)
	clock := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	m.With(1, func(s *Session) { s.State = AwaitingPhoto })
	clock = clock.Add(30 * time.Second)
	m.With(2, func(s *Session) {})

	clock = clock.Add(45 * time.Second)
	if n := m.Sweep(); n != 1 {
		t.Fatalf("evicted %d, want 1", n)
	}

	// user 1 starts fresh, user 2 survived
	m.With(1, func(s *Session) {
		if s.State != Idle {
			t.Error("evicted session should come back idle")
		}
	})
	if m.Len() != 2 {
		t.Errorf("len = %d", m.Len())
	}
}
