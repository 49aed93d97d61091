package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultIdleTTL is how long a session may sit untouched before the sweeper
// evicts it.
const DefaultIdleTTL = 24 * time.Hour

type entry struct {
	mu       sync.Mutex
	sess     Session
	lastSeen time.Time
}

// Manager owns every live session. Each user's units of work are serialized
// by a per-user mutex held across the whole With call, so two updates to the
// same draft or page list can never interleave. Sessions idle past the TTL
// are evicted, dropping draft, state and both page lists.
type Manager struct {
	mu      sync.Mutex
	entries map[int64]*entry
	idleTTL time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

func NewManager(idleTTL time.Duration) *Manager {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Manager{
		entries: make(map[int64]*entry),
		idleTTL: idleTTL,
		logger:  slog.Default().With("component", "session"),
		now:     time.Now,
	}
}

// With runs fn with exclusive access to the user's session, creating it in
// the Idle state on first interaction.
func (m *Manager) With(userID int64, fn func(*Session)) {
	m.mu.Lock()
	e, ok := m.entries[userID]
	if !ok {
		e = &entry{}
		m.entries[userID] = e
	}
	e.lastSeen = m.now()
	m.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.sess)
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Sweep evicts sessions idle past the TTL and reports how many were dropped.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.idleTTL)
	evicted := 0
	for id, e := range m.entries {
		if e.lastSeen.Before(cutoff) {
			delete(m.entries, id)
			evicted++
		}
	}
	if evicted > 0 {
		m.logger.Info("evicted idle sessions", "count", evicted)
	}
	return evicted
}

// Run sweeps periodically until the context is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
