package session

import (
	"sync"
	"time"
)

// Manager holds at most one Session for a long-running process such as the
// HTTP server. Unlocking replaces (and wipes) the previous session.
type Manager struct {
	mu      sync.Mutex
	current *Session
	timeout time.Duration
}

// NewManager creates a locked manager whose sessions expire after timeout
// of inactivity.
func NewManager(timeout time.Duration) *Manager {
	return &Manager{timeout: timeout}
}

// Unlock opens a new session with a copy of password.
func (m *Manager) Unlock(password []byte) {
	next := Open(password, m.timeout)

	m.mu.Lock()
	prev := m.current
	m.current = next
	m.mu.Unlock()

	if prev != nil {
		prev.Lock()
	}
}

// Lock wipes the current session, if any.
func (m *Manager) Lock() {
	m.mu.Lock()
	prev := m.current
	m.current = nil
	m.mu.Unlock()

	if prev != nil {
		prev.Lock()
	}
}

// Password returns a copy of the session password or ErrLocked.
// Caller must zero the returned slice after use.
func (m *Manager) Password() ([]byte, error) {
	m.mu.Lock()
	s := m.current
	m.mu.Unlock()

	if s == nil {
		return nil, ErrLocked
	}
	return s.Password()
}

// Locked reports whether no usable session is held.
func (m *Manager) Locked() bool {
	m.mu.Lock()
	s := m.current
	m.mu.Unlock()
	return s == nil || s.Locked()
}
