// Package session holds the master password for a bounded lifetime.
//
// A Session is owned by its caller (CLI command or HTTP server). The password
// buffer is zeroed on Lock and when the inactivity timeout elapses.
package session

import (
	"errors"
	"sync"
	"time"
)

var ErrLocked = errors.New("session is locked: unlock with the master password")

type Session struct {
	mu       sync.Mutex
	password []byte
	timeout  time.Duration
	timer    *time.Timer
	onLock   func()
}

// Open copies password into a new unlocked session. The caller may clear its
// own copy immediately. A zero timeout disables auto-lock.
func Open(password []byte, timeout time.Duration) *Session {
	s := &Session{
		password: append([]byte(nil), password...),
		timeout:  timeout,
	}
	if timeout > 0 {
		s.timer = time.AfterFunc(timeout, s.Lock)
	}
	return s
}

// OnLock registers fn to run (once per lock) after the password is wiped.
func (s *Session) OnLock(fn func()) {
	s.mu.Lock()
	s.onLock = fn
	s.mu.Unlock()
}

// Password returns a copy of the password and refreshes the inactivity deadline.
// Caller must zero the returned slice after use.
func (s *Session) Password() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.password) == 0 {
		return nil, ErrLocked
	}
	if s.timer != nil {
		s.timer.Reset(s.timeout)
	}

	out := make([]byte, len(s.password))
	copy(out, s.password)
	return out, nil
}

// Locked reports whether the password has been wiped.
func (s *Session) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.password) == 0
}

// Lock wipes the password. Safe to call repeatedly and from the timer.
func (s *Session) Lock() {
	s.mu.Lock()
	if len(s.password) == 0 {
		s.mu.Unlock()
		return
	}
	clear(s.password)
	s.password = nil
	if s.timer != nil {
		s.timer.Stop()
	}
	fn := s.onLock
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}
