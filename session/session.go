// Package session holds the shell's last value and last error.
package session

import (
	"sync"

	"github.com/jonwraymond/inspectrepl/protocol"
)

// State is the owned record of the most recent statement outcome. Only the
// statement evaluator writes it; renderers and later evaluations read it.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Ordering: writes happen only after a direct evaluation has resolved.
type State struct {
	mu        sync.RWMutex
	value     protocol.RemoteValue
	hasValue  bool
	err       protocol.RemoteValue
	hasErr    bool
	completed int
}

// New creates an empty session.
func New() *State {
	return &State{}
}

// SetValue records a successful result.
func (s *State) SetValue(v protocol.RemoteValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
	s.hasValue = true
	s.completed++
}

// SetError records a thrown value.
func (s *State) SetError(v protocol.RemoteValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = v
	s.hasErr = true
	s.completed++
}

// LastValue returns the most recent successful result.
func (s *State) LastValue() (protocol.RemoteValue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.hasValue
}

// LastError returns the most recent thrown value.
func (s *State) LastError() (protocol.RemoteValue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err, s.hasErr
}

// Completed returns how many statements have resolved.
func (s *State) Completed() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.completed
}
