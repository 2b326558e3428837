// Package session holds the ephemeral per-user flow state.
//
// Exactly one session may be active per user at a time. Replacement is
// an explicit operation that returns the discarded prior state, so call
// sites cannot silently lose an unfinished flow without it showing up
// in the contract. Sessions live until completed, cleared, or replaced;
// there is no expiry.
package session

import "sync"

// Kind identifies which flow a session belongs to.
type Kind string

const (
	KindCheckin    Kind = "check-in"
	KindBreathing  Kind = "breathing"
	KindGrounding  Kind = "grounding"
	KindPlanning   Kind = "planning"
	KindTriggerLog Kind = "trigger-log"
)

// State is the in-progress state of one flow. Each flow defines its own
// concrete state type with named steps, so a check-in step index can
// never be confused with a grounding one.
type State interface {
	Kind() Kind
}

// Store keeps the active session per user. Safe for concurrent use;
// access is per-key and last-write-wins, which is enough because a
// user cannot have two concurrent turns in this channel model.
type Store struct {
	mu     sync.RWMutex
	active map[int64]State
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{active: make(map[int64]State)}
}

// Get returns the active session for the user, if any.
func (s *Store) Get(userID int64) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.active[userID]
	return st, ok
}

// Replace installs a new session for the user and returns the prior
// one if a flow was already in progress. Starting a new flow always
// goes through here so the overwrite is visible to the caller.
func (s *Store) Replace(userID int64, st State) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prior, had := s.active[userID]
	s.active[userID] = st
	return prior, had
}

// Clear removes the user's active session, if any.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, userID)
}
