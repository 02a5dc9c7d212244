package ingest

import (
	"sync"
	"time"
)

// Status describes the outcome of the most recent successful fetch cycle.
type Status struct {
	LastUpdated time.Time `json:"lastUpdated"`
	Incoming    bool      `json:"incoming"`
}

// Store publishes reconciled states to concurrent readers. The poll loop is
// the single writer; a new state is fully built before the pointer swap, so
// readers never observe a partially reconciled dataset.
type Store struct {
	mu     sync.RWMutex
	state  *State
	status Status
}

func NewStore() *Store {
	return &Store{state: &State{}}
}

// Current returns the latest published state. The returned state is
// immutable.
func (s *Store) Current() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Swap publishes a new state together with the cycle's new-data signal.
func (s *Store) Swap(st *State, incoming bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
	s.status = Status{LastUpdated: time.Now(), Incoming: incoming}
}

// Seed installs a warm-start state loaded from the archive without marking a
// fetch cycle as having happened.
func (s *Store) Seed(st *State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}
