package daostore

import (
	"bytes"
	"sort"
	"sync"

	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// Store keeps the last fetched state per DAO in memory
type Store struct {
	mu     sync.RWMutex
	states map[models.DAOKey]*models.DAOState
	guards map[models.DAOKey]*models.FreezeGuard
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		states: make(map[models.DAOKey]*models.DAOState),
		guards: make(map[models.DAOKey]*models.FreezeGuard),
	}
}

// Get returns the stored state of a DAO
func (s *Store) Get(key models.DAOKey) (*models.DAOState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[key]
	return state, ok
}

// Put replaces the state of a DAO. A guard carried by the state is stored too.
func (s *Store) Put(state *models.DAOState) {
	if state == nil || state.DAO == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.DAO.Key] = state
	if state.FreezeGuard != nil {
		s.guards[state.DAO.Key] = state.FreezeGuard
	}
}

// FreezeGuard returns the cached freeze guard data of a DAO
func (s *Store) FreezeGuard(key models.DAOKey) (*models.FreezeGuard, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	guard, ok := s.guards[key]
	return guard, ok
}

func (s *Store) SetFreezeGuard(key models.DAOKey, guard *models.FreezeGuard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guards[key] = guard
}

func (s *Store) InvalidateFreezeGuard(key models.DAOKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.guards, key)
}

// Invalidate drops everything stored for a DAO
func (s *Store) Invalidate(key models.DAOKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, key)
	delete(s.guards, key)
}

// Keys returns the keys of every stored DAO, ordered by chain id then Safe
// address. Malformed keys sort last.
func (s *Store) Keys() []models.DAOKey {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]models.DAOKey, 0, len(s.states))
	for k := range s.states {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
	return keys
}

func keyLess(a, b models.DAOKey) bool {
	chainA, safeA, errA := a.Parse()
	chainB, safeB, errB := b.Parse()
	switch {
	case errA != nil && errB != nil:
		return a < b
	case errA != nil:
		return false
	case errB != nil:
		return true
	case chainA != chainB:
		return chainA < chainB
	}
	return bytes.Compare(safeA.Bytes(), safeB.Bytes()) < 0
}

// Ensure the store implements the interface
var _ usecase.DAOStore = (*Store)(nil)
