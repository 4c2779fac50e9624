package usecase

import (
	"sync"

	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// PendingActions tracks proposals with an action in flight. A second action
// on the same proposal is refused until the first one settles.
type PendingActions struct {
	mu      sync.Mutex
	pending map[string]string
}

// NewPendingActions creates an empty tracker
func NewPendingActions() *PendingActions {
	return &PendingActions{pending: make(map[string]string)}
}

func pendingKey(dao models.DAOKey, proposalID string) string {
	return string(dao) + "/" + proposalID
}

// TryClaim marks the proposal as pending. It returns false if it already is.
func (p *PendingActions) TryClaim(dao models.DAOKey, proposalID, attemptID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := pendingKey(dao, proposalID)
	if _, ok := p.pending[key]; ok {
		return false
	}
	p.pending[key] = attemptID
	return true
}

// Release clears the pending mark
func (p *PendingActions) Release(dao models.DAOKey, proposalID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.pending, pendingKey(dao, proposalID))
}

// Has reports whether an action is pending for the proposal
func (p *PendingActions) Has(dao models.DAOKey, proposalID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.pending[pendingKey(dao, proposalID)]
	return ok
}
