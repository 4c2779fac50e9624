package domain

import (
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// ProposalFilter defines filtering options for proposal listings
type ProposalFilter struct {
	Kind   models.ProposalKind
	States []models.ProposalState
	// Actionable keeps only proposals whose primary or rejection action is enabled
	Actionable bool
	// IncludeTerminal keeps executed, rejected, expired and failed proposals
	IncludeTerminal bool
}

// Matches reports whether a proposal passes the filter's kind and state constraints
func (f ProposalFilter) Matches(p *models.Proposal) bool {
	if f.Kind != "" && p.Kind != f.Kind {
		return false
	}
	if len(f.States) > 0 {
		for _, s := range f.States {
			if p.State == s {
				return true
			}
		}
		return false
	}
	if !f.IncludeTerminal && p.State.IsTerminal() {
		return false
	}
	return true
}
