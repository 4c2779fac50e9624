package governance

import (
	"math/big"
	"time"

	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// FreezeStatus summarises the freeze voting state of a DAO at a point in time
type FreezeStatus struct {
	ProposalActive bool       `json:"proposalActive" yaml:"proposalActive"`
	Frozen         bool       `json:"frozen" yaml:"frozen"`
	VotesNeeded    *big.Int   `json:"votesNeeded,omitempty" yaml:"votesNeeded,omitempty"`
	CanVote        bool       `json:"canVote" yaml:"canVote"`
	ProposalEndsAt *time.Time `json:"proposalEndsAt,omitempty" yaml:"proposalEndsAt,omitempty"`
	FrozenUntil    *time.Time `json:"frozenUntil,omitempty" yaml:"frozenUntil,omitempty"`
}

// EvaluateFreeze derives the freeze status from guard data
func EvaluateFreeze(guard *models.FreezeGuard, now time.Time) FreezeStatus {
	var status FreezeStatus
	if guard == nil || guard.FreezeVotingAddress == "" {
		return status
	}

	votes := guard.FreezeProposalVoteCount
	if votes == nil {
		votes = new(big.Int)
	}
	threshold := guard.FreezeVotesThreshold
	if threshold == nil {
		threshold = new(big.Int)
	}

	hasProposal := !guard.FreezeProposalCreatedAt.IsZero()
	if hasProposal {
		proposalEnds := guard.FreezeProposalCreatedAt.Add(guard.FreezeProposalPeriod)
		frozenUntil := guard.FreezeProposalCreatedAt.Add(guard.FreezePeriod)
		status.ProposalEndsAt = &proposalEnds
		status.ProposalActive = now.Before(proposalEnds)
		status.Frozen = votes.Cmp(threshold) >= 0 && now.Before(frozenUntil)
		if status.Frozen {
			status.FrozenUntil = &frozenUntil
		}
	}

	if status.ProposalActive {
		needed := new(big.Int).Sub(threshold, votes)
		if needed.Sign() < 0 {
			needed.SetInt64(0)
		}
		status.VotesNeeded = needed
	}

	// Voting outside an active proposal starts a new one
	status.CanVote = !status.Frozen && (!status.ProposalActive || !guard.UserHasFreezeVoted)
	return status
}
