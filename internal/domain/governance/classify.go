// Package governance derives proposal lifecycle state, rejection pairing and
// available actions from already-fetched Safe, guard and module data.
// Every function here is pure.
package governance

import (
	"time"

	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// GuardTiming carries the freeze guard periods used to classify multisig proposals.
// A nil *GuardTiming means the DAO has no freeze guard.
type GuardTiming struct {
	Loaded          bool
	TimelockPeriod  time.Duration
	ExecutionPeriod time.Duration
}

// GuardTimingFrom converts a loaded FreezeGuard into classifier input
func GuardTimingFrom(guard *models.FreezeGuard) *GuardTiming {
	if guard == nil {
		return &GuardTiming{Loaded: false}
	}
	return &GuardTiming{
		Loaded:          true,
		TimelockPeriod:  guard.TimelockPeriod,
		ExecutionPeriod: guard.ExecutionPeriod,
	}
}

// MultisigStateInput is everything needed to classify a multisig proposal
type MultisigStateInput struct {
	Confirmations int
	Threshold     int
	SafeNonce     uint64
	Nonce         uint64
	IsExecuted    bool
	Guard         *GuardTiming
	// TimelockedAt is nil when not read yet and the zero time when never timelocked
	TimelockedAt *time.Time
	Now          time.Time
}

// ClassifyMultisig maps a multisig proposal's attributes to its lifecycle state.
// It returns false when guard data needed for the decision has not been loaded.
func ClassifyMultisig(in MultisigStateInput) (models.ProposalState, bool) {
	if in.IsExecuted {
		return models.ProposalStateExecuted, true
	}
	if in.Confirmations < in.Threshold {
		return models.ProposalStateActive, true
	}
	if in.Nonce < in.SafeNonce {
		return models.ProposalStateRejected, true
	}
	if in.Guard == nil {
		return models.ProposalStateExecutable, true
	}
	if !in.Guard.Loaded || in.TimelockedAt == nil {
		return models.ProposalStateUnknown, false
	}
	if in.TimelockedAt.IsZero() {
		return models.ProposalStateTimelockable, true
	}

	timelockEnds := in.TimelockedAt.Add(in.Guard.TimelockPeriod)
	if in.Now.Before(timelockEnds) {
		return models.ProposalStateTimelocked, true
	}
	if !in.Now.After(timelockEnds.Add(in.Guard.ExecutionPeriod)) {
		return models.ProposalStateExecutable, true
	}
	return models.ProposalStateExpired, true
}

// azoriusStates mirrors the Azorius module's ProposalState enum
var azoriusStates = []models.ProposalState{
	models.ProposalStateActive,
	models.ProposalStateTimelocked,
	models.ProposalStateExecutable,
	models.ProposalStateExecuted,
	models.ProposalStateExpired,
	models.ProposalStateFailed,
}

// ClassifyAzorius maps the Azorius contract's state enum value
func ClassifyAzorius(raw uint8) (models.ProposalState, bool) {
	if int(raw) >= len(azoriusStates) {
		return models.ProposalStateUnknown, false
	}
	return azoriusStates[raw], true
}

// ClassifySnapshot maps a Snapshot proposal state string
func ClassifySnapshot(raw string) (models.ProposalState, bool) {
	switch raw {
	case "pending":
		return models.ProposalStatePending, true
	case "active":
		return models.ProposalStateActive, true
	case "closed":
		return models.ProposalStateClosed, true
	}
	return models.ProposalStateUnknown, false
}

// ClassifyContext is the DAO-level data shared by every proposal in a refresh
type ClassifyContext struct {
	SafeNonce uint64
	// Guard is nil when the DAO has no freeze guard
	Guard *GuardTiming
	Now   time.Time
}

// Classify computes the state of any proposal kind. An undetermined state is
// returned as ProposalStateUnknown with a nil error.
func Classify(p *models.Proposal, c ClassifyContext) (models.ProposalState, error) {
	switch p.Kind {
	case models.ProposalKindMultisig:
		if p.Multisig == nil {
			return models.ProposalStateUnknown, nil
		}
		state, _ := ClassifyMultisig(MultisigStateInput{
			Confirmations: len(p.Multisig.Confirmations),
			Threshold:     p.Multisig.SignersThreshold,
			SafeNonce:     c.SafeNonce,
			Nonce:         p.Multisig.Nonce,
			IsExecuted:    p.Multisig.IsExecuted,
			Guard:         c.Guard,
			TimelockedAt:  p.Multisig.TimelockedAt,
			Now:           c.Now,
		})
		return state, nil
	case models.ProposalKindAzorius:
		if p.Azorius == nil {
			return models.ProposalStateUnknown, nil
		}
		state, _ := ClassifyAzorius(p.Azorius.RawState)
		return state, nil
	case models.ProposalKindSnapshot:
		if p.Snapshot == nil {
			return models.ProposalStateUnknown, nil
		}
		state, _ := ClassifySnapshot(p.Snapshot.RawState)
		return state, nil
	case models.ProposalKindModule:
		return models.ProposalStateModule, nil
	default:
		return models.ProposalStateUnknown, domain.UnknownProposalKindError{Kind: p.Kind}
	}
}
