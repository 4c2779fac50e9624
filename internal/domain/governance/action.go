package governance

import (
	"fmt"

	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// ActionInput is what the selector needs to decide on a proposal's action
type ActionInput struct {
	Kind      models.ProposalKind
	State     models.ProposalState
	SafeNonce uint64
	Nonce     uint64
	Pending   bool
}

// SelectAction decides which action to offer for a classified proposal and
// whether it can be taken now.
func SelectAction(in ActionInput) models.ExecutionAction {
	var action models.ExecutionAction

	switch in.Kind {
	case models.ProposalKindMultisig:
		action = selectMultisig(in.State)
	case models.ProposalKindAzorius:
		action = selectAzorius(in.State)
	default:
		return models.ExecutionAction{Kind: models.ActionNone}
	}

	if !action.Enabled {
		return action
	}

	if in.Kind == models.ProposalKindMultisig && in.SafeNonce != in.Nonce {
		action.Enabled = false
		action.Reason = fmt.Sprintf("safe nonce is %d but proposal nonce is %d", in.SafeNonce, in.Nonce)
	}
	if in.Pending {
		action.Enabled = false
		action.Pending = true
		action.Reason = "another action is pending for this proposal"
	}
	return action
}

func selectMultisig(state models.ProposalState) models.ExecutionAction {
	switch state {
	case models.ProposalStateActive:
		return models.ExecutionAction{Kind: models.ActionAwaitSignatures, Reason: "awaiting signatures"}
	case models.ProposalStateExecutable:
		return models.ExecutionAction{Kind: models.ActionExecute, Enabled: true}
	case models.ProposalStateTimelockable:
		return models.ExecutionAction{Kind: models.ActionTimelock, Enabled: true}
	case models.ProposalStateTimelocked:
		return models.ExecutionAction{Kind: models.ActionExecute, Reason: "timelock period has not elapsed"}
	}
	return models.ExecutionAction{Kind: models.ActionNone}
}

func selectAzorius(state models.ProposalState) models.ExecutionAction {
	switch state {
	case models.ProposalStateActive:
		return models.ExecutionAction{Kind: models.ActionVote, Enabled: true}
	case models.ProposalStateExecutable:
		return models.ExecutionAction{Kind: models.ActionExecute, Enabled: true}
	case models.ProposalStateTimelocked:
		return models.ExecutionAction{Kind: models.ActionExecute, Reason: "timelock period has not elapsed"}
	}
	return models.ExecutionAction{Kind: models.ActionNone}
}

// SelectProposalAction runs SelectAction for a proposal
func SelectProposalAction(p *models.Proposal, safeNonce uint64, pending bool) models.ExecutionAction {
	nonce, _ := p.Nonce()
	return SelectAction(ActionInput{
		Kind:      p.Kind,
		State:     p.State,
		SafeNonce: safeNonce,
		Nonce:     nonce,
		Pending:   pending,
	})
}
