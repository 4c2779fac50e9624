package governance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

func TestSelectAction(t *testing.T) {
	tests := []struct {
		name        string
		input       ActionInput
		wantKind    models.ActionKind
		wantEnabled bool
		wantPending bool
	}{
		{
			name:        "active awaits signatures",
			input:       ActionInput{Kind: models.ProposalKindMultisig, State: models.ProposalStateActive, SafeNonce: 5, Nonce: 5},
			wantKind:    models.ActionAwaitSignatures,
			wantEnabled: false,
		},
		{
			name:        "executable with matching nonce",
			input:       ActionInput{Kind: models.ProposalKindMultisig, State: models.ProposalStateExecutable, SafeNonce: 5, Nonce: 5},
			wantKind:    models.ActionExecute,
			wantEnabled: true,
		},
		{
			name:        "executable with stale nonce",
			input:       ActionInput{Kind: models.ProposalKindMultisig, State: models.ProposalStateExecutable, SafeNonce: 4, Nonce: 5},
			wantKind:    models.ActionExecute,
			wantEnabled: false,
		},
		{
			name:        "timelockable",
			input:       ActionInput{Kind: models.ProposalKindMultisig, State: models.ProposalStateTimelockable, SafeNonce: 5, Nonce: 5},
			wantKind:    models.ActionTimelock,
			wantEnabled: true,
		},
		{
			name:        "timelockable with stale nonce",
			input:       ActionInput{Kind: models.ProposalKindMultisig, State: models.ProposalStateTimelockable, SafeNonce: 3, Nonce: 5},
			wantKind:    models.ActionTimelock,
			wantEnabled: false,
		},
		{
			name:        "timelocked waits for the guard",
			input:       ActionInput{Kind: models.ProposalKindMultisig, State: models.ProposalStateTimelocked, SafeNonce: 5, Nonce: 5},
			wantKind:    models.ActionExecute,
			wantEnabled: false,
		},
		{
			name:        "pending action disables",
			input:       ActionInput{Kind: models.ProposalKindMultisig, State: models.ProposalStateExecutable, SafeNonce: 5, Nonce: 5, Pending: true},
			wantKind:    models.ActionExecute,
			wantEnabled: false,
			wantPending: true,
		},
		{
			name:     "expired has no action",
			input:    ActionInput{Kind: models.ProposalKindMultisig, State: models.ProposalStateExpired, SafeNonce: 5, Nonce: 5},
			wantKind: models.ActionNone,
		},
		{
			name:     "executed has no action",
			input:    ActionInput{Kind: models.ProposalKindMultisig, State: models.ProposalStateExecuted, SafeNonce: 6, Nonce: 5},
			wantKind: models.ActionNone,
		},
		{
			name:     "undetermined has no action",
			input:    ActionInput{Kind: models.ProposalKindMultisig, State: models.ProposalStateUnknown, SafeNonce: 5, Nonce: 5},
			wantKind: models.ActionNone,
		},
		{
			name:        "azorius executable ignores nonce",
			input:       ActionInput{Kind: models.ProposalKindAzorius, State: models.ProposalStateExecutable, SafeNonce: 9},
			wantKind:    models.ActionExecute,
			wantEnabled: true,
		},
		{
			name:        "azorius active can vote",
			input:       ActionInput{Kind: models.ProposalKindAzorius, State: models.ProposalStateActive},
			wantKind:    models.ActionVote,
			wantEnabled: true,
		},
		{
			name:     "module transactions have no action",
			input:    ActionInput{Kind: models.ProposalKindModule, State: models.ProposalStateModule},
			wantKind: models.ActionNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectAction(tt.input)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantEnabled, got.Enabled)
			assert.Equal(t, tt.wantPending, got.Pending)
			if !got.Enabled && got.Kind != models.ActionNone {
				assert.NotEmpty(t, got.Reason)
			}
		})
	}
}

func TestSelectActionScenarios(t *testing.T) {
	t.Run("safe nonce 5, proposal nonce 5, threshold met, no guard", func(t *testing.T) {
		state, ok := ClassifyMultisig(MultisigStateInput{Confirmations: 2, Threshold: 2, SafeNonce: 5, Nonce: 5})
		assert.True(t, ok)
		action := SelectAction(ActionInput{Kind: models.ProposalKindMultisig, State: state, SafeNonce: 5, Nonce: 5})
		assert.Equal(t, models.ActionExecute, action.Kind)
		assert.True(t, action.Enabled)
	})

	t.Run("safe nonce 4, proposal nonce 5, threshold met", func(t *testing.T) {
		state, ok := ClassifyMultisig(MultisigStateInput{Confirmations: 2, Threshold: 2, SafeNonce: 4, Nonce: 5})
		assert.True(t, ok)
		action := SelectAction(ActionInput{Kind: models.ProposalKindMultisig, State: state, SafeNonce: 4, Nonce: 5})
		assert.Equal(t, models.ActionExecute, action.Kind)
		assert.False(t, action.Enabled)
	})

	t.Run("rejection sibling of an executed proposal resolves on its own", func(t *testing.T) {
		primary := multisigProposal("primary", 5, "0x0000000000000000000000000000000000000abc", "0", "0xdead", 2)
		primary.Multisig.IsExecuted = true
		rejection := multisigProposal("reject", 5, testSafe, "0", "", 1)

		AttachRejections(testSafe, []*models.Proposal{primary, rejection})
		best := primary.Multisig.Rejection
		if assert.NotNil(t, best) {
			assert.Equal(t, "reject", best.ID)
		}

		state, _ := ClassifyMultisig(MultisigStateInput{
			Confirmations: best.ConfirmationCount(),
			Threshold:     best.Multisig.SignersThreshold,
			SafeNonce:     6,
			Nonce:         best.Multisig.Nonce,
		})
		assert.Equal(t, models.ProposalStateActive, state)

		best.State = state
		action := SelectProposalAction(best, 6, false)
		assert.Equal(t, models.ActionAwaitSignatures, action.Kind)
		assert.False(t, action.Enabled)
	})
}
