package interactive

import (
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

func TestFuzzySearch(t *testing.T) {
	items := []string{"treasury-mainnet", "grants-sepolia", "ops"}
	search := createFuzzySearchFunc(items)

	assert.True(t, search("", 2))
	assert.True(t, search("TREAS", 0))
	assert.True(t, search("grsep", 1))
	assert.False(t, search("xyz", 0))
}

func TestSelectorShortCircuits(t *testing.T) {
	s := NewSelectorAdapter(&config.RuntimeConfig{NonInteractive: true})
	ctx := context.Background()

	dao := &models.DAO{Name: "only"}
	got, err := s.SelectDAO(ctx, []*models.DAO{dao}, "DAO")
	require.NoError(t, err)
	assert.Same(t, dao, got)

	_, err = s.SelectDAO(ctx, []*models.DAO{dao, {Name: "other"}}, "DAO")
	assert.ErrorContains(t, err, "non-interactive")

	_, err = s.SelectProposal(ctx, nil, "Proposal")
	assert.Error(t, err)
}

func TestFormatProposalOptions(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	entries := []usecase.ProposalEntry{
		{
			Proposal: &models.Proposal{
				ID:       "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaabbbb",
				Kind:     models.ProposalKindMultisig,
				Title:    "transfer",
				State:    models.ProposalStateExecutable,
				Multisig: &models.MultisigPayload{Nonce: 5},
			},
			Action: models.ExecutionAction{Kind: models.ActionExecute, Enabled: true},
		},
		{
			Proposal: &models.Proposal{ID: "3", Kind: models.ProposalKindAzorius, Title: "Grants", State: models.ProposalStateActive},
		},
	}

	options := formatProposalOptions(entries)
	assert.Equal(t, "#5 0xaaaaaa…bbbb transfer [EXECUTABLE] → execute", options[0])
	assert.Equal(t, "#3 Grants [ACTIVE]", options[1])
}
