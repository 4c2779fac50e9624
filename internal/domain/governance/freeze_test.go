package governance

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

func TestEvaluateFreeze(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	base := func() *models.FreezeGuard {
		return &models.FreezeGuard{
			GuardAddress:            "0x01",
			FreezeVotingAddress:     "0x02",
			FreezeVotesThreshold:    big.NewInt(3),
			FreezeProposalVoteCount: big.NewInt(1),
			FreezeProposalCreatedAt: now.Add(-time.Hour),
			FreezeProposalPeriod:    2 * time.Hour,
			FreezePeriod:            24 * time.Hour,
		}
	}

	t.Run("no guard", func(t *testing.T) {
		status := EvaluateFreeze(nil, now)
		assert.False(t, status.Frozen)
		assert.False(t, status.CanVote)
	})

	t.Run("active proposal below threshold", func(t *testing.T) {
		status := EvaluateFreeze(base(), now)
		assert.True(t, status.ProposalActive)
		assert.False(t, status.Frozen)
		require.NotNil(t, status.VotesNeeded)
		assert.Equal(t, int64(2), status.VotesNeeded.Int64())
		assert.True(t, status.CanVote)
	})

	t.Run("user already voted", func(t *testing.T) {
		guard := base()
		guard.UserHasFreezeVoted = true
		status := EvaluateFreeze(guard, now)
		assert.False(t, status.CanVote)
	})

	t.Run("threshold reached freezes", func(t *testing.T) {
		guard := base()
		guard.FreezeProposalVoteCount = big.NewInt(3)
		status := EvaluateFreeze(guard, now)
		assert.True(t, status.Frozen)
		require.NotNil(t, status.FrozenUntil)
		assert.Equal(t, now.Add(23*time.Hour), *status.FrozenUntil)
		assert.False(t, status.CanVote)
	})

	t.Run("freeze period elapsed", func(t *testing.T) {
		guard := base()
		guard.FreezeProposalVoteCount = big.NewInt(3)
		status := EvaluateFreeze(guard, now.Add(48*time.Hour))
		assert.False(t, status.Frozen)
		assert.False(t, status.ProposalActive)
		assert.True(t, status.CanVote)
	})

	t.Run("no freeze proposal yet", func(t *testing.T) {
		guard := base()
		guard.FreezeProposalCreatedAt = time.Time{}
		status := EvaluateFreeze(guard, now)
		assert.False(t, status.ProposalActive)
		assert.Nil(t, status.ProposalEndsAt)
		assert.True(t, status.CanVote)
	})
}
