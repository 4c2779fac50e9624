package usecase_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

const testFreezeVoting = "0x3333333333333333333333333333333333333333"

func freezeDAO() *models.DAO {
	dao := guardedDAO()
	dao.FreezeVoting = testFreezeVoting
	return dao
}

// freezeGuard returns guard data with an open freeze proposal created ten minutes ago
func freezeGuard(votes int64, voted bool) *models.FreezeGuard {
	return &models.FreezeGuard{
		GuardAddress:            testGuard,
		FreezeVotingAddress:     testFreezeVoting,
		TimelockPeriod:          time.Hour,
		ExecutionPeriod:         time.Hour,
		FreezeVotesThreshold:    big.NewInt(3),
		FreezeProposalVoteCount: big.NewInt(votes),
		FreezeProposalCreatedAt: fixedNow.Add(-10 * time.Minute),
		FreezePeriod:            24 * time.Hour,
		FreezeProposalPeriod:    time.Hour,
		UserHasFreezeVoted:      voted,
	}
}

func TestShowFreezeStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("reads the guard once and evaluates it", func(t *testing.T) {
		h := newHarness(t)
		dao := freezeDAO()
		h.reader.On("ReadFreezeGuard", mock.Anything, dao, ownerA).Return(freezeGuard(1, false), nil).Once()

		uc := usecase.NewShowFreezeStatus(h.reader, h.executor, h.store).WithClock(func() time.Time { return fixedNow })
		result, err := uc.Run(ctx, dao)
		require.NoError(t, err)
		assert.True(t, result.Status.ProposalActive)
		assert.False(t, result.Status.Frozen)
		assert.True(t, result.Status.CanVote)
		assert.Equal(t, big.NewInt(2), result.Status.VotesNeeded)

		// Second run is served from the store
		_, err = uc.Run(ctx, dao)
		require.NoError(t, err)
		h.reader.AssertExpectations(t)
	})

	t.Run("DAO without guard", func(t *testing.T) {
		h := newHarness(t)
		uc := usecase.NewShowFreezeStatus(h.reader, h.executor, h.store)
		_, err := uc.Run(ctx, testDAO())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCastFreezeVote(t *testing.T) {
	ctx := context.Background()

	newUseCase := func(h *harness) *usecase.CastFreezeVote {
		status := usecase.NewShowFreezeStatus(h.reader, h.executor, h.store).WithClock(func() time.Time { return fixedNow })
		return usecase.NewCastFreezeVote(status, h.executor, h.store, h.pending, h.notifier, discardLogger())
	}

	t.Run("votes against fresh guard data", func(t *testing.T) {
		h := newHarness(t)
		dao := freezeDAO()
		// A stale cached guard says the user already voted
		h.store.SetFreezeGuard(dao.Key, freezeGuard(1, true))
		h.reader.On("ReadFreezeGuard", mock.Anything, dao, ownerA).Return(freezeGuard(1, false), nil).Once()
		h.executor.On("CastFreezeVote", mock.Anything, dao).Return("0xfreeze", nil).Once()

		result, err := newUseCase(h).Run(ctx, dao)
		require.NoError(t, err)
		assert.Equal(t, "0xfreeze", result.TxHash)
		assert.Equal(t, usecase.ActionFreezeVote, result.Action)
		assert.Equal(t, []string{"pending", "success"}, h.notifier.events)
		assert.Equal(t, "Casting freeze vote on treasury", h.notifier.notes[0].Message)

		_, cached := h.store.FreezeGuard(dao.Key)
		assert.False(t, cached, "guard invalidated after the vote")
		h.executor.AssertExpectations(t)
	})

	t.Run("creates a proposal when none is open", func(t *testing.T) {
		h := newHarness(t)
		dao := freezeDAO()
		guard := freezeGuard(0, false)
		guard.FreezeProposalCreatedAt = time.Time{}
		h.reader.On("ReadFreezeGuard", mock.Anything, dao, ownerA).Return(guard, nil)
		h.executor.On("CastFreezeVote", mock.Anything, dao).Return("0xfreeze", nil)

		_, err := newUseCase(h).Run(ctx, dao)
		require.NoError(t, err)
		assert.Equal(t, "Creating freeze proposal on treasury", h.notifier.notes[0].Message)
	})

	t.Run("already voted", func(t *testing.T) {
		h := newHarness(t)
		dao := freezeDAO()
		h.reader.On("ReadFreezeGuard", mock.Anything, dao, ownerA).Return(freezeGuard(1, true), nil)

		_, err := newUseCase(h).Run(ctx, dao)
		var unavailable domain.ActionUnavailableError
		require.ErrorAs(t, err, &unavailable)
		assert.Contains(t, err.Error(), "already voted")
		h.executor.AssertNotCalled(t, "CastFreezeVote", mock.Anything, mock.Anything)
	})

	t.Run("already frozen", func(t *testing.T) {
		h := newHarness(t)
		dao := freezeDAO()
		h.reader.On("ReadFreezeGuard", mock.Anything, dao, ownerA).Return(freezeGuard(3, false), nil)

		_, err := newUseCase(h).Run(ctx, dao)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already frozen")
	})

	t.Run("skipped without freeze voting or wallet", func(t *testing.T) {
		h := newHarness(t)
		result, err := newUseCase(h).Run(ctx, guardedDAO())
		require.NoError(t, err)
		assert.True(t, result.Skipped)

		h.executor.account = ""
		result, err = newUseCase(h).Run(ctx, freezeDAO())
		require.NoError(t, err)
		assert.True(t, result.Skipped)
		assert.Contains(t, result.Reason, "wallet")
		h.reader.AssertNotCalled(t, "ReadFreezeGuard", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("one freeze vote at a time per DAO", func(t *testing.T) {
		h := newHarness(t)
		dao := freezeDAO()
		h.reader.On("ReadFreezeGuard", mock.Anything, dao, ownerA).Return(freezeGuard(1, false), nil)
		require.True(t, h.pending.TryClaim(dao.Key, "freeze", "other"))

		_, err := newUseCase(h).Run(ctx, dao)
		assert.ErrorIs(t, err, domain.ErrActionPending)
	})
}
