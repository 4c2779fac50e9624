package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
	"go.uber.org/goleak"
)

// watchRun runs a watch in the background and exposes its updates
type watchRun struct {
	updates chan usecase.WatchUpdate
	done    chan error
	cancel  context.CancelFunc
}

func startWatch(t *testing.T, uc *usecase.WatchProposals, params usecase.WatchProposalsParams) *watchRun {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	w := &watchRun{
		updates: make(chan usecase.WatchUpdate, 16),
		done:    make(chan error, 1),
		cancel:  cancel,
	}
	go func() {
		w.done <- uc.Run(ctx, params, func(u usecase.WatchUpdate) { w.updates <- u })
	}()
	t.Cleanup(cancel)
	return w
}

func (w *watchRun) next(t *testing.T) usecase.WatchUpdate {
	t.Helper()
	select {
	case u := <-w.updates:
		return u
	case err := <-w.done:
		t.Fatalf("watch returned early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a watch update")
	}
	return usecase.WatchUpdate{}
}

func (w *watchRun) stop(t *testing.T) error {
	t.Helper()
	w.cancel()
	select {
	case err := <-w.done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
	return nil
}

func TestWatchProposals(t *testing.T) {
	t.Run("refreshes on events and tears down on cancel", func(t *testing.T) {
		running := goleak.IgnoreCurrent()
		h := newHarness(t)
		dao := guardedDAO()
		h.expectSafe(5, multisig("0xaa", 5, 1))
		h.expectNoRPC()
		h.reader.On("ReadFreezeGuard", mock.Anything, dao, ownerA).Return(&models.FreezeGuard{GuardAddress: testGuard}, nil)

		var emit func(models.ContractEvent)
		var unsubscribed atomic.Bool
		events := &MockEventSource{}
		events.On("WatchDAO", mock.Anything, dao, mock.Anything).
			Run(func(args mock.Arguments) { emit = args.Get(2).(func(models.ContractEvent)) }).
			Return(func() { unsubscribed.Store(true) }, nil)

		uc := usecase.NewWatchProposals(h.cfg, h.lister, events, h.store, discardLogger())
		w := startWatch(t, uc, usecase.WatchProposalsParams{DAO: dao, Interval: time.Hour})

		initial := w.next(t)
		assert.Equal(t, usecase.TriggerInitial, initial.Trigger)
		require.NoError(t, initial.Err)
		require.Len(t, initial.Result.Entries, 1)
		_, cached := h.store.FreezeGuard(dao.Key)
		require.True(t, cached)

		emit(models.ContractEvent{Kind: models.EventFreezeVoteCast, DAO: dao.Key, TxHash: "0xevt"})
		update := w.next(t)
		assert.Equal(t, usecase.TriggerEvent, update.Trigger)
		require.NotNil(t, update.Event)
		assert.Equal(t, "0xevt", update.Event.TxHash)
		// The guard was invalidated and read again
		h.reader.AssertNumberOfCalls(t, "ReadFreezeGuard", 2)

		assert.NoError(t, w.stop(t))
		assert.True(t, unsubscribed.Load())
		goleak.VerifyNone(t, running)
	})

	t.Run("refreshes report no progress", func(t *testing.T) {
		h := newHarness(t)
		h.expectSafe(5, multisig("0xaa", 5, 1))
		h.expectNoRPC()
		events := &MockEventSource{}
		events.On("WatchDAO", mock.Anything, mock.Anything, mock.Anything).Return(func() {}, nil)

		progress := &recordingProgress{}
		lister := h.lister.WithProgress(progress)
		uc := usecase.NewWatchProposals(h.cfg, lister, events, h.store, discardLogger())
		w := startWatch(t, uc, usecase.WatchProposalsParams{DAO: testDAO(), Interval: time.Hour})

		require.NoError(t, w.next(t).Err)
		assert.NoError(t, w.stop(t))
		assert.Zero(t, progress.count())

		// The lister itself still reports to its sink
		_, err := lister.Run(context.Background(), usecase.ListProposalsParams{DAO: testDAO()})
		require.NoError(t, err)
		assert.NotZero(t, progress.count())
	})

	t.Run("polls on the interval", func(t *testing.T) {
		h := newHarness(t)
		h.expectSafe(5)
		h.expectNoRPC()
		events := &MockEventSource{}
		events.On("WatchDAO", mock.Anything, mock.Anything, mock.Anything).Return(func() {}, nil)

		uc := usecase.NewWatchProposals(h.cfg, h.lister, events, h.store, discardLogger())
		w := startWatch(t, uc, usecase.WatchProposalsParams{DAO: testDAO(), Interval: 10 * time.Millisecond})

		assert.Equal(t, usecase.TriggerInitial, w.next(t).Trigger)
		assert.Equal(t, usecase.TriggerTick, w.next(t).Trigger)
		assert.NoError(t, w.stop(t))
	})

	t.Run("falls back to polling without an RPC", func(t *testing.T) {
		h := newHarness(t)
		h.expectSafe(5)
		h.expectNoRPC()
		events := &MockEventSource{}
		events.On("WatchDAO", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: no rpc_url", domain.ErrMissingPrerequisite))

		uc := usecase.NewWatchProposals(h.cfg, h.lister, events, h.store, discardLogger())
		w := startWatch(t, uc, usecase.WatchProposalsParams{DAO: testDAO(), Interval: time.Hour})

		assert.Equal(t, usecase.TriggerInitial, w.next(t).Trigger)
		assert.NoError(t, w.stop(t))
	})

	t.Run("refresh errors are delivered, not fatal", func(t *testing.T) {
		h := newHarness(t)
		h.safe.On("GetSafeInfo", mock.Anything, mock.Anything).Return(nil, errors.New("service down"))
		h.safe.On("ListMultisigTransactions", mock.Anything, mock.Anything).Return([]*models.Proposal{}, nil)
		h.safe.On("ListModuleTransactions", mock.Anything, mock.Anything).Return([]*models.Proposal{}, nil)
		h.expectNoRPC()
		events := &MockEventSource{}
		events.On("WatchDAO", mock.Anything, mock.Anything, mock.Anything).Return(func() {}, nil)

		uc := usecase.NewWatchProposals(h.cfg, h.lister, events, h.store, discardLogger())
		w := startWatch(t, uc, usecase.WatchProposalsParams{DAO: testDAO(), Interval: time.Hour})

		update := w.next(t)
		assert.ErrorContains(t, update.Err, "service down")
		assert.Nil(t, update.Result)
		assert.NoError(t, w.stop(t))
	})

	t.Run("subscription failure is returned", func(t *testing.T) {
		h := newHarness(t)
		events := &MockEventSource{}
		events.On("WatchDAO", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("dial failed"))

		uc := usecase.NewWatchProposals(h.cfg, h.lister, events, h.store, discardLogger())
		err := uc.Run(context.Background(), usecase.WatchProposalsParams{DAO: testDAO()}, func(usecase.WatchUpdate) {
			t.Error("no update expected")
		})
		assert.ErrorContains(t, err, "dial failed")
	})
}
