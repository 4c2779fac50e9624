package events

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/trebuchet-org/treb-gov/internal/adapters/blockchain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// BackendProvider returns a connected RPC backend for a DAO
type BackendProvider interface {
	Backend(ctx context.Context, dao *models.DAO) (blockchain.Backend, error)
}

// DAOWatcher implements usecase.DAOEventSource with one Manager per watched DAO
type DAOWatcher struct {
	backends BackendProvider
	cfg      *config.RuntimeConfig
	log      *slog.Logger
}

// NewDAOWatcher creates a new DAO event watcher
func NewDAOWatcher(pool *blockchain.Pool, cfg *config.RuntimeConfig, log *slog.Logger) *DAOWatcher {
	return NewDAOWatcherWithBackends(pool, cfg, log)
}

// NewDAOWatcherWithBackends creates a watcher over any backend provider
func NewDAOWatcherWithBackends(backends BackendProvider, cfg *config.RuntimeConfig, log *slog.Logger) *DAOWatcher {
	return &DAOWatcher{backends: backends, cfg: cfg, log: log}
}

type watchedEvent struct {
	address string
	abi     abi.ABI
	name    string
	kind    models.ContractEventKind
}

// watchedEvents lists every event that can change a DAO's proposal state
func watchedEvents(dao *models.DAO) []watchedEvent {
	events := []watchedEvent{
		{dao.Safe, blockchain.SafeABI, "ExecutionSuccess", models.EventExecutionSuccess},
		{dao.Safe, blockchain.SafeABI, "ExecutionFailure", models.EventExecutionFailure},
	}
	if dao.FreezeGuard != "" {
		events = append(events,
			watchedEvent{dao.FreezeGuard, blockchain.FreezeGuardABI, "TransactionTimelocked", models.EventTransactionTimelocked})
	}
	if dao.FreezeVoting != "" {
		events = append(events,
			watchedEvent{dao.FreezeVoting, blockchain.FreezeVotingABI, "FreezeVoteCast", models.EventFreezeVoteCast},
			watchedEvent{dao.FreezeVoting, blockchain.FreezeVotingABI, "FreezeProposalCreated", models.EventFreezeProposalCreated})
	}
	if dao.Azorius != "" {
		events = append(events,
			watchedEvent{dao.Azorius, blockchain.AzoriusABI, "ProposalCreated", models.EventProposalCreated},
			watchedEvent{dao.Azorius, blockchain.AzoriusABI, "ProposalExecuted", models.EventProposalExecuted})
	}
	if dao.Strategy != "" {
		events = append(events,
			watchedEvent{dao.Strategy, blockchain.StrategyABI, "Voted", models.EventVoted})
	}
	return events
}

// WatchDAO subscribes to the DAO's contract events. The returned function
// removes every subscription and stops polling; it is also called when ctx ends.
func (w *DAOWatcher) WatchDAO(ctx context.Context, dao *models.DAO, fn func(models.ContractEvent)) (func(), error) {
	backend, err := w.backends.Backend(ctx, dao)
	if err != nil {
		return nil, err
	}

	manager := NewManager(backend, w.cfg.PollInterval, w.log.With("dao", dao.Name))

	var subs []*Subscription
	for _, ev := range watchedEvents(dao) {
		ev := ev
		decode := func(l types.Log) (models.ContractEvent, error) {
			return models.ContractEvent{
				Kind:        ev.kind,
				DAO:         dao.Key,
				Contract:    l.Address.Hex(),
				BlockNumber: l.BlockNumber,
				TxHash:      l.TxHash.Hex(),
			}, nil
		}
		filter := Filter{Address: common.HexToAddress(ev.address), Topic: ev.abi.Events[ev.name].ID}
		subs = append(subs, SubscribeEvent(manager, filter, decode, fn))
	}

	if err := manager.Start(ctx); err != nil {
		manager.Close()
		return nil, err
	}

	w.log.Debug("watching DAO events", "dao", dao.Name, "subscriptions", len(subs))

	return func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
		manager.Close()
	}, nil
}

// Ensure the watcher implements the interface
var _ usecase.DAOEventSource = (*DAOWatcher)(nil)
