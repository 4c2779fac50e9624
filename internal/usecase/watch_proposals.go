package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// WatchTrigger says why a watch refresh happened
type WatchTrigger string

const (
	TriggerInitial WatchTrigger = "initial"
	TriggerTick    WatchTrigger = "tick"
	TriggerEvent   WatchTrigger = "event"
)

// WatchProposalsParams contains parameters for watching a DAO
type WatchProposalsParams struct {
	DAO      *models.DAO
	Filter   domain.ProposalFilter
	Interval time.Duration
}

// WatchUpdate is delivered after every refresh. Err is set when the refresh
// failed; Result then holds nil.
type WatchUpdate struct {
	Trigger WatchTrigger
	Event   *models.ContractEvent
	Result  *ProposalListResult
	Err     error
	At      time.Time
}

// WatchProposals keeps a DAO's listing fresh on a ticker and on contract events
type WatchProposals struct {
	config *config.RuntimeConfig
	lister *ListProposals
	events DAOEventSource
	store  DAOStore
	log    *slog.Logger
}

// NewWatchProposals creates a new WatchProposals use case. Refreshes do not
// report progress since the watch view owns the terminal.
func NewWatchProposals(cfg *config.RuntimeConfig, lister *ListProposals, events DAOEventSource, store DAOStore, log *slog.Logger) *WatchProposals {
	return &WatchProposals{
		config: cfg,
		lister: lister.WithProgress(NopProgress{}),
		events: events,
		store:  store,
		log:    log.With("usecase", "watch_proposals"),
	}
}

// Run refreshes until ctx is cancelled. Subscriptions are torn down before it
// returns. onUpdate is called from Run's goroutine only.
func (uc *WatchProposals) Run(ctx context.Context, params WatchProposalsParams, onUpdate func(WatchUpdate)) error {
	interval := params.Interval
	if interval <= 0 {
		interval = uc.config.PollInterval
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}

	// Coalesce bursts of events into a single pending refresh
	triggered := make(chan models.ContractEvent, 1)
	unsubscribe, err := uc.events.WatchDAO(ctx, params.DAO, func(e models.ContractEvent) {
		select {
		case triggered <- e:
		default:
		}
	})
	switch {
	case err == nil:
		defer unsubscribe()
	case errors.Is(err, domain.ErrMissingPrerequisite):
		uc.log.Info("contract events unavailable, polling only", "dao", params.DAO.Name, "reason", err)
	default:
		return err
	}

	refresh := func(trigger WatchTrigger, event *models.ContractEvent) {
		result, err := uc.lister.Run(ctx, ListProposalsParams{DAO: params.DAO, Filter: params.Filter})
		if err != nil && ctx.Err() != nil {
			return
		}
		if err != nil {
			uc.log.Warn("refresh failed", "dao", params.DAO.Name, "trigger", trigger, "error", err)
		}
		onUpdate(WatchUpdate{Trigger: trigger, Event: event, Result: result, Err: err, At: time.Now()})
	}

	refresh(TriggerInitial, nil)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			refresh(TriggerTick, nil)
		case e := <-triggered:
			if e.AffectsFreezeGuard() {
				uc.store.InvalidateFreezeGuard(params.DAO.Key)
			}
			uc.log.Debug("contract event", "dao", params.DAO.Name, "kind", e.Kind, "tx", e.TxHash)
			refresh(TriggerEvent, &e)
		}
	}
}
