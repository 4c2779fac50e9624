package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/governance"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// freezeVoteKey is the pending key of a DAO's freeze vote, which has no proposal id
const freezeVoteKey = "freeze"

// ActionFreezeVote is the action kind reported for freeze votes
const ActionFreezeVote models.ActionKind = "freeze_vote"

// FreezeStatusResult is a DAO's freeze guard data and derived status
type FreezeStatusResult struct {
	DAO    *models.DAO             `json:"dao" yaml:"dao"`
	Guard  *models.FreezeGuard     `json:"guard,omitempty" yaml:"guard,omitempty"`
	Status governance.FreezeStatus `json:"status" yaml:"status"`
}

// ShowFreezeStatus reads the freeze guard and evaluates the freeze state
type ShowFreezeStatus struct {
	reader   GovernanceReader
	executor GovernanceExecutor
	store    DAOStore
	now      func() time.Time
}

// NewShowFreezeStatus creates a new ShowFreezeStatus use case
func NewShowFreezeStatus(reader GovernanceReader, executor GovernanceExecutor, store DAOStore) *ShowFreezeStatus {
	return &ShowFreezeStatus{reader: reader, executor: executor, store: store, now: time.Now}
}

// WithClock replaces the time source, for tests
func (uc *ShowFreezeStatus) WithClock(now func() time.Time) *ShowFreezeStatus {
	uc.now = now
	return uc
}

// Run executes the show freeze status use case
func (uc *ShowFreezeStatus) Run(ctx context.Context, dao *models.DAO) (*FreezeStatusResult, error) {
	if !dao.HasFreezeGuard() {
		return nil, fmt.Errorf("%w: %s has no freeze guard", domain.ErrNotFound, dao.Name)
	}

	guard, ok := uc.store.FreezeGuard(dao.Key)
	if !ok {
		var err error
		guard, err = uc.reader.ReadFreezeGuard(ctx, dao, uc.executor.Account())
		if err != nil {
			return nil, err
		}
		uc.store.SetFreezeGuard(dao.Key, guard)
	}

	return &FreezeStatusResult{
		DAO:    dao,
		Guard:  guard,
		Status: governance.EvaluateFreeze(guard, uc.now()),
	}, nil
}

// CastFreezeVote votes to freeze a DAO through its freeze voting contract
type CastFreezeVote struct {
	status   *ShowFreezeStatus
	executor GovernanceExecutor
	store    DAOStore
	runner   *actionRunner
}

// NewCastFreezeVote creates a new CastFreezeVote use case
func NewCastFreezeVote(
	status *ShowFreezeStatus,
	executor GovernanceExecutor,
	store DAOStore,
	pending *PendingActions,
	notifier Notifier,
	log *slog.Logger,
) *CastFreezeVote {
	return &CastFreezeVote{
		status:   status,
		executor: executor,
		store:    store,
		runner:   &actionRunner{pending: pending, notifier: notifier, log: log.With("usecase", "cast_freeze_vote")},
	}
}

// Run executes the cast freeze vote use case
func (uc *CastFreezeVote) Run(ctx context.Context, dao *models.DAO) (*ActionResult, error) {
	if dao.FreezeVoting == "" {
		return skipped(dao, "", ActionFreezeVote, "DAO has no freeze voting contract"), nil
	}
	if uc.executor.Account() == "" {
		return skipped(dao, "", ActionFreezeVote, "no wallet configured, set TREB_GOV_PRIVATE_KEY"), nil
	}

	// Always vote against fresh guard data
	uc.store.InvalidateFreezeGuard(dao.Key)
	current, err := uc.status.Run(ctx, dao)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanVote {
		reason := "already voted on the active freeze proposal"
		if current.Status.Frozen {
			reason = "DAO is already frozen"
		}
		return nil, domain.ActionUnavailableError{
			ProposalID: freezeVoteKey,
			Requested:  ActionFreezeVote,
			Available:  models.ExecutionAction{Kind: ActionFreezeVote, Reason: reason},
		}
	}

	message := fmt.Sprintf("Casting freeze vote on %s", dao.Name)
	if !current.Status.ProposalActive {
		message = fmt.Sprintf("Creating freeze proposal on %s", dao.Name)
	}

	result, err := uc.runner.run(ctx, attempt{
		dao:        dao,
		pendingKey: freezeVoteKey,
		action:     ActionFreezeVote,
		message:    message,
		submit: func(ctx context.Context) (string, error) {
			return uc.executor.CastFreezeVote(ctx, dao)
		},
	})
	if err != nil {
		return nil, err
	}

	uc.store.InvalidateFreezeGuard(dao.Key)
	return result, nil
}
