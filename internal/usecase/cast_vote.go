package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// CastVoteParams contains parameters for voting on an Azorius proposal
type CastVoteParams struct {
	DAO        *models.DAO
	ProposalID string
	Choice     models.VoteChoice
}

// CastVote votes on an active Azorius proposal
type CastVote struct {
	lister   *ListProposals
	executor GovernanceExecutor
	store    DAOStore
	runner   *actionRunner
	log      *slog.Logger
}

// NewCastVote creates a new CastVote use case
func NewCastVote(
	lister *ListProposals,
	executor GovernanceExecutor,
	store DAOStore,
	pending *PendingActions,
	notifier Notifier,
	log *slog.Logger,
) *CastVote {
	log = log.With("usecase", "cast_vote")
	return &CastVote{
		lister:   lister,
		executor: executor,
		store:    store,
		runner:   &actionRunner{pending: pending, notifier: notifier, log: log},
		log:      log,
	}
}

// Run executes the cast vote use case
func (uc *CastVote) Run(ctx context.Context, params CastVoteParams) (*ActionResult, error) {
	dao := params.DAO
	if !dao.HasAzorius() {
		return nil, fmt.Errorf("%w: %s has no Azorius module", domain.ErrNotFound, dao.Name)
	}

	listing, err := uc.lister.Run(ctx, ListProposalsParams{
		DAO:    dao,
		Filter: domain.ProposalFilter{Kind: models.ProposalKindAzorius, IncludeTerminal: true},
	})
	if err != nil {
		return nil, err
	}

	proposal, action, err := resolveTarget(listing, params.ProposalID, false)
	if err != nil {
		return nil, err
	}
	if action.Pending {
		return nil, fmt.Errorf("%w: %s", domain.ErrActionPending, proposal.ID)
	}
	if action.Kind != models.ActionVote || !action.Enabled {
		return nil, domain.ActionUnavailableError{ProposalID: proposal.ID, Requested: models.ActionVote, Available: action}
	}

	if uc.executor.Account() == "" {
		return skipped(dao, proposal.ID, models.ActionVote, "no wallet configured, set TREB_GOV_PRIVATE_KEY"), nil
	}

	result, err := uc.runner.run(ctx, attempt{
		dao:        dao,
		pendingKey: proposal.ID,
		proposalID: proposal.ID,
		action:     models.ActionVote,
		message:    fmt.Sprintf("Voting %s on proposal #%s", params.Choice, proposal.ID),
		submit: func(ctx context.Context) (string, error) {
			return uc.executor.CastVote(ctx, dao, proposal.Azorius.ProposalID, params.Choice)
		},
	})
	if err != nil {
		return nil, err
	}

	uc.store.Invalidate(dao.Key)
	result.Refreshed = refresh(ctx, uc.lister, dao, uc.log)
	return result, nil
}
