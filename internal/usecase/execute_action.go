package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/governance"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// ExecuteActionParams contains parameters for executing or timelocking a proposal
type ExecuteActionParams struct {
	DAO        *models.DAO
	ProposalID string
	Action     models.ActionKind
	// Rejection targets the rejection sibling of ProposalID
	Rejection bool
}

// ExecuteAction timelocks or executes a proposal once its state allows it
type ExecuteAction struct {
	lister   *ListProposals
	executor GovernanceExecutor
	store    DAOStore
	runner   *actionRunner
	log      *slog.Logger
}

// NewExecuteAction creates a new ExecuteAction use case
func NewExecuteAction(
	lister *ListProposals,
	executor GovernanceExecutor,
	store DAOStore,
	pending *PendingActions,
	notifier Notifier,
	log *slog.Logger,
) *ExecuteAction {
	log = log.With("usecase", "execute_action")
	return &ExecuteAction{
		lister:   lister,
		executor: executor,
		store:    store,
		runner:   &actionRunner{pending: pending, notifier: notifier, log: log},
		log:      log,
	}
}

// Run executes the execute action use case
func (uc *ExecuteAction) Run(ctx context.Context, params ExecuteActionParams) (*ActionResult, error) {
	dao := params.DAO
	if params.Action != models.ActionExecute && params.Action != models.ActionTimelock {
		return nil, fmt.Errorf("unsupported action %q", params.Action)
	}

	listing, err := uc.lister.Run(ctx, ListProposalsParams{
		DAO:    dao,
		Filter: domain.ProposalFilter{IncludeTerminal: true},
	})
	if err != nil {
		return nil, err
	}

	proposal, action, err := resolveTarget(listing, params.ProposalID, params.Rejection)
	if err != nil {
		return nil, err
	}

	if action.Pending {
		return nil, fmt.Errorf("%w: %s", domain.ErrActionPending, proposal.ID)
	}
	if action.Kind != params.Action || !action.Enabled {
		return nil, domain.ActionUnavailableError{ProposalID: proposal.ID, Requested: params.Action, Available: action}
	}

	if uc.executor.Account() == "" {
		return skipped(dao, proposal.ID, params.Action, "no wallet configured, set TREB_GOV_PRIVATE_KEY"), nil
	}
	if params.Action == models.ActionTimelock && !dao.HasFreezeGuard() {
		return skipped(dao, proposal.ID, params.Action, "DAO has no freeze guard"), nil
	}

	var signatures []byte
	a := attempt{
		dao:        dao,
		pendingKey: proposal.ID,
		proposalID: proposal.ID,
		action:     params.Action,
		message:    actionMessage(params.Action, proposal),
	}

	switch proposal.Kind {
	case models.ProposalKindMultisig:
		m := proposal.Multisig
		a.prepare = func() error {
			signatures, err = governance.BuildSignatureBytes(m.Confirmations)
			return err
		}
		a.submit = func(ctx context.Context) (string, error) {
			if params.Action == models.ActionTimelock {
				return uc.executor.TimelockTransaction(ctx, dao, m.Transaction, signatures, m.Nonce)
			}
			return uc.executor.ExecTransaction(ctx, dao, m.Transaction, signatures)
		}
	case models.ProposalKindAzorius:
		a.submit = func(ctx context.Context) (string, error) {
			return uc.executor.ExecuteAzoriusProposal(ctx, dao, proposal.Azorius)
		}
	default:
		return nil, domain.UnknownProposalKindError{Kind: proposal.Kind}
	}

	result, err := uc.runner.run(ctx, a)
	if err != nil {
		return nil, err
	}

	uc.store.Invalidate(dao.Key)
	result.Refreshed = refresh(ctx, uc.lister, dao, uc.log)
	return result, nil
}

// resolveTarget finds the proposal (or its rejection sibling) and the action
// selected for it in a listing
func resolveTarget(listing *ProposalListResult, id string, rejection bool) (*models.Proposal, models.ExecutionAction, error) {
	entry, viaRejection, ok := listing.Find(id)
	if !ok {
		return nil, models.ExecutionAction{}, fmt.Errorf("%w: proposal %s", domain.ErrNotFound, id)
	}

	if !rejection && !viaRejection {
		return entry.Proposal, entry.Action, nil
	}

	m := entry.Proposal.Multisig
	if m == nil || m.Rejection == nil || entry.RejectionAction == nil {
		return nil, models.ExecutionAction{}, fmt.Errorf("%w: rejection for proposal %s", domain.ErrNotFound, id)
	}
	return m.Rejection, *entry.RejectionAction, nil
}

// refresh re-lists the DAO after a successful action. Failure only loses the
// refreshed view, so it is logged and not returned.
func refresh(ctx context.Context, lister *ListProposals, dao *models.DAO, log *slog.Logger) *ProposalListResult {
	listing, err := lister.Run(ctx, ListProposalsParams{DAO: dao})
	if err != nil {
		log.Warn("refresh after action failed", "dao", dao.Name, "error", err)
		return nil
	}
	return listing
}

func actionMessage(action models.ActionKind, p *models.Proposal) string {
	label := p.ID
	if nonce, ok := p.Nonce(); ok {
		label = fmt.Sprintf("#%d", nonce)
	} else if p.Kind == models.ProposalKindAzorius {
		label = "#" + p.ID
	}

	switch action {
	case models.ActionTimelock:
		return fmt.Sprintf("Timelocking proposal %s", label)
	case models.ActionExecute:
		return fmt.Sprintf("Executing proposal %s", label)
	case models.ActionVote:
		return fmt.Sprintf("Voting on proposal %s", label)
	}
	return fmt.Sprintf("%s proposal %s", action, label)
}
