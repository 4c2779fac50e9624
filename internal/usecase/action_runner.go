package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// ActionResult describes the outcome of an action attempt
type ActionResult struct {
	AttemptID  string            `json:"attemptId,omitempty" yaml:"attemptId,omitempty"`
	DAO        models.DAOKey     `json:"dao" yaml:"dao"`
	ProposalID string            `json:"proposalId,omitempty" yaml:"proposalId,omitempty"`
	Action     models.ActionKind `json:"action" yaml:"action"`
	TxHash     string            `json:"txHash,omitempty" yaml:"txHash,omitempty"`
	// Skipped is set when a prerequisite is missing; nothing was submitted
	Skipped bool   `json:"skipped" yaml:"skipped"`
	Reason  string `json:"reason,omitempty" yaml:"reason,omitempty"`
	// Refreshed is the listing re-fetched after a successful action
	Refreshed *ProposalListResult `json:"-" yaml:"-"`
}

// actionRunner wraps a submission with the pending flag and notifications
type actionRunner struct {
	pending  *PendingActions
	notifier Notifier
	log      *slog.Logger
}

// attempt describes one submission
type attempt struct {
	dao        *models.DAO
	pendingKey string
	proposalID string
	action     models.ActionKind
	message    string
	// prepare runs after the pending flag is claimed and before the pending
	// notification; an error aborts without submitting
	prepare func() error
	submit  func(ctx context.Context) (string, error)
}

// run claims the pending flag, notifies pending, submits, then notifies the
// outcome and releases the flag
func (r *actionRunner) run(ctx context.Context, a attempt) (*ActionResult, error) {
	result := &ActionResult{
		AttemptID:  uuid.NewString(),
		DAO:        a.dao.Key,
		ProposalID: a.proposalID,
		Action:     a.action,
	}
	note := Notification{
		AttemptID:  result.AttemptID,
		DAO:        a.dao.Name,
		ProposalID: a.proposalID,
		Action:     a.action,
		Message:    a.message,
	}
	log := r.log.With("attempt", result.AttemptID, "dao", a.dao.Name, "proposal", a.proposalID, "action", a.action)

	if !r.pending.TryClaim(a.dao.Key, a.pendingKey, result.AttemptID) {
		return nil, fmt.Errorf("%w: %s on %s", domain.ErrActionPending, a.action, a.pendingKey)
	}
	defer r.pending.Release(a.dao.Key, a.pendingKey)

	if a.prepare != nil {
		if err := a.prepare(); err != nil {
			log.Warn("action aborted before submission", "error", err)
			r.notifier.Failure(ctx, note, err)
			return nil, err
		}
	}

	log.Info("submitting action")
	r.notifier.Pending(ctx, note)

	txHash, err := a.submit(ctx)
	note.TxHash = txHash
	result.TxHash = txHash
	if err != nil {
		log.Error("action failed", "tx", txHash, "error", err)
		r.notifier.Failure(ctx, note, err)
		return nil, err
	}

	log.Info("action succeeded", "tx", txHash)
	r.notifier.Success(ctx, note)
	return result, nil
}

// skipped builds the result for an action whose prerequisites are missing
func skipped(dao *models.DAO, proposalID string, action models.ActionKind, reason string) *ActionResult {
	return &ActionResult{
		DAO:        dao.Key,
		ProposalID: proposalID,
		Action:     action,
		Skipped:    true,
		Reason:     reason,
	}
}
