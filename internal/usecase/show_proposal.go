package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/governance"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// ShowProposalParams contains parameters for showing a single proposal
type ShowProposalParams struct {
	DAO *models.DAO
	ID  string
}

// ShowProposal resolves one proposal by id. Multisig transactions that fall
// outside the listed pages are looked up by Safe transaction hash.
type ShowProposal struct {
	lister  *ListProposals
	safe    SafeService
	cache   ProposalCache
	pending *PendingActions
	log     *slog.Logger
}

// NewShowProposal creates a new ShowProposal use case
func NewShowProposal(lister *ListProposals, safe SafeService, cache ProposalCache, pending *PendingActions, log *slog.Logger) *ShowProposal {
	return &ShowProposal{
		lister:  lister,
		safe:    safe,
		cache:   cache,
		pending: pending,
		log:     log.With("usecase", "show_proposal"),
	}
}

// Run returns the entry for params.ID. The bool is true when the id names the
// rejection sibling of the returned entry.
func (uc *ShowProposal) Run(ctx context.Context, params ShowProposalParams) (*ProposalEntry, bool, error) {
	listing, err := uc.lister.Run(ctx, ListProposalsParams{
		DAO:    params.DAO,
		Filter: domain.ProposalFilter{IncludeTerminal: true},
	})
	if err != nil {
		return nil, false, err
	}

	if entry, viaRejection, ok := listing.Find(params.ID); ok {
		return entry, viaRejection, nil
	}
	if !isSafeTxHash(params.ID) {
		return nil, false, fmt.Errorf("%w: proposal %s", domain.ErrNotFound, params.ID)
	}

	entry, err := uc.lookup(ctx, listing, params.ID)
	if err != nil {
		return nil, false, err
	}
	return entry, false, nil
}

// lookup fetches a multisig transaction missing from the listing and
// classifies it against the listing's nonce and guard
func (uc *ShowProposal) lookup(ctx context.Context, listing *ProposalListResult, safeTxHash string) (*ProposalEntry, error) {
	dao := listing.DAO

	p, ok, err := uc.cache.Get(ctx, dao.Key, models.ProposalKindMultisig, safeTxHash)
	if err != nil {
		uc.log.Debug("cache read failed", "id", safeTxHash, "error", err)
	}
	if !ok {
		p, err = uc.safe.GetMultisigTransaction(ctx, dao, safeTxHash)
		if err != nil {
			return nil, err
		}

		var guard *governance.GuardTiming
		if dao.HasFreezeGuard() {
			guard = governance.GuardTimingFrom(listing.FreezeGuard)
		}
		state, err := governance.Classify(p, governance.ClassifyContext{
			SafeNonce: listing.SafeNonce,
			Guard:     guard,
			Now:       uc.lister.now(),
		})
		if err != nil {
			return nil, err
		}
		p.State = state

		if err := uc.cache.Put(ctx, p); err != nil {
			uc.log.Warn("failed to cache proposal", "id", p.ID, "error", err)
		}
	}

	uc.log.Debug("resolved proposal outside listing", "dao", dao.Name, "id", p.ID, "state", p.State)
	return &ProposalEntry{
		Proposal: p,
		Action:   governance.SelectProposalAction(p, listing.SafeNonce, uc.pending.Has(dao.Key, p.ID)),
	}, nil
}

func isSafeTxHash(id string) bool {
	b, err := hexutil.Decode(id)
	return err == nil && len(b) == common.HashLength
}
