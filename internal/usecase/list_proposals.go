package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/domain/governance"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentReads bounds parallel RPC reads within one refresh
const maxConcurrentReads = 8

// ListProposalsParams contains parameters for listing proposals
type ListProposalsParams struct {
	DAO    *models.DAO
	Filter domain.ProposalFilter
}

// ProposalEntry is a classified proposal with the actions offered for it and
// for its rejection sibling
type ProposalEntry struct {
	Proposal        *models.Proposal        `json:"proposal" yaml:"proposal"`
	Action          models.ExecutionAction  `json:"action" yaml:"action"`
	RejectionAction *models.ExecutionAction `json:"rejectionAction,omitempty" yaml:"rejectionAction,omitempty"`
}

// ProposalSummary counts listed proposals
type ProposalSummary struct {
	Total      int                          `json:"total" yaml:"total"`
	ByState    map[models.ProposalState]int `json:"byState" yaml:"byState"`
	Actionable int                          `json:"actionable" yaml:"actionable"`
}

// ProposalListResult contains the result of listing proposals
type ProposalListResult struct {
	DAO         *models.DAO         `json:"dao" yaml:"dao"`
	SafeInfo    *models.SafeInfo    `json:"safeInfo" yaml:"safeInfo"`
	SafeNonce   uint64              `json:"safeNonce" yaml:"safeNonce"`
	FreezeGuard *models.FreezeGuard `json:"freezeGuard,omitempty" yaml:"freezeGuard,omitempty"`
	Entries     []ProposalEntry     `json:"proposals" yaml:"proposals"`
	Summary     ProposalSummary     `json:"summary" yaml:"summary"`
	// Warnings lists optional sources that could not be loaded
	Warnings  []string  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Find returns the entry for a proposal id, looking at rejection siblings too.
// The bool is true when the match is a rejection sibling.
func (r *ProposalListResult) Find(id string) (*ProposalEntry, bool, bool) {
	for i := range r.Entries {
		entry := &r.Entries[i]
		if entry.Proposal.ID == id {
			return entry, false, true
		}
		if m := entry.Proposal.Multisig; m != nil && m.Rejection != nil && m.Rejection.ID == id {
			return entry, true, true
		}
	}
	return nil, false, false
}

// ListProposals fetches, classifies and selects actions for a DAO's proposals
type ListProposals struct {
	config   *config.RuntimeConfig
	safe     SafeService
	reader   GovernanceReader
	executor GovernanceExecutor
	cache    ProposalCache
	store    DAOStore
	pending  *PendingActions
	sink     ProgressSink
	log      *slog.Logger
	now      func() time.Time
}

// NewListProposals creates a new ListProposals use case
func NewListProposals(
	cfg *config.RuntimeConfig,
	safe SafeService,
	reader GovernanceReader,
	executor GovernanceExecutor,
	cache ProposalCache,
	store DAOStore,
	pending *PendingActions,
	sink ProgressSink,
	log *slog.Logger,
) *ListProposals {
	return &ListProposals{
		config:   cfg,
		safe:     safe,
		reader:   reader,
		executor: executor,
		cache:    cache,
		store:    store,
		pending:  pending,
		sink:     sink,
		log:      log.With("usecase", "list_proposals"),
		now:      time.Now,
	}
}

// WithClock replaces the time source, for tests
func (uc *ListProposals) WithClock(now func() time.Time) *ListProposals {
	uc.now = now
	return uc
}

// WithProgress returns a copy of the use case reporting to sink
func (uc *ListProposals) WithProgress(sink ProgressSink) *ListProposals {
	c := *uc
	c.sink = sink
	return &c
}

// fetched holds the raw data of one refresh
type fetched struct {
	mu sync.Mutex

	safeInfo     *models.SafeInfo
	onchainNonce *uint64
	multisig     []*models.Proposal
	module       []*models.Proposal
	azorius      []*models.Proposal
	guard        *models.FreezeGuard
	guardLoaded  bool
	warnings     []string
}

func (f *fetched) warn(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.warnings = append(f.warnings, fmt.Sprintf(format, args...))
}

// Run executes the list proposals use case
func (uc *ListProposals) Run(ctx context.Context, params ListProposalsParams) (*ProposalListResult, error) {
	dao := params.DAO
	if dao == nil {
		return nil, fmt.Errorf("no DAO selected")
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "fetching",
		Message: fmt.Sprintf("Fetching proposals for %s", dao.Name),
		Spinner: true,
	})

	data, err := uc.fetch(ctx, dao)
	if err != nil {
		uc.sink.OnProgress(ctx, ProgressEvent{Stage: "failed"})
		return nil, err
	}

	safeNonce := data.safeInfo.Nonce
	if data.onchainNonce != nil {
		safeNonce = *data.onchainNonce
	}

	var guardTiming *governance.GuardTiming
	if dao.HasFreezeGuard() {
		if data.guardLoaded {
			guardTiming = governance.GuardTimingFrom(data.guard)
		} else {
			guardTiming = &governance.GuardTiming{Loaded: false}
		}
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "timelocks",
		Message: "Reading timelock state",
		Spinner: true,
	})
	uc.loadTimelocks(ctx, dao, data, safeNonce, guardTiming)

	all := make([]*models.Proposal, 0, len(data.multisig)+len(data.module)+len(data.azorius))
	all = append(all, data.multisig...)
	all = append(all, data.azorius...)
	all = append(all, data.module...)

	classifyCtx := governance.ClassifyContext{SafeNonce: safeNonce, Guard: guardTiming, Now: uc.now()}
	for _, p := range all {
		if p.State.IsTerminal() {
			continue // restored from cache
		}
		state, err := governance.Classify(p, classifyCtx)
		if err != nil {
			return nil, err
		}
		p.State = state
		if err := uc.cache.Put(ctx, p); err != nil {
			uc.log.Warn("failed to cache proposal", "id", p.ID, "error", err)
		}
	}

	governance.AttachRejections(dao.Safe, data.multisig)

	entries := uc.buildEntries(dao, all, safeNonce, params.Filter)

	now := uc.now()
	uc.store.Put(&models.DAOState{
		DAO:         dao,
		SafeInfo:    data.safeInfo,
		FreezeGuard: data.guard,
		Proposals:   all,
		UpdatedAt:   now,
	})

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Current: len(entries),
		Total:   len(entries),
		Message: "Proposals loaded",
	})

	for _, w := range data.warnings {
		uc.log.Warn(w, "dao", dao.Name)
	}

	return &ProposalListResult{
		DAO:         dao,
		SafeInfo:    data.safeInfo,
		SafeNonce:   safeNonce,
		FreezeGuard: data.guard,
		Entries:     entries,
		Summary:     summarize(entries),
		Warnings:    data.warnings,
		UpdatedAt:   now,
	}, nil
}

// fetch loads every source concurrently. Safe info and multisig transactions
// are required; everything else degrades to a warning.
func (uc *ListProposals) fetch(ctx context.Context, dao *models.DAO) (*fetched, error) {
	data := &fetched{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		info, err := uc.safe.GetSafeInfo(gctx, dao)
		if err != nil {
			return err
		}
		data.safeInfo = info
		return nil
	})

	g.Go(func() error {
		proposals, err := uc.safe.ListMultisigTransactions(gctx, dao)
		if errors.Is(err, domain.ErrTruncated) {
			data.warn("%v", err)
		} else if err != nil {
			return err
		}
		data.multisig = uc.restoreCached(gctx, dao, proposals)
		return nil
	})

	g.Go(func() error {
		proposals, err := uc.safe.ListModuleTransactions(gctx, dao)
		if errors.Is(err, domain.ErrTruncated) {
			data.warn("%v", err)
		} else if err != nil {
			data.warn("module transactions not loaded: %v", err)
			return nil
		}
		data.module = uc.restoreCached(gctx, dao, proposals)
		return nil
	})

	g.Go(func() error {
		nonce, err := uc.reader.SafeNonce(gctx, dao)
		if err != nil {
			if !errors.Is(err, domain.ErrMissingPrerequisite) {
				data.warn("on-chain nonce not loaded: %v", err)
			}
			return nil
		}
		data.onchainNonce = &nonce
		return nil
	})

	if dao.HasFreezeGuard() {
		g.Go(func() error {
			if guard, ok := uc.store.FreezeGuard(dao.Key); ok {
				data.guard, data.guardLoaded = guard, true
				return nil
			}
			guard, err := uc.reader.ReadFreezeGuard(gctx, dao, uc.executor.Account())
			if err != nil {
				data.warn("freeze guard not loaded: %v", err)
				return nil
			}
			data.guard, data.guardLoaded = guard, true
			uc.store.SetFreezeGuard(dao.Key, guard)
			return nil
		})
	}

	if dao.HasAzorius() {
		g.Go(func() error {
			proposals, err := uc.loadAzorius(gctx, dao)
			if err != nil {
				data.warn("azorius proposals not loaded: %v", err)
				return nil
			}
			data.azorius = proposals
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

// restoreCached swaps fetched proposals for their cached terminal copies
func (uc *ListProposals) restoreCached(ctx context.Context, dao *models.DAO, proposals []*models.Proposal) []*models.Proposal {
	for i, p := range proposals {
		cached, ok, err := uc.cache.Get(ctx, dao.Key, p.Kind, p.ID)
		if err != nil {
			uc.log.Debug("cache read failed", "id", p.ID, "error", err)
			continue
		}
		if ok {
			proposals[i] = cached
		}
	}
	return proposals
}

// loadAzorius lists Azorius proposals, reusing cached terminal ones and
// reading the state of the rest
func (uc *ListProposals) loadAzorius(ctx context.Context, dao *models.DAO) ([]*models.Proposal, error) {
	proposals, err := uc.reader.ListAzoriusProposals(ctx, dao)
	if err != nil {
		return nil, err
	}
	proposals = uc.restoreCached(ctx, dao, proposals)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for _, p := range proposals {
		if p.State.IsTerminal() {
			continue
		}
		p := p
		g.Go(func() error {
			return uc.reader.ReadAzoriusStatus(gctx, dao, p)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return proposals, nil
}

// loadTimelocks reads the guard's timelock timestamp for every multisig
// proposal whose state depends on it. Failures leave the proposal undetermined.
func (uc *ListProposals) loadTimelocks(ctx context.Context, dao *models.DAO, data *fetched, safeNonce uint64, guard *governance.GuardTiming) {
	if guard == nil || !guard.Loaded {
		return
	}

	var g errgroup.Group
	g.SetLimit(maxConcurrentReads)
	for _, p := range data.multisig {
		m := p.Multisig
		if m == nil || m.IsExecuted || len(m.Confirmations) < m.SignersThreshold || m.Nonce < safeNonce {
			continue
		}

		signatures, err := governance.BuildSignatureBytes(m.Confirmations)
		if err != nil {
			data.warn("proposal %s: %v", p.ID, err)
			continue
		}

		p := p
		g.Go(func() error {
			at, err := uc.reader.TimelockedAt(ctx, dao, governance.SignaturesHash(signatures))
			if err != nil {
				data.warn("timelock of %s not loaded: %v", p.ID, err)
				return nil
			}
			m.TimelockedAt = &at
			return nil
		})
	}
	_ = g.Wait()
}

// buildEntries selects actions and applies the filter. Rejection proposals
// attached to a primary are listed with it instead of on their own, so a
// primary is kept when either it or its rejection passes the filter.
func (uc *ListProposals) buildEntries(dao *models.DAO, all []*models.Proposal, safeNonce uint64, filter domain.ProposalFilter) []ProposalEntry {
	attached := make(map[*models.Proposal]bool)
	for _, p := range all {
		if p.Multisig != nil && p.Multisig.Rejection != nil {
			attached[p.Multisig.Rejection] = true
		}
	}

	entries := make([]ProposalEntry, 0, len(all))
	for _, p := range all {
		if attached[p] {
			continue
		}
		if !filter.Matches(p) && !rejectionMatches(p, filter) {
			continue
		}

		entry := ProposalEntry{
			Proposal: p,
			Action:   governance.SelectProposalAction(p, safeNonce, uc.pending.Has(dao.Key, p.ID)),
		}
		if p.Multisig != nil && p.Multisig.Rejection != nil {
			r := p.Multisig.Rejection
			action := governance.SelectProposalAction(r, safeNonce, uc.pending.Has(dao.Key, r.ID))
			entry.RejectionAction = &action
		}

		if filter.Actionable && !entry.actionable() {
			continue
		}
		entries = append(entries, entry)
	}

	sortEntries(entries)
	return entries
}

func rejectionMatches(p *models.Proposal, filter domain.ProposalFilter) bool {
	return p.Multisig != nil && p.Multisig.Rejection != nil && filter.Matches(p.Multisig.Rejection)
}

func (e ProposalEntry) actionable() bool {
	return e.Action.Enabled || (e.RejectionAction != nil && e.RejectionAction.Enabled)
}

// sortEntries orders multisig proposals by nonce, then Azorius by id, newest first
func sortEntries(entries []ProposalEntry) {
	kindOrder := map[models.ProposalKind]int{
		models.ProposalKindMultisig: 0,
		models.ProposalKindAzorius:  1,
		models.ProposalKindSnapshot: 2,
		models.ProposalKindModule:   3,
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Proposal, entries[j].Proposal
		if a.Kind != b.Kind {
			return kindOrder[a.Kind] < kindOrder[b.Kind]
		}
		switch a.Kind {
		case models.ProposalKindMultisig:
			if a.Multisig.Nonce != b.Multisig.Nonce {
				return a.Multisig.Nonce > b.Multisig.Nonce
			}
		case models.ProposalKindAzorius:
			return a.Azorius.ProposalID > b.Azorius.ProposalID
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

func summarize(entries []ProposalEntry) ProposalSummary {
	summary := ProposalSummary{
		Total:   len(entries),
		ByState: lo.CountValuesBy(entries, func(e ProposalEntry) models.ProposalState { return e.Proposal.State }),
	}
	summary.Actionable = lo.CountBy(entries, func(e ProposalEntry) bool { return e.actionable() })
	return summary
}
