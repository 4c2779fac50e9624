package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// MockSafeService is a mock implementation of SafeService
type MockSafeService struct {
	mock.Mock
}

func (m *MockSafeService) GetSafeInfo(ctx context.Context, dao *models.DAO) (*models.SafeInfo, error) {
	args := m.Called(ctx, dao)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SafeInfo), args.Error(1)
}

func (m *MockSafeService) ListMultisigTransactions(ctx context.Context, dao *models.DAO) ([]*models.Proposal, error) {
	args := m.Called(ctx, dao)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Proposal), args.Error(1)
}

func (m *MockSafeService) ListModuleTransactions(ctx context.Context, dao *models.DAO) ([]*models.Proposal, error) {
	args := m.Called(ctx, dao)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Proposal), args.Error(1)
}

func (m *MockSafeService) GetMultisigTransaction(ctx context.Context, dao *models.DAO, safeTxHash string) (*models.Proposal, error) {
	args := m.Called(ctx, dao, safeTxHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Proposal), args.Error(1)
}

// MockGovernanceReader is a mock implementation of GovernanceReader
type MockGovernanceReader struct {
	mock.Mock
}

func (m *MockGovernanceReader) SafeNonce(ctx context.Context, dao *models.DAO) (uint64, error) {
	args := m.Called(ctx, dao)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockGovernanceReader) ReadFreezeGuard(ctx context.Context, dao *models.DAO, account string) (*models.FreezeGuard, error) {
	args := m.Called(ctx, dao, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FreezeGuard), args.Error(1)
}

func (m *MockGovernanceReader) TimelockedAt(ctx context.Context, dao *models.DAO, signaturesHash common.Hash) (time.Time, error) {
	args := m.Called(ctx, dao, signaturesHash)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockGovernanceReader) ListAzoriusProposals(ctx context.Context, dao *models.DAO) ([]*models.Proposal, error) {
	args := m.Called(ctx, dao)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Proposal), args.Error(1)
}

func (m *MockGovernanceReader) ReadAzoriusStatus(ctx context.Context, dao *models.DAO, proposal *models.Proposal) error {
	args := m.Called(ctx, dao, proposal)
	if fn, ok := args.Get(0).(func(*models.Proposal)); ok {
		fn(proposal)
		return nil
	}
	return args.Error(0)
}

// MockGovernanceExecutor is a mock implementation of GovernanceExecutor
type MockGovernanceExecutor struct {
	mock.Mock
	account string
}

func (m *MockGovernanceExecutor) Account() string {
	return m.account
}

func (m *MockGovernanceExecutor) ExecTransaction(ctx context.Context, dao *models.DAO, tx models.SafeTxData, signatures []byte) (string, error) {
	args := m.Called(ctx, dao, tx, signatures)
	return args.String(0), args.Error(1)
}

func (m *MockGovernanceExecutor) TimelockTransaction(ctx context.Context, dao *models.DAO, tx models.SafeTxData, signatures []byte, nonce uint64) (string, error) {
	args := m.Called(ctx, dao, tx, signatures, nonce)
	return args.String(0), args.Error(1)
}

func (m *MockGovernanceExecutor) CastFreezeVote(ctx context.Context, dao *models.DAO) (string, error) {
	args := m.Called(ctx, dao)
	return args.String(0), args.Error(1)
}

func (m *MockGovernanceExecutor) ExecuteAzoriusProposal(ctx context.Context, dao *models.DAO, proposal *models.AzoriusPayload) (string, error) {
	args := m.Called(ctx, dao, proposal)
	return args.String(0), args.Error(1)
}

func (m *MockGovernanceExecutor) CastVote(ctx context.Context, dao *models.DAO, proposalID uint32, choice models.VoteChoice) (string, error) {
	args := m.Called(ctx, dao, proposalID, choice)
	return args.String(0), args.Error(1)
}

// memoryCache is an in-memory ProposalCache that keeps terminal proposals only
type memoryCache struct {
	mu    sync.Mutex
	items map[string]*models.Proposal
	gets  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string]*models.Proposal)}
}

func (c *memoryCache) Get(ctx context.Context, key models.DAOKey, kind models.ProposalKind, id string) (*models.Proposal, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	p, ok := c.items[string(key)+"/"+string(kind)+"/"+id]
	return p, ok, nil
}

func (c *memoryCache) Put(ctx context.Context, p *models.Proposal) error {
	if !p.State.IsTerminal() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[string(p.DAO)+"/"+string(p.Kind)+"/"+p.ID] = p
	return nil
}

// recordingProgress records every progress event
type recordingProgress struct {
	mu     sync.Mutex
	events []usecase.ProgressEvent
}

func (r *recordingProgress) OnProgress(_ context.Context, e usecase.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingProgress) Info(string)  {}
func (r *recordingProgress) Error(string) {}

func (r *recordingProgress) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// recordingNotifier records every notification in order
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
	notes  []usecase.Notification
}

func (n *recordingNotifier) record(kind string, note usecase.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, kind)
	n.notes = append(n.notes, note)
}

func (n *recordingNotifier) Pending(_ context.Context, note usecase.Notification) {
	n.record("pending", note)
}

func (n *recordingNotifier) Success(_ context.Context, note usecase.Notification) {
	n.record("success", note)
}

func (n *recordingNotifier) Failure(_ context.Context, note usecase.Notification, _ error) {
	n.record("failure", note)
}

// MockEventSource is a mock implementation of DAOEventSource
type MockEventSource struct {
	mock.Mock
}

func (m *MockEventSource) WatchDAO(ctx context.Context, dao *models.DAO, fn func(models.ContractEvent)) (func(), error) {
	args := m.Called(ctx, dao, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

// MockSelector is a mock implementation of InteractiveSelector
type MockSelector struct {
	mock.Mock
}

func (m *MockSelector) SelectDAO(ctx context.Context, daos []*models.DAO, prompt string) (*models.DAO, error) {
	args := m.Called(ctx, daos, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DAO), args.Error(1)
}

func (m *MockSelector) SelectProposal(ctx context.Context, entries []usecase.ProposalEntry, prompt string) (*usecase.ProposalEntry, error) {
	args := m.Called(ctx, entries, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ProposalEntry), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
