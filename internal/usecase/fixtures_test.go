package usecase_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/trebuchet-org/treb-gov/internal/adapters/daostore"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

const (
	testSafe  = "0x1111111111111111111111111111111111111111"
	testGuard = "0x2222222222222222222222222222222222222222"
	recipient = "0x9999999999999999999999999999999999999999"
	ownerA    = "0x00000000000000000000000000000000000000aa"
	ownerB    = "0x00000000000000000000000000000000000000bb"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testDAO() *models.DAO {
	return &models.DAO{
		Name:    "treasury",
		Key:     models.NewDAOKey(1, testSafe),
		Network: "mainnet",
		ChainID: 1,
		Safe:    testSafe,
	}
}

func guardedDAO() *models.DAO {
	dao := testDAO()
	dao.FreezeGuard = testGuard
	return dao
}

// multisig builds a multisig proposal with n confirmations out of a threshold of 2
func multisig(id string, nonce uint64, confirmations int) *models.Proposal {
	confs := make([]models.Confirmation, 0, confirmations)
	for i := 0; i < confirmations; i++ {
		confs = append(confs, models.Confirmation{
			Signer:    fmt.Sprintf("0x%040x", 0xa0+i),
			Signature: fmt.Sprintf("0x%0130x", i+1),
		})
	}
	return &models.Proposal{
		ID:   id,
		Kind: models.ProposalKindMultisig,
		DAO:  testDAO().Key,
		Multisig: &models.MultisigPayload{
			SafeTxHash:       id,
			Nonce:            nonce,
			Transaction:      models.SafeTxData{To: recipient, Value: "1", Data: "0xa9059cbb"},
			Confirmations:    confs,
			SignersThreshold: 2,
		},
	}
}

func rejection(id string, nonce uint64, confirmations int) *models.Proposal {
	p := multisig(id, nonce, confirmations)
	p.Multisig.Transaction = models.SafeTxData{To: testSafe, Value: "0"}
	return p
}

func executed(p *models.Proposal) *models.Proposal {
	p.Multisig.IsExecuted = true
	return p
}

// harness wires ListProposals against mocks
type harness struct {
	cfg      *config.RuntimeConfig
	safe     *MockSafeService
	reader   *MockGovernanceReader
	executor *MockGovernanceExecutor
	cache    *memoryCache
	store    *daostore.Store
	pending  *usecase.PendingActions
	notifier *recordingNotifier
	lister   *usecase.ListProposals
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		cfg:      &config.RuntimeConfig{PollInterval: time.Hour},
		safe:     &MockSafeService{},
		reader:   &MockGovernanceReader{},
		executor: &MockGovernanceExecutor{account: ownerA},
		cache:    newMemoryCache(),
		store:    daostore.NewStore(),
		pending:  usecase.NewPendingActions(),
		notifier: &recordingNotifier{},
	}
	h.lister = usecase.NewListProposals(h.cfg, h.safe, h.reader, h.executor, h.cache, h.store,
		h.pending, usecase.NopProgress{}, discardLogger()).WithClock(func() time.Time { return fixedNow })
	return h
}

// expectSafe sets up the Safe service to return the given nonce and proposals
func (h *harness) expectSafe(apiNonce uint64, proposals ...*models.Proposal) {
	h.safe.On("GetSafeInfo", mock.Anything, mock.Anything).
		Return(&models.SafeInfo{Address: testSafe, Nonce: apiNonce, Threshold: 2}, nil)
	h.safe.On("ListMultisigTransactions", mock.Anything, mock.Anything).Return(proposals, nil)
	h.safe.On("ListModuleTransactions", mock.Anything, mock.Anything).Return([]*models.Proposal{}, nil)
}

// expectNoRPC makes every on-chain read report a missing RPC
func (h *harness) expectNoRPC() {
	h.reader.On("SafeNonce", mock.Anything, mock.Anything).
		Return(uint64(0), fmt.Errorf("%w: no rpc_url", domain.ErrMissingPrerequisite))
}

func (h *harness) expectOnchainNonce(nonce uint64) {
	h.reader.On("SafeNonce", mock.Anything, mock.Anything).Return(nonce, nil)
}
