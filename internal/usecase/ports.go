package usecase

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// SafeService reads Safe configuration and transactions from the Safe Transaction Service.
// The list methods return the proposals read so far with an error wrapping
// domain.ErrTruncated when the service has more pages than are fetched.
type SafeService interface {
	GetSafeInfo(ctx context.Context, dao *models.DAO) (*models.SafeInfo, error)
	ListMultisigTransactions(ctx context.Context, dao *models.DAO) ([]*models.Proposal, error)
	ListModuleTransactions(ctx context.Context, dao *models.DAO) ([]*models.Proposal, error)
	// GetMultisigTransaction looks up one transaction of the DAO's Safe by hash
	GetMultisigTransaction(ctx context.Context, dao *models.DAO, safeTxHash string) (*models.Proposal, error)
}

// GovernanceReader reads Safe, freeze guard and Azorius state from chain
type GovernanceReader interface {
	SafeNonce(ctx context.Context, dao *models.DAO) (uint64, error)
	ReadFreezeGuard(ctx context.Context, dao *models.DAO, account string) (*models.FreezeGuard, error)
	// TimelockedAt returns the zero time when the transaction was never timelocked
	TimelockedAt(ctx context.Context, dao *models.DAO, signaturesHash common.Hash) (time.Time, error)
	// ListAzoriusProposals returns proposals decoded from creation events, without state
	ListAzoriusProposals(ctx context.Context, dao *models.DAO) ([]*models.Proposal, error)
	// ReadAzoriusStatus fills in the contract state and vote tally of a proposal
	ReadAzoriusStatus(ctx context.Context, dao *models.DAO, proposal *models.Proposal) error
}

// GovernanceExecutor submits governance transactions and waits for them to be mined
type GovernanceExecutor interface {
	// Account returns the address transactions are sent from, empty without a wallet
	Account() string
	ExecTransaction(ctx context.Context, dao *models.DAO, tx models.SafeTxData, signatures []byte) (string, error)
	TimelockTransaction(ctx context.Context, dao *models.DAO, tx models.SafeTxData, signatures []byte, nonce uint64) (string, error)
	CastFreezeVote(ctx context.Context, dao *models.DAO) (string, error)
	ExecuteAzoriusProposal(ctx context.Context, dao *models.DAO, proposal *models.AzoriusPayload) (string, error)
	CastVote(ctx context.Context, dao *models.DAO, proposalID uint32, choice models.VoteChoice) (string, error)
}

// DAOStore holds the most recently fetched state per DAO
type DAOStore interface {
	Get(key models.DAOKey) (*models.DAOState, bool)
	Put(state *models.DAOState)
	FreezeGuard(key models.DAOKey) (*models.FreezeGuard, bool)
	SetFreezeGuard(key models.DAOKey, guard *models.FreezeGuard)
	InvalidateFreezeGuard(key models.DAOKey)
	Invalidate(key models.DAOKey)
	Keys() []models.DAOKey
}

// ProposalCache stores proposals that reached a terminal state
type ProposalCache interface {
	Get(ctx context.Context, key models.DAOKey, kind models.ProposalKind, id string) (*models.Proposal, bool, error)
	Put(ctx context.Context, proposal *models.Proposal) error
}

// DAOEventSource delivers contract events emitted by a DAO's contracts
type DAOEventSource interface {
	WatchDAO(ctx context.Context, dao *models.DAO, fn func(models.ContractEvent)) (unsubscribe func(), err error)
}

// InteractiveSelector handles interactive selection of DAOs and proposals
type InteractiveSelector interface {
	SelectDAO(ctx context.Context, daos []*models.DAO, prompt string) (*models.DAO, error)
	SelectProposal(ctx context.Context, entries []ProposalEntry, prompt string) (*ProposalEntry, error)
}

// Notification describes an action attempt shown to the user
type Notification struct {
	AttemptID  string
	DAO        string
	ProposalID string
	Action     models.ActionKind
	TxHash     string
	Message    string
}

// Notifier surfaces the pending, success and failure states of an action
type Notifier interface {
	Pending(ctx context.Context, n Notification)
	Success(ctx context.Context, n Notification)
	Failure(ctx context.Context, n Notification, err error)
}

// NopNotifier is a no-op implementation of Notifier
type NopNotifier struct{}

func (NopNotifier) Pending(context.Context, Notification)        {}
func (NopNotifier) Success(context.Context, Notification)        {}
func (NopNotifier) Failure(context.Context, Notification, error) {}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}
