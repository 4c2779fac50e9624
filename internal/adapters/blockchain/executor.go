package blockchain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// Executor implements usecase.GovernanceExecutor by signing with the configured key
type Executor struct {
	pool    *Pool
	cfg     *config.RuntimeConfig
	log     *slog.Logger
	key     *ecdsa.PrivateKey
	account common.Address
}

// NewExecutor creates an executor. Without a configured private key every
// write returns ErrMissingPrerequisite.
func NewExecutor(pool *Pool, cfg *config.RuntimeConfig, log *slog.Logger) (*Executor, error) {
	e := &Executor{pool: pool, cfg: cfg, log: log.With("component", "executor")}
	if !cfg.HasWallet() {
		return e, nil
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to convert private key to ECDSA: %w", err)
	}
	e.key = key
	e.account = crypto.PubkeyToAddress(key.PublicKey)
	return e, nil
}

// Account returns the signer address, empty without a wallet
func (e *Executor) Account() string {
	if e.key == nil {
		return ""
	}
	return e.account.Hex()
}

// transact sends a transaction and waits for a successful receipt
func (e *Executor) transact(ctx context.Context, dao *models.DAO, address string, contractABI abi.ABI, method string, args ...interface{}) (string, error) {
	if e.key == nil {
		return "", fmt.Errorf("%w: no wallet configured, set TREB_GOV_PRIVATE_KEY", domain.ErrMissingPrerequisite)
	}

	backend, err := e.pool.Backend(ctx, dao)
	if err != nil {
		return "", err
	}

	opts, err := bind.NewKeyedTransactorWithChainID(e.key, new(big.Int).SetUint64(dao.ChainID))
	if err != nil {
		return "", err
	}
	opts.Context = ctx

	contract := bind.NewBoundContract(common.HexToAddress(address), contractABI, backend, backend, backend)
	tx, err := contract.Transact(opts, method, args...)
	if err != nil {
		return "", fmt.Errorf("failed to send %s: %w", method, err)
	}

	e.log.Info("transaction sent", "method", method, "to", address, "tx", tx.Hash().Hex())

	waitCtx := ctx
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	receipt, err := bind.WaitMined(waitCtx, backend, tx)
	if err != nil {
		return tx.Hash().Hex(), fmt.Errorf("tx %s failed to confirm: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return tx.Hash().Hex(), fmt.Errorf("%w: %s in block %d", domain.ErrTransactionReverted, tx.Hash().Hex(), receipt.BlockNumber)
	}

	e.log.Info("transaction mined", "method", method, "tx", tx.Hash().Hex(), "block", receipt.BlockNumber)
	return tx.Hash().Hex(), nil
}

// ExecTransaction calls execTransaction on the Safe
func (e *Executor) ExecTransaction(ctx context.Context, dao *models.DAO, tx models.SafeTxData, signatures []byte) (string, error) {
	args, err := safeTxArgs(tx)
	if err != nil {
		return "", err
	}
	return e.transact(ctx, dao, dao.Safe, SafeABI, "execTransaction", append(args, signatures)...)
}

// TimelockTransaction calls timelockTransaction on the freeze guard
func (e *Executor) TimelockTransaction(ctx context.Context, dao *models.DAO, tx models.SafeTxData, signatures []byte, nonce uint64) (string, error) {
	if !dao.HasFreezeGuard() {
		return "", fmt.Errorf("%w: %s has no freeze guard", domain.ErrMissingPrerequisite, dao.Name)
	}
	if nonce > uint64(^uint32(0)) {
		return "", fmt.Errorf("nonce %d does not fit the guard's uint32", nonce)
	}

	args, err := safeTxArgs(tx)
	if err != nil {
		return "", err
	}
	return e.transact(ctx, dao, dao.FreezeGuard, FreezeGuardABI, "timelockTransaction", append(args, signatures, uint32(nonce))...)
}

// CastFreezeVote votes to freeze the DAO, creating a freeze proposal when none is active
func (e *Executor) CastFreezeVote(ctx context.Context, dao *models.DAO) (string, error) {
	if dao.FreezeVoting == "" {
		return "", fmt.Errorf("%w: %s has no freeze voting contract", domain.ErrMissingPrerequisite, dao.Name)
	}
	return e.transact(ctx, dao, dao.FreezeVoting, FreezeVotingABI, "castFreezeVote")
}

// ExecuteAzoriusProposal executes every transaction of a passed proposal
func (e *Executor) ExecuteAzoriusProposal(ctx context.Context, dao *models.DAO, proposal *models.AzoriusPayload) (string, error) {
	n := len(proposal.Transactions)
	targets := make([]common.Address, 0, n)
	values := make([]*big.Int, 0, n)
	data := make([][]byte, 0, n)
	operations := make([]uint8, 0, n)

	for i, tx := range proposal.Transactions {
		value, err := parseBig(tx.Value)
		if err != nil {
			return "", fmt.Errorf("transaction %d: %w", i, err)
		}
		calldata, err := decodeHex(tx.Data)
		if err != nil {
			return "", fmt.Errorf("transaction %d: %w", i, err)
		}
		targets = append(targets, common.HexToAddress(tx.To))
		values = append(values, value)
		data = append(data, calldata)
		operations = append(operations, uint8(tx.Operation))
	}

	return e.transact(ctx, dao, proposal.Azorius, AzoriusABI, "executeProposal",
		proposal.ProposalID, targets, values, data, operations)
}

// CastVote votes on an Azorius proposal through the voting strategy
func (e *Executor) CastVote(ctx context.Context, dao *models.DAO, proposalID uint32, choice models.VoteChoice) (string, error) {
	if dao.Strategy == "" {
		return "", fmt.Errorf("%w: %s has no voting strategy", domain.ErrMissingPrerequisite, dao.Name)
	}
	return e.transact(ctx, dao, dao.Strategy, StrategyABI, "vote", proposalID, uint8(choice))
}

// safeTxArgs converts a Safe transaction into the shared leading arguments of
// execTransaction and timelockTransaction
func safeTxArgs(tx models.SafeTxData) ([]interface{}, error) {
	value, err := parseBig(tx.Value)
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	data, err := decodeHex(tx.Data)
	if err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	safeTxGas, err := parseBig(tx.SafeTxGas)
	if err != nil {
		return nil, fmt.Errorf("safeTxGas: %w", err)
	}
	baseGas, err := parseBig(tx.BaseGas)
	if err != nil {
		return nil, fmt.Errorf("baseGas: %w", err)
	}
	gasPrice, err := parseBig(tx.GasPrice)
	if err != nil {
		return nil, fmt.Errorf("gasPrice: %w", err)
	}

	return []interface{}{
		common.HexToAddress(tx.To),
		value,
		data,
		uint8(tx.Operation),
		safeTxGas,
		baseGas,
		gasPrice,
		common.HexToAddress(tx.GasToken),
		common.HexToAddress(tx.RefundReceiver),
	}, nil
}

func parseBig(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}

func decodeHex(s string) ([]byte, error) {
	if s == "" || s == "0x" {
		return []byte{}, nil
	}
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}

// Ensure the executor implements the interface
var _ usecase.GovernanceExecutor = (*Executor)(nil)
