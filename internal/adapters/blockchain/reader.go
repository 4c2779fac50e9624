package blockchain

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// Reader implements usecase.GovernanceReader with contract calls
type Reader struct {
	pool *Pool
	log  *slog.Logger
}

// NewReader creates a new on-chain governance reader
func NewReader(pool *Pool, log *slog.Logger) *Reader {
	return &Reader{pool: pool, log: log.With("component", "reader")}
}

// call invokes a view method and returns its outputs
func (r *Reader) call(ctx context.Context, dao *models.DAO, address string, contractABI abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	backend, err := r.pool.Backend(ctx, dao)
	if err != nil {
		return nil, err
	}

	contract := bind.NewBoundContract(common.HexToAddress(address), contractABI, backend, backend, backend)

	var out []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, fmt.Errorf("%s on %s: %w", method, address, err)
	}
	return out, nil
}

// SafeNonce reads the Safe's current nonce
func (r *Reader) SafeNonce(ctx context.Context, dao *models.DAO) (uint64, error) {
	out, err := r.call(ctx, dao, dao.Safe, SafeABI, "nonce")
	if err != nil {
		return 0, err
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int).Uint64(), nil
}

// ReadFreezeGuard reads the guard timing and, when a freeze voting contract is
// configured, the freeze proposal state. account may be empty.
func (r *Reader) ReadFreezeGuard(ctx context.Context, dao *models.DAO, account string) (*models.FreezeGuard, error) {
	if !dao.HasFreezeGuard() {
		return nil, nil
	}

	guard := &models.FreezeGuard{
		GuardAddress:        dao.FreezeGuard,
		FreezeVotingAddress: dao.FreezeVoting,
	}

	timelock, err := r.readUint32(ctx, dao, dao.FreezeGuard, FreezeGuardABI, "timelockPeriod")
	if err != nil {
		return nil, err
	}
	execution, err := r.readUint32(ctx, dao, dao.FreezeGuard, FreezeGuardABI, "executionPeriod")
	if err != nil {
		return nil, err
	}
	guard.TimelockPeriod = seconds(timelock)
	guard.ExecutionPeriod = seconds(execution)

	if dao.FreezeVoting == "" {
		return guard, nil
	}

	if guard.FreezeVotesThreshold, err = r.readBig(ctx, dao, dao.FreezeVoting, "freezeVotesThreshold"); err != nil {
		return nil, err
	}
	if guard.FreezeProposalVoteCount, err = r.readBig(ctx, dao, dao.FreezeVoting, "freezeProposalVoteCount"); err != nil {
		return nil, err
	}

	created, err := r.readUint32(ctx, dao, dao.FreezeVoting, FreezeVotingABI, "freezeProposalCreatedTimestamp")
	if err != nil {
		return nil, err
	}
	if created > 0 {
		guard.FreezeProposalCreatedAt = time.Unix(int64(created), 0).UTC()
	}

	proposalPeriod, err := r.readUint32(ctx, dao, dao.FreezeVoting, FreezeVotingABI, "freezeProposalPeriod")
	if err != nil {
		return nil, err
	}
	freezePeriod, err := r.readUint32(ctx, dao, dao.FreezeVoting, FreezeVotingABI, "freezePeriod")
	if err != nil {
		return nil, err
	}
	guard.FreezeProposalPeriod = seconds(proposalPeriod)
	guard.FreezePeriod = seconds(freezePeriod)

	out, err := r.call(ctx, dao, dao.FreezeVoting, FreezeVotingABI, "isFrozen")
	if err != nil {
		return nil, err
	}
	guard.IsFrozen = *abi.ConvertType(out[0], new(bool)).(*bool)

	if account != "" && common.IsHexAddress(account) {
		out, err := r.call(ctx, dao, dao.FreezeVoting, FreezeVotingABI, "userHasFreezeVoted",
			common.HexToAddress(account), new(big.Int).SetUint64(uint64(created)))
		if err != nil {
			return nil, err
		}
		guard.UserHasFreezeVoted = *abi.ConvertType(out[0], new(bool)).(*bool)
	}

	return guard, nil
}

// TimelockedAt reads when the transaction with the given signatures was
// timelocked. The zero time means it never was.
func (r *Reader) TimelockedAt(ctx context.Context, dao *models.DAO, signaturesHash common.Hash) (time.Time, error) {
	ts, err := r.readUint32(ctx, dao, dao.FreezeGuard, FreezeGuardABI, "getTransactionTimelockedTimestamp", [32]byte(signaturesHash))
	if err != nil {
		return time.Time{}, err
	}
	if ts == 0 {
		return time.Time{}, nil
	}
	return time.Unix(int64(ts), 0).UTC(), nil
}

// azoriusTransaction mirrors the tuple emitted in ProposalCreated
type azoriusTransaction struct {
	To        common.Address
	Value     *big.Int
	Data      []byte
	Operation uint8
}

type proposalMetadata struct {
	Title string `json:"title"`
}

// ListAzoriusProposals decodes ProposalCreated events emitted by the Azorius module
func (r *Reader) ListAzoriusProposals(ctx context.Context, dao *models.DAO) ([]*models.Proposal, error) {
	if !dao.HasAzorius() {
		return nil, nil
	}

	backend, err := r.pool.Backend(ctx, dao)
	if err != nil {
		return nil, err
	}

	logs, err := backend.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(dao.AzoriusStartBlock),
		Addresses: []common.Address{common.HexToAddress(dao.Azorius)},
		Topics:    [][]common.Hash{{AzoriusABI.Events["ProposalCreated"].ID}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ProposalCreated logs: %w", err)
	}

	blockTimes := make(map[uint64]time.Time)
	proposals := make([]*models.Proposal, 0, len(logs))
	for _, log := range logs {
		p, err := DecodeProposalCreated(dao, log)
		if err != nil {
			r.log.Warn("skipping undecodable ProposalCreated log", "tx", log.TxHash, "error", err)
			continue
		}

		if _, ok := blockTimes[log.BlockNumber]; !ok {
			header, err := backend.HeaderByNumber(ctx, new(big.Int).SetUint64(log.BlockNumber))
			if err == nil {
				blockTimes[log.BlockNumber] = time.Unix(int64(header.Time), 0).UTC()
			}
		}
		p.CreatedAt = blockTimes[log.BlockNumber]
		proposals = append(proposals, p)
	}

	r.log.Debug("listed azorius proposals", "dao", dao.Name, "count", len(proposals))
	return proposals, nil
}

// DecodeProposalCreated turns a ProposalCreated log into an unclassified proposal
func DecodeProposalCreated(dao *models.DAO, log types.Log) (*models.Proposal, error) {
	out, err := AzoriusABI.Unpack("ProposalCreated", log.Data)
	if err != nil {
		return nil, err
	}
	if len(out) != 5 {
		return nil, fmt.Errorf("unexpected ProposalCreated field count %d", len(out))
	}

	strategy := *abi.ConvertType(out[0], new(common.Address)).(*common.Address)
	id := abi.ConvertType(out[1], new(big.Int)).(*big.Int)
	proposer := *abi.ConvertType(out[2], new(common.Address)).(*common.Address)
	txs := *abi.ConvertType(out[3], new([]azoriusTransaction)).(*[]azoriusTransaction)
	metadata, _ := out[4].(string)

	if !id.IsUint64() || id.Uint64() > uint64(^uint32(0)) {
		return nil, fmt.Errorf("proposal id %s out of range", id)
	}
	proposalID := uint32(id.Uint64())

	payload := &models.AzoriusPayload{
		ProposalID:   proposalID,
		Azorius:      log.Address.Hex(),
		Strategy:     strategy.Hex(),
		Metadata:     metadata,
		CreatedBlock: log.BlockNumber,
		CreatedTx:    log.TxHash.Hex(),
	}
	for _, tx := range txs {
		value := "0"
		if tx.Value != nil {
			value = tx.Value.String()
		}
		payload.Transactions = append(payload.Transactions, models.SafeTxData{
			To:        tx.To.Hex(),
			Value:     value,
			Data:      hexutil.Encode(tx.Data),
			Operation: models.Operation(tx.Operation),
		})
	}

	return &models.Proposal{
		ID:       strconv.FormatUint(uint64(proposalID), 10),
		Kind:     models.ProposalKindAzorius,
		DAO:      dao.Key,
		Title:    proposalTitle(proposalID, metadata),
		Proposer: proposer.Hex(),
		Azorius:  payload,
	}, nil
}

func proposalTitle(id uint32, metadata string) string {
	var meta proposalMetadata
	if err := json.Unmarshal([]byte(metadata), &meta); err == nil && meta.Title != "" {
		return meta.Title
	}
	return fmt.Sprintf("Proposal #%d", id)
}

// ReadAzoriusStatus reads the contract state and vote tally of a proposal
func (r *Reader) ReadAzoriusStatus(ctx context.Context, dao *models.DAO, proposal *models.Proposal) error {
	payload := proposal.Azorius
	if payload == nil {
		return fmt.Errorf("proposal %s has no azorius payload", proposal.ID)
	}

	out, err := r.call(ctx, dao, payload.Azorius, AzoriusABI, "proposalState", payload.ProposalID)
	if err != nil {
		return err
	}
	payload.RawState = *abi.ConvertType(out[0], new(uint8)).(*uint8)

	out, err = r.call(ctx, dao, payload.Strategy, StrategyABI, "getProposalVotes", payload.ProposalID)
	if err != nil {
		return err
	}
	payload.Votes = models.VoteTally{
		No:           abi.ConvertType(out[0], new(big.Int)).(*big.Int),
		Yes:          abi.ConvertType(out[1], new(big.Int)).(*big.Int),
		Abstain:      abi.ConvertType(out[2], new(big.Int)).(*big.Int),
		VotingSupply: abi.ConvertType(out[5], new(big.Int)).(*big.Int),
	}
	payload.StartBlock = uint64(*abi.ConvertType(out[3], new(uint32)).(*uint32))
	payload.EndBlock = uint64(*abi.ConvertType(out[4], new(uint32)).(*uint32))

	return nil
}

func (r *Reader) readUint32(ctx context.Context, dao *models.DAO, address string, contractABI abi.ABI, method string, args ...interface{}) (uint32, error) {
	out, err := r.call(ctx, dao, address, contractABI, method, args...)
	if err != nil {
		return 0, err
	}
	return *abi.ConvertType(out[0], new(uint32)).(*uint32), nil
}

func (r *Reader) readBig(ctx context.Context, dao *models.DAO, address, method string) (*big.Int, error) {
	out, err := r.call(ctx, dao, address, FreezeVotingABI, method)
	if err != nil {
		return nil, err
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}

func seconds(v uint32) time.Duration {
	return time.Duration(v) * time.Second
}

// Ensure the reader implements the interface
var _ usecase.GovernanceReader = (*Reader)(nil)
