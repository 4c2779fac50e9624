package blockchain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

const (
	safeAddr   = "0x1111111111111111111111111111111111111111"
	guardAddr  = "0x2222222222222222222222222222222222222222"
	votingAddr = "0x3333333333333333333333333333333333333333"
	azorius    = "0x4444444444444444444444444444444444444444"
	strategy   = "0x5555555555555555555555555555555555555555"
)

// fakeBackend answers view calls from canned outputs keyed by method name.
// Methods it does not override panic through the nil embedded interface.
type fakeBackend struct {
	Backend
	chainID uint64
	outputs map[string][]interface{}
	logs    []types.Log
}

func (f *fakeBackend) ChainID(context.Context) (*big.Int, error) {
	return new(big.Int).SetUint64(f.chainID), nil
}

func (f *fakeBackend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	for _, contractABI := range []abi.ABI{SafeABI, FreezeGuardABI, FreezeVotingABI, AzoriusABI, StrategyABI} {
		method, err := contractABI.MethodById(msg.Data[:4])
		if err != nil {
			continue
		}
		out, ok := f.outputs[method.Name]
		if !ok {
			return nil, errors.New("execution reverted")
		}
		return method.Outputs.Pack(out...)
	}
	return nil, errors.New("unknown selector")
}

func (f *fakeBackend) FilterLogs(context.Context, ethereum.FilterQuery) ([]types.Log, error) {
	return f.logs, nil
}

func (f *fakeBackend) HeaderByNumber(_ context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{Number: number, Time: 1_700_000_000}, nil
}

func testDAO() *models.DAO {
	return &models.DAO{
		Name:         "test",
		Key:          models.NewDAOKey(31337, safeAddr),
		Network:      "local",
		ChainID:      31337,
		Safe:         safeAddr,
		FreezeGuard:  guardAddr,
		FreezeVoting: votingAddr,
		Azorius:      azorius,
		Strategy:     strategy,
	}
}

func newTestPool(t *testing.T, backend *fakeBackend) *Pool {
	t.Helper()
	cfg := &config.RuntimeConfig{
		Networks: map[string]*config.Network{
			"local": {ChainID: 31337, Name: "local", RPCURL: "http://fake"},
		},
	}
	return NewPoolWithDialer(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)),
		func(context.Context, string) (Backend, error) { return backend, nil })
}

func TestPoolRejectsChainMismatch(t *testing.T) {
	pool := newTestPool(t, &fakeBackend{chainID: 1})
	_, err := pool.Backend(context.Background(), testDAO())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chain ID mismatch")
}

func TestPoolWithoutRPC(t *testing.T) {
	pool := NewPool(&config.RuntimeConfig{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	dao := testDAO()

	_, err := pool.Backend(context.Background(), dao)
	assert.ErrorIs(t, err, domain.ErrMissingPrerequisite)
}

func TestReaderSafeNonce(t *testing.T) {
	backend := &fakeBackend{chainID: 31337, outputs: map[string][]interface{}{
		"nonce": {big.NewInt(42)},
	}}
	reader := NewReader(newTestPool(t, backend), slog.New(slog.NewTextHandler(io.Discard, nil)))

	nonce, err := reader.SafeNonce(context.Background(), testDAO())
	require.NoError(t, err)
	assert.Equal(t, uint64(42), nonce)
}

func TestReaderReadFreezeGuard(t *testing.T) {
	backend := &fakeBackend{chainID: 31337, outputs: map[string][]interface{}{
		"timelockPeriod":                 {uint32(3600)},
		"executionPeriod":                {uint32(7200)},
		"freezeVotesThreshold":           {big.NewInt(3)},
		"freezeProposalVoteCount":        {big.NewInt(1)},
		"freezeProposalCreatedTimestamp": {uint32(1_700_000_000)},
		"freezeProposalPeriod":           {uint32(86400)},
		"freezePeriod":                   {uint32(604800)},
		"isFrozen":                       {false},
		"userHasFreezeVoted":             {true},
	}}
	reader := NewReader(newTestPool(t, backend), slog.New(slog.NewTextHandler(io.Discard, nil)))

	guard, err := reader.ReadFreezeGuard(context.Background(), testDAO(), "0x9999999999999999999999999999999999999999")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, guard.TimelockPeriod)
	assert.Equal(t, 2*time.Hour, guard.ExecutionPeriod)
	assert.Equal(t, int64(3), guard.FreezeVotesThreshold.Int64())
	assert.Equal(t, int64(1), guard.FreezeProposalVoteCount.Int64())
	assert.Equal(t, time.Unix(1_700_000_000, 0).UTC(), guard.FreezeProposalCreatedAt)
	assert.Equal(t, 24*time.Hour, guard.FreezeProposalPeriod)
	assert.True(t, guard.UserHasFreezeVoted)
	assert.False(t, guard.IsFrozen)
}

func TestReaderReadFreezeGuardWithoutGuard(t *testing.T) {
	reader := NewReader(newTestPool(t, &fakeBackend{chainID: 31337}), slog.New(slog.NewTextHandler(io.Discard, nil)))
	dao := testDAO()
	dao.FreezeGuard = ""

	guard, err := reader.ReadFreezeGuard(context.Background(), dao, "")
	require.NoError(t, err)
	assert.Nil(t, guard)
}

func TestReaderTimelockedAt(t *testing.T) {
	tests := []struct {
		name string
		ts   uint32
		want time.Time
	}{
		{name: "never timelocked", ts: 0, want: time.Time{}},
		{name: "timelocked", ts: 1_700_000_000, want: time.Unix(1_700_000_000, 0).UTC()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{chainID: 31337, outputs: map[string][]interface{}{
				"getTransactionTimelockedTimestamp": {tt.ts},
			}}
			reader := NewReader(newTestPool(t, backend), slog.New(slog.NewTextHandler(io.Discard, nil)))

			got, err := reader.TimelockedAt(context.Background(), testDAO(), common.HexToHash("0x01"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func proposalCreatedLog(t *testing.T, id int64, metadata string) types.Log {
	t.Helper()
	data, err := AzoriusABI.Events["ProposalCreated"].Inputs.Pack(
		common.HexToAddress(strategy),
		big.NewInt(id),
		common.HexToAddress("0x6666666666666666666666666666666666666666"),
		[]azoriusTransaction{{
			To:        common.HexToAddress("0x7777777777777777777777777777777777777777"),
			Value:     big.NewInt(5),
			Data:      []byte{0xa9, 0x05, 0x9c, 0xbb},
			Operation: 0,
		}},
		metadata,
	)
	require.NoError(t, err)

	return types.Log{
		Address:     common.HexToAddress(azorius),
		Topics:      []common.Hash{AzoriusABI.Events["ProposalCreated"].ID},
		Data:        data,
		BlockNumber: 100,
		TxHash:      common.HexToHash("0xabc"),
	}
}

func TestDecodeProposalCreated(t *testing.T) {
	dao := testDAO()
	p, err := DecodeProposalCreated(dao, proposalCreatedLog(t, 7, `{"title":"Fund grants","description":"..."}`))
	require.NoError(t, err)

	assert.Equal(t, "7", p.ID)
	assert.Equal(t, models.ProposalKindAzorius, p.Kind)
	assert.Equal(t, "Fund grants", p.Title)
	assert.Equal(t, uint32(7), p.Azorius.ProposalID)
	assert.Equal(t, common.HexToAddress(strategy).Hex(), p.Azorius.Strategy)
	require.Len(t, p.Azorius.Transactions, 1)
	assert.Equal(t, "5", p.Azorius.Transactions[0].Value)
	assert.Equal(t, "0xa9059cbb", p.Azorius.Transactions[0].Data)
	assert.Equal(t, uint64(100), p.Azorius.CreatedBlock)

	untitled, err := DecodeProposalCreated(dao, proposalCreatedLog(t, 8, "not json"))
	require.NoError(t, err)
	assert.Equal(t, "Proposal #8", untitled.Title)
}

func TestReaderListAndReadAzorius(t *testing.T) {
	backend := &fakeBackend{
		chainID: 31337,
		logs:    []types.Log{proposalCreatedLog(t, 1, "")},
		outputs: map[string][]interface{}{
			"proposalState":    {uint8(2)},
			"getProposalVotes": {big.NewInt(1), big.NewInt(10), big.NewInt(0), uint32(90), uint32(190), big.NewInt(100)},
		},
	}
	reader := NewReader(newTestPool(t, backend), slog.New(slog.NewTextHandler(io.Discard, nil)))
	dao := testDAO()

	proposals, err := reader.ListAzoriusProposals(context.Background(), dao)
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	assert.Equal(t, time.Unix(1_700_000_000, 0).UTC(), proposals[0].CreatedAt)

	require.NoError(t, reader.ReadAzoriusStatus(context.Background(), dao, proposals[0]))
	payload := proposals[0].Azorius
	assert.Equal(t, uint8(2), payload.RawState)
	assert.Equal(t, int64(10), payload.Votes.Yes.Int64())
	assert.Equal(t, int64(1), payload.Votes.No.Int64())
	assert.Equal(t, uint64(190), payload.EndBlock)
}

func TestExecutorWithoutWallet(t *testing.T) {
	cfg := &config.RuntimeConfig{}
	executor, err := NewExecutor(newTestPool(t, &fakeBackend{chainID: 31337}), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	assert.Empty(t, executor.Account())
	_, err = executor.CastFreezeVote(context.Background(), testDAO())
	assert.ErrorIs(t, err, domain.ErrMissingPrerequisite)
}

func TestExecutorAccount(t *testing.T) {
	// Well-known first anvil account
	cfg := &config.RuntimeConfig{PrivateKey: "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"}
	executor, err := NewExecutor(newTestPool(t, &fakeBackend{chainID: 31337}), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", executor.Account())

	_, err = NewExecutor(nil, &config.RuntimeConfig{PrivateKey: "nothex"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestSafeTxArgs(t *testing.T) {
	args, err := safeTxArgs(models.SafeTxData{
		To:    "0x7777777777777777777777777777777777777777",
		Value: "1000",
		Data:  "0xa9059cbb",
	})
	require.NoError(t, err)
	require.Len(t, args, 9)
	assert.Equal(t, big.NewInt(1000), args[1])
	assert.Equal(t, []byte{0xa9, 0x05, 0x9c, 0xbb}, args[2])
	assert.Equal(t, common.Address{}, args[7])

	// Packs against the real method signature once signatures are appended
	_, err = SafeABI.Pack("execTransaction", append(args, []byte{0x01})...)
	require.NoError(t, err)

	_, err = safeTxArgs(models.SafeTxData{Value: "lots"})
	assert.Error(t, err)
}
