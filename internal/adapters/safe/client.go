package safe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
	"github.com/trebuchet-org/treb-gov/pkg/safe"
)

// ServiceAdapter implements usecase.SafeService on top of the Safe Transaction Service client
type ServiceAdapter struct {
	cfg *config.RuntimeConfig
	log *slog.Logger

	mu      sync.Mutex
	clients map[uint64]*safe.SafeClient
}

// NewServiceAdapter creates a new Safe service adapter
func NewServiceAdapter(cfg *config.RuntimeConfig, log *slog.Logger) *ServiceAdapter {
	return &ServiceAdapter{
		cfg:     cfg,
		log:     log.With("component", "safe"),
		clients: make(map[uint64]*safe.SafeClient),
	}
}

// clientFor returns the cached client for the DAO's chain, creating it on first use
func (s *ServiceAdapter) clientFor(dao *models.DAO) (*safe.SafeClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if client, ok := s.clients[dao.ChainID]; ok {
		return client, nil
	}

	opts := []safe.Option{safe.WithAPIKey(s.cfg.SafeAPIKey)}
	if network, ok := s.cfg.NetworkFor(dao); ok {
		opts = append(opts, safe.WithServiceURL(network.SafeServiceURL))
	}

	client, err := safe.NewSafeClient(dao.ChainID, opts...)
	if err != nil {
		if errors.Is(err, safe.ErrUnsupportedChain) {
			return nil, fmt.Errorf("%w: chain %d has no Safe Transaction Service, set safe_service_url", domain.ErrUnsupportedChain, dao.ChainID)
		}
		return nil, err
	}

	s.log.Debug("created safe client", "chainId", dao.ChainID, "url", client.ServiceURL())
	s.clients[dao.ChainID] = client
	return client, nil
}

// GetSafeInfo returns the Safe's nonce, threshold and owners
func (s *ServiceAdapter) GetSafeInfo(ctx context.Context, dao *models.DAO) (*models.SafeInfo, error) {
	client, err := s.clientFor(dao)
	if err != nil {
		return nil, err
	}

	info, err := client.GetSafeInfo(ctx, common.HexToAddress(dao.Safe))
	if err != nil {
		return nil, fmt.Errorf("failed to get safe info for %s: %w", dao.Name, mapError(err))
	}

	nonce, err := info.Nonce.Uint64()
	if err != nil {
		return nil, fmt.Errorf("invalid safe nonce %q: %w", info.Nonce, err)
	}

	return &models.SafeInfo{
		Address:   info.Address,
		Nonce:     nonce,
		Threshold: info.Threshold,
		Owners:    info.Owners,
		Modules:   info.Modules,
		Guard:     info.Guard,
		Version:   info.Version,
	}, nil
}

// ListMultisigTransactions returns every multisig transaction of the Safe as proposals
func (s *ServiceAdapter) ListMultisigTransactions(ctx context.Context, dao *models.DAO) ([]*models.Proposal, error) {
	client, err := s.clientFor(dao)
	if err != nil {
		return nil, err
	}

	txs, err := client.ListMultisigTransactions(ctx, common.HexToAddress(dao.Safe))
	truncated := errors.Is(err, safe.ErrTruncated)
	if err != nil && !truncated {
		return nil, fmt.Errorf("failed to list multisig transactions for %s: %w", dao.Name, mapError(err))
	}

	proposals := make([]*models.Proposal, 0, len(txs))
	for _, tx := range txs {
		p, err := convertMultisig(dao, tx)
		if err != nil {
			s.log.Warn("skipping malformed multisig transaction", "safeTxHash", tx.SafeTxHash, "error", err)
			continue
		}
		proposals = append(proposals, p)
	}

	s.log.Debug("listed multisig transactions", "dao", dao.Name, "count", len(proposals), "truncated", truncated)
	if truncated {
		return proposals, fmt.Errorf("%w: multisig transactions of %s: %v", domain.ErrTruncated, dao.Name, err)
	}
	return proposals, nil
}

// ListModuleTransactions returns transactions executed through the Safe's modules
func (s *ServiceAdapter) ListModuleTransactions(ctx context.Context, dao *models.DAO) ([]*models.Proposal, error) {
	client, err := s.clientFor(dao)
	if err != nil {
		return nil, err
	}

	txs, err := client.ListModuleTransactions(ctx, common.HexToAddress(dao.Safe))
	truncated := errors.Is(err, safe.ErrTruncated)
	if err != nil && !truncated {
		return nil, fmt.Errorf("failed to list module transactions for %s: %w", dao.Name, mapError(err))
	}

	proposals := make([]*models.Proposal, 0, len(txs))
	for _, tx := range txs {
		proposals = append(proposals, convertModule(dao, tx))
	}
	if truncated {
		return proposals, fmt.Errorf("%w: module transactions of %s: %v", domain.ErrTruncated, dao.Name, err)
	}
	return proposals, nil
}

// GetMultisigTransaction returns a single transaction of the Safe as a proposal
func (s *ServiceAdapter) GetMultisigTransaction(ctx context.Context, dao *models.DAO, safeTxHash string) (*models.Proposal, error) {
	client, err := s.clientFor(dao)
	if err != nil {
		return nil, err
	}

	tx, err := client.GetTransaction(ctx, common.HexToHash(safeTxHash))
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", safeTxHash, mapError(err))
	}
	if !common.IsHexAddress(tx.Safe) || common.HexToAddress(tx.Safe) != common.HexToAddress(dao.Safe) {
		return nil, fmt.Errorf("%w: transaction %s belongs to safe %s", domain.ErrNotFound, safeTxHash, tx.Safe)
	}
	return convertMultisig(dao, tx)
}

func convertMultisig(dao *models.DAO, tx *safe.MultisigTransaction) (*models.Proposal, error) {
	nonce, err := tx.Nonce.Uint64()
	if err != nil {
		return nil, fmt.Errorf("invalid nonce %q: %w", tx.Nonce, err)
	}

	payload := &models.MultisigPayload{
		SafeTxHash: tx.SafeTxHash,
		Nonce:      nonce,
		Transaction: models.SafeTxData{
			To:             tx.To,
			Value:          tx.Value,
			Data:           deref(tx.Data),
			Operation:      models.Operation(tx.Operation),
			SafeTxGas:      string(tx.SafeTxGas),
			BaseGas:        string(tx.BaseGas),
			GasPrice:       string(tx.GasPrice),
			GasToken:       tx.GasToken,
			RefundReceiver: tx.RefundReceiver,
		},
		SignersThreshold: tx.ConfirmationsRequired,
		IsExecuted:       tx.IsExecuted,
		ExecutionTxHash:  deref(tx.TransactionHash),
		ExecutedAt:       tx.ExecutionDate,
	}

	for _, conf := range tx.Confirmations {
		payload.Confirmations = append(payload.Confirmations, models.Confirmation{
			Signer:      conf.Owner,
			Signature:   conf.Signature,
			ConfirmedAt: conf.SubmissionDate,
		})
	}

	return &models.Proposal{
		ID:        tx.SafeTxHash,
		Kind:      models.ProposalKindMultisig,
		DAO:       dao.Key,
		Title:     multisigTitle(dao, tx),
		Proposer:  tx.Proposer,
		CreatedAt: tx.SubmissionDate,
		Multisig:  payload,
	}, nil
}

func convertModule(dao *models.DAO, tx *safe.ModuleTransaction) *models.Proposal {
	id := tx.ModuleTransactionID
	if id == "" {
		id = tx.TransactionHash
	}

	title := "Module transaction"
	if tx.DataDecoded != nil && tx.DataDecoded.Method != "" {
		title = tx.DataDecoded.Method
	}

	return &models.Proposal{
		ID:        id,
		Kind:      models.ProposalKindModule,
		DAO:       dao.Key,
		Title:     title,
		CreatedAt: tx.Created,
		Module: &models.ModulePayload{
			Module: tx.Module,
			Transaction: models.SafeTxData{
				To:        tx.To,
				Value:     tx.Value,
				Data:      deref(tx.Data),
				Operation: models.Operation(tx.Operation),
			},
			ExecutionTxHash: tx.TransactionHash,
			ExecutedAt:      tx.ExecutionDate,
		},
	}
}

// multisigTitle names a transaction the way the Safe UI summarises it
func multisigTitle(dao *models.DAO, tx *safe.MultisigTransaction) string {
	data := strings.TrimPrefix(deref(tx.Data), "0x")
	if data == "" {
		if strings.EqualFold(tx.To, dao.Safe) && isZero(tx.Value) {
			return "Rejection"
		}
		return "Transfer"
	}
	if tx.DataDecoded != nil && tx.DataDecoded.Method != "" {
		return tx.DataDecoded.Method
	}
	return "Contract interaction"
}

func mapError(err error) error {
	var statusErr *safe.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}
	return err
}

func isZero(value string) bool {
	if value == "" {
		return true
	}
	n, ok := new(big.Int).SetString(value, 10)
	return ok && n.Sign() == 0
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Ensure the adapter implements the interface
var _ usecase.SafeService = (*ServiceAdapter)(nil)
