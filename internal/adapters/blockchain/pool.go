package blockchain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// Backend is the subset of an RPC client used to read, write and watch contracts
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	BlockNumber(ctx context.Context) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// DialFunc connects to an RPC endpoint
type DialFunc func(ctx context.Context, rpcURL string) (Backend, error)

// Pool hands out one connected backend per network
type Pool struct {
	cfg  *config.RuntimeConfig
	log  *slog.Logger
	dial DialFunc

	mu       sync.Mutex
	backends map[string]Backend
}

// NewPool creates a backend pool dialing with ethclient
func NewPool(cfg *config.RuntimeConfig, log *slog.Logger) *Pool {
	return NewPoolWithDialer(cfg, log, func(ctx context.Context, rpcURL string) (Backend, error) {
		return ethclient.DialContext(ctx, rpcURL)
	})
}

// NewPoolWithDialer creates a pool using a custom dialer
func NewPoolWithDialer(cfg *config.RuntimeConfig, log *slog.Logger, dial DialFunc) *Pool {
	return &Pool{
		cfg:      cfg,
		log:      log.With("component", "rpc"),
		dial:     dial,
		backends: make(map[string]Backend),
	}
}

// Backend returns a connected backend for the DAO's network. The chain ID
// reported by the node must match the configured one.
func (p *Pool) Backend(ctx context.Context, dao *models.DAO) (Backend, error) {
	network, ok := p.cfg.NetworkFor(dao)
	if !ok || network.RPCURL == "" {
		return nil, fmt.Errorf("%w: no rpc_url configured for network %q", domain.ErrMissingPrerequisite, dao.Network)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if backend, ok := p.backends[network.Name]; ok {
		return backend, nil
	}

	backend, err := p.dial(ctx, network.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	if network.ChainID != 0 && chainID.Uint64() != network.ChainID {
		return nil, fmt.Errorf("chain ID mismatch on %s: expected %d, got %d", network.Name, network.ChainID, chainID.Uint64())
	}

	p.log.Debug("connected", "network", network.Name, "chainId", chainID)
	p.backends[network.Name] = backend
	return backend, nil
}

// Close disconnects every backend that supports it
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for name, backend := range p.backends {
		if c, ok := backend.(interface{ Close() }); ok {
			c.Close()
		}
		delete(p.backends, name)
	}
}
