package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// ProposalCache persists proposals that reached a terminal state. Their
// state can no longer change, so they are never re-read from chain.
type ProposalCache struct {
	path string
	log  *slog.Logger

	mu   sync.Mutex
	conn *leveldb.DB
}

// NewProposalCache creates a cache under <data dir>/cache. The database is
// opened on first use.
func NewProposalCache(cfg *config.RuntimeConfig, log *slog.Logger) *ProposalCache {
	return &ProposalCache{
		path: filepath.Join(cfg.DataDir, "cache"),
		log:  log.With("component", "cache"),
	}
}

func (c *ProposalCache) db() (*leveldb.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return c.conn, nil
	}

	conn, err := leveldb.OpenFile(c.path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open proposal cache at %s: %w", c.path, err)
	}
	c.conn = conn
	return conn, nil
}

func proposalKey(dao models.DAOKey, kind models.ProposalKind, id string) []byte {
	return []byte(fmt.Sprintf("proposal/%s/%s/%s", dao, kind, id))
}

// Get returns a cached proposal
func (c *ProposalCache) Get(ctx context.Context, dao models.DAOKey, kind models.ProposalKind, id string) (*models.Proposal, bool, error) {
	conn, err := c.db()
	if err != nil {
		return nil, false, err
	}

	raw, err := conn.Get(proposalKey(dao, kind, id), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var p models.Proposal
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry for %s: %w", id, err)
	}
	return &p, true, nil
}

// Put stores a proposal if its state is terminal and ignores it otherwise
func (c *ProposalCache) Put(ctx context.Context, p *models.Proposal) error {
	if p == nil || !p.State.IsTerminal() {
		return nil
	}

	conn, err := c.db()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return conn.Put(proposalKey(p.DAO, p.Kind, p.ID), raw, nil)
}

// Close closes the database if it was opened
func (c *ProposalCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Ensure the cache implements the interface
var _ usecase.ProposalCache = (*ProposalCache)(nil)
