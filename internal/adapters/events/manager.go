package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/samber/lo"
)

// LogSource is the part of an RPC client the manager polls
type LogSource interface {
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// Filter selects logs by emitting contract and first topic
type Filter struct {
	Address common.Address
	Topic   common.Hash
}

// Handler receives a matching log
type Handler func(types.Log)

// Subscription is a registered handler. Unsubscribe is idempotent.
type Subscription struct {
	id      uint64
	filter  Filter
	handler Handler
	active  atomic.Bool
	manager *Manager
}

// Unsubscribe removes the handler. No delivery starts after it returns.
func (s *Subscription) Unsubscribe() {
	if !s.active.CompareAndSwap(true, false) {
		return
	}
	s.manager.remove(s.id)
}

// Manager polls an RPC for logs and dispatches them to subscriptions
type Manager struct {
	source   LogSource
	interval time.Duration
	log      *slog.Logger

	mu        sync.Mutex
	subs      map[uint64]*Subscription
	nextID    uint64
	lastBlock uint64
	primed    bool
	started   bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a manager. Call Start to begin polling.
func NewManager(source LogSource, interval time.Duration, log *slog.Logger) *Manager {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Manager{
		source:   source,
		interval: interval,
		log:      log.With("component", "events"),
		subs:     make(map[uint64]*Subscription),
		done:     make(chan struct{}),
	}
}

// Subscribe registers a handler for logs matching the filter
func (m *Manager) Subscribe(filter Filter, handler Handler) *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	sub := &Subscription{id: m.nextID, filter: filter, handler: handler, manager: m}
	sub.active.Store(true)
	m.subs[sub.id] = sub
	return sub
}

// SubscribeEvent registers a typed handler. Logs that fail to decode are
// logged and dropped.
func SubscribeEvent[E any](m *Manager, filter Filter, decode func(types.Log) (E, error), fn func(E)) *Subscription {
	return m.Subscribe(filter, func(l types.Log) {
		event, err := decode(l)
		if err != nil {
			m.log.Warn("failed to decode log", "address", l.Address, "tx", l.TxHash, "error", err)
			return
		}
		fn(event)
	})
}

func (m *Manager) remove(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs, id)
}

// Len returns the number of active subscriptions
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// Start launches the polling goroutine. It stops when ctx is cancelled or Close is called.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return errors.New("event manager already started")
	}
	m.started = true
	ctx, m.cancel = context.WithCancel(ctx)
	m.mu.Unlock()

	go m.run(ctx)
	return nil
}

// Close stops polling and waits for the goroutine to exit
func (m *Manager) Close() {
	m.mu.Lock()
	started, cancel := m.started, m.cancel
	for _, sub := range m.subs {
		sub.active.Store(false)
	}
	m.subs = make(map[uint64]*Subscription)
	m.mu.Unlock()

	if !started {
		return
	}
	cancel()
	<-m.done
}

func (m *Manager) run(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if err := m.Poll(ctx); err != nil && ctx.Err() == nil {
			m.log.Warn("log poll failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Poll fetches logs emitted since the previous poll and dispatches them. The
// first poll only records the head block.
func (m *Manager) Poll(ctx context.Context) error {
	head, err := m.source.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("failed to get block number: %w", err)
	}

	m.mu.Lock()
	from := m.lastBlock + 1
	first := !m.primed
	subs := lo.Values(m.subs)
	m.mu.Unlock()

	if first || head < from {
		m.setLastBlock(head)
		return nil
	}
	if len(subs) == 0 {
		m.setLastBlock(head)
		return nil
	}

	addresses := lo.Uniq(lo.Map(subs, func(s *Subscription, _ int) common.Address { return s.filter.Address }))
	topics := lo.Uniq(lo.Map(subs, func(s *Subscription, _ int) common.Hash { return s.filter.Topic }))

	logs, err := m.source.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(head),
		Addresses: addresses,
		Topics:    [][]common.Hash{topics},
	})
	if err != nil {
		return fmt.Errorf("failed to filter logs %d-%d: %w", from, head, err)
	}

	for _, l := range logs {
		if l.Removed || len(l.Topics) == 0 {
			continue
		}
		for _, sub := range subs {
			if sub.filter.Address != l.Address || sub.filter.Topic != l.Topics[0] {
				continue
			}
			if sub.active.Load() {
				sub.handler(l)
			}
		}
	}

	m.setLastBlock(head)
	return nil
}

func (m *Manager) setLastBlock(head uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.primed = true
	if head > m.lastBlock {
		m.lastBlock = head
	}
}
