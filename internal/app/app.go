package app

import (
	"log/slog"

	"github.com/trebuchet-org/treb-gov/internal/adapters/blockchain"
	"github.com/trebuchet-org/treb-gov/internal/adapters/cache"
	"github.com/trebuchet-org/treb-gov/internal/adapters/httpapi"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Shared dependencies
	Selector usecase.InteractiveSelector

	// Use cases
	ListDAOs         *usecase.ListDAOs
	ResolveDAO       *usecase.ResolveDAO
	ListProposals    *usecase.ListProposals
	ShowProposal     *usecase.ShowProposal
	ExecuteAction    *usecase.ExecuteAction
	CastVote         *usecase.CastVote
	ShowFreezeStatus *usecase.ShowFreezeStatus
	CastFreezeVote   *usecase.CastFreezeVote
	WatchProposals   *usecase.WatchProposals

	// Status server
	Server *httpapi.Server

	// Resources released by Close
	cache *cache.ProposalCache
	pool  *blockchain.Pool
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	selector usecase.InteractiveSelector,
	listDAOs *usecase.ListDAOs,
	resolveDAO *usecase.ResolveDAO,
	listProposals *usecase.ListProposals,
	showProposal *usecase.ShowProposal,
	executeAction *usecase.ExecuteAction,
	castVote *usecase.CastVote,
	showFreezeStatus *usecase.ShowFreezeStatus,
	castFreezeVote *usecase.CastFreezeVote,
	watchProposals *usecase.WatchProposals,
	server *httpapi.Server,
	proposalCache *cache.ProposalCache,
	pool *blockchain.Pool,
) *App {
	return &App{
		Config:           cfg,
		Log:              log,
		Selector:         selector,
		ListDAOs:         listDAOs,
		ResolveDAO:       resolveDAO,
		ListProposals:    listProposals,
		ShowProposal:     showProposal,
		ExecuteAction:    executeAction,
		CastVote:         castVote,
		ShowFreezeStatus: showFreezeStatus,
		CastFreezeVote:   castFreezeVote,
		WatchProposals:   watchProposals,
		Server:           server,
		cache:            proposalCache,
		pool:             pool,
	}
}

// Close releases the proposal cache and RPC connections
func (a *App) Close() error {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.cache != nil {
		return a.cache.Close()
	}
	return nil
}
