package adapters

import (
	"github.com/google/wire"
	"github.com/trebuchet-org/treb-gov/internal/adapters/blockchain"
	"github.com/trebuchet-org/treb-gov/internal/adapters/cache"
	"github.com/trebuchet-org/treb-gov/internal/adapters/daostore"
	"github.com/trebuchet-org/treb-gov/internal/adapters/events"
	"github.com/trebuchet-org/treb-gov/internal/adapters/httpapi"
	"github.com/trebuchet-org/treb-gov/internal/adapters/interactive"
	"github.com/trebuchet-org/treb-gov/internal/adapters/progress"
	"github.com/trebuchet-org/treb-gov/internal/adapters/safe"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// SafeSet provides the Safe Transaction Service client
var SafeSet = wire.NewSet(
	safe.NewServiceAdapter,
	wire.Bind(new(usecase.SafeService), new(*safe.ServiceAdapter)),
)

// BlockchainSet provides RPC-backed readers and writers
var BlockchainSet = wire.NewSet(
	blockchain.NewPool,
	blockchain.NewReader,
	wire.Bind(new(usecase.GovernanceReader), new(*blockchain.Reader)),

	blockchain.NewExecutor,
	wire.Bind(new(usecase.GovernanceExecutor), new(*blockchain.Executor)),
)

// EventsSet provides contract event subscriptions
var EventsSet = wire.NewSet(
	events.NewDAOWatcher,
	wire.Bind(new(usecase.DAOEventSource), new(*events.DAOWatcher)),
)

// StoreSet provides the in-memory DAO store and the terminal proposal cache
var StoreSet = wire.NewSet(
	daostore.NewStore,
	wire.Bind(new(usecase.DAOStore), new(*daostore.Store)),

	cache.NewProposalCache,
	wire.Bind(new(usecase.ProposalCache), new(*cache.ProposalCache)),
)

// ProgressSet provides progress and notification output
var ProgressSet = wire.NewSet(
	progress.NewProgressSink,
	progress.NewNotifier,
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.InteractiveSelector), new(*interactive.SelectorAdapter)),
)

// HTTPSet provides the status server
var HTTPSet = wire.NewSet(
	httpapi.NewServer,
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	SafeSet,
	BlockchainSet,
	EventsSet,
	StoreSet,
	ProgressSet,
	InteractiveSet,
	HTTPSet,
)
