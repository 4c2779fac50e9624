//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/treb-gov/internal/adapters"
	"github.com/trebuchet-org/treb-gov/internal/config"
	"github.com/trebuchet-org/treb-gov/internal/logging"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewPendingActions,
		usecase.NewListDAOs,
		usecase.NewResolveDAO,
		usecase.NewListProposals,
		usecase.NewShowProposal,
		usecase.NewExecuteAction,
		usecase.NewCastVote,
		usecase.NewShowFreezeStatus,
		usecase.NewCastFreezeVote,
		usecase.NewWatchProposals,

		// App
		NewApp,
	)
	return nil, nil
}
