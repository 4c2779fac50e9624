package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-gov/internal/app"
	"github.com/trebuchet-org/treb-gov/internal/config"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"

	// longRunningAnnotation marks commands that ignore the configured timeout
	longRunningAnnotation = "treb-gov/long-running"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var cancel context.CancelFunc

	rootCmd := &cobra.Command{
		Use:   "treb-gov",
		Short: "Track and act on Safe multisig and Azorius governance proposals",
		Long: `treb-gov lists the proposals of the DAOs configured in treb-gov.toml,
classifies each one (active, timelocked, executable, rejected, ...) and offers
the single action that moves it forward: timelock, execute or vote.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipsApp(cmd) {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			v := config.SetupViper(projectRoot, cmd)

			appInstance, err := app.InitApp(v)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			if appInstance.Config.Timeout > 0 && cmd.Annotations[longRunningAnnotation] == "" {
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
			}
			cmd.SetContext(ctx)

			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if cancel != nil {
				cancel()
			}
			if a, ok := cmd.Context().Value(appKey).(*app.App); ok {
				return a.Close()
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().StringP("dao", "d", "", "DAO to operate on (name, key or Safe address)")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table, json, yaml)")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Proposal Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "actions",
		Title: "Action Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	for _, cmd := range []*cobra.Command{NewProposalsCmd(), NewShowCmd(), NewWatchCmd()} {
		cmd.GroupID = "main"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{NewExecuteCmd(), NewTimelockCmd(), NewVoteCmd(), NewFreezeCmd()} {
		cmd.GroupID = "actions"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{NewDAOsCmd(), NewServeCmd()} {
		cmd.GroupID = "management"
		rootCmd.AddCommand(cmd)
	}

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

func skipsApp(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion", "__complete":
		return true
	}
	return false
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	a, ok := cmd.Context().Value(appKey).(*app.App)
	if !ok || a == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	return a, nil
}

// resolveDAO picks the DAO selected by --dao, the configured default or a prompt
func resolveDAO(cmd *cobra.Command, a *app.App) (*models.DAO, error) {
	return a.ResolveDAO.Run(cmd.Context(), a.Config.DAOName)
}
