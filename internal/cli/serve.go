package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve proposal status over HTTP",
		Long: `Start a read-only JSON API exposing the configured DAOs, their proposals with
state and action, and freeze status.

  GET /healthz
  GET /daos
  GET /daos/{dao}/proposals?state=EXECUTABLE&kind=multisig&actionable=true&all=true
  GET /daos/{dao}/proposals/{id}
  GET /daos/{dao}/freeze`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{longRunningAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.ErrOrStderr(), "Serving proposal status on %s\n", a.Config.ListenAddr)
			return a.Server.ListenAndServe(ctx, a.Config.ListenAddr)
		},
	}

	cmd.Flags().String("listen", ":8080", "Address to listen on")
	return cmd
}
