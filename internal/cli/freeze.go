package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-gov/internal/cli/render"
)

// NewFreezeCmd creates the freeze command group
func NewFreezeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "freeze",
		Short: "Inspect and vote on the freeze guard of a child DAO",
		Long: `A freeze guard lets a parent DAO freeze a child Safe. Once enough freeze votes
are cast within the freeze proposal period, the child cannot execute until the
freeze period ends.`,
	}

	cmd.AddCommand(newFreezeStatusCmd(), newFreezeVoteCmd())
	return cmd
}

func newFreezeStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show freeze votes and whether the DAO is frozen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			dao, err := resolveDAO(cmd, a)
			if err != nil {
				return err
			}

			result, err := a.ShowFreezeStatus.Run(cmd.Context(), dao)
			if err != nil {
				return err
			}

			if render.IsStructured(a.Config.Output) {
				return render.WriteStructured(cmd.OutOrStdout(), a.Config.Output, result)
			}
			return render.RenderFreezeStatus(cmd.OutOrStdout(), result)
		},
	}
}

func newFreezeVoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vote",
		Short: "Cast a freeze vote, opening a freeze proposal when none is active",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			dao, err := resolveDAO(cmd, a)
			if err != nil {
				return err
			}

			result, err := a.CastFreezeVote.Run(cmd.Context(), dao)
			if err != nil {
				return err
			}
			return writeActionResult(cmd, a.Config.Output, result)
		},
	}
}
