package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-gov/internal/cli/render"
)

// NewDAOsCmd creates the daos command
func NewDAOsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "daos",
		Aliases: []string{"dao"},
		Short:   "List configured DAOs",
		Long:    `List the DAOs declared in treb-gov.toml with their network, Safe and governance modules.`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			daos := a.ListDAOs.Run(cmd.Context())
			if render.IsStructured(a.Config.Output) {
				return render.WriteStructured(cmd.OutOrStdout(), a.Config.Output, daos)
			}
			return render.RenderDAOList(cmd.OutOrStdout(), daos)
		},
	}
}
