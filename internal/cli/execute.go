package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-gov/internal/cli/render"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// NewExecuteCmd creates the execute command
func NewExecuteCmd() *cobra.Command {
	return newActionCmd(models.ActionExecute, actionCmdText{
		use:   "execute [proposal]",
		short: "Execute an executable proposal",
		long: `Submit the execution transaction for a proposal whose state is EXECUTABLE.

Multisig proposals are executed through execTransaction with the collected
signatures. Azorius proposals are executed through the Azorius module.
Use --rejection to execute the rejection transaction sharing the proposal's nonce.`,
		example: `  treb-gov execute 0x8c1f...
  treb-gov execute 0x8c1f... --rejection`,
	})
}

// NewTimelockCmd creates the timelock command
func NewTimelockCmd() *cobra.Command {
	return newActionCmd(models.ActionTimelock, actionCmdText{
		use:   "timelock [proposal]",
		short: "Start the freeze guard timelock for a signed proposal",
		long: `Submit the freeze guard timelock transaction for a proposal whose state is
TIMELOCKABLE. Once the timelock period has passed the proposal becomes executable.`,
		example: `  treb-gov timelock 0x8c1f... --dao treasury`,
	})
}

type actionCmdText struct {
	use     string
	short   string
	long    string
	example string
}

func newActionCmd(kind models.ActionKind, text actionCmdText) *cobra.Command {
	var rejection bool

	cmd := &cobra.Command{
		Use:     text.use,
		Short:   text.short,
		Long:    text.long,
		Example: text.example,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			dao, err := resolveDAO(cmd, a)
			if err != nil {
				return err
			}

			id := ""
			if len(args) > 0 {
				id = args[0]
			} else {
				listing, err := a.ListProposals.Run(cmd.Context(), usecase.ListProposalsParams{DAO: dao, Filter: domain.ProposalFilter{}})
				if err != nil {
					return fmt.Errorf("failed to list proposals: %w", err)
				}
				entry, err := pickProposal(cmd, a, actionableOnly(listing, kind), nil, fmt.Sprintf("Select a proposal to %s", kind))
				if err != nil {
					return err
				}
				id = entry.Proposal.ID
				if entry.Action.Kind != kind && entry.RejectionAction != nil && entry.RejectionAction.Kind == kind {
					rejection = true
				}
			}

			result, err := a.ExecuteAction.Run(cmd.Context(), usecase.ExecuteActionParams{
				DAO:        dao,
				ProposalID: id,
				Action:     kind,
				Rejection:  rejection,
			})
			if err != nil {
				return err
			}
			return writeActionResult(cmd, a.Config.Output, result)
		},
	}

	cmd.Flags().BoolVar(&rejection, "rejection", false, "Act on the rejection transaction for the proposal's nonce")
	return cmd
}

func writeActionResult(cmd *cobra.Command, output string, result *usecase.ActionResult) error {
	if render.IsStructured(output) {
		return render.WriteStructured(cmd.OutOrStdout(), output, result)
	}
	return render.RenderActionResult(cmd.OutOrStdout(), result)
}
