package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-gov/internal/app"
	"github.com/trebuchet-org/treb-gov/internal/cli/render"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [proposal]",
		Short: "Show proposal details",
		Long: `Show the details of a single proposal, including its signatures, transactions
and any rejection transaction competing for the same nonce.

The proposal can be given by id or Safe transaction hash. Transactions older than
the listed pages are looked up by hash. Without an argument an interactive picker
is shown.`,
		Example: `  treb-gov show 0x8c1f...
  treb-gov show 7 --dao grants`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			dao, err := resolveDAO(cmd, a)
			if err != nil {
				return err
			}

			var entry *usecase.ProposalEntry
			if len(args) > 0 {
				entry, _, err = a.ShowProposal.Run(cmd.Context(), usecase.ShowProposalParams{DAO: dao, ID: args[0]})
				if err != nil {
					return err
				}
			} else {
				result, err := a.ListProposals.Run(cmd.Context(), usecase.ListProposalsParams{
					DAO:    dao,
					Filter: domain.ProposalFilter{IncludeTerminal: true},
				})
				if err != nil {
					return fmt.Errorf("failed to list proposals: %w", err)
				}
				if entry, err = pickProposal(cmd, a, result, args, "Select a proposal"); err != nil {
					return err
				}
			}

			if render.IsStructured(a.Config.Output) {
				return render.WriteStructured(cmd.OutOrStdout(), a.Config.Output, entry)
			}
			return render.NewProposalsRenderer(cmd.OutOrStdout()).RenderProposal(dao, entry)
		},
	}
}

// pickProposal finds the proposal named in args or asks the user to choose one
func pickProposal(cmd *cobra.Command, a *app.App, result *usecase.ProposalListResult, args []string, prompt string) (*usecase.ProposalEntry, error) {
	if len(args) > 0 {
		entry, _, ok := result.Find(args[0])
		if !ok {
			return nil, fmt.Errorf("proposal %s: %w", args[0], domain.ErrNotFound)
		}
		return entry, nil
	}

	if a.Config.NonInteractive {
		return nil, fmt.Errorf("proposal id required in non-interactive mode")
	}
	if len(result.Entries) == 0 {
		return nil, fmt.Errorf("no proposals found for %s", result.DAO.Name)
	}
	return a.Selector.SelectProposal(cmd.Context(), result.Entries, prompt)
}

// actionableOnly keeps entries whose action (or rejection action) matches kind
func actionableOnly(result *usecase.ProposalListResult, kind models.ActionKind) *usecase.ProposalListResult {
	filtered := *result
	filtered.Entries = nil
	for _, e := range result.Entries {
		if e.Action.Kind == kind || (e.RejectionAction != nil && e.RejectionAction.Kind == kind) {
			filtered.Entries = append(filtered.Entries, e)
		}
	}
	return &filtered
}
