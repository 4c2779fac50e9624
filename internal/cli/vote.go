package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// NewVoteCmd creates the vote command
func NewVoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vote <proposal> <yes|no|abstain>",
		Short: "Cast a token vote on an active Azorius proposal",
		Long: `Cast a vote through the DAO's linear voting strategy on an Azorius proposal
whose state is ACTIVE.`,
		Example: `  treb-gov vote 7 yes --dao grants`,
		Args:    cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 1 {
				return []string{"yes", "no", "abstain"}, cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			choice, ok := models.ParseVoteChoice(strings.ToLower(args[1]))
			if !ok {
				return fmt.Errorf("invalid vote %q (use yes, no or abstain)", args[1])
			}

			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			dao, err := resolveDAO(cmd, a)
			if err != nil {
				return err
			}

			result, err := a.CastVote.Run(cmd.Context(), usecase.CastVoteParams{
				DAO:        dao,
				ProposalID: args[0],
				Choice:     choice,
			})
			if err != nil {
				return err
			}
			return writeActionResult(cmd, a.Config.Output, result)
		},
	}
}
