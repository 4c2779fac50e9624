package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-gov/internal/cli/render"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// filterFlags holds the proposal filter flags shared by proposals and watch
type filterFlags struct {
	states     []string
	kind       string
	actionable bool
	all        bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.states, "state", nil, "Only show proposals in these states (e.g. executable,timelocked)")
	cmd.Flags().StringVar(&f.kind, "kind", "", "Only show proposals of this kind (multisig, azorius, module)")
	cmd.Flags().BoolVar(&f.actionable, "actionable", false, "Only show proposals with an enabled action")
	cmd.Flags().BoolVarP(&f.all, "all", "a", false, "Include executed, rejected, expired and failed proposals")
}

func (f *filterFlags) build() (domain.ProposalFilter, error) {
	filter := domain.ProposalFilter{
		Actionable:      f.actionable,
		IncludeTerminal: f.all,
	}

	switch models.ProposalKind(f.kind) {
	case "":
	case models.ProposalKindMultisig, models.ProposalKindAzorius, models.ProposalKindModule:
		filter.Kind = models.ProposalKind(f.kind)
	default:
		return filter, fmt.Errorf("unknown proposal kind %q", f.kind)
	}

	for _, s := range f.states {
		state, ok := models.ParseProposalState(strings.ToUpper(strings.TrimSpace(s)))
		if !ok {
			return filter, fmt.Errorf("unknown proposal state %q", s)
		}
		filter.States = append(filter.States, state)
		if state.IsTerminal() {
			filter.IncludeTerminal = true
		}
	}
	return filter, nil
}

// NewProposalsCmd creates the proposals command
func NewProposalsCmd() *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:     "proposals",
		Aliases: []string{"ls", "list"},
		Short:   "List proposals and their available actions",
		Long: `List the proposals of a DAO: pending Safe transactions, Azorius proposals
and module transactions, each with its state and the action that moves it forward.

Executed, rejected, expired and failed proposals are hidden unless --all is given.`,
		Example: `  treb-gov proposals
  treb-gov proposals --dao treasury --actionable
  treb-gov proposals --state timelocked,executable --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			filter, err := flags.build()
			if err != nil {
				return err
			}

			dao, err := resolveDAO(cmd, a)
			if err != nil {
				return err
			}

			result, err := a.ListProposals.Run(cmd.Context(), usecase.ListProposalsParams{DAO: dao, Filter: filter})
			if err != nil {
				return fmt.Errorf("failed to list proposals: %w", err)
			}

			if render.IsStructured(a.Config.Output) {
				return render.WriteStructured(cmd.OutOrStdout(), a.Config.Output, result)
			}
			return render.NewProposalsRenderer(cmd.OutOrStdout()).RenderProposalList(result)
		},
	}

	flags.register(cmd)
	return cmd
}
