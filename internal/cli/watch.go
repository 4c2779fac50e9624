package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-gov/internal/cli/render"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// NewWatchCmd creates the watch command
func NewWatchCmd() *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the proposal list up to date",
		Long: `Watch a DAO's proposals, refreshing on contract events from the Safe, freeze
guard and Azorius module and on a polling interval. Press q to quit.

With --json, --output yaml or --non-interactive every refresh is printed instead.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{longRunningAnnotation: "true"},
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

			params := usecase.WatchProposalsParams{DAO: dao, Filter: filter, Interval: a.Config.PollInterval}

			if a.Config.NonInteractive || render.IsStructured(a.Config.Output) {
				return a.WatchProposals.Run(cmd.Context(), params, func(u usecase.WatchUpdate) {
					printWatchUpdate(cmd, a.Config.Output, u)
				})
			}

			program := tea.NewProgram(newWatchModel(dao), tea.WithContext(cmd.Context()), tea.WithOutput(cmd.OutOrStdout()))
			final, err := runWatchProgram(cmd.Context(), program, func(ctx context.Context, send func(tea.Msg)) error {
				return a.WatchProposals.Run(ctx, params, func(u usecase.WatchUpdate) {
					send(watchUpdateMsg(u))
				})
			})
			if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}
			if m, ok := final.(watchModel); ok && m.err != nil {
				return m.err
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().Duration("poll-interval", 15*time.Second, "Fallback polling interval")
	return cmd
}

// runWatchProgram runs watch alongside program and returns only after both
// have stopped
func runWatchProgram(ctx context.Context, program *tea.Program, watch func(context.Context, func(tea.Msg)) error) (tea.Model, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		err := watch(ctx, program.Send)
		program.Send(watchDoneMsg{err: err})
	}()

	final, err := program.Run()
	// Send returns without blocking once the program has exited
	cancel()
	<-done
	return final, err
}

func printWatchUpdate(cmd *cobra.Command, output string, u usecase.WatchUpdate) {
	if u.Err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), render.FormatError(u.Err.Error()))
		return
	}
	if render.IsStructured(output) {
		_ = render.WriteStructured(cmd.OutOrStdout(), output, u.Result)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "--- %s (%s)\n", u.At.Format(time.TimeOnly), u.Trigger)
	_ = render.NewProposalsRenderer(cmd.OutOrStdout()).RenderProposalList(u.Result)
}

type watchUpdateMsg usecase.WatchUpdate

type watchDoneMsg struct {
	err error
}

// watchModel is the bubbletea model for the live proposal view
type watchModel struct {
	dao     *models.DAO
	update  usecase.WatchUpdate
	result  *usecase.ProposalListResult
	updates int
	err     error
	done    bool
}

func newWatchModel(dao *models.DAO) watchModel {
	return watchModel{dao: dao}
}

// Init is the initial command for bubbletea
func (m watchModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.done = true
			return m, tea.Quit
		}
	case watchUpdateMsg:
		m.update = usecase.WatchUpdate(msg)
		m.updates++
		if msg.Result != nil {
			m.result = msg.Result
		}
	case watchDoneMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// View renders the model
func (m watchModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	if m.result == nil {
		fmt.Fprintf(&b, "Loading proposals for %s...\n", m.dao.Name)
	} else {
		_ = render.NewProposalsRenderer(&b).RenderProposalList(m.result)
	}

	b.WriteString("\n")
	if m.update.Err != nil {
		b.WriteString(render.FormatError(m.update.Err.Error()))
		b.WriteString("\n")
	}
	if m.updates > 0 {
		status := fmt.Sprintf("Updated %s (%s", m.update.At.Format(time.TimeOnly), m.update.Trigger)
		if e := m.update.Event; e != nil {
			status += ": " + string(e.Kind)
		}
		status += ")"
		b.WriteString(color.New(color.Faint).Sprint(status))
		b.WriteString("\n")
	}
	b.WriteString(color.New(color.Faint).Sprint("Press q to quit"))
	b.WriteString("\n")
	return b.String()
}
