package render

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// RenderFreezeStatus renders a DAO's freeze voting state
func RenderFreezeStatus(out io.Writer, result *usecase.FreezeStatusResult) error {
	guard := result.Guard
	status := result.Status

	fmt.Fprintf(out, "%s freeze status\n", headerStyle.Sprint(result.DAO.Name))
	fmt.Fprintf(out, "  Guard:   %s\n", addressStyle.Sprint(guard.GuardAddress))
	if guard.FreezeVotingAddress == "" {
		fmt.Fprintln(out, faintStyle.Sprint("  No freeze voting contract"))
		return nil
	}
	fmt.Fprintf(out, "  Voting:  %s\n", addressStyle.Sprint(guard.FreezeVotingAddress))

	switch {
	case status.Frozen:
		fmt.Fprintf(out, "  State:   %s%s\n", color.New(color.FgRed, color.Bold).Sprint("Frozen"), until(" until ", status.FrozenUntil))
	case status.ProposalActive:
		needed := "0"
		if status.VotesNeeded != nil {
			needed = status.VotesNeeded.String()
		}
		fmt.Fprintf(out, "  State:   %s, %s more votes needed%s\n",
			color.YellowString("Freeze proposal open"), needed, until(", ends ", status.ProposalEndsAt))
	default:
		fmt.Fprintf(out, "  State:   %s\n", color.GreenString("Not frozen"))
	}

	if guard.FreezeVotesThreshold != nil {
		votes := "0"
		if guard.FreezeProposalVoteCount != nil {
			votes = guard.FreezeProposalVoteCount.String()
		}
		fmt.Fprintf(out, "  Votes:   %s of %s\n", votes, guard.FreezeVotesThreshold)
	}

	switch {
	case status.CanVote && !status.ProposalActive:
		fmt.Fprintln(out, enabledStyle.Sprint("  → Freeze vote available (creates a freeze proposal)"))
	case status.CanVote:
		fmt.Fprintln(out, enabledStyle.Sprint("  → Freeze vote available"))
	case guard.UserHasFreezeVoted:
		fmt.Fprintln(out, faintStyle.Sprint("  You already voted on this freeze proposal"))
	}
	return nil
}

func until(prefix string, t *time.Time) string {
	if t == nil {
		return ""
	}
	return prefix + t.Format(time.RFC3339)
}
