package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

var (
	headerStyle    = color.New(color.Bold, color.FgHiWhite)
	faintStyle     = color.New(color.Faint)
	addressStyle   = color.New(color.FgWhite)
	enabledStyle   = color.New(color.FgGreen, color.Bold)
	pendingStyle   = color.New(color.FgYellow)
	rejectionStyle = color.New(color.FgMagenta)
)

// stateStyles colours each proposal state
var stateStyles = map[models.ProposalState]*color.Color{
	models.ProposalStateActive:       color.New(color.FgCyan),
	models.ProposalStateTimelockable: color.New(color.FgYellow),
	models.ProposalStateTimelocked:   color.New(color.FgYellow),
	models.ProposalStateExecutable:   color.New(color.FgGreen, color.Bold),
	models.ProposalStateExecuted:     color.New(color.FgGreen),
	models.ProposalStateRejected:     color.New(color.FgMagenta),
	models.ProposalStateExpired:      color.New(color.FgRed),
	models.ProposalStateFailed:       color.New(color.FgRed, color.Bold),
	models.ProposalStateModule:       color.New(color.FgBlue),
	models.ProposalStatePending:      color.New(color.Faint),
	models.ProposalStateClosed:       color.New(color.Faint),
}

// StateLabel renders a proposal state, "Loading" while undetermined
func StateLabel(state models.ProposalState) string {
	if !state.IsDetermined() {
		return faintStyle.Sprint("Loading")
	}
	label := Title(string(state))
	if style, ok := stateStyles[state]; ok {
		return style.Sprint(label)
	}
	return label
}

// ActionLabel renders an execution action, empty when none is offered
func ActionLabel(action models.ExecutionAction) string {
	if !action.Visible() {
		return ""
	}
	label := Title(string(action.Kind))
	switch {
	case action.Pending:
		return pendingStyle.Sprintf("%s (pending)", label)
	case action.Enabled:
		return enabledStyle.Sprint("→ " + label)
	default:
		return faintStyle.Sprint(label)
	}
}

// ProposalsRenderer renders proposal listings
type ProposalsRenderer struct {
	out io.Writer
}

// NewProposalsRenderer creates a new proposals renderer
func NewProposalsRenderer(out io.Writer) *ProposalsRenderer {
	return &ProposalsRenderer{out: out}
}

// RenderProposalList renders a DAO header and a table of proposals
func (r *ProposalsRenderer) RenderProposalList(result *usecase.ProposalListResult) error {
	r.renderHeader(result)

	for _, w := range result.Warnings {
		fmt.Fprintln(r.out, FormatWarning(w))
	}

	if len(result.Entries) == 0 {
		fmt.Fprintln(r.out, "No proposals found")
		return nil
	}

	fmt.Fprintln(r.out, proposalTable(result.Entries))
	fmt.Fprintln(r.out, faintStyle.Sprintf("%d proposals, %d actionable", result.Summary.Total, result.Summary.Actionable))
	return nil
}

func (r *ProposalsRenderer) renderHeader(result *usecase.ProposalListResult) {
	dao := result.DAO
	fmt.Fprintf(r.out, "%s %s\n", headerStyle.Sprint(dao.Name), faintStyle.Sprintf("(%s, chain %d)", dao.Network, dao.ChainID))
	fmt.Fprintf(r.out, "  Safe:  %s\n", addressStyle.Sprint(dao.Safe))
	if info := result.SafeInfo; info != nil {
		fmt.Fprintf(r.out, "  Nonce: %d   Threshold: %d of %d\n", result.SafeNonce, info.Threshold, len(info.Owners))
	}
	if dao.HasFreezeGuard() {
		if g := result.FreezeGuard; g != nil {
			fmt.Fprintf(r.out, "  Guard: %s   timelock %s, execution %s\n",
				addressStyle.Sprint(dao.FreezeGuard), formatDuration(g.TimelockPeriod), formatDuration(g.ExecutionPeriod))
		} else {
			fmt.Fprintf(r.out, "  Guard: %s   %s\n", addressStyle.Sprint(dao.FreezeGuard), faintStyle.Sprint("not loaded"))
		}
	}
	fmt.Fprintln(r.out)
}

// proposalTable lays out one row per proposal, plus one per attached rejection
func proposalTable(entries []usecase.ProposalEntry) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateRows = false
	t.Style().Box.PaddingRight = "  "
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, WidthMax: 40},
	})

	t.AppendHeader(table.Row{"#", "ID", "Title", "State", "Signatures", "Value", "Action"})
	for _, e := range entries {
		t.AppendRow(proposalRow(e.Proposal, e.Action, ""))
		if m := e.Proposal.Multisig; m != nil && m.Rejection != nil && e.RejectionAction != nil {
			t.AppendRow(proposalRow(m.Rejection, *e.RejectionAction, rejectionStyle.Sprint("↳ ")))
		}
	}
	return t.Render()
}

func proposalRow(p *models.Proposal, action models.ExecutionAction, prefix string) table.Row {
	number := ""
	signatures := ""
	value := ""
	switch p.Kind {
	case models.ProposalKindMultisig:
		number = fmt.Sprintf("%d", p.Multisig.Nonce)
		signatures = fmt.Sprintf("%d/%d", len(p.Multisig.Confirmations), p.Multisig.SignersThreshold)
		value = FormatEther(p.Multisig.Transaction.Value)
	case models.ProposalKindAzorius:
		number = "A" + p.ID
		if v := p.Azorius.Votes; v.Yes != nil && v.No != nil {
			signatures = fmt.Sprintf("%s yes / %s no", v.Yes, v.No)
		}
	case models.ProposalKindModule:
		value = FormatEther(p.Module.Transaction.Value)
	}

	title := p.Title
	if title == "" {
		title = Title(string(p.Kind))
	}

	return table.Row{
		number,
		prefix + ShortHash(p.ID),
		title,
		StateLabel(p.State),
		signatures,
		value,
		ActionLabel(action),
	}
}

// RenderProposal renders the details of one proposal
func (r *ProposalsRenderer) RenderProposal(dao *models.DAO, entry *usecase.ProposalEntry) error {
	p := entry.Proposal
	fmt.Fprintf(r.out, "%s %s\n", headerStyle.Sprint(displayTitle(p)), StateLabel(p.State))
	fmt.Fprintf(r.out, "  DAO:     %s\n", dao.Name)
	fmt.Fprintf(r.out, "  Kind:    %s\n", Title(string(p.Kind)))
	fmt.Fprintf(r.out, "  ID:      %s\n", p.ID)
	if !p.CreatedAt.IsZero() {
		fmt.Fprintf(r.out, "  Created: %s\n", p.CreatedAt.Format(time.RFC3339))
	}
	if p.Proposer != "" {
		fmt.Fprintf(r.out, "  By:      %s\n", addressStyle.Sprint(p.Proposer))
	}

	switch p.Kind {
	case models.ProposalKindMultisig:
		r.renderMultisig(p.Multisig)
	case models.ProposalKindAzorius:
		r.renderAzorius(p.Azorius)
	case models.ProposalKindModule:
		fmt.Fprintf(r.out, "  Module:  %s\n", p.Module.Module)
		renderTx(r.out, p.Module.Transaction)
	}

	if entry.Action.Visible() {
		fmt.Fprintf(r.out, "\n  Action:  %s", ActionLabel(entry.Action))
		if entry.Action.Reason != "" {
			fmt.Fprintf(r.out, " %s", faintStyle.Sprintf("(%s)", entry.Action.Reason))
		}
		fmt.Fprintln(r.out)
	}

	if m := p.Multisig; m != nil && m.Rejection != nil {
		fmt.Fprintf(r.out, "\n  %s %s %s\n", rejectionStyle.Sprint("Rejection:"), m.Rejection.ID, StateLabel(m.Rejection.State))
		fmt.Fprintf(r.out, "    Signatures: %d/%d\n", len(m.Rejection.Multisig.Confirmations), m.Rejection.Multisig.SignersThreshold)
		if entry.RejectionAction != nil && entry.RejectionAction.Visible() {
			fmt.Fprintf(r.out, "    Action: %s\n", ActionLabel(*entry.RejectionAction))
		}
	}
	return nil
}

func (r *ProposalsRenderer) renderMultisig(m *models.MultisigPayload) {
	fmt.Fprintf(r.out, "  Nonce:   %d\n", m.Nonce)
	renderTx(r.out, m.Transaction)
	fmt.Fprintf(r.out, "  Signatures (%d/%d):\n", len(m.Confirmations), m.SignersThreshold)
	for _, c := range m.Confirmations {
		fmt.Fprintf(r.out, "    ✓ %s\n", addressStyle.Sprint(c.Signer))
	}
	if m.TimelockedAt != nil && !m.TimelockedAt.IsZero() {
		fmt.Fprintf(r.out, "  Timelocked: %s\n", m.TimelockedAt.Format(time.RFC3339))
	}
	if m.ExecutionTxHash != "" {
		fmt.Fprintf(r.out, "  Executed in: %s\n", m.ExecutionTxHash)
	}
}

func (r *ProposalsRenderer) renderAzorius(a *models.AzoriusPayload) {
	fmt.Fprintf(r.out, "  Voting:  blocks %d to %d\n", a.StartBlock, a.EndBlock)
	if v := a.Votes; v.Yes != nil {
		fmt.Fprintf(r.out, "  Votes:   %s yes, %s no, %s abstain\n", v.Yes, v.No, v.Abstain)
	}
	for i, tx := range a.Transactions {
		fmt.Fprintf(r.out, "  Transaction %d:\n", i+1)
		renderTx(r.out, tx)
	}
}

func renderTx(out io.Writer, tx models.SafeTxData) {
	fmt.Fprintf(out, "  To:      %s\n", addressStyle.Sprint(tx.To))
	fmt.Fprintf(out, "  Value:   %s\n", FormatEther(tx.Value))
	if tx.Data != "" && tx.Data != "0x" {
		data := tx.Data
		if len(data) > 74 {
			data = data[:74] + "…"
		}
		fmt.Fprintf(out, "  Data:    %s\n", faintStyle.Sprint(data))
	}
	if tx.Operation == models.OperationDelegateCall {
		fmt.Fprintf(out, "  Operation: %s\n", color.RedString("delegatecall"))
	}
}

func displayTitle(p *models.Proposal) string {
	if p.Title != "" {
		return p.Title
	}
	return Title(string(p.Kind)) + " proposal"
}

func formatDuration(d time.Duration) string {
	s := d.String()
	if strings.HasSuffix(s, "m0s") {
		s = strings.TrimSuffix(s, "0s")
	}
	if strings.HasSuffix(s, "h0m") {
		s = strings.TrimSuffix(s, "0m")
	}
	return s
}
