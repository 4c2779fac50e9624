package interactive

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// SelectorAdapter handles interactive selection
type SelectorAdapter struct {
	config *config.RuntimeConfig
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{config: cfg}
}

// SelectDAO selects a DAO from a list
func (s *SelectorAdapter) SelectDAO(ctx context.Context, daos []*models.DAO, prompt string) (*models.DAO, error) {
	if len(daos) == 0 {
		return nil, fmt.Errorf("no DAOs provided for selection")
	}
	if len(daos) == 1 {
		return daos[0], nil
	}

	options := make([]string, len(daos))
	for i, dao := range daos {
		options[i] = fmt.Sprintf("%s %s",
			color.New(color.FgWhite, color.Bold).Sprint(dao.Name),
			color.New(color.FgBlue).Sprintf("(%s on %s)", dao.Safe, dao.Network))
	}

	index, err := s.run(prompt, options)
	if err != nil {
		return nil, err
	}
	return daos[index], nil
}

// SelectProposal selects a proposal from a listing
func (s *SelectorAdapter) SelectProposal(ctx context.Context, entries []usecase.ProposalEntry, prompt string) (*usecase.ProposalEntry, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no proposals provided for selection")
	}
	if len(entries) == 1 {
		return &entries[0], nil
	}

	index, err := s.run(prompt, formatProposalOptions(entries))
	if err != nil {
		return nil, err
	}
	return &entries[index], nil
}

func (s *SelectorAdapter) run(prompt string, options []string) (int, error) {
	// In non-interactive mode, we can't select
	if s.config.NonInteractive {
		return 0, fmt.Errorf("interactive selection not available in non-interactive mode")
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:             prompt,
		Items:             options,
		Templates:         templates,
		Size:              10,
		StartInSearchMode: true,
		Searcher:          createFuzzySearchFunc(options),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return 0, fmt.Errorf("selection cancelled: %w", err)
	}
	return index, nil
}

// formatProposalOptions creates display strings for proposal selection
func formatProposalOptions(entries []usecase.ProposalEntry) []string {
	options := make([]string, len(entries))
	for i, entry := range entries {
		p := entry.Proposal

		label := p.ID
		if nonce, ok := p.Nonce(); ok {
			label = fmt.Sprintf("#%d %s", nonce, shortHash(p.ID))
		} else if p.Kind == models.ProposalKindAzorius {
			label = "#" + p.ID
		}

		parts := []string{
			color.New(color.FgWhite, color.Bold).Sprint(label),
			p.Title,
			color.New(color.FgYellow).Sprintf("[%s]", p.State),
		}
		if entry.Action.Visible() {
			parts = append(parts, color.New(color.FgCyan).Sprintf("→ %s", entry.Action.Kind))
		}
		options[i] = strings.Join(parts, " ")
	}
	return options
}

func shortHash(h string) string {
	if len(h) <= 12 {
		return h
	}
	return h[:8] + "…" + h[len(h)-4:]
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		// Empty search shows all items
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		if strings.Contains(item, input) {
			return true
		}

		pattern := fuzzy.Find(input, []string{item})
		return len(pattern) > 0
	}
}

// Ensure the adapter implements the interface
var _ usecase.InteractiveSelector = (*SelectorAdapter)(nil)
