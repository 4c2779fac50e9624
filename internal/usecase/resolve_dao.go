package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// ListDAOs returns the configured DAOs
type ListDAOs struct {
	config *config.RuntimeConfig
}

// NewListDAOs creates a new ListDAOs use case
func NewListDAOs(cfg *config.RuntimeConfig) *ListDAOs {
	return &ListDAOs{config: cfg}
}

// Run returns every configured DAO sorted by name
func (uc *ListDAOs) Run(ctx context.Context) []*models.DAO {
	daos := make([]*models.DAO, 0, len(uc.config.DAOs))
	for _, dao := range uc.config.DAOs {
		daos = append(daos, dao)
	}
	sort.Slice(daos, func(i, j int) bool { return daos[i].Name < daos[j].Name })
	return daos
}

// ResolveDAO turns a user reference into a configured DAO
type ResolveDAO struct {
	config   *config.RuntimeConfig
	list     *ListDAOs
	selector InteractiveSelector
}

// NewResolveDAO creates a new ResolveDAO use case
func NewResolveDAO(cfg *config.RuntimeConfig, list *ListDAOs, selector InteractiveSelector) *ResolveDAO {
	return &ResolveDAO{config: cfg, list: list, selector: selector}
}

// Run resolves a name, DAO key, Safe address or fuzzy name fragment. An empty
// query falls back to the configured default and then to interactive selection.
func (uc *ResolveDAO) Run(ctx context.Context, query string) (*models.DAO, error) {
	daos := uc.list.Run(ctx)
	if len(daos) == 0 {
		return nil, fmt.Errorf("%w: no DAOs configured in treb-gov.toml", domain.ErrNotFound)
	}

	if query == "" {
		query = uc.config.DAOName
	}
	if query == "" {
		if len(daos) == 1 {
			return daos[0], nil
		}
		if uc.config.NonInteractive {
			return nil, fmt.Errorf("several DAOs configured, select one with --dao")
		}
		return uc.selector.SelectDAO(ctx, daos, "Select a DAO")
	}

	matches := matchDAOs(daos, query)
	switch len(matches) {
	case 0:
		return nil, domain.NoDAOsMatchErr{Query: query}
	case 1:
		return matches[0], nil
	}

	if uc.config.NonInteractive {
		return nil, domain.AmbiguousDAOError{Query: query, Matches: matches}
	}
	return uc.selector.SelectDAO(ctx, matches, fmt.Sprintf("Several DAOs match %q", query))
}

// matchDAOs tries exact name, key and address matches before fuzzy matching names
func matchDAOs(daos []*models.DAO, query string) []*models.DAO {
	for _, dao := range daos {
		if strings.EqualFold(dao.Name, query) || string(dao.Key) == query {
			return []*models.DAO{dao}
		}
	}

	if common.IsHexAddress(query) {
		addr := common.HexToAddress(query)
		var matches []*models.DAO
		for _, dao := range daos {
			if common.HexToAddress(dao.Safe) == addr {
				matches = append(matches, dao)
			}
		}
		return matches
	}

	names := make([]string, len(daos))
	for i, dao := range daos {
		names[i] = strings.ToLower(dao.Name)
	}

	var matches []*models.DAO
	for _, m := range fuzzy.Find(strings.ToLower(query), names) {
		matches = append(matches, daos[m.Index])
	}
	return matches
}
