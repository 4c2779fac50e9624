package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// GovFileName is the project configuration file searched for from the working directory upwards
const GovFileName = "treb-gov.toml"

// loadEnvFiles loads .env files from the project root for variable expansion
func loadEnvFiles(projectRoot string) {
	envFiles := []string{
		filepath.Join(projectRoot, ".env"),
		filepath.Join(projectRoot, ".env.local"),
	}

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				// Log warning but don't fail
				fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
			}
		}
	}
}

// loadGovFile loads and parses treb-gov.toml, expanding ${VAR} references.
// Returns an empty config when the file does not exist.
func loadGovFile(projectRoot string) (*config.GovFileConfig, error) {
	path := filepath.Join(projectRoot, GovFileName)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &config.GovFileConfig{}, nil
	}

	var cfg config.GovFileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", GovFileName, err)
	}

	for name, network := range cfg.Networks {
		network.RPCURL = os.ExpandEnv(network.RPCURL)
		network.SafeServiceURL = os.ExpandEnv(network.SafeServiceURL)
		cfg.Networks[name] = network
	}

	for name, dao := range cfg.DAOs {
		dao.Safe = os.ExpandEnv(dao.Safe)
		dao.FreezeGuard = os.ExpandEnv(dao.FreezeGuard)
		dao.FreezeVoting = os.ExpandEnv(dao.FreezeVoting)
		dao.Azorius = os.ExpandEnv(dao.Azorius)
		dao.Strategy = os.ExpandEnv(dao.Strategy)
		cfg.DAOs[name] = dao
	}

	return &cfg, nil
}

// resolveNetworks converts network tables into runtime networks
func resolveNetworks(file *config.GovFileConfig) (map[string]*config.Network, error) {
	networks := make(map[string]*config.Network, len(file.Networks))
	for name, n := range file.Networks {
		if n.ChainID == 0 {
			return nil, fmt.Errorf("network '%s': %w: chain_id is required", name, domain.ErrInvalidChainID)
		}
		networks[name] = &config.Network{
			Name:           name,
			ChainID:        n.ChainID,
			RPCURL:         n.RPCURL,
			SafeServiceURL: strings.TrimRight(n.SafeServiceURL, "/"),
		}
	}
	return networks, nil
}

// resolveDAOs validates DAO tables against the known networks
func resolveDAOs(file *config.GovFileConfig, networks map[string]*config.Network) (map[string]*models.DAO, error) {
	daos := make(map[string]*models.DAO, len(file.DAOs))
	for name, d := range file.DAOs {
		network, ok := networks[d.Network]
		if !ok {
			return nil, fmt.Errorf("dao '%s': network '%s' not found in [networks]", name, d.Network)
		}
		if !common.IsHexAddress(d.Safe) {
			return nil, fmt.Errorf("dao '%s': safe %q: %w", name, d.Safe, domain.ErrInvalidAddress)
		}
		for field, addr := range map[string]string{
			"freeze_guard":  d.FreezeGuard,
			"freeze_voting": d.FreezeVoting,
			"azorius":       d.Azorius,
			"strategy":      d.Strategy,
		} {
			if addr != "" && !common.IsHexAddress(addr) {
				return nil, fmt.Errorf("dao '%s': %s %q: %w", name, field, addr, domain.ErrInvalidAddress)
			}
		}
		if d.Azorius != "" && d.Strategy == "" {
			return nil, fmt.Errorf("dao '%s': azorius requires a voting strategy", name)
		}

		daos[name] = &models.DAO{
			Name:              name,
			Key:               models.NewDAOKey(network.ChainID, d.Safe),
			Network:           d.Network,
			ChainID:           network.ChainID,
			Safe:              common.HexToAddress(d.Safe).Hex(),
			FreezeGuard:       checksum(d.FreezeGuard),
			FreezeVoting:      checksum(d.FreezeVoting),
			Azorius:           checksum(d.Azorius),
			Strategy:          checksum(d.Strategy),
			AzoriusStartBlock: d.AzoriusStartBlock,
		}
	}
	return daos, nil
}

func checksum(addr string) string {
	if addr == "" {
		return ""
	}
	return common.HexToAddress(addr).Hex()
}
