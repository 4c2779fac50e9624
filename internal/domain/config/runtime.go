package config

import (
	"time"

	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string

	// Context settings
	DAOName string // default DAO reference, may be empty

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool
	Output         string // table, json or yaml
	Timeout        time.Duration
	PollInterval   time.Duration
	ListenAddr     string

	// Secrets, only ever read from the environment
	PrivateKey string
	SafeAPIKey string

	// Resolved configurations
	Networks map[string]*Network
	DAOs     map[string]*models.DAO
}

// Network represents network configuration
type Network struct {
	ChainID        uint64 `json:"chainId"`
	Name           string `json:"name"`
	RPCURL         string `json:"rpcUrl,omitempty"`
	SafeServiceURL string `json:"safeServiceUrl,omitempty"`
}

// NetworkFor returns the network a DAO lives on
func (c *RuntimeConfig) NetworkFor(dao *models.DAO) (*Network, bool) {
	if dao == nil {
		return nil, false
	}
	n, ok := c.Networks[dao.Network]
	return n, ok
}

// HasWallet reports whether a signing key is configured
func (c *RuntimeConfig) HasWallet() bool {
	return c.PrivateKey != ""
}
