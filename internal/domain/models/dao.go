package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// DAOKey identifies a DAO by chain and Safe address, formatted "<chainId>:<address>"
type DAOKey string

// NewDAOKey builds the key for a Safe on a chain
func NewDAOKey(chainID uint64, safe string) DAOKey {
	return DAOKey(fmt.Sprintf("%d:%s", chainID, common.HexToAddress(safe).Hex()))
}

// Parse splits the key into its chain id and Safe address
func (k DAOKey) Parse() (uint64, common.Address, error) {
	chain, addr, ok := strings.Cut(string(k), ":")
	if !ok {
		return 0, common.Address{}, fmt.Errorf("malformed DAO key %q", k)
	}
	chainID, err := strconv.ParseUint(chain, 10, 64)
	if err != nil {
		return 0, common.Address{}, fmt.Errorf("malformed chain id in DAO key %q: %w", k, err)
	}
	if !common.IsHexAddress(addr) {
		return 0, common.Address{}, fmt.Errorf("malformed address in DAO key %q", k)
	}
	return chainID, common.HexToAddress(addr), nil
}

// DAO is a configured Safe and the governance contracts attached to it
type DAO struct {
	Name    string `json:"name" yaml:"name"`
	Key     DAOKey `json:"key" yaml:"key"`
	Network string `json:"network" yaml:"network"`
	ChainID uint64 `json:"chainId" yaml:"chainId"`
	Safe    string `json:"safe" yaml:"safe"`

	FreezeGuard  string `json:"freezeGuard,omitempty" yaml:"freezeGuard,omitempty"`
	FreezeVoting string `json:"freezeVoting,omitempty" yaml:"freezeVoting,omitempty"`
	Azorius      string `json:"azorius,omitempty" yaml:"azorius,omitempty"`
	Strategy     string `json:"strategy,omitempty" yaml:"strategy,omitempty"`

	AzoriusStartBlock uint64 `json:"azoriusStartBlock,omitempty" yaml:"azoriusStartBlock,omitempty"`
}

// HasFreezeGuard reports whether a freeze guard is attached
func (d *DAO) HasFreezeGuard() bool {
	return d.FreezeGuard != ""
}

// HasAzorius reports whether the DAO uses token voting
func (d *DAO) HasAzorius() bool {
	return d.Azorius != ""
}

// DAOState is everything fetched for one DAO during a refresh
type DAOState struct {
	DAO         *DAO         `json:"dao" yaml:"dao"`
	SafeInfo    *SafeInfo    `json:"safeInfo,omitempty" yaml:"safeInfo,omitempty"`
	FreezeGuard *FreezeGuard `json:"freezeGuard,omitempty" yaml:"freezeGuard,omitempty"`
	Proposals   []*Proposal  `json:"proposals" yaml:"proposals"`
	UpdatedAt   time.Time    `json:"updatedAt" yaml:"updatedAt"`
}
