package config

// GovFileConfig represents the raw treb-gov.toml file
type GovFileConfig struct {
	Networks map[string]NetworkFileConfig `toml:"networks"`
	DAOs     map[string]DAOFileConfig     `toml:"daos"`
}

// NetworkFileConfig is a [networks.<name>] table
type NetworkFileConfig struct {
	ChainID        uint64 `toml:"chain_id"`
	RPCURL         string `toml:"rpc_url,omitempty"`
	SafeServiceURL string `toml:"safe_service_url,omitempty"`
}

// DAOFileConfig is a [daos.<name>] table
type DAOFileConfig struct {
	Network           string `toml:"network"`
	Safe              string `toml:"safe"`
	FreezeGuard       string `toml:"freeze_guard,omitempty"`
	FreezeVoting      string `toml:"freeze_voting,omitempty"`
	Azorius           string `toml:"azorius,omitempty"`
	Strategy          string `toml:"strategy,omitempty"`
	AzoriusStartBlock uint64 `toml:"azorius_start_block,omitempty"`
}
