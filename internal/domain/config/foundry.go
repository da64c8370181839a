package config

// FoundryConfig represents the parts of foundry.toml mech reads
type FoundryConfig struct {
	Profile      map[string]ProfileConfig `toml:"profile"`
	RpcEndpoints map[string]string        `toml:"rpc_endpoints"`
}

// ProfileConfig represents a profile's foundry configuration
type ProfileConfig struct {
	SrcPath string `toml:"src,omitempty"`
	OutPath string `toml:"out,omitempty"`
}

// MechConfig represents mech.toml
type MechConfig struct {
	// ArtifactsDir overrides the Foundry out directory
	ArtifactsDir string `toml:"artifacts_dir,omitempty"`

	SupportedChainIDs []uint64 `toml:"supported_chain_ids,omitempty"`

	Addresses AddressOverrides `toml:"addresses"`

	SingletonFactory struct {
		// RawDeployTx is the hex of the pre-signed ERC-2470 deployment transaction
		RawDeployTx     string `toml:"raw_deploy_tx,omitempty"`
		DeployerFunding string `toml:"deployer_funding,omitempty"`
	} `toml:"singleton_factory"`
}

// AddressOverrides replaces well-known addresses, mainly for local devnets
type AddressOverrides struct {
	SingletonFactory   string `toml:"singleton_factory,omitempty"`
	SingletonDeployer  string `toml:"singleton_deployer,omitempty"`
	ModuleProxyFactory string `toml:"module_proxy_factory,omitempty"`
	ERC6551Registry    string `toml:"erc6551_registry,omitempty"`
	MechFactory        string `toml:"mech_factory,omitempty"`
}
