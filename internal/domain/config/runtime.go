package config

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot  string
	ArtifactsDir string

	// Network is nil when no --network/--rpc-url was given
	Network *Network

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool
	Timeout        time.Duration

	// PrivateKey signs deployment transactions, hex without 0x
	PrivateKey string

	// Protocol settings
	Addresses         Addresses
	SupportedChainIDs []uint64
	SingletonFactory  SingletonFactoryConfig

	// Resolved configurations
	FoundryConfig *FoundryConfig
	MechConfig    *MechConfig
}

// Network represents network configuration
type Network struct {
	ChainID uint64 `json:"chainId"`
	Name    string `json:"name"`
	RPCURL  string `json:"rpcUrl"`
}

// Addresses holds the well-known protocol addresses every component derives against.
// It is immutable for the lifetime of the process; tests build their own.
type Addresses struct {
	SingletonFactory   common.Address
	SingletonDeployer  common.Address
	ModuleProxyFactory common.Address
	ERC6551Registry    common.Address
	// MechFactory is derived from its artifact when zero
	MechFactory     common.Address
	Zero            common.Address
	SentinelModules common.Address
}

// DefaultAddresses returns the canonical mainnet-equivalent addresses
func DefaultAddresses() Addresses {
	return Addresses{
		SingletonFactory:   common.HexToAddress("0xce0042B868300000d44A59004Da54A005ffdcf9f"),
		SingletonDeployer:  common.HexToAddress("0xBb6e024b9cFFACB947A71991E386681B1Cd1477D"),
		ModuleProxyFactory: common.HexToAddress("0x000000000000aDdB49795b0f9bA5BC298cDda236"),
		ERC6551Registry:    common.HexToAddress("0x000000006551c19487814612e58FE06813775758"),
		Zero:               common.Address{},
		SentinelModules:    common.HexToAddress("0x0000000000000000000000000000000000000001"),
	}
}

// SingletonFactoryConfig describes the ERC-2470 bootstrap on a fresh chain
type SingletonFactoryConfig struct {
	// RawDeployTx is the pre-signed, chain-agnostic deployment transaction
	RawDeployTx []byte
	// DeployerFunding is what the deployer account needs to pay for RawDeployTx
	DeployerFunding *big.Int
}

// DefaultDeployerFunding is 247000 gas at 100 gwei
var DefaultDeployerFunding = new(big.Int).Mul(big.NewInt(247_000), big.NewInt(100_000_000_000))

// singletonFactoryDeployTx is the keyless EIP-2470 deployment. Its fixed
// signature recovers to the singleton deployer, whose first contract is the factory.
const singletonFactoryDeployTx = "0xf9016c8085174876e8008303c4d88080b90154608060405234801561001057600080fd5b5061013480610020600039" +
	"6000f3fe6080604052348015600f57600080fd5b506004361060285760003560e01c80634af63f0214602d575b600080" +
	"fd5b60cf60048036036040811015604157600080fd5b810190602081018135640100000000811115605b57600080fd5b" +
	"820183602082011115606c57600080fd5b80359060200191846001830284011164010000000083111715608d57600080" +
	"fd5b91908080601f01602080910402602001604051908101604052809392919081815260200183838082843760009201" +
	"9190915250929550509135925060eb915050565b604080516001600160a01b039092168252519081900360200190f35b" +
	"6000818351602085016000f5939250505056fea26469706673582212206b44f8a82cb6b156bfcc3dc6aadd6df4eefd20" +
	"4bc928a4397fd15dacf6d5320564736f6c634300060200331b83247000822470"

// DefaultSingletonFactoryDeployTx returns the EIP-2470 raw deployment transaction
func DefaultSingletonFactoryDeployTx() []byte {
	return hexutil.MustDecode(singletonFactoryDeployTx)
}

// IsSupported reports whether chainID is in the allow-list.
// An empty allow-list (the default without supported_chain_ids) accepts every chain.
func (c *RuntimeConfig) IsSupported(chainID uint64) bool {
	if len(c.SupportedChainIDs) == 0 {
		return true
	}
	for _, id := range c.SupportedChainIDs {
		if id == chainID {
			return true
		}
	}
	return false
}
