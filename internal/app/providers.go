package app

import (
	"github.com/google/wire"
	"github.com/gnosisguild/mech-go/internal/adapters/artifacts"
	"github.com/gnosisguild/mech-go/internal/adapters/blockchain"
	"github.com/gnosisguild/mech-go/internal/adapters/interactive"
	internalconfig "github.com/gnosisguild/mech-go/internal/config"
	"github.com/gnosisguild/mech-go/internal/derive"
	"github.com/gnosisguild/mech-go/internal/domain/config"
	"github.com/gnosisguild/mech-go/internal/logging"
	"github.com/gnosisguild/mech-go/internal/usecase"
)

// ProvideAddresses extracts the protocol addresses from RuntimeConfig
func ProvideAddresses(cfg *config.RuntimeConfig) config.Addresses {
	return cfg.Addresses
}

// ProvideFoundryConfig extracts the parsed foundry.toml from RuntimeConfig
func ProvideFoundryConfig(cfg *config.RuntimeConfig) *config.FoundryConfig {
	return cfg.FoundryConfig
}

// ConfigSet resolves configuration from viper
var ConfigSet = wire.NewSet(
	internalconfig.Provider,
	ProvideAddresses,
	ProvideFoundryConfig,
	logging.LoggingSet,
)

// AdapterSet provides the artifact, chain and network adapters
var AdapterSet = wire.NewSet(
	artifacts.NewFoundryArtifacts,
	wire.Bind(new(derive.ArtifactSource), new(*artifacts.FoundryArtifacts)),

	blockchain.NewClient,
	wire.Bind(new(usecase.ChainClient), new(*blockchain.Client)),

	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.VariantSelector), new(*interactive.SelectorAdapter)),

	internalconfig.NewNetworkResolver,
	wire.Bind(new(usecase.NetworkResolver), new(*internalconfig.NetworkResolver)),
)

// UseCaseSet provides every use case
var UseCaseSet = wire.NewSet(
	derive.NewDeriver,
	usecase.NewPlanner,
	usecase.NewPredictAddress,
	usecase.NewDeployMech,
	usecase.NewDeployMastercopy,
	usecase.NewBootstrapSingletonFactory,
	usecase.NewInspectMechs,
	usecase.NewVerifyMechSignature,
	usecase.NewListNetworks,
)
