package app

import (
	"log/slog"

	"github.com/gnosisguild/mech-go/internal/adapters/blockchain"
	"github.com/gnosisguild/mech-go/internal/domain/config"
	"github.com/gnosisguild/mech-go/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Shared dependencies
	Selector usecase.VariantSelector

	// Use cases
	PredictAddress   *usecase.PredictAddress
	DeployMech       *usecase.DeployMech
	DeployMastercopy *usecase.DeployMastercopy
	BootstrapFactory *usecase.BootstrapSingletonFactory
	InspectMechs     *usecase.InspectMechs
	VerifySignature  *usecase.VerifyMechSignature
	ListNetworks     *usecase.ListNetworks

	closer func()
}

// newApp creates a new application instance with all use cases
func newApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	selector usecase.VariantSelector,
	predictAddress *usecase.PredictAddress,
	deployMech *usecase.DeployMech,
	deployMastercopy *usecase.DeployMastercopy,
	bootstrapFactory *usecase.BootstrapSingletonFactory,
	inspectMechs *usecase.InspectMechs,
	verifySignature *usecase.VerifyMechSignature,
	listNetworks *usecase.ListNetworks,
	client *blockchain.Client,
) *App {
	return &App{
		Config:           cfg,
		Log:              log,
		Selector:         selector,
		PredictAddress:   predictAddress,
		DeployMech:       deployMech,
		DeployMastercopy: deployMastercopy,
		BootstrapFactory: bootstrapFactory,
		InspectMechs:     inspectMechs,
		VerifySignature:  verifySignature,
		ListNetworks:     listNetworks,
		closer:           client.Close,
	}
}

// Close releases the RPC connection, if one was opened
func (a *App) Close() {
	if a.closer != nil {
		a.closer()
	}
}
