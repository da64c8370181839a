package usecase

import (
	"context"

	"github.com/gnosisguild/mech-go/internal/domain"
)

// DeployMastercopyParams contains parameters for deploying singletons
type DeployMastercopyParams struct {
	// Variants to deploy; empty means all of them
	Variants []domain.MechVariant
	// Factory also deploys the mech factory singleton
	Factory bool
	// FactoryOnly deploys the mech factory and no mastercopy
	FactoryOnly bool
	DryRun      bool
}

// DeployMastercopyResult contains one result per singleton, in deployment order
type DeployMastercopyResult struct {
	Deployments []*DeployResult
}

// DeployMastercopy deploys mastercopies (and optionally the mech factory) through
// the ERC-2470 singleton factory. Calling it twice is a no-op the second time.
type DeployMastercopy struct {
	planner  *Planner
	progress ProgressSink
}

// NewDeployMastercopy creates a new DeployMastercopy use case
func NewDeployMastercopy(planner *Planner, progress ProgressSink) *DeployMastercopy {
	return &DeployMastercopy{
		planner:  planner,
		progress: progress,
	}
}

// Run executes the use case, stopping at the first failure
func (uc *DeployMastercopy) Run(ctx context.Context, params DeployMastercopyParams) (*DeployMastercopyResult, error) {
	variants := params.Variants
	if len(variants) == 0 {
		variants = domain.AllVariants
	}

	result := &DeployMastercopyResult{}

	if params.FactoryOnly {
		variants = nil
	}

	if params.Factory || params.FactoryOnly {
		d, err := uc.planner.PlanMechFactory()
		if err != nil {
			return result, err
		}
		r, err := runDeployment(ctx, uc.planner, d, params.DryRun)
		if r != nil {
			result.Deployments = append(result.Deployments, r)
		}
		if err != nil {
			return result, err
		}
	}

	for _, v := range variants {
		d, err := uc.planner.PlanMastercopy(v)
		if err != nil {
			return result, err
		}
		r, err := runDeployment(ctx, uc.planner, d, params.DryRun)
		if r != nil {
			result.Deployments = append(result.Deployments, r)
		}
		if err != nil {
			return result, err
		}
		if r.AlreadyDeployed {
			uc.progress.Info(d.Name() + " already deployed at " + d.Address.Hex())
		}
	}

	return result, nil
}
