package usecase

import (
	"context"
	"errors"

	"github.com/gnosisguild/mech-go/internal/domain"
	"github.com/gnosisguild/mech-go/internal/domain/models"
)

// DeployMechParams contains parameters for deploying a mech
type DeployMechParams struct {
	Context domain.DeployContext
	// DryRun stops after the pre-flight checks
	DryRun bool
}

// DeployResult contains the outcome of one deployment
type DeployResult struct {
	Deployment      *models.Deployment
	AlreadyDeployed bool
}

// DeployMech deploys a mech proxy, never its mastercopy
type DeployMech struct {
	planner  *Planner
	progress ProgressSink
}

// NewDeployMech creates a new DeployMech use case
func NewDeployMech(planner *Planner, progress ProgressSink) *DeployMech {
	return &DeployMech{
		planner:  planner,
		progress: progress,
	}
}

// Run executes the use case. AlreadyDeployed is reported through the result,
// not as an error.
func (uc *DeployMech) Run(ctx context.Context, params DeployMechParams) (*DeployResult, error) {
	d, err := uc.planner.PlanMech(params.Context)
	if err != nil {
		return nil, err
	}
	return runDeployment(ctx, uc.planner, d, params.DryRun)
}

// runDeployment is shared by the mech, mastercopy and factory deployments
func runDeployment(ctx context.Context, planner *Planner, d *models.Deployment, dryRun bool) (*DeployResult, error) {
	result := &DeployResult{Deployment: d}

	var err error
	if dryRun {
		err = planner.Check(ctx, d)
	} else {
		err = planner.Execute(ctx, d)
	}
	if errors.Is(err, domain.ErrAlreadyDeployed) {
		result.AlreadyDeployed = true
		return result, nil
	}
	if err != nil {
		return result, err
	}
	return result, nil
}
