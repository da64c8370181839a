package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/gnosisguild/mech-go/internal/domain"
	"github.com/gnosisguild/mech-go/internal/domain/config"
	"github.com/gnosisguild/mech-go/internal/domain/models"
)

// BootstrapSingletonFactoryResult contains the result of the ERC-2470 bootstrap
type BootstrapSingletonFactoryResult struct {
	Deployment      *models.Deployment
	Funding         *models.Transaction
	AlreadyDeployed bool
}

// BootstrapSingletonFactory puts the ERC-2470 singleton factory on a fresh chain:
// fund the well-known deployer, broadcast the pre-signed deployment and verify
// code landed at the well-known address.
type BootstrapSingletonFactory struct {
	planner  *Planner
	client   ChainClient
	cfg      *config.RuntimeConfig
	progress ProgressSink
}

// NewBootstrapSingletonFactory creates a new BootstrapSingletonFactory use case
func NewBootstrapSingletonFactory(
	planner *Planner,
	client ChainClient,
	cfg *config.RuntimeConfig,
	progress ProgressSink,
) *BootstrapSingletonFactory {
	return &BootstrapSingletonFactory{
		planner:  planner,
		client:   client,
		cfg:      cfg,
		progress: progress,
	}
}

// Run executes the use case
func (uc *BootstrapSingletonFactory) Run(ctx context.Context) (*BootstrapSingletonFactoryResult, error) {
	addrs := uc.planner.Deriver().Addresses()
	factory := addrs.SingletonFactory

	d := &models.Deployment{
		Type:     models.FactoryDeployment,
		Contract: "SingletonFactory",
		State:    models.StatePlanned,
		Address:  factory,
		Factory:  addrs.SingletonDeployer,
	}
	result := &BootstrapSingletonFactoryResult{Deployment: d}

	uc.progress.OnProgress(ctx, ProgressEvent{Stage: StageChecking, Message: "Checking singleton factory", Spinner: true})
	if _, err := uc.planner.CheckNetwork(ctx); err != nil {
		return result, d.Reject(err)
	}
	deployed, err := uc.planner.hasCode(ctx, factory)
	if err != nil {
		return result, d.Reject(err)
	}
	if deployed {
		result.AlreadyDeployed = true
		_ = d.Reject(domain.AlreadyDeployedErr{Address: factory})
		return result, nil
	}

	raw := uc.cfg.SingletonFactory.RawDeployTx
	if len(raw) == 0 {
		raw = config.DefaultSingletonFactoryDeployTx()
	}
	if err := d.Transition(models.StateChecked); err != nil {
		return result, err
	}

	funding := uc.cfg.SingletonFactory.DeployerFunding
	if funding == nil {
		funding = config.DefaultDeployerFunding
	}
	shortfall, err := uc.planner.fundingShortfall(ctx, addrs.SingletonDeployer, funding)
	if err != nil {
		return result, d.Reject(err)
	}
	if shortfall != nil {
		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:   StageFunding,
			Message: fmt.Sprintf("Funding deployer %s with %s wei", addrs.SingletonDeployer.Hex(), shortfall),
			Spinner: true,
		})
		result.Funding = models.NewTransaction(addrs.SingletonDeployer, nil, shortfall)
		if err := uc.send(ctx, result.Funding); err != nil {
			return result, d.Reject(fmt.Errorf("failed to fund singleton deployer: %w", err))
		}
	}

	uc.progress.OnProgress(ctx, ProgressEvent{Stage: StageSubmitting, Message: "Broadcasting singleton factory deployment", Spinner: true})
	hash, err := uc.client.SendRawTransaction(ctx, raw)
	if err != nil {
		return result, d.Reject(fmt.Errorf("failed to broadcast singleton factory deployment: %w", err))
	}
	d.Transaction = &models.Transaction{Hash: hash, Status: models.TransactionStatusPending}
	if err := d.Transition(models.StateSubmitted); err != nil {
		return result, err
	}

	// Confirm verifies the receipt and that code landed at the factory address
	if err := uc.planner.Confirm(ctx, d); err != nil {
		if errors.Is(err, domain.ErrAlreadyDeployed) {
			result.AlreadyDeployed = true
			return result, nil
		}
		return result, err
	}
	return result, nil
}

func (uc *BootstrapSingletonFactory) send(ctx context.Context, tx *models.Transaction) error {
	hash, err := uc.client.SendTransaction(ctx, tx)
	if err != nil {
		return err
	}
	tx.Hash = hash
	tx.Status = models.TransactionStatusPending

	receipt, err := uc.planner.waitForReceipt(ctx, hash)
	if err != nil {
		return err
	}
	tx.BlockNumber = receipt.BlockNumber
	tx.GasUsed = receipt.GasUsed
	if !receipt.Succeeded() {
		tx.Status = models.TransactionStatusFailed
		return fmt.Errorf("%w: tx %s", domain.ErrReverted, hash.Hex())
	}
	tx.Status = models.TransactionStatusExecuted
	return nil
}
