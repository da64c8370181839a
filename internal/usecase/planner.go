package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gnosisguild/mech-go/internal/abicodec"
	"github.com/gnosisguild/mech-go/internal/derive"
	"github.com/gnosisguild/mech-go/internal/domain"
	"github.com/gnosisguild/mech-go/internal/domain/config"
	"github.com/gnosisguild/mech-go/internal/domain/models"
	"github.com/lmittmann/w3"
)

// Factory and registry entry points
var (
	funcDeployMech = w3.MustNewFunc(
		"deployMech(address implementation, bytes context, bytes32 salt)", "address")
	funcCreateAccount = w3.MustNewFunc(
		"createAccount(address implementation, bytes32 salt, uint256 chainId, address tokenContract, uint256 tokenId)", "address")
	funcDeployModule = w3.MustNewFunc(
		"deployModule(address masterCopy, bytes initializer, uint256 saltNonce)", "address proxy")
	funcSingletonDeploy = w3.MustNewFunc(
		"deploy(bytes _initCode, bytes32 _salt)", "address createdContract")
)

// Planner drives a deployment through planned -> checked -> submitted -> confirmed.
// Planning is pure; only Check, Submit and Confirm talk to the chain.
type Planner struct {
	deriver  *derive.Deriver
	client   ChainClient
	cfg      *config.RuntimeConfig
	progress ProgressSink
	log      *slog.Logger
}

// NewPlanner creates a new deployment planner
func NewPlanner(
	deriver *derive.Deriver,
	client ChainClient,
	cfg *config.RuntimeConfig,
	progress ProgressSink,
	log *slog.Logger,
) *Planner {
	if progress == nil {
		progress = NopProgress{}
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Planner{
		deriver:  deriver,
		client:   client,
		cfg:      cfg,
		progress: progress,
		log:      log,
	}
}

// Deriver returns the address deriver the planner plans with
func (p *Planner) Deriver() *derive.Deriver {
	return p.deriver
}

// PlanMech builds the deployment of the mech described by dc
func (p *Planner) PlanMech(dc domain.DeployContext) (*models.Deployment, error) {
	prx, err := p.deriver.ProxyDeployment(dc)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch prx.Layout {
	case domain.LayoutMechFactory:
		data, err = abicodec.Calldata(funcDeployMech.Selector,
			[]string{abicodec.Address, abicodec.Bytes, abicodec.Bytes32},
			prx.Mastercopy, prx.Context, prx.UserSalt)

	case domain.LayoutERC6551:
		tb, ok := prx.Params.(domain.TokenboundContext)
		if !ok {
			err = domain.InvalidArgument("%s needs a tokenbound context, got %T", prx.Variant, prx.Params)
			break
		}
		data, err = abicodec.Calldata(funcCreateAccount.Selector,
			[]string{abicodec.Address, abicodec.Bytes32, abicodec.Uint256, abicodec.Address, abicodec.Uint256},
			prx.Mastercopy, prx.UserSalt, tb.ChainID, tb.Token, tb.TokenID)

	case domain.LayoutModuleProxy:
		data, err = abicodec.Calldata(funcDeployModule.Selector,
			[]string{abicodec.Address, abicodec.Bytes, abicodec.Uint256},
			prx.Mastercopy, prx.Context, prx.UserSalt.Big())

	default:
		err = domain.InvalidArgument("unknown proxy layout %q", prx.Layout)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s deployment: %w", prx.Variant, err)
	}

	return &models.Deployment{
		Type:         models.ProxyDeployment,
		Variant:      prx.Variant,
		State:        models.StatePlanned,
		Address:      prx.Address,
		Factory:      prx.Factory,
		Salt:         prx.Salt,
		InitCodeHash: prx.InitCodeHash,
		InitCode:     prx.InitCode,
		Mastercopy:   prx.Mastercopy,
		RuntimeCode:  prx.RuntimeCode,
		Transaction:  models.NewTransaction(prx.Factory, data, nil),
	}, nil
}

// PlanMastercopy builds the deployment of the mastercopy of v through the singleton factory
func (p *Planner) PlanMastercopy(v domain.MechVariant) (*models.Deployment, error) {
	s, err := p.deriver.Mastercopy(v)
	if err != nil {
		return nil, err
	}
	d, err := p.planSingleton(s, models.MastercopyDeployment)
	if err != nil {
		return nil, err
	}
	d.Variant = v
	return d, nil
}

// PlanMechFactory builds the deployment of the mech factory through the singleton factory
func (p *Planner) PlanMechFactory() (*models.Deployment, error) {
	s, err := p.deriver.MechFactory()
	if err != nil {
		return nil, err
	}
	return p.planSingleton(s, models.FactoryDeployment)
}

func (p *Planner) planSingleton(s *derive.Singleton, typ models.DeploymentType) (*models.Deployment, error) {
	data, err := abicodec.Calldata(funcSingletonDeploy.Selector,
		[]string{abicodec.Bytes, abicodec.Bytes32}, s.InitCode, s.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s deployment: %w", s.Name, err)
	}
	return &models.Deployment{
		Type:         typ,
		Contract:     s.Name,
		State:        models.StatePlanned,
		Address:      s.Address,
		Factory:      s.Factory,
		Salt:         s.Salt,
		InitCodeHash: s.InitCodeHash,
		InitCode:     s.InitCode,
		Transaction:  models.NewTransaction(s.Factory, data, nil),
	}, nil
}

// CheckNetwork fails with UnsupportedNetwork unless the connected chain is allow-listed
func (p *Planner) CheckNetwork(ctx context.Context) (uint64, error) {
	chainID, err := p.client.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get chain ID: %w", err)
	}
	if !p.cfg.IsSupported(chainID) {
		return chainID, domain.UnsupportedNetworkErr{ChainID: chainID, Supported: p.cfg.SupportedChainIDs}
	}
	return chainID, nil
}

// Check verifies the preconditions of d against the chain. A target that
// already holds code yields AlreadyDeployed; nothing is ever deployed here.
func (p *Planner) Check(ctx context.Context, d *models.Deployment) error {
	p.progress.OnProgress(ctx, ProgressEvent{Stage: StageChecking, Message: fmt.Sprintf("Checking %s", d.Name()), Spinner: true})

	if _, err := p.CheckNetwork(ctx); err != nil {
		return d.Reject(err)
	}

	deployed, err := p.hasCode(ctx, d.Address)
	if err != nil {
		return d.Reject(err)
	}
	if deployed {
		p.log.Debug("target already has code", "name", d.Name(), "address", d.Address.Hex())
		return d.Reject(domain.AlreadyDeployedErr{Address: d.Address})
	}

	if d.Type == models.ProxyDeployment {
		ok, err := p.hasCode(ctx, d.Mastercopy)
		if err != nil {
			return d.Reject(err)
		}
		if !ok {
			return d.Reject(domain.MastercopyMissingErr{Variant: d.Variant, Address: d.Mastercopy})
		}
	}

	ok, err := p.hasCode(ctx, d.Factory)
	if err != nil {
		return d.Reject(err)
	}
	if !ok {
		return d.Reject(fmt.Errorf("%w: no code at %s, %s", domain.ErrFactoryMissing, d.Factory.Hex(), p.factoryHint(d)))
	}

	return d.Transition(models.StateChecked)
}

func (p *Planner) factoryHint(d *models.Deployment) string {
	addrs := p.deriver.Addresses()
	switch {
	case d.Factory == addrs.SingletonFactory:
		return "run `mech factory bootstrap` first"
	case d.Type == models.ProxyDeployment && d.Factory == addrs.ModuleProxyFactory:
		return "the module proxy factory is not available on this chain"
	case d.Type == models.ProxyDeployment && d.Variant.IsTokenbound():
		return "the ERC-6551 registry is not available on this chain"
	default:
		return "run `mech factory deploy` first"
	}
}

// Submit sends the planned transaction
func (p *Planner) Submit(ctx context.Context, d *models.Deployment) error {
	p.progress.OnProgress(ctx, ProgressEvent{Stage: StageSubmitting, Message: fmt.Sprintf("Submitting %s", d.Name()), Spinner: true})

	hash, err := p.client.SendTransaction(ctx, d.Transaction)
	if err != nil {
		return d.Reject(fmt.Errorf("failed to send %s deployment: %w", d.Name(), err))
	}
	d.Transaction.Hash = hash
	d.Transaction.Status = models.TransactionStatusPending
	p.log.Debug("deployment submitted", "name", d.Name(), "tx", hash.Hex())
	return d.Transition(models.StateSubmitted)
}

// Confirm waits for the receipt and re-asserts that the predicted address now
// holds the predicted code
func (p *Planner) Confirm(ctx context.Context, d *models.Deployment) error {
	p.progress.OnProgress(ctx, ProgressEvent{Stage: StageWaiting, Message: fmt.Sprintf("Waiting for %s", d.Transaction.Hash.Hex()), Spinner: true})

	receipt, err := p.waitForReceipt(ctx, d.Transaction.Hash)
	if err != nil {
		return d.Reject(err)
	}
	d.Transaction.BlockNumber = receipt.BlockNumber
	d.Transaction.GasUsed = receipt.GasUsed

	if !receipt.Succeeded() {
		d.Transaction.Status = models.TransactionStatusFailed
		// a concurrent deployment of the same address reverts ours
		if code, err := p.client.CodeAt(ctx, d.Address); err == nil && p.matches(d, code) {
			return d.Reject(domain.AlreadyDeployedErr{Address: d.Address})
		}
		return d.Reject(fmt.Errorf("%w: %s deployment in tx %s", domain.ErrReverted, d.Name(), d.Transaction.Hash.Hex()))
	}
	d.Transaction.Status = models.TransactionStatusExecuted

	p.progress.OnProgress(ctx, ProgressEvent{Stage: StageVerifying, Message: fmt.Sprintf("Verifying code at %s", d.Address.Hex())})
	code, err := p.client.CodeAt(ctx, d.Address)
	if err != nil {
		return d.Reject(fmt.Errorf("failed to get code at %s: %w", d.Address.Hex(), err))
	}
	if len(code) == 0 {
		return d.Reject(domain.DerivationMismatchErr{
			Expected: d.Address,
			Actual:   receipt.ContractAddress,
			Reason:   fmt.Sprintf("tx %s succeeded but left no code at the predicted address", d.Transaction.Hash.Hex()),
		})
	}
	if !p.matches(d, code) {
		return d.Reject(domain.DerivationMismatchErr{
			Expected: d.Address,
			Reason: fmt.Sprintf("runtime code hash is %s, expected %s",
				crypto.Keccak256Hash(code).Hex(), crypto.Keccak256Hash(d.RuntimeCode).Hex()),
		})
	}

	p.progress.OnProgress(ctx, ProgressEvent{Stage: StageDone, Message: fmt.Sprintf("Deployed %s at %s", d.Name(), d.Address.Hex())})
	return d.Transition(models.StateConfirmed)
}

// Execute runs Check, Submit and Confirm in order
func (p *Planner) Execute(ctx context.Context, d *models.Deployment) error {
	if err := p.Check(ctx, d); err != nil {
		return err
	}
	if err := p.Submit(ctx, d); err != nil {
		return err
	}
	return p.Confirm(ctx, d)
}

// matches reports whether code is what d deploys. Constructor-built code
// (mastercopies, factories) only has to exist.
func (p *Planner) matches(d *models.Deployment, code []byte) bool {
	if len(code) == 0 {
		return false
	}
	if len(d.RuntimeCode) == 0 {
		return true
	}
	return bytes.Equal(code, d.RuntimeCode)
}

func (p *Planner) hasCode(ctx context.Context, addr common.Address) (bool, error) {
	code, err := p.client.CodeAt(ctx, addr)
	if err != nil {
		return false, fmt.Errorf("failed to get code at %s: %w", addr.Hex(), err)
	}
	return len(code) > 0, nil
}

func (p *Planner) waitForReceipt(ctx context.Context, hash common.Hash) (*models.Receipt, error) {
	receipt, err := p.client.WaitForReceipt(ctx, hash)
	if err == nil {
		return receipt, nil
	}
	if errors.Is(err, domain.ErrTimeout) {
		return nil, err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: tx %s", domain.ErrTimeout, hash.Hex())
	}
	return nil, fmt.Errorf("failed to wait for tx %s: %w", hash.Hex(), err)
}

// fundingShortfall returns how much addr lacks to hold want, or nil
func (p *Planner) fundingShortfall(ctx context.Context, addr common.Address, want *big.Int) (*big.Int, error) {
	balance, err := p.client.BalanceAt(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance of %s: %w", addr.Hex(), err)
	}
	if balance.Cmp(want) >= 0 {
		return nil, nil
	}
	return new(big.Int).Sub(want, balance), nil
}
