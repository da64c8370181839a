// Package derive computes, without touching the network, the addresses mech
// mastercopies and proxies occupy once deployed, along with the exact init code
// a deployment must submit to land there.
package derive

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gnosisguild/mech-go/internal/abicodec"
	"github.com/gnosisguild/mech-go/internal/domain"
	"github.com/gnosisguild/mech-go/internal/domain/config"
	"github.com/gnosisguild/mech-go/internal/proxy"
	"github.com/samber/lo"
)

// MastercopySalt is the fixed salt every mastercopy is deployed with
var MastercopySalt = common.Hash{}

// ArtifactSource provides the compiled creation bytecode of a contract by name
type ArtifactSource interface {
	Bytecode(name string) ([]byte, error)
}

// Deriver computes CREATE2 addresses for mastercopies and mechs
type Deriver struct {
	addresses config.Addresses
	artifacts ArtifactSource
}

// NewDeriver creates a deriver bound to a fixed set of protocol addresses
func NewDeriver(addresses config.Addresses, artifacts ArtifactSource) *Deriver {
	return &Deriver{
		addresses: addresses,
		artifacts: artifacts,
	}
}

// Addresses returns the protocol addresses the deriver was built with
func (d *Deriver) Addresses() config.Addresses {
	return d.addresses
}

// Create2Address is keccak256(0xff ++ factory ++ salt ++ initCodeHash)[12:]
func Create2Address(factory common.Address, salt common.Hash, initCodeHash common.Hash) common.Address {
	return crypto.CreateAddress2(factory, salt, initCodeHash.Bytes())
}

// Singleton describes a contract deployed once through the ERC-2470 factory
type Singleton struct {
	Name         string
	Address      common.Address
	Factory      common.Address
	Salt         common.Hash
	InitCode     []byte
	InitCodeHash common.Hash
}

// MastercopyInitCode returns the mastercopy bytecode followed by its inert constructor arguments
func (d *Deriver) MastercopyInitCode(v domain.MechVariant) ([]byte, error) {
	desc, err := lookup(v)
	if err != nil {
		return nil, err
	}
	bytecode, err := d.artifacts.Bytecode(desc.artifact)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s bytecode: %w", desc.artifact, err)
	}
	if len(desc.inertTypes) == 0 {
		return bytecode, nil
	}
	args, err := abicodec.Encode(desc.inertTypes, desc.inertValues(d.addresses)...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s constructor arguments: %w", v, err)
	}
	initCode := make([]byte, 0, len(bytecode)+len(args))
	initCode = append(initCode, bytecode...)
	return append(initCode, args...), nil
}

// Mastercopy returns how and where the mastercopy of v is deployed
func (d *Deriver) Mastercopy(v domain.MechVariant) (*Singleton, error) {
	initCode, err := d.MastercopyInitCode(v)
	if err != nil {
		return nil, err
	}
	return d.singleton(v.String(), initCode), nil
}

// MastercopyAddress returns the network-wide address of the mastercopy of v
func (d *Deriver) MastercopyAddress(v domain.MechVariant) (common.Address, error) {
	s, err := d.Mastercopy(v)
	if err != nil {
		return common.Address{}, err
	}
	return s.Address, nil
}

// MechFactory returns how and where the mech factory singleton is deployed
func (d *Deriver) MechFactory() (*Singleton, error) {
	bytecode, err := d.artifacts.Bytecode(ArtifactMechFactory)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s bytecode: %w", ArtifactMechFactory, err)
	}
	return d.singleton(ArtifactMechFactory, bytecode), nil
}

// MechFactoryAddress returns the configured mech factory, or derives it from its artifact
func (d *Deriver) MechFactoryAddress() (common.Address, error) {
	if d.addresses.MechFactory != (common.Address{}) {
		return d.addresses.MechFactory, nil
	}
	s, err := d.MechFactory()
	if err != nil {
		return common.Address{}, err
	}
	return s.Address, nil
}

func (d *Deriver) singleton(name string, initCode []byte) *Singleton {
	hash := crypto.Keccak256Hash(initCode)
	return &Singleton{
		Name:         name,
		Address:      Create2Address(d.addresses.SingletonFactory, MastercopySalt, hash),
		Factory:      d.addresses.SingletonFactory,
		Salt:         MastercopySalt,
		InitCode:     initCode,
		InitCodeHash: hash,
	}
}

// Proxy is the full derivation of one mech instance
type Proxy struct {
	Variant    domain.MechVariant
	Layout     domain.ProxyLayout
	Mastercopy common.Address
	Factory    common.Address

	// UserSalt is the caller's salt; Salt is what CREATE2 actually hashes
	UserSalt common.Hash
	Salt     common.Hash

	// Context is appended to the code for context layouts and is the
	// setUp(bytes) initializer for module proxies
	Context []byte
	// Params is the resolved deploy context
	Params domain.DeployContext

	InitCode     []byte
	InitCodeHash common.Hash
	RuntimeCode  []byte
	Address      common.Address
}

// ProxyDeployment derives everything needed to deploy the mech described by ctx
func (d *Deriver) ProxyDeployment(ctx domain.DeployContext) (*Proxy, error) {
	ctx, err := domain.ResolveContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	v := ctx.Variant()
	desc, err := lookup(v)
	if err != nil {
		return nil, err
	}

	mastercopy, err := d.MastercopyAddress(v)
	if err != nil {
		return nil, err
	}
	context, err := desc.context(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s context: %w", v, err)
	}

	p := &Proxy{
		Variant:    v,
		Layout:     desc.layout,
		Mastercopy: mastercopy,
		UserSalt:   ctx.SaltValue(),
		Context:    context,
		Params:     ctx,
	}

	switch desc.layout {
	case domain.LayoutModuleProxy:
		p.Factory = d.addresses.ModuleProxyFactory
		p.Salt = ModuleProxySalt(context, p.UserSalt)
		p.InitCode = proxy.ModuleProxyInitCode(mastercopy)

	case domain.LayoutMechFactory:
		if p.Factory, err = d.MechFactoryAddress(); err != nil {
			return nil, err
		}
		p.Salt = p.UserSalt
		if p.InitCode, err = proxy.BuildProxyBytecode(mastercopy, context); err != nil {
			return nil, err
		}

	case domain.LayoutERC6551:
		p.Factory = d.addresses.ERC6551Registry
		if tb, ok := ctx.(domain.TokenboundContext); ok && tb.Registry != (common.Address{}) {
			p.Factory = tb.Registry
		}
		p.Salt = p.UserSalt
		if p.InitCode, err = proxy.TokenboundInitCode(mastercopy, context); err != nil {
			return nil, err
		}
	}

	runtime, ok := proxy.RuntimeCode(p.InitCode)
	if !ok {
		return nil, fmt.Errorf("%w: built init code for %s has no recognizable runtime", domain.ErrDerivationMismatch, v)
	}
	p.RuntimeCode = runtime
	p.InitCodeHash = crypto.Keccak256Hash(p.InitCode)
	p.Address = Create2Address(p.Factory, p.Salt, p.InitCodeHash)
	return p, nil
}

// ProxyAddress returns the address of the mech described by ctx
func (d *Deriver) ProxyAddress(ctx domain.DeployContext) (common.Address, error) {
	p, err := d.ProxyDeployment(ctx)
	if err != nil {
		return common.Address{}, err
	}
	return p.Address, nil
}

// ProxyInitCode returns the init code whose hash determines the mech address
func (d *Deriver) ProxyInitCode(ctx domain.DeployContext) ([]byte, error) {
	p, err := d.ProxyDeployment(ctx)
	if err != nil {
		return nil, err
	}
	return p.InitCode, nil
}

// ModuleProxySalt is the salt the module proxy factory passes to CREATE2:
// keccak256(keccak256(initializer) ++ uint256(saltNonce))
func ModuleProxySalt(initializer []byte, saltNonce common.Hash) common.Hash {
	return crypto.Keccak256Hash(crypto.Keccak256(initializer), saltNonce.Bytes())
}

// KnownMastercopies maps every mastercopy address to its variant. Variants
// whose artifact is unavailable are skipped; an error is returned only when
// none could be derived.
func (d *Deriver) KnownMastercopies() (map[common.Address]domain.MechVariant, error) {
	known := make(map[common.Address]domain.MechVariant, len(domain.AllVariants))
	var firstErr error
	for _, v := range domain.AllVariants {
		addr, err := d.MastercopyAddress(v)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		known[addr] = v
	}
	if len(known) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return known, nil
}

// MastercopyAddresses returns every derivable mastercopy address, sorted
func (d *Deriver) MastercopyAddresses() ([]common.Address, error) {
	known, err := d.KnownMastercopies()
	if err != nil {
		return nil, err
	}
	addrs := lo.Keys(known)
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Cmp(addrs[j]) < 0 })
	return addrs, nil
}
