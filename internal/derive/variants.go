package derive

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gnosisguild/mech-go/internal/abicodec"
	"github.com/gnosisguild/mech-go/internal/domain"
	"github.com/gnosisguild/mech-go/internal/domain/config"
	"github.com/lmittmann/w3"
)

// Artifact names of the compiled contracts
const (
	ArtifactMechFactory = "MechFactory"
)

var funcSetUp = w3.MustNewFunc("setUp(bytes initParams)", "")

// variantSpec is everything that differs between mech variants. Derivation code
// only ever looks things up here.
type variantSpec struct {
	artifact string
	layout   domain.ProxyLayout

	// inertTypes/inertValues are the constructor arguments the mastercopy is
	// deployed with. They never carry user data, so every deployer agrees on
	// the mastercopy address.
	inertTypes  []string
	inertValues func(config.Addresses) []any

	// context encodes the per-instance parameters: appended to the proxy for
	// context layouts, wrapped in setUp(bytes) for module proxies.
	context func(domain.DeployContext) ([]byte, error)
}

var variants = map[domain.MechVariant]variantSpec{
	domain.ERC721Bound: {
		artifact:   "ERC721Mech",
		layout:     domain.LayoutMechFactory,
		inertTypes: []string{abicodec.Address, abicodec.Uint256},
		inertValues: func(a config.Addresses) []any {
			return []any{a.Zero, new(big.Int)}
		},
		context: func(c domain.DeployContext) ([]byte, error) {
			ctx, ok := c.(domain.ERC721BoundContext)
			if !ok {
				return nil, contextMismatch(domain.ERC721Bound, c)
			}
			return abicodec.Encode([]string{abicodec.Address, abicodec.Uint256}, ctx.Token, ctx.TokenID)
		},
	},
	domain.ERC1155Bound: {
		artifact:   "ERC1155Mech",
		layout:     domain.LayoutMechFactory,
		inertTypes: []string{abicodec.Address, abicodec.Uint256},
		inertValues: func(a config.Addresses) []any {
			return []any{a.Zero, new(big.Int)}
		},
		context: func(c domain.DeployContext) ([]byte, error) {
			ctx, ok := c.(domain.ERC1155BoundContext)
			if !ok {
				return nil, contextMismatch(domain.ERC1155Bound, c)
			}
			return abicodec.Encode([]string{abicodec.Address, abicodec.Uint256}, ctx.Token, ctx.TokenID)
		},
	},
	domain.ERC1155Threshold: {
		artifact:   "ERC1155ThresholdMech",
		layout:     domain.LayoutMechFactory,
		inertTypes: thresholdTypes,
		inertValues: func(a config.Addresses) []any {
			return []any{a.Zero, []*big.Int{new(big.Int)}, []*big.Int{new(big.Int)}, new(big.Int)}
		},
		context: func(c domain.DeployContext) ([]byte, error) {
			ctx, ok := c.(domain.ERC1155ThresholdContext)
			if !ok {
				return nil, contextMismatch(domain.ERC1155Threshold, c)
			}
			return abicodec.Encode(thresholdTypes, ctx.Token, ctx.TokenIDs, ctx.MinBalances, ctx.MinTotalBalance)
		},
	},
	domain.ERC721Tokenbound: {
		artifact: "ERC721TokenboundMech",
		layout:   domain.LayoutERC6551,
		context:  tokenboundContext,
	},
	domain.ERC1155Tokenbound: {
		artifact: "ERC1155TokenboundMech",
		layout:   domain.LayoutERC6551,
		context:  tokenboundContext,
	},
	domain.ZodiacModuleBound: {
		artifact:   "ZodiacMech",
		layout:     domain.LayoutModuleProxy,
		inertTypes: []string{abicodec.AddressArray},
		inertValues: func(a config.Addresses) []any {
			return []any{[]common.Address{a.SentinelModules}}
		},
		context: func(c domain.DeployContext) ([]byte, error) {
			ctx, ok := c.(domain.ZodiacContext)
			if !ok {
				return nil, contextMismatch(domain.ZodiacModuleBound, c)
			}
			initParams, err := abicodec.Encode([]string{abicodec.AddressArray}, ctx.Modules)
			if err != nil {
				return nil, err
			}
			return abicodec.Calldata(funcSetUp.Selector, []string{abicodec.Bytes}, initParams)
		},
	},
}

var thresholdTypes = []string{abicodec.Address, abicodec.Uint256Array, abicodec.Uint256Array, abicodec.Uint256}

// TokenboundContextTypes is the word layout appended to ERC-6551 accounts
var TokenboundContextTypes = []string{abicodec.Bytes32, abicodec.Uint256, abicodec.Address, abicodec.Uint256}

func tokenboundContext(c domain.DeployContext) ([]byte, error) {
	ctx, ok := c.(domain.TokenboundContext)
	if !ok {
		return nil, contextMismatch(c.Variant(), c)
	}
	return abicodec.Encode(TokenboundContextTypes, ctx.Salt, ctx.ChainID, ctx.Token, ctx.TokenID)
}

func contextMismatch(v domain.MechVariant, c domain.DeployContext) error {
	return domain.InvalidArgument("cannot build a %s mech from %T", v, c)
}

func lookup(v domain.MechVariant) (variantSpec, error) {
	spec, ok := variants[v]
	if !ok {
		return variantSpec{}, domain.InvalidArgument("unknown mech variant %q", v)
	}
	return spec, nil
}

// ArtifactName returns the artifact holding the mastercopy bytecode of v
func ArtifactName(v domain.MechVariant) (string, error) {
	spec, err := lookup(v)
	if err != nil {
		return "", err
	}
	return spec.artifact, nil
}

// Layout returns the proxy layout v is deployed with
func Layout(v domain.MechVariant) (domain.ProxyLayout, error) {
	spec, err := lookup(v)
	if err != nil {
		return "", fmt.Errorf("layout: %w", err)
	}
	return spec.layout, nil
}
