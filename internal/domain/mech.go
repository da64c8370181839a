package domain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// MechVariant identifies which mastercopy a mech delegates to
type MechVariant string

const (
	ERC721Bound       MechVariant = "erc721"
	ERC1155Bound      MechVariant = "erc1155"
	ERC1155Threshold  MechVariant = "erc1155-threshold"
	ERC721Tokenbound  MechVariant = "erc721-tokenbound"
	ERC1155Tokenbound MechVariant = "erc1155-tokenbound"
	ZodiacModuleBound MechVariant = "zodiac"
)

// AllVariants lists every variant in a stable order
var AllVariants = []MechVariant{
	ERC721Bound,
	ERC1155Bound,
	ERC1155Threshold,
	ERC721Tokenbound,
	ERC1155Tokenbound,
	ZodiacModuleBound,
}

func (v MechVariant) String() string { return string(v) }

// IsTokenbound reports whether the variant is deployed through an ERC-6551 registry
func (v MechVariant) IsTokenbound() bool {
	return v == ERC721Tokenbound || v == ERC1155Tokenbound
}

// ParseMechVariant parses a variant name, case-insensitively
func ParseMechVariant(s string) (MechVariant, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, v := range AllVariants {
		if string(v) == needle {
			return v, nil
		}
	}
	return "", InvalidArgument("unknown mech variant %q", s)
}

// MaxUint256 is 2^256 - 1
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// DeployContext is the parameter set of one mech instance.
// The set of implementations is closed.
type DeployContext interface {
	Variant() MechVariant
	SaltValue() common.Hash
	Validate() error
	isDeployContext()
}

// ERC721BoundContext binds a mech to a single ERC-721 token
type ERC721BoundContext struct {
	Token   common.Address
	TokenID *big.Int
	Salt    common.Hash
}

func (ERC721BoundContext) Variant() MechVariant     { return ERC721Bound }
func (c ERC721BoundContext) SaltValue() common.Hash { return c.Salt }
func (ERC721BoundContext) isDeployContext()         {}

func (c ERC721BoundContext) Validate() error {
	return validateUint256("token ID", c.TokenID)
}

// ERC1155BoundContext binds a mech to a single ERC-1155 token ID
type ERC1155BoundContext struct {
	Token   common.Address
	TokenID *big.Int
	Salt    common.Hash
}

func (ERC1155BoundContext) Variant() MechVariant     { return ERC1155Bound }
func (c ERC1155BoundContext) SaltValue() common.Hash { return c.Salt }
func (ERC1155BoundContext) isDeployContext()         {}

func (c ERC1155BoundContext) Validate() error {
	return validateUint256("token ID", c.TokenID)
}

// ERC1155ThresholdContext grants operator rights to holders of enough ERC-1155 balance
type ERC1155ThresholdContext struct {
	Token           common.Address
	TokenIDs        []*big.Int
	MinBalances     []*big.Int
	MinTotalBalance *big.Int
	Salt            common.Hash
}

func (ERC1155ThresholdContext) Variant() MechVariant     { return ERC1155Threshold }
func (c ERC1155ThresholdContext) SaltValue() common.Hash { return c.Salt }
func (ERC1155ThresholdContext) isDeployContext()         {}

func (c ERC1155ThresholdContext) Validate() error {
	if len(c.TokenIDs) == 0 {
		return InvalidArgument("threshold mech needs at least one token ID")
	}
	if len(c.TokenIDs) != len(c.MinBalances) {
		return InvalidArgument("got %d token IDs but %d minimum balances", len(c.TokenIDs), len(c.MinBalances))
	}
	for i, id := range c.TokenIDs {
		if err := validateUint256(fmt.Sprintf("token ID #%d", i), id); err != nil {
			return err
		}
	}
	for i, b := range c.MinBalances {
		if err := validateUint256(fmt.Sprintf("min balance #%d", i), b); err != nil {
			return err
		}
	}
	return validateUint256("min total balance", c.MinTotalBalance)
}

// TokenboundContext is an ERC-6551 account for an ERC-721 or ERC-1155 token.
// A zero Registry means the configured default registry.
type TokenboundContext struct {
	Kind     MechVariant
	ChainID  *big.Int
	Token    common.Address
	TokenID  *big.Int
	Salt     common.Hash
	Registry common.Address
}

func (c TokenboundContext) Variant() MechVariant   { return c.Kind }
func (c TokenboundContext) SaltValue() common.Hash { return c.Salt }
func (TokenboundContext) isDeployContext()         {}

func (c TokenboundContext) Validate() error {
	if !c.Kind.IsTokenbound() {
		return InvalidArgument("%q is not a tokenbound variant", c.Kind)
	}
	if err := validateUint256("chain ID", c.ChainID); err != nil {
		return err
	}
	return validateUint256("token ID", c.TokenID)
}

// ZodiacContext binds a mech to a set of enabled Zodiac modules
type ZodiacContext struct {
	Modules []common.Address
	Salt    common.Hash
}

func (ZodiacContext) Variant() MechVariant     { return ZodiacModuleBound }
func (c ZodiacContext) SaltValue() common.Hash { return c.Salt }
func (ZodiacContext) isDeployContext()         {}

func (c ZodiacContext) Validate() error {
	if len(c.Modules) == 0 {
		return InvalidArgument("zodiac mech needs at least one module")
	}
	return nil
}

// ResolveContext returns dc as a value context. Pointer contexts are
// dereferenced and nil contexts are rejected.
func ResolveContext(dc DeployContext) (DeployContext, error) {
	switch c := dc.(type) {
	case ERC721BoundContext, ERC1155BoundContext, ERC1155ThresholdContext, TokenboundContext, ZodiacContext:
		return c, nil
	case *ERC721BoundContext:
		return deref(c)
	case *ERC1155BoundContext:
		return deref(c)
	case *ERC1155ThresholdContext:
		return deref(c)
	case *TokenboundContext:
		return deref(c)
	case *ZodiacContext:
		return deref(c)
	case nil:
		return nil, InvalidArgument("missing deploy context")
	}
	return nil, InvalidArgument("unsupported deploy context %T", dc)
}

func deref[T DeployContext](p *T) (DeployContext, error) {
	if p == nil {
		return nil, InvalidArgument("missing deploy context")
	}
	return *p, nil
}

func validateUint256(name string, v *big.Int) error {
	if v == nil {
		return InvalidArgument("%s is required", name)
	}
	if v.Sign() < 0 {
		return InvalidArgument("%s must not be negative, got %s", name, v)
	}
	if v.Cmp(MaxUint256) > 0 {
		return InvalidArgument("%s overflows uint256", name)
	}
	return nil
}
