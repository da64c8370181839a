package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ProxyLayout is the byte layout used to build (and later parse) a proxy
type ProxyLayout string

const (
	// LayoutModuleProxy is the plain 45-byte EIP-1167 clone deployed by the module proxy factory
	LayoutModuleProxy ProxyLayout = "module-proxy"
	// LayoutMechFactory appends a stop byte and the raw context to the clone
	LayoutMechFactory ProxyLayout = "mech-factory"
	// LayoutERC6551 appends salt, chain ID, token contract and token ID words to the clone
	LayoutERC6551 ProxyLayout = "erc6551"
)

// ParsedBytecode is the decomposition of a deployed minimal proxy
type ParsedBytecode struct {
	Header         []byte
	Implementation common.Address
	Footer         []byte
	Layout         ProxyLayout
	Variant        MechVariant

	// Context holds the appended bytes, without the stop byte
	Context []byte

	Salt          *big.Int
	ChainID       *big.Int
	TokenContract common.Address
	TokenID       string
}

// SignatureEnvelope is a decoded EIP-1271 delegated mech signature
type SignatureEnvelope struct {
	Mech   common.Address
	Offset uint64
	V      uint8
	Length uint64
	Data   []byte
}
