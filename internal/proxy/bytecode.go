// Package proxy builds EIP-1167 minimal proxy init code in the three layouts
// mech deploys: module-proxy-factory clones, mech-factory clones with an
// appended context, and ERC-6551 registry accounts.
package proxy

import (
	"bytes"
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gnosisguild/mech-go/internal/domain"
)

// EIP-1167 runtime pieces around the implementation address
var (
	CloneHeader = common.FromHex("0x363d3d373d3d3d363d73")
	CloneFooter = common.FromHex("0x5af43d82803e903d91602b57fd5bf3")
)

const (
	// CloneSize is the size of the plain EIP-1167 runtime
	CloneSize = 0x2d

	// HeaderSize, FooterSize locate the implementation inside the runtime
	HeaderSize = 10
	FooterSize = 15

	// MaxMechFactoryContext keeps 0x2d + len + 1 within a uint16
	MaxMechFactoryContext = 0xffff - CloneSize - 1
	// MaxERC6551Context keeps 0x2d + len within a uint8
	MaxERC6551Context = 0xff - CloneSize
)

// creation prefixes: they copy the runtime that follows them into memory and return it
var (
	moduleProxyPrefix  = common.FromHex("0x602d8060093d393df3")
	mechFactoryOpening = common.FromHex("0x3d61")
	mechFactoryClosing = common.FromHex("0x80600b3d3981f3")
	erc6551Opening     = common.FromHex("0x3d60")
	erc6551Closing     = common.FromHex("0x80600a3d3981f3")
)

const (
	mechFactoryPrefixSize = 11
	erc6551PrefixSize     = 10
)

// Clone returns the plain 45-byte EIP-1167 runtime for mastercopy
func Clone(mastercopy common.Address) []byte {
	out := make([]byte, 0, CloneSize)
	out = append(out, CloneHeader...)
	out = append(out, mastercopy.Bytes()...)
	out = append(out, CloneFooter...)
	return out
}

// ModuleProxyInitCode is the init code the Zodiac module proxy factory deploys
func ModuleProxyInitCode(mastercopy common.Address) []byte {
	out := make([]byte, 0, len(moduleProxyPrefix)+CloneSize)
	out = append(out, moduleProxyPrefix...)
	return append(out, Clone(mastercopy)...)
}

// BuildProxyBytecode builds mech factory init code: a clone of mastercopy
// followed by a stop byte and the raw context, so the context ends up in the
// deployed code.
func BuildProxyBytecode(mastercopy common.Address, context []byte) ([]byte, error) {
	if len(context) > MaxMechFactoryContext {
		return nil, domain.InvalidArgument("context of %d bytes exceeds %d", len(context), MaxMechFactoryContext)
	}

	size := make([]byte, 2)
	binary.BigEndian.PutUint16(size, uint16(CloneSize+len(context)+1))

	out := make([]byte, 0, mechFactoryPrefixSize+CloneSize+1+len(context))
	out = append(out, mechFactoryOpening...)
	out = append(out, size...)
	out = append(out, mechFactoryClosing...)
	out = append(out, Clone(mastercopy)...)
	out = append(out, 0x00)
	return append(out, context...), nil
}

// BuildProxyBytecodeRaw is BuildProxyBytecode for an address given as raw bytes.
// Anything other than exactly 20 bytes is rejected rather than padded.
func BuildProxyBytecodeRaw(mastercopy []byte, context []byte) ([]byte, error) {
	if len(mastercopy) != common.AddressLength {
		return nil, domain.ErrInvalidMastercopy
	}
	return BuildProxyBytecode(common.BytesToAddress(mastercopy), context)
}

// TokenboundInitCode builds ERC-6551 registry init code. The context is
// appended right after the clone, without a stop byte.
func TokenboundInitCode(mastercopy common.Address, context []byte) ([]byte, error) {
	if len(context) > MaxERC6551Context {
		return nil, domain.InvalidArgument("context of %d bytes exceeds %d", len(context), MaxERC6551Context)
	}

	out := make([]byte, 0, erc6551PrefixSize+CloneSize+len(context))
	out = append(out, erc6551Opening...)
	out = append(out, byte(CloneSize+len(context)))
	out = append(out, erc6551Closing...)
	out = append(out, Clone(mastercopy)...)
	return append(out, context...), nil
}

// InitCode builds init code for the given layout
func InitCode(layout domain.ProxyLayout, mastercopy common.Address, context []byte) ([]byte, error) {
	switch layout {
	case domain.LayoutModuleProxy:
		if len(context) != 0 {
			return nil, domain.InvalidArgument("module proxies carry no context")
		}
		return ModuleProxyInitCode(mastercopy), nil
	case domain.LayoutMechFactory:
		return BuildProxyBytecode(mastercopy, context)
	case domain.LayoutERC6551:
		return TokenboundInitCode(mastercopy, context)
	default:
		return nil, domain.InvalidArgument("unknown proxy layout %q", layout)
	}
}

// RuntimeCode strips a creation prefix produced by this package and returns
// the code that ends up deployed. ok is false for anything else.
func RuntimeCode(initCode []byte) (runtime []byte, ok bool) {
	switch {
	case bytes.HasPrefix(initCode, moduleProxyPrefix) && len(initCode) == len(moduleProxyPrefix)+CloneSize:
		return initCode[len(moduleProxyPrefix):], true

	case len(initCode) >= mechFactoryPrefixSize &&
		bytes.Equal(initCode[:2], mechFactoryOpening) &&
		bytes.Equal(initCode[4:mechFactoryPrefixSize], mechFactoryClosing):
		size := int(binary.BigEndian.Uint16(initCode[2:4]))
		if len(initCode)-mechFactoryPrefixSize != size {
			return nil, false
		}
		return initCode[mechFactoryPrefixSize:], true

	case len(initCode) >= erc6551PrefixSize &&
		bytes.Equal(initCode[:2], erc6551Opening) &&
		bytes.Equal(initCode[3:erc6551PrefixSize], erc6551Closing):
		size := int(initCode[2])
		if len(initCode)-erc6551PrefixSize != size {
			return nil, false
		}
		return initCode[erc6551PrefixSize:], true
	}
	return nil, false
}
