// Package introspect recognizes deployed mechs from their bytecode.
//
// Parsing is speculative: it is run against arbitrary on-chain code, so
// anything that is not a mech proxy yields (nil, false) rather than an error.
package introspect

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gnosisguild/mech-go/internal/abicodec"
	"github.com/gnosisguild/mech-go/internal/derive"
	"github.com/gnosisguild/mech-go/internal/domain"
	"github.com/gnosisguild/mech-go/internal/proxy"
	"golang.org/x/sync/errgroup"
)

const (
	wordSize = 32

	implementationOffset = proxy.HeaderSize
	footerOffset         = implementationOffset + common.AddressLength

	erc6551ContextSize = 4 * wordSize
)

// DefaultConcurrency bounds parallel code fetches in Classify
const DefaultConcurrency = 8

// CodeReader fetches deployed code
type CodeReader interface {
	CodeAt(ctx context.Context, address common.Address) ([]byte, error)
}

// Introspector matches proxies against a fixed set of known mastercopies
type Introspector struct {
	known map[common.Address]domain.MechVariant
}

// NewIntrospector creates an introspector for the given mastercopy addresses
func NewIntrospector(known map[common.Address]domain.MechVariant) *Introspector {
	copied := make(map[common.Address]domain.MechVariant, len(known))
	for addr, v := range known {
		copied[addr] = v
	}
	return &Introspector{known: copied}
}

// Parse decomposes runtime code, or init code with a recognized creation
// prefix, into its proxy fields. ok is false for anything that is not a
// minimal proxy of a known mastercopy.
func (i *Introspector) Parse(code []byte) (parsed *domain.ParsedBytecode, ok bool) {
	defer func() {
		if recover() != nil {
			parsed, ok = nil, false
		}
	}()

	if runtime, isInit := proxy.RuntimeCode(code); isInit {
		code = runtime
	}
	if len(code) < proxy.CloneSize {
		return nil, false
	}
	if !bytes.Equal(code[:implementationOffset], proxy.CloneHeader) ||
		!bytes.Equal(code[footerOffset:proxy.CloneSize], proxy.CloneFooter) {
		return nil, false
	}

	implementation := common.BytesToAddress(code[implementationOffset:footerOffset])
	variant, known := i.known[implementation]
	if !known {
		return nil, false
	}

	parsed = &domain.ParsedBytecode{
		Header:         bytes.Clone(code[:implementationOffset]),
		Implementation: implementation,
		Footer:         bytes.Clone(code[footerOffset:proxy.CloneSize]),
		Variant:        variant,
	}

	tail := code[proxy.CloneSize:]
	switch {
	case len(tail) == 0:
		parsed.Layout = domain.LayoutModuleProxy

	case len(tail) == erc6551ContextSize:
		parsed.Layout = domain.LayoutERC6551
		parsed.Context = bytes.Clone(tail)
		if !decodeTokenbound(parsed, tail) {
			return nil, false
		}

	case tail[0] == 0x00 && (len(tail)-1)%wordSize == 0:
		parsed.Layout = domain.LayoutMechFactory
		parsed.Context = bytes.Clone(tail[1:])
		decodeTokenContext(parsed, parsed.Context)

	default:
		return nil, false
	}

	if layout, err := derive.Layout(variant); err != nil || layout != parsed.Layout {
		return nil, false
	}
	return parsed, true
}

// IsMech reports whether code belongs to a mech
func (i *Introspector) IsMech(code []byte) bool {
	_, ok := i.Parse(code)
	return ok
}

func decodeTokenbound(parsed *domain.ParsedBytecode, context []byte) bool {
	values, err := abicodec.Decode(derive.TokenboundContextTypes, context)
	if err != nil {
		return false
	}
	salt := values[0].([32]byte)
	parsed.Salt = new(big.Int).SetBytes(salt[:])
	parsed.ChainID = values[1].(*big.Int)
	parsed.TokenContract = values[2].(common.Address)
	parsed.TokenID = values[3].(*big.Int).String()
	return true
}

// decodeTokenContext fills the token fields when the context starts with an
// (address, uint256) pair. Threshold contexts only yield the token contract.
func decodeTokenContext(parsed *domain.ParsedBytecode, context []byte) {
	switch parsed.Variant {
	case domain.ERC721Bound, domain.ERC1155Bound:
		values, err := abicodec.Decode([]string{abicodec.Address, abicodec.Uint256}, context)
		if err != nil {
			return
		}
		parsed.TokenContract = values[0].(common.Address)
		parsed.TokenID = values[1].(*big.Int).String()
	case domain.ERC1155Threshold:
		values, err := abicodec.Decode([]string{abicodec.Address}, context)
		if err != nil {
			return
		}
		parsed.TokenContract = values[0].(common.Address)
	}
}

// Classify fetches the code at every address, at most concurrency at a time,
// and returns the ones that are mechs. Addresses without a mech are absent
// from the result; transport errors abort the scan.
func (i *Introspector) Classify(ctx context.Context, client CodeReader, addresses []common.Address, concurrency int) (map[common.Address]*domain.ParsedBytecode, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var (
		mu    sync.Mutex
		found = make(map[common.Address]*domain.ParsedBytecode)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, addr := range addresses {
		g.Go(func() error {
			code, err := client.CodeAt(gctx, addr)
			if err != nil {
				return fmt.Errorf("failed to get code at %s: %w", addr.Hex(), err)
			}
			parsed, ok := i.Parse(code)
			if !ok {
				return nil
			}
			mu.Lock()
			found[addr] = parsed
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return found, nil
}
