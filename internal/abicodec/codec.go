// Package abicodec is the single place where mech builds and reads ABI-encoded
// parameter blobs. Every derived address hashes bytes produced here, so the
// encoding follows the canonical Ethereum ABI exactly.
package abicodec

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gnosisguild/mech-go/internal/domain"
)

// Supported ABI type names
const (
	Address      = "address"
	Uint8        = "uint8"
	Uint256      = "uint256"
	Uint256Array = "uint256[]"
	AddressArray = "address[]"
	Bytes        = "bytes"
	Bytes32      = "bytes32"
)

var (
	supported = map[string]bool{
		Address:      true,
		Uint8:        true,
		Uint256:      true,
		Uint256Array: true,
		AddressArray: true,
		Bytes:        true,
		Bytes32:      true,
	}

	typeCache sync.Map // string -> abi.Type
)

func lookupType(name string) (abi.Type, error) {
	if !supported[name] {
		return abi.Type{}, domain.InvalidArgument("unsupported ABI type %q", name)
	}
	if t, ok := typeCache.Load(name); ok {
		return t.(abi.Type), nil
	}
	t, err := abi.NewType(name, "", nil)
	if err != nil {
		return abi.Type{}, fmt.Errorf("failed to create ABI type %s: %w", name, err)
	}
	typeCache.Store(name, t)
	return t, nil
}

func arguments(types []string) (abi.Arguments, error) {
	args := make(abi.Arguments, 0, len(types))
	for _, name := range types {
		t, err := lookupType(name)
		if err != nil {
			return nil, err
		}
		args = append(args, abi.Argument{Type: t})
	}
	return args, nil
}

// Encode ABI-encodes values as a tuple of the given types (like abi.encode in Solidity)
func Encode(types []string, values ...any) ([]byte, error) {
	if len(types) != len(values) {
		return nil, domain.InvalidArgument("got %d values for %d types", len(values), len(types))
	}
	args, err := arguments(types)
	if err != nil {
		return nil, err
	}

	normalized := make([]any, len(values))
	for i, v := range values {
		n, err := normalize(types[i], v)
		if err != nil {
			return nil, err
		}
		normalized[i] = n
	}

	encoded, err := args.Pack(normalized...)
	if err != nil {
		return nil, domain.InvalidArgument("failed to encode %v: %v", types, err)
	}
	return encoded, nil
}

// MustEncode is Encode for static inputs known to be valid
func MustEncode(types []string, values ...any) []byte {
	encoded, err := Encode(types, values...)
	if err != nil {
		panic(err)
	}
	return encoded
}

// Decode is the inverse of Encode. Values come back as common.Address, uint8,
// *big.Int, []*big.Int, []common.Address, []byte or [32]byte.
func Decode(types []string, data []byte) ([]any, error) {
	args, err := arguments(types)
	if err != nil {
		return nil, err
	}
	if minLen := 32 * len(types); len(data) < minLen {
		return nil, domain.MalformedInput("need at least %d bytes for %v, got %d", minLen, types, len(data))
	}
	values, err := args.Unpack(data)
	if err != nil {
		return nil, domain.MalformedInput("failed to decode %v: %v", types, err)
	}
	return values, nil
}

// normalize converts convenient Go forms into what go-ethereum's packer expects
// and rejects values the ABI cannot represent.
func normalize(typ string, v any) (any, error) {
	switch typ {
	case Address:
		switch a := v.(type) {
		case common.Address:
			return a, nil
		case string:
			return ParseAddress(a)
		}
	case Uint8:
		switch n := v.(type) {
		case uint8:
			return n, nil
		case int:
			if n < 0 || n > 255 {
				return nil, domain.InvalidArgument("%d does not fit uint8", n)
			}
			return uint8(n), nil
		}
	case Uint256:
		switch n := v.(type) {
		case *big.Int:
			return checkUint256(n)
		case uint64:
			return new(big.Int).SetUint64(n), nil
		case int:
			return checkUint256(big.NewInt(int64(n)))
		}
	case Uint256Array:
		if ns, ok := v.([]*big.Int); ok {
			out := make([]*big.Int, len(ns))
			for i, n := range ns {
				checked, err := checkUint256(n)
				if err != nil {
					return nil, err
				}
				out[i] = checked
			}
			return out, nil
		}
	case AddressArray:
		if as, ok := v.([]common.Address); ok {
			return as, nil
		}
	case Bytes:
		if b, ok := v.([]byte); ok {
			return b, nil
		}
	case Bytes32:
		switch h := v.(type) {
		case [32]byte:
			return h, nil
		case common.Hash:
			return [32]byte(h), nil
		}
	}
	return nil, domain.InvalidArgument("value of type %T cannot be encoded as %s", v, typ)
}

func checkUint256(n *big.Int) (*big.Int, error) {
	if n == nil {
		return nil, domain.InvalidArgument("nil uint256")
	}
	if n.Sign() < 0 || n.Cmp(domain.MaxUint256) > 0 {
		return nil, domain.InvalidArgument("%s is out of uint256 range", n)
	}
	return n, nil
}
