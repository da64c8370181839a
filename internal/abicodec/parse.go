package abicodec

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gnosisguild/mech-go/internal/domain"
)

// ParseAddress parses a 0x-prefixed, 40 hex digit address in any letter case.
// The checksum is not validated; it is only applied on output.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return common.Address{}, domain.InvalidArgument("address %q must start with 0x", s)
	}
	if len(s) != 2+2*common.AddressLength {
		return common.Address{}, domain.InvalidArgument("address %q must be %d bytes", s, common.AddressLength)
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, domain.InvalidArgument("address %q is not hex", s)
	}
	return common.HexToAddress(strings.ToLower(s)), nil
}

// ParseAddresses parses a list of addresses, failing on the first bad one
func ParseAddresses(values []string) ([]common.Address, error) {
	out := make([]common.Address, 0, len(values))
	for _, v := range values {
		addr, err := ParseAddress(v)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

// ParseUint256 parses a decimal or 0x-prefixed hex unsigned integer
func ParseUint256(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, domain.InvalidArgument("empty integer")
	}
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, domain.InvalidArgument("%q is not an integer", s)
	}
	return checkUint256(n)
}

// ParseUint256List parses each element with ParseUint256
func ParseUint256List(values []string) ([]*big.Int, error) {
	out := make([]*big.Int, 0, len(values))
	for _, v := range values {
		n, err := ParseUint256(v)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// ParseSalt parses a bytes32 salt. Empty input is the zero salt; hex input is
// left-padded to 32 bytes; anything else is read as a decimal uint256.
func ParseSalt(s string) (common.Hash, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return common.Hash{}, nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits := s[2:]
		if len(digits) > 64 {
			return common.Hash{}, domain.InvalidArgument("salt %q is longer than 32 bytes", s)
		}
		if len(digits)%2 == 1 {
			digits = "0" + digits
		}
		b, err := hexutil.Decode("0x" + digits)
		if err != nil && digits != "" {
			return common.Hash{}, domain.InvalidArgument("salt %q is not hex: %v", s, err)
		}
		return common.BytesToHash(b), nil
	}
	n, err := ParseUint256(s)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BigToHash(n), nil
}

// ParseHex decodes 0x-prefixed hex, accepting "0x" as empty
func ParseHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "0x" || s == "0X" {
		return []byte{}, nil
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, domain.InvalidArgument("%q is not 0x-prefixed hex: %v", s, err)
	}
	return b, nil
}
