// Package signature frames EIP-1271 contract signatures for mechs.
//
// A mech signature tells a verifier to resolve r as a contract and ask it,
// through isValidSignature, whether data is a valid signature of the message
// by the mech's current operator. The codec only frames; it never verifies.
package signature

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gnosisguild/mech-go/internal/domain"
)

const (
	wordSize = 32

	// DataOffset is the value of s: the byte offset of the length word
	DataOffset = 2*wordSize + 1

	// ContractSignatureV marks the signature as an EIP-1271 contract signature
	ContractSignatureV = 0

	// MinLength is the static frame: r, s, v and the length word
	MinLength = DataOffset + wordSize
)

// MagicValue is what isValidSignature returns for a valid signature
var MagicValue = [4]byte{0x16, 0x26, 0xba, 0x7e}

// Encode frames inner as a contract signature of mech
func Encode(mech common.Address, inner []byte) []byte {
	out := make([]byte, 0, MinLength+len(inner))
	out = append(out, common.LeftPadBytes(mech.Bytes(), wordSize)...)
	out = append(out, common.LeftPadBytes(big.NewInt(DataOffset).Bytes(), wordSize)...)
	out = append(out, ContractSignatureV)
	out = append(out, common.LeftPadBytes(new(big.Int).SetUint64(uint64(len(inner))).Bytes(), wordSize)...)
	return append(out, inner...)
}

// Decode is the inverse of Encode
func Decode(sig []byte) (*domain.SignatureEnvelope, error) {
	if len(sig) < MinLength {
		return nil, fmt.Errorf("%w: got %d bytes, need at least %d", domain.ErrTruncatedSignature, len(sig), MinLength)
	}

	r := sig[:wordSize]
	s := sig[wordSize : 2*wordSize]
	v := sig[2*wordSize]
	lengthWord := sig[DataOffset:MinLength]
	data := sig[MinLength:]

	if !isZero(r[:wordSize-common.AddressLength]) {
		return nil, domain.MalformedInput("r is not a left-padded address")
	}
	offset := new(big.Int).SetBytes(s)
	if offset.Cmp(big.NewInt(DataOffset)) != 0 {
		return nil, domain.MalformedInput("s must be %d, got %s", DataOffset, offset)
	}
	if v != ContractSignatureV {
		return nil, domain.MalformedInput("v must be %d for a contract signature, got %d", ContractSignatureV, v)
	}

	length := new(big.Int).SetBytes(lengthWord)
	if !length.IsUint64() || length.Uint64() > uint64(len(data)) {
		return nil, fmt.Errorf("%w: length word claims %s bytes but only %d follow", domain.ErrTruncatedSignature, length, len(data))
	}
	if length.Uint64() < uint64(len(data)) {
		return nil, domain.MalformedInput("%d trailing bytes after signature data", uint64(len(data))-length.Uint64())
	}

	return &domain.SignatureEnvelope{
		Mech:   common.BytesToAddress(r),
		Offset: offset.Uint64(),
		V:      v,
		Length: length.Uint64(),
		Data:   bytes.Clone(data),
	}, nil
}

// IsContractSignature reports whether sig looks like a framed contract
// signature, without fully decoding it
func IsContractSignature(sig []byte) bool {
	if len(sig) < MinLength || sig[2*wordSize] != ContractSignatureV {
		return false
	}
	return new(big.Int).SetBytes(sig[wordSize:2*wordSize]).Cmp(big.NewInt(DataOffset)) == 0
}

// IsMagicValue reports whether the return data of isValidSignature accepts the signature.
// The bytes4 result is ABI-encoded left-aligned in a 32-byte word.
func IsMagicValue(ret []byte) bool {
	if len(ret) < len(MagicValue) {
		return false
	}
	return bytes.Equal(ret[:len(MagicValue)], MagicValue[:])
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
