package domain

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors for mech operations
var (
	// ErrInvalidArgument is returned for malformed caller input (addresses, lengths, types)
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMalformedInput is returned when encoded data is too short for its declared layout
	ErrMalformedInput = errors.New("malformed input")

	// ErrInvalidMastercopy is returned when a mastercopy address is not exactly 20 bytes
	ErrInvalidMastercopy = errors.New("invalid mastercopy")

	// ErrTruncatedSignature is returned when a mech signature is shorter than its static head
	ErrTruncatedSignature = errors.New("truncated signature")

	// ErrUnsupportedNetwork is returned when the connected chain is not in the allow-list
	ErrUnsupportedNetwork = errors.New("unsupported network")

	// ErrMastercopyMissing is returned when a proxy is planned against an undeployed mastercopy
	ErrMastercopyMissing = errors.New("mastercopy missing")

	// ErrFactoryMissing is returned when the factory a deployment goes through has no code
	ErrFactoryMissing = errors.New("factory missing")

	// ErrAlreadyDeployed signals that code already exists at the predicted address
	ErrAlreadyDeployed = errors.New("already deployed")

	// ErrDerivationMismatch is returned when the chain disagrees with a derived address
	ErrDerivationMismatch = errors.New("derivation mismatch")

	// ErrReverted is returned when a deployment transaction was mined with a failed status
	ErrReverted = errors.New("transaction reverted")

	// ErrTimeout is returned when waiting for a receipt exceeded the caller's deadline
	ErrTimeout = errors.New("timed out waiting for receipt")
)

// AlreadyDeployedErr names the occupied address
type AlreadyDeployedErr struct {
	Address common.Address
}

func (e AlreadyDeployedErr) Error() string {
	return fmt.Sprintf("contract already deployed at %s", e.Address.Hex())
}

func (e AlreadyDeployedErr) Unwrap() error { return ErrAlreadyDeployed }

// MastercopyMissingErr names the variant and the address where its mastercopy was expected
type MastercopyMissingErr struct {
	Variant MechVariant
	Address common.Address
}

func (e MastercopyMissingErr) Error() string {
	return fmt.Sprintf("%s mastercopy is not deployed at %s, run `mech mastercopy deploy %s` first",
		e.Variant, e.Address.Hex(), e.Variant)
}

func (e MastercopyMissingErr) Unwrap() error { return ErrMastercopyMissing }

// DerivationMismatchErr reports what was predicted against what the chain shows
type DerivationMismatchErr struct {
	Expected common.Address
	Actual   common.Address
	Reason   string
}

func (e DerivationMismatchErr) Error() string {
	if e.Actual == (common.Address{}) || e.Actual == e.Expected {
		return fmt.Sprintf("derivation mismatch at %s: %s", e.Expected.Hex(), e.Reason)
	}
	return fmt.Sprintf("derivation mismatch: expected %s, got %s: %s", e.Expected.Hex(), e.Actual.Hex(), e.Reason)
}

func (e DerivationMismatchErr) Unwrap() error { return ErrDerivationMismatch }

// UnsupportedNetworkErr carries the offending chain ID
type UnsupportedNetworkErr struct {
	ChainID   uint64
	Supported []uint64
}

func (e UnsupportedNetworkErr) Error() string {
	return fmt.Sprintf("chain %d is not supported (supported: %v)", e.ChainID, e.Supported)
}

func (e UnsupportedNetworkErr) Unwrap() error { return ErrUnsupportedNetwork }

// InvalidArgument wraps a formatted message with ErrInvalidArgument
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// MalformedInput wraps a formatted message with ErrMalformedInput
func MalformedInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedInput, fmt.Sprintf(format, args...))
}
