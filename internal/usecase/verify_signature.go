package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gnosisguild/mech-go/internal/abicodec"
	"github.com/gnosisguild/mech-go/internal/domain"
	"github.com/gnosisguild/mech-go/internal/signature"
	"github.com/lmittmann/w3"
)

var funcIsValidSignature = w3.MustNewFunc("isValidSignature(bytes32 hash, bytes signature)", "bytes4 magicValue")

// VerifyMechSignatureResult contains the verdict of the mech
type VerifyMechSignatureResult struct {
	Envelope *domain.SignatureEnvelope
	Valid    bool
}

// VerifyMechSignature asks the mech named in a framed signature whether the
// inner signature is valid for hash, the way an EIP-1271 verifier would
type VerifyMechSignature struct {
	client ChainClient
}

// NewVerifyMechSignature creates a new VerifyMechSignature use case
func NewVerifyMechSignature(client ChainClient) *VerifyMechSignature {
	return &VerifyMechSignature{client: client}
}

// Run decodes sig and calls isValidSignature(hash, data) on its mech
func (uc *VerifyMechSignature) Run(ctx context.Context, hash common.Hash, sig []byte) (*VerifyMechSignatureResult, error) {
	env, err := signature.Decode(sig)
	if err != nil {
		return nil, err
	}

	data, err := abicodec.Calldata(funcIsValidSignature.Selector,
		[]string{abicodec.Bytes32, abicodec.Bytes}, hash, env.Data)
	if err != nil {
		return nil, err
	}

	ret, err := uc.client.CallContract(ctx, env.Mech, data)
	if err != nil {
		// a reverting isValidSignature means invalid, not a transport failure
		if errors.Is(err, domain.ErrReverted) {
			return &VerifyMechSignatureResult{Envelope: env}, nil
		}
		return nil, fmt.Errorf("failed to call isValidSignature on %s: %w", env.Mech.Hex(), err)
	}

	return &VerifyMechSignatureResult{
		Envelope: env,
		Valid:    signature.IsMagicValue(ret),
	}, nil
}
