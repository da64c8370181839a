package usecase

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gnosisguild/mech-go/internal/abicodec"
	"github.com/gnosisguild/mech-go/internal/domain"
	"github.com/gnosisguild/mech-go/internal/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyMechSignature(t *testing.T) {
	mech := common.HexToAddress("0xcafecafecafecafecafecafecafecafecafecafe")
	inner := bytes.Repeat([]byte{0x11}, 65)
	hash := common.HexToHash("0xabcdef")

	magic := make([]byte, 32)
	copy(magic, signature.MagicValue[:])

	tests := []struct {
		name    string
		ret     []byte
		callErr error
		valid   bool
	}{
		{"magic value", magic, nil, true},
		{"zero value", make([]byte, 32), nil, false},
		{"reverted", nil, fmt.Errorf("%w: execution reverted", domain.ErrReverted), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := newFakeChain()
			chain.callRet = tt.ret
			chain.callErr = tt.callErr

			result, err := NewVerifyMechSignature(chain).Run(context.Background(), hash, signature.Encode(mech, inner))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
			assert.Equal(t, mech, result.Envelope.Mech)

			selector, args, ok := abicodec.SplitCalldata(chain.lastCall)
			require.True(t, ok)
			assert.Equal(t, funcIsValidSignature.Selector, selector)
			values, err := abicodec.Decode([]string{abicodec.Bytes32, abicodec.Bytes}, args)
			require.NoError(t, err)
			assert.Equal(t, [32]byte(hash), values[0])
			assert.Equal(t, inner, values[1])
		})
	}
}

func TestVerifyMechSignature_Truncated(t *testing.T) {
	chain := newFakeChain()
	_, err := NewVerifyMechSignature(chain).Run(context.Background(), common.Hash{}, make([]byte, 64))
	assert.ErrorIs(t, err, domain.ErrTruncatedSignature)
	assert.Zero(t, chain.callCount)
}

func TestVerifyMechSignature_TransportError(t *testing.T) {
	chain := newFakeChain()
	chain.callErr = fmt.Errorf("connection reset")
	_, err := NewVerifyMechSignature(chain).Run(context.Background(), common.Hash{}, signature.Encode(common.Address{}, nil))
	assert.ErrorContains(t, err, "connection reset")
}
