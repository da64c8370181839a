package proxy

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gnosisguild/mech-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mastercopy = common.HexToAddress("0xbebebebebebebebebebebebebebebebebebebebe")

func TestClone(t *testing.T) {
	clone := Clone(mastercopy)
	assert.Len(t, clone, CloneSize)
	assert.Equal(t,
		"0x363d3d373d3d3d363d73bebebebebebebebebebebebebebebebebebebebe5af43d82803e903d91602b57fd5bf3",
		hexutil.Encode(clone))
}

func TestModuleProxyInitCode(t *testing.T) {
	code := ModuleProxyInitCode(mastercopy)
	assert.Equal(t,
		"0x602d8060093d393df3363d3d373d3d3d363d73bebebebebebebebebebebebebebebebebebebebe5af43d82803e903d91602b57fd5bf3",
		hexutil.Encode(code))
}

func TestBuildProxyBytecode(t *testing.T) {
	context := bytes.Repeat([]byte{0xab}, 64)

	code, err := BuildProxyBytecode(mastercopy, context)
	require.NoError(t, err)

	// 0x2d + 64 + 1 = 0x6e
	assert.Equal(t, "0x3d61006e80600b3d3981f3", hexutil.Encode(code[:11]))
	assert.Equal(t, Clone(mastercopy), code[11:11+CloneSize])
	assert.Equal(t, byte(0x00), code[11+CloneSize])
	assert.Equal(t, context, code[11+CloneSize+1:])
}

func TestBuildProxyBytecode_EmptyContext(t *testing.T) {
	code, err := BuildProxyBytecode(mastercopy, nil)
	require.NoError(t, err)
	assert.Equal(t, "0x3d61002e80600b3d3981f3", hexutil.Encode(code[:11]))
	assert.Len(t, code, 11+CloneSize+1)
}

func TestBuildProxyBytecodeRaw_InvalidMastercopy(t *testing.T) {
	for _, raw := range [][]byte{nil, make([]byte, 19), make([]byte, 21), make([]byte, 32)} {
		_, err := BuildProxyBytecodeRaw(raw, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidMastercopy, "len %d", len(raw))
	}

	code, err := BuildProxyBytecodeRaw(mastercopy.Bytes(), []byte{1})
	require.NoError(t, err)
	expected, err := BuildProxyBytecode(mastercopy, []byte{1})
	require.NoError(t, err)
	assert.Equal(t, expected, code)
}

func TestBuildProxyBytecode_ContextTooLarge(t *testing.T) {
	_, err := BuildProxyBytecode(mastercopy, make([]byte, MaxMechFactoryContext+1))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestTokenboundInitCode(t *testing.T) {
	context := make([]byte, 128)
	code, err := TokenboundInitCode(mastercopy, context)
	require.NoError(t, err)

	// 0x2d + 0x80 = 0xad, the canonical ERC-6551 account size
	assert.Equal(t, "0x3d60ad80600a3d3981f3", hexutil.Encode(code[:10]))
	assert.Len(t, code, 10+CloneSize+128)

	_, err = TokenboundInitCode(mastercopy, make([]byte, MaxERC6551Context+1))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestRuntimeCode(t *testing.T) {
	context := []byte{1, 2, 3}

	mechFactory, err := BuildProxyBytecode(mastercopy, context)
	require.NoError(t, err)
	tokenbound, err := TokenboundInitCode(mastercopy, make([]byte, 128))
	require.NoError(t, err)

	tests := []struct {
		name     string
		initCode []byte
		want     []byte
		ok       bool
	}{
		{"module proxy", ModuleProxyInitCode(mastercopy), Clone(mastercopy), true},
		{"mech factory", mechFactory, append(append(Clone(mastercopy), 0x00), context...), true},
		{"erc6551", tokenbound, append(Clone(mastercopy), make([]byte, 128)...), true},
		{"truncated mech factory", mechFactory[:len(mechFactory)-1], nil, false},
		{"runtime is not init code", Clone(mastercopy), nil, false},
		{"empty", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RuntimeCode(tt.initCode)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestInitCode_Dispatch(t *testing.T) {
	_, err := InitCode(domain.LayoutModuleProxy, mastercopy, []byte{1})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = InitCode("nope", mastercopy, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	code, err := InitCode(domain.LayoutModuleProxy, mastercopy, nil)
	require.NoError(t, err)
	assert.Equal(t, ModuleProxyInitCode(mastercopy), code)
}
