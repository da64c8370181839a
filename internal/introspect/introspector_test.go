package introspect

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gnosisguild/mech-go/internal/abicodec"
	"github.com/gnosisguild/mech-go/internal/domain"
	"github.com/gnosisguild/mech-go/internal/proxy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	erc721Mastercopy     = common.HexToAddress("0x19fC90aA870491db73049733636a0B55a6e3baB5")
	tokenboundMastercopy = common.HexToAddress("0x66296d9F03c53e076cD34ED189BA3158C82c4FFf")
	zodiacMastercopy     = common.HexToAddress("0x67B2736C4eb23A980D5E9DCAf3550474Bdd1251c")
	token                = common.HexToAddress("0x1111111111111111111111111111111111111111")
)

func newTestIntrospector() *Introspector {
	return NewIntrospector(map[common.Address]domain.MechVariant{
		erc721Mastercopy:     domain.ERC721Bound,
		tokenboundMastercopy: domain.ERC721Tokenbound,
		zodiacMastercopy:     domain.ZodiacModuleBound,
	})
}

func runtimeOf(t *testing.T, initCode []byte) []byte {
	t.Helper()
	runtime, ok := proxy.RuntimeCode(initCode)
	require.True(t, ok)
	return runtime
}

func TestParse_RoundTrip(t *testing.T) {
	in := newTestIntrospector()

	for _, size := range []int{0, 32, 128} {
		context := make([]byte, size)
		_, err := rand.Read(context)
		require.NoError(t, err)

		initCode, err := proxy.BuildProxyBytecode(erc721Mastercopy, context)
		require.NoError(t, err)

		for name, code := range map[string][]byte{"init": initCode, "runtime": runtimeOf(t, initCode)} {
			parsed, ok := in.Parse(code)
			require.True(t, ok, "%s, context %d", name, size)
			assert.Equal(t, erc721Mastercopy, parsed.Implementation)
			assert.Equal(t, domain.LayoutMechFactory, parsed.Layout)
			assert.True(t, bytes.Equal(context, parsed.Context), "%s, context %d", name, size)
			assert.Equal(t, proxy.CloneHeader, parsed.Header)
			assert.Equal(t, proxy.CloneFooter, parsed.Footer)
		}
	}
}

func TestParse_MechFactoryTokenFields(t *testing.T) {
	context := abicodec.MustEncode([]string{abicodec.Address, abicodec.Uint256}, token, big.NewInt(42))
	code, err := proxy.BuildProxyBytecode(erc721Mastercopy, context)
	require.NoError(t, err)

	parsed, ok := newTestIntrospector().Parse(code)
	require.True(t, ok)
	assert.Equal(t, domain.ERC721Bound, parsed.Variant)
	assert.Equal(t, token, parsed.TokenContract)
	assert.Equal(t, "42", parsed.TokenID)
	assert.Nil(t, parsed.ChainID)
}

func TestParse_Tokenbound(t *testing.T) {
	salt := common.HexToHash("0x07")
	context := abicodec.MustEncode(
		[]string{abicodec.Bytes32, abicodec.Uint256, abicodec.Address, abicodec.Uint256},
		salt, big.NewInt(100), token, big.NewInt(9),
	)
	code, err := proxy.TokenboundInitCode(tokenboundMastercopy, context)
	require.NoError(t, err)

	parsed, ok := newTestIntrospector().Parse(runtimeOf(t, code))
	require.True(t, ok)
	assert.Equal(t, domain.LayoutERC6551, parsed.Layout)
	assert.Equal(t, domain.ERC721Tokenbound, parsed.Variant)
	assert.Equal(t, int64(7), parsed.Salt.Int64())
	assert.Equal(t, int64(100), parsed.ChainID.Int64())
	assert.Equal(t, token, parsed.TokenContract)
	assert.Equal(t, "9", parsed.TokenID)
}

func TestParse_ModuleProxy(t *testing.T) {
	parsed, ok := newTestIntrospector().Parse(proxy.Clone(zodiacMastercopy))
	require.True(t, ok)
	assert.Equal(t, domain.LayoutModuleProxy, parsed.Layout)
	assert.Equal(t, domain.ZodiacModuleBound, parsed.Variant)
	assert.Empty(t, parsed.Context)

	parsed, ok = newTestIntrospector().Parse(proxy.ModuleProxyInitCode(zodiacMastercopy))
	require.True(t, ok)
	assert.Equal(t, zodiacMastercopy, parsed.Implementation)
}

func TestParse_NotAMech(t *testing.T) {
	in := newTestIntrospector()

	blob := make([]byte, 200)
	_, err := rand.Read(blob)
	require.NoError(t, err)

	unknown, err := proxy.BuildProxyBytecode(common.HexToAddress("0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"), nil)
	require.NoError(t, err)

	zodiacWithContext, err := proxy.BuildProxyBytecode(zodiacMastercopy, make([]byte, 32))
	require.NoError(t, err)
	erc721Tokenbound, err := proxy.TokenboundInitCode(erc721Mastercopy, make([]byte, 128))
	require.NoError(t, err)

	unaligned := append(proxy.Clone(erc721Mastercopy), 0x00, 0x01, 0x02)
	noStop := append(proxy.Clone(erc721Mastercopy), bytes.Repeat([]byte{0x01}, 33)...)

	tests := []struct {
		name string
		code []byte
	}{
		{"nil", nil},
		{"empty", []byte{}},
		{"random 200 bytes", blob},
		{"unknown implementation", unknown},
		{"truncated clone", proxy.Clone(erc721Mastercopy)[:44]},
		{"unaligned context", unaligned},
		{"context without stop byte", noStop},
		{"bare clone of a mech factory mastercopy", proxy.Clone(erc721Mastercopy)},
		{"module proxy mastercopy with context", zodiacWithContext},
		{"mech factory mastercopy with tokenbound layout", erc721Tokenbound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				parsed *domain.ParsedBytecode
				ok     bool
			)
			require.NotPanics(t, func() { parsed, ok = in.Parse(tt.code) })
			assert.False(t, ok)
			assert.Nil(t, parsed)
		})
	}
}

func TestParse_RandomInputNeverPanics(t *testing.T) {
	in := newTestIntrospector()
	for i := 0; i < 500; i++ {
		blob := make([]byte, i%300)
		_, _ = rand.Read(blob)
		if i%2 == 0 && len(blob) >= proxy.CloneSize {
			copy(blob, proxy.Clone(erc721Mastercopy))
		}
		assert.NotPanics(t, func() { in.Parse(blob) })
	}
}

type fakeCodeReader struct {
	code     map[common.Address][]byte
	failOn   common.Address
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeCodeReader) CodeAt(_ context.Context, addr common.Address) ([]byte, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if addr == f.failOn {
		return nil, errors.New("connection refused")
	}
	return f.code[addr], nil
}

func TestClassify(t *testing.T) {
	mechCode, err := proxy.BuildProxyBytecode(erc721Mastercopy, make([]byte, 64))
	require.NoError(t, err)

	reader := &fakeCodeReader{code: map[common.Address][]byte{}}
	var addresses []common.Address
	for i := 0; i < 20; i++ {
		addr := common.BigToAddress(big.NewInt(int64(i + 1)))
		addresses = append(addresses, addr)
		if i%4 == 0 {
			reader.code[addr] = runtimeOf(t, mechCode)
		} else if i%4 == 1 {
			reader.code[addr] = []byte{0x60, 0x80}
		}
	}

	found, err := newTestIntrospector().Classify(context.Background(), reader, addresses, 3)
	require.NoError(t, err)
	assert.Len(t, found, 5)
	for addr, parsed := range found {
		assert.Equal(t, runtimeOf(t, mechCode), reader.code[addr])
		assert.Equal(t, erc721Mastercopy, parsed.Implementation)
	}
	assert.LessOrEqual(t, reader.peak.Load(), int32(3))
}

func TestClassify_TransportError(t *testing.T) {
	reader := &fakeCodeReader{
		code:   map[common.Address][]byte{},
		failOn: common.BigToAddress(big.NewInt(2)),
	}
	addresses := []common.Address{common.BigToAddress(big.NewInt(1)), common.BigToAddress(big.NewInt(2))}

	_, err := newTestIntrospector().Classify(context.Background(), reader, addresses, 0)
	assert.ErrorContains(t, err, "connection refused")
}
