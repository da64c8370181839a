package blockchain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/gnosisguild/mech-go/internal/domain"
	"github.com/gnosisguild/mech-go/internal/domain/config"
	"github.com/gnosisguild/mech-go/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const simulatedChainID = 1337

var (
	// PUSH1 0 PUSH1 0 REVERT
	revertingCode = []byte{0x60, 0x00, 0x60, 0x00, 0xfd}
	reverter      = common.HexToAddress("0x000000000000000000000000000000000000dead")
)

func newSimulated(t *testing.T) (*simulated.Backend, *Client, common.Address) {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	from := crypto.PubkeyToAddress(key.PublicKey)

	balance, _ := new(big.Int).SetString("100000000000000000000", 10)
	sim := simulated.NewBackend(types.GenesisAlloc{
		from:     {Balance: balance},
		reverter: {Code: revertingCode, Balance: new(big.Int)},
	})
	t.Cleanup(func() { _ = sim.Close() })

	cfg := &config.RuntimeConfig{
		Network:    &config.Network{Name: "simulated", ChainID: simulatedChainID},
		PrivateKey: common.Bytes2Hex(crypto.FromECDSA(key)),
	}
	client := NewClientWithBackend(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), sim.Client())
	client.PollInterval = 10 * time.Millisecond
	return sim, client, from
}

func TestClient_ChainIDAndCode(t *testing.T) {
	_, client, _ := newSimulated(t)
	ctx := context.Background()

	id, err := client.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(simulatedChainID), id)

	code, err := client.CodeAt(ctx, reverter)
	require.NoError(t, err)
	assert.Equal(t, revertingCode, code)

	code, err = client.CodeAt(ctx, common.HexToAddress("0x01"))
	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestClient_ChainIDMismatch(t *testing.T) {
	sim := simulated.NewBackend(types.GenesisAlloc{})
	t.Cleanup(func() { _ = sim.Close() })

	cfg := &config.RuntimeConfig{Network: &config.Network{Name: "mainnet", ChainID: 1}}
	client := NewClientWithBackend(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), sim.Client())

	_, err := client.CodeAt(context.Background(), reverter)
	assert.ErrorContains(t, err, "chain ID mismatch: expected 1, got 1337")
}

func TestClient_NoNetwork(t *testing.T) {
	client := NewClient(&config.RuntimeConfig{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := client.ChainID(context.Background())
	assert.ErrorContains(t, err, "no network selected")
}

func TestClient_CallContractRevert(t *testing.T) {
	_, client, _ := newSimulated(t)
	_, err := client.CallContract(context.Background(), reverter, []byte{0x16, 0x26, 0xba, 0x7e})
	assert.ErrorIs(t, err, domain.ErrReverted)
}

func TestClient_SendTransactionAndWait(t *testing.T) {
	sim, client, from := newSimulated(t)
	ctx := context.Background()

	to := common.HexToAddress("0x00000000000000000000000000000000000000b0")
	hash, err := client.SendTransaction(ctx, &models.Transaction{To: &to, Value: big.NewInt(12345)})
	require.NoError(t, err)
	sim.Commit()

	receipt, err := client.WaitForReceipt(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, hash, receipt.TxHash)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
	assert.NotZero(t, receipt.BlockNumber)

	balance, err := client.BalanceAt(ctx, to)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), balance.Int64())

	spent, err := client.BalanceAt(ctx, from)
	require.NoError(t, err)
	assert.Positive(t, spent.Sign())
}

func TestClient_WaitForReceiptTimeout(t *testing.T) {
	_, client, _ := newSimulated(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.WaitForReceipt(ctx, common.HexToHash("0x01"))
	assert.ErrorIs(t, err, domain.ErrTimeout)
}

// flakyBackend fails the first failures receipt lookups with err, or all of them when failures is negative
type flakyBackend struct {
	Backend
	err      error
	failures int
	receipt  *types.Receipt
	calls    int
}

func (b *flakyBackend) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(simulatedChainID), nil
}

func (b *flakyBackend) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	b.calls++
	if b.failures < 0 || b.calls <= b.failures {
		return nil, b.err
	}
	if b.receipt == nil {
		return nil, ethereum.NotFound
	}
	return b.receipt, nil
}

func newFlakyClient(backend *flakyBackend) *Client {
	cfg := &config.RuntimeConfig{Network: &config.Network{Name: "flaky"}}
	client := NewClientWithBackend(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), backend)
	client.PollInterval = time.Millisecond
	return client
}

func TestClient_WaitForReceiptRetriesLookupErrors(t *testing.T) {
	hash := common.HexToHash("0xabc")
	backend := &flakyBackend{
		err:      errors.New("transaction indexing is in progress"),
		failures: 2,
		receipt:  &types.Receipt{TxHash: hash, Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(7)},
	}

	receipt, err := newFlakyClient(backend).WaitForReceipt(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, 3, backend.calls)
	assert.Equal(t, hash, receipt.TxHash)
	assert.Equal(t, uint64(7), receipt.BlockNumber)
}

func TestClient_WaitForReceiptTimeoutOnLookupErrors(t *testing.T) {
	backend := &flakyBackend{err: errors.New("transaction indexing is in progress"), failures: -1}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newFlakyClient(backend).WaitForReceipt(ctx, common.HexToHash("0x01"))
	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.Greater(t, backend.calls, 1)
}

func TestClient_SendRawTransaction(t *testing.T) {
	_, client, _ := newSimulated(t)

	_, err := client.SendRawTransaction(context.Background(), []byte{0x01, 0x02})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestClient_MissingKey(t *testing.T) {
	sim := simulated.NewBackend(types.GenesisAlloc{})
	t.Cleanup(func() { _ = sim.Close() })

	cfg := &config.RuntimeConfig{Network: &config.Network{Name: "simulated"}}
	client := NewClientWithBackend(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), sim.Client())

	to := common.Address{}
	_, err := client.SendTransaction(context.Background(), &models.Transaction{To: &to})
	assert.ErrorContains(t, err, "MECH_PRIVATE_KEY")
}
