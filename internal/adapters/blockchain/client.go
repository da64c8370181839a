package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gnosisguild/mech-go/internal/domain"
	"github.com/gnosisguild/mech-go/internal/domain/config"
	"github.com/gnosisguild/mech-go/internal/domain/models"
	"github.com/gnosisguild/mech-go/internal/usecase"
)

// DefaultPollInterval is how often WaitForReceipt asks for the receipt
const DefaultPollInterval = 2 * time.Second

// Backend is the part of ethclient the adapter uses
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Client implements usecase.ChainClient over ethclient. It connects on first
// use so that offline commands never need an RPC endpoint.
type Client struct {
	cfg *config.RuntimeConfig
	log *slog.Logger

	PollInterval time.Duration

	once    sync.Once
	dialErr error
	client  Backend
	closer  func()
	chainID uint64

	keyOnce sync.Once
	keyErr  error
	key     *ecdsa.PrivateKey
	from    common.Address
}

// NewClient creates a lazily connecting client for the configured network
func NewClient(cfg *config.RuntimeConfig, log *slog.Logger) *Client {
	return &Client{
		cfg:          cfg,
		log:          log,
		PollInterval: DefaultPollInterval,
	}
}

// NewClientWithBackend creates a client over an already connected backend
func NewClientWithBackend(cfg *config.RuntimeConfig, log *slog.Logger, backend Backend) *Client {
	c := NewClient(cfg, log)
	c.client = backend
	return c
}

func (c *Client) connect(ctx context.Context) (Backend, error) {
	c.once.Do(func() {
		if c.client == nil {
			if c.cfg.Network == nil || c.cfg.Network.RPCURL == "" {
				c.dialErr = fmt.Errorf("no network selected, pass --network or --rpc-url")
				return
			}
			client, err := ethclient.DialContext(ctx, c.cfg.Network.RPCURL)
			if err != nil {
				c.dialErr = fmt.Errorf("failed to connect to RPC: %w", err)
				return
			}
			c.client = client
			c.closer = client.Close
		}

		networkChainID, err := c.client.ChainID(ctx)
		if err != nil {
			c.dialErr = fmt.Errorf("failed to get chain ID: %w", err)
			return
		}

		// A zero expected chain ID accepts whatever the node reports
		if c.cfg.Network != nil && c.cfg.Network.ChainID != 0 && networkChainID.Uint64() != c.cfg.Network.ChainID {
			c.dialErr = fmt.Errorf("chain ID mismatch: expected %d, got %d", c.cfg.Network.ChainID, networkChainID.Uint64())
			return
		}

		c.chainID = networkChainID.Uint64()
		c.log.Debug("connected", "chainId", c.chainID)
	})
	if c.dialErr != nil {
		return nil, c.dialErr
	}
	return c.client, nil
}

func (c *Client) signer() (*ecdsa.PrivateKey, common.Address, error) {
	c.keyOnce.Do(func() {
		raw := strings.TrimPrefix(strings.TrimSpace(c.cfg.PrivateKey), "0x")
		if raw == "" {
			c.keyErr = fmt.Errorf("no deployer key configured, set MECH_PRIVATE_KEY or pass --private-key")
			return
		}
		key, err := crypto.HexToECDSA(raw)
		if err != nil {
			c.keyErr = fmt.Errorf("invalid private key: %w", err)
			return
		}
		c.key = key
		c.from = crypto.PubkeyToAddress(key.PublicKey)
	})
	return c.key, c.from, c.keyErr
}

// ChainID returns the chain ID of the connected network
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	if _, err := c.connect(ctx); err != nil {
		return 0, err
	}
	return c.chainID, nil
}

// CodeAt returns the code at address in the latest block
func (c *Client) CodeAt(ctx context.Context, address common.Address) ([]byte, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	return client.CodeAt(ctx, address, nil)
}

// BalanceAt returns the balance of address in the latest block
func (c *Client) BalanceAt(ctx context.Context, address common.Address) (*big.Int, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	return client.BalanceAt(ctx, address, nil)
}

// CallContract runs an eth_call; reverts surface as domain.ErrReverted
func (c *Client) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	ret, err := client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		if isRevert(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrReverted, err)
		}
		return nil, err
	}
	return ret, nil
}

// SendTransaction signs tx as an EIP-1559 transaction and broadcasts it
func (c *Client) SendTransaction(ctx context.Context, tx *models.Transaction) (common.Hash, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	key, from, err := c.signer()
	if err != nil {
		return common.Hash{}, err
	}

	nonce, err := client.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("get nonce: %w", err)
	}
	tip, err := client.SuggestGasTipCap(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("get gas tip: %w", err)
	}
	head, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return common.Hash{}, fmt.Errorf("get latest header: %w", err)
	}
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))

	value := tx.Value
	if value == nil {
		value = new(big.Int)
	}
	gas, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From:      from,
		To:        tx.To,
		GasFeeCap: feeCap,
		GasTipCap: tip,
		Value:     value,
		Data:      tx.Data,
	})
	if err != nil {
		if isRevert(err) {
			return common.Hash{}, fmt.Errorf("%w: %v", domain.ErrReverted, err)
		}
		return common.Hash{}, fmt.Errorf("estimate gas: %w", err)
	}

	// EIP-1559 only
	signed, err := types.SignTx(types.NewTx(&types.DynamicFeeTx{
		ChainID:   new(big.Int).SetUint64(c.chainID),
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        tx.To,
		Value:     value,
		Data:      tx.Data,
	}), types.LatestSignerForChainID(new(big.Int).SetUint64(c.chainID)), key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign tx: %w", err)
	}

	if err := client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("send tx: %w", err)
	}
	c.log.Debug("sent transaction", "hash", signed.Hash().Hex(), "from", from.Hex(), "nonce", nonce, "gas", gas)
	return signed.Hash(), nil
}

// SendRawTransaction broadcasts an already signed transaction
func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, domain.InvalidArgument("raw transaction is not a valid signed transaction: %v", err)
	}
	if err := client.SendTransaction(ctx, tx); err != nil {
		return common.Hash{}, fmt.Errorf("send raw tx: %w", err)
	}
	return tx.Hash(), nil
}

// WaitForReceipt polls for the receipt until it exists or ctx is done.
// Receipt lookup errors are retried; only ctx ends the wait.
func (c *Client) WaitForReceipt(ctx context.Context, hash common.Hash) (*models.Receipt, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}

	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()

	for {
		receipt, err := client.TransactionReceipt(ctx, hash)
		if err == nil {
			return toReceipt(receipt), nil
		}
		// Not found or a transient node error, retry until ctx is done
		if !errors.Is(err, ethereum.NotFound) && ctx.Err() == nil {
			c.log.Debug("receipt retrieval failed", "hash", hash.Hex(), "err", err)
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: tx %s", domain.ErrTimeout, hash.Hex())
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close releases the RPC connection
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

func toReceipt(r *types.Receipt) *models.Receipt {
	out := &models.Receipt{
		TxHash:          r.TxHash,
		Status:          r.Status,
		GasUsed:         r.GasUsed,
		ContractAddress: r.ContractAddress,
	}
	if r.BlockNumber != nil {
		out.BlockNumber = r.BlockNumber.Uint64()
	}
	return out
}

func isRevert(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "execution reverted")
}

// Ensure the adapter implements the interface
var _ usecase.ChainClient = (*Client)(nil)
