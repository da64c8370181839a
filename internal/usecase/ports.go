package usecase

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gnosisguild/mech-go/internal/domain"
	"github.com/gnosisguild/mech-go/internal/domain/config"
	"github.com/gnosisguild/mech-go/internal/domain/models"
)

// ChainClient is the minimal network capability the planner needs
type ChainClient interface {
	ChainID(ctx context.Context) (uint64, error)
	CodeAt(ctx context.Context, address common.Address) ([]byte, error)
	BalanceAt(ctx context.Context, address common.Address) (*big.Int, error)
	CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error)

	// SendTransaction signs and broadcasts tx from the configured key
	SendTransaction(ctx context.Context, tx *models.Transaction) (common.Hash, error)
	// SendRawTransaction broadcasts an already signed transaction
	SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error)
	// WaitForReceipt blocks until the transaction is mined or ctx is done.
	// A ctx deadline surfaces as domain.ErrTimeout.
	WaitForReceipt(ctx context.Context, hash common.Hash) (*models.Receipt, error)
}

// NetworkResolver resolves foundry.toml rpc_endpoints
type NetworkResolver interface {
	GetNetworks(ctx context.Context) []string
	ResolveNetwork(ctx context.Context, name string) (*config.Network, error)
}

// VariantSelector asks the user to pick a mech variant
type VariantSelector interface {
	SelectVariant(ctx context.Context, variants []domain.MechVariant, prompt string) (domain.MechVariant, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// Stages reported while deploying
const (
	StageChecking   = "checking"
	StageFunding    = "funding"
	StageSubmitting = "submitting"
	StageWaiting    = "waiting"
	StageVerifying  = "verifying"
	StageDone       = "done"
)

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}
