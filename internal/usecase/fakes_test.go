package usecase

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gnosisguild/mech-go/internal/derive"
	"github.com/gnosisguild/mech-go/internal/domain/config"
	"github.com/gnosisguild/mech-go/internal/domain/models"
)

type fixtureArtifacts map[string][]byte

func (f fixtureArtifacts) Bytecode(name string) ([]byte, error) {
	b, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("artifact %s not found", name)
	}
	return b, nil
}

func newFixtureArtifacts() fixtureArtifacts {
	return fixtureArtifacts{
		"ERC721Mech":            common.FromHex("0x60806040526001600055"),
		"ERC1155Mech":           common.FromHex("0x60806040526002600055"),
		"ERC1155ThresholdMech":  common.FromHex("0x60806040526003600055"),
		"ERC721TokenboundMech":  common.FromHex("0x60806040526004600055"),
		"ERC1155TokenboundMech": common.FromHex("0x60806040526005600055"),
		"ZodiacMech":            common.FromHex("0x60806040526006600055"),
		"MechFactory":           common.FromHex("0x60806040526007600055"),
	}
}

// fakeChain is an in-memory ChainClient. Hooks run with the lock released.
type fakeChain struct {
	mu sync.Mutex

	chainID  uint64
	code     map[common.Address][]byte
	balances map[common.Address]*big.Int

	sent []*models.Transaction
	raw  [][]byte

	// receiptStatus is returned for every mined transaction
	receiptStatus uint64

	onSend    func(tx *models.Transaction)
	onRaw     func(raw []byte)
	codeErr   error
	waitErr   error
	callRet   []byte
	callErr   error
	lastCall  []byte
	callCount int
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		chainID:       1,
		code:          make(map[common.Address][]byte),
		balances:      make(map[common.Address]*big.Int),
		receiptStatus: 1,
	}
}

func (f *fakeChain) setCode(addr common.Address, code []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.code[addr] = code
}

func (f *fakeChain) ChainID(context.Context) (uint64, error) {
	return f.chainID, nil
}

func (f *fakeChain) CodeAt(_ context.Context, addr common.Address) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.codeErr != nil {
		return nil, f.codeErr
	}
	return f.code[addr], nil
}

func (f *fakeChain) BalanceAt(_ context.Context, addr common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.balances[addr]; ok {
		return b, nil
	}
	return new(big.Int), nil
}

func (f *fakeChain) CallContract(_ context.Context, _ common.Address, data []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCall = data
	f.callCount++
	return f.callRet, f.callErr
}

func (f *fakeChain) SendTransaction(_ context.Context, tx *models.Transaction) (common.Hash, error) {
	f.mu.Lock()
	f.sent = append(f.sent, tx)
	hash := crypto.Keccak256Hash([]byte(fmt.Sprintf("tx-%d", len(f.sent))))
	hook := f.onSend
	f.mu.Unlock()

	if hook != nil {
		hook(tx)
	}
	return hash, nil
}

func (f *fakeChain) SendRawTransaction(_ context.Context, raw []byte) (common.Hash, error) {
	f.mu.Lock()
	f.raw = append(f.raw, raw)
	hook := f.onRaw
	f.mu.Unlock()

	if hook != nil {
		hook(raw)
	}
	return crypto.Keccak256Hash(raw), nil
}

func (f *fakeChain) WaitForReceipt(_ context.Context, hash common.Hash) (*models.Receipt, error) {
	if f.waitErr != nil {
		return nil, f.waitErr
	}
	return &models.Receipt{TxHash: hash, Status: f.receiptStatus, BlockNumber: 42, GasUsed: 100_000}, nil
}

var _ ChainClient = (*fakeChain)(nil)

// recordingProgress keeps every stage it was told about
type recordingProgress struct {
	NopProgress
	stages []string
}

func (r *recordingProgress) OnProgress(_ context.Context, event ProgressEvent) {
	r.stages = append(r.stages, event.Stage)
}

func testConfig() *config.RuntimeConfig {
	return &config.RuntimeConfig{
		Addresses: config.DefaultAddresses(),
	}
}

func newTestPlanner(client ChainClient, cfg *config.RuntimeConfig) *Planner {
	return NewPlanner(derive.NewDeriver(cfg.Addresses, newFixtureArtifacts()), client, cfg, NopProgress{}, nil)
}

// deployInfrastructure puts code at every factory and mastercopy
func deployInfrastructure(chain *fakeChain, p *Planner) {
	addrs := p.Deriver().Addresses()
	chain.setCode(addrs.SingletonFactory, []byte{0x01})
	chain.setCode(addrs.ModuleProxyFactory, []byte{0x01})
	chain.setCode(addrs.ERC6551Registry, []byte{0x01})
	factory, err := p.Deriver().MechFactoryAddress()
	if err != nil {
		panic(err)
	}
	chain.setCode(factory, []byte{0x01})
	known, err := p.Deriver().KnownMastercopies()
	if err != nil {
		panic(err)
	}
	for addr := range known {
		chain.setCode(addr, []byte{0x01})
	}
}
