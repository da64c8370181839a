package config

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gnosisguild/mech-go/internal/domain/config"
)

// ChainIDFetcher asks an RPC endpoint for its chain ID
type ChainIDFetcher func(ctx context.Context, rpcURL string) (uint64, error)

// NetworkResolver resolves foundry.toml rpc_endpoints to networks with
// chain ID caching
type NetworkResolver struct {
	foundryConfig *config.FoundryConfig
	fetch         ChainIDFetcher
	cache         map[string]uint64 // rpcURL -> chainID
	mu            sync.RWMutex
}

// NewNetworkResolver creates a new network resolver
func NewNetworkResolver(foundryConfig *config.FoundryConfig) *NetworkResolver {
	return NewNetworkResolverWithFetcher(foundryConfig, fetchChainID)
}

// NewNetworkResolverWithFetcher creates a resolver using fetch for chain IDs
func NewNetworkResolverWithFetcher(foundryConfig *config.FoundryConfig, fetch ChainIDFetcher) *NetworkResolver {
	return &NetworkResolver{
		foundryConfig: foundryConfig,
		fetch:         fetch,
		cache:         make(map[string]uint64),
	}
}

// GetNetworks returns all configured network names, sorted
func (r *NetworkResolver) GetNetworks(ctx context.Context) []string {
	names := make([]string, 0, len(r.foundryConfig.RpcEndpoints))
	for name := range r.foundryConfig.RpcEndpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Endpoint returns the expanded RPC URL for networkName without network access
func (r *NetworkResolver) Endpoint(networkName string) (string, error) {
	raw, exists := r.foundryConfig.RpcEndpoints[networkName]
	if !exists {
		return "", fmt.Errorf("network '%s' not found in foundry.toml [rpc_endpoints]", networkName)
	}
	rpcURL, err := ExpandRPCURL(raw)
	if err != nil {
		return "", fmt.Errorf("network '%s': %w", networkName, err)
	}
	return rpcURL, nil
}

// ResolveNetwork resolves a network name to its configuration, including chain ID
func (r *NetworkResolver) ResolveNetwork(ctx context.Context, networkName string) (*config.Network, error) {
	rpcURL, err := r.Endpoint(networkName)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	chainID, cached := r.cache[rpcURL]
	r.mu.RUnlock()

	if !cached {
		chainID, err = r.fetch(ctx, rpcURL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch chain ID for network %s: %w", networkName, err)
		}
		r.mu.Lock()
		r.cache[rpcURL] = chainID
		r.mu.Unlock()
	}

	return &config.Network{
		Name:    networkName,
		RPCURL:  rpcURL,
		ChainID: chainID,
	}, nil
}

func fetchChainID(ctx context.Context, rpcURL string) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to RPC: %w", err)
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return 0, err
	}
	return chainID.Uint64(), nil
}
