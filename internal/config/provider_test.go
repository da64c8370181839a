package config

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/gnosisguild/mech-go/internal/domain/config"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func newViper(root string) *viper.Viper {
	v := viper.New()
	v.Set("project_root", root)
	v.SetDefault("profile", "default")
	return v
}

func TestProvider_Defaults(t *testing.T) {
	root := t.TempDir()

	cfg, err := Provider(newViper(root))
	require.NoError(t, err)

	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(root, "out"), cfg.ArtifactsDir)
	assert.Equal(t, config.DefaultAddresses(), cfg.Addresses)
	assert.Equal(t, config.DefaultDeployerFunding, cfg.SingletonFactory.DeployerFunding)
	assert.Equal(t, config.DefaultSingletonFactoryDeployTx(), cfg.SingletonFactory.RawDeployTx)
	assert.Empty(t, cfg.SupportedChainIDs)
	assert.Nil(t, cfg.Network)
	assert.Nil(t, cfg.MechConfig)
}

func TestProvider_FoundryProfileAndNetwork(t *testing.T) {
	root := t.TempDir()
	t.Setenv("MECH_TEST_RPC", "https://rpc.example/abc")
	writeFile(t, root, "foundry.toml", `
[profile.default]
src = "contracts"
out = "build"

[profile.ci]
out = "ci-out"

[rpc_endpoints]
gnosis = "${MECH_TEST_RPC}"
broken = "${MECH_TEST_UNSET_VAR}"
`)

	v := newViper(root)
	v.Set("network", "gnosis")
	cfg, err := Provider(v)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "build"), cfg.ArtifactsDir)
	require.NotNil(t, cfg.Network)
	assert.Equal(t, "gnosis", cfg.Network.Name)
	assert.Equal(t, "https://rpc.example/abc", cfg.Network.RPCURL)
	assert.Zero(t, cfg.Network.ChainID)

	v = newViper(root)
	v.Set("profile", "ci")
	cfg, err = Provider(v)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "ci-out"), cfg.ArtifactsDir)

	v = newViper(root)
	v.Set("network", "broken")
	_, err = Provider(v)
	assert.ErrorContains(t, err, "MECH_TEST_UNSET_VAR")

	v = newViper(root)
	v.Set("network", "nowhere")
	_, err = Provider(v)
	assert.ErrorContains(t, err, "not found in foundry.toml")
}

func TestProvider_RPCURLWins(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "foundry.toml", "[rpc_endpoints]\ngnosis = \"https://gnosis.example\"\n")

	v := newViper(root)
	v.Set("network", "gnosis")
	v.Set("rpc-url", "http://localhost:8545")
	v.Set("artifacts-dir", "artifacts")
	v.Set("private-key", "0xabc")

	cfg, err := Provider(v)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8545", cfg.Network.RPCURL)
	assert.Equal(t, filepath.Join(root, "artifacts"), cfg.ArtifactsDir)
	assert.Equal(t, "0xabc", cfg.PrivateKey)
}

func TestProvider_DotEnv(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".env", "MECH_DOTENV_RPC=https://dotenv.example\n")
	writeFile(t, root, "foundry.toml", "[rpc_endpoints]\nlocal = \"${MECH_DOTENV_RPC}\"\n")
	t.Cleanup(func() { os.Unsetenv("MECH_DOTENV_RPC") })

	v := newViper(root)
	v.Set("network", "local")
	cfg, err := Provider(v)
	require.NoError(t, err)
	assert.Equal(t, "https://dotenv.example", cfg.Network.RPCURL)
}

func TestProvider_MechToml(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "mech.toml", `
artifacts_dir = "vendor/mech/out"
supported_chain_ids = [1, 100]

[addresses]
mech_factory = "0x3Abe49fa0e0aF62C90359432667d9F6C9212ef4B"
erc6551_registry = "0x00000000000000000000000000000000000065a1"

[singleton_factory]
raw_deploy_tx = "0xf9016c8085174876e8008303c4d88080b90154"
deployer_funding = "1000000000000000000"
`)

	cfg, err := Provider(newViper(root))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "vendor/mech/out"), cfg.ArtifactsDir)
	assert.Equal(t, []uint64{1, 100}, cfg.SupportedChainIDs)
	assert.Equal(t, common.HexToAddress("0x3Abe49fa0e0aF62C90359432667d9F6C9212ef4B"), cfg.Addresses.MechFactory)
	assert.Equal(t, common.HexToAddress("0x65a1"), cfg.Addresses.ERC6551Registry)
	assert.Equal(t, config.DefaultAddresses().ModuleProxyFactory, cfg.Addresses.ModuleProxyFactory)
	assert.Equal(t, common.FromHex("0xf9016c8085174876e8008303c4d88080b90154"), cfg.SingletonFactory.RawDeployTx)
	assert.Zero(t, cfg.SingletonFactory.DeployerFunding.Cmp(big.NewInt(1_000_000_000_000_000_000)))
	require.NotNil(t, cfg.MechConfig)
}

func TestProvider_MechTomlErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad address", "[addresses]\nmech_factory = \"0x1234\"\n", "addresses.mech_factory"},
		{"bad raw tx", "[singleton_factory]\nraw_deploy_tx = \"f901\"\n", "raw_deploy_tx"},
		{"bad funding", "[singleton_factory]\ndeployer_funding = \"lots\"\n", "deployer_funding"},
		{"unknown key", "mystery = true\n", "unknown key \"mystery\""},
		{"bad toml", "addresses = [\n", "failed to parse mech.toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, root, "mech.toml", tt.content)
			_, err := Provider(newViper(root))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestExpandRPCURL(t *testing.T) {
	t.Setenv("MECH_HOST", "node.example")
	t.Setenv("MECH_KEY", "k1")

	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"https://sepolia.base.org", "https://sepolia.base.org", false},
		{"https://${MECH_HOST}/v2/${MECH_KEY}", "https://node.example/v2/k1", false},
		{"${MECH_MISSING_VAR}", "", true},
		{"$MECH_HOST", "$MECH_HOST", false},
	}
	for _, tt := range tests {
		got, err := ExpandRPCURL(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got)
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "foundry.toml", "")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	t.Chdir(nested)

	found, err := FindProjectRoot()
	require.NoError(t, err)
	want, _ := filepath.EvalSymlinks(root)
	got, _ := filepath.EvalSymlinks(found)
	assert.Equal(t, want, got)
}

func TestNetworkResolver(t *testing.T) {
	foundry := &config.FoundryConfig{RpcEndpoints: map[string]string{
		"gnosis":  "https://gnosis.example",
		"mainnet": "https://eth.example",
		"alias":   "https://eth.example",
	}}

	calls := 0
	r := NewNetworkResolverWithFetcher(foundry, func(_ context.Context, url string) (uint64, error) {
		calls++
		if url == "https://gnosis.example" {
			return 100, nil
		}
		return 1, nil
	})

	assert.Equal(t, []string{"alias", "gnosis", "mainnet"}, r.GetNetworks(context.Background()))

	n, err := r.ResolveNetwork(context.Background(), "gnosis")
	require.NoError(t, err)
	assert.Equal(t, &config.Network{Name: "gnosis", RPCURL: "https://gnosis.example", ChainID: 100}, n)

	_, err = r.ResolveNetwork(context.Background(), "mainnet")
	require.NoError(t, err)
	n, err = r.ResolveNetwork(context.Background(), "alias")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n.ChainID)
	assert.Equal(t, 2, calls, "chain IDs are cached per RPC URL")

	_, err = r.ResolveNetwork(context.Background(), "unknown")
	assert.Error(t, err)
}
