package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gnosisguild/mech-go/internal/domain/config"
)

// MechFileName is the optional project file with protocol overrides
const MechFileName = "mech.toml"

// LoadMechConfig parses mech.toml. A missing file yields nil.
func LoadMechConfig(projectRoot string) (*config.MechConfig, error) {
	path := filepath.Join(projectRoot, MechFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	var cfg config.MechConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", MechFileName, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q in %s", undecoded[0].String(), MechFileName)
	}
	return &cfg, nil
}

// applyMechConfig folds mech.toml into the runtime config
func applyMechConfig(cfg *config.RuntimeConfig, mc *config.MechConfig) error {
	if mc == nil {
		return nil
	}

	if mc.ArtifactsDir != "" {
		cfg.ArtifactsDir = mc.ArtifactsDir
		if !filepath.IsAbs(mc.ArtifactsDir) {
			cfg.ArtifactsDir = filepath.Join(cfg.ProjectRoot, mc.ArtifactsDir)
		}
	}
	if len(mc.SupportedChainIDs) > 0 {
		cfg.SupportedChainIDs = mc.SupportedChainIDs
	}

	overrides := []struct {
		key    string
		value  string
		target *common.Address
	}{
		{"singleton_factory", mc.Addresses.SingletonFactory, &cfg.Addresses.SingletonFactory},
		{"singleton_deployer", mc.Addresses.SingletonDeployer, &cfg.Addresses.SingletonDeployer},
		{"module_proxy_factory", mc.Addresses.ModuleProxyFactory, &cfg.Addresses.ModuleProxyFactory},
		{"erc6551_registry", mc.Addresses.ERC6551Registry, &cfg.Addresses.ERC6551Registry},
		{"mech_factory", mc.Addresses.MechFactory, &cfg.Addresses.MechFactory},
	}
	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		if !common.IsHexAddress(o.value) {
			return fmt.Errorf("addresses.%s: invalid address %q", o.key, o.value)
		}
		*o.target = common.HexToAddress(o.value)
	}

	if raw := mc.SingletonFactory.RawDeployTx; raw != "" {
		tx, err := hexutil.Decode(raw)
		if err != nil {
			return fmt.Errorf("singleton_factory.raw_deploy_tx: %w", err)
		}
		cfg.SingletonFactory.RawDeployTx = tx
	}
	if funding := mc.SingletonFactory.DeployerFunding; funding != "" {
		wei, ok := new(big.Int).SetString(funding, 0)
		if !ok || wei.Sign() < 0 {
			return fmt.Errorf("singleton_factory.deployer_funding: invalid amount %q", funding)
		}
		cfg.SingletonFactory.DeployerFunding = wei
	}
	return nil
}
