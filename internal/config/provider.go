package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnosisguild/mech-go/internal/domain/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			// Offline commands work outside a Foundry project
			if projectRoot, err = os.Getwd(); err != nil {
				return nil, err
			}
		}
	}

	if err := LoadEnvFiles(projectRoot); err != nil {
		return nil, err
	}

	foundryConfig, err := LoadFoundryConfig(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load foundry config: %w", err)
	}
	mechConfig, err := LoadMechConfig(projectRoot)
	if err != nil {
		return nil, err
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		ArtifactsDir:   artifactsDir(projectRoot, foundryConfig, v.GetString("profile")),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non-interactive"),
		JSON:           v.GetBool("json"),
		Timeout:        v.GetDuration("timeout"),
		PrivateKey:     v.GetString("private-key"),
		Addresses:      config.DefaultAddresses(),
		SingletonFactory: config.SingletonFactoryConfig{
			RawDeployTx:     config.DefaultSingletonFactoryDeployTx(),
			DeployerFunding: config.DefaultDeployerFunding,
		},
		FoundryConfig: foundryConfig,
		MechConfig:    mechConfig,
	}

	if err := applyMechConfig(cfg, mechConfig); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", MechFileName, err)
	}

	if dir := v.GetString("artifacts-dir"); dir != "" {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(projectRoot, dir)
		}
		cfg.ArtifactsDir = dir
	}

	// --rpc-url wins over --network
	if rpcURL := v.GetString("rpc-url"); rpcURL != "" {
		cfg.Network = &config.Network{Name: "custom", RPCURL: rpcURL}
	} else if networkName := v.GetString("network"); networkName != "" {
		rpcURL, err := NewNetworkResolver(foundryConfig).Endpoint(networkName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve network %s: %w", networkName, err)
		}
		cfg.Network = &config.Network{Name: networkName, RPCURL: rpcURL}
	}

	return cfg, nil
}

// FindProjectRoot walks up from current directory to find foundry.toml
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		for _, marker := range []string{"foundry.toml", MechFileName} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a Foundry project (foundry.toml not found)")
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	// Set up environment variables
	v.SetEnvPrefix("MECH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Set defaults
	v.SetDefault("timeout", "5m")
	v.SetDefault("debug", false)
	v.SetDefault("non-interactive", false)
	v.SetDefault("profile", "default")
	v.SetDefault("project_root", projectRoot)
	if profile := os.Getenv("FOUNDRY_PROFILE"); profile != "" {
		v.SetDefault("profile", profile)
	}

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil {
			panic(err)
		}
	})

	return v
}
