package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/gnosisguild/mech-go/internal/domain/config"
)

// envVarPattern matches ${VAR_NAME} references in TOML values
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// LoadEnvFiles loads .env and .env.local from projectRoot if present.
// Variables already in the environment are not overridden.
func LoadEnvFiles(projectRoot string) error {
	for _, name := range []string{".env", ".env.local"} {
		envFile := filepath.Join(projectRoot, name)
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
	}
	return nil
}

// LoadFoundryConfig parses foundry.toml. A missing file yields an empty config.
func LoadFoundryConfig(projectRoot string) (*config.FoundryConfig, error) {
	cfg := &config.FoundryConfig{
		Profile:      map[string]config.ProfileConfig{},
		RpcEndpoints: map[string]string{},
	}

	foundryPath := filepath.Join(projectRoot, "foundry.toml")
	if _, err := os.Stat(foundryPath); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(foundryPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse foundry.toml: %w", err)
	}
	return cfg, nil
}

// ExpandRPCURL substitutes ${VAR} references from the environment.
// Referencing an unset variable is an error.
func ExpandRPCURL(raw string) (string, error) {
	var missing string
	expanded := envVarPattern.ReplaceAllStringFunc(raw, func(m string) string {
		name := envVarPattern.FindStringSubmatch(m)[1]
		val, ok := os.LookupEnv(name)
		if !ok && missing == "" {
			missing = name
		}
		return val
	})
	if missing != "" {
		return "", fmt.Errorf("environment variable %s is not set", missing)
	}
	return expanded, nil
}

// artifactsDir picks the Foundry out directory for profile, defaulting to "out"
func artifactsDir(projectRoot string, foundry *config.FoundryConfig, profile string) string {
	out := "out"
	if p, ok := foundry.Profile[profile]; ok && p.OutPath != "" {
		out = p.OutPath
	} else if p, ok := foundry.Profile["default"]; ok && p.OutPath != "" {
		out = p.OutPath
	}
	if filepath.IsAbs(out) {
		return out
	}
	return filepath.Join(projectRoot, out)
}
