// Package artifacts loads compiled mech contracts from Foundry's output directory
package artifacts

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gnosisguild/mech-go/internal/domain/config"
)

// Artifact is the part of a Foundry artifact mech needs
type Artifact struct {
	Name             string
	Path             string
	Bytecode         []byte
	DeployedBytecode []byte
}

// foundryArtifact mirrors the JSON written by forge build
type foundryArtifact struct {
	Bytecode struct {
		Object string `json:"object"`
	} `json:"bytecode"`
	DeployedBytecode struct {
		Object string `json:"object"`
	} `json:"deployedBytecode"`
}

// FoundryArtifacts reads <dir>/<Name>.sol/<Name>.json, caching what it read
type FoundryArtifacts struct {
	dir   string
	cache map[string]*Artifact
	mu    sync.RWMutex
}

// NewFoundryArtifacts creates a loader over the configured artifacts directory
func NewFoundryArtifacts(cfg *config.RuntimeConfig) *FoundryArtifacts {
	return NewFoundryArtifactsAt(cfg.ArtifactsDir)
}

// NewFoundryArtifactsAt creates a loader over dir
func NewFoundryArtifactsAt(dir string) *FoundryArtifacts {
	return &FoundryArtifacts{
		dir:   dir,
		cache: make(map[string]*Artifact),
	}
}

// Dir returns the artifacts directory
func (f *FoundryArtifacts) Dir() string {
	return f.dir
}

// Bytecode returns the creation bytecode of the named contract
func (f *FoundryArtifacts) Bytecode(name string) ([]byte, error) {
	a, err := f.Get(name)
	if err != nil {
		return nil, err
	}
	return a.Bytecode, nil
}

// Get loads the named artifact
func (f *FoundryArtifacts) Get(name string) (*Artifact, error) {
	f.mu.RLock()
	a, ok := f.cache[name]
	f.mu.RUnlock()
	if ok {
		return a, nil
	}

	path, err := f.locate(name)
	if err != nil {
		return nil, err
	}
	a, err = load(name, path)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.cache[name] = a
	f.mu.Unlock()
	return a, nil
}

// locate prefers the conventional path and falls back to searching for
// <Name>.json when the contract lives in a differently named source file
func (f *FoundryArtifacts) locate(name string) (string, error) {
	conventional := filepath.Join(f.dir, name+".sol", name+".json")
	if _, err := os.Stat(conventional); err == nil {
		return conventional, nil
	}

	var found string
	err := filepath.WalkDir(f.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == "build-info" {
			return filepath.SkipDir
		}
		if !d.IsDir() && d.Name() == name+".json" {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to search artifacts in %s: %w", f.dir, err)
	}
	if found == "" {
		return "", fmt.Errorf("artifact %s not found in %s (run forge build)", name, f.dir)
	}
	return found, nil
}

func load(name, path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}

	var raw foundryArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}

	bytecode, err := decodeObject(raw.Bytecode.Object)
	if err != nil {
		return nil, fmt.Errorf("artifact %s: bytecode: %w", name, err)
	}
	if len(bytecode) == 0 {
		return nil, fmt.Errorf("artifact %s has no bytecode (abstract contract or interface?)", name)
	}
	deployed, err := decodeObject(raw.DeployedBytecode.Object)
	if err != nil {
		return nil, fmt.Errorf("artifact %s: deployed bytecode: %w", name, err)
	}

	return &Artifact{
		Name:             name,
		Path:             path,
		Bytecode:         bytecode,
		DeployedBytecode: deployed,
	}, nil
}

func decodeObject(object string) ([]byte, error) {
	if object == "" || object == "0x" {
		return nil, nil
	}
	if strings.Contains(object, "__$") {
		return nil, fmt.Errorf("unlinked library references")
	}
	if !strings.HasPrefix(object, "0x") {
		object = "0x" + object
	}
	return hexutil.Decode(object)
}
