package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// FileName is the optional config file looked up in the working directory
const FileName = "slnkit.toml"

// EnvPrefix prefixes environment overrides (e.g., SLNKIT_DRY_RUN=true)
const EnvPrefix = "SLNKIT_"

// Config holds all configuration for the application
type Config struct {
	Solution           string        `koanf:"solution"`
	FindSolutions      bool          `koanf:"find-solutions"`
	Root               string        `koanf:"root"`
	DependenciesFolder string        `koanf:"dependencies-folder"`
	Folder             string        `koanf:"folder"`
	DryRun             bool          `koanf:"dry-run"`
	DotnetCLI          bool          `koanf:"dotnet-cli"`
	Dotnet             string        `koanf:"dotnet"`
	Debounce           time.Duration `koanf:"debounce"`
	JSON               bool          `koanf:"json"`
	Verbosity          string        `koanf:"verbosity"`
	VerboseCnt         int           `koanf:"verbose"`
	LogJSON            bool          `koanf:"log-json"`
}

// Defaults returns the lowest-priority configuration layer
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"solution":            "",
		"find-solutions":      false,
		"root":                ".",
		"dependencies-folder": "Dependencies",
		"folder":              "",
		"dry-run":             false,
		"dotnet-cli":          true,
		"dotnet":              "dotnet",
		"debounce":            "500ms",
		"json":                false,
		"verbosity":           "",
		"verbose":             0,
		"log-json":            false,
	}
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	return LoadFrom(FileName, f)
}

// LoadFrom is Load with an explicit config file path
func LoadFrom(path string, f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(Defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file (optional); a missing file is not an error
	if path != "" {
		_ = k.Load(file.Provider(path), toml.Parser())
	}

	// 3. Environment variables
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.DependenciesFolder == "" {
		return nil, fmt.Errorf("dependencies-folder must not be empty")
	}
	if cfg.Debounce <= 0 {
		return nil, fmt.Errorf("debounce must be positive, got %s", cfg.Debounce)
	}

	return &cfg, nil
}

// envKey maps SLNKIT_DRY_RUN to dry-run
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", "-")
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
