package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ErrConfigNotFound indicates an explicitly named config file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
// The config file is looked up in rootDir/.distiller.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader reading an explicit config file, which must exist.
func NewFileLoader(path string) Loader {
	return &loader{
		configFile: path,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (DISTILLER_*)
// 2. Config file (.distiller/config.yml or .distiller/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		if _, err := os.Stat(l.configFile); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, l.configFile)
		}
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ".distiller"))
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("DISTILLER")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., DISTILLER_OUTPUT_FORMAT)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Paths configuration
	v.BindEnv("paths.docs_root")
	v.BindEnv("paths.content_dir")
	v.BindEnv("paths.releases_file")

	// Output configuration
	v.BindEnv("output.dir")
	v.BindEnv("output.format")
	v.BindEnv("output.raw")

	// Schema configuration
	v.BindEnv("schema.version")
	v.BindEnv("schema.fallback_version")

	// Compression configuration
	v.BindEnv("compression.keyword_subset_size")
	v.BindEnv("compression.token_budget")
	v.BindEnv("compression.pattern_max_len")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("paths.docs_root", defaults.Paths.DocsRoot)
	v.SetDefault("paths.content_dir", defaults.Paths.ContentDir)
	v.SetDefault("paths.statements_dir", defaults.Paths.StatementsDir)
	v.SetDefault("paths.functions_dir", defaults.Paths.FunctionsDir)
	v.SetDefault("paths.operators_file", defaults.Paths.OperatorsFile)
	v.SetDefault("paths.releases_file", defaults.Paths.ReleasesFile)
	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("output.dir", defaults.Output.Dir)
	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("output.raw", defaults.Output.Raw)

	v.SetDefault("schema.version", defaults.Schema.Version)
	v.SetDefault("schema.fallback_version", defaults.Schema.FallbackVersion)
	v.SetDefault("schema.description", defaults.Schema.Description)

	v.SetDefault("compression.keyword_subset_size", defaults.Compression.KeywordSubsetSize)
	v.SetDefault("compression.token_budget", defaults.Compression.TokenBudget)
	v.SetDefault("compression.pattern_max_len", defaults.Compression.PatternMaxLen)
	v.SetDefault("compression.ignored_keywords", defaults.Compression.IgnoredKeywords)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
