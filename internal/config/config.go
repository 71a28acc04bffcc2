// Package config provides configuration loading for the distiller.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Environment variables (DISTILLER_*)
//  2. Config file (.distiller/config.yml, or the file passed with --config)
//  3. Built-in defaults
//
// Environment Variable Convention:
//   - Prefix: DISTILLER_
//   - Nested fields: Use underscores (DISTILLER_COMPRESSION_TOKEN_BUDGET)
package config

import (
	"github.com/mvp-joe/dali-distiller/internal/compress"
	"github.com/mvp-joe/dali-distiller/internal/distiller"
	"github.com/mvp-joe/dali-distiller/internal/docs"
	"github.com/mvp-joe/dali-distiller/internal/grammar"
	"github.com/mvp-joe/dali-distiller/internal/output"
	"github.com/mvp-joe/dali-distiller/internal/schema"
	"github.com/mvp-joe/dali-distiller/internal/tokens"
)

// Config represents the complete distiller configuration.
// It can be loaded from .distiller/config.yml with environment variable overrides.
type Config struct {
	Paths       PathsConfig       `yaml:"paths" mapstructure:"paths"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Schema      SchemaConfig      `yaml:"schema" mapstructure:"schema"`
	Compression CompressionConfig `yaml:"compression" mapstructure:"compression"`
	Types       TypesConfig       `yaml:"types" mapstructure:"types"`
}

// PathsConfig locates the documentation tree.
type PathsConfig struct {
	DocsRoot      string   `yaml:"docs_root" mapstructure:"docs_root"`           // checkout of the documentation repository
	ContentDir    string   `yaml:"content_dir" mapstructure:"content_dir"`       // relative to docs_root
	StatementsDir string   `yaml:"statements_dir" mapstructure:"statements_dir"` // relative to content_dir
	FunctionsDir  string   `yaml:"functions_dir" mapstructure:"functions_dir"`   // relative to content_dir
	OperatorsFile string   `yaml:"operators_file" mapstructure:"operators_file"` // relative to content_dir
	ReleasesFile  string   `yaml:"releases_file" mapstructure:"releases_file"`   // relative to docs_root
	Include       []string `yaml:"include" mapstructure:"include"`
	Ignore        []string `yaml:"ignore" mapstructure:"ignore"`
}

// OutputConfig selects where and what to write.
type OutputConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Format string `yaml:"format" mapstructure:"format"` // "full", "compressed" or "both"
	Raw    bool   `yaml:"raw" mapstructure:"raw"`       // also write raw_extraction.json
}

// SchemaConfig controls schema metadata and operator categorisation.
type SchemaConfig struct {
	Version            string            `yaml:"version" mapstructure:"version"` // overrides the releases page
	FallbackVersion    string            `yaml:"fallback_version" mapstructure:"fallback_version"`
	Description        string            `yaml:"description" mapstructure:"description"`
	OperatorCategories map[string]string `yaml:"operator_categories" mapstructure:"operator_categories"` // symbol -> category
}

// CompressionConfig tunes parsing and the compressed output.
type CompressionConfig struct {
	KeywordSubsetSize int      `yaml:"keyword_subset_size" mapstructure:"keyword_subset_size"`
	TokenBudget       int      `yaml:"token_budget" mapstructure:"token_budget"`
	PatternMaxLen     int      `yaml:"pattern_max_len" mapstructure:"pattern_max_len"`
	IgnoredKeywords   []string `yaml:"ignored_keywords" mapstructure:"ignored_keywords"`
}

// TypesConfig extends the type abbreviation table.
type TypesConfig struct {
	Codes map[string]string `yaml:"codes" mapstructure:"codes"` // type name -> single-character code
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	layout := docs.DefaultLayout("docs.surrealdb.com")
	return &Config{
		Paths: PathsConfig{
			DocsRoot:      layout.Root,
			ContentDir:    layout.ContentDir,
			StatementsDir: layout.StatementsDir,
			FunctionsDir:  layout.FunctionsDir,
			OperatorsFile: layout.OperatorsFile,
			ReleasesFile:  layout.ReleasesFile,
			Include:       layout.Include,
			Ignore:        layout.Ignore,
		},
		Output: OutputConfig{
			Dir:    "output",
			Format: string(output.FormatBoth),
		},
		Schema: SchemaConfig{
			FallbackVersion: distiller.DefaultFallbackVersion,
			Description:     schema.DefaultDescription,
		},
		Compression: CompressionConfig{
			KeywordSubsetSize: compress.DefaultKeywordSubsetSize,
			TokenBudget:       tokens.DefaultBudget,
			PatternMaxLen:     grammar.DefaultPatternMaxLen,
			IgnoredKeywords:   grammar.DefaultIgnoredKeywords,
		},
	}
}

// Layout returns the documentation layout described by the paths section.
func (c *Config) Layout() docs.Layout {
	return docs.Layout{
		Root:          c.Paths.DocsRoot,
		ContentDir:    c.Paths.ContentDir,
		StatementsDir: c.Paths.StatementsDir,
		FunctionsDir:  c.Paths.FunctionsDir,
		OperatorsFile: c.Paths.OperatorsFile,
		ReleasesFile:  c.Paths.ReleasesFile,
		Include:       c.Paths.Include,
		Ignore:        c.Paths.Ignore,
	}
}
