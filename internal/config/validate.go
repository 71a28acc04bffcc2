package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mvp-joe/dali-distiller/internal/output"
	"github.com/mvp-joe/dali-distiller/internal/schema"
)

var (
	// ErrEmptyPath indicates a required documentation path is missing
	ErrEmptyPath = errors.New("empty path")

	// ErrInvalidFormat indicates an unsupported output format
	ErrInvalidFormat = errors.New("invalid output format")

	// ErrInvalidVersion indicates a version that is not MAJOR.MINOR.PATCH
	ErrInvalidVersion = errors.New("invalid version")

	// ErrInvalidBudget indicates invalid compression limits
	ErrInvalidBudget = errors.New("invalid compression settings")

	// ErrInvalidTypeCode indicates a type code that is not a single unique character
	ErrInvalidTypeCode = errors.New("invalid type code")

	// ErrInvalidOperatorCategory indicates an override naming an unknown category
	ErrInvalidOperatorCategory = errors.New("invalid operator category")
)

var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}

	if err := validateOutput(&cfg.Output); err != nil {
		errs = append(errs, err)
	}

	if err := validateSchema(&cfg.Schema); err != nil {
		errs = append(errs, err)
	}

	if err := validateCompression(&cfg.Compression); err != nil {
		errs = append(errs, err)
	}

	if err := validateTypes(cfg); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validatePaths(cfg *PathsConfig) error {
	var errs []error

	required := []struct {
		name  string
		value string
	}{
		{"docs_root", cfg.DocsRoot},
		{"content_dir", cfg.ContentDir},
		{"statements_dir", cfg.StatementsDir},
		{"functions_dir", cfg.FunctionsDir},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, fmt.Errorf("%w: %s is required", ErrEmptyPath, r.name))
		}
	}

	if len(cfg.Include) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one include pattern required", ErrEmptyPath))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateOutput(cfg *OutputConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.Dir) == "" {
		errs = append(errs, fmt.Errorf("%w: output dir is required", ErrEmptyPath))
	}

	if _, err := output.ParseFormat(cfg.Format); err != nil {
		errs = append(errs, fmt.Errorf("%w: must be 'full', 'compressed' or 'both', got '%s'", ErrInvalidFormat, cfg.Format))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateSchema(cfg *SchemaConfig) error {
	var errs []error

	if cfg.Version != "" && !versionPattern.MatchString(cfg.Version) {
		errs = append(errs, fmt.Errorf("%w: version must be MAJOR.MINOR.PATCH, got '%s'", ErrInvalidVersion, cfg.Version))
	}

	if !versionPattern.MatchString(cfg.FallbackVersion) {
		errs = append(errs, fmt.Errorf("%w: fallback_version must be MAJOR.MINOR.PATCH, got '%s'", ErrInvalidVersion, cfg.FallbackVersion))
	}

	for symbol, key := range cfg.OperatorCategories {
		if _, ok := schema.ParseCategory(key); !ok {
			errs = append(errs, fmt.Errorf("%w: '%s' for operator '%s'", ErrInvalidOperatorCategory, key, symbol))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateCompression(cfg *CompressionConfig) error {
	var errs []error

	if cfg.KeywordSubsetSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: keyword_subset_size must be positive, got %d", ErrInvalidBudget, cfg.KeywordSubsetSize))
	}

	// Zero disables the budget check
	if cfg.TokenBudget < 0 {
		errs = append(errs, fmt.Errorf("%w: token_budget cannot be negative, got %d", ErrInvalidBudget, cfg.TokenBudget))
	}

	if cfg.PatternMaxLen <= 0 {
		errs = append(errs, fmt.Errorf("%w: pattern_max_len must be positive, got %d", ErrInvalidBudget, cfg.PatternMaxLen))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateTypes(cfg *Config) error {
	if len(cfg.Types.Codes) == 0 {
		return nil
	}
	_, err := cfg.TypeTable()
	return err
}

// joinErrors combines multiple errors into a single error with clear formatting.
// The sentinel errors stay reachable through errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return &validationError{msg: "validation failed:\n  - " + strings.Join(msgs, "\n  - "), errs: errs}
}

type validationError struct {
	msg  string
	errs []error
}

func (e *validationError) Error() string   { return e.msg }
func (e *validationError) Unwrap() []error { return e.errs }
