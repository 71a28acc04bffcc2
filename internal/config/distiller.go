package config

import (
	"fmt"
	"log/slog"

	"github.com/mvp-joe/dali-distiller/internal/compress"
	"github.com/mvp-joe/dali-distiller/internal/distiller"
	"github.com/mvp-joe/dali-distiller/internal/grammar"
	"github.com/mvp-joe/dali-distiller/internal/operators"
	"github.com/mvp-joe/dali-distiller/internal/output"
	"github.com/mvp-joe/dali-distiller/internal/types"
)

// TypeTable returns the default abbreviation table extended with the
// configured codes.
func (c *Config) TypeTable() (*types.Table, error) {
	table, err := types.Default().WithOverrides(c.Types.Codes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTypeCode, err)
	}
	return table, nil
}

// ToDistillerOptions converts a Config to distiller.Options.
func (c *Config) ToDistillerOptions(logger *slog.Logger) (distiller.Options, error) {
	format, err := output.ParseFormat(c.Output.Format)
	if err != nil {
		return distiller.Options{}, err
	}

	table, err := c.TypeTable()
	if err != nil {
		return distiller.Options{}, err
	}

	classifier, err := operators.NewClassifier(c.Schema.OperatorCategories)
	if err != nil {
		return distiller.Options{}, fmt.Errorf("%w: %v", ErrInvalidOperatorCategory, err)
	}

	return distiller.Options{
		Layout:          c.Layout(),
		OutputDir:       c.Output.Dir,
		Format:          format,
		Raw:             c.Output.Raw,
		Version:         c.Schema.Version,
		FallbackVersion: c.Schema.FallbackVersion,
		Description:     c.Schema.Description,
		Grammar: grammar.Options{
			PatternMaxLen:   c.Compression.PatternMaxLen,
			IgnoredKeywords: c.Compression.IgnoredKeywords,
		},
		Compress: compress.Options{
			KeywordSubsetSize: c.Compression.KeywordSubsetSize,
		},
		TokenBudget: c.Compression.TokenBudget,
		Types:       table,
		Operators:   classifier,
		Logger:      logger,
	}, nil
}
