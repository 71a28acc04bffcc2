package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/dali-distiller/internal/compress"
	"github.com/mvp-joe/dali-distiller/internal/output"
	"github.com/mvp-joe/dali-distiller/internal/schema"
	"github.com/mvp-joe/dali-distiller/internal/validate"
)

// ErrValidationFailed indicates the compressed schema does not match the full schema.
var ErrValidationFailed = errors.New("validation failed")

var (
	validateDirFlag   string
	validatePriorFlag string
	validateWriteFlag bool
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Re-validate previously extracted schemas",
	Long: `Validate loads surrealql_full.yml and surrealql_compressed.yml from an
output directory and checks overload parity, keyword subsets and the token
budget again. It exits non-zero when validation fails.

Examples:
  distiller validate --output ./output
  distiller validate --output ./output --prior ./previous/surrealql_full.yml --write
`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&validateDirFlag, "output", "o", "", "Directory holding the extracted schemas (overrides output.dir)")
	validateCmd.Flags().StringVar(&validatePriorFlag, "prior", "", "Earlier surrealql_full.yml to diff against")
	validateCmd.Flags().BoolVar(&validateWriteFlag, "write", false, "Rewrite schema_comparison.json with the new report")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dir := cfg.Output.Dir
	if cmd.Flags().Changed("output") {
		dir = validateDirFlag
	}

	fullPath := filepath.Join(dir, output.FullFile)
	fullText, err := os.ReadFile(fullPath)
	if err != nil {
		return fmt.Errorf("cannot read full schema: %w", err)
	}
	full, err := schema.Unmarshal(fullText)
	if err != nil {
		return fmt.Errorf("invalid full schema %s: %w", fullPath, err)
	}

	compressedPath := filepath.Join(dir, output.CompressedFile)
	compressedText, err := os.ReadFile(compressedPath)
	if err != nil {
		return fmt.Errorf("cannot read compressed schema: %w", err)
	}
	compressed, err := compress.Unmarshal(compressedText)
	if err != nil {
		return fmt.Errorf("invalid compressed schema %s: %w", compressedPath, err)
	}

	var prior *schema.Schema
	if validatePriorFlag != "" {
		if prior, err = schema.Load(validatePriorFlag); err != nil {
			return fmt.Errorf("failed to load prior extraction: %w", err)
		}
	}

	report := validate.Run(validate.Input{
		Full:           full,
		Compressed:     compressed,
		FullText:       fullText,
		CompressedText: compressedText,
		Prior:          prior,
	}, validate.Options{TokenBudget: cfg.Compression.TokenBudget})

	if err := printRunSummary(cmd.OutOrStdout(), nil, report); err != nil {
		return err
	}

	if validateWriteFlag {
		data, err := output.ComparisonJSON(report)
		if err != nil {
			return err
		}
		writer, err := output.NewAtomicWriter(dir)
		if err != nil {
			return err
		}
		defer writer.Close()
		if err := writer.WriteFile(output.ComparisonFile, data); err != nil {
			return err
		}
	}

	if !report.Passed {
		return ErrValidationFailed
	}
	return nil
}
