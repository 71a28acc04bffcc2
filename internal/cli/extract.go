package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/dali-distiller/internal/config"
	"github.com/mvp-joe/dali-distiller/internal/distiller"
	"github.com/mvp-joe/dali-distiller/internal/docs"
	"github.com/mvp-joe/dali-distiller/internal/issues"
	"github.com/mvp-joe/dali-distiller/internal/validate"
)

// maxIssueDetails bounds the detail lines printed per issue kind.
const maxIssueDetails = 5

var (
	docsFlag   string
	outputFlag string
	formatFlag string
	priorFlag  string
	quietFlag  bool
	rawFlag    bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the SurrealQL schemas from the documentation",
	Long: `Extract reads a checkout of the SurrealDB documentation and writes:

  surrealql_full.yml          full schema with grammar patterns and signatures
  surrealql_compressed.yml    token-bounded schema with type codes
  schema_comparison.json      validation report
  SURREALQL_MONOLITH_*.md     combined document for loading into a model

Examples:
  # Extract from a local docs checkout
  distiller extract --docs ./docs.surrealdb.com

  # Only the compressed schema, no progress output
  distiller extract --docs ./docs.surrealdb.com --format compressed --quiet

  # Diff against an earlier extraction
  distiller extract --prior ./previous/surrealql_full.yml
`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVar(&docsFlag, "docs", "", "Documentation checkout (overrides paths.docs_root)")
	extractCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output directory (overrides output.dir)")
	extractCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Output format: full, compressed or both")
	extractCmd.Flags().StringVar(&priorFlag, "prior", "", "Earlier surrealql_full.yml to diff against")
	extractCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	extractCmd.Flags().BoolVar(&rawFlag, "raw", false, "Also write raw_extraction.json")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyExtractFlags(cmd, cfg); err != nil {
		return err
	}

	opts, err := cfg.ToDistillerOptions(newLogger())
	if err != nil {
		return err
	}
	opts.PriorPath = priorFlag

	d := distiller.New(opts, NewCLIProgressReporter(cmd.OutOrStdout(), quietFlag))
	stats, err := d.Run(cmd.Context())
	if err != nil {
		if cmd.Context().Err() != nil {
			return fmt.Errorf("extraction cancelled")
		}
		if errors.Is(err, docs.ErrSourceUnavailable) {
			return fmt.Errorf("cannot read documentation at %s: %w", opts.Layout.Root, err)
		}
		return fmt.Errorf("extraction failed: %w", err)
	}

	if quietFlag {
		return nil
	}
	return printRunSummary(cmd.OutOrStdout(), stats.Issues, stats.Report)
}

// applyExtractFlags lets command-line flags override the loaded configuration.
func applyExtractFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("docs") {
		cfg.Paths.DocsRoot = docsFlag
	}
	if flags.Changed("output") {
		cfg.Output.Dir = outputFlag
	}
	if flags.Changed("format") {
		cfg.Output.Format = formatFlag
	}
	if flags.Changed("raw") {
		cfg.Output.Raw = rawFlag
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// printRunSummary prints the issue table and the validation outcome.
func printRunSummary(w io.Writer, summary *issues.Summary, report *validate.Report) error {
	fmt.Fprintln(w)
	if summary != nil {
		if err := summary.WriteTable(w, maxIssueDetails); err != nil {
			return err
		}
	}
	if report == nil {
		return nil
	}

	fmt.Fprintln(w)
	for _, name := range []string{validate.OutputFull, validate.OutputCompressed} {
		out, ok := report.Outputs[name]
		if !ok {
			continue
		}
		budget := "no budget"
		if out.Budget > 0 {
			budget = fmt.Sprintf("budget %s", formatNumber(out.Budget))
		}
		fmt.Fprintf(w, "%-11s %s tokens (%s)\n", name+":", formatNumber(out.Tokens), budget)
	}
	for _, m := range report.OverloadMismatches {
		fmt.Fprintf(w, "✗ overload mismatch: %s\n", m)
	}
	for _, v := range report.KeywordViolations {
		fmt.Fprintf(w, "✗ statement check: %s\n", v)
	}
	if report.Diff != nil {
		printDiff(w, report.Diff)
	}
	if report.Passed {
		fmt.Fprintln(w, "✓ Validation passed")
	} else {
		fmt.Fprintln(w, "✗ Validation failed")
	}
	return nil
}

func printDiff(w io.Writer, d *validate.Diff) {
	fmt.Fprintf(w, "Changes since %s:\n", d.VersionFrom)
	sections := []struct {
		name    string
		changes validate.Changes
	}{
		{"statements", d.Statements},
		{"functions", d.Functions},
		{"operators", d.Operators},
	}
	for _, s := range sections {
		fmt.Fprintf(w, "  %-10s +%d -%d ~%d\n", s.name, len(s.changes.Added), len(s.changes.Removed), len(s.changes.Changed))
	}
}
