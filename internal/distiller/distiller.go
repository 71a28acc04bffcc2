// Package distiller runs the extraction pipeline: it reads a documentation
// tree, builds the full and compressed schemas, validates them and writes
// the output files.
package distiller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mvp-joe/dali-distiller/internal/compress"
	"github.com/mvp-joe/dali-distiller/internal/docs"
	"github.com/mvp-joe/dali-distiller/internal/grammar"
	"github.com/mvp-joe/dali-distiller/internal/issues"
	"github.com/mvp-joe/dali-distiller/internal/operators"
	"github.com/mvp-joe/dali-distiller/internal/ordered"
	"github.com/mvp-joe/dali-distiller/internal/output"
	"github.com/mvp-joe/dali-distiller/internal/schema"
	"github.com/mvp-joe/dali-distiller/internal/signature"
	"github.com/mvp-joe/dali-distiller/internal/types"
	"github.com/mvp-joe/dali-distiller/internal/validate"
)

// DefaultFallbackVersion is used when neither configuration nor the
// releases page name a version.
const DefaultFallbackVersion = "2.3.7"

// Options configures a Distiller. Zero values fall back to defaults.
type Options struct {
	Layout    docs.Layout
	OutputDir string
	Format    output.Format
	// Raw also writes the scanned blocks as raw_extraction.json.
	Raw bool

	// Version overrides the version read from the releases page.
	Version         string
	FallbackVersion string
	Description     string

	Grammar     grammar.Options
	Compress    compress.Options
	TokenBudget int
	Types       *types.Table
	Operators   *operators.Classifier

	// PriorPath names an earlier surrealql_full.yml to diff against.
	PriorPath string
	NewRunID  func() string
	Logger    *slog.Logger
}

// Stats summarizes a completed run.
type Stats struct {
	Version    string
	Coverage   string
	Files      int
	Statements int
	Functions  int
	Signatures int
	Operators  int
	Issues     *issues.Summary
	Report     *validate.Report
	Outputs    []string
	Duration   time.Duration
}

// RawExtraction is the scanned documentation before parsing.
type RawExtraction struct {
	Version   string          `json:"version"`
	Blocks    []docs.Block    `json:"blocks"`
	Operators []docs.Operator `json:"operators"`
}

// Extraction is the in-memory result of a run before anything is written.
type Extraction struct {
	Full           *schema.Schema
	Compressed     *compress.Result
	FullText       []byte
	CompressedText []byte
	Report         *validate.Report
	Issues         *issues.Summary
	Raw            *RawExtraction
	Files          int
}

// Distiller runs the pipeline.
type Distiller struct {
	opts     Options
	progress ProgressReporter
	logger   *slog.Logger
}

// New creates a distiller. A nil progress reporter disables progress output.
func New(opts Options, progress ProgressReporter) *Distiller {
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}
	if opts.Format == "" {
		opts.Format = output.FormatBoth
	}
	if opts.FallbackVersion == "" {
		opts.FallbackVersion = DefaultFallbackVersion
	}
	if opts.Types == nil {
		opts.Types = types.Default()
	}
	if opts.Operators == nil {
		opts.Operators = operators.DefaultClassifier()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Distiller{opts: opts, progress: progress, logger: logger}
}

// Run extracts the schemas and writes every selected output file.
func (d *Distiller) Run(ctx context.Context) (*Stats, error) {
	start := time.Now()

	ext, err := d.Extract(ctx)
	if err != nil {
		return nil, err
	}

	var raw any
	if d.opts.Raw {
		raw = ext.Raw
	}
	files, err := output.Render(output.Bundle{
		Format:     d.opts.Format,
		Version:    ext.Full.Version,
		Coverage:   ext.Full.Metadata.Coverage,
		Full:       ext.FullText,
		Compressed: ext.CompressedText,
		Legend:     d.opts.Types.Legend(),
		Report:     ext.Report,
		Raw:        raw,
	})
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.progress.OnWritingOutputs()
	writer, err := output.NewAtomicWriter(d.opts.OutputDir)
	if err != nil {
		return nil, err
	}
	defer writer.Close()
	if err := writer.WriteAll(files); err != nil {
		return nil, err
	}

	stats := &Stats{
		Version:    ext.Full.Version,
		Coverage:   ext.Full.Metadata.Coverage,
		Files:      ext.Files,
		Statements: ext.Full.Metadata.Stats.Statements,
		Functions:  ext.Full.Metadata.Stats.Functions,
		Signatures: ext.Full.Metadata.Stats.Signatures,
		Operators:  ext.Full.Metadata.Stats.Operators,
		Issues:     ext.Issues,
		Report:     ext.Report,
		Duration:   time.Since(start),
	}
	for _, f := range files {
		stats.Outputs = append(stats.Outputs, f.Name)
	}

	d.progress.OnComplete(stats)
	return stats, nil
}

// Extract runs every stage up to rendering and returns the results in memory.
func (d *Distiller) Extract(ctx context.Context) (*Extraction, error) {
	scanner := docs.NewScanner(d.opts.Layout, d.logger)

	d.progress.OnDiscoveryStart()
	inv, err := scanner.Discover()
	if err != nil {
		return nil, err
	}
	d.progress.OnDiscoveryComplete(len(inv.StatementFiles), len(inv.FunctionFiles))

	d.progress.OnFileProcessingStart(inv.Total())
	src, err := scanner.Scan(inv, d.progress.OnFileProcessed)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.progress.OnEncodingStart()
	summary := &issues.Summary{}

	full, err := schema.Assemble(schema.Input{
		Version:     d.resolveVersion(src.Version),
		Description: d.opts.Description,
		Statements:  d.parseStatements(src.Blocks, summary),
		Functions:   d.parseFunctions(src.Blocks, summary),
		Operators:   d.buildOperators(src.Operators, summary),
		Issues:      summary,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assemble schema: %w", err)
	}

	encoded := compress.NewEncoder(d.opts.Types, d.opts.Compress).Encode(full)
	summary.Merge(encoded.Issues)

	fullText, err := schema.Marshal(full)
	if err != nil {
		return nil, err
	}
	compressedText, err := compress.Marshal(encoded.Schema)
	if err != nil {
		return nil, err
	}

	var prior *schema.Schema
	if d.opts.PriorPath != "" {
		if prior, err = schema.Load(d.opts.PriorPath); err != nil {
			return nil, fmt.Errorf("failed to load prior extraction: %w", err)
		}
	}

	report := validate.Run(validate.Input{
		Full:           full,
		Compressed:     encoded.Schema,
		FullText:       fullText,
		CompressedText: compressedText,
		Prior:          prior,
		Issues:         summary,
	}, validate.Options{
		TokenBudget: d.opts.TokenBudget,
		NewRunID:    d.opts.NewRunID,
	})

	d.logger.Debug("extraction complete",
		"version", full.Version,
		"coverage", full.Metadata.Coverage,
		"issues", summary.Total())

	return &Extraction{
		Full:           full,
		Compressed:     encoded,
		FullText:       fullText,
		CompressedText: compressedText,
		Report:         report,
		Issues:         summary,
		Raw: &RawExtraction{
			Version:   full.Version,
			Blocks:    src.Blocks,
			Operators: src.Operators,
		},
		Files: inv.Total(),
	}, nil
}

func (d *Distiller) resolveVersion(detected string) string {
	switch {
	case d.opts.Version != "":
		return d.opts.Version
	case detected != "":
		return detected
	default:
		d.logger.Warn("no release version found, using fallback", "version", d.opts.FallbackVersion)
		return d.opts.FallbackVersion
	}
}

// parseStatements groups grammar blocks by statement, keeping the order in
// which statements were first documented.
func (d *Distiller) parseStatements(blocks []docs.Block, summary *issues.Summary) []schema.StatementRecord {
	parser := grammar.NewParser(d.opts.Grammar)
	names := ordered.NewSet[string]()
	texts := make(map[string][]string)
	sources := make(map[string]string)

	for _, b := range blocks {
		if b.Kind != docs.KindStatement {
			continue
		}
		if names.Add(b.Key) {
			sources[b.Key] = b.Source
		}
		texts[b.Key] = append(texts[b.Key], b.Text)
	}

	records := make([]schema.StatementRecord, 0, names.Len())
	for _, name := range names.Items() {
		res := parser.ParseBlocks(texts[name])
		if res.Malformed {
			summary.Add(issues.Issue{
				Kind:    issues.MalformedGrammarBlock,
				Subject: name,
				Detail:  res.Problem,
				Source:  sources[name],
			})
		}
		records = append(records, schema.StatementRecord{
			Name:          name,
			Keywords:      res.Keywords,
			Variables:     res.Variables,
			SyntaxPattern: res.Pattern,
		})
	}
	return records
}

func (d *Distiller) parseFunctions(blocks []docs.Block, summary *issues.Summary) []schema.FunctionRecord {
	collector := signature.NewCollector(summary)
	for _, b := range blocks {
		if b.Kind == docs.KindFunction {
			collector.AddBlock(b.Text, b.Key, b.Source)
		}
	}
	return collector.Functions()
}

func (d *Distiller) buildOperators(ops []docs.Operator, summary *issues.Summary) schema.OperatorCatalog {
	builder := operators.NewBuilder(d.opts.Operators, summary)
	for _, op := range ops {
		builder.Classify(schema.OperatorRecord{
			Symbol:      op.Symbol,
			Alt:         op.Alt,
			Description: op.Description,
		}, op.Source)
	}
	return builder.Catalog()
}
