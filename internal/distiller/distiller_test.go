package distiller

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/dali-distiller/internal/compress"
	"github.com/mvp-joe/dali-distiller/internal/docs"
	"github.com/mvp-joe/dali-distiller/internal/issues"
	"github.com/mvp-joe/dali-distiller/internal/output"
	"github.com/mvp-joe/dali-distiller/internal/schema"
	"github.com/mvp-joe/dali-distiller/internal/validate"
)

// Test Plan for Distiller:
// - Extract builds statements, functions and operators from the fixture tree
// - Recoverable problems are collected per kind and lower the coverage
// - The version comes from configuration, then the releases page, then the fallback
// - Run writes every artifact of the selected format and reports progress
// - Two runs over the same tree produce byte-identical schemas and monolith
// - A prior extraction is diffed into the report
// - A missing documentation tree fails before anything is written
// - A cancelled context stops the run

const fixtureRoot = "../../testdata/docs"

func fixedID() string { return "run-1" }

func newDistiller(outputDir string, mutate func(*Options)) *Distiller {
	opts := Options{
		Layout:      docs.DefaultLayout(fixtureRoot),
		OutputDir:   outputDir,
		TokenBudget: 2800,
		NewRunID:    fixedID,
	}
	if mutate != nil {
		mutate(&opts)
	}
	return New(opts, nil)
}

type recordingReporter struct {
	NoOpProgressReporter
	stmtFiles, funcFiles int
	total                int
	processed            []string
	writing              bool
	stats                *Stats
}

func (r *recordingReporter) OnDiscoveryComplete(statementFiles, functionFiles int) {
	r.stmtFiles, r.funcFiles = statementFiles, functionFiles
}
func (r *recordingReporter) OnFileProcessingStart(totalFiles int) { r.total = totalFiles }
func (r *recordingReporter) OnFileProcessed(fileName string)      { r.processed = append(r.processed, fileName) }
func (r *recordingReporter) OnWritingOutputs()                    { r.writing = true }
func (r *recordingReporter) OnComplete(stats *Stats)              { r.stats = stats }

func TestExtract(t *testing.T) {
	t.Parallel()

	ext, err := newDistiller(t.TempDir(), nil).Extract(context.Background())
	require.NoError(t, err)
	full := ext.Full

	assert.Equal(t, "2.3.7", full.Version)
	assert.Equal(t, []string{"break", "define/event", "define/table", "live", "select"}, full.StatementNames())
	assert.Equal(t, []string{"array", "file", "rand", "string"}, full.Namespaces())
	assert.Equal(t, []string{"bool", "rand"}, full.FunctionNames("rand"))
	assert.Equal(t, []string{"is::alpha", "replace"}, full.FunctionNames("string"))

	assert.Equal(t, schema.Stats{
		Statements:         5,
		Namespaces:         4,
		Functions:          7,
		Signatures:         9,
		OperatorCategories: 4,
		Operators:          5,
	}, full.Metadata.Stats)

	put, ok := full.Function("file", "put")
	require.True(t, ok)
	assert.Equal(t, "none", put.Signatures[0].Returns)
	assert.Equal(t, compress.SigSet{">0"}, ext.Compressed.Schema.Funcs["fil"]["put"])

	rb, ok := full.Function("rand", "bool")
	require.True(t, ok)
	assert.Len(t, rb.Signatures, 2)
	assert.Len(t, ext.Compressed.Schema.Funcs["ran"]["bool"], 2)

	require.Len(t, full.Operators[schema.Comparison], 2)
	assert.Equal(t, "=", full.Operators[schema.Comparison][0].Symbol)
	assert.Equal(t, "IS", full.Operators[schema.Comparison][0].Alt)
	assert.Equal(t, "==", full.Operators[schema.Comparison][1].Symbol)
	assert.Equal(t, "<|4|>", full.Operators[schema.Other][0].Symbol)

	assert.True(t, ext.Report.Passed)
	assert.Empty(t, ext.Report.OverloadMismatches)
	assert.Empty(t, ext.Report.KeywordViolations)
	assert.Equal(t, 14, ext.Files)
	assert.Len(t, ext.Raw.Blocks, 13)
}

func TestExtract_Issues(t *testing.T) {
	t.Parallel()

	ext, err := newDistiller(t.TempDir(), nil).Extract(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, ext.Issues.Count(issues.MalformedGrammarBlock))
	assert.Equal(t, 1, ext.Issues.Count(issues.MalformedSignature))
	assert.Equal(t, 1, ext.Issues.Count(issues.UnknownTypeDescriptor))
	assert.Equal(t, 1, ext.Issues.Count(issues.UnknownOperatorCategory))

	// 19 items, 3 of them degraded
	assert.Equal(t, "84%", ext.Full.Metadata.Coverage)

	items := ext.Issues.Items()
	assert.Equal(t, "define/event", items[0].Subject)
	assert.Equal(t, "src/content/doc-surrealql/statements/define/event.mdx", items[0].Source)
}

func TestExtract_Version(t *testing.T) {
	t.Parallel()

	ext, err := newDistiller(t.TempDir(), func(o *Options) { o.Version = "3.0.0" }).Extract(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "3.0.0", ext.Full.Version)

	noReleases := func(o *Options) { o.Layout.ReleasesFile = "missing.mdx" }
	ext, err = newDistiller(t.TempDir(), noReleases).Extract(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultFallbackVersion, ext.Full.Version)

	ext, err = newDistiller(t.TempDir(), func(o *Options) {
		noReleases(o)
		o.FallbackVersion = "1.0.0"
	}).Extract(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", ext.Full.Version)
}

func TestRun(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	reporter := &recordingReporter{}
	d := New(Options{
		Layout:      docs.DefaultLayout(fixtureRoot),
		OutputDir:   out,
		Raw:         true,
		TokenBudget: 2800,
		NewRunID:    fixedID,
	}, reporter)

	stats, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		output.FullFile,
		output.CompressedFile,
		output.ComparisonFile,
		output.RawFile,
		"SURREALQL_MONOLITH_BOTH.md",
	}, stats.Outputs)
	for _, name := range stats.Outputs {
		assert.FileExists(t, filepath.Join(out, name))
	}
	assert.NoDirExists(t, filepath.Join(out, ".tmp"))

	loaded, err := schema.Load(filepath.Join(out, output.FullFile))
	require.NoError(t, err)
	assert.Equal(t, 5, len(loaded.Statements))

	compressed, err := compress.Load(filepath.Join(out, output.CompressedFile))
	require.NoError(t, err)
	assert.Equal(t, "2.3.7", compressed.V)

	assert.Equal(t, 7, reporter.stmtFiles)
	assert.Equal(t, 5, reporter.funcFiles)
	assert.Equal(t, 14, reporter.total)
	assert.Len(t, reporter.processed, 14)
	assert.True(t, reporter.writing)
	assert.Same(t, stats, reporter.stats)
	assert.Equal(t, "84%", stats.Coverage)
}

func TestRun_FormatFull(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	stats, err := newDistiller(out, func(o *Options) { o.Format = output.FormatFull }).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{output.FullFile, output.ComparisonFile, "SURREALQL_MONOLITH_FULL.md"}, stats.Outputs)
	assert.NoFileExists(t, filepath.Join(out, output.CompressedFile))
}

func TestRun_Deterministic(t *testing.T) {
	t.Parallel()

	first, second := t.TempDir(), t.TempDir()
	_, err := newDistiller(first, nil).Run(context.Background())
	require.NoError(t, err)
	_, err = newDistiller(second, nil).Run(context.Background())
	require.NoError(t, err)

	for _, name := range []string{output.FullFile, output.CompressedFile, output.ComparisonFile, "SURREALQL_MONOLITH_BOTH.md"} {
		a, err := os.ReadFile(filepath.Join(first, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(second, name))
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b), name)
	}
}

func TestRun_Prior(t *testing.T) {
	t.Parallel()

	priorDir := t.TempDir()
	_, err := newDistiller(priorDir, nil).Run(context.Background())
	require.NoError(t, err)

	ext, err := newDistiller(t.TempDir(), func(o *Options) {
		o.PriorPath = filepath.Join(priorDir, output.FullFile)
	}).Extract(context.Background())
	require.NoError(t, err)

	require.NotNil(t, ext.Report.Diff)
	assert.True(t, ext.Report.Diff.Empty())

	_, err = newDistiller(t.TempDir(), func(o *Options) {
		o.PriorPath = filepath.Join(priorDir, "missing.yml")
	}).Extract(context.Background())
	assert.Error(t, err)
}

func TestRun_SourceUnavailable(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "out")
	_, err := newDistiller(out, func(o *Options) {
		o.Layout = docs.DefaultLayout(filepath.Join(t.TempDir(), "missing"))
	}).Run(context.Background())

	assert.ErrorIs(t, err, docs.ErrSourceUnavailable)
	assert.NoDirExists(t, out)
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newDistiller(t.TempDir(), nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_ReportOutputs(t *testing.T) {
	t.Parallel()

	ext, err := newDistiller(t.TempDir(), nil).Extract(context.Background())
	require.NoError(t, err)

	compressed := ext.Report.Outputs[validate.OutputCompressed]
	full := ext.Report.Outputs[validate.OutputFull]
	assert.True(t, compressed.Within)
	assert.Less(t, compressed.Tokens, full.Tokens)
	assert.Equal(t, "run-1", ext.Report.RunID)
}
