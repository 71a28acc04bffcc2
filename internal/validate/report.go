// Package validate checks a compressed schema against the full schema it was
// derived from and builds the comparison report.
package validate

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/mvp-joe/dali-distiller/internal/compress"
	"github.com/mvp-joe/dali-distiller/internal/issues"
	"github.com/mvp-joe/dali-distiller/internal/schema"
	"github.com/mvp-joe/dali-distiller/internal/tokens"
)

// Output names used in the report.
const (
	OutputFull       = "full"
	OutputCompressed = "compressed"
)

// Options configures a validation run.
type Options struct {
	// TokenBudget bounds the compressed output. Zero or less disables the check.
	TokenBudget int
	Estimator   tokens.Estimator
	// NewRunID generates the report id. Defaults to a random UUID.
	NewRunID func() string
}

// Input is what a validation run compares.
type Input struct {
	Full           *schema.Schema
	Compressed     *compress.Schema
	FullText       []byte
	CompressedText []byte
	// Prior is an earlier full extraction to diff against. It may be nil.
	Prior  *schema.Schema
	Issues *issues.Summary
}

// Count pairs the size of a section in the full and compressed outputs.
type Count struct {
	Full       int `json:"full"`
	Compressed int `json:"compressed"`
}

// Coverage reports how much of the full schema the compressed one carries.
type Coverage struct {
	Statements Count `json:"statements"`
	Functions  Count `json:"functions"`
	Signatures Count `json:"signatures"`
	Operators  Count `json:"operators"`
}

// Output describes one rendered artifact.
type Output struct {
	tokens.Usage
	Bytes     int    `json:"bytes"`
	TargetUse string `json:"target_use"`
}

// Report is the comparison report written next to the schemas.
type Report struct {
	RunID              string            `json:"run_id"`
	Version            string            `json:"version"`
	SourceStats        schema.Stats      `json:"source_stats"`
	Outputs            map[string]Output `json:"outputs"`
	Coverage           Coverage          `json:"coverage"`
	OverloadMismatches []string          `json:"overload_mismatches"`
	KeywordViolations  []string          `json:"keyword_violations"`
	Issues             map[string]int    `json:"issues"`
	Diff               *Diff             `json:"diff,omitempty"`
	Passed             bool              `json:"passed"`
}

// Run validates in and returns the report. It never fails: problems are
// recorded in the report and reflected in Passed.
func Run(in Input, opts Options) *Report {
	newID := opts.NewRunID
	if newID == nil {
		newID = uuid.NewString
	}

	r := &Report{
		RunID:              newID(),
		Version:            in.Full.Version,
		SourceStats:        in.Full.Metadata.Stats,
		Outputs:            make(map[string]Output),
		OverloadMismatches: []string{},
		KeywordViolations:  []string{},
		Issues:             (&issues.Summary{}).Counts(),
	}
	if in.Issues != nil {
		r.Issues = in.Issues.Counts()
	}

	if in.FullText != nil {
		r.Outputs[OutputFull] = Output{
			Usage:     tokens.Check(string(in.FullText), 0, opts.Estimator),
			Bytes:     len(in.FullText),
			TargetUse: "large-context models",
		}
	}
	if in.CompressedText != nil {
		r.Outputs[OutputCompressed] = Output{
			Usage:     tokens.Check(string(in.CompressedText), opts.TokenBudget, opts.Estimator),
			Bytes:     len(in.CompressedText),
			TargetUse: "token-constrained models",
		}
	}

	if in.Compressed != nil {
		r.checkStatements(in.Full, in.Compressed)
		r.checkFunctions(in.Full, in.Compressed)
		r.Coverage.Operators = Count{Full: in.Full.Operators.Total()}
		for _, ops := range in.Compressed.Ops {
			r.Coverage.Operators.Compressed += len(ops)
		}
	}

	if in.Prior != nil {
		r.Diff = Compare(in.Prior, in.Full)
	}

	r.Passed = len(r.OverloadMismatches) == 0 && len(r.KeywordViolations) == 0
	if out, ok := r.Outputs[OutputCompressed]; ok && !out.Within {
		r.Passed = false
	}
	return r
}

func (r *Report) checkStatements(full *schema.Schema, compressed *compress.Schema) {
	keys := compress.StatementKeys(full.StatementNames())
	r.Coverage.Statements.Full = len(full.Statements)

	for _, name := range full.StatementNames() {
		st, ok := compressed.Stmts[keys[name]]
		if !ok {
			r.KeywordViolations = append(r.KeywordViolations,
				fmt.Sprintf("%s: missing from compressed output", name))
			continue
		}
		r.Coverage.Statements.Compressed++

		known := make(map[string]bool, len(full.Statements[name].Keywords))
		for _, k := range full.Statements[name].Keywords {
			known[k] = true
		}
		for _, k := range st.K {
			if !known[k] {
				r.KeywordViolations = append(r.KeywordViolations, fmt.Sprintf("%s: %s", name, k))
			}
		}
	}
}

func (r *Report) checkFunctions(full *schema.Schema, compressed *compress.Schema) {
	keys := compress.NamespaceKeys(full.Namespaces())

	for _, ns := range full.Namespaces() {
		for _, name := range full.FunctionNames(ns) {
			fn := full.Functions[ns][name]
			r.Coverage.Functions.Full++
			r.Coverage.Signatures.Full += len(fn.Signatures)

			sigs, ok := compressed.Funcs[keys[ns]][name]
			if !ok {
				r.OverloadMismatches = append(r.OverloadMismatches,
					fmt.Sprintf("%s::%s: missing from compressed output", ns, name))
				continue
			}
			r.Coverage.Functions.Compressed++
			r.Coverage.Signatures.Compressed += len(sigs)
			if len(sigs) != len(fn.Signatures) {
				r.OverloadMismatches = append(r.OverloadMismatches,
					fmt.Sprintf("%s::%s: %d overloads, compressed has %d", ns, name, len(fn.Signatures), len(sigs)))
			}
		}
	}
	sort.Strings(r.OverloadMismatches)
}
