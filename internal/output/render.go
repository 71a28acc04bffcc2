// Package output renders extraction artifacts and writes them to disk.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mvp-joe/dali-distiller/internal/validate"
)

// Artifact file names.
const (
	FullFile       = "surrealql_full.yml"
	CompressedFile = "surrealql_compressed.yml"
	ComparisonFile = "schema_comparison.json"
	RawFile        = "raw_extraction.json"
)

// ErrInvalidFormat indicates an unknown output format.
var ErrInvalidFormat = errors.New("invalid output format")

// Format selects which schemas are written.
type Format string

const (
	FormatFull       Format = "full"
	FormatCompressed Format = "compressed"
	FormatBoth       Format = "both"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatFull, FormatCompressed, FormatBoth:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q (want full, compressed or both)", ErrInvalidFormat, s)
}

func (f Format) includesFull() bool       { return f == FormatFull || f == FormatBoth }
func (f Format) includesCompressed() bool { return f == FormatCompressed || f == FormatBoth }

// MonolithFile names the combined document for a format.
func MonolithFile(f Format) string {
	return "SURREALQL_MONOLITH_" + strings.ToUpper(string(f)) + ".md"
}

// Bundle is everything a run produced, already serialized where it
// matters for byte stability.
type Bundle struct {
	Format     Format
	Version    string
	Coverage   string
	Full       []byte // full schema YAML
	Compressed []byte // compressed schema YAML
	Legend     string
	Report     *validate.Report
	// Raw is written as raw_extraction.json when non-nil.
	Raw any
}

// Render serializes the bundle into the files selected by its format.
func Render(b Bundle) ([]File, error) {
	if _, err := ParseFormat(string(b.Format)); err != nil {
		return nil, err
	}

	var files []File
	if b.Format.includesFull() {
		files = append(files, File{Name: FullFile, Data: b.Full})
	}
	if b.Format.includesCompressed() {
		files = append(files, File{Name: CompressedFile, Data: b.Compressed})
	}

	if b.Report != nil {
		data, err := ComparisonJSON(b.Report)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Name: ComparisonFile, Data: data})
	}

	if b.Raw != nil {
		data, err := marshalJSON(b.Raw)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal raw extraction: %w", err)
		}
		files = append(files, File{Name: RawFile, Data: data})
	}

	files = append(files, File{Name: MonolithFile(b.Format), Data: []byte(Monolith(b))})
	return files, nil
}

// ComparisonJSON renders the report under its schema_comparison root.
func ComparisonJSON(r *validate.Report) ([]byte, error) {
	data, err := marshalJSON(map[string]*validate.Report{"schema_comparison": r})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal comparison report: %w", err)
	}
	return data, nil
}

func marshalJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

var separator = strings.Repeat("=", 80)

// Monolith renders the combined markdown document.
func Monolith(b Bundle) string {
	var sb strings.Builder

	sb.WriteString("# SurrealQL Complete Schema Documentation\n")
	sb.WriteString(fmt.Sprintf("# Generated from SurrealDB %s documentation\n", b.Version))
	sb.WriteString(fmt.Sprintf("# Coverage: %s of extracted syntax\n", b.Coverage))
	sb.WriteString("\n" + separator + "\n\n")

	if b.Format.includesCompressed() {
		sb.WriteString(fmt.Sprintf("## COMPRESSED SCHEMA%s\n", tokenNote(b.Report, validate.OutputCompressed)))
		sb.WriteString("### For smaller LLMs or token-constrained environments\n\n")
		writeFence(&sb, "yaml", string(b.Compressed))
		sb.WriteString("\n### Type Abbreviations:\n")
		writeFence(&sb, "", b.Legend)
		sb.WriteString("\n" + separator + "\n\n")
	}

	if b.Format.includesFull() {
		sb.WriteString(fmt.Sprintf("## FULL SCHEMA%s\n", tokenNote(b.Report, validate.OutputFull)))
		sb.WriteString("### For large-context models with complete context\n\n")
		writeFence(&sb, "yaml", string(b.Full))
		sb.WriteString("\n" + separator + "\n\n")
	}

	sb.WriteString("## USAGE INSTRUCTIONS\n\n")
	sb.WriteString("1. Load this entire file into context\n")
	sb.WriteString("2. Use schema to generate correct SurrealQL syntax\n")
	sb.WriteString("3. Reference function signatures and operator syntax\n")
	sb.WriteString("4. Follow statement patterns for proper query structure\n")
	sb.WriteString("\n## REMEMBER:\n")
	sb.WriteString(fmt.Sprintf("- This schema covers %s of the extracted SurrealQL syntax\n", b.Coverage))
	sb.WriteString("- Missing: query clauses outside syntax blocks, advanced type specs, comments\n")
	sb.WriteString("- When in doubt, check the schema!\n")

	return sb.String()
}

func tokenNote(r *validate.Report, name string) string {
	if r == nil {
		return ""
	}
	out, ok := r.Outputs[name]
	if !ok {
		return ""
	}
	return fmt.Sprintf(" (%d tokens)", out.Tokens)
}

func writeFence(sb *strings.Builder, lang, body string) {
	sb.WriteString("```" + lang + "\n")
	sb.WriteString(strings.TrimRight(body, "\n"))
	sb.WriteString("\n```\n")
}
