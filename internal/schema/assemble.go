package schema

import (
	"errors"
	"fmt"

	"github.com/mvp-joe/dali-distiller/internal/issues"
)

var (
	// ErrDuplicateStatement indicates two statement records with the same name
	ErrDuplicateStatement = errors.New("duplicate statement")

	// ErrDuplicateFunction indicates two function records with the same qualified name
	ErrDuplicateFunction = errors.New("duplicate function")

	// ErrEmptyFunction indicates a function record without signatures
	ErrEmptyFunction = errors.New("function has no signatures")
)

// FormatFull is the metadata format tag of a full schema.
const FormatFull = "full"

// DefaultDescription is used when the caller gives no description.
const DefaultDescription = "Complete schema with all context preserved"

// Input is everything Assemble composes into a Schema.
type Input struct {
	Version     string
	Description string
	Statements  []StatementRecord
	Functions   []FunctionRecord
	Operators   OperatorCatalog
	// Issues feeds the coverage estimate. It may be nil.
	Issues *issues.Summary
}

// Assemble composes parser output into one Schema. Records are copied so
// later changes to the input cannot reach the schema.
func Assemble(in Input) (*Schema, error) {
	s := &Schema{
		Version:    in.Version,
		Statements: make(map[string]StatementRecord, len(in.Statements)),
		Functions:  make(map[string]map[string]FunctionRecord),
		Operators:  make(OperatorCatalog),
	}

	for _, st := range in.Statements {
		if _, exists := s.Statements[st.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStatement, st.Name)
		}
		s.Statements[st.Name] = StatementRecord{
			Name:          st.Name,
			Keywords:      cloneStrings(st.Keywords),
			Variables:     cloneStrings(st.Variables),
			SyntaxPattern: st.SyntaxPattern,
		}
	}

	signatures := 0
	for _, fn := range in.Functions {
		if len(fn.Signatures) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyFunction, fn.QualifiedName())
		}
		ns := s.Functions[fn.Namespace]
		if ns == nil {
			ns = make(map[string]FunctionRecord)
			s.Functions[fn.Namespace] = ns
		}
		if _, exists := ns[fn.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateFunction, fn.QualifiedName())
		}
		sigs := make([]Signature, len(fn.Signatures))
		for i, sig := range fn.Signatures {
			sigs[i] = Signature{
				Pattern: sig.Pattern,
				Params:  cloneStrings(sig.Params),
				Returns: sig.Returns,
			}
		}
		ns[fn.Name] = FunctionRecord{Namespace: fn.Namespace, Name: fn.Name, Signatures: sigs}
		signatures += len(sigs)
	}

	for _, cat := range Categories() {
		ops := in.Operators[cat]
		if len(ops) == 0 {
			continue
		}
		copied := make([]OperatorRecord, len(ops))
		copy(copied, ops)
		for i := range copied {
			copied[i].Category = cat
		}
		s.Operators[cat] = copied
	}

	description := in.Description
	if description == "" {
		description = DefaultDescription
	}

	s.Metadata = Metadata{
		Format:      FormatFull,
		Description: description,
		Stats: Stats{
			Statements:         len(s.Statements),
			Namespaces:         len(s.Functions),
			Functions:          len(in.Functions),
			Signatures:         signatures,
			OperatorCategories: len(s.Operators.NonEmpty()),
			Operators:          s.Operators.Total(),
		},
	}
	s.Metadata.Coverage = coverage(s.Metadata.Stats, in.Issues)

	return s, nil
}

// coverage estimates the share of extracted items that parsed cleanly.
func coverage(stats Stats, summary *issues.Summary) string {
	total := stats.Statements + stats.Signatures + stats.Operators
	if total == 0 {
		return "0%"
	}
	recovered := 0
	if summary != nil {
		recovered = summary.Count(issues.MalformedGrammarBlock) +
			summary.Count(issues.MalformedSignature) +
			summary.Count(issues.UnknownOperatorCategory)
	}
	clean := max(total-recovered, 0)
	return fmt.Sprintf("%d%%", clean*100/total)
}

// cloneStrings copies s, turning nil into an empty slice so lists always serialize.
func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
