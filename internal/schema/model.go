// Package schema holds the in-memory SurrealQL schema shared by the parsers
// and the encoders, and its full YAML serialization.
package schema

import (
	"sort"
)

// StatementRecord describes one statement's grammar.
type StatementRecord struct {
	Name          string   `yaml:"-" json:"-"`
	Keywords      []string `yaml:"keywords" json:"keywords"`
	Variables     []string `yaml:"variables" json:"variables"`
	SyntaxPattern string   `yaml:"syntax_pattern" json:"syntax_pattern"`
}

// Signature is one documented call shape of a function.
type Signature struct {
	Pattern string   `yaml:"pattern" json:"pattern"`
	Params  []string `yaml:"params" json:"params"`
	Returns string   `yaml:"returns" json:"returns"`
}

// FunctionRecord groups every overload of one function in documentation order.
type FunctionRecord struct {
	Namespace  string      `yaml:"-" json:"-"`
	Name       string      `yaml:"-" json:"-"`
	Signatures []Signature `yaml:"signatures" json:"signatures"`
}

// QualifiedName returns "namespace::name".
func (f FunctionRecord) QualifiedName() string {
	return f.Namespace + "::" + f.Name
}

// Category is one of the fixed operator categories.
type Category string

const (
	Logical      Category = "logical"
	Comparison   Category = "comparison"
	Mathematical Category = "mathematical"
	Graph        Category = "graph"
	Set          Category = "set"
	Fuzzy        Category = "fuzzy"
	NullHandling Category = "null_handling"
	Other        Category = "other"
)

// Categories lists the closed category enumeration in output order.
func Categories() []Category {
	return []Category{Logical, Comparison, Mathematical, Graph, Set, Fuzzy, NullHandling, Other}
}

// ParseCategory validates a category key.
func ParseCategory(key string) (Category, bool) {
	for _, c := range Categories() {
		if string(c) == key {
			return c, true
		}
	}
	return Other, false
}

// OperatorRecord is one documented operator.
type OperatorRecord struct {
	Category    Category `yaml:"-" json:"-"`
	Symbol      string   `yaml:"symbol" json:"symbol"`
	Alt         string   `yaml:"alt" json:"alt,omitempty"` // empty means no alternate keyword
	Description string   `yaml:"description" json:"description"`
}

// OperatorCatalog holds operators per category, source order within a category.
type OperatorCatalog map[Category][]OperatorRecord

// Total returns the number of operators across categories.
func (c OperatorCatalog) Total() int {
	n := 0
	for _, ops := range c {
		n += len(ops)
	}
	return n
}

// NonEmpty returns the categories holding operators, in enumeration order.
func (c OperatorCatalog) NonEmpty() []Category {
	var cats []Category
	for _, cat := range Categories() {
		if len(c[cat]) > 0 {
			cats = append(cats, cat)
		}
	}
	return cats
}

// Stats are the counts recorded in the schema metadata.
type Stats struct {
	Statements         int `yaml:"statements" json:"statements"`
	Namespaces         int `yaml:"namespaces" json:"namespaces"`
	Functions          int `yaml:"functions" json:"functions"`
	Signatures         int `yaml:"signatures" json:"signatures"`
	OperatorCategories int `yaml:"operator_categories" json:"operator_categories"`
	Operators          int `yaml:"operators" json:"operators"`
}

// Metadata describes an assembled schema.
type Metadata struct {
	Coverage    string `yaml:"coverage" json:"coverage"`
	Format      string `yaml:"format" json:"format"`
	Description string `yaml:"description" json:"description"`
	Stats       Stats  `yaml:"stats" json:"stats"`
}

// Schema is the root of an extraction. It is built once by Assemble and
// only read afterwards.
type Schema struct {
	Version    string                               `yaml:"version"`
	Metadata   Metadata                             `yaml:"metadata"`
	Statements map[string]StatementRecord           `yaml:"statements"`
	Functions  map[string]map[string]FunctionRecord `yaml:"functions"`
	Operators  OperatorCatalog                      `yaml:"operators"`
}

// StatementNames returns statement keys in sorted order.
func (s *Schema) StatementNames() []string {
	return sortedKeys(s.Statements)
}

// Namespaces returns function namespaces in sorted order.
func (s *Schema) Namespaces() []string {
	return sortedKeys(s.Functions)
}

// FunctionNames returns the function names of a namespace in sorted order.
func (s *Schema) FunctionNames(namespace string) []string {
	return sortedKeys(s.Functions[namespace])
}

// Function looks up a function record.
func (s *Schema) Function(namespace, name string) (FunctionRecord, bool) {
	fn, ok := s.Functions[namespace][name]
	return fn, ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
