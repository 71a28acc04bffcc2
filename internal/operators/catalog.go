// Package operators groups documented operators into the fixed category
// enumeration.
package operators

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/dali-distiller/internal/issues"
	"github.com/mvp-joe/dali-distiller/internal/schema"
)

// Classifier maps operator symbols to categories. It is immutable once built.
type Classifier struct {
	table map[string]schema.Category
}

// defaultTable is the categorisation used for the SurrealQL operators page.
func defaultTable() map[string]schema.Category {
	table := make(map[string]schema.Category)
	add := func(cat schema.Category, symbols ...string) {
		for _, s := range symbols {
			table[s] = cat
		}
	}
	add(schema.Logical, "&&", "||", "!", "!!", "AND", "OR", "NOT")
	add(schema.Comparison, "=", "!=", "==", "?=", "*=", "IS", "IS NOT", "<", "<=", ">", ">=")
	add(schema.Mathematical, "+", "-", "*", "/", "%", "**", "×", "÷")
	add(schema.Graph, "->", "<->", "<-", "OUTSIDE", "INTERSECTS")
	add(schema.Set, "∋", "∌", "∈", "∉", "⊆", "⊇", "⊃", "⊅",
		"CONTAINS", "CONTAINSNOT", "CONTAINSALL", "CONTAINSANY", "CONTAINSNONE",
		"INSIDE", "NOTINSIDE", "IN", "NOT IN", "ALLINSIDE",
		"ANYINSIDE", "NONEINSIDE")
	add(schema.Fuzzy, "~", "!~", "?~", "*~")
	add(schema.NullHandling, "??", "?:")
	add(schema.Other, "@@", "@[", "@]")
	return table
}

// DefaultClassifier returns the built-in categorisation.
func DefaultClassifier() *Classifier {
	return &Classifier{table: defaultTable()}
}

// NewClassifier builds a classifier from the default table plus overrides
// keyed by symbol. Override categories must be valid category keys. Keyword
// symbols match case-insensitively, so "and" overrides "AND".
func NewClassifier(overrides map[string]string) (*Classifier, error) {
	c := DefaultClassifier()
	for symbol, key := range overrides {
		cat, ok := schema.ParseCategory(key)
		if !ok {
			return nil, fmt.Errorf("unknown operator category %q for %q", key, symbol)
		}
		c.table[strings.ToUpper(strings.TrimSpace(symbol))] = cat
	}
	return c, nil
}

// Classify returns the category of symbol. Keyword symbols match
// case-insensitively.
func (c *Classifier) Classify(symbol string) (schema.Category, bool) {
	s := strings.TrimSpace(symbol)
	if cat, ok := c.table[s]; ok {
		return cat, true
	}
	cat, ok := c.table[strings.ToUpper(s)]
	return cat, ok
}

// Builder accumulates operators per category in source order. Symbols are
// never deduplicated across categories.
type Builder struct {
	classifier *Classifier
	catalog    schema.OperatorCatalog
	issues     *issues.Summary
}

// NewBuilder creates a builder reporting fallbacks to summary.
func NewBuilder(classifier *Classifier, summary *issues.Summary) *Builder {
	if classifier == nil {
		classifier = DefaultClassifier()
	}
	if summary == nil {
		summary = &issues.Summary{}
	}
	return &Builder{
		classifier: classifier,
		catalog:    make(schema.OperatorCatalog),
		issues:     summary,
	}
}

// Add files rec under the category named by key. Unknown keys fall back
// to "other" and are reported.
func (b *Builder) Add(key string, rec schema.OperatorRecord) schema.Category {
	cat, ok := schema.ParseCategory(strings.ToLower(strings.TrimSpace(key)))
	if !ok {
		b.issues.Add(issues.Issue{
			Kind:    issues.UnknownOperatorCategory,
			Subject: rec.Symbol,
			Detail:  fmt.Sprintf("unknown category %q", key),
		})
	}
	b.append(cat, rec)
	return cat
}

// Classify files rec under the category of its symbol, or of its
// alternate keyword when the symbol is unknown. Unclassified operators
// go to "other" and are reported.
func (b *Builder) Classify(rec schema.OperatorRecord, source string) schema.Category {
	cat, ok := b.classifier.Classify(rec.Symbol)
	if !ok && rec.Alt != "" {
		cat, ok = b.classifier.Classify(rec.Alt)
	}
	if !ok {
		cat = schema.Other
		b.issues.Add(issues.Issue{
			Kind:    issues.UnknownOperatorCategory,
			Subject: rec.Symbol,
			Detail:  "no category for symbol",
			Source:  source,
		})
	}
	b.append(cat, rec)
	return cat
}

func (b *Builder) append(cat schema.Category, rec schema.OperatorRecord) {
	rec.Category = cat
	b.catalog[cat] = append(b.catalog[cat], rec)
}

// Catalog returns a copy of the accumulated catalog.
func (b *Builder) Catalog() schema.OperatorCatalog {
	out := make(schema.OperatorCatalog, len(b.catalog))
	for cat, ops := range b.catalog {
		copied := make([]schema.OperatorRecord, len(ops))
		copy(copied, ops)
		out[cat] = copied
	}
	return out
}
