package signature

import (
	"strings"

	"github.com/mvp-joe/dali-distiller/internal/issues"
	"github.com/mvp-joe/dali-distiller/internal/schema"
)

// Collector groups parsed overloads into function records, keeping the
// order in which functions and their overloads were documented.
type Collector struct {
	order   []string
	records map[string]*schema.FunctionRecord
	issues  *issues.Summary
}

// NewCollector creates a collector. Malformed patterns are reported to summary.
func NewCollector(summary *issues.Summary) *Collector {
	if summary == nil {
		summary = &issues.Summary{}
	}
	return &Collector{
		records: make(map[string]*schema.FunctionRecord),
		issues:  summary,
	}
}

// AddBlock parses every call pattern of an API definition block. Each
// non-comment line is one pattern; a parameter list spanning several
// lines is joined first.
func (c *Collector) AddBlock(block, namespaceHint, source string) {
	var pending strings.Builder
	depth := 0

	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") || strings.HasPrefix(trimmed, "//") {
			continue
		}
		if pending.Len() > 0 {
			pending.WriteByte(' ')
		}
		pending.WriteString(trimmed)
		depth += strings.Count(trimmed, "(") - strings.Count(trimmed, ")")
		if depth > 0 {
			continue
		}
		c.Add(pending.String(), namespaceHint, source)
		pending.Reset()
		depth = 0
	}

	// Whatever is left never balanced; it is recorded as malformed.
	if pending.Len() > 0 {
		c.Add(pending.String(), namespaceHint, source)
	}
}

// Add parses one call pattern and attaches it to its function.
func (c *Collector) Add(pattern, namespaceHint, source string) Parsed {
	p := Parse(pattern, namespaceHint)
	if p.Malformed {
		c.issues.Add(issues.Issue{
			Kind:    issues.MalformedSignature,
			Subject: p.QualifiedName(),
			Detail:  p.Problem + ": " + p.Signature.Pattern,
			Source:  source,
		})
	}

	key := p.QualifiedName()
	rec, ok := c.records[key]
	if !ok {
		rec = &schema.FunctionRecord{Namespace: p.Namespace, Name: p.Name}
		c.records[key] = rec
		c.order = append(c.order, key)
	}
	rec.Signatures = append(rec.Signatures, p.Signature)
	return p
}

// Functions returns the collected records in first-seen order.
func (c *Collector) Functions() []schema.FunctionRecord {
	out := make([]schema.FunctionRecord, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, *c.records[key])
	}
	return out
}

// Len returns the number of distinct functions collected.
func (c *Collector) Len() int {
	return len(c.order)
}
