package validate

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/mvp-joe/dali-distiller/internal/schema"
)

// Changes lists the keys added, removed and changed in one section.
type Changes struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
	Changed []string `json:"changed"`
}

// Empty reports whether nothing changed.
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Changed) == 0
}

// Diff compares two full extractions section by section.
type Diff struct {
	VersionFrom string  `json:"version_from"`
	VersionTo   string  `json:"version_to"`
	Statements  Changes `json:"statements"`
	Functions   Changes `json:"functions"`
	Operators   Changes `json:"operators"`
}

// Empty reports whether the extractions carry the same records.
func (d *Diff) Empty() bool {
	return d.Statements.Empty() && d.Functions.Empty() && d.Operators.Empty()
}

// Compare diffs prior against current.
func Compare(prior, current *schema.Schema) *Diff {
	return &Diff{
		VersionFrom: prior.Version,
		VersionTo:   current.Version,
		Statements:  changes(statementIndex(prior), statementIndex(current)),
		Functions:   changes(functionIndex(prior), functionIndex(current)),
		Operators:   changes(operatorIndex(prior), operatorIndex(current)),
	}
}

func statementIndex(s *schema.Schema) map[string]any {
	idx := make(map[string]any, len(s.Statements))
	for name, st := range s.Statements {
		st.Name = ""
		idx[name] = st
	}
	return idx
}

func functionIndex(s *schema.Schema) map[string]any {
	idx := make(map[string]any)
	for ns, fns := range s.Functions {
		for name, fn := range fns {
			idx[ns+"::"+name] = fn.Signatures
		}
	}
	return idx
}

// operatorIndex keys operators by category and symbol. A symbol repeated
// within a category gets an occurrence suffix.
func operatorIndex(s *schema.Schema) map[string]any {
	idx := make(map[string]any)
	for cat, ops := range s.Operators {
		seen := make(map[string]int)
		for _, op := range ops {
			seen[op.Symbol]++
			key := fmt.Sprintf("%s %s", cat, op.Symbol)
			if n := seen[op.Symbol]; n > 1 {
				key = fmt.Sprintf("%s #%d", key, n)
			}
			idx[key] = [2]string{op.Alt, op.Description}
		}
	}
	return idx
}

func changes(before, after map[string]any) Changes {
	c := Changes{Added: []string{}, Removed: []string{}, Changed: []string{}}
	for key, old := range before {
		cur, ok := after[key]
		switch {
		case !ok:
			c.Removed = append(c.Removed, key)
		case !reflect.DeepEqual(old, cur):
			c.Changed = append(c.Changed, key)
		}
	}
	for key := range after {
		if _, ok := before[key]; !ok {
			c.Added = append(c.Added, key)
		}
	}
	sort.Strings(c.Added)
	sort.Strings(c.Removed)
	sort.Strings(c.Changed)
	return c
}
