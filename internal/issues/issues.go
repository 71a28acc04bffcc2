// Package issues accumulates recoverable extraction problems for the run summary.
package issues

import (
	"fmt"
	"io"
)

// Kind classifies a recoverable problem.
type Kind string

const (
	// MalformedGrammarBlock is a syntax block with unbalanced brackets.
	MalformedGrammarBlock Kind = "MalformedGrammarBlock"
	// MalformedSignature is a function pattern that does not fit ns::name(params) -> ret.
	MalformedSignature Kind = "MalformedSignature"
	// UnknownTypeDescriptor is a type with no abbreviation mapping.
	UnknownTypeDescriptor Kind = "UnknownTypeDescriptor"
	// UnknownOperatorCategory is an operator that fell back to the "other" category.
	UnknownOperatorCategory Kind = "UnknownOperatorCategory"
)

// Kinds lists every kind in summary order.
var Kinds = []Kind{
	MalformedGrammarBlock,
	MalformedSignature,
	UnknownTypeDescriptor,
	UnknownOperatorCategory,
}

// Issue is a single recoverable problem.
type Issue struct {
	Kind    Kind   `json:"kind"`
	Subject string `json:"subject"` // statement, function or operator the issue belongs to
	Detail  string `json:"detail"`
	Source  string `json:"source,omitempty"`
}

// Summary collects issues in the order they were reported.
// The zero value is ready to use.
type Summary struct {
	items  []Issue
	counts map[Kind]int
}

// Add records an issue.
func (s *Summary) Add(issue Issue) {
	if s.counts == nil {
		s.counts = make(map[Kind]int)
	}
	s.items = append(s.items, issue)
	s.counts[issue.Kind]++
}

// Addf records an issue with a formatted detail.
func (s *Summary) Addf(kind Kind, subject, format string, args ...any) {
	s.Add(Issue{Kind: kind, Subject: subject, Detail: fmt.Sprintf(format, args...)})
}

// Merge appends every issue of other.
func (s *Summary) Merge(other *Summary) {
	if other == nil {
		return
	}
	for _, issue := range other.items {
		s.Add(issue)
	}
}

// Count returns the number of issues of a kind.
func (s *Summary) Count(kind Kind) int {
	return s.counts[kind]
}

// Total returns the number of issues.
func (s *Summary) Total() int {
	return len(s.items)
}

// Items returns the issues in report order.
func (s *Summary) Items() []Issue {
	out := make([]Issue, len(s.items))
	copy(out, s.items)
	return out
}

// Counts returns per-kind counts keyed by kind name, including zero counts.
func (s *Summary) Counts() map[string]int {
	out := make(map[string]int, len(Kinds))
	for _, k := range Kinds {
		out[string(k)] = s.counts[k]
	}
	return out
}

// WriteTable renders the per-kind counts, followed by up to maxDetails
// detail lines per kind when maxDetails > 0.
func (s *Summary) WriteTable(w io.Writer, maxDetails int) error {
	if _, err := fmt.Fprintf(w, "Issues (%d):\n", s.Total()); err != nil {
		return err
	}
	for _, k := range Kinds {
		fmt.Fprintf(w, "  %-24s %d\n", string(k)+":", s.counts[k])
	}

	if maxDetails <= 0 {
		return nil
	}
	for _, k := range Kinds {
		shown := 0
		for _, issue := range s.items {
			if issue.Kind != k {
				continue
			}
			if shown == maxDetails {
				fmt.Fprintf(w, "    %s: ... %d more\n", k, s.counts[k]-shown)
				break
			}
			fmt.Fprintf(w, "    %s: %s: %s\n", k, issue.Subject, issue.Detail)
			shown++
		}
	}
	return nil
}
