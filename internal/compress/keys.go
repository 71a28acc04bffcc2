package compress

import (
	"sort"
	"strings"

	"github.com/mvp-joe/dali-distiller/internal/schema"
)

// verbAbbreviations override the three-letter rule for statement verbs.
var verbAbbreviations = map[string]string{
	"select": "sel",
	"insert": "ins",
	"update": "upd",
	"delete": "del",
	"create": "cre",
	"alter":  "alt",
	"define": "def",
	"remove": "rem",
}

// StatementKeys maps each statement name to its compressed key:
// "select" -> "sel", "define/table" -> "def/tab". Names are resolved in
// sorted order; a name whose abbreviation is already taken keeps its full
// name.
func StatementKeys(names []string) map[string]string {
	return assignKeys(names, abbreviateStatement)
}

// NamespaceKeys maps function namespaces to three-letter keys with the
// same collision rule as StatementKeys.
func NamespaceKeys(names []string) map[string]string {
	return assignKeys(names, prefix3)
}

// CategoryKey abbreviates an operator category to three letters.
func CategoryKey(c schema.Category) string {
	return prefix3(string(c))
}

// categoryOrder ranks category keys by enumeration order.
func categoryOrder() map[string]int {
	order := make(map[string]int)
	for i, c := range schema.Categories() {
		order[CategoryKey(c)] = i
	}
	return order
}

func abbreviateStatement(name string) string {
	segments := strings.Split(name, "/")
	for i, seg := range segments {
		if abbr, ok := verbAbbreviations[seg]; ok {
			segments[i] = abbr
			continue
		}
		segments[i] = prefix3(seg)
	}
	return strings.Join(segments, "/")
}

func prefix3(s string) string {
	runes := []rune(s)
	if len(runes) <= 3 {
		return s
	}
	return string(runes[:3])
}

func assignKeys(names []string, abbreviate func(string) string) map[string]string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)

	keys := make(map[string]string, len(sorted))
	used := make(map[string]bool, len(sorted))
	for _, name := range sorted {
		key := abbreviate(name)
		if used[key] {
			key = name
		}
		used[key] = true
		keys[name] = key
	}
	return keys
}
