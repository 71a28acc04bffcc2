package docs

import "path/filepath"

// Layout locates the parts of a documentation tree. Content paths are
// relative to ContentDir; ContentDir and ReleasesFile to Root.
type Layout struct {
	Root          string
	ContentDir    string
	StatementsDir string
	FunctionsDir  string
	OperatorsFile string
	ReleasesFile  string
	Include       []string
	Ignore        []string
}

// DefaultLayout returns the layout of the docs.surrealdb.com repository.
func DefaultLayout(root string) Layout {
	return Layout{
		Root:          root,
		ContentDir:    "src/content/doc-surrealql",
		StatementsDir: "statements",
		FunctionsDir:  "functions/database",
		OperatorsFile: "operators.mdx",
		ReleasesFile:  "src/content/doc-surrealdb/introduction/releases.mdx",
		Include:       []string{"**/*.mdx"},
		Ignore:        []string{"**/_*", "_*"},
	}
}

func (l Layout) ContentPath() string {
	return filepath.Join(l.Root, l.ContentDir)
}

func (l Layout) StatementsPath() string {
	return filepath.Join(l.ContentPath(), l.StatementsDir)
}

func (l Layout) FunctionsPath() string {
	return filepath.Join(l.ContentPath(), l.FunctionsDir)
}

func (l Layout) OperatorsPath() string {
	return filepath.Join(l.ContentPath(), l.OperatorsFile)
}

func (l Layout) ReleasesPath() string {
	return filepath.Join(l.Root, l.ReleasesFile)
}
