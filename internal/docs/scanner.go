// Package docs locates SurrealQL grammar, function and operator content in an
// MDX documentation tree and hands it on as tagged text blocks.
package docs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrSourceUnavailable indicates the documentation tree cannot be read.
var ErrSourceUnavailable = errors.New("documentation source unavailable")

const (
	syntaxLang   = "syntax"
	syntaxTitle  = "SurrealQL Syntax"
	apiTitle     = "API DEFINITION"
	indexPage    = "index"
	categoryPage = "_category_"
)

var (
	operatorHeading = regexp.MustCompile("^`([^`]+)`(?:\\s*or\\s*`([^`]+)`)?.*?\\{#([\\w-]+)\\}\\s*$")
	versionHeading  = regexp.MustCompile(`^Version v?(\d+\.\d+\.\d+)`)
)

// Kind tags a block with the parser it is meant for.
type Kind string

const (
	KindStatement Kind = "statement"
	KindFunction  Kind = "function"
)

// Block is one raw text block taken from the documentation.
type Block struct {
	Kind   Kind   `json:"kind"`
	Key    string `json:"key"` // statement name, or namespace hint for functions
	Title  string `json:"title,omitempty"`
	Text   string `json:"text"`
	Source string `json:"source"`
}

// Operator is one operator heading with its description.
type Operator struct {
	Symbol      string `json:"symbol"`
	Alt         string `json:"alt,omitempty"`
	ID          string `json:"id"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

// Inventory lists the files a scan will read.
type Inventory struct {
	StatementFiles []string
	FunctionFiles  []string
	OperatorsFile  string // empty when the tree has no operators page
	ReleasesFile   string // empty when the tree has no releases page
}

// Total returns the number of files in the inventory.
func (inv *Inventory) Total() int {
	n := len(inv.StatementFiles) + len(inv.FunctionFiles)
	if inv.OperatorsFile != "" {
		n++
	}
	if inv.ReleasesFile != "" {
		n++
	}
	return n
}

// Source is everything a scan extracted.
type Source struct {
	// Version is the latest release found in the releases page, or empty.
	Version   string
	Blocks    []Block
	Operators []Operator
}

// Scanner reads a documentation tree laid out as described by Layout.
type Scanner struct {
	layout Layout
	md     goldmark.Markdown
	lower  cases.Caser
	logger *slog.Logger
}

// NewScanner creates a scanner for layout.
func NewScanner(layout Layout, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		layout: layout,
		md:     newMarkdown(),
		lower:  cases.Lower(language.Und),
		logger: logger,
	}
}

// Discover checks the tree and lists the files to scan.
func (s *Scanner) Discover() (*Inventory, error) {
	if err := requireDir(s.layout.Root, "docs root"); err != nil {
		return nil, err
	}
	if err := requireDir(s.layout.ContentPath(), "content directory"); err != nil {
		return nil, err
	}

	inv := &Inventory{}
	var err error
	if inv.StatementFiles, err = s.discover(s.layout.StatementsPath()); err != nil {
		return nil, err
	}
	if inv.FunctionFiles, err = s.discover(s.layout.FunctionsPath()); err != nil {
		return nil, err
	}
	inv.OperatorsFile = s.optionalFile(s.layout.OperatorsPath())
	inv.ReleasesFile = s.optionalFile(s.layout.ReleasesPath())
	return inv, nil
}

func (s *Scanner) discover(dir string) ([]string, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		s.logger.Warn("documentation directory missing, skipping", "path", dir)
		return []string{}, nil
	}
	fd, err := NewFileDiscovery(dir, s.layout.Include, s.layout.Ignore)
	if err != nil {
		return nil, fmt.Errorf("invalid documentation pattern: %w", err)
	}
	files, err := fd.Discover()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return files, nil
}

func (s *Scanner) optionalFile(path string) string {
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		s.logger.Warn("documentation page missing, skipping", "path", path)
		return ""
	}
	return path
}

// Scan reads every file of inv. onFile, when set, is called with each
// file's path relative to the docs root once it has been read.
func (s *Scanner) Scan(inv *Inventory, onFile func(rel string)) (*Source, error) {
	src := &Source{}
	done := func(path string) {
		if onFile != nil {
			onFile(s.rel(path))
		}
	}

	for _, path := range inv.StatementFiles {
		key, ok := s.statementKey(path)
		if !ok {
			done(path)
			continue
		}
		page, err := s.readPage(path)
		if err != nil {
			return nil, err
		}
		for _, f := range page.Fences {
			if isSyntaxFence(f) {
				src.Blocks = append(src.Blocks, Block{
					Kind:   KindStatement,
					Key:    key,
					Title:  page.FrontMatter.Title,
					Text:   f.Text,
					Source: s.rel(path),
				})
			}
		}
		done(path)
	}

	for _, path := range inv.FunctionFiles {
		stem := s.stem(path)
		if stem == indexPage || stem == categoryPage {
			done(path)
			continue
		}
		page, err := s.readPage(path)
		if err != nil {
			return nil, err
		}
		for _, f := range page.Fences {
			if strings.EqualFold(f.Title, apiTitle) {
				src.Blocks = append(src.Blocks, Block{
					Kind:   KindFunction,
					Key:    stem,
					Title:  page.FrontMatter.Title,
					Text:   f.Text,
					Source: s.rel(path),
				})
			}
		}
		done(path)
	}

	if inv.OperatorsFile != "" {
		page, err := s.readPage(inv.OperatorsFile)
		if err != nil {
			return nil, err
		}
		src.Operators = s.operators(page, s.rel(inv.OperatorsFile))
		done(inv.OperatorsFile)
	}

	if inv.ReleasesFile != "" {
		page, err := s.readPage(inv.ReleasesFile)
		if err != nil {
			return nil, err
		}
		src.Version = latestVersion(page)
		done(inv.ReleasesFile)
	}

	s.logger.Debug("documentation scanned",
		"blocks", len(src.Blocks), "operators", len(src.Operators), "version", src.Version)
	return src, nil
}

func (s *Scanner) readPage(path string) (*Page, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	s.logger.Debug("reading documentation page", "path", s.rel(path))
	page, fmErr := parsePage(s.md, content)
	if fmErr != nil {
		s.logger.Debug("ignoring frontmatter", "path", s.rel(path), "error", fmErr)
	}
	return page, nil
}

func (s *Scanner) operators(page *Page, source string) []Operator {
	var ops []Operator
	for _, sec := range page.Sections {
		m := operatorHeading.FindStringSubmatch(sec.Heading)
		if m == nil {
			continue
		}
		ops = append(ops, Operator{
			Symbol:      m[1],
			Alt:         m[2],
			ID:          m[3],
			Description: sec.Paragraph,
			Source:      source,
		})
	}
	return ops
}

// statementKey names a statement after its path below the statements
// directory: "select", "define/table". An index page takes its directory's
// name; the top-level index has no statement.
func (s *Scanner) statementKey(path string) (string, bool) {
	rel, err := filepath.Rel(s.layout.StatementsPath(), path)
	if err != nil {
		return "", false
	}
	rel = strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))
	segments := strings.Split(s.lower.String(rel), "/")

	switch segments[len(segments)-1] {
	case categoryPage:
		return "", false
	case indexPage:
		segments = segments[:len(segments)-1]
	}
	if len(segments) == 0 {
		return "", false
	}
	return strings.Join(segments, "/"), true
}

func (s *Scanner) stem(path string) string {
	base := filepath.Base(path)
	return s.lower.String(strings.TrimSuffix(base, filepath.Ext(base)))
}

func (s *Scanner) rel(path string) string {
	rel, err := filepath.Rel(s.layout.Root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func isSyntaxFence(f Fence) bool {
	return f.Lang == syntaxLang || strings.EqualFold(f.Title, syntaxTitle)
}

func latestVersion(page *Page) string {
	for _, sec := range page.Sections {
		if m := versionHeading.FindStringSubmatch(sec.Heading); m != nil {
			return m[1]
		}
	}
	return ""
}

func requireDir(path, what string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrSourceUnavailable, what, path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s %s is not a directory", ErrSourceUnavailable, what, path)
	}
	return nil
}
