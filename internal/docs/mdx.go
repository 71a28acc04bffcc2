package docs

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

const frontMatterSeparator = "---"

var (
	titleAttr   = regexp.MustCompile(`title\s*=\s*"([^"]*)"`)
	markdownURL = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	jsxTagLine  = regexp.MustCompile(`^</?[A-Z][A-Za-z0-9.]*(\s[^>]*)?/?>$`)
)

// FrontMatter is the YAML header of an MDX page.
type FrontMatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Fence is one fenced code block.
type Fence struct {
	Lang  string // first word of the info string
	Title string // value of the title="..." attribute
	Text  string
}

// Section is a level-two heading with the paragraph that follows it.
type Section struct {
	Heading   string // raw heading text, markers removed
	Paragraph string // first paragraph after the heading, links flattened
}

// Page is the parsed form of an MDX document.
type Page struct {
	FrontMatter FrontMatter
	Fences      []Fence
	Sections    []Section
}

func newMarkdown() goldmark.Markdown {
	// Heading attributes stay off so "{#id}" suffixes remain in the heading text.
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
		),
	)
}

// parsePage splits off the frontmatter and walks the markdown body.
// The page is always returned; the error reports frontmatter that failed
// to decode, in which case FrontMatter is left empty.
func parsePage(md goldmark.Markdown, content []byte) (*Page, error) {
	page := &Page{}
	body := content

	var fmErr error
	if fm, rest, ok := splitFrontMatter(content); ok {
		if err := yaml.Unmarshal(fm, &page.FrontMatter); err != nil {
			page.FrontMatter = FrontMatter{}
			fmErr = fmt.Errorf("invalid frontmatter: %w", err)
		}
		body = rest
	}
	body = isolateJSX(body)

	doc := md.Parser().Parse(text.NewReader(body))

	var pending *Section
	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.FencedCodeBlock:
			page.Fences = append(page.Fences, fenceOf(n, body))
		case *ast.Heading:
			pending = nil
			if n.Level == 2 {
				page.Sections = append(page.Sections, Section{Heading: linesOf(n, body, " ")})
				pending = &page.Sections[len(page.Sections)-1]
			}
		case *ast.Paragraph:
			if pending != nil && pending.Paragraph == "" {
				pending.Paragraph = flattenLinks(linesOf(n, body, " "))
			}
		}
		// Fences nested in lists or block quotes still count.
		if _, ok := child.(*ast.FencedCodeBlock); !ok {
			page.Fences = append(page.Fences, nestedFences(child, body)...)
		}
	}
	return page, fmErr
}

func nestedFences(node ast.Node, source []byte) []Fence {
	var fences []Fence
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		if n, ok := child.(*ast.FencedCodeBlock); ok {
			fences = append(fences, fenceOf(n, source))
			continue
		}
		fences = append(fences, nestedFences(child, source)...)
	}
	return fences
}

func fenceOf(n *ast.FencedCodeBlock, source []byte) Fence {
	var info string
	if n.Info != nil {
		info = strings.TrimSpace(string(n.Info.Segment.Value(source)))
	}
	f := Fence{Text: strings.TrimRight(linesOf(n, source, ""), "\n")}
	if fields := strings.Fields(info); len(fields) > 0 && !strings.Contains(fields[0], "=") {
		f.Lang = strings.ToLower(fields[0])
	}
	if m := titleAttr.FindStringSubmatch(info); m != nil {
		f.Title = m[1]
	}
	return f
}

// linesOf joins the raw source lines of a block node. Code block lines keep
// their newlines, so sep is empty for them.
func linesOf(n ast.Node, source []byte, sep string) string {
	lines := n.Lines()
	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := string(seg.Value(source))
		if sep != "" {
			line = strings.TrimSpace(line)
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, sep)
}

func flattenLinks(s string) string {
	return markdownURL.ReplaceAllString(s, "$1")
}

// splitFrontMatter returns the YAML between the leading "---" lines and the
// remaining body.
func splitFrontMatter(content []byte) ([]byte, []byte, bool) {
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte(frontMatterSeparator+"\n")) {
		return nil, content, false
	}
	rest := normalized[len(frontMatterSeparator)+1:]
	end := bytes.Index(rest, []byte("\n"+frontMatterSeparator))
	if end < 0 {
		return nil, content, false
	}
	fm := rest[:end]
	body := rest[end+len(frontMatterSeparator)+1:]
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = nil
	}
	return fm, body, true
}

// isolateJSX surrounds lines holding a single JSX tag with blank lines so
// that markdown directly inside components is not swallowed by an HTML
// block. Lines inside fenced code are left alone.
func isolateJSX(body []byte) []byte {
	lines := bytes.Split(body, []byte("\n"))
	out := make([][]byte, 0, len(lines))
	inFence := false
	for _, line := range lines {
		trimmed := bytes.TrimSpace(line)
		if bytes.HasPrefix(trimmed, []byte("```")) {
			inFence = !inFence
		}
		if !inFence && jsxTagLine.Match(trimmed) {
			out = append(out, nil, trimmed, nil)
			continue
		}
		out = append(out, line)
	}
	return bytes.Join(out, []byte("\n"))
}
