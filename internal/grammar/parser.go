// Package grammar turns SurrealQL syntax blocks into keyword, variable and
// display-pattern records.
package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mvp-joe/dali-distiller/internal/ordered"
)

// DefaultPatternMaxLen is the display budget for syntax patterns, in characters.
const DefaultPatternMaxLen = 100

// DefaultIgnoredKeywords are the guard phrases that never count as statement
// keywords. Their words are only dropped when the whole phrase appears.
var DefaultIgnoredKeywords = []string{"IF NOT EXISTS", "IF EXISTS"}

// Options configures a Parser.
type Options struct {
	PatternMaxLen int
	// IgnoredKeywords are whitespace-separated keyword phrases.
	IgnoredKeywords []string
}

// Result is the parse of one or more grammar blocks for a single statement.
type Result struct {
	Keywords  []string
	Variables []string
	Pattern   string
	Malformed bool
	Problem   string // why the block was malformed, empty otherwise
}

// Parser parses grammar blocks. It holds no per-block state.
type Parser struct {
	maxLen  int
	ignored [][]string // longest phrase first
}

// NewParser creates a parser. Zero options fall back to the defaults.
func NewParser(opts Options) *Parser {
	p := &Parser{
		maxLen: opts.PatternMaxLen,
	}
	if p.maxLen <= 0 {
		p.maxLen = DefaultPatternMaxLen
	}
	ignored := opts.IgnoredKeywords
	if ignored == nil {
		ignored = DefaultIgnoredKeywords
	}
	for _, phrase := range ignored {
		if words := strings.Fields(strings.ToUpper(phrase)); len(words) > 0 {
			p.ignored = append(p.ignored, words)
		}
	}
	sort.SliceStable(p.ignored, func(i, j int) bool {
		return len(p.ignored[i]) > len(p.ignored[j])
	})
	return p
}

// ignoredRun returns the length of the ignored phrase starting at tokens[i],
// or 0. A phrase matches only a run of consecutive keyword tokens.
func (p *Parser) ignoredRun(tokens []Token, i int) int {
	for _, phrase := range p.ignored {
		if i+len(phrase) > len(tokens) {
			continue
		}
		matched := true
		for j, word := range phrase {
			tok := tokens[i+j]
			if tok.Kind != TokenKeyword || tok.Word != word {
				matched = false
				break
			}
		}
		if matched {
			return len(phrase)
		}
	}
	return 0
}

// Parse parses a single grammar block. It never fails: unbalanced brackets
// mark the result Malformed and the pattern falls back to the block text.
func (p *Parser) Parse(block string) Result {
	return p.ParseBlocks([]string{block})
}

// ParseBlocks parses all grammar blocks documented for one statement.
// Keywords and variables accumulate in first-seen order across blocks and
// the pattern comes from the first block.
func (p *Parser) ParseBlocks(blocks []string) Result {
	keywords := &ordered.Set[string]{}
	variables := &ordered.Set[string]{}
	var res Result

	for i, block := range blocks {
		tokens := Lex(block)
		for j := 0; j < len(tokens); j++ {
			tok := tokens[j]
			switch tok.Kind {
			case TokenKeyword:
				if n := p.ignoredRun(tokens, j); n > 0 {
					j += n - 1
					continue
				}
				keywords.Add(tok.Word)
			case TokenPlaceholder:
				for _, v := range tok.Vars {
					variables.Add(v)
				}
			}
		}

		nodes, problem := buildTree(tokens)
		if problem != "" {
			res.Malformed = true
			if res.Problem == "" {
				res.Problem = fmt.Sprintf("block %d: %s", i+1, problem)
			}
		}

		if i == 0 {
			if problem != "" {
				res.Pattern = p.literalPattern(block)
			} else {
				res.Pattern = p.pattern(nodes)
			}
		}
	}

	res.Keywords = keywords.Items()
	res.Variables = variables.Items()
	return res
}

// node is a token or a bracket group in the block tree.
type node struct {
	tok      Token
	group    bool
	open     string
	close    string
	children []*node
}

var closers = map[string]string{"[": "]", "(": ")", "{": "}"}

// buildTree nests bracket groups. Mismatched closers are kept as literal
// tokens and unclosed groups are closed at the end; either case is
// reported as a problem.
func buildTree(tokens []Token) ([]*node, string) {
	root := &node{group: true}
	stack := []*node{root}
	var problem string

	for _, tok := range tokens {
		top := stack[len(stack)-1]
		if tok.Kind == TokenStructural {
			if closeText, ok := closers[tok.Text]; ok {
				g := &node{group: true, open: tok.Text, close: closeText}
				top.children = append(top.children, g)
				stack = append(stack, g)
				continue
			}
			if tok.Text != "|" {
				if len(stack) > 1 && top.close == tok.Text {
					stack = stack[:len(stack)-1]
					continue
				}
				if problem == "" {
					problem = fmt.Sprintf("unexpected %q", tok.Text)
				}
				top.children = append(top.children, &node{tok: Token{Kind: TokenLiteral, Text: tok.Text}})
				continue
			}
		}
		top.children = append(top.children, &node{tok: tok})
	}

	if len(stack) > 1 && problem == "" {
		problem = fmt.Sprintf("unclosed %q", stack[len(stack)-1].open)
	}
	return root.children, problem
}
