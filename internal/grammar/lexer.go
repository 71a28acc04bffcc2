package grammar

import (
	"regexp"
	"strings"
	"unicode"
)

// TokenKind classifies a grammar token.
type TokenKind int

const (
	// TokenLiteral is any text that is neither keyword, placeholder nor structure.
	TokenLiteral TokenKind = iota
	// TokenKeyword is an all-uppercase literal word such as SELECT.
	TokenKeyword
	// TokenPlaceholder is a word containing at least one @name slot.
	TokenPlaceholder
	// TokenStructural is one of [ ] ( ) { } |.
	TokenStructural
)

func (k TokenKind) String() string {
	switch k {
	case TokenKeyword:
		return "keyword"
	case TokenPlaceholder:
		return "placeholder"
	case TokenStructural:
		return "structural"
	default:
		return "literal"
	}
}

// Token is one lexed unit of a grammar block.
type Token struct {
	Kind TokenKind
	Text string   // original text
	Word string   // keyword core for TokenKeyword (punctuation trimmed)
	Vars []string // placeholder names for TokenPlaceholder, in order
}

var (
	placeholderPattern = regexp.MustCompile(`@([A-Za-z_][A-Za-z0-9_]*)`)
	keywordPattern     = regexp.MustCompile(`^[A-Z][A-Z_]*[A-Z]$`)
)

const structuralChars = "[](){}|"

// Lex splits a grammar block into tokens. Whitespace separates words,
// structural characters are always their own token, and quoted strings stay
// whole. Lines starting with "--" or "//" are comments and are skipped.
func Lex(block string) []Token {
	var tokens []Token
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "--") || strings.HasPrefix(trimmed, "//") {
			continue
		}
		tokens = lexLine(line, tokens)
	}
	return tokens
}

func lexLine(line string, tokens []Token) []Token {
	runes := []rune(line)
	var word []rune

	flush := func() {
		if len(word) > 0 {
			tokens = append(tokens, classify(string(word)))
			word = word[:0]
		}
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			flush()
		case strings.ContainsRune(structuralChars, r):
			flush()
			tokens = append(tokens, Token{Kind: TokenStructural, Text: string(r)})
		case r == '"' || r == '\'' || r == '`':
			flush()
			end := i + 1
			for end < len(runes) && runes[end] != r {
				end++
			}
			if end >= len(runes) {
				end = len(runes) - 1
			}
			tokens = append(tokens, Token{Kind: TokenLiteral, Text: string(runes[i : end+1])})
			i = end
		default:
			word = append(word, r)
		}
	}
	flush()
	return tokens
}

// classify decides what a whitespace-delimited word is.
func classify(word string) Token {
	if matches := placeholderPattern.FindAllStringSubmatch(word, -1); len(matches) > 0 {
		vars := make([]string, 0, len(matches))
		for _, m := range matches {
			vars = append(vars, m[1])
		}
		return Token{Kind: TokenPlaceholder, Text: word, Vars: vars}
	}

	core := strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	if keywordPattern.MatchString(core) {
		return Token{Kind: TokenKeyword, Text: word, Word: core}
	}
	return Token{Kind: TokenLiteral, Text: word}
}
