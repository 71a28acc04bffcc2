package grammar

import (
	"strings"
	"unicode/utf8"
)

const (
	varMarker     = "<var>"
	elision       = "..."
	collapsedText = "[" + elision + "]"
)

// pattern renders the display skeleton. When the rendering exceeds the
// budget, top-level optional groups collapse to "[...]" from the last one
// backwards; if that is still too long the text is cut with an elision.
func (p *Parser) pattern(nodes []*node) string {
	collapsed := make(map[*node]bool)
	out := render(nodes, collapsed)
	if utf8.RuneCountInString(out) <= p.maxLen {
		return out
	}

	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if !n.group || n.open != "[" {
			continue
		}
		collapsed[n] = true
		out = render(nodes, collapsed)
		if utf8.RuneCountInString(out) <= p.maxLen {
			return out
		}
	}
	return truncate(out, p.maxLen)
}

// literalPattern is the fallback for blocks whose brackets do not balance.
func (p *Parser) literalPattern(block string) string {
	var words []string
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "--") || strings.HasPrefix(trimmed, "//") {
			continue
		}
		words = append(words, strings.Fields(line)...)
	}
	text := placeholderPattern.ReplaceAllString(strings.Join(words, " "), varMarker)
	return truncate(text, p.maxLen)
}

type renderer struct {
	sb   strings.Builder
	glue bool // suppress the space before the next word
}

func (r *renderer) word(s string) {
	if r.sb.Len() > 0 && !r.glue {
		r.sb.WriteByte(' ')
	}
	r.sb.WriteString(s)
	r.glue = false
}

func (r *renderer) attach(s string, glueAfter bool) {
	r.sb.WriteString(s)
	r.glue = glueAfter
}

func render(nodes []*node, collapsed map[*node]bool) string {
	r := &renderer{}
	r.nodes(nodes, collapsed)
	return r.sb.String()
}

func (r *renderer) nodes(nodes []*node, collapsed map[*node]bool) {
	prevCollapsed := false
	for _, n := range nodes {
		if collapsed[n] {
			// Runs of collapsed groups read as a single elision.
			if !prevCollapsed {
				r.word(collapsedText)
			}
			prevCollapsed = true
			continue
		}
		prevCollapsed = false

		if n.group {
			r.word(n.open)
			r.glue = true
			r.nodes(n.children, collapsed)
			r.attach(n.close, false)
			continue
		}

		switch n.tok.Kind {
		case TokenStructural:
			// Only "|" reaches here.
			r.attach(n.tok.Text, true)
		case TokenPlaceholder:
			r.word(placeholderPattern.ReplaceAllString(n.tok.Text, varMarker))
		default:
			r.word(n.tok.Text)
		}
	}
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	if max <= len(elision) {
		return string(runes[:max])
	}
	return strings.TrimRight(string(runes[:max-len(elision)]), " ") + elision
}
