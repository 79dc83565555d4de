package transform

import "strings"

// htmlState is a state of the <!-- --> stripper.
type htmlState uint8

const (
	htmlText            htmlState = iota
	htmlLt                        // "<" pending
	htmlLtBang                    // "<!" pending
	htmlLtBangDash                // "<!-" pending
	htmlComment                   // inside <!-- -->
	htmlCommentDash               // "-" seen inside a comment
	htmlCommentDashDash           // "--" seen inside a comment
)

// pending is the text held back while deciding whether a comment opens.
func (s htmlState) pending() string {
	switch s {
	case htmlLt:
		return "<"
	case htmlLtBang:
		return "<!"
	case htmlLtBangDash:
		return "<!-"
	}
	return ""
}

// step returns the next state, the held-back text to release and whether
// c itself is written.
func (s htmlState) step(c byte) (next htmlState, release string, keep bool) {
	switch s {
	case htmlText:
		if c == '<' {
			return htmlLt, "", false
		}
		return htmlText, "", true

	case htmlLt:
		if c == '!' {
			return htmlLtBang, "", false
		}
		return s.abandon(c)

	case htmlLtBang:
		if c == '-' {
			return htmlLtBangDash, "", false
		}
		return s.abandon(c)

	case htmlLtBangDash:
		if c == '-' {
			return htmlComment, "", false
		}
		return s.abandon(c)

	case htmlComment:
		if c == '-' {
			return htmlCommentDash, "", false
		}
		return htmlComment, "", false

	case htmlCommentDash:
		if c == '-' {
			return htmlCommentDashDash, "", false
		}
		return htmlComment, "", false

	case htmlCommentDashDash:
		switch c {
		case '>':
			return htmlText, "", false
		case '-':
			return htmlCommentDashDash, "", false
		}
		return htmlComment, "", false
	}
	return s, "", true
}

// abandon releases a partial opener that did not become a comment.
func (s htmlState) abandon(c byte) (htmlState, string, bool) {
	if c == '<' {
		return htmlLt, s.pending(), false
	}
	return htmlText, s.pending(), true
}

// stripHTML removes <!-- --> comments. Partial openers such as "<!x" are
// written back unchanged; an unterminated comment runs to the end. Passes
// repeat until nothing changes, since text on both sides of a removed
// comment can join into a new opener.
func stripHTML(content string) string {
	return untilStable(content, stripHTMLOnce)
}

func stripHTMLOnce(content string) string {
	var b strings.Builder
	b.Grow(len(content))

	state := htmlText
	for i := 0; i < len(content); i++ {
		next, release, keep := state.step(content[i])
		b.WriteString(release)
		if keep {
			b.WriteByte(content[i])
		}
		state = next
	}
	b.WriteString(state.pending())
	return b.String()
}

// stripCSS removes /* */ pairs. There is no nesting and no string
// awareness; an unterminated comment runs to the end. Like stripHTML it
// repeats until stable: "//**/*" leaves "/*" after one pass.
func stripCSS(content string) string {
	return untilStable(content, stripCSSOnce)
}

func stripCSSOnce(content string) string {
	var b strings.Builder
	b.Grow(len(content))

	rest := content
	for {
		start := strings.Index(rest, "/*")
		if start < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:start])

		end := strings.Index(rest[start+2:], "*/")
		if end < 0 {
			break
		}
		rest = rest[start+2+end+2:]
	}
	return b.String()
}

// untilStable applies pass until its output stops changing. A pass only
// ever removes text, so every changing pass shortens the input.
func untilStable(content string, pass func(string) string) string {
	for {
		out := pass(content)
		if out == content {
			return out
		}
		content = out
	}
}
