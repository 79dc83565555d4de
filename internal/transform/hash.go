package transform

import "strings"

// hashRules selects the variant of line-oriented '#' comment stripping.
type hashRules struct {
	tripleQuotes bool // ''' and """ strings may span lines
	wordStart    bool // a comment '#' must begin a word
	echoGuard    bool // keep lines whose code before '#' mentions echo or printf
	shebang      bool // keep a leading #! line
}

var (
	pythonRules = hashRules{tripleQuotes: true}
	shellRules  = hashRules{wordStart: true, echoGuard: true, shebang: true}
	yamlRules   = hashRules{wordStart: true}
	phpRules    = hashRules{}
)

// stripHash removes '#' comments line by line. Line endings, including
// CRLF, are preserved.
func stripHash(content string, rules hashRules) string {
	var b strings.Builder
	b.Grow(len(content))

	var triple string
	for i, line := range strings.SplitAfter(content, "\n") {
		body, eol := splitEOL(line)
		if i == 0 && rules.shebang && strings.HasPrefix(body, "#!") {
			b.WriteString(line)
			continue
		}

		var cut int
		cut, triple = hashCut(body, triple, rules)
		b.WriteString(body[:cut])
		b.WriteString(eol)
	}
	return b.String()
}

func splitEOL(line string) (body, eol string) {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n"
	case strings.HasSuffix(line, "\n"):
		return line[:len(line)-1], "\n"
	}
	return line, ""
}

// hashCut returns the offset where a comment starts in body (len(body)
// when there is none) and the triple-quote delimiter still open at that
// point. Nothing after the cut is examined.
func hashCut(body, triple string, rules hashRules) (int, string) {
	var quote byte
	for i := 0; i < len(body); i++ {
		c := body[i]

		if triple != "" {
			switch {
			case c == '\\':
				i++
			case strings.HasPrefix(body[i:], triple):
				i += len(triple) - 1
				triple = ""
			}
			continue
		}

		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'':
			if rules.tripleQuotes {
				if d := body[i:]; strings.HasPrefix(d, `"""`) || strings.HasPrefix(d, "'''") {
					triple = d[:3]
					i += 2
					continue
				}
			}
			quote = c
		case '#':
			if rules.wordStart && i > 0 && !isBlank(body[i-1]) {
				continue
			}
			if rules.echoGuard && (strings.Contains(body[:i], "echo") || strings.Contains(body[:i], "printf")) {
				return len(body), triple
			}
			return i, triple
		}
	}
	return len(body), triple
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}
