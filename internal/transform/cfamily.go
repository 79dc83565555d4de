package transform

import "strings"

// cState is a state of the C-family comment stripper.
type cState uint8

const (
	cCode         cState = iota
	cSlash               // '/' seen in code, not yet emitted
	cString              // inside "..."
	cStringEscape        // after '\' inside a string
	cChar                // inside '...'
	cCharEscape          // after '\' inside a char literal
	cLineComment         // after //
	cBlockComment        // after /*
	cBlockStar           // '*' seen inside a block comment
)

// cEmit says what a transition writes to the output.
type cEmit uint8

const (
	emitNothing cEmit = iota
	emitByte
	emitSlashAndByte // the pending '/' followed by the current byte
)

// step is the transition function. All delimiters are ASCII, so working on
// bytes never splits a multi-byte rune.
func (s cState) step(c byte) (cState, cEmit) {
	switch s {
	case cSlash:
		switch c {
		case '/':
			return cLineComment, emitNothing
		case '*':
			return cBlockComment, emitNothing
		}
		next, _ := cCode.step(c)
		return next, emitSlashAndByte

	case cString:
		switch c {
		case '\\':
			return cStringEscape, emitByte
		case '"':
			return cCode, emitByte
		}
		return cString, emitByte

	case cStringEscape:
		return cString, emitByte

	case cChar:
		switch c {
		case '\\':
			return cCharEscape, emitByte
		case '\'', '\n':
			return cCode, emitByte
		}
		return cChar, emitByte

	case cCharEscape:
		return cChar, emitByte

	case cLineComment:
		if c == '\n' {
			return cCode, emitByte
		}
		return cLineComment, emitNothing

	case cBlockComment:
		switch c {
		case '*':
			return cBlockStar, emitNothing
		case '\n':
			return cBlockComment, emitByte
		}
		return cBlockComment, emitNothing

	case cBlockStar:
		switch c {
		case '/':
			return cCode, emitNothing
		case '*':
			return cBlockStar, emitNothing
		case '\n':
			return cBlockComment, emitByte
		}
		return cBlockComment, emitNothing
	}

	switch c {
	case '/':
		return cSlash, emitNothing
	case '"':
		return cString, emitByte
	case '\'':
		return cChar, emitByte
	}
	return cCode, emitByte
}

// stripCFamily removes // and /* */ comments. Newlines inside block
// comments are kept so line numbers do not shift.
func stripCFamily(content string) string {
	var b strings.Builder
	b.Grow(len(content))

	state := cCode
	for i := 0; i < len(content); i++ {
		c := content[i]
		var e cEmit
		state, e = state.step(c)
		switch e {
		case emitByte:
			b.WriteByte(c)
		case emitSlashAndByte:
			b.WriteByte('/')
			b.WriteByte(c)
		}
	}
	if state == cSlash {
		b.WriteByte('/')
	}
	return b.String()
}
