package transform

import "strings"

// compressMinLines is the line count below which Compress leaves content
// untouched.
const compressMinLines = 10

// structuralPrefixes start lines that declare something: functions, types,
// imports and bindings across the common languages.
var structuralPrefixes = []string{
	"fn ", "pub fn ", "pub(crate) fn ", "async fn ", "pub async fn ",
	"func ", "def ", "async def ", "function ", "async function ",
	"class ", "interface ", "trait ", "pub trait ", "struct ", "pub struct ",
	"enum ", "pub enum ", "type ", "pub type ", "impl ", "mod ", "pub mod ",
	"package ", "import ", "from ", "use ", "pub use ", "#include",
	"export ", "module ",
	"const ", "pub const ", "static ", "let ", "var ",
}

// Compress reduces content to a structural outline. It is lossy and makes
// no attempt to keep the result valid source:
//
//   - runs of blank lines collapse to one
//   - full-line // comments are dropped, /* */ blocks are kept verbatim
//   - declarations and brace-only lines are kept
//   - any other line survives only if it contains '(' or ')'
//
// Content with fewer than ten lines is returned as is.
func Compress(content string) string {
	trailingNewline := strings.HasSuffix(content, "\n")
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	if content == "" || len(lines) < compressMinLines {
		return content
	}

	kept := make([]string, 0, len(lines))
	inBlock := false
	lastBlank := false

	keep := func(line string, blank bool) {
		kept = append(kept, line)
		lastBlank = blank
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if inBlock {
			keep(line, false)
			if strings.Contains(trimmed, "*/") {
				inBlock = false
			}
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "/*"):
			keep(line, false)
			inBlock = !strings.Contains(trimmed[2:], "*/")
		case trimmed == "":
			if !lastBlank {
				keep(line, true)
			}
		case strings.HasPrefix(trimmed, "//"):
		case isStructural(trimmed), strings.ContainsAny(trimmed, "()"):
			keep(line, false)
		}
	}

	out := strings.Join(kept, "\n")
	if trailingNewline {
		out += "\n"
	}
	return out
}

func isStructural(trimmed string) bool {
	for _, p := range structuralPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	if strings.Trim(trimmed, "{}[];,") == "" {
		return true
	}
	return strings.Contains(trimmed, "impl") || strings.Contains(trimmed, " for ")
}
