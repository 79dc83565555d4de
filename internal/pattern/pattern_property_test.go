//go:build property
// +build property

package pattern

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestNormalizeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	rawPath := gen.RegexMatch(`^[a-z.\\/]{0,24}$`)

	properties.Property("normalize is idempotent", prop.ForAll(
		func(p string) bool {
			once := Normalize(p)
			return Normalize(once) == once
		},
		rawPath,
	))

	properties.Property("normalized paths are slash-clean", prop.ForAll(
		func(p string) bool {
			n := Normalize(p)
			return !strings.Contains(n, "\\") &&
				!strings.Contains(n, "//") &&
				!strings.HasPrefix(n, "/") &&
				!strings.HasSuffix(n, "/") &&
				!strings.HasPrefix(n, "./")
		},
		rawPath,
	))

	properties.Property("matching ignores path spelling", prop.ForAll(
		func(p, pat string) bool {
			return Match(pat, p) == Match(pat, Normalize(p))
		},
		rawPath,
		gen.OneConstOf("*.go", "**/*.md", "src/", "a/**", "/b", "*"),
	))

	properties.Property("fold matching accepts case-sensitive matches", prop.ForAll(
		func(p, pat string) bool {
			return !Match(pat, p) || MatchFold(pat, p)
		},
		gen.RegexMatch(`^[a-zA-Z]{1,6}(/[a-zA-Z]{1,6}){0,3}\.(go|md|GO|Md)$`),
		gen.OneConstOf("*.go", "**/*.md", "*.GO", "src/**"),
	))

	properties.TestingRun(t)
}
