//go:build property
// +build property

package transform

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestStripIdempotenceProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	// Small alphabets packed with delimiters reach the awkward states quickly.
	cSource := gen.RegexMatch(`^[a/*"'\\ \n]{0,48}$`)
	hashSource := gen.RegexMatch(`^[a#"'\\$ \n]{0,48}$`)

	properties.Property("c family stripping is idempotent", prop.ForAll(
		func(src string) bool {
			once := StripComments(src, "rs")
			return StripComments(once, "rs") == once
		},
		cSource,
	))

	for _, tag := range []string{"py", "sh", "yaml"} {
		tag := tag
		properties.Property(tag+" stripping is idempotent", prop.ForAll(
			func(src string) bool {
				once := StripComments(src, tag)
				return StripComments(once, tag) == once
			},
			hashSource,
		))
	}

	markup := map[string]gopter.Gen{
		"html": gen.RegexMatch(`^[a<!\->\n]{0,48}$`),
		"css":  gen.RegexMatch(`^[a/*\n]{0,48}$`),
	}
	for tag, source := range markup {
		tag := tag
		properties.Property(tag+" stripping is idempotent", prop.ForAll(
			func(src string) bool {
				once := StripComments(src, tag)
				return StripComments(once, tag) == once
			},
			source,
		))
	}

	properties.Property("python triple quotes are idempotent", prop.ForAll(
		func(src string) bool {
			once := StripComments(src, "py")
			return StripComments(once, "py") == once
		},
		gen.RegexMatch(`^((""")|(''')|[a#"' \n]){0,24}$`),
	))

	properties.TestingRun(t)
}

func TestStripNoOpProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	noComments := map[string]gopter.Gen{
		"go":   gen.RegexMatch(`^[a-z0-9"'\\*{}(); \n]{0,64}$`),
		"py":   gen.RegexMatch(`^[a-z0-9"'\\{}(): \n]{0,64}$`),
		"html": gen.RegexMatch(`^[a-z0-9!>\-/ \n]{0,64}$`),
		"css":  gen.RegexMatch(`^[a-z0-9*{}:;. \n]{0,64}$`),
	}

	for tag, source := range noComments {
		tag := tag
		properties.Property(tag+" stripping leaves comment-free text alone", prop.ForAll(
			func(src string) bool {
				return StripComments(src, tag) == src
			},
			source,
		))
	}

	properties.TestingRun(t)
}
