package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jadenpxrk/remix/internal/transform"
)

const sampleLanguages = `
Terraform:
  extensions: [".tf", ".TFVARS"]
  comments: shell
HCL:
  extensions: ["tf", "hcl"]
  comments: c
Jsonnet:
  extensions: [".jsonnet"]
  comments: C
Markdown:
  extensions: [".md"]
Plain:
  extensions: [".rs"]
  comments: none
`

func TestLanguageMapOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "languages.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleLanguages), 0644))

	overrides, err := loadLanguageOverrides(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]transform.Family{
		"tf":      transform.FamilyC,
		"tfvars":  transform.FamilyShell,
		"hcl":     transform.FamilyC,
		"jsonnet": transform.FamilyC,
		"rs":      transform.FamilyNone,
	}, overrides)
}

func TestLoadLanguageOverridesErrors(t *testing.T) {
	overrides, err := loadLanguageOverrides("")
	require.NoError(t, err)
	assert.Nil(t, overrides)

	_, err = loadLanguageOverrides(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "languages.yml")
	require.NoError(t, os.WriteFile(bad, []byte("Lisp:\n  extensions: [\".lisp\"]\n  comments: semicolon\n"), 0644))
	_, err = loadLanguageOverrides(bad)
	assert.ErrorContains(t, err, "language Lisp")

	broken := filepath.Join(t.TempDir(), "languages.yml")
	require.NoError(t, os.WriteFile(broken, []byte("Lisp: [unterminated\n"), 0644))
	_, err = loadLanguageOverrides(broken)
	assert.ErrorContains(t, err, "error parsing language file")
}

func TestBuildRegistry(t *testing.T) {
	cwd := isolate(t)

	registry, err := buildRegistry("")
	require.NoError(t, err)
	assert.Same(t, transform.DefaultRegistry, registry)

	require.NoError(t, os.WriteFile(filepath.Join(cwd, languagesFileName), []byte(sampleLanguages), 0644))
	registry, err = buildRegistry("")
	require.NoError(t, err)

	family, ok := registry.Lookup("tfvars")
	assert.True(t, ok)
	assert.Equal(t, transform.FamilyShell, family)
	_, ok = registry.Lookup("rs")
	assert.False(t, ok)
	assert.Equal(t, "x = 1 \n", registry.Strip("x = 1 # note\n", "tfvars"))
}
