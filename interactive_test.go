package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryCandidates(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"src/lib", "docs", "node_modules/dep", "pkg/target/debug"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(dir)), 0755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "main.rs"), []byte("fn main() {}\n"), 0644))

	got, err := directoryCandidates(root)
	require.NoError(t, err)
	assert.Equal(t, []string{".", "docs", "pkg", "src", "src/lib"}, got)
}

func TestPreviewDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0755))
	for _, name := range []string{"a.go", "b.go", "c.go", "d.go"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), nil, 0644))
	}

	full := previewDirectory(root, 0)
	assert.Contains(t, full, "Entries: 5\n")
	assert.Contains(t, full, "sub/\n")
	assert.Contains(t, full, "d.go\n")

	short := previewDirectory(root, 5)
	assert.True(t, strings.HasSuffix(short, "...\n"))
	assert.NotContains(t, short, "c.go")

	assert.Contains(t, previewDirectory(filepath.Join(root, "missing"), 10), "Error reading directory")
}
