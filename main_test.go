package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jadenpxrk/remix/internal/config"
	"github.com/jadenpxrk/remix/internal/ignore"
	"github.com/jadenpxrk/remix/internal/packer"
	"github.com/jadenpxrk/remix/internal/types"
)

// isolate runs the test from an empty working directory with HOME and the
// XDG homes pointing into temp directories.
func isolate(t *testing.T) string {
	t.Helper()
	cwd := t.TempDir()
	chdir(t, cwd)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	return cwd
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"**/*.rs", "**/*.go", "docs/"}, splitList(" **/*.rs, **/*.go,,docs/ "))
	assert.Nil(t, splitList(""))
	assert.Nil(t, splitList(" , "))
}

func TestFlagsReachConfig(t *testing.T) {
	cmd, o := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{
		"--format", "JSON",
		"--max-file-size", "500",
		"-o", "out/pack.json",
		"--compress",
		"--remove-comments",
		"-t", "3",
		"--tokenizer", "huggingface",
		"--model", "gpt2",
	}))

	cfg, err := config.Load(o.v)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, uint64(500), cfg.MaxFileSize)
	assert.Equal(t, "out/pack.json", cfg.Output.Path)
	assert.True(t, cfg.Compress)
	assert.True(t, cfg.Output.RemoveComments)
	assert.Equal(t, 3, cfg.Threads)
	assert.Equal(t, "huggingface", cfg.Tokens.Tokenizer)
	assert.Equal(t, "gpt2", cfg.Tokens.Model)
}

func TestUnsetFlagsKeepDefaults(t *testing.T) {
	cmd, o := newRootCmd()
	require.NoError(t, cmd.ParseFlags(nil))

	cfg, err := config.Load(o.v)
	require.NoError(t, err)
	assert.Equal(t, uint64(config.DefaultMaxFileSize), cfg.MaxFileSize)
	assert.Equal(t, config.DefaultOutputPath, cfg.Output.Path)
	assert.Equal(t, config.DefaultCustomPatterns, cfg.Ignore.CustomPatterns)
	assert.True(t, cfg.Security.EnableSecurityCheck)
}

func TestApplyFlagOverrides(t *testing.T) {
	cmd, o := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{
		"--include", "**/*.rs, **/*.toml",
		"--ignore", "vendor/",
		"--no-gitignore",
		"--no-default-patterns",
		"--skip-sensitive-check",
		"--no-tokens",
	}))

	cfg := config.Default()
	applyFlagOverrides(&cfg, o)
	assert.Equal(t, []string{"**/*.rs", "**/*.toml"}, cfg.Include)
	assert.Equal(t, []string{"vendor/"}, cfg.Ignore.CustomPatterns)
	assert.False(t, cfg.Ignore.UseGitignore)
	assert.False(t, cfg.Ignore.UseDefaultPatterns)
	assert.False(t, cfg.Security.EnableSecurityCheck)
	assert.False(t, cfg.Tokens.Enabled)

	cfg = config.Default()
	applyFlagOverrides(&cfg, &cliOptions{})
	assert.Equal(t, config.Default(), cfg)
}

func TestExcludeOutputFile(t *testing.T) {
	root := t.TempDir()

	cfg := config.Default()
	excludeOutputFile(&cfg, root, filepath.Join(root, "out", "remix-output.md"))
	n := len(cfg.Ignore.CustomPatterns)
	assert.Equal(t, []string{"/out/remix-output.md", "/out/remix-output.md.lock"}, cfg.Ignore.CustomPatterns[n-2:])

	cfg = config.Default()
	excludeOutputFile(&cfg, root, filepath.Join(root, "remix-output.md"))
	resolver := ignore.New(packer.ResolverOptions(root, &cfg))
	assert.False(t, resolver.ShouldInclude(types.Candidate{RelPath: "remix-output.md"}))
	assert.False(t, resolver.ShouldInclude(types.Candidate{RelPath: "remix-output.md.lock"}))
	assert.True(t, resolver.ShouldInclude(types.Candidate{RelPath: "docs/remix-output.md"}), "only the file at the root is excluded")

	cfg = config.Default()
	excludeOutputFile(&cfg, root, filepath.Join(filepath.Dir(root), "elsewhere.md"))
	assert.Equal(t, config.DefaultCustomPatterns, cfg.Ignore.CustomPatterns)
}

func TestRunToStdout(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/main.go":               "package main\n\n// entry point\nfunc main() {}\n",
		"README.md":                 "# demo\n",
		"node_modules/dep/index.js": "module.exports = 1\n",
	})

	cmd, _ := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{root, "--stdout", "--no-tokens", "--format", "json", "--remove-comments"})
	require.NoError(t, cmd.Execute())

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	summary := decoded["summary"].(map[string]any)
	assert.Equal(t, float64(2), summary["file_count"])

	files := decoded["files"].([]any)
	require.Len(t, files, 2)
	mainFile := files[1].(map[string]any)
	assert.Equal(t, "src/main.go", mainFile["relative_path"])
	assert.NotContains(t, mainFile["content"], "entry point")

	assert.Contains(t, errOut.String(), "Packed 2 file(s)")
	assert.Contains(t, errOut.String(), "Output written to stdout")
}

func TestRunWritesOutputFile(t *testing.T) {
	cwd := isolate(t)
	writeTree(t, cwd, map[string]string{
		"lib.py": "# helper\nx = 1\n",
	})

	cmd, _ := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--no-tokens", "--format", "txt"})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(filepath.Join(cwd, "remix-output.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "FILE: lib.py\n")
	assert.Contains(t, out.String(), "Output saved to ./remix-output.txt")

	// A second run must not pack the first run's output.
	cmd, _ = newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--no-tokens", "--format", "txt"})
	require.NoError(t, cmd.Execute())

	data, err = os.ReadFile(filepath.Join(cwd, "remix-output.txt"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "FILE: remix-output.txt")
	assert.NotContains(t, string(data), "remix-output.txt.lock")
	assert.FileExists(t, filepath.Join(cwd, "remix-output.txt.lock"))
}

func TestRunReadsConfigFile(t *testing.T) {
	cwd := isolate(t)
	writeTree(t, cwd, map[string]string{
		"remix.config.toml": "[output]\nformat = \"json\"\npath = \"packed.json\"\n\n[tokens]\nenabled = false\n",
		"a.txt":             "alpha\n",
	})

	cmd, _ := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(filepath.Join(cwd, "packed.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"relative_path": "a.txt"`)
}

func TestRunInit(t *testing.T) {
	cwd := isolate(t)

	cmd, _ := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--init"})
	require.NoError(t, cmd.Execute())
	assert.FileExists(t, filepath.Join(cwd, "remix.config.toml"))

	cmd, _ = newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--init"})
	assert.ErrorIs(t, cmd.Execute(), config.ErrConfigExists)
}

func TestRunRejectsBadInput(t *testing.T) {
	isolate(t)

	cmd, _ := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "html"})
	assert.Error(t, cmd.Execute())

	cmd, _ = newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing"), "--no-tokens"})
	assert.Error(t, cmd.Execute())

	cmd, _ = newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{".", "--remote", "octo/remix"})
	assert.Error(t, cmd.Execute())
}

// chdir changes the working directory for the rest of the test and restores
// it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
