package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jadenpxrk/remix/internal/config"
	"github.com/jadenpxrk/remix/internal/formatter"
	"github.com/jadenpxrk/remix/internal/logging"
	"github.com/jadenpxrk/remix/internal/packer"
	"github.com/jadenpxrk/remix/internal/remote"
	"github.com/jadenpxrk/remix/internal/types"
)

// version is the application version, set via ldflags.
var version = "dev"

// cliOptions holds the flags that are not plain config keys. The rest are
// bound to v and reach the Config through config.Load.
type cliOptions struct {
	v *viper.Viper

	cfgFile           string
	initConfig        bool
	include           string
	ignore            string
	skipSensitive     bool
	noGitignore       bool
	noDefaultPatterns bool
	noTokens          bool
	remote            string
	remoteBranch      string
	clipboard         bool
	stdout            bool
	interactive       bool
	verbose           int
}

// flagKeys maps flags onto config keys.
var flagKeys = map[string]string{
	"max-file-size":    "max_file_size",
	"output":           "output.path",
	"format":           "output.format",
	"compress":         "compress",
	"remove-comments":  "output.remove_comments",
	"include-binary":   "include_binary",
	"instruction":      "instruction",
	"instruction-file": "output.instruction_file_path",
	"open":             "output.open_file",
	"threads":          "threads",
	"tokenizer":        "tokens.tokenizer",
	"model":            "tokens.model",
	"tokenizer-file":   "tokens.file",
}

func newRootCmd() (*cobra.Command, *cliOptions) {
	o := &cliOptions{v: viper.New()}
	config.SetDefaults(o.v)

	cmd := &cobra.Command{
		Use:   "remix [PATH]",
		Short: "remix packs a repository into a single AI-friendly document.",
		Long: `remix walks a local directory or a cloned remote repository, applies
ignore rules, strips comments on request and writes the result as
Markdown, JSON, plain text or PDF.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.cfgFile, "config", "", "Config file (default is ./remix.config.{toml,json,yaml} or $XDG_CONFIG_HOME/remix/)")
	f.BoolVar(&o.initConfig, "init", false, "Write a default remix.config.toml to the current directory")

	// Filtering
	f.StringVar(&o.include, "include", "", "Only include files matching these patterns (comma-separated, e.g. **/*.rs,**/*.go)")
	f.StringVar(&o.ignore, "ignore", "", "Replace the custom ignore patterns (comma-separated)")
	f.Uint64("max-file-size", config.DefaultMaxFileSize, "Maximum file size in bytes (0 for no limit)")
	f.BoolVar(&o.noGitignore, "no-gitignore", false, "Don't respect .gitignore files")
	f.BoolVar(&o.noDefaultPatterns, "no-default-patterns", false, "Don't apply the default ignore patterns")
	f.Bool("include-binary", false, "List binary files in the output with their content omitted")

	// Transformation
	f.Bool("compress", false, "Keep only structural lines of each file")
	f.Bool("remove-comments", false, "Strip comments from supported languages")
	f.BoolVar(&o.skipSensitive, "skip-sensitive-check", false, "Disable the sensitive content check")

	// Input
	f.StringVar(&o.remote, "remote", "", "Remote repository to pack (URL or GitHub user/repo)")
	f.StringVar(&o.remoteBranch, "remote-branch", "", "Branch or commit hash of the remote repository (default: its default branch)")
	f.BoolVar(&o.interactive, "interactive", false, "Pick the directory to pack with a fuzzy finder")

	// Output
	f.StringP("output", "o", config.DefaultOutputPath, "Output file path")
	f.String("format", config.DefaultFormat, "Output format: "+strings.Join(config.Formats, ", "))
	f.String("instruction", "", "Instruction to place at the top of the output")
	f.String("instruction-file", "", "File whose content is placed at the top of the output")
	f.Bool("open", false, "Open the output file when done")
	f.BoolVarP(&o.clipboard, "clipboard", "c", false, "Copy output to clipboard")
	f.BoolVar(&o.stdout, "stdout", false, "Write output to stdout")

	// Processing
	f.IntP("threads", "t", 0, "Number of threads for parallel processing (0 for auto)")

	// Token Counting
	f.BoolVar(&o.noTokens, "no-tokens", false, "Disable token counting")
	f.String("tokenizer", config.DefaultTokenizer, "Tokenizer to use: tiktoken or huggingface")
	f.String("model", "", "Model name for tokenizer (e.g., gpt-4o, gpt2)")
	f.String("tokenizer-file", "", "Path to local tokenizer file")

	f.CountVarP(&o.verbose, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")

	for flag, key := range flagKeys {
		_ = o.v.BindPFlag(key, f.Lookup(flag))
	}

	return cmd, o
}

// applyFlagOverrides applies the flags that cannot be bound to a key:
// comma-separated lists and negated switches.
func applyFlagOverrides(cfg *config.Config, o *cliOptions) {
	if o.include != "" {
		cfg.Include = splitList(o.include)
	}
	if o.ignore != "" {
		cfg.Ignore.CustomPatterns = splitList(o.ignore)
	}
	if o.noGitignore {
		cfg.Ignore.UseGitignore = false
	}
	if o.noDefaultPatterns {
		cfg.Ignore.UseDefaultPatterns = false
	}
	if o.skipSensitive {
		cfg.Security.EnableSecurityCheck = false
	}
	if o.noTokens {
		cfg.Tokens.Enabled = false
	}
}

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// excludeOutputFile keeps a previous run's output and its lock file out of
// the pack when they are written inside root.
func excludeOutputFile(cfg *config.Config, root, outPath string) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return
	}
	absOut, err := filepath.Abs(outPath)
	if err != nil {
		return
	}
	rel, err := filepath.Rel(absRoot, absOut)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return
	}
	anchored := "/" + filepath.ToSlash(rel)
	cfg.Ignore.CustomPatterns = append(cfg.Ignore.CustomPatterns, anchored, anchored+".lock")
}

// resolveRoot decides which directory to pack. The returned cleanup removes
// a cloned remote and must always be called.
func resolveRoot(ctx context.Context, o *cliOptions, args []string, progress io.Writer) (string, func(), error) {
	noop := func() {}

	switch {
	case o.remote != "":
		if len(args) > 0 {
			return "", noop, errors.New("a PATH argument cannot be combined with --remote")
		}
		target, err := remote.Parse(o.remote, o.remoteBranch)
		if err != nil {
			return "", noop, err
		}
		dir, err := remote.Clone(ctx, target, progress)
		if err != nil {
			return "", noop, err
		}
		return dir, func() { _ = os.RemoveAll(dir) }, nil

	case o.interactive:
		dir, err := runInteractiveFinder()
		return dir, noop, err

	case len(args) == 1:
		return args[0], noop, nil
	}
	return ".", noop, nil
}

func run(cmd *cobra.Command, o *cliOptions, args []string) error {
	logging.SetupLogger(o.verbose)
	logger := logging.GetLogger("cli")

	status := cmd.OutOrStdout()
	if o.stdout {
		status = cmd.ErrOrStderr()
	}
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	if o.initConfig {
		path, err := config.Init(".")
		if err != nil {
			return err
		}
		green.Fprintf(status, "Created %s\n", path)
		return nil
	}

	used, err := config.ReadIn(o.v, o.cfgFile)
	if err != nil {
		return err
	}
	if used != "" {
		logger.Info().Str("path", used).Msg("Using config file")
	}

	cfg, err := config.Load(o.v)
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg, o)

	format, err := formatter.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	var progress io.Writer
	if o.verbose > 0 {
		progress = cmd.ErrOrStderr()
	}
	root, cleanup, err := resolveRoot(cmd.Context(), o, args, progress)
	defer cleanup()
	if errors.Is(err, errSelectionAborted) {
		fmt.Fprintln(status, "Interactive selection aborted.")
		return nil
	}
	if err != nil {
		return err
	}

	dest := destination{
		Stdout:    o.stdout,
		Clipboard: o.clipboard,
		Path:      resolveOutputPath(cfg.Output.Path, format),
		Open:      cfg.Output.OpenFile,
	}
	if o.remote == "" {
		excludeOutputFile(cfg, root, dest.Path)
	}

	registry, err := buildRegistry(cfg.LanguagesFile)
	if err != nil {
		return err
	}

	counter, err := newTokenCounter(cfg.Tokens)
	if err != nil {
		logger.Warn().Err(err).Msg("Token counting disabled")
		counter = nil
	}

	repo, err := packer.Pack(root, packer.Options{
		Config:   cfg,
		Registry: registry,
		Tokens:   counter,
	})
	if err != nil {
		return err
	}

	data, err := formatter.Render(repo, format)
	if err != nil {
		return err
	}

	msg, err := deliver(data, format, dest, cmd.OutOrStdout())
	if err != nil && dest.Clipboard && !errors.Is(err, errBinaryClipboard) {
		yellow.Fprintf(status, "Clipboard failed (%v), writing to file instead\n", err)
		dest.Clipboard = false
		msg, err = deliver(data, format, dest, cmd.OutOrStdout())
	}
	if err != nil {
		return err
	}

	printSummary(status, repo)
	green.Fprintln(status, msg)
	return nil
}

// printSummary writes the end-of-run report.
func printSummary(w io.Writer, repo *types.PackedRepository) {
	s := repo.Summary
	fmt.Fprintf(w, "Packed %d file(s) in %d director(ies), %s\n", s.FileCount, s.DirectoryCount, formatter.FormatSize(s.TotalSize))
	if s.BinaryFileCount > 0 {
		fmt.Fprintf(w, "Binary files: %d\n", s.BinaryFileCount)
	}
	if s.TotalTokens > 0 {
		fmt.Fprintf(w, "Total tokens: %d\n", s.TotalTokens)
	}

	switch repo.Security.State {
	case types.SecurityCompletedWithFindings:
		yellow := color.New(color.FgYellow, color.Bold)
		yellow.Fprintf(w, "%d suspicious file(s) detected:\n", len(repo.SuspiciousFiles))
		for _, f := range repo.SuspiciousFiles {
			yellow.Fprintf(w, "  - %s\n", f)
		}
	case types.SecurityFailed:
		color.New(color.FgRed).Fprintf(w, "Security check failed: %s\n", repo.Security.Reason)
	case types.SecurityDisabled:
		fmt.Fprintln(w, "Security check disabled")
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, _ := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
