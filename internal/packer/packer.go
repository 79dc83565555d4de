// Package packer drives a packing run: it walks the scan root through the
// ignore layers, classifies and transforms the surviving files on a worker
// pool, runs the directory-wide sensitive scan alongside, and aggregates
// the result into a types.PackedRepository.
package packer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jadenpxrk/remix/internal/config"
	"github.com/jadenpxrk/remix/internal/ignore"
	"github.com/jadenpxrk/remix/internal/logging"
	"github.com/jadenpxrk/remix/internal/scanner"
	"github.com/jadenpxrk/remix/internal/security"
	"github.com/jadenpxrk/remix/internal/transform"
	"github.com/jadenpxrk/remix/internal/types"
)

var (
	ErrRootNotFound     = errors.New("root path does not exist")
	ErrRootNotDirectory = errors.New("root path is not a directory")
	ErrRootUnreadable   = errors.New("root path is not readable")
)

// TokenCounter counts the tokens of a piece of text.
type TokenCounter interface {
	CountTokens(text string) int
}

// Options configures a packing run. A nil Config means config.Default();
// a nil Registry means transform.DefaultRegistry; a nil Tokens disables
// token counting.
type Options struct {
	Config   *config.Config
	Registry *transform.Registry
	Tokens   TokenCounter
}

// Pack packs the directory at root. Only problems with root itself are
// returned as errors; per-file and security scan failures degrade the
// result instead.
func Pack(root string, opts Options) (*types.PackedRepository, error) {
	logger := logging.GetLogger("packer")
	start := time.Now()
	defer logging.LogDuration(logger, start, "pack")

	cfg := opts.Config
	if cfg == nil {
		d := config.Default()
		cfg = &d
	}

	absRoot, err := checkRoot(root)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("root", absRoot).Msg("Packing repository")

	secDone := make(chan types.SecurityStatus, 1)
	var suspicious []string
	if cfg.Security.EnableSecurityCheck {
		go func() {
			found, err := security.Scan(absRoot)
			if err != nil {
				logger.Warn().Err(err).Msg("Security check failed")
				secDone <- types.SecurityStatus{State: types.SecurityFailed, Reason: err.Error()}
				return
			}
			suspicious = found
			if len(found) == 0 {
				secDone <- types.SecurityStatus{State: types.SecurityCompletedNoFindings}
				return
			}
			secDone <- types.SecurityStatus{State: types.SecurityCompletedWithFindings}
		}()
	} else {
		secDone <- types.SecurityStatus{State: types.SecurityDisabled}
	}

	resolver := ignore.New(ResolverOptions(absRoot, cfg))
	cands, err := scanner.Walk(absRoot, resolver)
	if err != nil {
		<-secDone
		return nil, fmt.Errorf("%w: %s: %v", ErrRootUnreadable, absRoot, err)
	}
	logger.Debug().Int("candidates", len(cands)).Msg("Walk finished")

	records := scanner.ClassifyAll(cands, cfg.MaxFileSize, cfg.Threads)

	var textRecords []types.FileRecord
	binaryFiles := []string{}
	var binaryEntries []types.TransformedFile
	for _, rec := range records {
		if !rec.IsBinary {
			textRecords = append(textRecords, rec)
			continue
		}
		binaryFiles = append(binaryFiles, rec.RelativePath)
		if cfg.IncludeBinary {
			binaryEntries = append(binaryEntries, types.TransformedFile{
				RelativePath: rec.RelativePath,
				Extension:    extensionOf(rec.RelativePath),
				Size:         rec.Size,
				IsBinary:     true,
			})
		}
	}

	tr := transform.Transformer{
		Registry:       opts.Registry,
		RemoveComments: cfg.Output.RemoveComments,
		Compress:       cfg.Compress,
	}
	files := transformAll(textRecords, workerConfig{
		transformer:    tr,
		sensitiveCheck: cfg.Security.EnableSecurityCheck,
		tokens:         opts.Tokens,
	}, cfg.Threads)

	files = append(files, binaryEntries...)
	sort.Slice(files, func(i, j int) bool {
		return files[i].RelativePath < files[j].RelativePath
	})
	sort.Strings(binaryFiles)

	status := <-secDone
	if status.State != types.SecurityCompletedWithFindings {
		suspicious = nil
	}

	logger.Info().Int("files", len(files)).Int("binary", len(binaryFiles)).Msg("Processed files")

	return &types.PackedRepository{
		Files:           files,
		Summary:         Summarize(files, len(binaryFiles)),
		Instruction:     ResolveInstruction(cfg),
		SuspiciousFiles: suspicious,
		BinaryFiles:     binaryFiles,
		Security:        status,
	}, nil
}

// checkRoot resolves root and makes sure it is a readable directory. A
// symlinked root is replaced by its target; the walk does not follow it.
func checkRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRootUnreadable, root, err)
	}
	resolved, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrRootNotFound, absRoot)
		}
		return "", fmt.Errorf("%w: %s: %v", ErrRootUnreadable, absRoot, err)
	}
	absRoot = resolved

	info, err := os.Stat(absRoot)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrRootNotFound, absRoot)
		}
		return "", fmt.Errorf("%w: %s: %v", ErrRootUnreadable, absRoot, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrRootNotDirectory, absRoot)
	}

	f, err := os.Open(absRoot)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRootUnreadable, absRoot, err)
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: %s: %v", ErrRootUnreadable, absRoot, err)
	}
	return absRoot, nil
}

// ResolverOptions maps the ignore settings of cfg onto the resolver.
func ResolverOptions(root string, cfg *config.Config) ignore.Options {
	return ignore.Options{
		Root:               root,
		CustomPatterns:     cfg.Ignore.CustomPatterns,
		IncludePatterns:    cfg.Include,
		UseLocalIgnore:     cfg.Ignore.UseMixignore,
		UseDefaultPatterns: cfg.Ignore.UseDefaultPatterns,
		UseGitignore:       cfg.Ignore.UseGitignore,
		UseGlobalGitignore: cfg.Ignore.UseGlobalGitignore,
	}
}

// Summarize computes the aggregate summary of the final file set.
// Top-level files count towards the root directory ".".
func Summarize(files []types.TransformedFile, binaryCount int) types.Summary {
	dirs := make(map[string]struct{})
	exts := make(map[string]struct{})
	summary := types.Summary{
		FileCount:       len(files),
		BinaryFileCount: binaryCount,
		Extensions:      []string{},
	}

	for _, f := range files {
		summary.TotalSize += f.Size
		summary.TotalTokens += f.TokenCount
		dirs[path.Dir(f.RelativePath)] = struct{}{}
		if ext := strings.ToLower(f.Extension); ext != "" {
			exts[ext] = struct{}{}
		}
	}

	summary.DirectoryCount = len(dirs)
	for ext := range exts {
		summary.Extensions = append(summary.Extensions, ext)
	}
	sort.Strings(summary.Extensions)
	return summary
}

// ResolveInstruction returns the content of output.instruction_file_path
// when it can be read, and the inline instruction otherwise.
func ResolveInstruction(cfg *config.Config) string {
	file := cfg.Output.InstructionFilePath
	if file == "" {
		return cfg.Instruction
	}

	logger := logging.GetLogger("packer")
	content, err := os.ReadFile(file)
	if err != nil {
		logger.Warn().Err(err).Str("path", file).Msg("Failed to read instruction file, using inline instruction")
		return cfg.Instruction
	}
	logger.Debug().Str("path", file).Msg("Read instruction file")
	return string(content)
}

// extensionOf returns the lowercased extension of p without the dot.
func extensionOf(p string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
}
