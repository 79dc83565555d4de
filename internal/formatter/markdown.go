package formatter

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/jadenpxrk/remix/internal/types"
)

// FormatMarkdown renders repo as a Markdown document: instruction,
// summary, security results, binary files, directory tree, then the files
// grouped by directory.
func FormatMarkdown(repo *types.PackedRepository) string {
	var b strings.Builder

	if repo.Instruction != "" {
		b.WriteString("# User Instruction\n\n")
		b.WriteString(repo.Instruction)
		b.WriteString("\n\n")
	}

	s := repo.Summary
	b.WriteString("# Repository Summary\n\n")
	fmt.Fprintf(&b, "- **Files:** %d\n", s.FileCount)
	fmt.Fprintf(&b, "- **Directories:** %d\n", s.DirectoryCount)
	fmt.Fprintf(&b, "- **Total Size:** %s\n", FormatSize(s.TotalSize))
	fmt.Fprintf(&b, "- **Binary Files:** %d\n", s.BinaryFileCount)
	if len(s.Extensions) > 0 {
		fmt.Fprintf(&b, "- **Extensions:** %s\n", strings.Join(s.Extensions, ", "))
	}
	if s.TotalTokens > 0 {
		fmt.Fprintf(&b, "- **Total Tokens:** %d\n", s.TotalTokens)
	}

	writeMarkdownSecurity(&b, repo)

	if len(repo.BinaryFiles) > 0 {
		b.WriteString("\n## Binary Files\n\n")
		b.WriteString("The following binary files were detected but not included in the content:\n\n")
		for i, f := range repo.BinaryFiles {
			fmt.Fprintf(&b, "%d. `%s`\n", i+1, f)
		}
	}

	if len(repo.Files) > 0 {
		b.WriteString("\n## Directory Structure\n\n```\n")
		b.WriteString(BuildTree(repo.Files, ".").String())
		b.WriteString("```\n")
	}

	b.WriteString("\n# Files\n\n")
	for _, group := range groupByDir(repo.Files) {
		if group.dir == "." {
			b.WriteString("## Root Directory\n\n")
		} else {
			fmt.Fprintf(&b, "## %s/\n\n", group.dir)
		}

		for _, f := range group.files {
			fmt.Fprintf(&b, "### %s\n\n", path.Base(f.RelativePath))
			fmt.Fprintf(&b, "- **Path:** %s\n", f.RelativePath)
			fmt.Fprintf(&b, "- **Size:** %s\n", FormatSize(f.Size))
			if f.Extension != "" {
				fmt.Fprintf(&b, "- **Type:** %s\n", f.Extension)
			}
			if f.TokenCount > 0 {
				fmt.Fprintf(&b, "- **Tokens:** %d\n", f.TokenCount)
			}
			if f.IsBinary {
				b.WriteString("- **Binary:** content omitted\n\n")
				continue
			}

			fence := fenceFor(f.Content)
			fmt.Fprintf(&b, "\n%s%s\n", fence, f.Extension)
			b.WriteString(f.Content)
			if !strings.HasSuffix(f.Content, "\n") {
				b.WriteString("\n")
			}
			b.WriteString(fence)
			b.WriteString("\n\n")
		}
	}

	return b.String()
}

func writeMarkdownSecurity(b *strings.Builder, repo *types.PackedRepository) {
	switch repo.Security.State {
	case types.SecurityDisabled:
		b.WriteString("\n## Security Check\n\n")
		b.WriteString("🔒 **Security check was disabled**\n")
	case types.SecurityCompletedNoFindings:
		b.WriteString("\n## Security Check\n\n")
		b.WriteString("✅ **Security check completed - no suspicious files found**\n")
	case types.SecurityCompletedWithFindings:
		b.WriteString("\n## Security Check Results\n\n")
		fmt.Fprintf(b, "⚠️ **%d suspicious file(s) detected that may contain sensitive information:**\n\n", len(repo.SuspiciousFiles))
		for i, f := range repo.SuspiciousFiles {
			fmt.Fprintf(b, "%d. `%s`\n", i+1, f)
		}
		b.WriteString("\n> **Note:** Please review these files before sharing this output.\n")
	case types.SecurityFailed:
		b.WriteString("\n## Security Check\n\n")
		fmt.Fprintf(b, "❌ **Security check failed**: %s\n", repo.Security.Reason)
	}
}

// fenceFor returns a backtick fence longer than any backtick run in content.
func fenceFor(content string) string {
	longest, run := 0, 0
	for i := 0; i < len(content); i++ {
		if content[i] == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}

type dirGroup struct {
	dir   string
	files []types.TransformedFile
}

// groupByDir groups files by parent directory, in directory order.
func groupByDir(files []types.TransformedFile) []dirGroup {
	index := make(map[string]int)
	var groups []dirGroup
	for _, f := range files {
		dir := path.Dir(f.RelativePath)
		i, ok := index[dir]
		if !ok {
			i = len(groups)
			index[dir] = i
			groups = append(groups, dirGroup{dir: dir})
		}
		groups[i].files = append(groups[i].files, f)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].dir < groups[j].dir
	})
	return groups
}
