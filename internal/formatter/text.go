package formatter

import (
	"fmt"
	"strings"

	"github.com/jadenpxrk/remix/internal/types"
)

const textSeparator = "--------------------------------"

// FormatText renders repo as plain text with upper-case section headers.
func FormatText(repo *types.PackedRepository) string {
	var b strings.Builder

	if repo.Instruction != "" {
		b.WriteString("USER INSTRUCTION:\n\n")
		b.WriteString(repo.Instruction)
		b.WriteString("\n\n")
	}

	s := repo.Summary
	b.WriteString("REPOSITORY SUMMARY:\n\n")
	fmt.Fprintf(&b, "Files: %d\n", s.FileCount)
	fmt.Fprintf(&b, "Directories: %d\n", s.DirectoryCount)
	fmt.Fprintf(&b, "Total Size: %s\n", FormatSize(s.TotalSize))
	fmt.Fprintf(&b, "Binary Files: %d\n", s.BinaryFileCount)
	if len(s.Extensions) > 0 {
		fmt.Fprintf(&b, "Extensions: %s\n", strings.Join(s.Extensions, ", "))
	}
	if s.TotalTokens > 0 {
		fmt.Fprintf(&b, "Total Tokens: %d\n", s.TotalTokens)
	}

	b.WriteString("\nSECURITY CHECK:\n\n")
	switch repo.Security.State {
	case types.SecurityDisabled:
		b.WriteString("Security check was disabled.\n")
	case types.SecurityCompletedNoFindings:
		b.WriteString("Security check completed - no suspicious files found.\n")
	case types.SecurityCompletedWithFindings:
		fmt.Fprintf(&b, "WARNING: %d suspicious file(s) detected that may contain sensitive information:\n\n", len(repo.SuspiciousFiles))
		for i, f := range repo.SuspiciousFiles {
			fmt.Fprintf(&b, "%d. %s\n", i+1, f)
		}
		b.WriteString("\nPlease review these files before sharing this output.\n")
	case types.SecurityFailed:
		fmt.Fprintf(&b, "Security check failed: %s\n", repo.Security.Reason)
	}

	if len(repo.BinaryFiles) > 0 {
		b.WriteString("\nBINARY FILES:\n\n")
		b.WriteString("The following binary files were detected but not included in the content:\n\n")
		for i, f := range repo.BinaryFiles {
			fmt.Fprintf(&b, "%d. %s\n", i+1, f)
		}
	}

	b.WriteString("\nFILES:\n\n")
	for _, f := range repo.Files {
		fmt.Fprintf(&b, "FILE: %s\n", f.RelativePath)
		fmt.Fprintf(&b, "SIZE: %s\n", FormatSize(f.Size))
		if f.Extension != "" {
			fmt.Fprintf(&b, "TYPE: %s\n", f.Extension)
		}
		if f.TokenCount > 0 {
			fmt.Fprintf(&b, "TOKENS: %d\n", f.TokenCount)
		}
		b.WriteString("\nCONTENT:\n")
		b.WriteString(f.Content)
		b.WriteString("\n\n")
		b.WriteString(textSeparator)
		b.WriteString("\n\n")
	}

	return b.String()
}
