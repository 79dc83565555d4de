// Package formatter renders a packed repository as Markdown, JSON, plain
// text or PDF.
package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jadenpxrk/remix/internal/types"
)

// Format is an output format.
type Format string

const (
	Markdown Format = "md"
	JSON     Format = "json"
	Text     Format = "txt"
	PDF      Format = "pdf"
)

// ParseFormat maps a user-supplied format name, including the aliases
// "markdown" and "text", onto a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "md", "markdown":
		return Markdown, nil
	case "json":
		return JSON, nil
	case "txt", "text":
		return Text, nil
	case "pdf":
		return PDF, nil
	}
	return "", fmt.Errorf("unknown output format %q", name)
}

// Extension returns the file extension conventionally used for f.
func (f Format) Extension() string {
	return "." + string(f)
}

// Render renders repo in the given format.
func Render(repo *types.PackedRepository, f Format) ([]byte, error) {
	switch f {
	case Markdown:
		return []byte(FormatMarkdown(repo)), nil
	case JSON:
		return FormatJSON(repo)
	case Text:
		return []byte(FormatText(repo)), nil
	case PDF:
		var buf bytes.Buffer
		if err := WritePDF(&buf, repo); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown output format %q", f)
}

// FormatJSON renders repo as indented JSON.
func FormatJSON(repo *types.PackedRepository) ([]byte, error) {
	data, err := json.MarshalIndent(repo, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize repository to JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// FormatSize renders a byte count the way humans read it: "512 bytes",
// "1.50 KB", "2.00 MB".
func FormatSize(size uint64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case size >= gb:
		return fmt.Sprintf("%.2f GB", float64(size)/gb)
	case size >= mb:
		return fmt.Sprintf("%.2f MB", float64(size)/mb)
	case size >= kb:
		return fmt.Sprintf("%.2f KB", float64(size)/kb)
	}
	return fmt.Sprintf("%d bytes", size)
}
