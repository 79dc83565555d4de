package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jadenpxrk/remix/internal/config"
	"github.com/jadenpxrk/remix/internal/formatter"
	"github.com/jadenpxrk/remix/internal/output"
)

// destination says where rendered output goes. Stdout wins over Clipboard,
// which wins over writing Path.
type destination struct {
	Stdout    bool
	Clipboard bool
	Path      string
	Open      bool
}

// errBinaryClipboard is returned when PDF output is sent to the clipboard.
var errBinaryClipboard = errors.New("PDF output cannot be copied to the clipboard")

// resolveOutputPath fills in the default output path and, when the default
// is used with another format, gives it that format's extension.
func resolveOutputPath(path string, f formatter.Format) string {
	if path == "" {
		path = config.DefaultOutputPath
	}
	if path == config.DefaultOutputPath && f != formatter.Markdown {
		path = strings.TrimSuffix(path, filepath.Ext(path)) + f.Extension()
	}
	return path
}

// deliver sends data to dest and returns a one-line description of where
// it went. stdout receives the data in stdout mode.
func deliver(data []byte, f formatter.Format, dest destination, stdout io.Writer) (string, error) {
	switch {
	case dest.Stdout:
		if _, err := stdout.Write(data); err != nil {
			return "", fmt.Errorf("error writing to stdout: %w", err)
		}
		return "Output written to stdout", nil

	case dest.Clipboard:
		if f == formatter.PDF {
			return "", errBinaryClipboard
		}
		if err := output.CopyToClipboard(string(data)); err != nil {
			return "", err
		}
		return "Output copied to clipboard", nil
	}

	path := resolveOutputPath(dest.Path, f)
	if err := output.WriteFile(path, data); err != nil {
		return "", fmt.Errorf("error writing to file %s: %w", path, err)
	}
	if dest.Open {
		if err := output.Open(path); err != nil {
			return "", err
		}
	}
	return "Output saved to " + path, nil
}
