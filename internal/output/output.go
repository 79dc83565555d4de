// Package output delivers rendered output: to a file (atomically, under a
// lock), to the clipboard, or to the operating system's default viewer.
package output

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/atotto/clipboard"
	"github.com/gofrs/flock"
)

// WriteFile writes data to path while holding path+".lock", so two runs
// writing the same output never interleave. Readers see either the old or
// the new content, never a partial write. The lock file stays behind; a
// waiter must never hold a lock on an unlinked inode.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	lockPath := path + ".lock"
	lock := flock.New(lockPath)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", lockPath, err)
	}
	defer func() { _ = lock.Unlock() }()

	return atomicWrite(path, data)
}

// atomicWrite writes to a temp file in the target directory and renames it
// over path.
func atomicWrite(path string, data []byte) (err error) {
	tempFile, err := os.CreateTemp(filepath.Dir(path), ".remix-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if err != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err = tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err = tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err = tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err = os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}
	return nil
}

// ErrClipboardUnavailable is returned when no clipboard utility is found.
var ErrClipboardUnavailable = errors.New("clipboard is not available")

// CopyToClipboard places text on the system clipboard.
func CopyToClipboard(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnavailable
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("error writing to clipboard: %w", err)
	}
	return nil
}

// OpenCommand returns the command that opens path with the default
// application on goos.
func OpenCommand(goos, path string) *exec.Cmd {
	switch goos {
	case "windows":
		return exec.Command("cmd", "/C", "start", "", path)
	case "darwin":
		return exec.Command("open", path)
	}
	return exec.Command("xdg-open", path)
}

// Open opens path with the default application and does not wait for it.
func Open(path string) error {
	cmd := OpenCommand(runtime.GOOS, path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
