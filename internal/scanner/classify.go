// Package scanner discovers candidate files under a scan root and
// classifies them as text or binary.
package scanner

import (
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/jadenpxrk/remix/internal/types"
)

// IOError is a per-file failure: the file is skipped, the run continues.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Classify computes the metadata of c and sniffs its content type.
func Classify(c types.Candidate) (types.FileRecord, error) {
	rec, _, err := classify(c, 0)
	return rec, err
}

// classify stats c and, unless it exceeds maxSize (0 means unlimited),
// sniffs its content. oversize is true when the file was skipped for size.
func classify(c types.Candidate, maxSize uint64) (rec types.FileRecord, oversize bool, err error) {
	info, err := os.Stat(c.AbsPath)
	if err != nil {
		return rec, false, &IOError{Op: "stat", Path: c.RelPath, Err: err}
	}

	size := uint64(info.Size())
	if maxSize > 0 && size > maxSize {
		return rec, true, nil
	}

	mtype, err := mimetype.DetectFile(c.AbsPath)
	if err != nil {
		return rec, false, &IOError{Op: "sniff", Path: c.RelPath, Err: err}
	}

	return types.FileRecord{
		RelativePath: c.RelPath,
		AbsolutePath: c.AbsPath,
		Size:         size,
		MimeType:     mtype.String(),
		IsBinary:     IsBinaryMime(mtype.String()),
	}, false, nil
}

// IsBinaryMime reports whether a sniffed media type denotes binary content:
// application types other than json, xml, javascript and typescript, and
// all image, audio and video types.
func IsBinaryMime(mime string) bool {
	mime = strings.ToLower(mime)
	if strings.HasPrefix(mime, "application/") {
		for _, textual := range []string{"json", "xml", "javascript", "typescript"} {
			if strings.Contains(mime, textual) {
				return false
			}
		}
		return true
	}
	return strings.HasPrefix(mime, "image/") ||
		strings.HasPrefix(mime, "audio/") ||
		strings.HasPrefix(mime, "video/")
}
