package scanner

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jadenpxrk/remix/internal/ignore"
	"github.com/jadenpxrk/remix/internal/types"
)

func writeFile(t *testing.T, root, rel string, content []byte) types.Candidate {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, content, 0644))
	return types.Candidate{AbsPath: path, RelPath: rel}
}

func TestIsBinaryMime(t *testing.T) {
	tests := []struct {
		mime string
		want bool
	}{
		{"text/plain; charset=utf-8", false},
		{"application/json", false},
		{"application/xml", false},
		{"application/javascript", false},
		{"application/x-typescript", false},
		{"application/octet-stream", true},
		{"application/pdf", true},
		{"application/zip", true},
		{"image/png", true},
		{"audio/mpeg", true},
		{"video/mp4", true},
		{"text/html; charset=utf-8", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsBinaryMime(tt.mime), tt.mime)
	}
}

func TestClassify(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name       string
		rel        string
		content    []byte
		wantBinary bool
	}{
		{"source file", "src/main.rs", []byte("fn main() {\n    println!(\"hi\");\n}\n"), false},
		{"json is text", "data.json", []byte(`{"name": "remix", "version": 1}`), false},
		{"null bytes are binary", "blob.txt", []byte("abc\x00\x01\x02\x03def\x00"), true},
		{"png header is binary", "logo.png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01"), true},
		{"empty file is text", "empty.md", []byte{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := writeFile(t, root, tt.rel, tt.content)
			rec, err := Classify(c)
			require.NoError(t, err)
			assert.Equal(t, tt.rel, rec.RelativePath)
			assert.Equal(t, c.AbsPath, rec.AbsolutePath)
			assert.Equal(t, uint64(len(tt.content)), rec.Size)
			assert.NotEmpty(t, rec.MimeType)
			assert.Equal(t, tt.wantBinary, rec.IsBinary, "mime %s", rec.MimeType)
		})
	}
}

func TestClassifyMissingFile(t *testing.T) {
	root := t.TempDir()
	_, err := Classify(types.Candidate{AbsPath: filepath.Join(root, "gone.txt"), RelPath: "gone.txt"})
	require.Error(t, err)

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "stat", ioErr.Op)
	assert.Equal(t, "gone.txt", ioErr.Path)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestClassifyAll(t *testing.T) {
	root := t.TempDir()
	cands := []types.Candidate{
		writeFile(t, root, "z.txt", []byte("last")),
		writeFile(t, root, "a.txt", []byte("first")),
		writeFile(t, root, "big.txt", make([]byte, 2048)),
		{AbsPath: filepath.Join(root, "missing.txt"), RelPath: "missing.txt"},
	}

	records := ClassifyAll(cands, 1024, 3)
	require.Len(t, records, 2)
	assert.Equal(t, "a.txt", records[0].RelativePath)
	assert.Equal(t, "z.txt", records[1].RelativePath)

	unlimited := ClassifyAll(cands, 0, 0)
	require.Len(t, unlimited, 3)
	assert.Equal(t, "big.txt", unlimited[1].RelativePath)
	assert.True(t, unlimited[1].IsBinary, "zero-filled file sniffs as binary")

	assert.Nil(t, ClassifyAll(nil, 0, 4))
}

func TestWalk(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/main.rs", []byte("fn main() {}\n"))
	writeFile(t, root, "README.md", []byte("# demo\n"))
	writeFile(t, root, "node_modules/pkg/index.js", []byte("module.exports = 1\n"))
	writeFile(t, root, ".hidden/notes.txt", []byte("hidden but visited\n"))
	writeFile(t, root, "tools/app.exe", []byte("MZ"))
	require.NoError(t, os.Symlink(filepath.Join(root, "src", "main.rs"), filepath.Join(root, "link.rs")))
	require.NoError(t, os.Symlink(filepath.Join(root, "src"), filepath.Join(root, "srclink")))

	resolver := ignore.New(ignore.Options{Root: root})
	cands, err := Walk(root, resolver)
	require.NoError(t, err)

	var rels []string
	for _, c := range cands {
		rels = append(rels, c.RelPath)
		assert.True(t, filepath.IsAbs(c.AbsPath))
		assert.False(t, c.IsDir)
	}
	assert.Equal(t, []string{".hidden/notes.txt", "README.md", "src/main.rs"}, rels)
}

func TestWalkAppliesIncludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/main.rs", []byte("fn main() {}\n"))
	writeFile(t, root, "src/lib/util.rs", []byte("pub fn f() {}\n"))
	writeFile(t, root, "README.md", []byte("# demo\n"))

	resolver := ignore.New(ignore.Options{Root: root, IncludePatterns: []string{"**/*.rs"}})
	cands, err := Walk(root, resolver)
	require.NoError(t, err)
	require.Len(t, cands, 2)
	assert.Equal(t, "src/lib/util.rs", cands[0].RelPath)
	assert.Equal(t, "src/main.rs", cands[1].RelPath)
}

func TestWalkMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nope")
	_, err := Walk(root, ignore.New(ignore.Options{Root: root}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
