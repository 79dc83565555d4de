package packer

import (
	"os"
	"runtime"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/jadenpxrk/remix/internal/logging"
	"github.com/jadenpxrk/remix/internal/scanner"
	"github.com/jadenpxrk/remix/internal/security"
	"github.com/jadenpxrk/remix/internal/transform"
	"github.com/jadenpxrk/remix/internal/types"
)

// workerConfig is shared read-only by every transform worker.
type workerConfig struct {
	transformer    transform.Transformer
	sensitiveCheck bool
	tokens         TokenCounter
}

// transformAll reads and transforms recs on a pool of workers. Files that
// cannot be read, are not valid UTF-8 or trip the sensitive gate are
// dropped. The result is sorted by relative path.
func transformAll(recs []types.FileRecord, wc workerConfig, workers int) []types.TransformedFile {
	files := []types.TransformedFile{}
	if len(recs) == 0 {
		return files
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(recs) {
		workers = len(recs)
	}

	jobs := make(chan types.FileRecord, len(recs))
	results := make(chan types.TransformedFile, len(recs))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go transformWorker(wc, jobs, results, &wg)
	}

	for _, rec := range recs {
		jobs <- rec
	}
	close(jobs)

	wg.Wait()
	close(results)

	for f := range results {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].RelativePath < files[j].RelativePath
	})
	return files
}

func transformWorker(wc workerConfig, jobs <-chan types.FileRecord, results chan<- types.TransformedFile, wg *sync.WaitGroup) {
	defer wg.Done()
	logger := logging.GetLogger("packer")

	for rec := range jobs {
		data, err := os.ReadFile(rec.AbsolutePath)
		if err != nil {
			logger.Warn().Err(&scanner.IOError{Op: "read", Path: rec.RelativePath, Err: err}).Msg("Skipping file")
			continue
		}
		if !utf8.Valid(data) {
			logger.Warn().Str("path", rec.RelativePath).Msg("Skipping file that is not valid UTF-8")
			continue
		}

		content := string(data)
		if wc.sensitiveCheck && security.CheckSensitiveContent(content) {
			logger.Warn().Str("path", rec.RelativePath).Msg("Skipping file with sensitive content")
			continue
		}

		ext := extensionOf(rec.RelativePath)
		out := types.TransformedFile{
			RelativePath: rec.RelativePath,
			Extension:    ext,
			Content:      wc.transformer.Apply(content, ext),
			Size:         rec.Size,
		}
		if wc.tokens != nil {
			out.TokenCount = wc.tokens.CountTokens(out.Content)
		}
		results <- out
	}
}
