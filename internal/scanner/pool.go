package scanner

import (
	"runtime"
	"sort"
	"sync"

	"github.com/jadenpxrk/remix/internal/logging"
	"github.com/jadenpxrk/remix/internal/types"
)

// ClassifyAll classifies cands on a pool of workers (runtime.NumCPU() when
// workers <= 0). Files over maxSize (0 means unlimited) and files that fail
// classification are dropped. The result is sorted by relative path.
func ClassifyAll(cands []types.Candidate, maxSize uint64, workers int) []types.FileRecord {
	if len(cands) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(cands) {
		workers = len(cands)
	}

	jobs := make(chan types.Candidate, len(cands))
	results := make(chan types.FileRecord, len(cands))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go classifyWorker(maxSize, jobs, results, &wg)
	}

	for _, c := range cands {
		jobs <- c
	}
	close(jobs)

	wg.Wait()
	close(results)

	records := make([]types.FileRecord, 0, len(cands))
	for rec := range results {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].RelativePath < records[j].RelativePath
	})
	return records
}

func classifyWorker(maxSize uint64, jobs <-chan types.Candidate, results chan<- types.FileRecord, wg *sync.WaitGroup) {
	defer wg.Done()
	logger := logging.GetLogger("scanner")

	for c := range jobs {
		rec, oversize, err := classify(c, maxSize)
		if err != nil {
			logger.Warn().Err(err).Str("path", c.RelPath).Msg("Skipping file")
			continue
		}
		if oversize {
			logger.Debug().Str("path", c.RelPath).Uint64("max_file_size", maxSize).Msg("Skipping file over size limit")
			continue
		}
		results <- rec
	}
}
