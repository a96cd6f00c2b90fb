// Package engine is the parallel ingestion coordinator: it partitions
// trace files round-robin across a fixed worker pool, gives each worker
// its own database connection and append session spanning all of that
// worker's files, and tracks progress through a set of atomic counters
// the caller can sample concurrently (internal/progress does exactly
// that).
package engine

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/atomic"

	"github.com/Omegaice/strace-to-duckdb/internal/duckstore"
	"github.com/Omegaice/strace-to-duckdb/internal/fileproc"
	"github.com/Omegaice/strace-to-duckdb/internal/logging"
)

// Counters are the atomic progress counters a Run updates as workers
// finish files. Safe to read concurrently with the run in progress.
type Counters struct {
	FilesComplete  atomic.Int64
	TotalLines     atomic.Int64
	ParsedLines    atomic.Int64
	FailedLines    atomic.Int64
	FilesWithError atomic.Int64
}

// Done reports whether every file has either completed or errored —
// the progress loop's exit condition.
func (c *Counters) Done(totalFiles int) bool {
	return c.FilesComplete.Load()+c.FilesWithError.Load() >= int64(totalFiles)
}

// Result is the outcome of a complete Run.
type Result struct {
	Counters    *Counters
	FileResults []fileproc.Result
	// Critical is the first non-file-level error observed in any
	// worker's error slot, or nil. File-level errors (not-found,
	// permission-denied, line-too-long) are already reflected in
	// FilesWithError and are not returned here.
	Critical error
}

// workerSlot is the last-write-wins error slot documented in
// spec.md §4.4: a repeatedly-failing worker keeps only its most
// recent file's error. Written only by the owning worker, read only
// after every worker has joined.
type workerSlot struct {
	err error
}

// Run partitions paths round-robin across workerCount workers, each
// holding its own duckstore.Handle connected to coordinator, and blocks
// until every worker has processed all of its assigned files.
//
// counters may be nil, in which case Run allocates its own; pass an
// existing *Counters (zero-valued is fine) when a caller needs to
// sample progress concurrently with the run, e.g. internal/progress.
func Run(coordinator *duckstore.Handle, paths []string, workerCount int, log logging.Logger, counters *Counters) *Result {
	if counters == nil {
		counters = &Counters{}
	}
	result := &Result{Counters: counters}

	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(paths) {
		workerCount = len(paths)
	}

	buckets := make([][]string, workerCount)
	for i, p := range paths {
		b := i % workerCount
		buckets[b] = append(buckets[b], p)
	}

	slots := make([]workerSlot, workerCount)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for w := 0; w < workerCount; w++ {
		files := buckets[w]
		if len(files) == 0 {
			continue
		}
		wg.Add(1)
		go func(workerID int, files []string) {
			defer wg.Done()

			handle, err := duckstore.ConnectTo(coordinator)
			if err != nil {
				slots[workerID].err = fmt.Errorf("worker %d: connecting: %w", workerID, err)
				return
			}
			defer handle.Close()

			if err := handle.BeginAppend(); err != nil {
				slots[workerID].err = fmt.Errorf("worker %d: starting append session: %w", workerID, err)
				return
			}

			for _, path := range files {
				res, err := fileproc.Process(path, handle, log)

				counters.TotalLines.Add(res.TotalLines)
				counters.ParsedLines.Add(res.ParsedLines)
				counters.FailedLines.Add(res.FailedLines)

				if err != nil {
					counters.FilesWithError.Inc()
					slots[workerID].err = fmt.Errorf("worker %d: %s: %w", workerID, path, err)
					log.Printf("worker %d: %s: %v\n", workerID, path, err)
					continue
				}

				counters.FilesComplete.Inc()
				mu.Lock()
				result.FileResults = append(result.FileResults, res)
				mu.Unlock()
			}

			if err := handle.EndAppend(); err != nil {
				slots[workerID].err = fmt.Errorf("worker %d: ending append session: %w", workerID, err)
			}
		}(w, files)
	}

	wg.Wait()

	result.Critical = classify(slots)
	return result
}

// classify scans worker error slots in order and returns the first one
// that is not a file-level error (already accounted for in
// FilesWithError) — the single critical error a Run surfaces.
func classify(slots []workerSlot) error {
	for _, s := range slots {
		if s.err == nil || isFileLevel(s.err) {
			continue
		}
		return s.err
	}
	return nil
}

func isFileLevel(err error) bool {
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
		return true
	}
	if errors.Is(err, bufio.ErrTooLong) {
		return true
	}
	var tooLong *fileproc.LineTooLong
	if errors.As(err, &tooLong) {
		return true
	}
	return false
}
