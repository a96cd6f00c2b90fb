// Package progress renders a running ingestion's atomic counters to the
// terminal every 100 ms, the cadence spec.md §4.4 gives the coordinator
// thread.
package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/Omegaice/strace-to-duckdb/internal/engine"
)

const sampleInterval = 100 * time.Millisecond

var (
	okColor   = color.New(color.FgGreen)
	errColor  = color.New(color.FgRed)
	dimColor  = color.New(color.FgHiBlack)
)

// Run samples counters every 100ms and writes a one-line progress
// update to w, until done is closed. Call Render once more after done
// closes to print the final tally.
func Run(w io.Writer, counters *engine.Counters, totalFiles int, done <-chan struct{}) {
	ticker := time.NewTicker(sampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			Render(w, counters, totalFiles)
		case <-done:
			return
		}
	}
}

// Render writes a single progress line for the current counter values.
func Render(w io.Writer, counters *engine.Counters, totalFiles int) {
	complete := counters.FilesComplete.Load()
	failed := counters.FilesWithError.Load()
	parsed := counters.ParsedLines.Load()

	fmt.Fprint(w, "\r")
	okColor.Fprintf(w, "%d", complete)
	dimColor.Fprintf(w, "/%d files", totalFiles)
	if failed > 0 {
		fmt.Fprint(w, " (")
		errColor.Fprintf(w, "%d failed", failed)
		fmt.Fprint(w, ")")
	}
	dimColor.Fprintf(w, " — %d rows parsed", parsed)
}
