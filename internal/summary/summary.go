// Package summary assembles the post-run report spec.md §7 requires on
// success: run-level counters plus the database's own tallies.
package summary

import (
	"github.com/Omegaice/strace-to-duckdb/internal/duckstore"
	"github.com/Omegaice/strace-to-duckdb/internal/engine"
)

// Summary is the complete success report: files processed and files
// with errors, the three line counters, the output path, and the four
// database-wide counts.
type Summary struct {
	FilesProcessed  int64
	FilesWithErrors int64
	TotalLines      int64
	ParsedLines     int64
	FailedLines     int64
	OutputPath      string

	TotalRows        int64
	DistinctSyscalls int64
	DistinctPIDs     int64
	FailedSyscalls   int64
}

// From builds a Summary from a completed engine run's counters, the
// database's Summarize result, and the output path ingestion wrote to.
func From(counters *engine.Counters, db duckstore.Summary, outputPath string) Summary {
	return Summary{
		FilesProcessed:  counters.FilesComplete.Load(),
		FilesWithErrors: counters.FilesWithError.Load(),
		TotalLines:      counters.TotalLines.Load(),
		ParsedLines:     counters.ParsedLines.Load(),
		FailedLines:     counters.FailedLines.Load(),
		OutputPath:      outputPath,

		TotalRows:        db.TotalRows,
		DistinctSyscalls: db.DistinctSyscalls,
		DistinctPIDs:     db.DistinctPIDs,
		FailedSyscalls:   db.FailedSyscalls,
	}
}
