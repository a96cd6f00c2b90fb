// Command strace-to-duckdb bulk-loads one or more strace trace files
// into a DuckDB database for querying.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/Omegaice/strace-to-duckdb/internal/config"
	"github.com/Omegaice/strace-to-duckdb/internal/duckstore"
	"github.com/Omegaice/strace-to-duckdb/internal/engine"
	"github.com/Omegaice/strace-to-duckdb/internal/logging"
	"github.com/Omegaice/strace-to-duckdb/internal/progress"
	"github.com/Omegaice/strace-to-duckdb/internal/summary"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, help, err := config.Parse()
	if help {
		config.Usage()
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		config.Usage()
		return 1
	}

	log := logging.New(cfg.Verbose)

	store, err := duckstore.Open(cfg.OutputPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	defer store.Close()

	start := time.Now()

	counters := &engine.Counters{}
	done := make(chan struct{})
	go progress.Run(os.Stdout, counters, len(cfg.TracePaths), done)

	result := engine.Run(store, cfg.TracePaths, cfg.WorkerCount, log, counters)
	close(done)
	progress.Render(os.Stdout, result.Counters, len(cfg.TracePaths))
	fmt.Println()

	if result.Critical != nil {
		fmt.Fprintln(os.Stderr, "critical error:", result.Critical)
		return 1
	}

	dbSummary, err := store.Summarize()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	sum := summary.From(result.Counters, dbSummary, cfg.OutputPath)

	elapsed := time.Since(start)
	headline := color.New(color.FgGreen, color.Bold)
	headline.Printf("ingested %d rows in %s\n", sum.TotalRows, elapsed.Round(time.Millisecond))
	fmt.Printf("  files processed:  %d\n", sum.FilesProcessed)
	fmt.Printf("  total lines:      %d\n", sum.TotalLines)
	fmt.Printf("  parsed lines:     %d\n", sum.ParsedLines)
	fmt.Printf("  failed lines:     %d\n", sum.FailedLines)
	fmt.Printf("  output path:      %s\n", sum.OutputPath)
	fmt.Printf("  total rows:       %d\n", sum.TotalRows)
	fmt.Printf("  distinct syscalls: %d\n", sum.DistinctSyscalls)
	fmt.Printf("  distinct PIDs:    %d\n", sum.DistinctPIDs)
	fmt.Printf("  failed syscalls:  %d\n", sum.FailedSyscalls)
	if sum.FilesWithErrors > 0 {
		errColor := color.New(color.FgYellow)
		errColor.Printf("  %d file(s) could not be fully processed; see log output above\n", sum.FilesWithErrors)
	}

	return 0
}
