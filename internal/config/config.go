// Package config resolves the CLI surface documented in SPEC_FULL.md §10:
// flags, defaults, and the worker-count clamp.
package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/pflag"
)

const (
	defaultOutputPath = "strace.db"
	defaultWorkers    = 0 // 0 means "auto", resolved against CPU count and file count.
)

var (
	flagOutput  = pflag.StringP("output", "o", defaultOutputPath, "path to the DuckDB database file to create")
	flagWorkers = pflag.UintP("workers", "w", defaultWorkers, "number of parallel ingestion workers (0 = auto)")
	flagVerbose = pflag.BoolP("verbose", "v", false, "enable verbose logging")
	flagHelp    = pflag.BoolP("help", "h", false, "print usage and exit")
)

// Config is the resolved set of options a run proceeds with.
type Config struct {
	OutputPath  string
	WorkerCount int
	Verbose     bool
	TracePaths  []string
}

// Parse reads os.Args[1:], clamps the worker count, and removes any
// pre-existing file at the output path so ingestion always starts from
// a fresh database. help is true when usage should be printed and the
// process should exit 0 without doing anything else.
func Parse() (cfg Config, help bool, err error) {
	pflag.Parse()

	if *flagHelp {
		return Config{}, true, nil
	}

	paths := pflag.Args()
	if len(paths) == 0 {
		return Config{}, false, fmt.Errorf("no trace files given")
	}

	workers := resolveWorkerCount(int(*flagWorkers), len(paths))

	if err := os.Remove(*flagOutput); err != nil && !os.IsNotExist(err) {
		return Config{}, false, fmt.Errorf("removing existing output %q: %w", *flagOutput, err)
	}

	return Config{
		OutputPath:  *flagOutput,
		WorkerCount: workers,
		Verbose:     *flagVerbose,
		TracePaths:  paths,
	}, false, nil
}

// Usage writes the flag set's usage text to stderr.
func Usage() {
	fmt.Fprintln(os.Stderr, "usage: strace-to-duckdb [flags] TRACE_FILE...")
	pflag.PrintDefaults()
}

// resolveWorkerCount resolves requested (0 meaning "auto", i.e.
// runtime.NumCPU()) and clamps the result to [1, fileCount]. An explicit
// request above the CPU count is not lowered to it.
func resolveWorkerCount(requested, fileCount int) int {
	if fileCount < 1 {
		fileCount = 1
	}

	n := requested
	if n == 0 {
		n = runtime.NumCPU()
	}
	if n > fileCount {
		n = fileCount
	}
	if n < 1 {
		n = 1
	}
	return n
}
